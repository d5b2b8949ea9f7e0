package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lucasvieira/inventory/internal/core/domain"
	"github.com/lucasvieira/inventory/internal/core/dto"
	"github.com/lucasvieira/inventory/internal/core/port/mock"
	"github.com/lucasvieira/inventory/internal/core/serviceerrors"
	"go.uber.org/mock/gomock"
)

const testProductID = domain.ID("aabbccddee112233aabbccdd")

type transactionMocks struct {
	productRepo   *mock.MockProductPort
	operationRepo *mock.MockOperationPort
	txManager     *mock.MockTransactionManager
	productCache  *mock.MockCachePort[domain.Product]
	idemCache     *mock.MockCachePort[IdempotencyEntry[TransactionResult]]
}

func setupTransactionService(t *testing.T) (*TransactionService, *transactionMocks) {
	ctrl := gomock.NewController(t)

	productRepo := mock.NewMockProductPort(ctrl)
	operationRepo := mock.NewMockOperationPort(ctrl)
	txManager := mock.NewMockTransactionManager(ctrl)
	productCache := mock.NewMockCachePort[domain.Product](ctrl)
	idemCache := mock.NewMockCachePort[IdempotencyEntry[TransactionResult]](ctrl)

	idemSvc := NewIdempotencyService[TransactionResult](idemCache, 15*time.Minute, 50*time.Millisecond, 500*time.Millisecond)
	svc := NewTransactionService(productRepo, operationRepo, txManager, productCache, idemSvc)

	return svc, &transactionMocks{
		productRepo:   productRepo,
		operationRepo: operationRepo,
		txManager:     txManager,
		productCache:  productCache,
		idemCache:     idemCache,
	}
}

// passThroughTransaction makes the mocked transaction manager run the unit
// directly, as the real manager does inside a session.
func passThroughTransaction(m *transactionMocks) {
	m.txManager.EXPECT().
		WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()
}

func activeProduct(state domain.StockState) *domain.Product {
	p := domain.NewProduct("Widget", "A widget")
	p.ID = testProductID
	p.SetStockState(state)
	return p
}

func TestTransactionService_Purchase(t *testing.T) {
	t.Run("first purchase sets stock and prices", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{}), nil)
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID,
				domain.StockState{Quantity: 0, PurchasePrice: 0, SalePrice: 0},
				domain.StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750}).
			Return(nil)
		m.operationRepo.EXPECT().
			AppendWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, op *domain.Operation, _ ...domain.Event) error {
				op.ID = "bbccddee112233aabbccddee"
				return nil
			})
		m.productCache.EXPECT().
			Set(gomock.Any(), "product:"+string(testProductID), gomock.Any(), productCacheTTL).
			Return(nil)

		result, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 10, Price: 500})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Operation.Kind != domain.OperationPurchase {
			t.Fatalf("expected purchase operation, got %q", result.Operation.Kind)
		}
		if result.Operation.Total != 5000 {
			t.Fatalf("expected total 5000, got %d", result.Operation.Total)
		}
		if result.Product.Quantity != 10 {
			t.Fatalf("expected quantity 10, got %d", result.Product.Quantity)
		}
		if result.Product.PurchasePrice != 500 || result.Product.SalePrice != 750 {
			t.Fatalf("unexpected prices: purchase=%d sale=%d", result.Product.PurchasePrice, result.Product.SalePrice)
		}
	})

	t.Run("cost at exactly half the sale price is accepted", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{Quantity: 5, PurchasePrice: 600, SalePrice: 1000}), nil)
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID,
				domain.StockState{Quantity: 5, PurchasePrice: 600, SalePrice: 1000},
				domain.StockState{Quantity: 7, PurchasePrice: 500, SalePrice: 1000}).
			Return(nil)
		m.operationRepo.EXPECT().
			AppendWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		m.productCache.EXPECT().
			Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 2, Price: 500})
		if err != nil {
			t.Fatalf("expected boundary cost to be accepted, got %v", err)
		}
	})

	t.Run("cost below market is rejected without side effects", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{Quantity: 5, PurchasePrice: 5000, SalePrice: 10000}), nil)

		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 1})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !serviceerrors.IsOfKind(err, serviceerrors.KindUnprocessableEntity) {
			t.Fatalf("expected KindUnprocessableEntity, got %v", err)
		}
	})

	t.Run("missing product", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(nil, serviceerrors.NewNotFoundError("entity not found"))

		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 100})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			t.Fatalf("expected KindNotFound, got %v", err)
		}
	})

	t.Run("inactive product reads as not found", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		product := activeProduct(domain.StockState{Quantity: 5, PurchasePrice: 100, SalePrice: 150})
		product.Active = false
		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(product, nil)

		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 100})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			t.Fatalf("expected KindNotFound, got %v", err)
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		for _, quantity := range []int{0, -3} {
			svc, m := setupTransactionService(t)
			passThroughTransaction(m)

			m.productRepo.EXPECT().
				GetByID(gomock.Any(), testProductID).
				Return(activeProduct(domain.StockState{}), nil)

			_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: quantity, Price: 100})
			if !serviceerrors.IsOfKind(err, serviceerrors.KindInvalidRequest) {
				t.Fatalf("quantity %d: expected KindInvalidRequest, got %v", quantity, err)
			}
		}
	})

	t.Run("non-positive price", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{}), nil)

		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 0})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindInvalidRequest) {
			t.Fatalf("expected KindInvalidRequest, got %v", err)
		}
	})

	t.Run("date in the past", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{}), nil)

		past := time.Now().Add(-time.Hour).Format(time.RFC3339)
		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 100, Date: past})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindInvalidRequest) {
			t.Fatalf("expected KindInvalidRequest, got %v", err)
		}
	})

	t.Run("unparseable date", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{}), nil)

		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 100, Date: "tomorrow"})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindInvalidRequest) {
			t.Fatalf("expected KindInvalidRequest, got %v", err)
		}
	})

	t.Run("future date becomes the operation timestamp", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		future := time.Now().Add(24 * time.Hour).Truncate(time.Second)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{}), nil)
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID, gomock.Any(), gomock.Any()).
			Return(nil)
		m.operationRepo.EXPECT().
			AppendWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		m.productCache.EXPECT().
			Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		result, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{
			Quantity: 1,
			Price:    100,
			Date:     future.Format(time.RFC3339),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Operation.Timestamp.Equal(future) {
			t.Fatalf("expected timestamp %v, got %v", future, result.Operation.Timestamp)
		}
	})

	t.Run("retries once after a concurrent swap and succeeds", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{}), nil).
			Times(2)
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID, gomock.Any(), gomock.Any()).
			Return(serviceerrors.NewConflictError("stock state changed"))
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID, gomock.Any(), gomock.Any()).
			Return(nil)
		m.operationRepo.EXPECT().
			AppendWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		m.productCache.EXPECT().
			Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 100})
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
	})

	t.Run("surfaces conflict after exhausting retries", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{}), nil).
			Times(maxCommitAttempts)
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID, gomock.Any(), gomock.Any()).
			Return(serviceerrors.NewConflictError("stock state changed")).
			Times(maxCommitAttempts)

		_, err := svc.Purchase(context.Background(), "", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 100})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindConflict) {
			t.Fatalf("expected KindConflict, got %v", err)
		}
	})
}

func TestTransactionService_Sale(t *testing.T) {
	t.Run("partial sale keeps prices", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750}), nil)
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID,
				domain.StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750},
				domain.StockState{Quantity: 6, PurchasePrice: 500, SalePrice: 750}).
			Return(nil)
		m.operationRepo.EXPECT().
			AppendWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		m.productCache.EXPECT().
			Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		result, err := svc.Sale(context.Background(), "", testProductID, &dto.SaleRequest{Quantity: 4})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Operation.UnitPrice != 750 {
			t.Fatalf("expected unit price 750, got %d", result.Operation.UnitPrice)
		}
		if result.Operation.Total != 3000 {
			t.Fatalf("expected total 3000, got %d", result.Operation.Total)
		}
		if result.Product.Quantity != 6 {
			t.Fatalf("expected quantity 6, got %d", result.Product.Quantity)
		}
	})

	t.Run("selling out resets prices and emits a depletion event", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750}), nil)
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID,
				domain.StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750},
				domain.StockState{Quantity: 0, PurchasePrice: 0, SalePrice: 0}).
			Return(nil)
		m.operationRepo.EXPECT().
			AppendWithOutbox(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, op *domain.Operation, events ...domain.Event) error {
				if len(events) != 2 {
					t.Fatalf("expected 2 events, got %d", len(events))
				}
				if events[1].GetName() != "product.stock_depleted" {
					t.Fatalf("expected stock depleted event, got %q", events[1].GetName())
				}
				return nil
			})
		m.productCache.EXPECT().
			Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		result, err := svc.Sale(context.Background(), "", testProductID, &dto.SaleRequest{Quantity: 10})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// the sale executes at the pre-sale listing even though the stored
		// price is reset afterwards
		if result.Operation.Total != 7500 {
			t.Fatalf("expected total 7500, got %d", result.Operation.Total)
		}
		if result.Product.PurchasePrice != 0 || result.Product.SalePrice != 0 {
			t.Fatalf("expected zeroed prices, got purchase=%d sale=%d", result.Product.PurchasePrice, result.Product.SalePrice)
		}
	})

	t.Run("insufficient stock carries the available quantity", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{Quantity: 3, PurchasePrice: 500, SalePrice: 750}), nil)

		_, err := svc.Sale(context.Background(), "", testProductID, &dto.SaleRequest{Quantity: 5})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindUnprocessableEntity) {
			t.Fatalf("expected KindUnprocessableEntity, got %v", err)
		}
		if !strings.Contains(err.Error(), "only 3 units") {
			t.Fatalf("expected message to carry the available quantity, got %q", err.Error())
		}
	})

	t.Run("no sale price set", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{Quantity: 5}), nil)

		_, err := svc.Sale(context.Background(), "", testProductID, &dto.SaleRequest{Quantity: 1})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindUnprocessableEntity) {
			t.Fatalf("expected KindUnprocessableEntity, got %v", err)
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{Quantity: 5, PurchasePrice: 500, SalePrice: 750}), nil)

		_, err := svc.Sale(context.Background(), "", testProductID, &dto.SaleRequest{Quantity: 0})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindInvalidRequest) {
			t.Fatalf("expected KindInvalidRequest, got %v", err)
		}
	})
}

func TestTransactionService_Idempotency(t *testing.T) {
	t.Run("first request claims and completes", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.idemCache.EXPECT().
			SetNX(gomock.Any(), "idem-1", gomock.Any(), gomock.Any()).
			Return(true, nil)
		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(activeProduct(domain.StockState{}), nil)
		m.productRepo.EXPECT().
			SwapStockState(gomock.Any(), testProductID, gomock.Any(), gomock.Any()).
			Return(nil)
		m.operationRepo.EXPECT().
			AppendWithOutbox(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		m.productCache.EXPECT().
			Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		m.idemCache.EXPECT().
			Set(gomock.Any(), "idem-1", gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.Purchase(context.Background(), "idem-1", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 100})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("failed request releases the claim", func(t *testing.T) {
		svc, m := setupTransactionService(t)
		passThroughTransaction(m)

		m.idemCache.EXPECT().
			SetNX(gomock.Any(), "idem-2", gomock.Any(), gomock.Any()).
			Return(true, nil)
		m.productRepo.EXPECT().
			GetByID(gomock.Any(), testProductID).
			Return(nil, serviceerrors.NewNotFoundError("entity not found"))
		m.idemCache.EXPECT().
			Del(gomock.Any(), "idem-2").
			Return(nil)

		_, err := svc.Purchase(context.Background(), "idem-2", testProductID, &dto.PurchaseRequest{Quantity: 1, Price: 100})
		if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			t.Fatalf("expected KindNotFound, got %v", err)
		}
	})
}
