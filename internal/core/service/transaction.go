package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lucasvieira/inventory/internal/core/domain"
	"github.com/lucasvieira/inventory/internal/core/dto"
	"github.com/lucasvieira/inventory/internal/core/logger"
	"github.com/lucasvieira/inventory/internal/core/port"
	"github.com/lucasvieira/inventory/internal/core/serviceerrors"
	"github.com/lucasvieira/inventory/internal/core/utils"
)

// maxCommitAttempts bounds the optimistic retries when a concurrent
// transaction swaps the stock state between our read and our write.
const maxCommitAttempts = 3

type TransactionResult struct {
	Operation *domain.Operation `json:"operation"`
	Product   *domain.Product   `json:"product"`
}

// TransactionService is the inventory transaction engine: it validates a
// purchase or sale against the product's current stock state, applies the
// pricing policy, and commits the product mutation together with the
// operation record as one atomic unit.
type TransactionService struct {
	productRepo   port.ProductPort
	operationRepo port.OperationPort
	txManager     port.TransactionManager
	productCache  port.CachePort[domain.Product]
	idempotency   *IdempotencyService[TransactionResult]
}

func NewTransactionService(
	productRepo port.ProductPort,
	operationRepo port.OperationPort,
	txManager port.TransactionManager,
	productCache port.CachePort[domain.Product],
	idempotency *IdempotencyService[TransactionResult],
) *TransactionService {
	return &TransactionService{
		productRepo:   productRepo,
		operationRepo: operationRepo,
		txManager:     txManager,
		productCache:  productCache,
		idempotency:   idempotency,
	}
}

func (s *TransactionService) Purchase(ctx context.Context, idempotencyKey string, productID domain.ID, request *dto.PurchaseRequest) (*TransactionResult, error) {
	if idempotencyKey == "" {
		return s.processPurchase(ctx, productID, request)
	}

	payloadHash := utils.HashJSON(struct {
		ProductID domain.ID            `json:"product_id"`
		Request   *dto.PurchaseRequest `json:"request"`
	}{productID, request})

	existing, err := s.idempotency.Claim(ctx, idempotencyKey, payloadHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	result, err := s.processPurchase(ctx, productID, request)
	if err != nil {
		s.idempotency.Release(ctx, idempotencyKey)
		return nil, err
	}

	s.idempotency.Complete(ctx, idempotencyKey, payloadHash, result)
	return result, nil
}

func (s *TransactionService) Sale(ctx context.Context, idempotencyKey string, productID domain.ID, request *dto.SaleRequest) (*TransactionResult, error) {
	if idempotencyKey == "" {
		return s.processSale(ctx, productID, request)
	}

	payloadHash := utils.HashJSON(struct {
		ProductID domain.ID        `json:"product_id"`
		Request   *dto.SaleRequest `json:"request"`
	}{productID, request})

	existing, err := s.idempotency.Claim(ctx, idempotencyKey, payloadHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	result, err := s.processSale(ctx, productID, request)
	if err != nil {
		s.idempotency.Release(ctx, idempotencyKey)
		return nil, err
	}

	s.idempotency.Complete(ctx, idempotencyKey, payloadHash, result)
	return result, nil
}

func (s *TransactionService) processPurchase(ctx context.Context, productID domain.ID, request *dto.PurchaseRequest) (*TransactionResult, error) {
	result, err := s.withCommitRetry(ctx, productID, func() (*TransactionResult, error) {
		return s.executePurchase(ctx, productID, request)
	})
	if err != nil {
		return nil, err
	}

	s.refreshCache(ctx, result.Product)
	logger.Info(ctx, "Purchase recorded", map[string]any{
		"product_id":   productID,
		"operation_id": result.Operation.ID,
		"quantity":     result.Operation.Quantity,
		"total":        int64(result.Operation.Total),
	})
	return result, nil
}

func (s *TransactionService) processSale(ctx context.Context, productID domain.ID, request *dto.SaleRequest) (*TransactionResult, error) {
	result, err := s.withCommitRetry(ctx, productID, func() (*TransactionResult, error) {
		return s.executeSale(ctx, productID, request)
	})
	if err != nil {
		return nil, err
	}

	s.refreshCache(ctx, result.Product)
	logger.Info(ctx, "Sale recorded", map[string]any{
		"product_id":   productID,
		"operation_id": result.Operation.ID,
		"quantity":     result.Operation.Quantity,
		"total":        int64(result.Operation.Total),
	})
	return result, nil
}

// withCommitRetry re-runs the whole read-validate-write unit on conflict, so
// every retry sees a fresh stock state. Validation failures and business rule
// rejections pass through untouched.
func (s *TransactionService) withCommitRetry(ctx context.Context, productID domain.ID, execute func() (*TransactionResult, error)) (*TransactionResult, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		result, err := execute()
		if err == nil {
			return result, nil
		}
		if !serviceerrors.IsOfKind(err, serviceerrors.KindConflict) {
			return nil, err
		}
		logger.Warn(ctx, "transaction: stock state changed concurrently, retrying", map[string]any{
			"product_id": productID,
			"attempt":    attempt,
		})
	}
	return nil, serviceerrors.NewConflictError("product is being updated concurrently, try again")
}

func (s *TransactionService) executePurchase(ctx context.Context, productID domain.ID, request *dto.PurchaseRequest) (*TransactionResult, error) {
	var result *TransactionResult

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		product, err := s.loadActiveProduct(txCtx, productID)
		if err != nil {
			return err
		}

		if request.Quantity <= 0 {
			return serviceerrors.NewInvalidRequestError("quantity must be a positive integer")
		}

		unitCost := domain.NewAmountFromCents(request.Price)
		if unitCost <= 0 {
			return serviceerrors.NewInvalidRequestError("price must be a positive amount")
		}

		effectiveDate, err := resolveEffectiveDate(request.Date)
		if err != nil {
			return err
		}

		before := product.StockState()
		if before.BelowMarket(unitCost) {
			return serviceerrors.NewUnprocessableEntityError("offered purchase price is below market")
		}

		next := before.AfterPurchase(request.Quantity, unitCost)
		if err := s.productRepo.SwapStockState(txCtx, productID, before, next); err != nil {
			return err
		}

		operation := domain.NewOperation(productID, domain.OperationPurchase, request.Quantity, unitCost, effectiveDate)
		if err := s.operationRepo.AppendWithOutbox(txCtx, operation, domain.NewStockMovementEvent(operation, next.Quantity)); err != nil {
			return err
		}

		product.SetStockState(next)
		result = &TransactionResult{Operation: operation, Product: product}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *TransactionService) executeSale(ctx context.Context, productID domain.ID, request *dto.SaleRequest) (*TransactionResult, error) {
	var result *TransactionResult

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		product, err := s.loadActiveProduct(txCtx, productID)
		if err != nil {
			return err
		}

		if request.Quantity <= 0 {
			return serviceerrors.NewInvalidRequestError("quantity must be a positive integer")
		}

		before := product.StockState()
		if before.SalePrice <= 0 {
			return serviceerrors.NewUnprocessableEntityError("product has no sale price set")
		}
		if request.Quantity > before.Quantity {
			return serviceerrors.NewUnprocessableEntityError(
				fmt.Sprintf("insufficient stock, only %d units available", before.Quantity))
		}

		effectiveDate, err := resolveEffectiveDate(request.Date)
		if err != nil {
			return err
		}

		// the sale always executes at the current listed price
		next := before.AfterSale(request.Quantity)
		if err := s.productRepo.SwapStockState(txCtx, productID, before, next); err != nil {
			return err
		}

		operation := domain.NewOperation(productID, domain.OperationSale, request.Quantity, before.SalePrice, effectiveDate)
		events := []domain.Event{domain.NewStockMovementEvent(operation, next.Quantity)}
		if next.Quantity == 0 {
			events = append(events, domain.NewStockDepletedEvent(operation))
		}
		if err := s.operationRepo.AppendWithOutbox(txCtx, operation, events...); err != nil {
			return err
		}

		product.SetStockState(next)
		result = &TransactionResult{Operation: operation, Product: product}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *TransactionService) loadActiveProduct(ctx context.Context, productID domain.ID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, serviceerrors.NewNotFoundError("product not found or unavailable")
	}
	return product, nil
}

func (s *TransactionService) refreshCache(ctx context.Context, product *domain.Product) {
	if err := s.productCache.Set(ctx, productCacheKey(product.ID), product, productCacheTTL); err != nil {
		logger.Error(ctx, "cache: refresh product failed", err, map[string]any{
			"product_id": product.ID,
		})
	}
}

// resolveEffectiveDate defaults to now; a caller-supplied date must be
// RFC 3339 and must not lie in the past.
func resolveEffectiveDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil || parsed.Before(time.Now()) {
		return time.Time{}, serviceerrors.NewInvalidRequestError("date cannot be in the past or is invalid")
	}
	return parsed, nil
}
