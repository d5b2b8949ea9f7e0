package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lucasvieira/inventory/internal/core/domain"
	"github.com/lucasvieira/inventory/internal/core/dto"
	"github.com/lucasvieira/inventory/internal/core/logger"
	"github.com/lucasvieira/inventory/internal/core/port"
)

const productCacheTTL = 15 * time.Minute

func productCacheKey(productID domain.ID) string {
	return fmt.Sprintf("product:%s", productID)
}

type ProductService struct {
	productRepo   port.ProductPort
	operationRepo port.OperationPort
	productCache  port.CachePort[domain.Product]
}

func NewProductService(
	productRepo port.ProductPort,
	operationRepo port.OperationPort,
	productCache port.CachePort[domain.Product],
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		operationRepo: operationRepo,
		productCache:  productCache,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, request *dto.CreateProductRequest) (*domain.Product, error) {
	product := domain.NewProduct(request.Name, request.Description)

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error(ctx, "product: create failed", err, map[string]any{
			"name": request.Name,
		})
		return nil, err
	}

	logger.Info(ctx, "Product created", map[string]any{"product_id": product.ID})
	return product, nil
}

func (s *ProductService) GetByID(ctx context.Context, id domain.ID) (*domain.Product, error) {
	cached, err := s.productCache.Get(ctx, productCacheKey(id))
	if err != nil {
		logger.Error(ctx, "cache: get product failed", err, map[string]any{
			"product_id": id,
		})
	}
	if cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.productCache.Set(ctx, productCacheKey(id), product, productCacheTTL); err != nil {
		logger.Error(ctx, "cache: set product failed", err, map[string]any{
			"product_id": id,
		})
	}

	return product, nil
}

// GetWithOperations returns the product together with its full transaction
// history, oldest first.
func (s *ProductService) GetWithOperations(ctx context.Context, id domain.ID) (*domain.Product, []*domain.Operation, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	operations, err := s.operationRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return product, operations, nil
}

func (s *ProductService) GetAllActive(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.GetAllActive(ctx)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id domain.ID, request *dto.UpdateProductRequest) (*domain.Product, error) {
	patch := domain.ProductPatch{
		Name:        request.Name,
		Description: request.Description,
	}

	product, err := s.productRepo.UpdateDetails(ctx, id, patch)
	if err != nil {
		logger.Error(ctx, "product: update failed", err, map[string]any{
			"product_id": id,
		})
		return nil, err
	}

	s.invalidateCache(ctx, id)

	logger.Info(ctx, "Product updated", map[string]any{"product_id": id})
	return product, nil
}

// DeactivateProduct soft-deletes: the product disappears from listings and
// refuses new transactions, but its stock and prices stay untouched.
func (s *ProductService) DeactivateProduct(ctx context.Context, id domain.ID) (*domain.Product, error) {
	product, err := s.productRepo.SetActive(ctx, id, false)
	if err != nil {
		logger.Error(ctx, "product: deactivate failed", err, map[string]any{
			"product_id": id,
		})
		return nil, err
	}

	s.invalidateCache(ctx, id)

	logger.Info(ctx, "Product deactivated", map[string]any{"product_id": id})
	return product, nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id domain.ID) {
	if err := s.productCache.Del(ctx, productCacheKey(id)); err != nil {
		logger.Error(ctx, "cache: invalidate product failed", err, map[string]any{
			"product_id": id,
		})
	}
}
