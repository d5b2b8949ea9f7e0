package port

import (
	"context"

	"github.com/lucasvieira/inventory/internal/core/domain"
)

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

type ProductPort interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id domain.ID) (*domain.Product, error)
	GetAllActive(ctx context.Context) ([]*domain.Product, error)
	UpdateDetails(ctx context.Context, id domain.ID, patch domain.ProductPatch) (*domain.Product, error)
	SetActive(ctx context.Context, id domain.ID, active bool) (*domain.Product, error)
	// SwapStockState replaces the product's stock state only if it still
	// matches expected, failing with a conflict error otherwise. This is the
	// compare-and-swap that keeps concurrent transactions serializable.
	SwapStockState(ctx context.Context, id domain.ID, expected, next domain.StockState) error
}
