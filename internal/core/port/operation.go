package port

import (
	"context"

	"github.com/lucasvieira/inventory/internal/core/domain"
)

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

type OperationPort interface {
	// AppendWithOutbox inserts the operation record together with outbox
	// entries for the given events. Callers run it inside a transaction so
	// the append commits atomically with the product mutation.
	AppendWithOutbox(ctx context.Context, operation *domain.Operation, events ...domain.Event) error
	ListByProduct(ctx context.Context, productID domain.ID) ([]*domain.Operation, error)
}
