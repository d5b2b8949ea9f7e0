package domain

import "time"

type OperationKind string

const (
	OperationPurchase OperationKind = "purchase"
	OperationSale     OperationKind = "sale"
)

func (k OperationKind) IsValid() bool {
	return k == OperationPurchase || k == OperationSale
}

// Operation is the immutable audit record of one stock movement. Total is
// computed once at creation and never recomputed.
type Operation struct {
	ID        ID
	ProductID ID
	Kind      OperationKind
	Quantity  int
	UnitPrice Amount
	Total     Amount
	Timestamp time.Time
	CreatedAt time.Time
}

func NewOperation(productID ID, kind OperationKind, quantity int, unitPrice Amount, timestamp time.Time) *Operation {
	return &Operation{
		ProductID: productID,
		Kind:      kind,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     unitPrice.Multiply(quantity),
		Timestamp: timestamp,
		CreatedAt: time.Now(),
	}
}

type StockMovementEvent struct {
	ProductID      ID            `json:"product_id"`
	Kind           OperationKind `json:"kind"`
	Quantity       int           `json:"quantity"`
	UnitPrice      Amount        `json:"unit_price"`
	Total          Amount        `json:"total"`
	RemainingStock int           `json:"remaining_stock"`
	Timestamp      time.Time     `json:"timestamp"`
}

func (e *StockMovementEvent) GetName() string {
	if e.Kind == OperationSale {
		return "product.sold"
	}
	return "product.purchased"
}

func (e *StockMovementEvent) GetEntityName() string {
	return "product"
}

func NewStockMovementEvent(op *Operation, remainingStock int) *StockMovementEvent {
	return &StockMovementEvent{
		ProductID:      op.ProductID,
		Kind:           op.Kind,
		Quantity:       op.Quantity,
		UnitPrice:      op.UnitPrice,
		Total:          op.Total,
		RemainingStock: remainingStock,
		Timestamp:      op.Timestamp,
	}
}

type StockDepletedEvent struct {
	ProductID  ID        `json:"product_id"`
	DepletedAt time.Time `json:"depleted_at"`
}

func (e *StockDepletedEvent) GetName() string {
	return "product.stock_depleted"
}

func (e *StockDepletedEvent) GetEntityName() string {
	return "product"
}

func NewStockDepletedEvent(op *Operation) *StockDepletedEvent {
	return &StockDepletedEvent{
		ProductID:  op.ProductID,
		DepletedAt: op.Timestamp,
	}
}
