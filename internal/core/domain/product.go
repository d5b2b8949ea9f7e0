package domain

import "time"

type Product struct {
	ID            ID
	Name          string
	Description   string
	Quantity      int
	PurchasePrice Amount
	SalePrice     Amount
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProduct starts every product with empty stock and zeroed prices; both
// only ever change through purchase and sale operations.
func NewProduct(name string, description string) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Quantity:    0,
		Active:      true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// StockState is the mutable slice of a product that purchase and sale
// operations read and replace as one unit.
type StockState struct {
	Quantity      int
	PurchasePrice Amount
	SalePrice     Amount
}

func (p *Product) StockState() StockState {
	return StockState{
		Quantity:      p.Quantity,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
	}
}

func (p *Product) SetStockState(s StockState) {
	p.Quantity = s.Quantity
	p.PurchasePrice = s.PurchasePrice
	p.SalePrice = s.SalePrice
	p.UpdatedAt = time.Now()
}

// BelowMarket reports whether unitCost undercuts the current sale price by
// more than the allowed 2x spread. Offering exactly half the sale price is
// still accepted.
func (s StockState) BelowMarket(unitCost Amount) bool {
	return unitCost.Multiply(2) < s.SalePrice
}

// AfterPurchase returns the stock state after buying qty units at unitCost.
// The purchase price always records the latest cost; the sale price is raised
// to cost plus a 50% markup whenever that beats the current listing.
func (s StockState) AfterPurchase(qty int, unitCost Amount) StockState {
	return StockState{
		Quantity:      s.Quantity + qty,
		PurchasePrice: unitCost,
		SalePrice:     MaxAmount(s.SalePrice, unitCost.MarkupHalf()),
	}
}

// AfterSale returns the stock state after selling qty units. When the sale
// empties the stock, both prices reset to zero.
func (s StockState) AfterSale(qty int) StockState {
	next := StockState{
		Quantity:      s.Quantity - qty,
		PurchasePrice: s.PurchasePrice,
		SalePrice:     s.SalePrice,
	}
	if next.Quantity == 0 {
		next.PurchasePrice = 0
		next.SalePrice = 0
	}
	return next
}

// ProductPatch describes the fields a catalog update may change. Stock and
// prices are deliberately absent.
type ProductPatch struct {
	Name        *string
	Description *string
}
