package dto

// Quantity and price bounds are validated by the engine so that failures
// surface in the documented order, after the product lookup.

type PurchaseRequest struct {
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Date     string `json:"date,omitempty"`
}

type SaleRequest struct {
	Quantity int    `json:"quantity"`
	Date     string `json:"date,omitempty"`
}
