package domain

import (
	"testing"
	"time"
)

func TestNewProduct(t *testing.T) {
	before := time.Now()
	p := NewProduct("Widget", "A fine widget")
	after := time.Now()

	if p.Name != "Widget" {
		t.Fatalf("expected name 'Widget', got %q", p.Name)
	}
	if p.Description != "A fine widget" {
		t.Fatalf("expected description 'A fine widget', got %q", p.Description)
	}
	if p.Quantity != 0 {
		t.Fatalf("expected zero stock, got %d", p.Quantity)
	}
	if p.PurchasePrice != 0 || p.SalePrice != 0 {
		t.Fatalf("expected zeroed prices, got purchase=%d sale=%d", p.PurchasePrice, p.SalePrice)
	}
	if !p.Active {
		t.Fatal("expected new product to be active")
	}
	if p.ID != "" {
		t.Fatalf("expected empty ID, got %q", p.ID)
	}
	if p.CreatedAt.Before(before) || p.CreatedAt.After(after) {
		t.Fatalf("CreatedAt %v not in expected range [%v, %v]", p.CreatedAt, before, after)
	}
}

func TestStockState_AfterPurchase(t *testing.T) {
	tests := []struct {
		name     string
		before   StockState
		qty      int
		unitCost Amount
		want     StockState
	}{
		{
			"first purchase sets prices from cost",
			StockState{Quantity: 0, PurchasePrice: 0, SalePrice: 0},
			10, 500,
			StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750},
		},
		{
			"higher markup raises the sale price",
			StockState{Quantity: 5, PurchasePrice: 400, SalePrice: 600},
			3, 600,
			StockState{Quantity: 8, PurchasePrice: 600, SalePrice: 900},
		},
		{
			"existing sale price wins over a lower markup",
			StockState{Quantity: 5, PurchasePrice: 400, SalePrice: 1000},
			3, 600,
			StockState{Quantity: 8, PurchasePrice: 600, SalePrice: 1000},
		},
		{
			"purchase price records the latest cost even when lower",
			StockState{Quantity: 5, PurchasePrice: 600, SalePrice: 1000},
			1, 500,
			StockState{Quantity: 6, PurchasePrice: 500, SalePrice: 1000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.before.AfterPurchase(tt.qty, tt.unitCost); got != tt.want {
				t.Errorf("AfterPurchase(%d, %d) = %+v, want %+v", tt.qty, tt.unitCost, got, tt.want)
			}
		})
	}
}

func TestStockState_AfterSale(t *testing.T) {
	t.Run("partial sale keeps prices", func(t *testing.T) {
		before := StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750}
		got := before.AfterSale(4)
		want := StockState{Quantity: 6, PurchasePrice: 500, SalePrice: 750}
		if got != want {
			t.Fatalf("AfterSale(4) = %+v, want %+v", got, want)
		}
	})

	t.Run("exhausting stock resets prices", func(t *testing.T) {
		before := StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750}
		got := before.AfterSale(10)
		want := StockState{Quantity: 0, PurchasePrice: 0, SalePrice: 0}
		if got != want {
			t.Fatalf("AfterSale(10) = %+v, want %+v", got, want)
		}
	})
}

func TestStockState_BelowMarket(t *testing.T) {
	tests := []struct {
		name     string
		state    StockState
		unitCost Amount
		want     bool
	}{
		{"cost far below listing", StockState{SalePrice: 10000}, 1, true},
		{"exactly half the listing is accepted", StockState{SalePrice: 1000}, 500, false},
		{"just under half is rejected", StockState{SalePrice: 1000}, 499, true},
		{"no listing accepts anything", StockState{SalePrice: 0}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.BelowMarket(tt.unitCost); got != tt.want {
				t.Errorf("BelowMarket(%d) with sale price %d = %v, want %v", tt.unitCost, tt.state.SalePrice, got, tt.want)
			}
		})
	}
}

func TestProduct_SetStockState(t *testing.T) {
	p := NewProduct("Widget", "")
	p.SetStockState(StockState{Quantity: 10, PurchasePrice: 500, SalePrice: 750})

	if p.Quantity != 10 || p.PurchasePrice != 500 || p.SalePrice != 750 {
		t.Fatalf("unexpected state after SetStockState: %+v", p)
	}
}
