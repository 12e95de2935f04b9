package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single mutable pre-purchase collection a customer owns.
// There is exactly one cart per customer, created lazily on first access.
type Cart struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
}

// CartItem is one (product, quantity) row of a cart, joined with the
// product fields the storefront needs for display. Quantity is mutated in
// place; a cart never holds two rows for the same product.
type CartItem struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	Quantity     int             `json:"quantity"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	Price        decimal.Decimal `json:"price"`
	InStock      bool            `json:"in_stock"`
	AddedAt      time.Time       `json:"added_at"`
}
