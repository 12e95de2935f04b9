package domain

import "github.com/shopspring/decimal"

type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Profile is the customer joined with their loyalty account. Loyalty fields
// default to the Bronze tier when no account row exists.
type Profile struct {
	Customer
	LoyaltyPoints int             `json:"loyalty_points"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	LoyaltyLevel  string          `json:"loyalty_level"`
	LoyaltyColor  string          `json:"loyalty_color"`
}
