package service

import "errors"

var (
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrInvalidOrderLine = errors.New("order line product id and quantity must be positive")
)
