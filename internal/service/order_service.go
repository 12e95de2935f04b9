package service

import (
	"context"
	"fmt"

	"github.com/petalmart/storefront/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, userID int64, lines []domain.OrderLine) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)
}

type OrderService struct {
	repo OrderRepository
}

func NewOrderService(repo OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// PlaceOrder validates the requested lines and hands them to the
// transactional pipeline. The cart is left untouched: placing an order does
// not consume the cart items the request was built from.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, lines []domain.OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.ProductID <= 0 || line.Quantity <= 0 {
			return nil, fmt.Errorf("product %d quantity %d: %w",
				line.ProductID, line.Quantity, ErrInvalidOrderLine)
		}
	}

	return s.repo.CreateOrder(ctx, userID, lines)
}

func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUserID(ctx, userID)
}
