package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalmart/storefront/internal/domain"
)

type mockOrderRepo struct {
	order       *domain.Order
	orders      []*domain.Order
	err         error
	gotUserID   int64
	gotLines    []domain.OrderLine
	createCalls int
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, userID int64, lines []domain.OrderLine) (*domain.Order, error) {
	m.createCalls++
	m.gotUserID = userID
	m.gotLines = lines
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *mockOrderRepo) ListOrdersByUserID(_ context.Context, userID int64) ([]*domain.Order, error) {
	m.gotUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func TestPlaceOrder_EmptyItemsRejected(t *testing.T) {
	repo := &mockOrderRepo{}

	sut := NewOrderService(repo)
	_, err := sut.PlaceOrder(context.Background(), 123, nil)
	require.ErrorIs(t, err, ErrEmptyOrder)
	assert.Zero(t, repo.createCalls, "pipeline must not run for an empty order")
}

func TestPlaceOrder_NonPositiveQuantityRejected(t *testing.T) {
	repo := &mockOrderRepo{}

	sut := NewOrderService(repo)
	_, err := sut.PlaceOrder(context.Background(), 123, []domain.OrderLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 0},
	})
	require.ErrorIs(t, err, ErrInvalidOrderLine)
	assert.Zero(t, repo.createCalls)
}

func TestPlaceOrder_NonPositiveProductIDRejected(t *testing.T) {
	repo := &mockOrderRepo{}

	sut := NewOrderService(repo)
	_, err := sut.PlaceOrder(context.Background(), 123, []domain.OrderLine{
		{ProductID: -1, Quantity: 2},
	})
	require.ErrorIs(t, err, ErrInvalidOrderLine)
}

func TestPlaceOrder_DelegatesToPipeline(t *testing.T) {
	want := &domain.Order{
		ID:     42,
		UserID: 123,
		Total:  decimal.RequireFromString("50.00"),
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 5, Price: decimal.RequireFromString("10.00")},
		},
	}
	repo := &mockOrderRepo{order: want}

	sut := NewOrderService(repo)
	lines := []domain.OrderLine{{ProductID: 1, Quantity: 5}}
	got, err := sut.PlaceOrder(context.Background(), 123, lines)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(123), repo.gotUserID)
	assert.Equal(t, lines, repo.gotLines)
}

func TestListOrders_Delegates(t *testing.T) {
	want := []*domain.Order{{ID: 1}, {ID: 2}}
	repo := &mockOrderRepo{orders: want}

	sut := NewOrderService(repo)
	got, err := sut.ListOrders(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(123), repo.gotUserID)
}
