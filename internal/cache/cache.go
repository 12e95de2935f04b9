package cache

import (
	"context"
	"errors"

	"github.com/petalmart/storefront/internal/domain"
)

var ErrCacheMiss = errors.New("cart not found in cache")

// CartCache holds the display view of a customer's cart. It is strictly a
// read accelerator: every cart mutation invalidates the entry.
type CartCache interface {
	Get(ctx context.Context, userID int64) ([]domain.CartItem, error)
	Set(ctx context.Context, userID int64, items []domain.CartItem) error
	Delete(ctx context.Context, userID int64) error
}
