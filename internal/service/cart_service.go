package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/petalmart/storefront/internal/cache"
	"github.com/petalmart/storefront/internal/domain"
)

// CartRepository is the persistence surface the cart service needs.
type CartRepository interface {
	GetCartID(ctx context.Context, userID int64) (int64, error)
	GetOrCreateCart(ctx context.Context, userID int64) (int64, error)
	ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID int64) error
	Clear(ctx context.Context, cartID int64) error
}

type CartService struct {
	repo  CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo CartRepository, cache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
	}
}

// GetCart returns the customer's cart items for display, creating the cart
// lazily on first access. Reads go through the cache; concurrent misses for
// the same customer collapse into one database read.
func (s *CartService) GetCart(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		items, err := s.cache.Get(ctx, userID)
		if err == nil {
			return items, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "cart cache get failed", "error", err)
		}

		cartID, err := s.repo.GetOrCreateCart(ctx, userID)
		if err != nil {
			return nil, err
		}

		items, err = s.repo.ListItems(ctx, cartID)
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(setCtx, userID, items); errSet != nil {
				slog.Warn("cart cache set failed", "error", errSet)
			}
		}()

		return items, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]domain.CartItem), nil
}

// AddItem merges the quantity into the customer's cart, creating the cart if
// this is their first item. Product existence is deliberately not checked
// here; an unknown product is rejected when the order is placed.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	cartID, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.AddItem(ctx, cartID, productID, quantity); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// SetQuantity overwrites an item's quantity. Unlike AddItem it never creates
// a cart: a customer without one gets a not-found error.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	cartID, err := s.repo.GetCartID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.SetItemQuantity(ctx, cartID, productID, quantity); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	cartID, err := s.repo.GetCartID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.RemoveItem(ctx, cartID, productID); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	cartID, err := s.repo.GetCartID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Clear(ctx, cartID); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		slog.Warn("cart cache invalidate failed", "error", err)
	}
}
