package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/petalmart/storefront/internal/domain"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetCartID returns the id of the customer's cart without creating one.
func (r *CartRepository) GetCartID(ctx context.Context, userID int64) (int64, error) {
	var cartID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCartNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query cart by user id: %w", err)
	}
	return cartID, nil
}

// GetOrCreateCart resolves the customer's cart id, creating the cart row on
// first access. The unique constraint on user_id plus the single upsert
// statement guarantee one cart per customer no matter how many requests race.
func (r *CartRepository) GetOrCreateCart(ctx context.Context, userID int64) (int64, error) {
	query := `INSERT INTO carts (user_id) VALUES ($1)
	          ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	          RETURNING id`

	var cartID int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&cartID); err != nil {
		return 0, fmt.Errorf("get or create cart: %w", err)
	}
	return cartID, nil
}

// ListItems returns the cart's rows joined with live product data for
// display, most recently added first. Rows referencing a product that no
// longer exists in the catalog are dropped by the join; they surface as a
// not-found error at order time instead.
func (r *CartRepository) ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	query := `SELECT ci.id, ci.product_id, ci.quantity, ci.added_at,
	                 p.name, p.image, p.price, p.in_stock
	          FROM cart_items ci
	          JOIN products p ON p.id = ci.product_id
	          WHERE ci.cart_id = $1
	          ORDER BY ci.added_at DESC, ci.id DESC`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Quantity,
			&item.AddedAt,
			&item.ProductName,
			&item.ProductImage,
			&item.Price,
			&item.InStock,
		); err != nil {
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// AddItem inserts a (cart, product) row or increments the existing one. The
// increment happens inside the upsert so two concurrent adds for the same
// product never lose an update.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	query := `INSERT INTO cart_items (cart_id, product_id, quantity)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (cart_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	if _, err := r.db.ExecContext(ctx, query, cartID, productID, quantity); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// SetItemQuantity overwrites the quantity unconditionally. A missing row is
// not an error; callers guard against a missing cart, not a missing item.
func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	query := `UPDATE cart_items SET quantity = $3
	          WHERE cart_id = $1 AND product_id = $2`

	if _, err := r.db.ExecContext(ctx, query, cartID, productID, quantity); err != nil {
		return fmt.Errorf("set cart item quantity: %w", err)
	}
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, productID int64) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	if _, err := r.db.ExecContext(ctx, query, cartID, productID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1`

	if _, err := r.db.ExecContext(ctx, query, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
