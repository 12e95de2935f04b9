package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/petalmart/storefront/internal/domain"
)

// ProductRepository is the read-only face of the catalog subsystem: listings
// for the storefront plus the price data the order pipeline snapshots.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT p.id, p.name, p.price, p.image, p.rating, p.in_stock,
	                 COALESCE(p.category_id, 0), COALESCE(c.name, '')
	          FROM products p
	          LEFT JOIN categories c ON c.id = p.category_id
	          ORDER BY p.id DESC`

	return r.queryProducts(ctx, query)
}

// ListPopularProducts returns the six best rated products for the landing
// page.
func (r *ProductRepository) ListPopularProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT p.id, p.name, p.price, p.image, p.rating, p.in_stock,
	                 COALESCE(p.category_id, 0), COALESCE(c.name, '')
	          FROM products p
	          LEFT JOIN categories c ON c.id = p.category_id
	          ORDER BY p.rating DESC, p.id DESC
	          LIMIT 6`

	return r.queryProducts(ctx, query)
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Image,
			&p.Rating,
			&p.InStock,
			&p.CategoryID,
			&p.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) ListReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	query := `SELECT r.id, r.product_id, r.user_id, COALESCE(c.name, ''),
	                 r.rating, r.comment, r.created_at
	          FROM reviews r
	          LEFT JOIN customers c ON c.id = r.user_id
	          WHERE r.product_id = $1
	          ORDER BY r.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.UserName,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return reviews, nil
}
