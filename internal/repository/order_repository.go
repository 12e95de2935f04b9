package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/petalmart/storefront/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OutboxEvent is an order event staged in the same transaction as the order
// itself and published asynchronously.
type OutboxEvent struct {
	ID        int64
	OrderID   int64
	EventType string
	Payload   []byte
}

const EventOrderPlaced = "order.placed"

// CreateOrder converts the requested lines into an order inside one
// transaction: prices are read, the total accumulated, and the order, its
// items and the outbox event written, all between the same BEGIN and COMMIT.
// Any unknown product aborts the whole transaction; no partial order is ever
// visible. The committed order is re-read as a composed aggregate.
func (r *OrderRepository) CreateOrder(ctx context.Context, userID int64, lines []domain.OrderLine) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	productIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
	}

	// One round trip for every price, inside the transaction, so the
	// snapshot and the total cannot diverge from each other.
	priceRows, err := tx.QueryContext(ctx,
		`SELECT id, price FROM products WHERE id = ANY($1)`, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("query product prices: %w", err)
	}

	prices := make(map[int64]decimal.Decimal, len(lines))
	for priceRows.Next() {
		var id int64
		var price decimal.Decimal
		if err := priceRows.Scan(&id, &price); err != nil {
			priceRows.Close()
			return nil, fmt.Errorf("scan product price: %w", err)
		}
		prices[id] = price
	}
	if err := priceRows.Close(); err != nil {
		return nil, fmt.Errorf("close price rows: %w", err)
	}

	total := decimal.Zero
	for _, line := range lines {
		price, ok := prices[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, ErrProductNotFound)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	var orderID int64
	var createdAt time.Time
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, total, status) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		userID, total, domain.OrderStatusPending).Scan(&orderID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	// Batch insert all items in one statement, each with the price read
	// above rather than re-queried.
	placeholders := make([]string, 0, len(lines))
	args := make([]interface{}, 0, len(lines)*3+1)
	args = append(args, orderID)
	for i, line := range lines {
		placeholders = append(placeholders,
			fmt.Sprintf("($1, $%d, $%d, $%d)", i*3+2, i*3+3, i*3+4))
		args = append(args, line.ProductID, line.Quantity, prices[line.ProductID])
	}
	itemsQuery := `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ` +
		strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, itemsQuery, args...); err != nil {
		return nil, fmt.Errorf("insert order items: %w", err)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event_id":   uuid.NewString(),
		"order_id":   orderID,
		"user_id":    userID,
		"total":      total,
		"items":      lines,
		"created_at": createdAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_events (order_id, event_type, payload) VALUES ($1, $2, $3)`,
		orderID, EventOrderPlaced, payload)
	if err != nil {
		return nil, fmt.Errorf("insert order event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order transaction: %w", err)
	}

	return r.GetOrderByID(ctx, orderID)
}

// GetOrderByID fetches the order header and its items with one joined query.
func (r *OrderRepository) GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `SELECT o.id, o.user_id, o.total, o.status, o.created_at,
	                 oi.product_id, oi.quantity, oi.price, p.name, p.image
	          FROM orders o
	          JOIN order_items oi ON oi.order_id = o.id
	          JOIN products p ON p.id = oi.product_id
	          WHERE o.id = $1
	          ORDER BY oi.id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrderRows(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders[0], nil
}

// ListOrdersByUserID returns the customer's orders newest first, each with
// its nested items, composed from a single joined query so the header and
// the items always come from the same read.
func (r *OrderRepository) ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT o.id, o.user_id, o.total, o.status, o.created_at,
	                 oi.product_id, oi.quantity, oi.price, p.name, p.image
	          FROM orders o
	          JOIN order_items oi ON oi.order_id = o.id
	          JOIN products p ON p.id = oi.product_id
	          WHERE o.user_id = $1
	          ORDER BY o.created_at DESC, o.id DESC, oi.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

// scanOrderRows groups joined order/item rows into order aggregates,
// preserving the row order of the first occurrence of each order id.
func scanOrderRows(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	byID := map[int64]*domain.Order{}

	for rows.Next() {
		var (
			header domain.Order
			item   domain.OrderItem
		)
		if err := rows.Scan(
			&header.ID,
			&header.UserID,
			&header.Total,
			&header.Status,
			&header.CreatedAt,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&item.ProductName,
			&item.ProductImage,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		order, ok := byID[header.ID]
		if !ok {
			order = &header
			byID[header.ID] = order
			orders = append(orders, order)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

// GetUnprocessedEvents returns staged order events oldest first.
func (r *OrderRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, order_id, event_type, payload
	          FROM order_events
	          WHERE processed_at IS NULL
	          ORDER BY id
	          LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.EventType, &ev.Payload); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *OrderRepository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE order_events SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event as processed: %w", err)
	}
	return nil
}
