package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

// MySQLAdapter implements every repository port on one *sql.DB. When a
// ChangePublisher is attached, successful order writes emit a change
// event after commit; publish failures are ignored so a dead feed never
// fails a write.
type MySQLAdapter struct {
	db        *sql.DB
	publisher port.ChangePublisher
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// WithPublisher attaches a best-effort change publisher.
func (m *MySQLAdapter) WithPublisher(p port.ChangePublisher) *MySQLAdapter {
	m.publisher = p
	return m
}

const orderColumns = `id, seller_id, customer_name, total_usd, total_bs, exchange_rate, status,
	created_at, ready_by, ready_at, completed_by, completed_at, cancelled_by, cancelled_at`

// CreateOrder inserts the header and all line items in one transaction,
// so a failed item insert can never leave an orphaned header behind.
func (m *MySQLAdapter) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.SellerID, order.CustomerName, order.TotalUSD, order.TotalBS,
		order.ExchangeRate, order.Status, order.CreatedAt,
		nullString(order.ReadyBy), nullTime(order.ReadyAt),
		nullString(order.CompletedBy), nullTime(order.CompletedAt),
		nullString(order.CancelledBy), nullTime(order.CancelledAt),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := insertItems(ctx, tx, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	m.publish(ctx, port.ChangeInsert, order.ID)
	return nil
}

// GetOrder returns the order with its items, or nil when not found.
func (m *MySQLAdapter) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := m.orderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// ListOrders returns matching orders newest first, items included.
func (m *MySQLAdapter) ListOrders(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	var args []any
	if filter.SellerID != "" {
		query += ` AND seller_id = ?`
		args = append(args, filter.SellerID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, filter.To)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := m.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// ListOrderDigests returns the change-detection projection: id, status,
// USD total, creation time and item count per order.
func (m *MySQLAdapter) ListOrderDigests(ctx context.Context, sellerID string) ([]domain.OrderDigest, error) {
	query := `
		SELECT o.id, o.status, o.total_usd, o.created_at, COUNT(i.id)
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id`
	var args []any
	if sellerID != "" {
		query += ` WHERE o.seller_id = ?`
		args = append(args, sellerID)
	}
	query += ` GROUP BY o.id, o.status, o.total_usd, o.created_at ORDER BY o.created_at DESC`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order digests: %w", err)
	}
	defer rows.Close()

	var digests []domain.OrderDigest
	for rows.Next() {
		var d domain.OrderDigest
		if err := rows.Scan(&d.ID, &d.Status, &d.TotalUSD, &d.CreatedAt, &d.ItemCount); err != nil {
			return nil, fmt.Errorf("scan order digest: %w", err)
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

// UpdateOrderStatus writes the status and all audit columns.
func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, order *domain.Order) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, ready_by = ?, ready_at = ?, completed_by = ?, completed_at = ?,
			cancelled_by = ?, cancelled_at = ?
		WHERE id = ?`,
		order.Status,
		nullString(order.ReadyBy), nullTime(order.ReadyAt),
		nullString(order.CompletedBy), nullTime(order.CompletedAt),
		nullString(order.CancelledBy), nullTime(order.CancelledAt),
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	m.publish(ctx, port.ChangeUpdate, order.ID)
	return nil
}

// ReplaceOrderItems swaps the order's items and totals in one
// transaction. Items not present in order.Items are gone afterwards.
func (m *MySQLAdapter) ReplaceOrderItems(ctx context.Context, order *domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET customer_name = ?, total_usd = ?, total_bs = ? WHERE id = ?`,
		order.CustomerName, order.TotalUSD, order.TotalBS, order.ID,
	)
	if err != nil {
		return fmt.Errorf("update order totals: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, order.ID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := insertItems(ctx, tx, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit item replacement: %w", err)
	}

	m.publish(ctx, port.ChangeUpdate, order.ID)
	return nil
}

func (m *MySQLAdapter) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price_usd,
			total_price_usd, custom_description
		FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		var desc sql.NullString
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPriceUSD, &it.TotalPriceUSD, &desc); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		it.CustomDescription = desc.String
		items = append(items, it)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, items []domain.OrderItem) error {
	for _, it := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity,
				unit_price_usd, total_price_usd, custom_description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity,
			it.UnitPriceUSD, it.TotalPriceUSD, nullString(it.CustomDescription),
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) publish(ctx context.Context, typ port.ChangeType, orderID string) {
	if m.publisher == nil {
		return
	}
	// Best effort only.
	_ = m.publisher.PublishChange(ctx, port.ChangeEvent{Table: "orders", Type: typ, EntityID: orderID})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var readyBy, completedBy, cancelledBy sql.NullString
	var readyAt, completedAt, cancelledAt sql.NullTime
	err := row.Scan(&o.ID, &o.SellerID, &o.CustomerName, &o.TotalUSD, &o.TotalBS,
		&o.ExchangeRate, &o.Status, &o.CreatedAt,
		&readyBy, &readyAt, &completedBy, &completedAt, &cancelledBy, &cancelledAt)
	if err != nil {
		return nil, err
	}
	o.ReadyBy = readyBy.String
	o.ReadyAt = timePtr(readyAt)
	o.CompletedBy = completedBy.String
	o.CompletedAt = timePtr(completedAt)
	o.CancelledBy = cancelledBy.String
	o.CancelledAt = timePtr(cancelledAt)
	return &o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
