package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

const closureColumns = `id, closure_date, scope_seller_id, closed_by, closed_by_name, closed_at,
	total_sales_usd, total_sales_bs, total_orders, completed_orders, cancelled_orders,
	pending_orders, exchange_rate_avg, notes`

func (m *MySQLAdapter) CreateClosure(ctx context.Context, c *domain.CashClosure) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cash_closures (`+closureColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ClosureDate, nullString(c.ScopeSellerID), c.ClosedBy, c.ClosedByName, c.ClosedAt,
		c.TotalSalesUSD, c.TotalSalesBS, c.TotalOrders, c.CompletedOrders, c.CancelledOrders,
		c.PendingOrders, c.ExchangeRateAvg, nullString(c.Notes),
	)
	if err != nil {
		return fmt.Errorf("insert cash closure: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetClosure(ctx context.Context, date, scopeSellerID string) (*domain.CashClosure, error) {
	query := `SELECT ` + closureColumns + ` FROM cash_closures WHERE closure_date = ?`
	args := []any{date}
	if scopeSellerID == "" {
		query += ` AND scope_seller_id IS NULL`
	} else {
		query += ` AND scope_seller_id = ?`
		args = append(args, scopeSellerID)
	}

	c, err := scanClosure(m.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cash closure: %w", err)
	}
	return c, nil
}

func (m *MySQLAdapter) ListClosures(ctx context.Context, from, to, scopeSellerID string) ([]domain.CashClosure, error) {
	query := `SELECT ` + closureColumns + ` FROM cash_closures WHERE 1=1`
	var args []any
	if from != "" {
		query += ` AND closure_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND closure_date <= ?`
		args = append(args, to)
	}
	if scopeSellerID != "" {
		query += ` AND scope_seller_id = ?`
		args = append(args, scopeSellerID)
	}
	query += ` ORDER BY closure_date DESC`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cash closures: %w", err)
	}
	defer rows.Close()

	var closures []domain.CashClosure
	for rows.Next() {
		c, err := scanClosure(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash closure: %w", err)
		}
		closures = append(closures, *c)
	}
	return closures, rows.Err()
}

func scanClosure(row rowScanner) (*domain.CashClosure, error) {
	var c domain.CashClosure
	var scope, notes sql.NullString
	err := row.Scan(&c.ID, &c.ClosureDate, &scope, &c.ClosedBy, &c.ClosedByName, &c.ClosedAt,
		&c.TotalSalesUSD, &c.TotalSalesBS, &c.TotalOrders, &c.CompletedOrders,
		&c.CancelledOrders, &c.PendingOrders, &c.ExchangeRateAvg, &notes)
	if err != nil {
		return nil, err
	}
	c.ScopeSellerID = scope.String
	c.Notes = notes.String
	return &c, nil
}
