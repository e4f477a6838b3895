package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

func (m *MySQLAdapter) CreateNotification(ctx context.Context, n *domain.Notification) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, severity, order_id, is_read, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Message, n.Severity, nullString(n.OrderID),
		n.Read, n.CreatedAt, nullString(n.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, severity, order_id, is_read, created_at, created_by
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var orderID, createdBy sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Severity,
			&orderID, &n.Read, &n.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.OrderID = orderID.String
		n.CreatedBy = createdBy.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (m *MySQLAdapter) MarkRead(ctx context.Context, notificationID string) error {
	if _, err := m.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = ?`, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := m.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
