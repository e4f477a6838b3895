package service

import (
	"context"
	"fmt"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

const defaultNotificationLimit = 50

// NotificationService reads and updates the persisted notification rows.
// Writing them happens on the notifier side as a best-effort side effect
// of order transitions.
type NotificationService struct {
	notifications port.NotificationRepository
}

func NewNotificationService(notifications port.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	rows, err := s.notifications.ListNotifications(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rows, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}
