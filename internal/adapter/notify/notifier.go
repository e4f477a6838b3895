// Package notify delivers user-facing notifications for order events.
// Everything here is best-effort: failures are logged and swallowed so a
// broken notification path can never roll back an order transition.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

var log = logging.MustGetLogger("notify")

// Notifier persists notification rows for the interested users. The
// recipients of a kitchen event are the order's seller and every admin.
type Notifier struct {
	notifications port.NotificationRepository
	users         port.UserRepository
}

func NewNotifier(notifications port.NotificationRepository, users port.UserRepository) *Notifier {
	return &Notifier{notifications: notifications, users: users}
}

func (n *Notifier) OrderCreated(ctx context.Context, order *domain.Order) {
	log.Infof("order %s created for %q by seller %s", orderNumber(order.ID), order.CustomerName, order.SellerID)
}

func (n *Notifier) OrderReady(ctx context.Context, order *domain.Order) {
	title := "Pedido listo para entregar"
	message := fmt.Sprintf("El pedido %s de %s está listo para entregar.", orderNumber(order.ID), customerName(order))
	n.deliver(ctx, order, title, message, domain.SeveritySuccess)
}

func (n *Notifier) OrderCancelled(ctx context.Context, order *domain.Order, reason string) {
	title := "Pedido cancelado"
	message := fmt.Sprintf("El pedido %s de %s fue cancelado: %s.", orderNumber(order.ID), customerName(order), reason)
	n.deliver(ctx, order, title, message, domain.SeverityError)
}

func (n *Notifier) deliver(ctx context.Context, order *domain.Order, title, message string, severity domain.Severity) {
	recipients := map[string]bool{order.SellerID: true}
	admins, err := n.users.ListUsersByRole(ctx, domain.RoleAdmin)
	if err != nil {
		log.Errorf("list admins for notification: %v", err)
	}
	for _, admin := range admins {
		recipients[admin.ID] = true
	}

	for userID := range recipients {
		row := &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     title,
			Message:   message,
			Severity:  severity,
			OrderID:   order.ID,
			CreatedAt: time.Now(),
		}
		if err := n.notifications.CreateNotification(ctx, row); err != nil {
			log.Errorf("store notification for user %s: %v", userID, err)
		}
	}
}

func orderNumber(orderID string) string {
	if len(orderID) > 8 {
		orderID = orderID[len(orderID)-8:]
	}
	return "#" + orderID
}

func customerName(order *domain.Order) string {
	if order.CustomerName == "" {
		return "Cliente sin nombre"
	}
	return order.CustomerName
}
