package port

import (
	"context"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

// Notifier delivers user-facing notifications as a side effect of order
// events. Delivery is best-effort: implementations log failures and
// never propagate them, so a failed notification cannot roll back the
// state change that triggered it.
type Notifier interface {
	OrderCreated(ctx context.Context, order *domain.Order)
	OrderReady(ctx context.Context, order *domain.Order)
	OrderCancelled(ctx context.Context, order *domain.Order, reason string)
}
