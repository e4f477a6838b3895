package port

import (
	"context"
	"time"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

// OrderFilter narrows order listings. Zero values mean "no restriction".
type OrderFilter struct {
	SellerID string
	Status   domain.OrderStatus
	From     time.Time
	To       time.Time
}

type OrderRepository interface {
	// CreateOrder persists the header and all line items in one transaction.
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder returns the order with its items, or nil when not found.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// ListOrders returns orders matching the filter, newest first, items included.
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)

	// ListOrderDigests returns the lightweight projection the change poller
	// fingerprints. An empty sellerID means all sellers.
	ListOrderDigests(ctx context.Context, sellerID string) ([]domain.OrderDigest, error)

	// UpdateOrderStatus writes the status and audit columns of an order.
	UpdateOrderStatus(ctx context.Context, order *domain.Order) error

	// ReplaceOrderItems swaps the order's line items and totals in one
	// transaction. Items absent from order.Items are deleted.
	ReplaceOrderItems(ctx context.Context, order *domain.Order) error
}

type CatalogRepository interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error)

	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

type ClosureRepository interface {
	CreateClosure(ctx context.Context, c *domain.CashClosure) error

	// GetClosure returns the closure for one date and scope, or nil when the
	// register has not been closed.
	GetClosure(ctx context.Context, date, scopeSellerID string) (*domain.CashClosure, error)

	// ListClosures returns closures whose date falls in [from, to], newest
	// first. An empty scope lists every closure.
	ListClosures(ctx context.Context, from, to, scopeSellerID string) ([]domain.CashClosure, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}
