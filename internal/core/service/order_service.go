package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

var (
	ErrEmptyCustomerName   = errors.New("customer name is required")
	ErrEmptyOrder          = errors.New("order needs at least one item")
	ErrInvalidQuantity     = errors.New("item quantity must be positive")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrOrderNotFound       = errors.New("order not found")
	ErrForbidden           = errors.New("operation not allowed for this user")
	ErrOrderNotEditable    = errors.New("only pending orders can be edited")
	ErrInvalidExchangeRate = errors.New("exchange rate must be positive")
)

// allowedTransitions is the full transition table of the order state
// machine. completed and cancelled are terminal.
var allowedTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending: {domain.OrderStatusReady, domain.OrderStatusCancelled},
	domain.OrderStatusReady:   {domain.OrderStatusCompleted, domain.OrderStatusCancelled},
}

// NewOrderItem is a line requested for a new or edited order. Unit price
// and product name are the caller's snapshot of the product at order time.
type NewOrderItem struct {
	ProductID         string
	ProductName       string
	Quantity          int
	UnitPriceUSD      float64
	CustomDescription string
}

type OrderService struct {
	orders   port.OrderRepository
	notifier port.Notifier
	now      func() time.Time
}

func NewOrderService(orders port.OrderRepository, notifier port.Notifier) *OrderService {
	return &OrderService{
		orders:   orders,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create validates and persists a new pending order. Totals are computed
// from the items and the given exchange rate, and frozen: TotalBS never
// tracks later rate changes. Header and items are written in a single
// repository transaction.
func (s *OrderService) Create(ctx context.Context, sellerID, customerName string, items []NewOrderItem, exchangeRate float64) (*domain.Order, error) {
	if customerName == "" {
		return nil, ErrEmptyCustomerName
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if exchangeRate <= 0 {
		return nil, ErrInvalidExchangeRate
	}

	order := &domain.Order{
		ID:           uuid.NewString(),
		SellerID:     sellerID,
		CustomerName: customerName,
		ExchangeRate: exchangeRate,
		Status:       domain.OrderStatusPending,
		CreatedAt:    s.now(),
	}

	lines, totalUSD, err := buildItems(order.ID, items)
	if err != nil {
		return nil, err
	}
	order.Items = lines
	order.TotalUSD = totalUSD
	order.TotalBS = totalUSD * exchangeRate

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.notifier.OrderCreated(ctx, order)

	return order, nil
}

// Transition moves an order to target, enforcing the transition table and
// the role guards: kitchen marks pending orders ready or cancelled, the
// admin or the owning seller delivers ready orders and cancels pending or
// ready ones. Audit user and timestamp are stamped for every transition.
// Kitchen-side transitions additionally notify the seller and the admins;
// notification failure never rolls back the state change.
func (s *OrderService) Transition(ctx context.Context, orderID string, target domain.OrderStatus, actor *domain.User) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if !transitionAllowed(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}
	if !transitionPermitted(order, target, actor) {
		return nil, ErrForbidden
	}

	now := s.now()
	order.Status = target
	switch target {
	case domain.OrderStatusReady:
		order.ReadyBy = actor.ID
		order.ReadyAt = &now
	case domain.OrderStatusCompleted:
		order.CompletedBy = actor.ID
		order.CompletedAt = &now
	case domain.OrderStatusCancelled:
		order.CancelledBy = actor.ID
		order.CancelledAt = &now
	}

	if err := s.orders.UpdateOrderStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if actor.IsKitchen() {
		switch target {
		case domain.OrderStatusReady:
			s.notifier.OrderReady(ctx, order)
		case domain.OrderStatusCancelled:
			s.notifier.OrderCancelled(ctx, order, "cancelled by kitchen")
		}
	}

	return order, nil
}

// Edit replaces a pending order's customer name and line items. Totals are
// recomputed with the order's original exchange rate, not a fresh one. Any
// item missing from the new set is deleted.
func (s *OrderService) Edit(ctx context.Context, orderID, customerName string, items []NewOrderItem, actor *domain.User) (*domain.Order, error) {
	if customerName == "" {
		return nil, ErrEmptyCustomerName
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusPending {
		return nil, ErrOrderNotEditable
	}
	if !actor.IsAdmin() && actor.ID != order.SellerID {
		return nil, ErrForbidden
	}

	lines, totalUSD, err := buildItems(order.ID, items)
	if err != nil {
		return nil, err
	}
	order.CustomerName = customerName
	order.Items = lines
	order.TotalUSD = totalUSD
	order.TotalBS = totalUSD * order.ExchangeRate

	if err := s.orders.ReplaceOrderItems(ctx, order); err != nil {
		return nil, fmt.Errorf("replace order items: %w", err)
	}

	return order, nil
}

// Get returns one order with items. Sellers only see their own orders;
// admin and kitchen see everything.
func (s *OrderService) Get(ctx context.Context, orderID string, actor *domain.User) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if actor.IsSeller() && order.SellerID != actor.ID {
		return nil, ErrForbidden
	}
	return order, nil
}

// List returns orders visible to the actor, newest first. The filter's
// SellerID is overridden for sellers so they cannot widen their view.
func (s *OrderService) List(ctx context.Context, filter port.OrderFilter, actor *domain.User) ([]domain.Order, error) {
	if actor.IsSeller() {
		filter.SellerID = actor.ID
	}
	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func transitionAllowed(current, target domain.OrderStatus) bool {
	for _, t := range allowedTransitions[current] {
		if t == target {
			return true
		}
	}
	return false
}

func transitionPermitted(order *domain.Order, target domain.OrderStatus, actor *domain.User) bool {
	switch target {
	case domain.OrderStatusReady:
		return actor.IsKitchen()
	case domain.OrderStatusCompleted:
		return actor.IsAdmin() || actor.ID == order.SellerID
	case domain.OrderStatusCancelled:
		if actor.IsKitchen() {
			return order.Status == domain.OrderStatusPending
		}
		return actor.IsAdmin() || actor.ID == order.SellerID
	}
	return false
}

func buildItems(orderID string, items []NewOrderItem) ([]domain.OrderItem, float64, error) {
	lines := make([]domain.OrderItem, 0, len(items))
	var totalUSD float64
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, 0, ErrInvalidQuantity
		}
		line := domain.OrderItem{
			ID:                uuid.NewString(),
			OrderID:           orderID,
			ProductID:         it.ProductID,
			ProductName:       it.ProductName,
			Quantity:          it.Quantity,
			UnitPriceUSD:      it.UnitPriceUSD,
			TotalPriceUSD:     it.UnitPriceUSD * float64(it.Quantity),
			CustomDescription: it.CustomDescription,
		}
		totalUSD += line.TotalPriceUSD
		lines = append(lines, line)
	}
	return lines, totalUSD, nil
}
