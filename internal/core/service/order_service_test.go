package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

// Mock OrderRepository
type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	failOn string
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "create" {
		return errors.New("boom")
	}
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	clone := *order
	return &clone, nil
}

func (m *mockOrderRepo) ListOrders(_ context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if filter.SellerID != "" && o.SellerID != filter.SellerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && o.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && o.CreatedAt.After(filter.To) {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) ListOrderDigests(_ context.Context, sellerID string) ([]domain.OrderDigest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.OrderDigest
	for _, o := range m.orders {
		if sellerID != "" && o.SellerID != sellerID {
			continue
		}
		out = append(out, domain.OrderDigest{
			ID: o.ID, Status: o.Status, TotalUSD: o.TotalUSD,
			CreatedAt: o.CreatedAt, ItemCount: len(o.Items),
		})
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateOrderStatus(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "update" {
		return errors.New("boom")
	}
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *mockOrderRepo) ReplaceOrderItems(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

// Mock Notifier
type mockNotifier struct {
	mu        sync.Mutex
	created   []string
	ready     []string
	cancelled []string
}

func (m *mockNotifier) OrderCreated(_ context.Context, order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, order.ID)
}

func (m *mockNotifier) OrderReady(_ context.Context, order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = append(m.ready, order.ID)
}

func (m *mockNotifier) OrderCancelled(_ context.Context, order *domain.Order, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, order.ID)
}

var (
	admin   = &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	seller  = &domain.User{ID: "seller-1", Role: domain.RoleSeller}
	seller2 = &domain.User{ID: "seller-2", Role: domain.RoleSeller}
	kitchen = &domain.User{ID: "kitchen-1", Role: domain.RoleKitchen}
)

func newTestOrder(t *testing.T, svc *OrderService) *domain.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), seller.ID, "Maria", []NewOrderItem{
		{ProductID: "p1", ProductName: "Burger", Quantity: 2, UnitPriceUSD: 5},
		{ProductID: "p2", ProductName: "Fries", Quantity: 1, UnitPriceUSD: 2.5},
	}, 36.5)
	require.NoError(t, err)
	return order
}

func TestCreate_ComputesAndFreezesTotals(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, &mockNotifier{})

	order := newTestOrder(t, svc)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.InDelta(t, 12.5, order.TotalUSD, 1e-9)
	assert.InDelta(t, 12.5*36.5, order.TotalBS, 1e-9)
	assert.InDelta(t, 36.5, order.ExchangeRate, 1e-9)

	require.Len(t, order.Items, 2)
	assert.InDelta(t, 10, order.Items[0].TotalPriceUSD, 1e-9)
	assert.InDelta(t, 2.5, order.Items[1].TotalPriceUSD, 1e-9)

	// Invariant: total_bs stays total_usd * creation-time rate.
	stored, err := repo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.InDelta(t, stored.TotalUSD*stored.ExchangeRate, stored.TotalBS, 1e-9)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), &mockNotifier{})
	ctx := context.Background()

	_, err := svc.Create(ctx, seller.ID, "", []NewOrderItem{{ProductID: "p1", Quantity: 1, UnitPriceUSD: 1}}, 36.5)
	assert.ErrorIs(t, err, ErrEmptyCustomerName)

	_, err = svc.Create(ctx, seller.ID, "Maria", nil, 36.5)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.Create(ctx, seller.ID, "Maria", []NewOrderItem{{ProductID: "p1", Quantity: 0, UnitPriceUSD: 1}}, 36.5)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Create(ctx, seller.ID, "Maria", []NewOrderItem{{ProductID: "p1", Quantity: 1, UnitPriceUSD: 1}}, 0)
	assert.ErrorIs(t, err, ErrInvalidExchangeRate)
}

func TestCreate_EmitsNotification(t *testing.T) {
	notifier := &mockNotifier{}
	svc := NewOrderService(newMockOrderRepo(), notifier)

	order := newTestOrder(t, svc)
	assert.Equal(t, []string{order.ID}, notifier.created)
}

func TestTransition_AllowedSet(t *testing.T) {
	// Every (current, target) pair outside the allowed set must fail with
	// ErrInvalidTransition regardless of who asks.
	allowed := map[[2]domain.OrderStatus]bool{
		{domain.OrderStatusPending, domain.OrderStatusReady}:     true,
		{domain.OrderStatusPending, domain.OrderStatusCancelled}: true,
		{domain.OrderStatusReady, domain.OrderStatusCompleted}:   true,
		{domain.OrderStatusReady, domain.OrderStatusCancelled}:   true,
	}
	statuses := []domain.OrderStatus{
		domain.OrderStatusPending, domain.OrderStatusReady,
		domain.OrderStatusCompleted, domain.OrderStatusCancelled,
	}
	targets := []domain.OrderStatus{
		domain.OrderStatusReady, domain.OrderStatusCompleted, domain.OrderStatusCancelled,
	}

	for _, current := range statuses {
		for _, target := range targets {
			repo := newMockOrderRepo()
			svc := NewOrderService(repo, &mockNotifier{})
			order := newTestOrder(t, svc)
			order.Status = current
			require.NoError(t, repo.UpdateOrderStatus(context.Background(), order))

			_, err := svc.Transition(context.Background(), order.ID, target, admin)
			if allowed[[2]domain.OrderStatus{current, target}] && target != domain.OrderStatusReady {
				assert.NoError(t, err, "%s -> %s by admin", current, target)
			} else if !allowed[[2]domain.OrderStatus{current, target}] {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", current, target)
			}
		}
	}
}

func TestTransition_AuditStamps(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, &mockNotifier{})
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	order := newTestOrder(t, svc)

	ready, err := svc.Transition(context.Background(), order.ID, domain.OrderStatusReady, kitchen)
	require.NoError(t, err)
	assert.Equal(t, kitchen.ID, ready.ReadyBy)
	require.NotNil(t, ready.ReadyAt)
	assert.Equal(t, now, *ready.ReadyAt)

	completed, err := svc.Transition(context.Background(), order.ID, domain.OrderStatusCompleted, seller)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, completed.CompletedBy)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, domain.OrderStatusCompleted, completed.Status)
}

func TestTransition_RoleGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("only kitchen marks ready", func(t *testing.T) {
		repo := newMockOrderRepo()
		svc := NewOrderService(repo, &mockNotifier{})
		order := newTestOrder(t, svc)

		_, err := svc.Transition(ctx, order.ID, domain.OrderStatusReady, seller)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Transition(ctx, order.ID, domain.OrderStatusReady, kitchen)
		assert.NoError(t, err)
	})

	t.Run("foreign seller cannot complete", func(t *testing.T) {
		repo := newMockOrderRepo()
		svc := NewOrderService(repo, &mockNotifier{})
		order := newTestOrder(t, svc)
		_, err := svc.Transition(ctx, order.ID, domain.OrderStatusReady, kitchen)
		require.NoError(t, err)

		_, err = svc.Transition(ctx, order.ID, domain.OrderStatusCompleted, seller2)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Transition(ctx, order.ID, domain.OrderStatusCompleted, seller)
		assert.NoError(t, err)
	})

	t.Run("kitchen cancels pending but not ready", func(t *testing.T) {
		repo := newMockOrderRepo()
		svc := NewOrderService(repo, &mockNotifier{})
		order := newTestOrder(t, svc)

		_, err := svc.Transition(ctx, order.ID, domain.OrderStatusReady, kitchen)
		require.NoError(t, err)
		_, err = svc.Transition(ctx, order.ID, domain.OrderStatusCancelled, kitchen)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Transition(ctx, order.ID, domain.OrderStatusCancelled, admin)
		assert.NoError(t, err)
	})
}

func TestTransition_KitchenReadyNotifies(t *testing.T) {
	notifier := &mockNotifier{}
	svc := NewOrderService(newMockOrderRepo(), notifier)
	order := newTestOrder(t, svc)

	_, err := svc.Transition(context.Background(), order.ID, domain.OrderStatusReady, kitchen)
	require.NoError(t, err)
	assert.Equal(t, []string{order.ID}, notifier.ready)
	assert.Empty(t, notifier.cancelled)
}

func TestTransition_NotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), &mockNotifier{})
	_, err := svc.Transition(context.Background(), "missing", domain.OrderStatusReady, kitchen)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestEdit_RecomputesWithOriginalRate(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, &mockNotifier{})
	order := newTestOrder(t, svc)

	edited, err := svc.Edit(context.Background(), order.ID, "Pedro", []NewOrderItem{
		{ProductID: "p1", ProductName: "Burger", Quantity: 3, UnitPriceUSD: 5},
	}, seller)
	require.NoError(t, err)

	assert.Equal(t, "Pedro", edited.CustomerName)
	assert.InDelta(t, 15, edited.TotalUSD, 1e-9)
	// Recomputed at the order's original rate, never a fresh one.
	assert.InDelta(t, 15*36.5, edited.TotalBS, 1e-9)
	assert.Len(t, edited.Items, 1)
}

func TestEdit_OnlyPendingAndOwner(t *testing.T) {
	ctx := context.Background()
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, &mockNotifier{})
	order := newTestOrder(t, svc)

	items := []NewOrderItem{{ProductID: "p1", Quantity: 1, UnitPriceUSD: 5}}

	_, err := svc.Edit(ctx, order.ID, "Pedro", items, seller2)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Transition(ctx, order.ID, domain.OrderStatusReady, kitchen)
	require.NoError(t, err)
	_, err = svc.Edit(ctx, order.ID, "Pedro", items, seller)
	assert.ErrorIs(t, err, ErrOrderNotEditable)
}

func TestList_SellerScopeEnforced(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, &mockNotifier{})
	newTestOrder(t, svc)

	_, err := svc.Create(context.Background(), seller2.ID, "Luis", []NewOrderItem{
		{ProductID: "p1", Quantity: 1, UnitPriceUSD: 4},
	}, 36.5)
	require.NoError(t, err)

	// A seller asking for someone else's orders still only gets their own.
	orders, err := svc.List(context.Background(), port.OrderFilter{SellerID: seller2.ID}, seller)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, seller.ID, orders[0].SellerID)

	all, err := svc.List(context.Background(), port.OrderFilter{}, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestList_StatusFilter(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, &mockNotifier{})
	order := newTestOrder(t, svc)

	_, err := svc.Create(context.Background(), seller.ID, "Luis", []NewOrderItem{
		{ProductID: "p1", Quantity: 1, UnitPriceUSD: 4},
	}, 36.5)
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), order.ID, domain.OrderStatusCancelled, admin)
	require.NoError(t, err)

	pending, err := svc.List(context.Background(), port.OrderFilter{Status: domain.OrderStatusPending}, admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.OrderStatusPending, pending[0].Status)

	cancelled, err := svc.List(context.Background(), port.OrderFilter{Status: domain.OrderStatusCancelled}, admin)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, order.ID, cancelled[0].ID)
}
