package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mfigueroa/fastfood-pos/internal/adapter/storage"
	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/core/service"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) ListUsersByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *o
	f.orders[o.ID] = &clone
	return nil
}

func (f *fakeOrderRepo) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderID]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
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

func (f *fakeOrderRepo) ListOrderDigests(_ context.Context, _ string) ([]domain.OrderDigest, error) {
	return nil, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, o *domain.Order) error {
	return f.CreateOrder(context.Background(), o)
}

func (f *fakeOrderRepo) ReplaceOrderItems(_ context.Context, o *domain.Order) error {
	return f.CreateOrder(context.Background(), o)
}

type fakeCatalogRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func (f *fakeCatalogRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *p
	f.products[p.ID] = &clone
	return nil
}

func (f *fakeCatalogRepo) UpdateProduct(_ context.Context, p *domain.Product) error {
	return f.CreateProduct(context.Background(), p)
}

func (f *fakeCatalogRepo) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[productID]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeCatalogRepo) ListProducts(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Product
	for _, p := range f.products {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateCategory(context.Context, *domain.Category) error { return nil }

func (f *fakeCatalogRepo) UpdateCategory(context.Context, *domain.Category) error { return nil }

func (f *fakeCatalogRepo) ListCategories(context.Context, bool) ([]domain.Category, error) {
	return nil, nil
}

type fakeClosureRepo struct {
	mu       sync.Mutex
	closures []domain.CashClosure
}

func (f *fakeClosureRepo) CreateClosure(_ context.Context, c *domain.CashClosure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closures = append(f.closures, *c)
	return nil
}

func (f *fakeClosureRepo) GetClosure(_ context.Context, date, scope string) (*domain.CashClosure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.closures {
		if f.closures[i].ClosureDate == date && f.closures[i].ScopeSellerID == scope {
			clone := f.closures[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeClosureRepo) ListClosures(_ context.Context, _, _, _ string) ([]domain.CashClosure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.CashClosure, len(f.closures))
	copy(out, f.closures)
	return out, nil
}

type fakeNotificationRepo struct{}

func (fakeNotificationRepo) CreateNotification(context.Context, *domain.Notification) error {
	return nil
}

func (fakeNotificationRepo) ListNotifications(context.Context, string, int) ([]domain.Notification, error) {
	return nil, nil
}

func (fakeNotificationRepo) MarkRead(context.Context, string) error { return nil }

func (fakeNotificationRepo) MarkAllRead(context.Context, string) error { return nil }

func (fakeNotificationRepo) UnreadCount(context.Context, string) (int, error) { return 0, nil }

type noopNotifier struct{}

func (noopNotifier) OrderCreated(context.Context, *domain.Order) {}

func (noopNotifier) OrderReady(context.Context, *domain.Order) {}

func (noopNotifier) OrderCancelled(context.Context, *domain.Order, string) {}

type fixedRate float64

func (r fixedRate) CurrentRate(context.Context) float64 { return float64(r) }

type stubFeed struct{}

func (stubFeed) Subscribe(ctx context.Context, _ string) (<-chan port.ChangeEvent, error) {
	ch := make(chan port.ChangeEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

type testServer struct {
	mux      *http.ServeMux
	users    *fakeUserRepo
	orders   *fakeOrderRepo
	catalog  *fakeCatalogRepo
	closures *fakeClosureRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := &fakeUserRepo{users: make(map[string]*domain.User)}
	orders := &fakeOrderRepo{orders: make(map[string]*domain.Order)}
	catalog := &fakeCatalogRepo{products: make(map[string]*domain.Product)}
	closures := &fakeClosureRepo{}
	cache := storage.NewMemoryCache()

	h := NewHTTPHandler(
		service.NewAuthService(users, cache),
		service.NewOrderService(orders, noopNotifier{}),
		service.NewCartStore(),
		service.NewCatalogService(catalog),
		service.NewClosureService(orders, closures, cache, time.UTC),
		service.NewNotificationService(fakeNotificationRepo{}),
		fixedRate(36.5),
		stubFeed{},
		time.UTC,
	)
	mux := http.NewServeMux()
	h.Register(mux)

	return &testServer{mux: mux, users: users, orders: orders, catalog: catalog, closures: closures}
}

func (s *testServer) seedUser(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		ID:           "u-" + email,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Role:         role,
	}
	require.NoError(t, s.users.CreateUser(context.Background(), user))
	return user
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/login", "", LoginRequest{Email: email, Password: "secreto"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "ana@pos.local", domain.RoleSeller)

	token := srv.login(t, "ana@pos.local")
	assert.NotEmpty(t, token)

	rec := srv.do(t, http.MethodPost, "/api/login", "", LoginRequest{Email: "ana@pos.local", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUser(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/orders", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "ana@pos.local", domain.RoleSeller)
	token := srv.login(t, "ana@pos.local")

	rec := srv.do(t, http.MethodPost, "/api/orders", token, CreateOrderRequest{
		CustomerName: "Maria",
		Items: []OrderItemRequest{
			{ProductID: "p1", ProductName: "Burger", Quantity: 2, UnitPriceUSD: 5},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.InDelta(t, 10, order.TotalUSD, 1e-9)
	assert.InDelta(t, 10*36.5, order.TotalBS, 1e-9)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	rec = srv.do(t, http.MethodGet, "/api/orders/"+order.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/orders/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderEndpoint_ValidationStatus(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "ana@pos.local", domain.RoleSeller)
	token := srv.login(t, "ana@pos.local")

	rec := srv.do(t, http.MethodPost, "/api/orders", token, CreateOrderRequest{CustomerName: "Maria"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransitionEndpoint_RoleMapping(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "ana@pos.local", domain.RoleSeller)
	srv.seedUser(t, "coci@pos.local", domain.RoleKitchen)
	sellerToken := srv.login(t, "ana@pos.local")
	kitchenToken := srv.login(t, "coci@pos.local")

	rec := srv.do(t, http.MethodPost, "/api/orders", sellerToken, CreateOrderRequest{
		CustomerName: "Maria",
		Items:        []OrderItemRequest{{ProductID: "p1", ProductName: "Burger", Quantity: 1, UnitPriceUSD: 5}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	path := fmt.Sprintf("/api/orders/%s/status", order.ID)

	rec = srv.do(t, http.MethodPost, path, sellerToken, TransitionRequest{Status: domain.OrderStatusReady})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, path, kitchenToken, TransitionRequest{Status: domain.OrderStatusReady})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Repeating the same transition is a conflict, not an internal error.
	rec = srv.do(t, http.MethodPost, path, kitchenToken, TransitionRequest{Status: domain.OrderStatusReady})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCartFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "ana@pos.local", domain.RoleSeller)
	token := srv.login(t, "ana@pos.local")

	require.NoError(t, srv.catalog.CreateProduct(context.Background(), &domain.Product{
		ID: "p1", Name: "Burger", PriceUSD: 5, IsActive: true,
	}))

	rec := srv.do(t, http.MethodPost, "/api/cart/items", token, AddCartItemRequest{ProductID: "p1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPost, "/api/cart/items", token, AddCartItemRequest{ProductID: "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var cart CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.ItemCount)
	assert.InDelta(t, 10, cart.TotalUSD, 1e-9)

	rec = srv.do(t, http.MethodPost, "/api/cart/items", token, AddCartItemRequest{ProductID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, srv.catalog.CreateProduct(context.Background(), &domain.Product{
		ID: "p-retired", Name: "Old Combo", PriceUSD: 9, IsActive: false,
	}))
	rec = srv.do(t, http.MethodPost, "/api/cart/items", token, AddCartItemRequest{ProductID: "p-retired"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/cart/checkout", token, CheckoutRequest{CustomerName: "Maria"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.InDelta(t, 10, order.TotalUSD, 1e-9)

	// Checkout empties the cart.
	rec = srv.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Zero(t, cart.ItemCount)
}

func TestCloseCashEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "jefe@pos.local", domain.RoleAdmin)
	srv.seedUser(t, "ana@pos.local", domain.RoleSeller)
	adminToken := srv.login(t, "jefe@pos.local")
	sellerToken := srv.login(t, "ana@pos.local")

	rec := srv.do(t, http.MethodPost, "/api/orders", sellerToken, CreateOrderRequest{
		CustomerName: "Maria",
		Items:        []OrderItemRequest{{ProductID: "p1", ProductName: "Burger", Quantity: 1, UnitPriceUSD: 5}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	date := time.Now().UTC().Format("2006-01-02")
	body := map[string]string{"date": date}

	// A still-pending order blocks the close.
	rec = srv.do(t, http.MethodPost, "/api/cash/close", adminToken, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
