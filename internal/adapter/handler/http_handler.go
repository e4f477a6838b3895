package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/op/go-logging"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/core/service"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

var log = logging.MustGetLogger("http")

type HTTPHandler struct {
	auth          *service.AuthService
	orders        *service.OrderService
	carts         *service.CartStore
	catalog       *service.CatalogService
	closures      *service.ClosureService
	notifications *service.NotificationService
	rates         port.RateProvider
	feed          port.ChangeFeed
	loc           *time.Location
}

func NewHTTPHandler(
	auth *service.AuthService,
	orders *service.OrderService,
	carts *service.CartStore,
	catalog *service.CatalogService,
	closures *service.ClosureService,
	notifications *service.NotificationService,
	rates port.RateProvider,
	feed port.ChangeFeed,
	loc *time.Location,
) *HTTPHandler {
	if loc == nil {
		loc = time.Local
	}
	return &HTTPHandler{
		auth:          auth,
		orders:        orders,
		carts:         carts,
		catalog:       catalog,
		closures:      closures,
		notifications: notifications,
		rates:         rates,
		feed:          feed,
		loc:           loc,
	}
}

// Register wires every route into the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.requireUser(h.Logout))
	mux.HandleFunc("GET /api/me", h.requireUser(h.Me))
	mux.HandleFunc("GET /api/rate", h.requireUser(h.Rate))
	mux.HandleFunc("GET /api/dashboard", h.requireUser(h.Dashboard))

	mux.HandleFunc("GET /api/users", h.requireUser(h.ListUsers))
	mux.HandleFunc("POST /api/users", h.requireUser(h.CreateUser))

	mux.HandleFunc("GET /api/products", h.requireUser(h.ListProducts))
	mux.HandleFunc("POST /api/products", h.requireUser(h.CreateProduct))
	mux.HandleFunc("PUT /api/products/{id}", h.requireUser(h.UpdateProduct))
	mux.HandleFunc("GET /api/categories", h.requireUser(h.ListCategories))
	mux.HandleFunc("POST /api/categories", h.requireUser(h.CreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", h.requireUser(h.DeactivateCategory))

	mux.HandleFunc("GET /api/orders", h.requireUser(h.ListOrders))
	mux.HandleFunc("POST /api/orders", h.requireUser(h.CreateOrder))
	mux.HandleFunc("GET /api/orders/watch", h.requireUser(h.WatchOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.requireUser(h.GetOrder))
	mux.HandleFunc("PUT /api/orders/{id}", h.requireUser(h.EditOrder))
	mux.HandleFunc("POST /api/orders/{id}/status", h.requireUser(h.TransitionOrder))

	mux.HandleFunc("GET /api/cart", h.requireUser(h.GetCart))
	mux.HandleFunc("POST /api/cart/items", h.requireUser(h.AddCartItem))
	mux.HandleFunc("PUT /api/cart/items", h.requireUser(h.UpdateCartItem))
	mux.HandleFunc("POST /api/cart/split", h.requireUser(h.SplitCartItem))
	mux.HandleFunc("POST /api/cart/checkout", h.requireUser(h.Checkout))
	mux.HandleFunc("DELETE /api/cart", h.requireUser(h.ClearCart))

	mux.HandleFunc("GET /api/cash/report", h.requireUser(h.CashReport))
	mux.HandleFunc("POST /api/cash/close", h.requireUser(h.CloseCash))
	mux.HandleFunc("GET /api/closures", h.requireUser(h.ListClosures))
	mux.HandleFunc("GET /api/closures/export", h.requireUser(h.ExportClosures))

	mux.HandleFunc("GET /api/notifications", h.requireUser(h.ListNotifications))
	mux.HandleFunc("POST /api/notifications/read-all", h.requireUser(h.MarkAllNotificationsRead))
	mux.HandleFunc("POST /api/notifications/{id}/read", h.requireUser(h.MarkNotificationRead))
	mux.HandleFunc("GET /api/notifications/unread-count", h.requireUser(h.UnreadNotificationCount))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request, _ *domain.User) {
	if err := h.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request, user *domain.User) {
	writeJSON(w, http.StatusOK, user)
}

func (h *HTTPHandler) Rate(w http.ResponseWriter, r *http.Request, _ *domain.User) {
	writeJSON(w, http.StatusOK, map[string]float64{"exchange_rate": h.rates.CurrentRate(r.Context())})
}

type CreateUserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
}

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email, password and full_name are required"})
		return
	}
	switch req.Role {
	case domain.RoleAdmin, domain.RoleSeller, domain.RoleKitchen:
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown role"})
		return
	}

	user, err := h.auth.CreateUser(r.Context(), actor, req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	users, err := h.auth.ListUsers(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// requireUser authenticates the bearer token and passes the resolved user
// to the wrapped handler.
func (h *HTTPHandler) requireUser(next func(http.ResponseWriter, *http.Request, *domain.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		user, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			h.writeError(w, err)
			return
		}
		next(w, r, user)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service sentinels to HTTP statuses; anything unmapped
// is a 500 with the detail kept server-side.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrOrderNotEditable),
		errors.Is(err, service.ErrPendingOrders),
		errors.Is(err, service.ErrClosureExists),
		errors.Is(err, service.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, service.ErrEmptyCustomerName),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidExchangeRate),
		errors.Is(err, service.ErrEmptyName),
		errors.Is(err, service.ErrInvalidPrice):
		status = http.StatusBadRequest
	default:
		log.Errorf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
