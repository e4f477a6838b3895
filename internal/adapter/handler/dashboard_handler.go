package handler

import (
	"net/http"
	"time"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

type DashboardStats struct {
	TotalSalesUSD float64 `json:"total_sales_usd"`
	TotalSalesBS  float64 `json:"total_sales_bs"`
	TodaySalesUSD float64 `json:"today_sales_usd"`
	TotalProducts int     `json:"total_products"`
	TotalUsers    int     `json:"total_users"`
	ExchangeRate  float64 `json:"exchange_rate"`
}

// Dashboard aggregates the landing-page stats. Sellers see their own
// sales only; the user count is admin-only and zero for everyone else.
func (h *HTTPHandler) Dashboard(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	orders, err := h.orders.List(r.Context(), port.OrderFilter{Status: domain.OrderStatusCompleted}, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	stats := DashboardStats{ExchangeRate: h.rates.CurrentRate(r.Context())}
	today := time.Now().In(h.loc).Format("2006-01-02")
	for _, order := range orders {
		stats.TotalSalesUSD += order.TotalUSD
		stats.TotalSalesBS += order.TotalBS
		if order.CreatedAt.In(h.loc).Format("2006-01-02") == today {
			stats.TodaySalesUSD += order.TotalUSD
		}
	}

	products, err := h.catalog.ListProducts(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	stats.TotalProducts = len(products)

	if actor.IsAdmin() {
		users, err := h.auth.ListUsers(r.Context(), actor)
		if err != nil {
			h.writeError(w, err)
			return
		}
		stats.TotalUsers = len(users)
	}

	writeJSON(w, http.StatusOK, stats)
}
