package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/core/service"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

type OrderItemRequest struct {
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name"`
	Quantity          int     `json:"quantity"`
	UnitPriceUSD      float64 `json:"unit_price_usd"`
	CustomDescription string  `json:"custom_description,omitempty"`
}

type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name"`
	Items        []OrderItemRequest `json:"items"`
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	rate := h.rates.CurrentRate(r.Context())
	order, err := h.orders.Create(r.Context(), actor.ID, req.CustomerName, toNewItems(req.Items), rate)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	order, err := h.orders.Get(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	filter := port.OrderFilter{}
	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		filter.Status = domain.OrderStatus(status)
	}
	if date := q.Get("date"); date != "" {
		from, to, err := service.DayRange(date, h.loc)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, expected YYYY-MM-DD"})
			return
		}
		filter.From, filter.To = from, to
	}
	if sellerID := q.Get("seller_id"); sellerID != "" {
		filter.SellerID = sellerID
	}

	orders, err := h.orders.List(r.Context(), filter, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type TransitionRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *HTTPHandler) TransitionOrder(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orders.Transition(r.Context(), r.PathValue("id"), req.Status, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type EditOrderRequest struct {
	CustomerName string             `json:"customer_name"`
	Items        []OrderItemRequest `json:"items"`
}

func (h *HTTPHandler) EditOrder(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req EditOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orders.Edit(r.Context(), r.PathValue("id"), req.CustomerName, toNewItems(req.Items), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// WatchOrders streams change events for the order collection as
// server-sent events until the client disconnects.
func (h *HTTPHandler) WatchOrders(w http.ResponseWriter, r *http.Request, _ *domain.User) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	events, err := h.feed.Subscribe(r.Context(), "orders")
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func toNewItems(items []OrderItemRequest) []service.NewOrderItem {
	out := make([]service.NewOrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, service.NewOrderItem{
			ProductID:         it.ProductID,
			ProductName:       it.ProductName,
			Quantity:          it.Quantity,
			UnitPriceUSD:      it.UnitPriceUSD,
			CustomDescription: it.CustomDescription,
		})
	}
	return out
}
