package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/core/service"
)

type CartLineResponse struct {
	Product           domain.Product `json:"product"`
	Quantity          int            `json:"quantity"`
	CustomDescription string         `json:"custom_description,omitempty"`
}

type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	TotalUSD  float64            `json:"total_usd"`
	TotalBS   float64            `json:"total_bs"`
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	writeJSON(w, http.StatusOK, h.cartResponse(r, actor))
}

type AddCartItemRequest struct {
	ProductID         string `json:"product_id"`
	CustomDescription string `json:"custom_description,omitempty"`
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.findActiveProduct(r, actor, req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.carts.Cart(actor.ID).Add(*product, req.CustomDescription)
	writeJSON(w, http.StatusOK, h.cartResponse(r, actor))
}

type UpdateCartItemRequest struct {
	ProductID         string `json:"product_id"`
	Quantity          int    `json:"quantity"`
	CustomDescription string `json:"custom_description,omitempty"`
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	h.carts.Cart(actor.ID).UpdateQuantity(req.ProductID, req.Quantity, req.CustomDescription)
	writeJSON(w, http.StatusOK, h.cartResponse(r, actor))
}

type SplitCartItemRequest struct {
	ProductID       string `json:"product_id"`
	FromDescription string `json:"from_description,omitempty"`
	NewDescription  string `json:"new_description"`
}

func (h *HTTPHandler) SplitCartItem(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req SplitCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	h.carts.Cart(actor.ID).SplitUnit(req.ProductID, req.FromDescription, req.NewDescription)
	writeJSON(w, http.StatusOK, h.cartResponse(r, actor))
}

type CheckoutRequest struct {
	CustomerName string `json:"customer_name"`
}

// Checkout submits the seller's cart as a new order at the current
// exchange rate and empties the cart on success.
func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cart := h.carts.Cart(actor.ID)
	rate := h.rates.CurrentRate(r.Context())
	order, err := h.orders.Create(r.Context(), actor.ID, req.CustomerName, cart.OrderItems(), rate)
	if err != nil {
		h.writeError(w, err)
		return
	}
	cart.Clear()
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	h.carts.Cart(actor.ID).Clear()
	writeJSON(w, http.StatusOK, h.cartResponse(r, actor))
}

func (h *HTTPHandler) cartResponse(r *http.Request, actor *domain.User) CartResponse {
	cart := h.carts.Cart(actor.ID)
	lines := cart.Lines()
	resp := CartResponse{
		Lines:     make([]CartLineResponse, 0, len(lines)),
		ItemCount: cart.ItemCount(),
		TotalUSD:  cart.TotalUSD(),
	}
	resp.TotalBS = resp.TotalUSD * h.rates.CurrentRate(r.Context())
	for _, line := range lines {
		resp.Lines = append(resp.Lines, CartLineResponse{
			Product:           line.Product,
			Quantity:          line.Quantity,
			CustomDescription: line.CustomDescription,
		})
	}
	return resp
}

// findActiveProduct resolves a cart addition. Inactive products cannot
// be added, not even by admins.
func (h *HTTPHandler) findActiveProduct(r *http.Request, actor *domain.User, productID string) (*domain.Product, error) {
	product, err := h.catalog.GetProduct(r.Context(), actor, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, service.ErrProductNotFound
	}
	return product, nil
}
