package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceUSD    float64 `json:"price_usd"`
	ImageURL    string  `json:"image_url,omitempty"`
	CategoryID  string  `json:"category_id,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), actor, domain.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceUSD:    req.PriceUSD,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product, err := h.catalog.UpdateProduct(r.Context(), actor, domain.Product{
		ID:          r.PathValue("id"),
		Name:        req.Name,
		Description: req.Description,
		PriceUSD:    req.PriceUSD,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		IsActive:    active,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	products, err := h.catalog.ListProducts(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), actor, domain.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *HTTPHandler) DeactivateCategory(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	if err := h.catalog.DeactivateCategory(r.Context(), actor, r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	categories, err := h.catalog.ListCategories(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
