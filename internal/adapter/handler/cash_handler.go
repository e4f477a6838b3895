package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/export"
)

// CashReport returns the daily summary, per-product rollup and order
// detail for one date. Sellers are scoped to their own sales.
func (h *HTTPHandler) CashReport(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().In(h.loc).Format("2006-01-02")
	}

	report, err := h.closures.Report(r.Context(), date, h.closureScope(actor))
	if err != nil {
		h.writeError(w, err)
		return
	}

	closure, err := h.closures.Closure(r.Context(), date, h.closureScope(actor))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":    date,
		"report":  report,
		"closure": closure,
	})
}

type CloseCashRequest struct {
	Date  string `json:"date"`
	Notes string `json:"notes,omitempty"`
}

func (h *HTTPHandler) CloseCash(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	var req CloseCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if actor.IsKitchen() {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "kitchen cannot close the register"})
		return
	}
	if req.Date == "" {
		req.Date = time.Now().In(h.loc).Format("2006-01-02")
	}

	closure, err := h.closures.CloseCash(r.Context(), req.Date, h.closureScope(actor), actor, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, closure)
}

func (h *HTTPHandler) ListClosures(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	closures, err := h.closureHistory(r, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closures)
}

// ExportClosures streams the closure history as a CSV download.
func (h *HTTPHandler) ExportClosures(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	closures, err := h.closureHistory(r, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	filename := fmt.Sprintf("cierres_caja_%s.csv", time.Now().In(h.loc).Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteClosuresCSV(w, closures); err != nil {
		log.Errorf("write closures csv: %v", err)
	}
}

func (h *HTTPHandler) closureHistory(r *http.Request, actor *domain.User) ([]domain.CashClosure, error) {
	q := r.URL.Query()
	return h.closures.History(r.Context(), q.Get("from"), q.Get("to"), h.closureScope(actor))
}

// closureScope narrows cash operations to the seller's own sales; the
// admin operates on the whole register.
func (h *HTTPHandler) closureScope(actor *domain.User) string {
	if actor.IsSeller() {
		return actor.ID
	}
	return ""
}
