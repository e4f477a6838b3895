package handler

import (
	"net/http"
	"strconv"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

func (h *HTTPHandler) ListNotifications(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications, err := h.notifications.List(r.Context(), actor.ID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *HTTPHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request, _ *domain.User) {
	if err := h.notifications.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *HTTPHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	if err := h.notifications.MarkAllRead(r.Context(), actor.ID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *HTTPHandler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request, actor *domain.User) {
	count, err := h.notifications.UnreadCount(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}
