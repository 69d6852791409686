package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/gegenstand/internal/service"
)

// NotificationsHandler handles the reminder feed.
type NotificationsHandler struct {
	Notifications *service.Notifications
}

// List handles GET /notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	unseenOnly := false
	if v := r.URL.Query().Get("unseenOnly"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "unseenOnly must be true or false")
			return
		}
		unseenOnly = parsed
	}

	notifications, err := h.Notifications.List(r.Context(), unseenOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, notifications)
}

// MarkSeen handles PUT /notifications/{id}/seen.
func (h *NotificationsHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.Notifications.MarkSeen(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, n)
}
