package handler

import (
	"net/http"

	"event-portal/internal/middleware"
	"event-portal/internal/model"
	"event-portal/internal/notify"
)

// NotificationsHandler drains the caller's pending toasts. The front end
// polls this after navigations and mutations; draining is destructive, so
// each toast is delivered at most once.
type NotificationsHandler struct {
	notifier notify.Notifier
}

func NewNotificationsHandler(notifier notify.Notifier) *NotificationsHandler {
	return &NotificationsHandler{notifier: notifier}
}

func (h *NotificationsHandler) Drain(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SIDFromContext(r.Context())

	toasts := h.notifier.Drain(sid)
	writeSuccess(w, http.StatusOK, map[string][]model.Toast{"notifications": toasts}, nil)
}
