package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"event-portal/internal/middleware"
	"event-portal/internal/notify"
	"event-portal/internal/upstream"
	"event-portal/pkg/apierror"
)

// EventsHandler serves the public portal: anonymous event browsing and
// reservation creation. No session is involved; upstream calls go out
// without a bearer token.
type EventsHandler struct {
	client   *upstream.Client
	notifier notify.Notifier
}

func NewEventsHandler(client *upstream.Client, notifier notify.Notifier) *EventsHandler {
	return &EventsHandler{client: client, notifier: notifier}
}

var publicEventsScreen = listScreen{
	path:         "/events",
	collection:   "events",
	pageSize:     10,
	filterKeys:   []string{"status", "hosterId"},
	searchFields: []string{"title", "venue"},
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	publicEventsScreen.serve(w, r, h.client, h.notifier, "", nil)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	_, data, err := h.client.Do(r.Context(), http.MethodGet, "/events/"+id, "", nil, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, json.RawMessage(data), nil)
}

// Reserve forwards a reservation request body untouched; the upstream
// service owns all reservation validation.
func (h *EventsHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	sid := middleware.SIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	_, data, err := h.client.Do(r.Context(), http.MethodPost, "/events/"+id+"/reservations", "", nil, body)
	if err != nil {
		h.notifier.Notify(sid, notify.Error, "Failed to create the reservation")
		writeError(w, err)
		return
	}

	h.notifier.Notify(sid, notify.Success, "Reservation created")
	writeSuccess(w, http.StatusCreated, json.RawMessage(data), nil)
}
