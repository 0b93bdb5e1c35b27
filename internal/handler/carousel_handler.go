package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"event-portal/internal/guard"
	"event-portal/internal/middleware"
	"event-portal/internal/model"
	"event-portal/internal/notify"
	"event-portal/internal/upstream"
	"event-portal/pkg/apierror"
)

// CarouselHandler manages the homepage carousel, a small bounded collection
// the admin reorders by dragging. Reordering is optimistic: the new order is
// pushed as-is, and on failure the authoritative upstream order replaces the
// local one instead of any inverse patching.
type CarouselHandler struct {
	client   *upstream.Client
	notifier notify.Notifier
}

func NewCarouselHandler(client *upstream.Client, notifier notify.Notifier) *CarouselHandler {
	return &CarouselHandler{client: client, notifier: notifier}
}

type carouselData struct {
	Items   []json.RawMessage `json:"items"`
	Applied bool              `json:"applied"`
}

func (h *CarouselHandler) fetch(r *http.Request, token string) []json.RawMessage {
	_, data, err := h.client.Do(r.Context(), http.MethodGet, "/admin/carousel", token, nil, nil)
	if err != nil {
		return []json.RawMessage{}
	}

	page, err := upstream.DecodeList(data, "events")
	if err != nil || page.Items == nil {
		return []json.RawMessage{}
	}
	return page.Items
}

func (h *CarouselHandler) List(w http.ResponseWriter, r *http.Request) {
	token := guard.TokenFromContext(r.Context())
	writeSuccess(w, http.StatusOK, carouselData{Items: h.fetch(r, token), Applied: true}, nil)
}

func (h *CarouselHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	token := guard.TokenFromContext(r.Context())
	sid := middleware.SIDFromContext(r.Context())

	var payload model.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Events) == 0 {
		writeError(w, apierror.New("BAD_REQUEST", "events with positions are required", "", http.StatusBadRequest))
		return
	}

	_, _, err := h.client.Do(r.Context(), http.MethodPut, "/admin/carousel/order", token, nil, payload)
	applied := err == nil
	if applied {
		h.notifier.Notify(sid, notify.Success, "Carousel order saved")
	} else {
		h.notifier.Notify(sid, notify.Error, "Failed to save the carousel order")
	}

	// Either way the caller gets the authoritative order back.
	writeSuccess(w, http.StatusOK, carouselData{Items: h.fetch(r, token), Applied: applied}, nil)
}

func (h *CarouselHandler) Add(w http.ResponseWriter, r *http.Request) {
	token := guard.TokenFromContext(r.Context())
	sid := middleware.SIDFromContext(r.Context())
	eventID := chi.URLParam(r, "eventId")

	_, _, err := h.client.Do(r.Context(), http.MethodPost, "/admin/carousel", token, nil, map[string]string{"eventId": eventID})
	if err != nil {
		// Duplicate adds and a full carousel both come back as 409.
		h.notifier.Notify(sid, notify.Error, "Failed to add the event to the carousel")
		writeError(w, err)
		return
	}

	h.notifier.Notify(sid, notify.Success, "Event added to the carousel")
	writeSuccess(w, http.StatusOK, carouselData{Items: h.fetch(r, token), Applied: true}, nil)
}

func (h *CarouselHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		writeError(w, apierror.New("BAD_REQUEST", "removal requires confirmation", "confirm", http.StatusBadRequest))
		return
	}

	token := guard.TokenFromContext(r.Context())
	sid := middleware.SIDFromContext(r.Context())
	eventID := chi.URLParam(r, "eventId")

	_, _, err := h.client.Do(r.Context(), http.MethodDelete, "/admin/carousel/"+eventID, token, nil, nil)
	if err != nil {
		h.notifier.Notify(sid, notify.Error, "Failed to remove the event from the carousel")
		writeError(w, err)
		return
	}

	h.notifier.Notify(sid, notify.Success, "Event removed from the carousel")
	writeSuccess(w, http.StatusOK, carouselData{Items: h.fetch(r, token), Applied: true}, nil)
}
