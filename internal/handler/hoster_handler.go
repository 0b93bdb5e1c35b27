package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"event-portal/internal/actions"
	"event-portal/internal/guard"
	"event-portal/internal/model"
	"event-portal/internal/notify"
	"event-portal/internal/transition"
	"event-portal/internal/upstream"
	"event-portal/pkg/apierror"
)

// HosterHandler serves the hoster console. Every list is scoped upstream to
// the logged-in hoster's own id; the guard guarantees an approved hoster
// principal is present before any of these run.
type HosterHandler struct {
	client   *upstream.Client
	runner   *actions.Runner
	notifier notify.Notifier
}

func NewHosterHandler(client *upstream.Client, runner *actions.Runner, notifier notify.Notifier) *HosterHandler {
	return &HosterHandler{client: client, runner: runner, notifier: notifier}
}

var hosterEventsScreen = listScreen{
	path:         "/events",
	collection:   "events",
	pageSize:     10,
	filterKeys:   []string{"status"},
	searchFields: []string{"title", "venue"},
	domain:       transition.Event,
	statusField:  "status",
}

func reservationsScreen(eventID string) listScreen {
	return listScreen{
		path:        "/events/" + eventID + "/reservations",
		collection:  "reservations",
		pageSize:    10,
		filterKeys:  []string{"status"},
		domain:      transition.Reservation,
		statusField: "status",
	}
}

func guestsScreen(eventID string) listScreen {
	return listScreen{
		path:         "/events/" + eventID + "/guests",
		collection:   "guests",
		pageSize:     15,
		filterKeys:   []string{"rsvpStatus", "checkedIn"},
		searchFields: []string{"name", "email"},
		domain:       transition.RSVP,
		statusField:  "rsvpStatus",
		checkIn:      true,
	}
}

// scope pins every hoster-console fetch to the hoster's own records.
func scope(r *http.Request) map[string]string {
	principal, _ := guard.PrincipalFromContext(r.Context())
	if principal == nil {
		return nil
	}
	return map[string]string{"hosterId": principal.Identifier()}
}

func (h *HosterHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	hosterEventsScreen.serve(w, r, h.client, h.notifier, guard.TokenFromContext(r.Context()), scope(r))
}

func (h *HosterHandler) UpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id := chi.URLParam(r, "id")

	payload, err := decodeStatus(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// Cancelling an event is terminal and needs the explicit confirmation
	// step; other transitions are freely reversible.
	if payload.Status == "cancelled" && !confirmed(r) {
		writeError(w, apierror.New("BAD_REQUEST", "cancellation requires confirmation", "confirm", http.StatusBadRequest))
		return
	}

	hosterEventsScreen.mutate(w, r, h.client, h.runner, guard.TokenFromContext(r.Context()), scope(r), actions.Mutation{
		Method:         http.MethodPut,
		Path:           "/events/" + id + "/status",
		Body:           payload,
		SuccessMessage: "Event status updated",
	})
}

func (h *HosterHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	screen := reservationsScreen(chi.URLParam(r, "eventID"))
	screen.serve(w, r, h.client, h.notifier, guard.TokenFromContext(r.Context()), nil)
}

func (h *HosterHandler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	eventID := chi.URLParam(r, "eventID")
	id := chi.URLParam(r, "id")

	payload, err := decodeStatus(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.Status == "cancelled" && !confirmed(r) {
		writeError(w, apierror.New("BAD_REQUEST", "cancellation requires confirmation", "confirm", http.StatusBadRequest))
		return
	}

	reservationsScreen(eventID).mutate(w, r, h.client, h.runner, guard.TokenFromContext(r.Context()), nil, actions.Mutation{
		Method:         http.MethodPut,
		Path:           "/reservations/" + id + "/status",
		Body:           payload,
		SuccessMessage: "Reservation status updated",
	})
}

func (h *HosterHandler) ListGuests(w http.ResponseWriter, r *http.Request) {
	screen := guestsScreen(chi.URLParam(r, "eventID"))
	screen.serve(w, r, h.client, h.notifier, guard.TokenFromContext(r.Context()), nil)
}

func (h *HosterHandler) UpdateGuestRSVP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	eventID := chi.URLParam(r, "eventID")
	id := chi.URLParam(r, "id")

	payload, err := decodeStatus(r)
	if err != nil {
		writeError(w, err)
		return
	}

	guestsScreen(eventID).mutate(w, r, h.client, h.runner, guard.TokenFromContext(r.Context()), nil, actions.Mutation{
		Method:         http.MethodPut,
		Path:           "/guests/" + id + "/rsvp",
		Body:           payload,
		SuccessMessage: "RSVP updated",
	})
}

// CheckInGuest sets the one-way checked-in flag. Whether the guest's RSVP
// actually allows it stays the upstream's call; the gateway only surfaces
// eligibility on the guests list.
func (h *HosterHandler) CheckInGuest(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	id := chi.URLParam(r, "id")

	guestsScreen(eventID).mutate(w, r, h.client, h.runner, guard.TokenFromContext(r.Context()), nil, actions.Mutation{
		Method:         http.MethodPut,
		Path:           "/guests/" + id + "/checkin",
		Body:           model.CheckInRequest{CheckedIn: true},
		SuccessMessage: "Guest checked in",
	})
}

func decodeStatus(r *http.Request) (model.StatusUpdateRequest, error) {
	var payload model.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Status) == "" {
		return payload, apierror.New("BAD_REQUEST", "status is required", "", http.StatusBadRequest)
	}
	return payload, nil
}
