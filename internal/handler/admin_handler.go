package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"event-portal/internal/actions"
	"event-portal/internal/guard"
	"event-portal/internal/listquery"
	"event-portal/internal/middleware"
	"event-portal/internal/model"
	"event-portal/internal/notify"
	"event-portal/internal/transition"
	"event-portal/internal/upstream"
	"event-portal/pkg/apierror"
)

// AdminHandler serves the platform admin console: hoster approvals, the
// full events list with bulk delete, and the homepage carousel.
type AdminHandler struct {
	client   *upstream.Client
	runner   *actions.Runner
	notifier notify.Notifier
}

func NewAdminHandler(client *upstream.Client, runner *actions.Runner, notifier notify.Notifier) *AdminHandler {
	return &AdminHandler{client: client, runner: runner, notifier: notifier}
}

var adminHostersScreen = listScreen{
	path:         "/admin/hosters",
	collection:   "hosters",
	pageSize:     10,
	filterKeys:   []string{"status"},
	searchFields: []string{"companyName", "contactPerson", "email"},
	domain:       transition.Hoster,
	statusField:  "status",
}

var adminEventsScreen = listScreen{
	path:         "/events",
	collection:   "events",
	pageSize:     15,
	filterKeys:   []string{"status", "hosterId"},
	searchFields: []string{"title", "venue"},
	domain:       transition.Event,
	statusField:  "status",
}

func (h *AdminHandler) ListHosters(w http.ResponseWriter, r *http.Request) {
	adminHostersScreen.serve(w, r, h.client, h.notifier, guard.TokenFromContext(r.Context()), nil)
}

func (h *AdminHandler) UpdateHosterStatus(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id := chi.URLParam(r, "id")

	var payload model.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Status) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "status is required", "", http.StatusBadRequest))
		return
	}

	adminHostersScreen.mutate(w, r, h.client, h.runner, guard.TokenFromContext(r.Context()), nil, actions.Mutation{
		Method:         http.MethodPut,
		Path:           "/admin/hosters/" + id + "/status",
		Body:           payload,
		SuccessMessage: "Hoster status updated",
	})
}

func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	adminEventsScreen.serve(w, r, h.client, h.notifier, guard.TokenFromContext(r.Context()), nil)
}

func (h *AdminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		writeError(w, apierror.New("BAD_REQUEST", "deletion requires confirmation", "confirm", http.StatusBadRequest))
		return
	}

	id := chi.URLParam(r, "id")

	adminEventsScreen.mutate(w, r, h.client, h.runner, guard.TokenFromContext(r.Context()), nil, actions.Mutation{
		Method:         http.MethodDelete,
		Path:           "/events/" + id,
		SuccessMessage: "Event deleted",
	})
}

// BulkDeleteEvents issues all per-id deletes concurrently; a partial failure
// is surfaced as one aggregate toast and whatever survived shows up in the
// refetched page.
func (h *AdminHandler) BulkDeleteEvents(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if !payload.Confirm {
		writeError(w, apierror.New("BAD_REQUEST", "deletion requires confirmation", "confirm", http.StatusBadRequest))
		return
	}
	if len(payload.IDs) == 0 {
		writeError(w, apierror.New("BAD_REQUEST", "ids are required", "", http.StatusBadRequest))
		return
	}

	token := guard.TokenFromContext(r.Context())
	sid := middleware.SIDFromContext(r.Context())
	ctrl := adminEventsScreen.controllerFor(r, h.client, token, nil)

	result := h.runner.BulkDelete(r.Context(), sid, token, func(id string) string {
		return "/events/" + id
	}, payload.IDs, ctrl)

	state := ctrl.Snapshot()
	items := state.Items
	if items == nil {
		items = []json.RawMessage{}
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"bulk":  result,
		"items": items,
	}, listquery.Meta(state.Page, state.PageSize, state.TotalPages))
}
