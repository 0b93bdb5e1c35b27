package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"event-portal/internal/actions"
	"event-portal/internal/listquery"
	"event-portal/internal/middleware"
	"event-portal/internal/notify"
	"event-portal/internal/transition"
	"event-portal/internal/upstream"
)

// listScreen describes one paginated portal screen: where its collection
// lives upstream, which filters its controls expose and which text fields
// its search box matches against.
type listScreen struct {
	path         string
	collection   string
	pageSize     int
	filterKeys   []string
	searchFields []string
	domain       transition.Domain
	statusField  string
	checkIn      bool
}

// listData is the payload of every list response. Transitions, when the
// screen's records have a status domain, map record id to the legal next
// statuses so a front end knows which action buttons to offer.
type listData struct {
	Items       []json.RawMessage   `json:"items"`
	Transitions map[string][]string `json:"transitions,omitempty"`
	CheckIn     map[string]bool     `json:"check_in,omitempty"`
}

// fetcher builds the screen's page loader bound to one request's token and
// any fixed (server-side) filters, such as a hoster's own id.
func (s listScreen) fetcher(client *upstream.Client, token string, fixed map[string]string) listquery.Fetcher {
	return func(ctx context.Context, page int, pageSize int, filters map[string]string) (upstream.ListPage, error) {
		merged := make(map[string]string, len(filters)+len(fixed))
		for k, v := range filters {
			merged[k] = v
		}
		for k, v := range fixed {
			merged[k] = v
		}

		query := upstream.BuildQuery(page, pageSize, merged)
		_, data, err := client.Do(ctx, http.MethodGet, s.path, token, query, nil)
		if err != nil {
			return upstream.ListPage{}, err
		}

		return upstream.DecodeList(data, s.collection)
	}
}

// controllerFor seeds a controller from the request's pager and filter
// params. Filters are applied before the page so an explicit page request
// survives the filter-change reset.
func (s listScreen) controllerFor(r *http.Request, client *upstream.Client, token string, fixed map[string]string) *listquery.Controller {
	ctrl := listquery.NewController(s.pageSize, s.fetcher(client, token, fixed))

	query := r.URL.Query()
	for _, key := range s.filterKeys {
		if value := strings.TrimSpace(query.Get(key)); value != "" {
			ctrl.SetFilter(key, value)
		}
	}

	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		ctrl.SetPage(page)
	}

	return ctrl
}

// serve runs one list fetch and renders the outcome. A failed fetch is a
// toast plus an empty-state page, never an error status: list screens
// always reach a populated, loading or empty state.
func (s listScreen) serve(w http.ResponseWriter, r *http.Request, client *upstream.Client, notifier notify.Notifier, token string, fixed map[string]string) {
	ctrl := s.controllerFor(r, client, token, fixed)

	if err := ctrl.Refresh(r.Context()); err != nil {
		notifier.Notify(middleware.SIDFromContext(r.Context()), notify.Error, "Failed to fetch "+s.collection)
		writeSuccess(w, http.StatusOK, listData{Items: []json.RawMessage{}}, listquery.Meta(1, s.pageSize, 1))
		return
	}

	s.render(w, r, ctrl)
}

// mutate runs one mutation against the screen: the runner performs the
// upstream call, queues the toast and refetches the controller with the
// page/filters the request carried — never page 1 unconditionally. The
// response body is the refreshed page.
func (s listScreen) mutate(w http.ResponseWriter, r *http.Request, client *upstream.Client, runner *actions.Runner, token string, fixed map[string]string, m actions.Mutation) {
	ctrl := s.controllerFor(r, client, token, fixed)
	sid := middleware.SIDFromContext(r.Context())

	if err := runner.Run(r.Context(), sid, token, m, ctrl); err != nil {
		writeError(w, err)
		return
	}

	s.render(w, r, ctrl)
}

// confirmed gates destructive routes: the caller must echo an explicit
// confirmation or the call never reaches upstream.
func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}

func (s listScreen) render(w http.ResponseWriter, r *http.Request, ctrl *listquery.Controller) {
	state := ctrl.Snapshot()

	items := state.Items
	if term := r.URL.Query().Get("search"); term != "" && len(s.searchFields) > 0 {
		items = listquery.Search(items, term, s.searchFields)
	}
	if items == nil {
		items = []json.RawMessage{}
	}

	data := listData{Items: items}
	if s.domain != "" {
		data.Transitions = transition.ForItems(s.domain, items, s.statusField)
	}
	if s.checkIn {
		data.CheckIn = transition.CheckInEligibility(items)
	}

	writeSuccess(w, http.StatusOK, data, listquery.Meta(state.Page, state.PageSize, state.TotalPages))
}
