package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-portal/internal/actions"
	"event-portal/internal/config"
	"event-portal/internal/guard"
	"event-portal/internal/handler"
	"event-portal/internal/model"
	"event-portal/internal/notify"
	"event-portal/internal/session"
	"event-portal/internal/upstream"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
	Meta    *model.Meta     `json:"meta"`
}

// newPortal wires a full portal in front of the given fake upstream. The
// returned client carries a cookie jar, so it behaves like one browser.
func newPortal(t *testing.T, upstreamHandler http.Handler) (*httptest.Server, *http.Client) {
	t.Helper()

	upstreamSrv := httptest.NewServer(upstreamHandler)
	t.Cleanup(upstreamSrv.Close)

	cfg := &config.Config{
		RequestTimeout:    5 * time.Second,
		CORSOrigins:       []string{"*"},
		RateLimitRPM:      100000,
		LoginRateLimitRPM: 100000,
	}

	store := session.NewMemoryStore()
	cookies := session.NewCookies("portal_sid", "test-secret")
	client := upstream.New(upstreamSrv.URL, 2*time.Second)
	queue := notify.NewQueue(50)
	runner := actions.NewRunner(client, queue)

	portal := httptest.NewServer(New(cfg, guard.New(store, cookies), cookies, Handlers{
		Auth:          handler.NewAuthHandler(client, store, queue),
		Events:        handler.NewEventsHandler(client, queue),
		Admin:         handler.NewAdminHandler(client, runner, queue),
		Hoster:        handler.NewHosterHandler(client, runner, queue),
		Carousel:      handler.NewCarouselHandler(client, queue),
		Notifications: handler.NewNotificationsHandler(queue),
	}))
	t.Cleanup(portal.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return portal, &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func call(t *testing.T, client *http.Client, method string, rawURL string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, rawURL, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func loginAs(t *testing.T, client *http.Client, portalURL string, kind string) {
	t.Helper()

	status, env := call(t, client, http.MethodPost, portalURL+"/api/v1/"+kind+"/login", model.LoginRequest{
		Email:    "user@example.com",
		Password: "secret",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
}

func drain(t *testing.T, client *http.Client, portalURL string) []model.Toast {
	t.Helper()

	status, env := call(t, client, http.MethodGet, portalURL+"/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, status)

	var payload struct {
		Notifications []model.Toast `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return payload.Notifications
}

func eventPage(count int, totalPages int) string {
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(`{"_id":"e%d","title":"Event %d","venue":"Hall %d","status":"upcoming"}`, i+1, i+1, i+1))
	}
	var buf bytes.Buffer
	buf.WriteString(`{"events":[`)
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(item)
	}
	fmt.Fprintf(&buf, `],"totalPages":%d}`, totalPages)
	return buf.String()
}

func adminLoginUpstream(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok-admin","admin":{"_id":"a1","username":"root"}}`))
	})
}

func TestPublicEventsList(t *testing.T) {
	var gotQuery url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(eventPage(8, 3)))
	})

	portal, client := newPortal(t, mux)

	status, env := call(t, client, http.MethodGet, portal.URL+"/api/v1/events?status=upcoming&page=2", nil)

	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "10", gotQuery.Get("limit"))
	assert.Equal(t, "upcoming", gotQuery.Get("status"))

	var data struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Items, 8)

	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 3, env.Meta.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, env.Meta.Pages)
	assert.True(t, env.Meta.HasPrev)
	assert.True(t, env.Meta.HasNext)
}

func TestPublicEventsSearchIsPageScoped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		// Search must never reach the upstream query.
		assert.False(t, r.URL.Query().Has("search"))
		_, _ = w.Write([]byte(`{"events":[{"_id":"e1","title":"Summer Gala","venue":"Hall"},{"_id":"e2","title":"Meetup","venue":"Loft"}],"totalPages":1}`))
	})

	portal, client := newPortal(t, mux)

	status, env := call(t, client, http.MethodGet, portal.URL+"/api/v1/events?search=gala", nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Items, 1)
	assert.Contains(t, string(data.Items[0]), "Summer Gala")
}

func TestPublicEventsUpstreamDownIsEmptyStatePlusToast(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	portal, client := newPortal(t, mux)

	status, env := call(t, client, http.MethodGet, portal.URL+"/api/v1/events", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var data struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Empty(t, data.Items)

	toasts := drain(t, client, portal.URL)
	require.Len(t, toasts, 1)
	assert.Equal(t, "error", toasts[0].Kind)
	assert.Equal(t, "Failed to fetch events", toasts[0].Message)
}

func TestAdminLoginFlow(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	adminLoginUpstream(mux)
	mux.HandleFunc("GET /admin/hosters", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"hosters":[{"_id":"h1","companyName":"Acme","status":"pending"}],"totalPages":1}`))
	})

	portal, client := newPortal(t, mux)

	t.Run("protected route before login is denied", func(t *testing.T) {
		status, env := call(t, client, http.MethodGet, portal.URL+"/api/v1/admin/hosters", nil)
		require.Equal(t, http.StatusUnauthorized, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
		assert.Equal(t, "/admin/login", env.Error.RedirectTo)
	})

	t.Run("login stores the session and reports the dashboard", func(t *testing.T) {
		status, env := call(t, client, http.MethodPost, portal.URL+"/api/v1/admin/login", model.LoginRequest{Email: "root@example.com", Password: "pw"})
		require.Equal(t, http.StatusOK, status)

		var data struct {
			Admin      json.RawMessage `json:"admin"`
			RedirectTo string          `json:"redirect_to"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "/admin/dashboard", data.RedirectTo)
		assert.JSONEq(t, `{"_id":"a1","username":"root"}`, string(data.Admin))

		toasts := drain(t, client, portal.URL)
		require.Len(t, toasts, 1)
		assert.Equal(t, "Logged in", toasts[0].Message)
	})

	t.Run("protected route carries the stored bearer token", func(t *testing.T) {
		status, env := call(t, client, http.MethodGet, portal.URL+"/api/v1/admin/hosters", nil)
		require.Equal(t, http.StatusOK, status)
		require.True(t, env.Success)
		assert.Equal(t, "Bearer tok-admin", gotAuth)

		var data struct {
			Items       []json.RawMessage   `json:"items"`
			Transitions map[string][]string `json:"transitions"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Len(t, data.Items, 1)
		assert.ElementsMatch(t, []string{"approved", "rejected"}, data.Transitions["h1"])
	})

	t.Run("login route forwards an authenticated session", func(t *testing.T) {
		status, env := call(t, client, http.MethodGet, portal.URL+"/api/v1/admin/login", nil)
		require.Equal(t, http.StatusOK, status)

		var data struct {
			RedirectTo string `json:"redirect_to"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "/admin/dashboard", data.RedirectTo)
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		status, _ := call(t, client, http.MethodPost, portal.URL+"/api/v1/admin/logout", nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = call(t, client, http.MethodGet, portal.URL+"/api/v1/admin/hosters", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestPendingHosterNeverReachesTheConsole(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /hoster/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok-h","hoster":{"_id":"h9","companyName":"Acme","status":"pending"}}`))
	})

	portal, client := newPortal(t, mux)
	loginAs(t, client, portal.URL, "hoster")

	t.Run("browser navigation is redirected to login", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, portal.URL+"/api/v1/hoster/events", nil)
		require.NoError(t, err)
		req.Header.Set("Accept", "text/html")

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/hoster/login", resp.Header.Get("Location"))
	})

	t.Run("api calls get 401 with the login target", func(t *testing.T) {
		status, env := call(t, client, http.MethodGet, portal.URL+"/api/v1/hoster/events", nil)
		require.Equal(t, http.StatusUnauthorized, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "/hoster/login", env.Error.RedirectTo)
	})
}

func TestApprovedHosterListsAreScoped(t *testing.T) {
	var gotQuery url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("POST /hoster/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok-h","hoster":{"_id":"h7","companyName":"Acme","status":"approved"}}`))
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"events":[{"_id":"e1","title":"Own Event","status":"upcoming"}],"totalPages":1}`))
	})

	portal, client := newPortal(t, mux)
	loginAs(t, client, portal.URL, "hoster")

	status, _ := call(t, client, http.MethodGet, portal.URL+"/api/v1/hoster/events", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "h7", gotQuery.Get("hosterId"))
}

func TestGuestListCarriesCheckInEligibility(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /hoster/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok-h","hoster":{"_id":"h7","status":"approved"}}`))
	})
	mux.HandleFunc("GET /events/e1/guests", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"guests":[
			{"_id":"g1","name":"Ana","rsvpStatus":"confirmed","checkedIn":false},
			{"_id":"g2","name":"Bo","rsvpStatus":"confirmed","checkedIn":true},
			{"_id":"g3","name":"Cy","rsvpStatus":"pending","checkedIn":false}
		],"totalPages":1}`))
	})

	portal, client := newPortal(t, mux)
	loginAs(t, client, portal.URL, "hoster")

	status, env := call(t, client, http.MethodGet, portal.URL+"/api/v1/hoster/events/e1/guests", nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		CheckIn map[string]bool `json:"check_in"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.CheckIn["g1"])
	assert.False(t, data.CheckIn["g2"])
	assert.False(t, data.CheckIn["g3"])
}

func TestDeleteEventConfirmGate(t *testing.T) {
	var deleted bool
	var refetchQuery url.Values
	mux := http.NewServeMux()
	adminLoginUpstream(mux)
	mux.HandleFunc("DELETE /events/e5", func(w http.ResponseWriter, _ *http.Request) {
		deleted = true
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		refetchQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"events":[],"totalPages":2}`))
	})

	portal, client := newPortal(t, mux)
	loginAs(t, client, portal.URL, "admin")

	t.Run("without confirmation nothing reaches upstream", func(t *testing.T) {
		status, env := call(t, client, http.MethodDelete, portal.URL+"/api/v1/admin/events/e5", nil)
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
		assert.False(t, deleted)
	})

	t.Run("confirmed delete refetches the page the request was on", func(t *testing.T) {
		status, env := call(t, client, http.MethodDelete, portal.URL+"/api/v1/admin/events/e5?confirm=true&page=2&status=upcoming", nil)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, deleted)

		assert.Equal(t, "2", refetchQuery.Get("page"))
		assert.Equal(t, "15", refetchQuery.Get("limit"))
		assert.Equal(t, "upcoming", refetchQuery.Get("status"))

		require.NotNil(t, env.Meta)
		assert.Equal(t, 2, env.Meta.Page)

		toasts := drain(t, client, portal.URL)
		require.NotEmpty(t, toasts)
		assert.Equal(t, "Event deleted", toasts[len(toasts)-1].Message)
	})
}

func TestBulkDeleteEvents(t *testing.T) {
	mux := http.NewServeMux()
	adminLoginUpstream(mux)
	mux.HandleFunc("DELETE /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "e2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events":[{"_id":"e2","title":"Survivor"}],"totalPages":1}`))
	})

	portal, client := newPortal(t, mux)
	loginAs(t, client, portal.URL, "admin")
	drain(t, client, portal.URL) // flush the login toast

	t.Run("requires confirmation", func(t *testing.T) {
		status, env := call(t, client, http.MethodPost, portal.URL+"/api/v1/admin/events/bulk-delete", model.BulkDeleteRequest{IDs: []string{"e1"}})
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	})

	t.Run("partial failure aggregates into one toast", func(t *testing.T) {
		status, env := call(t, client, http.MethodPost, portal.URL+"/api/v1/admin/events/bulk-delete", model.BulkDeleteRequest{
			IDs:     []string{"e1", "e2", "e3"},
			Confirm: true,
		})
		require.Equal(t, http.StatusOK, status)

		var data struct {
			Bulk  actions.BulkResult `json:"bulk"`
			Items []json.RawMessage  `json:"items"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 2, data.Bulk.Deleted)
		assert.Equal(t, 1, data.Bulk.Failed)
		assert.Len(t, data.Items, 1)

		toasts := drain(t, client, portal.URL)
		require.Len(t, toasts, 1)
		assert.Equal(t, "error", toasts[0].Kind)
		assert.Equal(t, "Deleted 2 of 3 items, 1 failed", toasts[0].Message)
	})
}

func TestCarousel(t *testing.T) {
	var orderSaved bool
	mux := http.NewServeMux()
	adminLoginUpstream(mux)
	mux.HandleFunc("GET /admin/carousel", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events":[{"_id":"e1"},{"_id":"e2"}],"totalPages":1}`))
	})
	mux.HandleFunc("PUT /admin/carousel/order", func(w http.ResponseWriter, _ *http.Request) {
		orderSaved = true
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("POST /admin/carousel", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"carousel is full"}`))
	})

	portal, client := newPortal(t, mux)
	loginAs(t, client, portal.URL, "admin")

	t.Run("reorder pushes the order and returns the authoritative list", func(t *testing.T) {
		status, env := call(t, client, http.MethodPut, portal.URL+"/api/v1/admin/carousel/order", model.ReorderRequest{
			Events: []model.CarouselPosition{{EventID: "e2", Position: 0}, {EventID: "e1", Position: 1}},
		})
		require.Equal(t, http.StatusOK, status)
		assert.True(t, orderSaved)

		var data struct {
			Items   []json.RawMessage `json:"items"`
			Applied bool              `json:"applied"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.True(t, data.Applied)
		assert.Len(t, data.Items, 2)
	})

	t.Run("full carousel conflict is passed through", func(t *testing.T) {
		status, env := call(t, client, http.MethodPost, portal.URL+"/api/v1/admin/carousel/e9", nil)
		require.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "CONFLICT", env.Error.Code)
		assert.Equal(t, "carousel is full", env.Error.Details)
	})

	t.Run("removal requires confirmation", func(t *testing.T) {
		status, _ := call(t, client, http.MethodDelete, portal.URL+"/api/v1/admin/carousel/e1", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestEventStatusCancellationNeedsConfirm(t *testing.T) {
	var gotStatus string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /hoster/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok-h","hoster":{"_id":"h7","status":"approved"}}`))
	})
	mux.HandleFunc("PUT /events/e1/status", func(w http.ResponseWriter, r *http.Request) {
		var payload model.StatusUpdateRequest
		_ = json.NewDecoder(r.Body).Decode(&payload)
		gotStatus = payload.Status
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events":[],"totalPages":1}`))
	})

	portal, client := newPortal(t, mux)
	loginAs(t, client, portal.URL, "hoster")

	status, _ := call(t, client, http.MethodPut, portal.URL+"/api/v1/hoster/events/e1/status", model.StatusUpdateRequest{Status: "cancelled"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, gotStatus)

	status, _ = call(t, client, http.MethodPut, portal.URL+"/api/v1/hoster/events/e1/status?confirm=true", model.StatusUpdateRequest{Status: "cancelled"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cancelled", gotStatus)

	status, _ = call(t, client, http.MethodPut, portal.URL+"/api/v1/hoster/events/e1/status", model.StatusUpdateRequest{Status: "live"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "live", gotStatus)
}
