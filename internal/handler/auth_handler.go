package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"event-portal/internal/middleware"
	"event-portal/internal/model"
	"event-portal/internal/notify"
	"event-portal/internal/session"
	"event-portal/internal/upstream"
	"event-portal/pkg/apierror"
)

// AuthHandler proxies login to the upstream service and owns the session
// pair lifecycle: created on a successful login response, destroyed on
// logout. One handler serves both principal kinds.
type AuthHandler struct {
	client   *upstream.Client
	store    session.Store
	notifier notify.Notifier
}

func NewAuthHandler(client *upstream.Client, store session.Store, notifier notify.Notifier) *AuthHandler {
	return &AuthHandler{client: client, store: store, notifier: notifier}
}

func (h *AuthHandler) Login(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		sid := middleware.SIDFromContext(r.Context())

		var payload model.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
			return
		}

		payload.Email = strings.TrimSpace(payload.Email)
		if payload.Email == "" || payload.Password == "" {
			writeError(w, apierror.New("BAD_REQUEST", "email and password are required", "", http.StatusBadRequest))
			return
		}

		_, data, err := h.client.Do(r.Context(), http.MethodPost, kind.LoginPath(), "", nil, payload)
		if err != nil {
			h.notifier.Notify(sid, notify.Error, "Login failed")
			writeError(w, err)
			return
		}

		var result model.LoginResult
		if err := json.Unmarshal(data, &result); err != nil {
			writeError(w, apierror.New("UPSTREAM_ERROR", "unexpected login response", "", http.StatusBadGateway))
			return
		}

		principal := result.PrincipalFor(kind)
		if result.Token == "" || len(principal) == 0 {
			writeError(w, apierror.New("UPSTREAM_ERROR", "unexpected login response", "", http.StatusBadGateway))
			return
		}

		// The principal record is persisted verbatim; the guard re-validates
		// it on every protected request.
		if err := h.store.Save(r.Context(), sid, kind, result.Token, string(principal)); err != nil {
			writeError(w, err)
			return
		}

		h.notifier.Notify(sid, notify.Success, "Logged in")
		writeSuccess(w, http.StatusOK, map[string]any{
			string(kind):  json.RawMessage(principal),
			"redirect_to": kind.DashboardPath(),
		}, nil)
	}
}

func (h *AuthHandler) Logout(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := middleware.SIDFromContext(r.Context())

		if err := h.store.Clear(r.Context(), sid, kind); err != nil {
			writeError(w, err)
			return
		}

		h.notifier.Notify(sid, notify.Success, "Logged out")
		writeSuccess(w, http.StatusOK, map[string]string{"redirect_to": kind.LoginPath()}, nil)
	}
}

// LoginForm answers the GET login routes. It only exists so the reverse
// guard has somewhere to fall through to when no valid session is present.
func (h *AuthHandler) LoginForm(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"login": string(kind)}, nil)
	}
}
