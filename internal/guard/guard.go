// Package guard gates the portal's protected route trees on session
// validity. One generic implementation serves every principal kind; the
// per-kind differences live entirely in the validity predicate.
package guard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"event-portal/internal/model"
	"event-portal/internal/session"
)

type Decision int

const (
	// Render lets the protected subtree handle the request.
	Render Decision = iota
	// Redirect sends the caller to the kind's login route without touching
	// stored state (nothing was there to begin with).
	Redirect
	// ClearAndRedirect wipes the corrupt or invalid session pair first.
	// Staleness is self-healing: the caller only ever sees the redirect.
	ClearAndRedirect
)

type Result struct {
	Decision  Decision
	Principal *model.Principal
	Token     string
}

type contextKey string

const identityContextKey contextKey = "portal_identity"

type identity struct {
	principal *model.Principal
	token     string
	kind      model.Kind
}

type Guard struct {
	store   session.Store
	cookies *session.Cookies
}

func New(store session.Store, cookies *session.Cookies) *Guard {
	return &Guard{store: store, cookies: cookies}
}

// Evaluate runs the guard state machine for one request:
// absent pair -> Redirect; unparseable or invalid principal -> clear the
// pair, Redirect; otherwise Render with the principal attached.
func (g *Guard) Evaluate(ctx context.Context, sid string, kind model.Kind) Result {
	entry, ok, err := g.store.Load(ctx, sid, kind)
	if err != nil {
		slog.Warn("session load failed", "kind", kind, "error", err)
		return Result{Decision: Redirect}
	}
	if !ok {
		return Result{Decision: Redirect}
	}

	principal, err := model.ParsePrincipal(entry.Principal)
	if err != nil {
		g.clear(ctx, sid, kind)
		return Result{Decision: ClearAndRedirect}
	}

	if !principal.ValidFor(kind) {
		g.clear(ctx, sid, kind)
		return Result{Decision: ClearAndRedirect}
	}

	return Result{Decision: Render, Principal: principal, Token: entry.Token}
}

// Check applies the same validity predicate without any side effects. The
// reverse guard uses it so a bad record on a login route falls through to
// the login form instead of being cleared.
func (g *Guard) Check(ctx context.Context, sid string, kind model.Kind) (*model.Principal, bool) {
	entry, ok, err := g.store.Load(ctx, sid, kind)
	if err != nil || !ok {
		return nil, false
	}

	principal, err := model.ParsePrincipal(entry.Principal)
	if err != nil || !principal.ValidFor(kind) {
		return nil, false
	}

	return principal, true
}

// Require wraps a protected subtree. It re-evaluates on every request, so a
// session wiped elsewhere is caught before any protected handler runs.
func (g *Guard) Require(kind model.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, ok := g.cookies.Read(r)
			if !ok {
				writeDenied(w, r, kind)
				return
			}

			result := g.Evaluate(r.Context(), sid, kind)
			if result.Decision != Render {
				writeDenied(w, r, kind)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity{
				principal: result.Principal,
				token:     result.Token,
				kind:      kind,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectIfAuthed is the reverse guard for login routes: an already valid
// session of the kind skips the login flow and lands on its dashboard.
func (g *Guard) RedirectIfAuthed(kind model.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, ok := g.cookies.Read(r)
			if ok {
				if _, valid := g.Check(r.Context(), sid, kind); valid {
					writeForward(w, r, kind)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) clear(ctx context.Context, sid string, kind model.Kind) {
	if err := g.store.Clear(ctx, sid, kind); err != nil {
		slog.Warn("session clear failed", "kind", kind, "error", err)
	}
}

// PrincipalFromContext returns the principal the guard attached for the
// current protected request.
func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	id, ok := ctx.Value(identityContextKey).(identity)
	if !ok {
		return nil, false
	}
	return id.principal, true
}

// TokenFromContext returns the upstream bearer token for the current
// protected request. Empty outside guarded subtrees.
func TokenFromContext(ctx context.Context) string {
	id, ok := ctx.Value(identityContextKey).(identity)
	if !ok {
		return ""
	}
	return id.token
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeDenied(w http.ResponseWriter, r *http.Request, kind model.Kind) {
	if wantsHTML(r) {
		http.Redirect(w, r, kind.LoginPath(), http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:       "UNAUTHORIZED",
			Message:    "Authentication required",
			RedirectTo: kind.LoginPath(),
		},
	})
}

func writeForward(w http.ResponseWriter, r *http.Request, kind model.Kind) {
	if wantsHTML(r) {
		http.Redirect(w, r, kind.DashboardPath(), http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    map[string]string{"redirect_to": kind.DashboardPath()},
	})
}
