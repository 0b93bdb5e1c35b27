package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"event-portal/internal/session"
)

type contextKey string

const sidContextKey contextKey = "portal_sid"

// Session guarantees every request carries a browser session id, minting a
// cookie for first-time visitors. Anonymous browsing needs the sid too: it
// is what toast notifications are queued under.
func Session(cookies *session.Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, err := cookies.Ensure(w, r)
			if err != nil {
				slog.Warn("failed to issue session cookie", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sidContextKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SIDFromContext returns the browser session id attached by Session.
func SIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sidContextKey).(string)
	return sid
}
