package session

import (
	"context"

	"event-portal/internal/model"
)

// Entry is one persisted session pair: the upstream bearer token and the
// principal record exactly as the upstream returned it (a JSON string).
type Entry struct {
	Token     string
	Principal string
}

// Store persists session pairs per browser session id. The three principal
// kinds are fully independent: an admin and a hoster session can coexist
// under the same sid, and clearing one never touches the other.
type Store interface {
	// Save overwrites any prior session of the same kind.
	Save(ctx context.Context, sid string, kind model.Kind, token string, principal string) error
	// Load returns ok=false when either half of the pair is missing.
	// A missing session is not an error.
	Load(ctx context.Context, sid string, kind model.Kind) (Entry, bool, error)
	// Clear removes both halves. Clearing an absent session is a no-op.
	Clear(ctx context.Context, sid string, kind model.Kind) error
}

func tokenKey(sid string, kind model.Kind) string { return sid + ":" + kind.TokenKey() }
func dataKey(sid string, kind model.Kind) string  { return sid + ":" + kind.DataKey() }
