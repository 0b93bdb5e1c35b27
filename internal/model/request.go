package model

import "encoding/json"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the upstream login response. The principal arrives under a
// kind-specific key (admin or hoster) and is kept raw: the gateway persists
// it verbatim and never normalizes upstream records.
type LoginResult struct {
	Token  string          `json:"token"`
	Admin  json.RawMessage `json:"admin,omitempty"`
	Hoster json.RawMessage `json:"hoster,omitempty"`
}

func (r *LoginResult) PrincipalFor(kind Kind) json.RawMessage {
	if kind == KindAdmin {
		return r.Admin
	}
	return r.Hoster
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type BulkDeleteRequest struct {
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
}

type CarouselPosition struct {
	EventID  string `json:"eventId"`
	Position int    `json:"position"`
}

type ReorderRequest struct {
	Events []CarouselPosition `json:"events"`
}

type CheckInRequest struct {
	CheckedIn bool `json:"checkedIn"`
}
