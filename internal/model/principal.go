package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind is a principal kind. The two portal consoles authenticate
// independently; every session, guard and login route is parameterized by
// kind.
type Kind string

const (
	KindAdmin  Kind = "admin"
	KindHoster Kind = "hoster"
)

// HosterStatusApproved is the only hoster status the guard lets through.
const HosterStatusApproved = "approved"

func (k Kind) TokenKey() string { return string(k) + "Token" }
func (k Kind) DataKey() string  { return string(k) + "Data" }

func (k Kind) LoginPath() string     { return "/" + string(k) + "/login" }
func (k Kind) DashboardPath() string { return "/" + string(k) + "/dashboard" }

// FlexID absorbs the upstream's loose id typing: ids arrive as strings,
// numbers or null depending on the record. The canonical form is a string.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexID(n.String())
		return nil
	}

	return fmt.Errorf("unsupported id value %s", raw)
}

// Principal is the stored account record of a logged-in admin or hoster. It
// is persisted exactly as the upstream returned it; these fields are the
// subset the guard inspects.
type Principal struct {
	ID            FlexID `json:"_id"`
	AltID         FlexID `json:"id"`
	Status        string `json:"status"`
	Username      string `json:"username"`
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
}

// Identifier returns the record's id, preferring _id over id.
func (p *Principal) Identifier() string {
	if id := string(p.ID); id != "" {
		return id
	}
	return string(p.AltID)
}

// ParsePrincipal decodes a stored principal record. Anything that is not a
// JSON object reads as corruption, including the literal null a broken
// login once persisted.
func ParsePrincipal(raw string) (*Principal, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, ErrCorruptPrincipal
	}

	var p Principal
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return nil, ErrCorruptPrincipal
	}

	return &p, nil
}

// ValidFor applies the kind's validity predicate: every principal needs a
// truthy id, and a hoster additionally needs the approved status.
func (p *Principal) ValidFor(kind Kind) bool {
	if p == nil || !truthy(p.Identifier()) {
		return false
	}

	if kind == KindHoster {
		return p.Status == HosterStatusApproved
	}

	return true
}

// truthy mirrors loose boolean coercion: empty strings, "false", "null" and
// numeric zero are all falsy ids.
func truthy(value string) bool {
	v := strings.TrimSpace(value)
	switch v {
	case "", "0", "false", "null":
		return false
	}

	if n, err := strconv.ParseFloat(v, 64); err == nil && n == 0 {
		return false
	}

	return true
}
