// Package transition describes the finite status-transition tables of the
// portal's record domains. The upstream service enforces them; the portal
// only uses the tables to tell a front end which transitions are worth
// offering (and which check-in buttons to enable).
package transition

import (
	"encoding/json"

	loopfsm "github.com/looplab/fsm"

	"event-portal/internal/model"
)

type Domain string

const (
	Hoster      Domain = "hoster"
	Reservation Domain = "reservation"
	Event       Domain = "event"
	RSVP        Domain = "rsvp"
)

const rsvpConfirmed = "confirmed"

type edge struct {
	src string
	dst string
}

var tables = map[Domain][]edge{
	Hoster: {
		{"pending", "approved"},
		{"pending", "rejected"},
		{"approved", "suspended"},
		{"suspended", "approved"},
	},
	Reservation: {
		{"pending", "confirmed"},
		{"pending", "cancelled"},
		{"confirmed", "cancelled"},
		{"cancelled", "confirmed"},
	},
	Event: {
		{"upcoming", "live"},
		{"live", "upcoming"},
		{"live", "ongoing"},
		{"ongoing", "live"},
		{"ongoing", "completed"},
		{"upcoming", "cancelled"},
		{"live", "cancelled"},
		{"ongoing", "cancelled"},
	},
	RSVP: {
		{"pending", "confirmed"},
		{"pending", "declined"},
	},
}

// events holds the per-domain FSM event descriptors, with the event named
// after the destination status and sources sharing a destination grouped
// into one descriptor.
var events = buildEvents()

func buildEvents() map[Domain][]loopfsm.EventDesc {
	out := make(map[Domain][]loopfsm.EventDesc, len(tables))
	for domain, edges := range tables {
		grouped := map[string][]string{}
		order := make([]string, 0, len(edges))
		for _, e := range edges {
			if _, exists := grouped[e.dst]; !exists {
				order = append(order, e.dst)
			}
			grouped[e.dst] = append(grouped[e.dst], e.src)
		}

		descs := make([]loopfsm.EventDesc, 0, len(order))
		for _, dst := range order {
			descs = append(descs, loopfsm.EventDesc{Name: dst, Src: grouped[dst], Dst: dst})
		}
		out[domain] = descs
	}
	return out
}

// Next lists the legal target statuses from the current one. Unknown
// domains or statuses yield no targets.
func Next(domain Domain, current string) []string {
	descs, ok := events[domain]
	if !ok || current == "" {
		return nil
	}

	// looplab/fsm is stateful, so a short-lived machine is built per call,
	// seeded with the record's current status.
	machine := loopfsm.NewFSM(current, descs, nil)
	return machine.AvailableTransitions()
}

// Can reports whether moving from one status to another is a legal edge.
func Can(domain Domain, from string, to string) bool {
	for _, target := range Next(domain, from) {
		if target == to {
			return true
		}
	}
	return false
}

// CanCheckIn reports whether a guest may be checked in: the flag is one-way
// and only settable once the RSVP is confirmed.
func CanCheckIn(rsvpStatus string) bool {
	return rsvpStatus == rsvpConfirmed
}

type recordIDs struct {
	ID    model.FlexID `json:"_id"`
	AltID model.FlexID `json:"id"`
}

// parseRecord extracts the stable key and loose field map of one raw
// upstream record. Records without a usable id are skipped by callers; the
// raw items themselves are never modified.
func parseRecord(item json.RawMessage) (string, map[string]any, bool) {
	var ids recordIDs
	if err := json.Unmarshal(item, &ids); err != nil {
		return "", nil, false
	}

	id := string(ids.ID)
	if id == "" {
		id = string(ids.AltID)
	}
	if id == "" {
		return "", nil, false
	}

	var fields map[string]any
	if err := json.Unmarshal(item, &fields); err != nil {
		return "", nil, false
	}

	return id, fields, true
}

// ForItems computes the legal next statuses for every record on a fetched
// page, keyed by record id. statusField names the field carrying the
// domain's status (status, rsvpStatus).
func ForItems(domain Domain, items []json.RawMessage, statusField string) map[string][]string {
	out := make(map[string][]string, len(items))

	for _, item := range items {
		id, fields, ok := parseRecord(item)
		if !ok {
			continue
		}

		status, _ := fields[statusField].(string)
		if targets := Next(domain, status); len(targets) > 0 {
			out[id] = targets
		}
	}

	return out
}

// CheckInEligibility reports, per record id, whether the check-in action is
// currently available on a fetched guests page.
func CheckInEligibility(items []json.RawMessage) map[string]bool {
	out := make(map[string]bool, len(items))

	for _, item := range items {
		id, fields, ok := parseRecord(item)
		if !ok {
			continue
		}

		status, _ := fields["rsvpStatus"].(string)
		checkedIn, _ := fields["checkedIn"].(bool)
		out[id] = !checkedIn && CanCheckIn(status)
	}

	return out
}
