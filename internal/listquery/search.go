package listquery

import (
	"encoding/json"
	"strings"
)

// Search narrows an already-fetched page by a case-insensitive substring
// match over a fixed set of text fields. It is page-scoped: it never
// requests more data and never changes totalPages.
func Search(items []json.RawMessage, term string, fields []string) []json.RawMessage {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}

	matched := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		var record map[string]any
		if err := json.Unmarshal(item, &record); err != nil {
			continue
		}

		for _, field := range fields {
			value, ok := record[field].(string)
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(value), term) {
				matched = append(matched, item)
				break
			}
		}
	}

	return matched
}
