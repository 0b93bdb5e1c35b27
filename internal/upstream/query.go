package upstream

import (
	"net/url"
	"strconv"
	"strings"
)

// BuildQuery renders pagination plus the active filters of a screen into an
// upstream query string. Inactive filters are omitted entirely, never sent
// as empty strings: a status filter left on "all" produces no status
// parameter at all.
func BuildQuery(page int, limit int, filters map[string]string) url.Values {
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	for key, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, "all") {
			continue
		}
		query.Set(key, value)
	}

	return query
}
