// Package listquery keeps a paginated, filtered view of a remote collection
// in sync with user-adjustable controls. Every list screen in the portal is
// one Controller with a screen-specific fetcher and page size.
package listquery

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"event-portal/internal/upstream"
)

// ErrStale marks a fetch whose response arrived after a newer fetch had
// already been issued. Stale results are discarded, never applied.
var ErrStale = errors.New("stale list response discarded")

// Fetcher loads one page of the screen's collection.
type Fetcher func(ctx context.Context, page int, pageSize int, filters map[string]string) (upstream.ListPage, error)

// State is the view-facing snapshot of a controller.
type State struct {
	Page       int
	PageSize   int
	Filters    map[string]string
	Items      []json.RawMessage
	TotalPages int
	Loading    bool
}

type Controller struct {
	mu         sync.Mutex
	fetch      Fetcher
	pageSize   int
	page       int
	filters    map[string]string
	items      []json.RawMessage
	totalPages int
	loading    bool
	generation uint64
}

func NewController(pageSize int, fetch Fetcher) *Controller {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller{
		fetch:      fetch,
		pageSize:   pageSize,
		page:       1,
		filters:    map[string]string{},
		totalPages: 1,
	}
}

func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if page < 1 {
		page = 1
	}
	c.page = page
}

// SetFilter updates one filter value. Any change resets the page to 1 so the
// next fetch cannot request an out-of-range page of the narrowed collection.
func (c *Controller) SetFilter(key string, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filters[key] == value {
		return
	}

	c.filters[key] = value
	c.page = 1
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller) Filters() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyFilters(c.filters)
}

// Refresh issues exactly one fetch for the current page and filters. Each
// call bumps the controller's generation; a response belonging to an older
// generation is discarded so a slow earlier fetch can never overwrite a
// newer one.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	page := c.page
	filters := copyFilters(c.filters)
	c.loading = true
	c.mu.Unlock()

	result, err := c.fetch(ctx, page, c.pageSize, filters)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return ErrStale
	}

	c.loading = false
	if err != nil {
		// Last-known items stay in place; the view falls back to them or to
		// its empty state.
		return err
	}

	c.items = result.Items
	c.totalPages = result.TotalPages
	return nil
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]json.RawMessage, len(c.items))
	copy(items, c.items)

	return State{
		Page:       c.page,
		PageSize:   c.pageSize,
		Filters:    copyFilters(c.filters),
		Items:      items,
		TotalPages: c.totalPages,
		Loading:    c.loading,
	}
}

func copyFilters(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
