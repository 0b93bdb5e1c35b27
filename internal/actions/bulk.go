package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"event-portal/internal/listquery"
	"event-portal/internal/notify"
)

// BulkResult aggregates a bulk delete: how many ids succeeded and how many
// failed. Partial failure is not rolled back; the follow-up refetch shows
// the surviving rows.
type BulkResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// BulkDelete issues one DELETE per id, all concurrently, and reports the
// outcome as a single aggregate toast before refetching the list once.
func (r *Runner) BulkDelete(ctx context.Context, sid string, token string, pathFor func(id string) string, ids []string, ctrl *listquery.Controller) BulkResult {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result BulkResult
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			_, _, err := r.client.Do(ctx, http.MethodDelete, pathFor(id), token, url.Values{}, nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
			} else {
				result.Deleted++
			}
		}(id)
	}
	wg.Wait()

	switch {
	case result.Failed == 0:
		r.notifier.Notify(sid, notify.Success, fmt.Sprintf("Deleted %d items", result.Deleted))
	default:
		r.notifier.Notify(sid, notify.Error, fmt.Sprintf("Deleted %d of %d items, %d failed", result.Deleted, len(ids), result.Failed))
	}

	if ctrl != nil {
		if err := ctrl.Refresh(ctx); err != nil && !errors.Is(err, listquery.ErrStale) {
			r.notifier.Notify(sid, notify.Error, "Failed to refresh the list")
		}
	}

	return result
}
