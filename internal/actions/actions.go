// Package actions runs the portal's mutations: one upstream call, a toast,
// and on success a refetch of the originating list with its page and filters
// untouched.
package actions

import (
	"context"
	"errors"
	"net/url"

	"event-portal/internal/listquery"
	"event-portal/internal/notify"
	"event-portal/internal/upstream"
	"event-portal/pkg/apierror"
)

type Runner struct {
	client   *upstream.Client
	notifier notify.Notifier
}

func NewRunner(client *upstream.Client, notifier notify.Notifier) *Runner {
	return &Runner{client: client, notifier: notifier}
}

// Mutation describes one create/update/delete/status-transition call.
type Mutation struct {
	Method         string
	Path           string
	Body           any
	SuccessMessage string
}

// Run performs the mutation. On success: success toast, then exactly one
// refetch of the controller using whatever page/filters it already holds.
// On failure: error toast only, no refetch, no state change.
func (r *Runner) Run(ctx context.Context, sid string, token string, m Mutation, ctrl *listquery.Controller) error {
	_, _, err := r.client.Do(ctx, m.Method, m.Path, token, url.Values{}, m.Body)
	if err != nil {
		r.notifier.Notify(sid, notify.Error, failureMessage(err))
		return err
	}

	r.notifier.Notify(sid, notify.Success, m.SuccessMessage)

	if ctrl != nil {
		if refreshErr := ctrl.Refresh(ctx); refreshErr != nil && !errors.Is(refreshErr, listquery.ErrStale) {
			r.notifier.Notify(sid, notify.Error, "Failed to refresh the list")
		}
	}

	return nil
}

func failureMessage(err error) string {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Details != "" {
			return apiErr.Details
		}
		return apiErr.Message
	}
	return "Request failed"
}
