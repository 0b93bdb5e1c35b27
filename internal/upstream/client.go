// Package upstream is the thin HTTP client for the external event-management
// API. It attaches bearer tokens, builds filter query strings and maps
// upstream failures onto the portal's coded error taxonomy.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"event-portal/internal/metrics"
	"event-portal/pkg/apierror"
)

type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// upstreamError is the error body shape the API uses; only the message is
// interesting, everything else passes through raw.
type upstreamError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Do performs one upstream call. The bearer token is attached whenever the
// calling screen's principal kind has one; anonymous calls go out bare.
// A non-2xx status is returned together with a coded error so callers can
// branch on taxonomy without re-reading the status.
func (c *Client) Do(ctx context.Context, method string, path string, token string, query url.Values, body any) (int, json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, apierror.New("BAD_REQUEST", "invalid request body", err.Error(), http.StatusBadRequest)
		}
		reader = bytes.NewReader(encoded)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, apierror.New("UPSTREAM_UNAVAILABLE", "failed to build upstream request", err.Error(), http.StatusBadGateway)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.ObserveUpstream(method, path, 0, time.Since(started))
		return 0, nil, apierror.New("UPSTREAM_UNAVAILABLE", "failed to reach the event service", err.Error(), http.StatusBadGateway)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	metrics.ObserveUpstream(method, path, resp.StatusCode, time.Since(started))
	if err != nil {
		return resp.StatusCode, nil, apierror.New("UPSTREAM_UNAVAILABLE", "failed to read upstream response", err.Error(), http.StatusBadGateway)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		details := ""
		var parsed upstreamError
		if unmarshalErr := json.Unmarshal(payload, &parsed); unmarshalErr == nil {
			if parsed.Message != "" {
				details = parsed.Message
			} else {
				details = parsed.Error
			}
		}
		return resp.StatusCode, payload, apierror.FromStatus(resp.StatusCode, details)
	}

	return resp.StatusCode, payload, nil
}

// ListPage is one fetched page of an upstream collection. Items stay raw:
// the portal never validates or re-sorts upstream records.
type ListPage struct {
	Items      []json.RawMessage
	TotalPages int
}

// DecodeList extracts a collection page from an upstream list response of
// the shape {<collection>: [...], totalPages: N}. A missing collection key
// decodes as an empty page, which the view renders as its empty state.
func DecodeList(data json.RawMessage, collection string) (ListPage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ListPage{}, err
	}

	page := ListPage{TotalPages: 1}

	if rawItems, ok := envelope[collection]; ok {
		if err := json.Unmarshal(rawItems, &page.Items); err != nil {
			return ListPage{}, err
		}
	}

	if rawTotal, ok := envelope["totalPages"]; ok {
		if err := json.Unmarshal(rawTotal, &page.TotalPages); err != nil {
			return ListPage{}, err
		}
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}

	return page, nil
}
