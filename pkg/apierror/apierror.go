package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// FromStatus maps an upstream HTTP status to the coded error surfaced to the
// portal caller. Statuses without a dedicated code collapse to UPSTREAM_ERROR.
func FromStatus(status int, details string) *APIError {
	switch status {
	case http.StatusBadRequest:
		return New("BAD_REQUEST", "Invalid input", details, http.StatusBadRequest)
	case http.StatusUnauthorized:
		return New("UNAUTHORIZED", "Authentication required", details, http.StatusUnauthorized)
	case http.StatusForbidden:
		return New("FORBIDDEN", "Permission denied", details, http.StatusForbidden)
	case http.StatusNotFound:
		return New("NOT_FOUND", "Not found", details, http.StatusNotFound)
	case http.StatusConflict:
		return New("CONFLICT", "Conflict", details, http.StatusConflict)
	default:
		return New("UPSTREAM_ERROR", "Upstream request failed", details, status)
	}
}
