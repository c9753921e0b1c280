package apiclient

import (
	"errors"
	"fmt"

	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
)

// Typed errors for API calls. 401 and 404 map onto the core sentinels so
// callers can use the same errors.Is checks on both sides of the wire.
var (
	// ErrBadRequest indicates the server rejected the request (HTTP 400)
	ErrBadRequest = errors.New("bad request")

	// ErrRateLimited indicates the client is sending too fast (HTTP 429)
	ErrRateLimited = errors.New("rate limited")

	// ErrServer indicates an unexpected server-side failure (HTTP 5xx)
	ErrServer = errors.New("server error")

	// ErrNetwork indicates the request never produced an HTTP response
	ErrNetwork = errors.New("network failure")
)

// APIError is the decoded {"error","message"} body of a failed response
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("status %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// wrapAPIError maps a failed response onto a typed error
func wrapAPIError(apiErr *APIError, operation string) error {
	switch {
	case apiErr.StatusCode == 400:
		return fmt.Errorf("%s: %w: %w", operation, ErrBadRequest, apiErr)
	case apiErr.StatusCode == 401:
		return fmt.Errorf("%s: %w: %w", operation, upvotes.ErrUnauthorized, apiErr)
	case apiErr.StatusCode == 404:
		return fmt.Errorf("%s: %w: %w", operation, listings.ErrListingNotFound, apiErr)
	case apiErr.StatusCode == 429:
		return fmt.Errorf("%s: %w: %w", operation, ErrRateLimited, apiErr)
	case apiErr.StatusCode >= 500:
		return fmt.Errorf("%s: %w: %w", operation, ErrServer, apiErr)
	}
	return fmt.Errorf("%s failed: %w", operation, apiErr)
}
