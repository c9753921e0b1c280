package engagement

import (
	"errors"
	"fmt"

	"Apiverse/internal/core/upvotes"
)

var (
	// ErrSignInRequired means the user must sign in before liking.
	// Surfaces redirect instead of showing an error.
	ErrSignInRequired = errors.New("sign in required")

	// ErrTogglePending is returned when a toggle for the same listing is still in flight
	ErrTogglePending = errors.New("a toggle for this listing is already in flight")

	// ErrUnknownSurface is returned by SurfaceFetcher for surfaces it cannot load
	ErrUnknownSurface = errors.New("unknown surface")
)

// SignInRequiredError carries where to send the user
type SignInRequiredError struct {
	ListingID string
	SignInURL string
}

func (e *SignInRequiredError) Error() string {
	if e.SignInURL == "" {
		return "sign in required to like " + e.ListingID
	}
	return fmt.Sprintf("sign in required to like %s: %s", e.ListingID, e.SignInURL)
}

func (e *SignInRequiredError) Unwrap() error {
	return ErrSignInRequired
}

// ListingGoneError is a non-blocking notice that the listing no longer exists.
// The listing is dropped from each surface at its next refresh.
type ListingGoneError struct {
	Err       error
	ListingID string
}

func (e *ListingGoneError) Error() string {
	return fmt.Sprintf("listing %s is no longer available", e.ListingID)
}

func (e *ListingGoneError) Unwrap() error {
	return e.Err
}

// RetryableError covers network failures and timeouts. Nothing was applied
// locally and nothing is retried automatically.
type RetryableError struct {
	Err       error
	ListingID string
	Direction upvotes.Direction
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("could not %s %s, try again: %v", e.Direction, e.ListingID, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err offers a retry affordance
func IsRetryable(err error) bool {
	var retryable *RetryableError
	return errors.As(err, &retryable)
}
