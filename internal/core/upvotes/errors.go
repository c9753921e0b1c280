package upvotes

import "errors"

var (
	// ErrUnauthorized indicates the toggle was attempted without an authenticated identity.
	// Callers should send the user to sign-in rather than show an error.
	ErrUnauthorized = errors.New("authentication required")

	// ErrInvalidDirection indicates the direction is not "like" or "unlike"
	ErrInvalidDirection = errors.New("invalid direction: must be 'like' or 'unlike'")

	// ErrInvalidListing indicates the listing id is empty or malformed
	ErrInvalidListing = errors.New("invalid listing id")
)
