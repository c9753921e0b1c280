package upvotes

import "context"

// Service is the Toggle Endpoint: the only write path for upvote counters
type Service interface {
	// Toggle applies +1 (like) or -1 (unlike, floored at zero) to the listing's
	// counter and returns the authoritative new value.
	// Returns ErrUnauthorized when the request carries no identity and
	// listings.ErrListingNotFound when the listing does not exist.
	Toggle(ctx context.Context, req ToggleRequest) (*ToggleResponse, error)
}

// Repository is the durable Counter Store
type Repository interface {
	// ApplyDelta adds delta to the listing's counter as a single atomic
	// read-modify-write, clamped at zero, and returns the new value.
	// Returns listings.ErrListingNotFound when the listing does not exist.
	ApplyDelta(ctx context.Context, listingID string, delta int64) (int64, error)

	// ToggleEdge inserts (like) or deletes (unlike) the (identity, listing) edge
	// and applies the matching delta in the same transaction.
	// When the edge is already in the requested state nothing is applied,
	// changed is false and count is the current value.
	ToggleEdge(ctx context.Context, identity, listingID string, direction Direction) (count int64, changed bool, err error)

	// HasEdge reports whether identity has a durable like on the listing
	HasEdge(ctx context.Context, identity, listingID string) (bool, error)
}
