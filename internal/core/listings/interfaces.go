package listings

import "context"

// Repository is the persisted listing store, keyed by listing id.
// Listing CRUD lives elsewhere; this subsystem only reads through it.
type Repository interface {
	// GetByID returns a single listing.
	// Returns ErrListingNotFound when the id does not exist.
	GetByID(ctx context.Context, id string) (*Listing, error)

	// List returns the full collection in the requested order.
	List(ctx context.Context, req ListRequest) ([]Listing, error)
}

// Service defines read access to listings for the HTTP layer
type Service interface {
	// GetListing returns a single listing by id
	GetListing(ctx context.Context, id string) (*Listing, error)

	// ListListings returns the full collection used to populate a listing cache entry
	ListListings(ctx context.Context, req ListRequest) ([]Listing, error)
}
