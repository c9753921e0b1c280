package listings

import "time"

// Listing is an API directory entry as seen by the engagement subsystem.
// UpvoteCount is never negative and only changes through the upvote toggle.
type Listing struct {
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	ProviderID  string    `json:"providerId" db:"provider_id"`
	BaseURL     string    `json:"baseUrl" db:"base_url"`
	UpvoteCount int64     `json:"upvoteCount" db:"upvote_count"`
}

// Sort selects the server-side ordering of a listing collection.
type Sort string

const (
	// SortDefault returns listings in creation order, oldest first.
	SortDefault Sort = ""
	// SortFresh returns the newest listings first.
	SortFresh Sort = "fresh"
	// SortPopular returns listings by upvote count, highest first.
	// Ties keep creation order.
	SortPopular Sort = "popular"
)

// ListRequest is the input for fetching a full listing collection.
// There is no pagination contract; the whole collection is returned.
type ListRequest struct {
	Sort Sort `json:"sort"`
}

// ListResponse is the body of GET /listings.
type ListResponse struct {
	Listings []Listing `json:"listings"`
}
