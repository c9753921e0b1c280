package upvotes

import "time"

// Direction is the requested change to a listing's upvote counter
type Direction string

const (
	// DirectionLike applies +1
	DirectionLike Direction = "like"
	// DirectionUnlike applies -1, clamped at zero
	DirectionUnlike Direction = "unlike"
)

// Delta returns the counter delta for the direction
func (d Direction) Delta() int64 {
	switch d {
	case DirectionLike:
		return 1
	case DirectionUnlike:
		return -1
	default:
		return 0
	}
}

// Validate returns ErrInvalidDirection for anything other than like/unlike
func (d Direction) Validate() error {
	if d != DirectionLike && d != DirectionUnlike {
		return ErrInvalidDirection
	}
	return nil
}

// Opposite returns the inverse direction
func (d Direction) Opposite() Direction {
	if d == DirectionLike {
		return DirectionUnlike
	}
	return DirectionLike
}

// ToggleRequest is the input to the single write path
type ToggleRequest struct {
	ListingID string
	Identity  string
	Direction Direction
}

// ToggleResponse carries the authoritative counter value after the toggle.
// Changed is false when a durable like edge already matched the requested
// direction and nothing was applied.
type ToggleResponse struct {
	UpvoteCount int64 `json:"upvoteCount"`
	Changed     bool  `json:"-"`
}

// Edge is the durable "identity has liked listing" relation.
// Only written when unique likes are enforced.
type Edge struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Identity  string    `json:"identity" db:"identity"`
	ListingID string    `json:"listingId" db:"listing_id"`
}
