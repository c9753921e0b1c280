// Package ranking derives tier badges from a listing snapshot.
//
// Tiers are ordinal: the most upvoted listing is Apex, the next Prime, the
// next Zenith. There are no score thresholds. Listings with equal counts keep
// the order they had in the input, so callers control the tie-break by the
// order they fetch in.
package ranking

import (
	"cmp"
	"slices"

	"Apiverse/internal/core/listings"
)

// Tier is a badge label assigned by position
type Tier string

const (
	TierApex   Tier = "apex"
	TierPrime  Tier = "prime"
	TierZenith Tier = "zenith"
)

// DefaultTierCount is the number of badges shown on every surface
const DefaultTierCount = 3

var tiers = [...]Tier{TierApex, TierPrime, TierZenith}

// Placement is one ranked listing
type Placement struct {
	ListingID   string `json:"listingId"`
	Tier        Tier   `json:"tier"`
	UpvoteCount int64  `json:"upvoteCount"`
}

// Rank sorts items by UpvoteCount descending and labels the first tierCount
// of them. tierCount is clamped to [0, 3]. The input slice is not modified.
func Rank(items []listings.Listing, tierCount int) []Placement {
	tierCount = max(0, min(tierCount, len(tiers)))
	if tierCount == 0 || len(items) == 0 {
		return []Placement{}
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(items[b].UpvoteCount, items[a].UpvoteCount)
	})

	n := min(tierCount, len(order))
	placements := make([]Placement, n)
	for pos := 0; pos < n; pos++ {
		item := items[order[pos]]
		placements[pos] = Placement{
			ListingID:   item.ID,
			Tier:        tiers[pos],
			UpvoteCount: item.UpvoteCount,
		}
	}
	return placements
}

// IDs returns the ranked listing ids in order
func IDs(placements []Placement) []string {
	ids := make([]string, len(placements))
	for i, p := range placements {
		ids[i] = p.ListingID
	}
	return ids
}

// TierOf returns the badge for listingID, if it placed
func TierOf(placements []Placement, listingID string) (Tier, bool) {
	for _, p := range placements {
		if p.ListingID == listingID {
			return p.Tier, true
		}
	}
	return "", false
}
