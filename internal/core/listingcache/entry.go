package listingcache

import (
	"time"

	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/ranking"
)

// Entry is a snapshot of one surface's listings as of its last full fetch.
//
// Entries are immutable once published by the Cache. An optimistic patch
// produces a new Entry that shares TopTiers with its predecessor, so badges
// reflect the rank as of the last full refresh, not the last toggle.
type Entry struct {
	FetchedAt  time.Time           `json:"fetchedAt"`
	Surface    Surface             `json:"surface"`
	Listings   []listings.Listing  `json:"listings"`
	TopTiers   []ranking.Placement `json:"topTiers"`
	Generation uint64              `json:"generation"`
	// Patches counts optimistic counter patches since the last full set
	Patches int `json:"patches"`
}

// RankStale reports whether counters have moved since TopTiers was computed
func (e *Entry) RankStale() bool {
	return e.Patches > 0
}

// Listing returns the cached listing with the given id
func (e *Entry) Listing(id string) (listings.Listing, bool) {
	if i := e.indexOf(id); i >= 0 {
		return e.Listings[i], true
	}
	return listings.Listing{}, false
}

// TierOf returns the badge computed at the last full set
func (e *Entry) TierOf(id string) (ranking.Tier, bool) {
	return ranking.TierOf(e.TopTiers, id)
}

// TopTierIDs returns the ranked ids, at most ranking.DefaultTierCount
func (e *Entry) TopTierIDs() []string {
	return ranking.IDs(e.TopTiers)
}

func (e *Entry) indexOf(id string) int {
	for i := range e.Listings {
		if e.Listings[i].ID == id {
			return i
		}
	}
	return -1
}

// withCount returns a copy of e with one listing's counter replaced
func (e *Entry) withCount(i int, count int64) *Entry {
	patched := *e
	patched.Listings = make([]listings.Listing, len(e.Listings))
	copy(patched.Listings, e.Listings)
	patched.Listings[i].UpvoteCount = count
	patched.Patches = e.Patches + 1
	return &patched
}
