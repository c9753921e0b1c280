package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Apiverse/internal/core/listings"
)

func snapshot(counts ...int64) []listings.Listing {
	items := make([]listings.Listing, len(counts))
	for i, c := range counts {
		items[i] = listings.Listing{ID: string(rune('a' + i)), UpvoteCount: c}
	}
	return items
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	items := snapshot(10, 7, 7)

	got := Rank(items, DefaultTierCount)

	require.Len(t, got, 3)
	assert.Equal(t, []Placement{
		{ListingID: "a", Tier: TierApex, UpvoteCount: 10},
		{ListingID: "b", Tier: TierPrime, UpvoteCount: 7},
		{ListingID: "c", Tier: TierZenith, UpvoteCount: 7},
	}, got)
}

func TestRank_SortsDescending(t *testing.T) {
	items := snapshot(1, 9, 3, 12, 0)

	got := Rank(items, DefaultTierCount)

	assert.Equal(t, []string{"d", "b", "c"}, IDs(got))
}

func TestRank_Deterministic(t *testing.T) {
	items := snapshot(5, 5, 5, 2, 8, 8)

	first := Rank(items, DefaultTierCount)
	second := Rank(items, DefaultTierCount)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"e", "f", "a"}, IDs(first))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	items := snapshot(1, 2, 3)
	before := append([]listings.Listing(nil), items...)

	_ = Rank(items, DefaultTierCount)

	assert.Equal(t, before, items)
}

func TestRank_TierCountBounds(t *testing.T) {
	items := snapshot(4, 3, 2, 1)

	tests := []struct {
		name      string
		items     []listings.Listing
		tierCount int
		wantIDs   []string
	}{
		{name: "zero", items: items, tierCount: 0, wantIDs: []string{}},
		{name: "negative", items: items, tierCount: -2, wantIDs: []string{}},
		{name: "one", items: items, tierCount: 1, wantIDs: []string{"a"}},
		{name: "clamped to three labels", items: items, tierCount: 10, wantIDs: []string{"a", "b", "c"}},
		{name: "fewer listings than tiers", items: items[:2], tierCount: 3, wantIDs: []string{"a", "b"}},
		{name: "empty", items: nil, tierCount: 3, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIDs, IDs(Rank(tt.items, tt.tierCount)))
		})
	}
}

func TestTierOf(t *testing.T) {
	placements := Rank(snapshot(3, 9, 1, 4), DefaultTierCount)

	tier, ok := TierOf(placements, "b")
	assert.True(t, ok)
	assert.Equal(t, TierApex, tier)

	tier, ok = TierOf(placements, "c")
	assert.False(t, ok)
	assert.Empty(t, tier)
}
