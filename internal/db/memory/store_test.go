package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
)

func seed(t *testing.T) *Store {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore()
	s.Put(listings.Listing{ID: "a", Name: "Alpha", UpvoteCount: 4, CreatedAt: base})
	s.Put(listings.Listing{ID: "b", Name: "Beta", UpvoteCount: 10, CreatedAt: base.Add(time.Hour)})
	s.Put(listings.Listing{ID: "c", Name: "Gamma", UpvoteCount: 10, CreatedAt: base.Add(2 * time.Hour)})
	return s
}

func ids(items []listings.Listing) []string {
	out := make([]string, len(items))
	for i, l := range items {
		out[i] = l.ID
	}
	return out
}

func TestStore_ListOrders(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	def, err := s.List(ctx, listings.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(def))

	fresh, err := s.List(ctx, listings.ListRequest{Sort: listings.SortFresh})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(fresh))

	popular, err := s.List(ctx, listings.ListRequest{Sort: listings.SortPopular})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(popular))
}

func TestStore_GetByIDReturnsCopy(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	got, err := s.GetByID(ctx, "a")
	require.NoError(t, err)
	got.UpvoteCount = 999

	again, err := s.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(4), again.UpvoteCount)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, listings.ErrListingNotFound)
}

func TestStore_ApplyDeltaClampsAtZero(t *testing.T) {
	s := NewStore()
	s.Put(listings.Listing{ID: "z"})
	ctx := context.Background()

	count, err := s.ApplyDelta(ctx, "z", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = s.ApplyDelta(ctx, "z", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = s.ApplyDelta(ctx, "missing", 1)
	assert.ErrorIs(t, err, listings.ErrListingNotFound)
}

func TestStore_ConcurrentLikes(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ApplyDelta(ctx, "a", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent like failed: %v", err)
	}

	got, err := s.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(4+n), got.UpvoteCount)
}

func TestStore_ToggleEdge(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	count, changed, err := s.ToggleEdge(ctx, "user-a", "a", upvotes.DirectionLike)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(5), count)

	count, changed, err = s.ToggleEdge(ctx, "user-a", "a", upvotes.DirectionLike)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int64(5), count)

	liked, err := s.HasEdge(ctx, "user-a", "a")
	require.NoError(t, err)
	assert.True(t, liked)

	count, changed, err = s.ToggleEdge(ctx, "user-a", "a", upvotes.DirectionUnlike)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(4), count)

	// unliking without an edge is a no-op
	count, changed, err = s.ToggleEdge(ctx, "user-a", "a", upvotes.DirectionUnlike)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int64(4), count)
}

func TestStore_ConcurrentUniqueLikes(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	const users = 20

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		identity := fmt.Sprintf("user-%d", i)
		// every user races two likes; only one may land
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, _ = s.ToggleEdge(ctx, identity, "b", upvotes.DirectionLike)
			}()
		}
	}
	wg.Wait()

	got, err := s.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(10+users), got.UpvoteCount)
}

func TestStore_DeleteDropsEdges(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	_, _, err := s.ToggleEdge(ctx, "user-a", "c", upvotes.DirectionLike)
	require.NoError(t, err)

	s.Delete("c")

	liked, err := s.HasEdge(ctx, "user-a", "c")
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = s.GetByID(ctx, "c")
	assert.ErrorIs(t, err, listings.ErrListingNotFound)
}

func TestSeed(t *testing.T) {
	s := NewStore()
	Seed(s, time.Now())

	popular, err := s.List(context.Background(), listings.ListRequest{Sort: listings.SortPopular})
	require.NoError(t, err)
	require.Len(t, popular, 5)
	assert.Equal(t, "open-weather", popular[0].ID)
	assert.Equal(t, []string{"geo-coder", "fx-rates"}, []string{popular[1].ID, popular[2].ID})
}
