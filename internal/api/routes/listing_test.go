package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Apiverse/internal/api/middleware"
	"Apiverse/internal/apiclient"
	"Apiverse/internal/core/engagement"
	"Apiverse/internal/core/listingcache"
	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/preferences"
	"Apiverse/internal/core/upvotes"
	"Apiverse/internal/db/memory"
	"Apiverse/internal/metrics"
)

var routeSecret = []byte("route-test-secret-32-bytes-long!!!")

func newTestServer(t *testing.T, opts upvotes.Options) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	store.Put(listings.Listing{ID: "A", Name: "Weather API", UpvoteCount: 4, CreatedAt: created})
	store.Put(listings.Listing{ID: "B", Name: "Maps API", UpvoteCount: 7, CreatedAt: created.Add(time.Hour)})

	r := chi.NewRouter()
	RegisterListingRoutes(r,
		listings.NewService(store),
		upvotes.NewService(store, opts, nil),
		middleware.NewIdentityAuthMiddleware(routeSecret, nil, ""),
		nil,
		metrics.New("test"),
	)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := middleware.IssueToken(routeSecret, subject, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestListingRoutes_ToggleScenario(t *testing.T) {
	srv, store := newTestServer(t, upvotes.Options{})
	ctx := context.Background()

	anonymous := apiclient.New(srv.URL)
	_, err := anonymous.Like(ctx, "A")
	assert.ErrorIs(t, err, upvotes.ErrUnauthorized)

	a, err := store.GetByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(4), a.UpvoteCount)

	client := apiclient.New(srv.URL, apiclient.WithToken(token(t, "user-1")))
	count, err := client.Like(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	count, err = client.Unlike(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	_, err = client.Like(ctx, "nope")
	assert.ErrorIs(t, err, listings.ErrListingNotFound)
}

func TestListingRoutes_UnlikeFloorsAtZero(t *testing.T) {
	srv, store := newTestServer(t, upvotes.Options{})
	store.Put(listings.Listing{ID: "Z", Name: "New API"})

	client := apiclient.New(srv.URL, apiclient.WithToken(token(t, "user-1")))
	count, err := client.Unlike(context.Background(), "Z")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListingRoutes_ConcurrentLikes(t *testing.T) {
	srv, store := newTestServer(t, upvotes.Options{})
	ctx := context.Background()
	const n = 25

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client := apiclient.New(srv.URL, apiclient.WithToken(token(t, fmt.Sprintf("user-%d", i))))
			if _, err := client.Like(ctx, "B"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent like failed: %v", err)
	}

	b, err := store.GetByID(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, int64(7+n), b.UpvoteCount)
}

func TestListingRoutes_RepeatedLikes(t *testing.T) {
	ctx := context.Background()

	t.Run("raw counter counts every like", func(t *testing.T) {
		srv, _ := newTestServer(t, upvotes.Options{})
		client := apiclient.New(srv.URL, apiclient.WithToken(token(t, "user-1")))

		_, err := client.Like(ctx, "A")
		require.NoError(t, err)
		count, err := client.Like(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, int64(6), count)
	})

	t.Run("unique likes make the second a no-op", func(t *testing.T) {
		srv, _ := newTestServer(t, upvotes.Options{EnforceUniqueLikes: true})
		laptop := apiclient.New(srv.URL, apiclient.WithToken(token(t, "user-1")))
		phone := apiclient.New(srv.URL, apiclient.WithToken(token(t, "user-1")))

		_, err := laptop.Like(ctx, "A")
		require.NoError(t, err)
		count, err := phone.Like(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})
}

func TestListingRoutes_ListSorts(t *testing.T) {
	srv, _ := newTestServer(t, upvotes.Options{})

	fetch := func(query string) []string {
		resp, err := http.Get(srv.URL + "/listings" + query)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body listings.ListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		ids := make([]string, len(body.Listings))
		for i, l := range body.Listings {
			ids[i] = l.ID
		}
		return ids
	}

	assert.Equal(t, []string{"A", "B"}, fetch(""))
	assert.Equal(t, []string{"B", "A"}, fetch("?sort=fresh"))
	assert.Equal(t, []string{"B", "A"}, fetch("?sort=popular"))

	resp, err := http.Get(srv.URL + "/listings?sort=random")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// End to end: a surface renders, likes through the real HTTP stack, patches
// only its own cache entry, and records the like locally.
func TestListingRoutes_EngagementFlow(t *testing.T) {
	srv, _ := newTestServer(t, upvotes.Options{})
	ctx := context.Background()

	client := apiclient.New(srv.URL, apiclient.WithToken(token(t, "user-1")))
	cache := listingcache.NewCache(engagement.NewSurfaceFetcher(client))
	prefs := preferences.NewProfile(preferences.NewMemoryStore(), preferences.Scope{ProfileID: "browser", UserID: "user-1"})
	ctrl := engagement.NewController(cache, prefs, client, engagement.Config{}, nil)

	_, err := ctrl.Render(ctx, listingcache.SurfaceLanding)
	require.NoError(t, err)
	_, err = ctrl.Render(ctx, listingcache.SurfacePopular)
	require.NoError(t, err)

	res, err := ctrl.ToggleLike(ctx, listingcache.SurfaceLanding, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.UpvoteCount)

	landing, err := ctrl.Render(ctx, listingcache.SurfaceLanding)
	require.NoError(t, err)
	assert.Equal(t, int64(5), landing[0].Listing.UpvoteCount)
	assert.True(t, landing[0].Liked)

	popular, _ := cache.Get(listingcache.SurfacePopular)
	a, _ := popular.Listing("A")
	assert.Equal(t, int64(4), a.UpvoteCount, "other surfaces stay stale until refreshed")

	refreshed, err := ctrl.Refresh(ctx, listingcache.SurfacePopular)
	require.NoError(t, err)
	a, _ = refreshed.Listing("A")
	assert.Equal(t, int64(5), a.UpvoteCount)

	res, err = ctrl.ToggleLike(ctx, listingcache.SurfaceLanding, "A")
	require.NoError(t, err)
	assert.Equal(t, upvotes.DirectionUnlike, res.Direction)
	assert.Equal(t, int64(4), res.UpvoteCount)
}
