// Package listingcache holds the last full fetch of listings per render surface.
//
// Each surface is served from its own entry without touching the network once
// loaded. After a toggle the acting surface patches one listing's counter in
// place; every other surface keeps its snapshot until it refreshes itself.
// There is no cross-surface broadcast.
package listingcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/ranking"
)

// DefaultCapacity bounds the number of surfaces kept at once.
// List surfaces are few; detail surfaces are one per visited listing.
const DefaultCapacity = 64

// DefaultGoneTTL is how long a listing that answered 404 stays filtered
// out of full sets. A listing the server still returns after that shows again.
const DefaultGoneTTL = 10 * time.Minute

const goneCapacity = 1024

// Fetcher loads the full listing collection for a surface
type Fetcher interface {
	FetchSurface(ctx context.Context, surface Surface) ([]listings.Listing, error)
}

// Option configures a Cache
type Option func(*Cache)

// WithCapacity sets the maximum number of cached surfaces
func WithCapacity(n int) Option {
	return func(c *Cache) { c.capacity = n }
}

// WithTierCount sets how many listings receive a badge
func WithTierCount(n int) Option {
	return func(c *Cache) { c.tierCount = n }
}

// WithSharedFamily makes the given surfaces read and write one shared entry.
// The first surface names the entry.
func WithSharedFamily(surfaces ...Surface) Option {
	return func(c *Cache) {
		if len(surfaces) == 0 {
			return
		}
		for _, s := range surfaces {
			c.family[s] = surfaces[0]
		}
	}
}

// WithGoneTTL sets how long gone markers filter full sets
func WithGoneTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.goneTTL = ttl }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithClock overrides time.Now for FetchedAt stamps
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is an injectable, bounded per-surface listing cache.
// It is safe for concurrent use.
type Cache struct {
	fetcher    Fetcher
	entries    *lru.Cache[Surface, *Entry]
	family     map[Surface]Surface
	gone       *lru.Cache[string, time.Time]
	logger     *slog.Logger
	now        func() time.Time
	goneTTL    time.Duration
	capacity   int
	tierCount  int
	generation uint64
	mu         sync.Mutex
}

// NewCache creates a cache that loads missing surfaces through fetcher
func NewCache(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher:   fetcher,
		family:    make(map[Surface]Surface),
		goneTTL:   DefaultGoneTTL,
		capacity:  DefaultCapacity,
		tierCount: ranking.DefaultTierCount,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.goneTTL <= 0 {
		c.goneTTL = DefaultGoneTTL
	}

	entries, err := lru.New[Surface, *Entry](c.capacity)
	if err != nil {
		c.logger.Warn("invalid listing cache capacity, using default",
			"capacity", c.capacity, "error", err)
		entries, _ = lru.New[Surface, *Entry](DefaultCapacity)
	}
	c.entries = entries
	c.gone, _ = lru.New[string, time.Time](goneCapacity)
	return c
}

func (c *Cache) key(surface Surface) Surface {
	if shared, ok := c.family[surface]; ok {
		return shared
	}
	return surface
}

// Get returns the cached entry for surface without fetching
func (c *Cache) Get(surface Surface) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(c.key(surface))
}

// Set replaces the surface's entry wholesale and recomputes rank.
// Listings marked gone within the gone TTL are dropped.
func (c *Cache) Set(surface Surface, items []listings.Listing) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(surface, items)
}

func (c *Cache) setLocked(surface Surface, items []listings.Listing) *Entry {
	now := c.now()
	kept := make([]listings.Listing, 0, len(items))
	for _, item := range items {
		if c.isGoneLocked(item.ID, now) {
			continue
		}
		kept = append(kept, item)
	}

	c.generation++
	key := c.key(surface)
	entry := &Entry{
		Surface:    key,
		Listings:   kept,
		TopTiers:   ranking.Rank(kept, c.tierCount),
		FetchedAt:  now,
		Generation: c.generation,
	}
	c.entries.Add(key, entry)

	c.logger.Debug("listing cache set",
		"surface", key,
		"listings", len(kept),
		"generation", entry.Generation)
	return entry
}

func (c *Cache) isGoneLocked(listingID string, now time.Time) bool {
	markedAt, ok := c.gone.Peek(listingID)
	if !ok {
		return false
	}
	if now.Sub(markedAt) >= c.goneTTL {
		c.gone.Remove(listingID)
		return false
	}
	return true
}

// Invalidate drops the surface's entry so the next Load fetches
func (c *Cache) Invalidate(surface Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(c.key(surface))
}

// Load returns the cached entry, fetching and storing it on first access
func (c *Cache) Load(ctx context.Context, surface Surface) (*Entry, error) {
	if entry, ok := c.Get(surface); ok {
		return entry, nil
	}
	return c.Refetch(ctx, surface)
}

// Refetch fetches the surface, replaces its entry and recomputes rank.
// On fetch failure the previous entry, if any, is left in place.
func (c *Cache) Refetch(ctx context.Context, surface Surface) (*Entry, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("listing cache has no fetcher for surface %q", surface)
	}

	items, err := c.fetcher.FetchSurface(ctx, surface)
	if err != nil {
		c.logger.Warn("listing cache fetch failed",
			"surface", surface,
			"error", err)
		return nil, fmt.Errorf("failed to fetch surface %q: %w", surface, err)
	}
	return c.Set(surface, items), nil
}

// PatchUpvoteCount optimistically replaces one listing's counter in the
// surface's entry. Only that field changes; rank is not recomputed.
// Returns false when the surface is not cached or does not contain the listing.
func (c *Cache) PatchUpvoteCount(surface Surface, listingID string, count int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.key(surface)
	entry, ok := c.entries.Peek(key)
	if !ok {
		return false
	}
	i := entry.indexOf(listingID)
	if i < 0 {
		return false
	}

	c.entries.Add(key, entry.withCount(i, count))
	return true
}

// MarkGone records that a listing no longer exists. It disappears from
// every surface at that surface's next full set within the gone TTL;
// existing entries are left as they are. The listing's detail surface is
// dropped immediately. Markers are bounded and expire.
func (c *Cache) MarkGone(listingID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gone.Add(listingID, c.now())
	c.entries.Remove(c.key(DetailSurface(listingID)))
}

// Surfaces returns the keys currently cached, oldest first
func (c *Cache) Surfaces() []Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Keys()
}

// Purge drops every entry. Gone markers are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}
