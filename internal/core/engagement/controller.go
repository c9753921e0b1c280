// Package engagement is the acting surface: it renders cached listings with
// the local liked/saved state, and runs the like toggle from click to
// confirmed counter.
//
// A toggle flips the listing optimistically while the request is in flight.
// Only a confirmed response touches the listing cache and the preference
// store; any failure leaves both exactly as they were.
package engagement

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"Apiverse/internal/core/listingcache"
	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/preferences"
	"Apiverse/internal/core/ranking"
	"Apiverse/internal/core/upvotes"
)

// DefaultToggleTimeout bounds one toggle round-trip
const DefaultToggleTimeout = 10 * time.Second

// Toggler is the client side of the Toggle Endpoint.
// Errors must wrap upvotes.ErrUnauthorized or listings.ErrListingNotFound
// for those outcomes; anything else is treated as retryable.
type Toggler interface {
	Like(ctx context.Context, listingID string) (int64, error)
	Unlike(ctx context.Context, listingID string) (int64, error)
}

// Config configures a Controller
type Config struct {
	SignInURL string
	Timeout   time.Duration
}

// ListingView is one listing as a surface displays it
type ListingView struct {
	Tier    ranking.Tier     `json:"tier,omitempty"`
	Listing listings.Listing `json:"listing"`
	Liked   bool             `json:"liked"`
	Saved   bool             `json:"saved"`
	Pending bool             `json:"pending"`
}

// ToggleResult is a confirmed toggle
type ToggleResult struct {
	ListingID   string
	Direction   upvotes.Direction
	UpvoteCount int64
	// Patched is false when the surface had no cached copy of the listing
	Patched bool
}

// inflight is one toggle between click and the liked set being written.
// Once confirmed the patched cache already carries the server count.
type inflight struct {
	direction upvotes.Direction
	confirmed bool
}

// Controller runs toggles and renders for one profile
type Controller struct {
	cache     *listingcache.Cache
	prefs     *preferences.Profile
	toggler   Toggler
	logger    *slog.Logger
	pending   map[string]*inflight
	signInURL string
	timeout   time.Duration
	mu        sync.Mutex
}

// NewController wires a cache, a preference profile and a toggler
func NewController(cache *listingcache.Cache, prefs *preferences.Profile, toggler Toggler, cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultToggleTimeout
	}
	return &Controller{
		cache:     cache,
		prefs:     prefs,
		toggler:   toggler,
		logger:    logger,
		pending:   make(map[string]*inflight),
		signInURL: cfg.SignInURL,
		timeout:   cfg.Timeout,
	}
}

// Render loads the surface from cache (fetching on first access) and
// overlays local preference state and in-flight toggles.
func (c *Controller) Render(ctx context.Context, surface listingcache.Surface) ([]ListingView, error) {
	loaded, err := c.cache.Load(ctx, surface)
	if err != nil {
		return nil, err
	}

	liked, saved, err := c.prefs.Snapshot(ctx)
	if err != nil {
		// preferences are display hints; render without them
		c.logger.Warn("failed to read local preferences",
			"error", err,
			"surface", surface)
		liked, saved = map[string]bool{}, map[string]bool{}
	}

	// entry and overlay are read together so a confirmed patch is never
	// paired with an unconfirmed mark
	c.mu.Lock()
	entry, ok := c.cache.Get(surface)
	if !ok {
		entry = loaded
	}
	pending := make(map[string]inflight, len(c.pending))
	for id, f := range c.pending {
		pending[id] = *f
	}
	c.mu.Unlock()

	views := make([]ListingView, len(entry.Listings))
	for i, listing := range entry.Listings {
		view := ListingView{
			Listing: listing,
			Liked:   liked[listing.ID],
			Saved:   saved[listing.ID],
		}
		if tier, ok := entry.TierOf(listing.ID); ok {
			view.Tier = tier
		}
		if f, ok := pending[listing.ID]; ok {
			view.Pending = true
			view.Liked = f.direction == upvotes.DirectionLike
			if !f.confirmed {
				view.Listing.UpvoteCount = max(0, view.Listing.UpvoteCount+f.direction.Delta())
			}
		}
		views[i] = view
	}
	return views, nil
}

// ToggleLike likes the listing unless this profile has already liked it, in
// which case it unlikes.
func (c *Controller) ToggleLike(ctx context.Context, surface listingcache.Surface, listingID string) (*ToggleResult, error) {
	liked, err := c.prefs.Has(ctx, preferences.SetLiked, listingID)
	if err != nil {
		c.logger.Warn("failed to read liked state, assuming not liked",
			"error", err,
			"listing", listingID)
		liked = false
	}

	direction := upvotes.DirectionLike
	if liked {
		direction = upvotes.DirectionUnlike
	}
	return c.Toggle(ctx, surface, listingID, direction)
}

// Toggle sends one like or unlike and applies the confirmed count.
//
// On success the surface's cached counter for the listing is patched (rank is
// left as of the last refresh) and the liked set is updated. On failure
// nothing local changes and the error is one of *SignInRequiredError,
// *ListingGoneError or *RetryableError.
func (c *Controller) Toggle(ctx context.Context, surface listingcache.Surface, listingID string, direction upvotes.Direction) (*ToggleResult, error) {
	if err := direction.Validate(); err != nil {
		return nil, err
	}
	if err := c.begin(listingID, direction); err != nil {
		return nil, err
	}
	defer c.end(listingID)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		count int64
		err   error
	)
	if direction == upvotes.DirectionLike {
		count, err = c.toggler.Like(callCtx, listingID)
	} else {
		count, err = c.toggler.Unlike(callCtx, listingID)
	}
	if err != nil {
		return nil, c.classify(listingID, direction, err)
	}

	patched := c.confirm(surface, listingID, count)

	if direction == upvotes.DirectionLike {
		err = c.prefs.Add(ctx, preferences.SetLiked, listingID)
	} else {
		err = c.prefs.Remove(ctx, preferences.SetLiked, listingID)
	}
	if err != nil {
		// the server already applied the toggle, so report success
		c.logger.Warn("failed to record liked state",
			"error", err,
			"listing", listingID,
			"direction", direction)
	}

	c.logger.Info("listing toggled",
		"listing", listingID,
		"surface", surface,
		"direction", direction,
		"upvote_count", count,
		"patched", patched)

	return &ToggleResult{
		ListingID:   listingID,
		Direction:   direction,
		UpvoteCount: count,
		Patched:     patched,
	}, nil
}

// ToggleSave flips the listing in the local saved set. Saves never reach the server.
func (c *Controller) ToggleSave(ctx context.Context, listingID string) (bool, error) {
	saved, err := c.prefs.Has(ctx, preferences.SetSaved, listingID)
	if err != nil {
		return false, err
	}
	if saved {
		if err := c.prefs.Remove(ctx, preferences.SetSaved, listingID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := c.prefs.Add(ctx, preferences.SetSaved, listingID); err != nil {
		return false, err
	}
	return true, nil
}

// Refresh replaces the surface's entry with a full fetch and recomputes rank
func (c *Controller) Refresh(ctx context.Context, surface listingcache.Surface) (*listingcache.Entry, error) {
	return c.cache.Refetch(ctx, surface)
}

// Pending reports whether a toggle for listingID is in flight
func (c *Controller) Pending(listingID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[listingID]
	return ok
}

func (c *Controller) begin(listingID string, direction upvotes.Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.pending[listingID]; busy {
		return ErrTogglePending
	}
	c.pending[listingID] = &inflight{direction: direction}
	return nil
}

// confirm patches the acting surface and flags the toggle confirmed in one
// critical section
func (c *Controller) confirm(surface listingcache.Surface, listingID string, count int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	patched := c.cache.PatchUpvoteCount(surface, listingID, count)
	if f, ok := c.pending[listingID]; ok {
		f.confirmed = true
	}
	return patched
}

func (c *Controller) end(listingID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, listingID)
}

func (c *Controller) classify(listingID string, direction upvotes.Direction, err error) error {
	switch {
	case errors.Is(err, upvotes.ErrUnauthorized):
		return &SignInRequiredError{ListingID: listingID, SignInURL: c.signInURL}
	case errors.Is(err, listings.ErrListingNotFound):
		c.cache.MarkGone(listingID)
		c.logger.Info("toggled listing no longer exists", "listing", listingID)
		return &ListingGoneError{ListingID: listingID, Err: err}
	default:
		c.logger.Warn("toggle failed",
			"error", err,
			"listing", listingID,
			"direction", direction)
		return &RetryableError{ListingID: listingID, Direction: direction, Err: err}
	}
}
