package upvotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Apiverse/internal/core/listings"
)

// Options configures the toggle service
type Options struct {
	// EnforceUniqueLikes records a durable (identity, listing) edge for every like
	// so that one identity can add at most +1 to a listing, across all devices.
	// When false the counter is mutated directly and repeated likes from the
	// same identity each count.
	EnforceUniqueLikes bool
}

// upvoteService implements the Service interface
type upvoteService struct {
	repo   Repository
	opts   Options
	logger *slog.Logger
}

// NewService creates a new upvote toggle service
func NewService(repo Repository, opts Options, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &upvoteService{
		repo:   repo,
		opts:   opts,
		logger: logger,
	}
}

// Toggle applies a like or unlike to a listing counter.
// Without unique-like enforcement:
//   - like   -> counter + 1
//   - unlike -> max(0, counter - 1)
//
// With enforcement the delta is only applied when the edge actually changes.
func (s *upvoteService) Toggle(ctx context.Context, req ToggleRequest) (*ToggleResponse, error) {
	if strings.TrimSpace(req.Identity) == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(req.ListingID) == "" {
		return nil, ErrInvalidListing
	}
	if err := req.Direction.Validate(); err != nil {
		return nil, err
	}

	if s.opts.EnforceUniqueLikes {
		return s.toggleEdge(ctx, req)
	}

	count, err := s.repo.ApplyDelta(ctx, req.ListingID, req.Direction.Delta())
	if err != nil {
		if errors.Is(err, listings.ErrListingNotFound) {
			return nil, listings.ErrListingNotFound
		}
		s.logger.Error("failed to apply upvote delta",
			"error", err,
			"identity", req.Identity,
			"listing", req.ListingID,
			"direction", req.Direction)
		return nil, fmt.Errorf("failed to apply %s: %w", req.Direction, err)
	}

	s.logger.Info("upvote toggled",
		"identity", req.Identity,
		"listing", req.ListingID,
		"direction", req.Direction,
		"upvote_count", count)

	return &ToggleResponse{UpvoteCount: count, Changed: true}, nil
}

func (s *upvoteService) toggleEdge(ctx context.Context, req ToggleRequest) (*ToggleResponse, error) {
	count, changed, err := s.repo.ToggleEdge(ctx, req.Identity, req.ListingID, req.Direction)
	if err != nil {
		if errors.Is(err, listings.ErrListingNotFound) {
			return nil, listings.ErrListingNotFound
		}
		s.logger.Error("failed to toggle like edge",
			"error", err,
			"identity", req.Identity,
			"listing", req.ListingID,
			"direction", req.Direction)
		return nil, fmt.Errorf("failed to apply %s: %w", req.Direction, err)
	}

	if !changed {
		s.logger.Debug("upvote toggle was a no-op",
			"identity", req.Identity,
			"listing", req.ListingID,
			"direction", req.Direction,
			"upvote_count", count)
	} else {
		s.logger.Info("upvote toggled",
			"identity", req.Identity,
			"listing", req.ListingID,
			"direction", req.Direction,
			"upvote_count", count)
	}

	return &ToggleResponse{UpvoteCount: count, Changed: changed}, nil
}
