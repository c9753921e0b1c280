package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type listingService struct {
	repo Repository
}

// NewService creates a new listing read service
func NewService(repo Repository) Service {
	return &listingService{repo: repo}
}

// GetListing returns a single listing by id
func (s *listingService) GetListing(ctx context.Context, id string) (*Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NewValidationError("id", "required")
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

// ListListings returns the full collection in the requested order
func (s *listingService) ListListings(ctx context.Context, req ListRequest) ([]Listing, error) {
	sort, err := ParseSort(string(req.Sort))
	if err != nil {
		return nil, err
	}
	req.Sort = sort

	items, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	if items == nil {
		items = []Listing{}
	}
	return items, nil
}

// ParseSort validates a sort query value. The empty string selects SortDefault.
func ParseSort(raw string) (Sort, error) {
	switch Sort(strings.ToLower(strings.TrimSpace(raw))) {
	case SortDefault:
		return SortDefault, nil
	case SortFresh:
		return SortFresh, nil
	case SortPopular:
		return SortPopular, nil
	default:
		return "", ErrInvalidSort
	}
}
