package engagement

import (
	"context"
	"fmt"

	"Apiverse/internal/core/listingcache"
	"Apiverse/internal/core/listings"
)

// ListingSource is the read side of the listing API
type ListingSource interface {
	ListListings(ctx context.Context, sort listings.Sort) ([]listings.Listing, error)
	GetListing(ctx context.Context, id string) (*listings.Listing, error)
}

// SurfaceFetcher loads each surface from a ListingSource
type SurfaceFetcher struct {
	source ListingSource
}

var _ listingcache.Fetcher = (*SurfaceFetcher)(nil)

// NewSurfaceFetcher creates a fetcher backed by source
func NewSurfaceFetcher(source ListingSource) *SurfaceFetcher {
	return &SurfaceFetcher{source: source}
}

// FetchSurface maps a surface to the listing query that populates it.
// Landing and browse read the full collection in creation order.
func (f *SurfaceFetcher) FetchSurface(ctx context.Context, surface listingcache.Surface) ([]listings.Listing, error) {
	switch surface {
	case listingcache.SurfaceLanding, listingcache.SurfaceBrowse:
		return f.source.ListListings(ctx, listings.SortDefault)
	case listingcache.SurfaceFresh:
		return f.source.ListListings(ctx, listings.SortFresh)
	case listingcache.SurfacePopular:
		return f.source.ListListings(ctx, listings.SortPopular)
	}

	if id := surface.ListingID(); id != "" {
		listing, err := f.source.GetListing(ctx, id)
		if err != nil {
			return nil, err
		}
		return []listings.Listing{*listing}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSurface, surface)
}
