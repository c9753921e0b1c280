// Package memory provides an in-process listing store and Counter Store.
// It backs the server's dev mode (STORAGE_DRIVER=memory) and tests that
// need real atomic counter semantics without a database.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
)

type edgeKey struct {
	identity  string
	listingID string
}

type record struct {
	listing listings.Listing
	seq     int64
}

// Store holds listings and like edges in memory.
// All counter mutations happen under one mutex, which makes every
// read-modify-write atomic with respect to concurrent toggles.
type Store struct {
	mu      sync.Mutex
	records map[string]*record
	edges   map[edgeKey]time.Time
	nextSeq int64
}

var (
	_ listings.Repository = (*Store)(nil)
	_ upvotes.Repository  = (*Store)(nil)
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		records: make(map[string]*record),
		edges:   make(map[edgeKey]time.Time),
	}
}

// Put inserts or replaces a listing. Insertion order is kept as creation order
// for listings that share a CreatedAt timestamp. Negative counters are clamped.
func (s *Store) Put(listing listings.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now().UTC()
	}
	listing.UpvoteCount = max(listing.UpvoteCount, 0)

	if existing, ok := s.records[listing.ID]; ok {
		existing.listing = listing
		return
	}
	s.nextSeq++
	s.records[listing.ID] = &record{listing: listing, seq: s.nextSeq}
}

// Delete removes a listing and its edges
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	for key := range s.edges {
		if key.listingID == id {
			delete(s.edges, key)
		}
	}
}

// GetByID returns a copy of a single listing
func (s *Store) GetByID(_ context.Context, id string) (*listings.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, listings.ErrListingNotFound
	}
	listing := rec.listing
	return &listing, nil
}

// List returns a copy of the full collection in the requested order
func (s *Store) List(_ context.Context, req listings.ListRequest) ([]listings.Listing, error) {
	s.mu.Lock()
	recs := make([]*record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.Unlock()

	byCreation := func(a, b *record) int {
		if c := a.listing.CreatedAt.Compare(b.listing.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	}

	switch req.Sort {
	case listings.SortFresh:
		slices.SortFunc(recs, func(a, b *record) int { return byCreation(b, a) })
	case listings.SortPopular:
		slices.SortFunc(recs, func(a, b *record) int {
			if c := cmp.Compare(b.listing.UpvoteCount, a.listing.UpvoteCount); c != 0 {
				return c
			}
			return byCreation(a, b)
		})
	default:
		slices.SortFunc(recs, byCreation)
	}

	out := make([]listings.Listing, len(recs))
	for i, rec := range recs {
		out[i] = rec.listing
	}
	return out, nil
}

// ApplyDelta adds delta to the counter, clamped at zero
func (s *Store) ApplyDelta(_ context.Context, listingID string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[listingID]
	if !ok {
		return 0, listings.ErrListingNotFound
	}
	rec.listing.UpvoteCount = max(0, rec.listing.UpvoteCount+delta)
	return rec.listing.UpvoteCount, nil
}

// ToggleEdge inserts or deletes the like edge and applies the matching delta
func (s *Store) ToggleEdge(_ context.Context, identity, listingID string, direction upvotes.Direction) (int64, bool, error) {
	if err := direction.Validate(); err != nil {
		return 0, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[listingID]
	if !ok {
		return 0, false, listings.ErrListingNotFound
	}

	key := edgeKey{identity: identity, listingID: listingID}
	_, liked := s.edges[key]

	switch {
	case direction == upvotes.DirectionLike && !liked:
		s.edges[key] = time.Now().UTC()
	case direction == upvotes.DirectionUnlike && liked:
		delete(s.edges, key)
	default:
		return rec.listing.UpvoteCount, false, nil
	}

	rec.listing.UpvoteCount = max(0, rec.listing.UpvoteCount+direction.Delta())
	return rec.listing.UpvoteCount, true, nil
}

// HasEdge reports whether identity has a durable like on the listing
func (s *Store) HasEdge(_ context.Context, identity, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.edges[edgeKey{identity: identity, listingID: listingID}]
	return ok, nil
}
