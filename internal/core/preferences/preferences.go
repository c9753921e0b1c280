// Package preferences tracks which listings the current browser profile has
// liked or saved. The sets are display hints only: they are never sent to or
// checked against the server, so a new profile starts empty even when the
// same user has already liked listings elsewhere.
package preferences

import (
	"context"
	"errors"
	"strings"
)

// Set names one local id set
type Set string

const (
	SetLiked Set = "liked-listing-ids"
	SetSaved Set = "saved-listing-ids"
)

// Validate rejects unknown set names
func (s Set) Validate() error {
	if s != SetLiked && s != SetSaved {
		return ErrUnknownSet
	}
	return nil
}

// Scope identifies whose preferences these are: one browser profile and the
// user signed in on it. An anonymous profile has an empty UserID.
type Scope struct {
	ProfileID string
	UserID    string
}

// Key returns a stable string form used by storage backends
func (s Scope) Key() string {
	user := s.UserID
	if user == "" {
		user = "anonymous"
	}
	return s.ProfileID + ":" + user
}

var (
	// ErrUnknownSet indicates a set name other than liked or saved
	ErrUnknownSet = errors.New("unknown preference set")

	// ErrInvalidScope indicates a scope without a profile id
	ErrInvalidScope = errors.New("preference scope requires a profile id")
)

// Store persists local id sets. Implementations must make Add and Remove
// idempotent.
type Store interface {
	Has(ctx context.Context, scope Scope, set Set, listingID string) (bool, error)
	Add(ctx context.Context, scope Scope, set Set, listingID string) error
	Remove(ctx context.Context, scope Scope, set Set, listingID string) error
	Members(ctx context.Context, scope Scope, set Set) ([]string, error)
}

// ValidateArgs checks the arguments every Store operation shares
func ValidateArgs(scope Scope, set Set) error {
	if strings.TrimSpace(scope.ProfileID) == "" {
		return ErrInvalidScope
	}
	return set.Validate()
}

// Profile binds a Store to one scope
type Profile struct {
	store Store
	scope Scope
}

// NewProfile creates a Profile for scope
func NewProfile(store Store, scope Scope) *Profile {
	return &Profile{store: store, scope: scope}
}

// Scope returns the bound scope
func (p *Profile) Scope() Scope {
	return p.scope
}

// Has reports whether listingID is in set
func (p *Profile) Has(ctx context.Context, set Set, listingID string) (bool, error) {
	return p.store.Has(ctx, p.scope, set, listingID)
}

// Add puts listingID into set
func (p *Profile) Add(ctx context.Context, set Set, listingID string) error {
	return p.store.Add(ctx, p.scope, set, listingID)
}

// Remove takes listingID out of set
func (p *Profile) Remove(ctx context.Context, set Set, listingID string) error {
	return p.store.Remove(ctx, p.scope, set, listingID)
}

// Members lists the ids in set in no particular order
func (p *Profile) Members(ctx context.Context, set Set) ([]string, error) {
	return p.store.Members(ctx, p.scope, set)
}

// Snapshot reads both sets at once
func (p *Profile) Snapshot(ctx context.Context) (liked, saved map[string]bool, err error) {
	liked, err = p.lookup(ctx, SetLiked)
	if err != nil {
		return nil, nil, err
	}
	saved, err = p.lookup(ctx, SetSaved)
	if err != nil {
		return nil, nil, err
	}
	return liked, saved, nil
}

func (p *Profile) lookup(ctx context.Context, set Set) (map[string]bool, error) {
	ids, err := p.Members(ctx, set)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
