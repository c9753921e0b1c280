package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Apiverse/internal/core/listings"
)

type postgresListingRepo struct {
	db *sql.DB
}

// NewListingRepository creates a new PostgreSQL listing repository
func NewListingRepository(db *sql.DB) listings.Repository {
	return &postgresListingRepo{db: db}
}

const listingColumns = `
	id, name, description, category, provider_id, base_url,
	upvote_count, created_at
`

// GetByID retrieves a single listing
func (r *postgresListingRepo) GetByID(ctx context.Context, id string) (*listings.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	var listing listings.Listing
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&listing.ID, &listing.Name, &listing.Description, &listing.Category,
		&listing.ProviderID, &listing.BaseURL, &listing.UpvoteCount, &listing.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, listings.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// List returns the whole collection. Every order ends in (created_at, id) so
// ties are stable across requests.
func (r *postgresListingRepo) List(ctx context.Context, req listings.ListRequest) ([]listings.Listing, error) {
	var orderBy string
	switch req.Sort {
	case listings.SortFresh:
		orderBy = "created_at DESC, id DESC"
	case listings.SortPopular:
		orderBy = "upvote_count DESC, created_at ASC, id ASC"
	case listings.SortDefault:
		orderBy = "created_at ASC, id ASC"
	default:
		return nil, listings.ErrInvalidSort
	}

	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY ` + orderBy

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []listings.Listing{}
	for rows.Next() {
		var listing listings.Listing
		if err := rows.Scan(
			&listing.ID, &listing.Name, &listing.Description, &listing.Category,
			&listing.ProviderID, &listing.BaseURL, &listing.UpvoteCount, &listing.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		result = append(result, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}
	return result, nil
}
