package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
)

type postgresUpvoteRepo struct {
	db *sql.DB
}

// NewUpvoteRepository creates the PostgreSQL Counter Store
func NewUpvoteRepository(db *sql.DB) upvotes.Repository {
	return &postgresUpvoteRepo{db: db}
}

// ApplyDelta adds delta to the counter in a single UPDATE.
// Row-level locking inside the UPDATE serializes concurrent toggles, so no
// delta is lost. GREATEST keeps the counter at or above zero.
func (r *postgresUpvoteRepo) ApplyDelta(ctx context.Context, listingID string, delta int64) (int64, error) {
	query := `
		UPDATE listings
		SET upvote_count = GREATEST(0, upvote_count + $2)
		WHERE id = $1
		RETURNING upvote_count
	`

	var count int64
	err := r.db.QueryRowContext(ctx, query, listingID, delta).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, listings.ErrListingNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply upvote delta: %w", err)
	}
	return count, nil
}

// ToggleEdge inserts or deletes the like edge and applies the delta in one
// transaction. The listing row is locked first so edge changes and counter
// changes for one listing are applied one at a time.
func (r *postgresUpvoteRepo) ToggleEdge(ctx context.Context, identity, listingID string, direction upvotes.Direction) (int64, bool, error) {
	if err := direction.Validate(); err != nil {
		return 0, false, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("Failed to rollback toggle transaction: %v", rbErr)
		}
	}()

	var count int64
	err = tx.QueryRowContext(ctx,
		`SELECT upvote_count FROM listings WHERE id = $1 FOR UPDATE`,
		listingID,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, listings.ErrListingNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to lock listing: %w", err)
	}

	var edgeQuery string
	if direction == upvotes.DirectionLike {
		edgeQuery = `
			INSERT INTO listing_likes (identity, listing_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (identity, listing_id) DO NOTHING
		`
	} else {
		edgeQuery = `DELETE FROM listing_likes WHERE identity = $1 AND listing_id = $2`
	}

	result, err := tx.ExecContext(ctx, edgeQuery, identity, listingID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to %s edge: %w", direction, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to check edge change: %w", err)
	}
	if affected == 0 {
		// edge already in the requested state
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return count, false, nil
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE listings
		SET upvote_count = GREATEST(0, upvote_count + $2)
		WHERE id = $1
		RETURNING upvote_count
	`, listingID, direction.Delta()).Scan(&count)
	if err != nil {
		return 0, false, fmt.Errorf("failed to apply upvote delta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, true, nil
}

// HasEdge reports whether identity has a durable like on the listing
func (r *postgresUpvoteRepo) HasEdge(ctx context.Context, identity, listingID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM listing_likes WHERE identity = $1 AND listing_id = $2)`,
		identity, listingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like edge: %w", err)
	}
	return exists, nil
}

// ReindexCounts recomputes every listing's counter from its like edges and
// returns the number of listings whose counter changed.
// Only meaningful once unique likes are enforced.
func ReindexCounts(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE listings l
		SET upvote_count = COALESCE(e.likes, 0)
		FROM listings l2
		LEFT JOIN (
			SELECT listing_id, COUNT(*) AS likes
			FROM listing_likes
			GROUP BY listing_id
		) e ON e.listing_id = l2.id
		WHERE l.id = l2.id
		  AND l.upvote_count IS DISTINCT FROM COALESCE(e.likes, 0)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to reindex upvote counts: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read reindex result: %w", err)
	}
	return updated, nil
}
