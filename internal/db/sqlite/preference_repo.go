// Package sqlite persists local preference sets in a SQLite file next to the
// client.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"Apiverse/internal/core/preferences"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open connects to the SQLite file at path and applies pending migrations.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to preferences db: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	migrationsFS, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, migrationsFS)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}
	return db, nil
}

// PreferenceRepo implements preferences.Store on SQLite
type PreferenceRepo struct {
	db *sqlx.DB
}

var _ preferences.Store = (*PreferenceRepo)(nil)

// NewPreferenceRepo wraps an opened database
func NewPreferenceRepo(db *sqlx.DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

func (r *PreferenceRepo) Has(ctx context.Context, scope preferences.Scope, set preferences.Set, listingID string) (bool, error) {
	if err := preferences.ValidateArgs(scope, set); err != nil {
		return false, err
	}

	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM preferences
			WHERE profile_id = ? AND user_id = ? AND set_name = ? AND listing_id = ?
		)`, scope.ProfileID, scope.UserID, string(set), listingID)
	if err != nil {
		return false, fmt.Errorf("checking preference: %w", err)
	}
	return exists, nil
}

func (r *PreferenceRepo) Add(ctx context.Context, scope preferences.Scope, set preferences.Set, listingID string) error {
	if err := preferences.ValidateArgs(scope, set); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO preferences (profile_id, user_id, set_name, listing_id)
		VALUES (?, ?, ?, ?)`, scope.ProfileID, scope.UserID, string(set), listingID)
	if err != nil {
		return fmt.Errorf("adding preference: %w", err)
	}
	return nil
}

func (r *PreferenceRepo) Remove(ctx context.Context, scope preferences.Scope, set preferences.Set, listingID string) error {
	if err := preferences.ValidateArgs(scope, set); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		DELETE FROM preferences
		WHERE profile_id = ? AND user_id = ? AND set_name = ? AND listing_id = ?`,
		scope.ProfileID, scope.UserID, string(set), listingID)
	if err != nil {
		return fmt.Errorf("removing preference: %w", err)
	}
	return nil
}

func (r *PreferenceRepo) Members(ctx context.Context, scope preferences.Scope, set preferences.Set) ([]string, error) {
	if err := preferences.ValidateArgs(scope, set); err != nil {
		return nil, err
	}

	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT listing_id FROM preferences
		WHERE profile_id = ? AND user_id = ? AND set_name = ?
		ORDER BY created_at, listing_id`,
		scope.ProfileID, scope.UserID, string(set))
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	return ids, nil
}

// Close releases the database
func (r *PreferenceRepo) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("closing preferences db: %w", err)
	}
	return nil
}
