// Package migrations embeds the PostgreSQL schema for listings and like edges.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedMigrations embed.FS

// FS returns the migration files rooted at the directory goose expects
func FS() fs.FS {
	sub, err := fs.Sub(embedMigrations, "sql")
	if err != nil {
		// the embed pattern guarantees the directory exists
		panic(err)
	}
	return sub
}

// Up applies every pending migration to db
func Up(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS())
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, res := range results {
		logger.Info("migration applied",
			"version", res.Source.Version,
			"path", res.Source.Path,
			"duration", res.Duration)
	}
	return nil
}
