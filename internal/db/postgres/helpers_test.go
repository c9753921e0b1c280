package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"Apiverse/internal/core/listings"
	"Apiverse/internal/db/migrations"
)

// setupTestDB connects to TEST_DATABASE_URL when set, otherwise starts a
// throwaway PostgreSQL container. Migrations are applied either way.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		tc.SkipIfProviderIsNotHealthy(t)

		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("apiverse_test"),
			tcpostgres.WithUsername("test_user"),
			tcpostgres.WithPassword("test_password"),
			tc.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		require.NoError(t, err, "Failed to start postgres container")
		t.Cleanup(func() {
			_ = container.Terminate(context.Background())
		})

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, migrations.Up(ctx, db, nil), "Failed to run migrations")

	return db
}

// createTestListing inserts a listing with a unique id and removes it after the test
func createTestListing(t *testing.T, db *sql.DB, name string, upvotes int64, createdAt time.Time) listings.Listing {
	t.Helper()

	listing := listings.Listing{
		ID:          "test-" + uuid.NewString(),
		Name:        name,
		Category:    "test",
		UpvoteCount: upvotes,
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}
	_, err := db.Exec(`
		INSERT INTO listings (id, name, category, upvote_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, listing.ID, listing.Name, listing.Category, listing.UpvoteCount, listing.CreatedAt)
	require.NoError(t, err, "Failed to create test listing")

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM listings WHERE id = $1`, listing.ID)
	})
	return listing
}
