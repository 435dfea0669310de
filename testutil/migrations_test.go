package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/viewpoint-explorer/backend/migrations"
	"github.com/pkordes/viewpoint-explorer/backend/testutil"
)

var catalogueTables = []string{
	"authors", "viewpoints", "media_assets", "tags", "viewpoint_tags", "comments",
}

// TestMigrations verifies the full migration round-trip against a real
// PostGIS database: up, every catalogue table present and seeded, down to 0,
// every table gone. Skipped when TEST_DATABASE_URL is not set.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)

	provider, err := goose.NewProvider(
		goose.DialectPostgres,
		db,
		migrations.FS,
	)
	require.NoError(t, err, "create goose provider")

	ctx := context.Background()

	// Another package's TestMain may already have migrated this shared
	// database; start from version 0 so the test is order-independent.
	if _, err := provider.DownTo(ctx, 0); err != nil {
		t.Fatalf("TestMigrations: initial reset: %v", err)
	}

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, 2, "schema and seed migrations")

	for _, table := range catalogueTables {
		assertTableExists(t, db, table)
	}

	var published int
	err = db.QueryRowContext(ctx, `SELECT count(*) FROM viewpoints WHERE status = 'published'`).Scan(&published)
	require.NoError(t, err, "count seeded viewpoints")
	assert.Equal(t, 7, published, "seed catalogue")

	// Down to 1 removes only the seed rows.
	_, err = provider.DownTo(ctx, 1)
	require.NoError(t, err, "goose down-to 1")
	err = db.QueryRowContext(ctx, `SELECT count(*) FROM viewpoints`).Scan(&published)
	require.NoError(t, err)
	assert.Zero(t, published, "seed rows removed")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range catalogueTables {
		assertTableNotExists(t, db, table)
	}
}

// assertTableExists fails the test if the named table does not exist in the
// public schema of the connected database.
func assertTableExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()
	assertTablePresence(t, db, table, true)
}

// assertTableNotExists fails the test if the named table exists in the
// public schema of the connected database.
func assertTableNotExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()
	assertTablePresence(t, db, table, false)
}

func assertTablePresence(t *testing.T, db *sql.DB, table string, shouldExist bool) {
	t.Helper()

	// Use the information_schema to check table existence in a portable way.
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	var exists bool
	err := db.QueryRowContext(context.Background(), q, table).Scan(&exists)
	require.NoError(t, err, "check table existence for %q", table)

	if shouldExist {
		assert.True(t, exists, "expected table %q to exist", table)
	} else {
		assert.False(t, exists, "expected table %q to not exist", table)
	}
}
