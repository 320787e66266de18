package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wanderlogue/backend/migrations"
	"github.com/pkordes/wanderlogue/backend/testutil"
)

var schemaTables = []string{"users", "trips"}

// TestMigrations runs the full migration round-trip against a real Postgres:
// up, check tables and the trip date constraint exist, down to zero, check
// everything is gone. Skipped when TEST_DATABASE_URL is not set.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	ctx := context.Background()

	// Another package's TestMain may already have migrated this shared test DB.
	if _, err := provider.DownTo(ctx, 0); err != nil {
		t.Fatalf("TestMigrations: initial reset: %v", err)
	}

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, 2)

	for _, table := range schemaTables {
		assert.True(t, tableExists(t, db, table), "expected table %q to exist", table)
	}
	assert.True(t, constraintExists(t, db, "trips_dates_check"))
	assert.True(t, constraintExists(t, db, "trips_location_check"))

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range schemaTables {
		assert.False(t, tableExists(t, db, table), "expected table %q to be dropped", table)
	}

	// Leave the schema in place for packages that run after this one.
	_, err = migrations.Up(ctx, db)
	require.NoError(t, err)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}

func constraintExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	const q = `SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = $1)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, name).Scan(&exists))
	return exists
}
