package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiacomoGonzales/shopifree/migrations"
	"github.com/GiacomoGonzales/shopifree/testutil"
)

var schemaTables = []string{"users", "sessions", "stores", "customers", "products"}

// TestMigrations applies every migration, checks the schema, then rolls all
// the way back and checks that nothing is left.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	// The repo tests share this database and may have migrated it already.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")
	t.Cleanup(func() { _, _ = provider.Up(context.Background()) })

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, 3)

	for _, table := range schemaTables {
		assert.Truef(t, exists(t, db, `SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1)`, table), "table %q missing", table)
	}
	for _, index := range []string{"users_email_key", "stores_subdomain_key"} {
		assert.Truef(t, exists(t, db, `SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public' AND indexname = $1)`, index), "unique index %q missing", index)
	}

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range schemaTables {
		assert.Falsef(t, exists(t, db, `SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1)`, table), "table %q left behind", table)
	}
}

func exists(t *testing.T, db *sql.DB, query, name string) bool {
	t.Helper()
	var ok bool
	require.NoError(t, db.QueryRowContext(context.Background(), query, name).Scan(&ok), "lookup %q", name)
	return ok
}
