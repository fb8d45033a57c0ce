// Package repotest opens migrated in-memory local stores for repository tests.
package repotest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docsync/internal/client/migrations"

	_ "modernc.org/sqlite"
)

// OpenLocal returns a single-connection in-memory database with the local
// schema applied. It is closed on test cleanup.
func OpenLocal(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Local())
	require.NoError(t, err)
	_, err = p.Up(context.Background())
	require.NoError(t, err)
	return db
}
