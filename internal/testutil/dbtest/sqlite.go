// Package dbtest provides database fixtures for tests: temporary SQLite
// files and, under the integration build tag, MySQL and PostgreSQL containers.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dabiro/internal/testutil"
	"github.com/leapstack-labs/dabiro/pkg/adapters/sqlite"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// SQLitePath returns a fresh database path inside a test temp dir.
func SQLitePath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// SQLite opens a connected adapter on a temporary database file and runs
// the setup statements. The adapter is closed on cleanup.
func SQLite(t testing.TB, setup ...string) *sqlite.Adapter {
	t.Helper()
	return OpenSQLite(t, SQLitePath(t), setup...)
}

// OpenSQLite is SQLite for a caller-chosen path.
func OpenSQLite(t testing.TB, path string, setup ...string) *sqlite.Adapter {
	t.Helper()
	ctx := context.Background()
	a := sqlite.New(testutil.NewTestLogger(t))
	require.NoError(t, a.Connect(ctx, core.ConnectionDescriptor{Dialect: core.DialectSQLite, Path: path}))
	t.Cleanup(func() { _ = a.Close() })
	Exec(t, a, setup...)
	return a
}

// Execer is the subset of an adapter used to run fixture statements.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

// Exec runs each statement and fails the test on the first error.
func Exec(t testing.TB, h Execer, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		_, err := h.Exec(context.Background(), s)
		require.NoError(t, err, s)
	}
}

// ShopSchema creates a small customers/orders database used across tests.
var ShopSchema = []string{
	`CREATE TABLE customers (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, email TEXT, notes TEXT)`,
	`CREATE TABLE orders (id INTEGER PRIMARY KEY AUTOINCREMENT, customer_id INTEGER NOT NULL, total REAL, status TEXT DEFAULT 'new', placed_at DATETIME, receipt BLOB)`,
	`INSERT INTO customers (name, email, notes) VALUES ('Alice', 'alice@example.com', 'likes ''quotes''')`,
	`INSERT INTO customers (name, email, notes) VALUES ('Bob', 'bob@example.com', NULL)`,
	`INSERT INTO customers (name, email, notes) VALUES ('Carol', NULL, 'vip')`,
	`INSERT INTO orders (customer_id, total, status, placed_at, receipt) VALUES (1, 19.5, 'paid', '2024-01-02 10:00:00', X'00FF10')`,
	`INSERT INTO orders (customer_id, total, status, placed_at, receipt) VALUES (1, 5, 'new', '2024-01-03 08:30:00.5', NULL)`,
	`INSERT INTO orders (customer_id, total, status, placed_at, receipt) VALUES (3, 120.25, 'shipped', NULL, X'CAFE')`,
}

// Shop is SQLite seeded with ShopSchema.
func Shop(t testing.TB) *sqlite.Adapter {
	t.Helper()
	return SQLite(t, ShopSchema...)
}
