package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/dabiro/internal/testutil"
	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Adapter {
	t.Helper()
	a := New(testutil.NewTestLogger(t))
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, a.Connect(context.Background(), core.ConnectionDescriptor{Dialect: "sqlite", Path: path}))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func mustExec(t *testing.T, a *Adapter, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		_, err := a.Exec(context.Background(), s)
		require.NoError(t, err, s)
	}
}

func TestRegistered(t *testing.T) {
	a, err := adapter.NewAdapter(core.ConnectionDescriptor{Dialect: "sqlite3"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Adapter{}, a)

	d := New(nil).Dialect()
	assert.Equal(t, "main", d.DefaultDatabase)
	assert.False(t, d.Supports(dialect.FeatureDatabases))
	assert.False(t, d.Supports(dialect.FeatureTruncate))
	assert.False(t, d.Supports(dialect.FeatureMoveTable))
}

func TestConnect(t *testing.T) {
	t.Run("requires path", func(t *testing.T) {
		err := New(nil).Connect(context.Background(), core.ConnectionDescriptor{Dialect: "sqlite"})
		var connErr *core.ConnectionError
		require.ErrorAs(t, err, &connErr)
	})

	t.Run("in memory", func(t *testing.T) {
		a := New(nil)
		require.NoError(t, a.Connect(context.Background(), core.ConnectionDescriptor{Host: ":memory:", Database: "ignored"}))
		defer func() { _ = a.Close() }()
		assert.Equal(t, "main", a.CurrentDatabase())
	})
}

func TestBuildSQLiteDSN(t *testing.T) {
	assert.Equal(t, "/tmp/a.db?_pragma=busy_timeout(5000)", buildSQLiteDSN("/tmp/a.db", nil))
	assert.Equal(t, "file:a.db?cache=shared&_pragma=busy_timeout(5000)&mode=ro",
		buildSQLiteDSN("file:a.db?cache=shared", map[string]string{"mode": "ro"}))
}

func TestQuoteValueRoundTrip(t *testing.T) {
	a := openTestDB(t)
	mustExec(t, a, "CREATE TABLE t (v TEXT)")

	values := []string{"plain", "O'Brien", `back\slash`, "multi\nline", "'; DROP TABLE t; --", "日本語"}
	for _, v := range values {
		mustExec(t, a, "INSERT INTO t (v) VALUES ("+a.QuoteValue(v)+")")
	}

	rs, err := a.Query(context.Background(), "SELECT v FROM t ORDER BY rowid")
	require.NoError(t, err)
	require.Equal(t, len(values), rs.Len())
	for i, v := range values {
		assert.Equal(t, v, rs.Rows[i]["v"])
	}

	assert.Equal(t, "NULL", a.QuoteValue(nil))
}

func TestTemporalAndBlobRoundTrip(t *testing.T) {
	a := openTestDB(t)
	ctx := context.Background()
	mustExec(t, a,
		"CREATE TABLE ev (at DATETIME, day DATE, stamp TIMESTAMP, payload BLOB)",
		"INSERT INTO ev VALUES ('2024-01-02 10:00:00', '2024-01-02', '2024-01-02 10:00:00.123+02:00', X'00FF10')",
	)

	rs, err := a.Query(ctx, "SELECT * FROM ev")
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	row := rs.Rows[0]
	assert.Equal(t, "2024-01-02 10:00:00", row["at"])
	assert.Equal(t, "2024-01-02", row["day"])
	assert.Equal(t, "2024-01-02 10:00:00.123+02:00", row["stamp"])
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, row["payload"])

	where := make([]string, 0, len(rs.Columns))
	for _, c := range rs.Columns {
		where = append(where, a.QuoteIdentifier(c)+" = "+a.QuoteValue(row[c]))
	}
	n, err := a.QueryInt(ctx, "SELECT COUNT(*) FROM ev WHERE "+strings.Join(where, " AND "))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCatalog(t *testing.T) {
	a := openTestDB(t)
	ctx := context.Background()
	mustExec(t, a,
		"CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, status TEXT DEFAULT 'new')",
		"CREATE TABLE audit (id INTEGER, note TEXT)",
		"INSERT INTO users (name) VALUES ('ann'), ('bob')",
	)

	dbs, err := a.ListDatabases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, dbs)

	tables, err := a.ListTables(ctx)
	require.NoError(t, err)
	// sqlite_sequence exists because of AUTOINCREMENT.
	assert.Equal(t, []string{"audit", "users"}, tables)

	cols, err := a.ListColumns(ctx, "users")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[0].Name)
	assert.True(t, cols[0].PrimaryKey)
	assert.False(t, cols[1].Nullable)
	assert.True(t, cols[2].Nullable)
	require.NotNil(t, cols[2].Default)
	assert.Equal(t, "'new'", *cols[2].Default)

	stats := a.TableStats(ctx, "users")
	require.NotNil(t, stats.RowCount)
	assert.Equal(t, int64(2), *stats.RowCount)

	stmt, err := a.CreateStatement(ctx, "audit")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE audit (id INTEGER, note TEXT)", stmt)

	_, err = a.CreateStatement(ctx, "missing")
	require.Error(t, err)
}

func TestTruncateTwice(t *testing.T) {
	a := openTestDB(t)
	ctx := context.Background()
	mustExec(t, a, "CREATE TABLE t (id INTEGER)", "INSERT INTO t VALUES (1), (2), (3)")

	ref := core.TableRef{Name: "t"}
	n, err := a.Exec(ctx, a.TruncateTableSQL(ref))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = a.Exec(ctx, a.TruncateTableSQL(ref))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyStructureSQL(t *testing.T) {
	a := openTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		create string
		src    string
	}{
		{"bare", "CREATE TABLE src1 (id INTEGER PRIMARY KEY, v TEXT)", "src1"},
		{"double quoted", `CREATE TABLE "src 2" (id INTEGER)`, "src 2"},
		{"backticks", "CREATE TABLE `src3`(id INTEGER)", "src3"},
		{"if not exists", "create table if not exists [src4] (id INTEGER)", "src4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustExec(t, a, tt.create)
			dst := core.TableRef{Name: tt.src + "_copy"}

			stmt, err := a.CopyStructureSQL(ctx, core.TableRef{Name: tt.src}, dst)
			require.NoError(t, err)
			mustExec(t, a, stmt)

			cols, err := a.ListColumns(ctx, dst.Name)
			require.NoError(t, err)
			assert.NotEmpty(t, cols)
		})
	}
}

func TestStatements(t *testing.T) {
	a := New(nil)
	got := a.CreateTableSQL("items", []core.ColumnDef{
		{Name: "id", Type: "INT", AutoIncrement: true, PrimaryKey: true},
		{Name: "name", Type: "VARCHAR", Length: "50", Nullable: true},
	})
	assert.Equal(t, "CREATE TABLE `items` (\n"+
		"  `id` INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,\n"+
		"  `name` VARCHAR(50) NULL\n)", got)

	assert.Equal(t, "ALTER TABLE `a` RENAME TO `b`", a.RenameTableSQL(core.TableRef{Name: "a"}, core.TableRef{Name: "b"}))
	assert.Equal(t, "DELETE FROM `a`", a.TruncateTableSQL(core.TableRef{Database: "main", Name: "a"}))
	assert.Empty(t, a.CreateDatabaseSQL("x"))
}

func TestRegexp(t *testing.T) {
	a := openTestDB(t)
	ctx := context.Background()
	mustExec(t, a, "CREATE TABLE t (v TEXT)", "INSERT INTO t VALUES ('apple'), ('banana'), (NULL)")

	where := a.MatchSQL(a.QuoteIdentifier("v"), core.OpRegex, "^a")
	rs, err := a.Query(ctx, "SELECT v FROM t WHERE "+where)
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, "apple", rs.Rows[0]["v"])

	_, err = a.Query(ctx, "SELECT v FROM t WHERE v REGEXP '('")
	require.Error(t, err)
}

func TestUseDatabase(t *testing.T) {
	a := openTestDB(t)
	require.NoError(t, a.UseDatabase(context.Background(), "main"))

	err := a.UseDatabase(context.Background(), "other")
	assert.True(t, errors.Is(err, core.ErrUnsupported))
	assert.Equal(t, "main", a.CurrentDatabase())
}

func TestServerVersion(t *testing.T) {
	a := openTestDB(t)
	v, err := a.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^3\.`, v)
}
