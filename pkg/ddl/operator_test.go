package ddl

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/dabiro/internal/testutil"
	"github.com/leapstack-labs/dabiro/pkg/adapters/mysql"
	"github.com/leapstack-labs/dabiro/pkg/adapters/postgres"
	"github.com/leapstack-labs/dabiro/pkg/adapters/sqlite"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *sqlite.Adapter {
	t.Helper()
	a := sqlite.New(testutil.NewTestLogger(t))
	require.NoError(t, a.Connect(context.Background(), core.ConnectionDescriptor{Path: filepath.Join(t.TempDir(), "ddl.db")}))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func newMockMySQL(t *testing.T) (*mysql.Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := mysql.New(nil)
	a.DB = db
	a.Current = "shop"
	return a, mock
}

func count(t *testing.T, a *sqlite.Adapter, table string) int64 {
	t.Helper()
	n, err := a.QueryInt(context.Background(), "SELECT COUNT(*) FROM "+a.QuoteIdentifier(table))
	require.NoError(t, err)
	return n
}

func TestOperator_Validation(t *testing.T) {
	a, mock := newMockMySQL(t)
	op := NewOperator(a, testutil.NewTestLogger(t))
	ctx := context.Background()

	tests := []struct {
		name string
		in   Intent
	}{
		{"nil intent", nil},
		{"create table without columns", CreateTable{Table: "t"}},
		{"add column without type", AddColumn{Table: "t", Column: core.ColumnDef{Name: "c"}}},
		{"add column without name", AddColumn{Table: "t", Column: core.ColumnDef{Type: "INT"}}},
		{"rename without new name", RenameTable{Table: "t"}},
		{"copy onto itself", CopyTable{Source: "t", Target: "t"}},
		{"move without target", MoveTable{SourceTable: "t"}},
		{"move onto itself", MoveTable{SourceTable: "t", TargetTable: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := op.Execute(ctx, tt.in)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOperator_UnsupportedOnSQLite(t *testing.T) {
	a := newSQLite(t)
	op := NewOperator(a, testutil.NewTestLogger(t))
	ctx := context.Background()

	for _, in := range []Intent{
		CreateDatabase{Name: "other"},
		&DropDatabase{Name: "other"},
		MoveTable{SourceTable: "a", TargetTable: "b"},
	} {
		res, err := op.Execute(ctx, in)
		assert.Nil(t, res)
		var unsupported *core.UnsupportedError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "sqlite", unsupported.Dialect)
	}
}

func TestOperator_MoveUnsupportedOnPostgres(t *testing.T) {
	op := NewOperator(postgres.New(nil), nil)
	_, err := op.Execute(context.Background(), MoveTable{SourceTable: "a", TargetDatabase: "b"})
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestOperator_SQLiteLifecycle(t *testing.T) {
	a := newSQLite(t)
	op := NewOperator(a, testutil.NewTestLogger(t))
	ctx := context.Background()

	_, err := op.Execute(ctx, CreateTable{Table: "people", Columns: []core.ColumnDef{
		{Name: "id", Type: "INTEGER", PrimaryKey: true, AutoIncrement: true},
		{Name: "name", Type: "TEXT"},
	}})
	require.NoError(t, err)

	null := "null"
	_, err = op.Execute(ctx, AddColumn{Table: "people", Column: core.ColumnDef{Name: "nick", Type: "TEXT", Nullable: true, Default: &null}})
	require.NoError(t, err)

	_, err = a.Exec(ctx, "INSERT INTO people (name) VALUES ('ann'), ('bob')")
	require.NoError(t, err)

	// "NULL" as a default is SQL NULL, not the string.
	rs, err := a.Query(ctx, "SELECT nick FROM people")
	require.NoError(t, err)
	assert.Nil(t, rs.Rows[0]["nick"])

	_, err = op.Execute(ctx, RenameTable{Table: "people", NewName: "persons"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count(t, a, "persons"))

	for range 2 {
		res, err := op.Execute(ctx, TruncateTable{Table: "persons"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Executed())
		assert.Equal(t, int64(0), count(t, a, "persons"))
	}

	_, err = op.Execute(ctx, DropTable{Table: "persons"})
	require.NoError(t, err)

	_, err = op.Execute(ctx, DropTable{Table: "persons"})
	var execErr *core.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Error(), "no such table")
}

func TestOperator_CopyTable(t *testing.T) {
	a := newSQLite(t)
	op := NewOperator(a, testutil.NewTestLogger(t))
	ctx := context.Background()

	_, err := a.Exec(ctx, "CREATE TABLE src (id INTEGER PRIMARY KEY, note TEXT DEFAULT 'x')")
	require.NoError(t, err)
	_, err = a.Exec(ctx, "INSERT INTO src (note) VALUES ('a'), ('b'), (NULL)")
	require.NoError(t, err)

	srcCols, err := a.ListColumns(ctx, "src")
	require.NoError(t, err)

	t.Run("structure only", func(t *testing.T) {
		res, err := op.Execute(ctx, CopyTable{Source: "src", Target: "empty_copy"})
		require.NoError(t, err)
		require.Len(t, res.Statements, 1)
		assert.Equal(t, StepCreateStructure, res.Statements[0].Step)

		cols, err := a.ListColumns(ctx, "empty_copy")
		require.NoError(t, err)
		assert.Equal(t, srcCols, cols)
		assert.Equal(t, int64(0), count(t, a, "empty_copy"))
	})

	t.Run("with data", func(t *testing.T) {
		res, err := op.Execute(ctx, CopyTable{Source: "src", Target: "full_copy", CopyData: true})
		require.NoError(t, err)
		require.Len(t, res.Statements, 2)
		assert.Equal(t, int64(3), res.Statements[1].RowsAffected)
		assert.Equal(t, count(t, a, "src"), count(t, a, "full_copy"))
	})

	t.Run("target exists", func(t *testing.T) {
		res, err := op.Execute(ctx, CopyTable{Source: "src", Target: "full_copy", CopyData: true})
		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, StepCreateStructure, stepErr.Step)
		assert.Equal(t, 0, res.Executed())
		assert.False(t, res.Partial())
	})
}

func TestOperator_MySQLStatements(t *testing.T) {
	a, mock := newMockMySQL(t)
	op := NewOperator(a, testutil.NewTestLogger(t))
	ctx := context.Background()

	mock.ExpectExec("CREATE DATABASE `blog`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DROP TABLE `archive`.`old`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("RENAME TABLE `shop`.`orders` TO `shop`.`orders_2024`").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := op.Execute(ctx, CreateDatabase{Name: "blog"})
	require.NoError(t, err)
	_, err = op.Execute(ctx, DropTable{Database: "archive", Table: "old"})
	require.NoError(t, err)

	res, err := op.Execute(ctx, MoveTable{SourceTable: "orders", TargetTable: "orders_2024"})
	require.NoError(t, err)
	require.Len(t, res.Statements, 1)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "shop", a.CurrentDatabase())
}

func TestOperator_MySQLMoveAcrossDatabases(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a, mock := newMockMySQL(t)
		op := NewOperator(a, testutil.NewTestLogger(t))

		mock.ExpectExec("CREATE TABLE `archive`.`orders` LIKE `shop`.`orders`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO `archive`.`orders` SELECT * FROM `shop`.`orders`").WillReturnResult(sqlmock.NewResult(0, 12))
		mock.ExpectExec("DROP TABLE `shop`.`orders`").WillReturnResult(sqlmock.NewResult(0, 0))

		res, err := op.Execute(context.Background(), MoveTable{SourceTable: "orders", TargetDatabase: "archive"})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Executed())
		assert.Equal(t, int64(12), res.Statements[1].RowsAffected)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("copy fails after structure was created", func(t *testing.T) {
		a, mock := newMockMySQL(t)
		op := NewOperator(a, testutil.NewTestLogger(t))

		mock.ExpectExec("CREATE TABLE `archive`.`orders` LIKE `shop`.`orders`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO `archive`.`orders` SELECT * FROM `shop`.`orders`").
			WillReturnError(errors.New("Error 1142: INSERT command denied"))

		res, err := op.Execute(context.Background(), MoveTable{SourceTable: "orders", TargetDatabase: "archive"})
		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, StepCopyData, stepErr.Step)
		assert.Equal(t, "copy data failed: Error 1142: INSERT command denied", stepErr.Error())

		var execErr *core.ExecutionError
		require.ErrorAs(t, err, &execErr)

		require.Len(t, res.Statements, 3)
		assert.True(t, res.Statements[0].Executed)
		assert.False(t, res.Statements[1].Executed)
		assert.False(t, res.Statements[2].Executed)
		assert.True(t, res.Partial())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDecode(t *testing.T) {
	in, err := Decode("create-table", map[string]any{
		"table": "items",
		"columns": []any{
			map[string]any{"name": "id", "type": "INT", "auto_increment": "true", "primary_key": true},
			map[string]any{"name": "label", "type": "VARCHAR", "length": 40, "nullable": "1", "default": "NULL"},
		},
	})
	require.NoError(t, err)
	ct, ok := in.(*CreateTable)
	require.True(t, ok)
	require.NoError(t, ct.Validate())
	require.Len(t, ct.Columns, 2)
	assert.True(t, ct.Columns[0].AutoIncrement)
	assert.Equal(t, "40", ct.Columns[1].Length)
	assert.True(t, ct.Columns[1].Nullable)
	require.NotNil(t, ct.Columns[1].Default)
	assert.Equal(t, "NULL", *ct.Columns[1].Default)

	in, err = Decode("CopyTable", map[string]any{"source": "a", "target": "b", "copy_data": "true"})
	require.NoError(t, err)
	assert.Equal(t, &CopyTable{Source: "a", Target: "b", CopyData: true}, in)

	_, err = Decode("explode", nil)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"move_table", "move-table", "MoveTable", "move table"} {
		k, ok := ParseKind(s)
		require.True(t, ok, s)
		assert.Equal(t, KindMoveTable, k)
	}
	_, ok := ParseKind("move")
	assert.False(t, ok)
}
