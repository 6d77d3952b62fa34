package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/dabiro/internal/testutil"
	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := New(testutil.NewTestLogger(t))
	a.DB = db
	a.Current = "shop"
	return a, mock
}

func TestRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("mysql"))
	a, err := adapter.NewAdapter(core.ConnectionDescriptor{Dialect: "mariadb"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Adapter{}, a)
}

func TestBuildMySQLDSN(t *testing.T) {
	tests := []struct {
		name     string
		desc     core.ConnectionDescriptor
		wantNet  string
		wantAddr string
		wantDB   string
	}{
		{
			name:     "defaults",
			desc:     core.ConnectionDescriptor{User: "root"},
			wantNet:  "tcp",
			wantAddr: "localhost:3306",
		},
		{
			name:     "host port and database",
			desc:     core.ConnectionDescriptor{Host: "db.example.com", Port: 3307, User: "app", Password: "p@ss:word", Database: "shop"},
			wantNet:  "tcp",
			wantAddr: "db.example.com:3307",
			wantDB:   "shop",
		},
		{
			name:     "unix socket",
			desc:     core.ConnectionDescriptor{Host: "/var/run/mysqld/mysqld.sock", User: "root"},
			wantNet:  "unix",
			wantAddr: "/var/run/mysqld/mysqld.sock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := mysql.ParseDSN(buildMySQLDSN(tt.desc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantNet, cfg.Net)
			assert.Equal(t, tt.wantAddr, cfg.Addr)
			assert.Equal(t, tt.wantDB, cfg.DBName)
			assert.Equal(t, tt.desc.User, cfg.User)
			assert.Equal(t, tt.desc.Password, cfg.Passwd)
			assert.True(t, cfg.MultiStatements)
			assert.Equal(t, "utf8mb4", cfg.Params["charset"])
		})
	}
}

func TestQuoteValue(t *testing.T) {
	a := New(nil)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, "NULL"},
		{"plain", "alice", "'alice'"},
		{"single quote", "O'Brien", `'O\'Brien'`},
		{"backslash", `C:\temp`, `'C:\\temp'`},
		{"injection attempt", "x' OR '1'='1", `'x\' OR \'1\'=\'1'`},
		{"newline", "a\nb", `'a\nb'`},
		{"number", 42, "'42'"},
		{"literal NULL text", "NULL", "'NULL'"},
		{"bytes", []byte{0x00, 0xff}, "X'00FF'"},
		{"datetime", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), "'2024-01-02 10:00:00'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.QuoteValue(tt.in))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "`users`", a.QuoteIdentifier("users"))
	assert.Equal(t, "`a``b`", a.QuoteIdentifier("a`b"))
	assert.Equal(t, "`shop`.`users`", a.QuoteTable(core.TableRef{Database: "shop", Name: "users"}))
}

func TestUseDatabase(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectExec("USE `analytics`").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, a.UseDatabase(context.Background(), "analytics"))
	assert.Equal(t, "analytics", a.CurrentDatabase())

	mock.ExpectExec("USE `missing`").WillReturnError(&mysql.MySQLError{Number: 1049, Message: "Unknown database 'missing'"})
	err := a.UseDatabase(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "analytics", a.CurrentDatabase(), "failed switch keeps current database")

	var execErr *core.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 1049, execErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListColumns(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `users`").WillReturnRows(
		sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "int(11)", "NO", "PRI", nil, "auto_increment").
			AddRow("name", "varchar(255)", "YES", "", "anon", ""),
	)

	cols, err := a.ListColumns(context.Background(), "users")
	require.NoError(t, err)
	require.Len(t, cols, 2)

	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "int(11)", cols[0].Type)
	assert.False(t, cols[0].Nullable)
	assert.True(t, cols[0].PrimaryKey)
	assert.Nil(t, cols[0].Default)
	assert.Equal(t, "auto_increment", cols[0].Extra)

	assert.True(t, cols[1].Nullable)
	require.NotNil(t, cols[1].Default)
	assert.Equal(t, "anon", *cols[1].Default)
	assert.Equal(t, 2, cols[1].Position)
}

func TestTableStats(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		a, mock := newMockAdapter(t)
		mock.ExpectQuery(statsQuery).WithArgs("users").WillReturnRows(
			sqlmock.NewRows([]string{"ENGINE", "TABLE_ROWS", "SIZE_BYTES", "TABLE_COLLATION"}).
				AddRow("InnoDB", int64(12), int64(16384), "utf8mb4_general_ci"),
		)

		stats := a.TableStats(context.Background(), "users")
		assert.Equal(t, "InnoDB", stats.Engine)
		assert.Equal(t, "utf8mb4_general_ci", stats.Collation)
		require.NotNil(t, stats.RowCount)
		assert.Equal(t, int64(12), *stats.RowCount)
		require.NotNil(t, stats.SizeBytes)
		assert.Equal(t, int64(16384), *stats.SizeBytes)
	})

	t.Run("catalog failure degrades to unknown", func(t *testing.T) {
		a, mock := newMockAdapter(t)
		mock.ExpectQuery(statsQuery).WithArgs("users").WillReturnError(errors.New("access denied"))

		stats := a.TableStats(context.Background(), "users")
		assert.Equal(t, core.TableStats{}, stats)
	})
}

func TestCreateStatement(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery("SHOW CREATE TABLE `users`").WillReturnRows(
		sqlmock.NewRows([]string{"Table", "Create Table"}).AddRow("users", "CREATE TABLE `users` (\n  `id` int\n)"),
	)

	stmt, err := a.CreateStatement(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `users` (\n  `id` int\n)", stmt)
}

func TestStatements(t *testing.T) {
	a := New(nil)
	null := "null"
	empty := ""
	src := core.TableRef{Database: "shop", Name: "users"}
	dst := core.TableRef{Database: "archive", Name: "users_copy"}

	assert.Equal(t, "CREATE DATABASE `shop`", a.CreateDatabaseSQL("shop"))
	assert.Equal(t, "DROP DATABASE `shop`", a.DropDatabaseSQL("shop"))
	assert.Equal(t, "RENAME TABLE `users` TO `people`", a.RenameTableSQL(core.Table("users"), core.Table("people")))
	assert.Equal(t, "TRUNCATE TABLE `users`", a.TruncateTableSQL(core.Table("users")))
	assert.Equal(t, "DROP TABLE `shop`.`users`", a.DropTableSQL(src))

	copySQL, err := a.CopyStructureSQL(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `archive`.`users_copy` LIKE `shop`.`users`", copySQL)

	assert.Equal(t,
		"ALTER TABLE `users` ADD COLUMN `note` TEXT NULL DEFAULT NULL",
		a.AddColumnSQL("users", core.ColumnDef{Name: "note", Type: "TEXT", Nullable: true, Default: &null}))
	assert.Equal(t,
		"ALTER TABLE `users` ADD COLUMN `code` VARCHAR(10) NOT NULL DEFAULT ''",
		a.AddColumnSQL("users", core.ColumnDef{Name: "code", Type: "VARCHAR", Length: "10", Default: &empty}))

	create := a.CreateTableSQL("users", []core.ColumnDef{
		{Name: "id", Type: "INT", AutoIncrement: true, PrimaryKey: true},
		{Name: "name", Type: "VARCHAR", Length: "255", Nullable: true},
	})
	assert.Equal(t, "CREATE TABLE `users` (\n"+
		"  `id` INT NOT NULL AUTO_INCREMENT PRIMARY KEY,\n"+
		"  `name` VARCHAR(255) NULL\n"+
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4", create)
}

func TestMatchSQL(t *testing.T) {
	a := New(nil)
	col := a.QuoteIdentifier("name")
	tests := []struct {
		op   core.Operator
		want string
	}{
		{core.OpContains, "`name` LIKE '%al%'"},
		{core.OpEquals, "`name` = 'al'"},
		{core.OpNotEquals, "`name` != 'al'"},
		{core.OpStartsWith, "`name` LIKE 'al%'"},
		{core.OpEndsWith, "`name` LIKE '%al'"},
		{core.OpRegex, "`name` REGEXP 'al'"},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, a.MatchSQL(col, tt.op, "al"))
		})
	}
}

func TestServerVersion(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery("SELECT VERSION()").WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("8.0.36"))

	v, err := a.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.0.36", v)
}
