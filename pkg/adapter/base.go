package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/dialect"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and identifier quoting.
type BaseSQLAdapter struct {
	DB      *sql.DB
	Desc    core.ConnectionDescriptor
	Logger  *slog.Logger
	Current string
	Dia     *dialect.Dialect

	// ErrorCode extracts an engine error number from a driver error, if any.
	ErrorCode func(error) int
}

// OpenDB opens and pings a database/sql handle limited to one physical
// connection, so per-connection state such as the current database survives
// between statements.
func (b *BaseSQLAdapter) OpenDB(ctx context.Context, driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &core.ConnectionError{Dialect: b.dialectName(), Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &core.ConnectionError{Dialect: b.dialectName(), Err: err}
	}
	return db, nil
}

func (b *BaseSQLAdapter) dialectName() string {
	if b.Dia != nil {
		return b.Dia.Name
	}
	return b.Desc.NormalizedDialect()
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection", slog.String("dialect", b.dialectName()))
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Dialect returns the dialect configuration.
func (b *BaseSQLAdapter) Dialect() *dialect.Dialect {
	return b.Dia
}

// Descriptor returns the descriptor the adapter was connected with.
func (b *BaseSQLAdapter) Descriptor() core.ConnectionDescriptor {
	return b.Desc
}

// CurrentDatabase returns the current database name.
func (b *BaseSQLAdapter) CurrentDatabase() string {
	return b.Current
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (b *BaseSQLAdapter) QuoteIdentifier(name string) string {
	return b.Dia.QuoteIdentifier(name)
}

// QuoteTable quotes a table reference.
func (b *BaseSQLAdapter) QuoteTable(ref core.TableRef) string {
	return b.Dia.QuoteTable(ref)
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) (int64, error) {
	if b.DB == nil {
		return 0, core.ErrNotConnected
	}
	b.logStatement(sqlStr)
	res, err := b.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, b.executionError(sqlStr, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Some statements (DDL) have no meaningful count.
		return 0, nil
	}
	return n, nil
}

// Query executes a SQL statement and collects every row into a ResultSet.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*core.ResultSet, error) {
	if b.DB == nil {
		return nil, core.ErrNotConnected
	}
	b.logStatement(sqlStr)
	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, b.executionError(sqlStr, err)
	}
	defer func() { _ = rows.Close() }()

	rs, err := CollectRows(rows)
	if err != nil {
		return nil, b.executionError(sqlStr, err)
	}
	return rs, nil
}

// QueryStrings runs a query and returns the first column of every row as text.
func (b *BaseSQLAdapter) QueryStrings(ctx context.Context, sqlStr string, args ...any) ([]string, error) {
	rs, err := b.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, rs.Len())
	for i := range rs.Rows {
		vals := rs.Values(i)
		if len(vals) == 0 {
			continue
		}
		out = append(out, TextOf(vals[0]))
	}
	return out, nil
}

// QueryInt runs a query returning a single integer value.
func (b *BaseSQLAdapter) QueryInt(ctx context.Context, sqlStr string, args ...any) (int64, error) {
	if b.DB == nil {
		return 0, core.ErrNotConnected
	}
	b.logStatement(sqlStr)
	var n sql.NullInt64
	if err := b.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, b.executionError(sqlStr, err)
	}
	return n.Int64, nil
}

func (b *BaseSQLAdapter) logStatement(sqlStr string) {
	if b.Logger != nil {
		b.Logger.Debug("executing statement", slog.String("dialect", b.dialectName()), slog.String("sql", sqlStr))
	}
}

func (b *BaseSQLAdapter) executionError(sqlStr string, err error) error {
	execErr := &core.ExecutionError{Statement: sqlStr, Err: err}
	if b.ErrorCode != nil {
		execErr.Code = b.ErrorCode(err)
	}
	return execErr
}

// CollectRows reads every row of rows into a ResultSet, normalizing driver
// values by their column's database type.
func CollectRows(rows *sql.Rows) (*core.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	dbTypes := make([]string, len(cols))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
		}
	}

	rs := &core.ResultSet{Columns: cols, Rows: []core.Record{}}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(core.Record, len(cols))
		for i, col := range cols {
			row[col] = NormalizeValue(values[i], dbTypes[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// FieldString returns a record field as text, matching the column name case-insensitively.
// Catalog result column casing differs between engines and versions.
func FieldString(r core.Record, name string) (string, bool) {
	if v, ok := r[name]; ok {
		if v == nil {
			return "", false
		}
		return TextOf(v), true
	}
	for k, v := range r {
		if strings.EqualFold(k, name) {
			if v == nil {
				return "", false
			}
			return TextOf(v), true
		}
	}
	return "", false
}

// FieldInt returns a record field as an integer.
func FieldInt(r core.Record, name string) (int64, bool) {
	s, ok := FieldString(r, name)
	if !ok {
		return 0, false
	}
	var n int64
	if _, err := fmt.Sscan(s, &n); err != nil {
		return 0, false
	}
	return n, true
}
