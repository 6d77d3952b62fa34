package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// ListDatabases lists every catalog visible to the user.
func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SHOW DATABASES")
}

// ListTables lists tables of the current database.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SHOW TABLES")
}

// ListColumns reads SHOW COLUMNS (Field, Type, Null, Key, Default, Extra).
func (a *Adapter) ListColumns(ctx context.Context, table string) ([]core.Column, error) {
	rs, err := a.Query(ctx, "SHOW COLUMNS FROM "+a.QuoteIdentifier(table))
	if err != nil {
		return nil, err
	}

	cols := make([]core.Column, 0, rs.Len())
	for i, row := range rs.Rows {
		name, _ := adapter.FieldString(row, "Field")
		typ, _ := adapter.FieldString(row, "Type")
		null, _ := adapter.FieldString(row, "Null")
		key, _ := adapter.FieldString(row, "Key")
		extra, _ := adapter.FieldString(row, "Extra")

		col := core.Column{
			Name:       name,
			Type:       typ,
			Nullable:   strings.EqualFold(null, "YES"),
			PrimaryKey: key == "PRI",
			Extra:      extra,
			Position:   i + 1,
		}
		if def, ok := adapter.FieldString(row, "Default"); ok {
			col.Default = &def
		}
		cols = append(cols, col)
	}
	return cols, nil
}

const statsQuery = `SELECT ENGINE, TABLE_ROWS, DATA_LENGTH + INDEX_LENGTH AS SIZE_BYTES, TABLE_COLLATION
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`

// TableStats reads engine, row estimate, size and collation from information_schema.
func (a *Adapter) TableStats(ctx context.Context, table string) core.TableStats {
	var stats core.TableStats
	rs, err := a.Query(ctx, statsQuery, table)
	if err != nil || rs.Len() == 0 {
		if err != nil {
			a.Logger.Debug("table stats unavailable", "table", table, "error", err)
		}
		return stats
	}

	row := rs.Rows[0]
	stats.Engine, _ = adapter.FieldString(row, "ENGINE")
	stats.Collation, _ = adapter.FieldString(row, "TABLE_COLLATION")
	if n, ok := adapter.FieldInt(row, "TABLE_ROWS"); ok {
		stats.RowCount = &n
	}
	if n, ok := adapter.FieldInt(row, "SIZE_BYTES"); ok {
		stats.SizeBytes = &n
	}
	return stats
}

// CreateStatement returns the output of SHOW CREATE TABLE.
func (a *Adapter) CreateStatement(ctx context.Context, table string) (string, error) {
	rs, err := a.Query(ctx, "SHOW CREATE TABLE "+a.QuoteIdentifier(table))
	if err != nil {
		return "", err
	}
	if rs.Len() == 0 {
		return "", fmt.Errorf("table %s not found", table)
	}
	stmt, ok := adapter.FieldString(rs.Rows[0], "Create Table")
	if !ok {
		return "", fmt.Errorf("no CREATE statement for %s", table)
	}
	return stmt, nil
}
