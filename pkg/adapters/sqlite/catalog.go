package sqlite

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// ListDatabases reports the single logical database.
func (a *Adapter) ListDatabases(_ context.Context) ([]string, error) {
	if a.DB == nil {
		return nil, core.ErrNotConnected
	}
	return []string{MainDatabase}, nil
}

const tablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

// ListTables lists user tables; SQLite's internal tables are excluded.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, tablesQuery)
}

// ListColumns reads PRAGMA table_info (cid, name, type, notnull, dflt_value, pk).
func (a *Adapter) ListColumns(ctx context.Context, table string) ([]core.Column, error) {
	rs, err := a.Query(ctx, "PRAGMA table_info("+a.QuoteIdentifier(table)+")")
	if err != nil {
		return nil, err
	}

	cols := make([]core.Column, 0, rs.Len())
	for i, row := range rs.Rows {
		name, _ := adapter.FieldString(row, "name")
		typ, _ := adapter.FieldString(row, "type")
		notNull, _ := adapter.FieldInt(row, "notnull")
		pk, _ := adapter.FieldInt(row, "pk")

		col := core.Column{
			Name:       name,
			Type:       typ,
			Nullable:   notNull == 0,
			PrimaryKey: pk > 0,
			Position:   i + 1,
		}
		if def, ok := adapter.FieldString(row, "dflt_value"); ok {
			col.Default = &def
		}
		cols = append(cols, col)
	}
	return cols, nil
}

const sizeQuery = `SELECT SUM(pgsize) FROM dbstat WHERE name = ?`

// TableStats counts rows exactly and reads the on-disk size from the dbstat
// virtual table when it is available. Collation and engine are unknown.
func (a *Adapter) TableStats(ctx context.Context, table string) core.TableStats {
	var stats core.TableStats

	if n, err := a.QueryInt(ctx, "SELECT COUNT(*) FROM "+a.QuoteIdentifier(table)); err != nil {
		a.Logger.Debug("row count unavailable", "table", table, "error", err)
	} else {
		stats.RowCount = &n
	}

	if n, err := a.QueryInt(ctx, sizeQuery, table); err != nil {
		a.Logger.Debug("table size unavailable", "table", table, "error", err)
	} else {
		stats.SizeBytes = &n
	}
	return stats
}

const createQuery = `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`

// CreateStatement returns the CREATE TABLE text stored in sqlite_master.
func (a *Adapter) CreateStatement(ctx context.Context, table string) (string, error) {
	v, err := a.QueryStrings(ctx, createQuery, table)
	if err != nil {
		return "", err
	}
	if len(v) == 0 || v[0] == "" {
		return "", fmt.Errorf("table %s not found", table)
	}
	return v[0], nil
}
