package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// ListDatabases lists non-template catalogs alphabetically.
func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname")
}

// ListTables lists base tables of the current schema.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SELECT tablename FROM pg_tables WHERE schemaname = current_schema() ORDER BY tablename")
}

const columnsQuery = `SELECT a.attname AS column_name,
  format_type(a.atttypid, a.atttypmod) AS data_type,
  CASE WHEN a.attnotnull THEN 'NO' ELSE 'YES' END AS is_nullable,
  pg_get_expr(d.adbin, d.adrelid) AS column_default,
  EXISTS (
    SELECT 1 FROM pg_index i
    WHERE i.indrelid = c.oid AND i.indisprimary AND a.attnum = ANY (i.indkey)
  ) AS is_primary,
  t.typtype = 'e' AS is_enum
FROM pg_attribute a
JOIN pg_class c ON c.oid = a.attrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
JOIN pg_type t ON t.oid = a.atttypid
LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
WHERE n.nspname = current_schema() AND c.relname = $1
  AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`

// ListColumns reads pg_attribute. Types are the declared ones from
// format_type, so lengths survive and enums keep their type name; enum
// columns are marked with Extra "enum".
func (a *Adapter) ListColumns(ctx context.Context, table string) ([]core.Column, error) {
	rs, err := a.Query(ctx, columnsQuery, table)
	if err != nil {
		return nil, err
	}

	cols := make([]core.Column, 0, rs.Len())
	for i, row := range rs.Rows {
		name, _ := adapter.FieldString(row, "column_name")
		typ, _ := adapter.FieldString(row, "data_type")
		nullable, _ := adapter.FieldString(row, "is_nullable")
		pk, _ := adapter.FieldString(row, "is_primary")
		enum, _ := adapter.FieldString(row, "is_enum")

		col := core.Column{
			Name:       name,
			Type:       typ,
			Nullable:   strings.EqualFold(nullable, "YES"),
			PrimaryKey: isTrue(pk),
			Position:   i + 1,
		}
		if def, ok := adapter.FieldString(row, "column_default"); ok {
			col.Default = &def
			if strings.HasPrefix(def, "nextval(") {
				col.Extra = "serial"
			}
		}
		if isTrue(enum) {
			col.Extra = "enum"
		}
		cols = append(cols, col)
	}
	return cols, nil
}

const statsQuery = `SELECT pg_total_relation_size(c.oid) AS size_bytes, c.reltuples::bigint AS row_estimate
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE c.relname = $1 AND n.nspname = current_schema()`

const collationQuery = `SELECT datcollate FROM pg_database WHERE datname = current_database()`

// TableStats reads relation size and the planner's row estimate. Collation is
// the database collation; Postgres has no storage engine.
func (a *Adapter) TableStats(ctx context.Context, table string) core.TableStats {
	var stats core.TableStats

	if rs, err := a.Query(ctx, statsQuery, table); err != nil {
		a.Logger.Debug("table stats unavailable", "table", table, "error", err)
	} else if rs.Len() > 0 {
		row := rs.Rows[0]
		if n, ok := adapter.FieldInt(row, "size_bytes"); ok {
			stats.SizeBytes = &n
		}
		// reltuples is -1 for tables that were never analyzed.
		if n, ok := adapter.FieldInt(row, "row_estimate"); ok && n >= 0 {
			stats.RowCount = &n
		}
	}

	if names, err := a.QueryStrings(ctx, collationQuery); err == nil && len(names) > 0 {
		stats.Collation = names[0]
	}
	return stats
}

// CreateStatement synthesizes CREATE TABLE from the column catalog.
// Indexes, constraints other than the primary key, and ownership are not included.
func (a *Adapter) CreateStatement(ctx context.Context, table string) (string, error) {
	cols, err := a.ListColumns(ctx, table)
	if err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("table %s not found", table)
	}

	lines := make([]string, 0, len(cols)+1)
	var pk []string
	for _, c := range cols {
		line := "  " + a.QuoteIdentifier(c.Name) + " " + c.Type
		if !c.Nullable {
			line += " NOT NULL"
		}
		if c.Default != nil {
			line += " DEFAULT " + *c.Default
		}
		lines = append(lines, line)
		if c.PrimaryKey {
			pk = append(pk, a.QuoteIdentifier(c.Name))
		}
	}
	if len(pk) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	return "CREATE TABLE " + a.QuoteIdentifier(table) + " (\n" + strings.Join(lines, ",\n") + "\n)", nil
}

func isTrue(s string) bool {
	return s == "1" || strings.EqualFold(s, "true") || strings.EqualFold(s, "t")
}
