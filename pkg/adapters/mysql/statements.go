package mysql

import (
	"context"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// tableOptions are appended to every CREATE TABLE.
const tableOptions = " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

var matchSyntax = adapter.MatchSyntax{Like: "LIKE", Regex: "REGEXP"}

// ColumnDefinition renders a MySQL column definition.
func (a *Adapter) ColumnDefinition(def core.ColumnDef) string {
	var suffix []string
	if def.AutoIncrement {
		suffix = append(suffix, "AUTO_INCREMENT")
	}
	if def.PrimaryKey {
		suffix = append(suffix, "PRIMARY KEY")
	}
	return adapter.ColumnDefinition(a, def, def.TypeWithLength(), suffix...)
}

// CreateDatabaseSQL renders CREATE DATABASE.
func (a *Adapter) CreateDatabaseSQL(name string) string {
	return "CREATE DATABASE " + a.QuoteIdentifier(name)
}

// DropDatabaseSQL renders DROP DATABASE.
func (a *Adapter) DropDatabaseSQL(name string) string {
	return "DROP DATABASE " + a.QuoteIdentifier(name)
}

// CreateTableSQL renders CREATE TABLE with the InnoDB/utf8mb4 table options.
func (a *Adapter) CreateTableSQL(table string, defs []core.ColumnDef) string {
	return "CREATE TABLE " + a.QuoteIdentifier(table) + " " + adapter.TableBody(a, defs, a.ColumnDefinition) + tableOptions
}

// AddColumnSQL renders ALTER TABLE ... ADD COLUMN.
func (a *Adapter) AddColumnSQL(table string, def core.ColumnDef) string {
	return "ALTER TABLE " + a.QuoteIdentifier(table) + " ADD COLUMN " + a.ColumnDefinition(def)
}

// RenameTableSQL renders RENAME TABLE, which also moves tables across databases.
func (a *Adapter) RenameTableSQL(from, to core.TableRef) string {
	return "RENAME TABLE " + a.QuoteTable(from) + " TO " + a.QuoteTable(to)
}

// DropTableSQL renders DROP TABLE.
func (a *Adapter) DropTableSQL(ref core.TableRef) string {
	return "DROP TABLE " + a.QuoteTable(ref)
}

// TruncateTableSQL renders TRUNCATE TABLE.
func (a *Adapter) TruncateTableSQL(ref core.TableRef) string {
	return "TRUNCATE TABLE " + a.QuoteTable(ref)
}

// CopyStructureSQL renders CREATE TABLE ... LIKE.
func (a *Adapter) CopyStructureSQL(_ context.Context, src, dst core.TableRef) (string, error) {
	return "CREATE TABLE " + a.QuoteTable(dst) + " LIKE " + a.QuoteTable(src), nil
}

// MatchSQL renders a filter predicate.
func (a *Adapter) MatchSQL(column string, op core.Operator, value string) string {
	return matchSyntax.Match(a, column, op, value)
}
