package postgres

import (
	"context"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Pattern predicates cast to text so LIKE works on any column type, and use
// ILIKE to match the case-insensitive behavior of the other dialects.
var matchSyntax = adapter.MatchSyntax{
	Like:        "ILIKE",
	LikeOperand: func(col string) string { return "CAST(" + col + " AS TEXT)" },
	Regex:       "~",
}

// ColumnDefinition renders a PostgreSQL column definition. AUTO_INCREMENT
// becomes an identity column.
func (a *Adapter) ColumnDefinition(def core.ColumnDef) string {
	var suffix []string
	if def.AutoIncrement {
		suffix = append(suffix, "GENERATED BY DEFAULT AS IDENTITY")
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

// CreateTableSQL renders CREATE TABLE.
func (a *Adapter) CreateTableSQL(table string, defs []core.ColumnDef) string {
	return "CREATE TABLE " + a.QuoteIdentifier(table) + " " + adapter.TableBody(a, defs, a.ColumnDefinition)
}

// AddColumnSQL renders ALTER TABLE ... ADD COLUMN.
func (a *Adapter) AddColumnSQL(table string, def core.ColumnDef) string {
	return "ALTER TABLE " + a.QuoteIdentifier(table) + " ADD COLUMN " + a.ColumnDefinition(def)
}

// RenameTableSQL renders ALTER TABLE ... RENAME TO.
func (a *Adapter) RenameTableSQL(from, to core.TableRef) string {
	return "ALTER TABLE " + a.QuoteTable(from) + " RENAME TO " + a.QuoteIdentifier(to.Name)
}

// DropTableSQL renders DROP TABLE.
func (a *Adapter) DropTableSQL(ref core.TableRef) string {
	return "DROP TABLE " + a.QuoteTable(ref)
}

// TruncateTableSQL renders TRUNCATE TABLE.
func (a *Adapter) TruncateTableSQL(ref core.TableRef) string {
	return "TRUNCATE TABLE " + a.QuoteTable(ref)
}

// CopyStructureSQL renders CREATE TABLE ... (LIKE ... INCLUDING ALL).
func (a *Adapter) CopyStructureSQL(_ context.Context, src, dst core.TableRef) (string, error) {
	return "CREATE TABLE " + a.QuoteTable(dst) + " (LIKE " + a.QuoteTable(src) + " INCLUDING ALL)", nil
}

// MatchSQL renders a filter predicate.
func (a *Adapter) MatchSQL(column string, op core.Operator, value string) string {
	return matchSyntax.Match(a, column, op, value)
}
