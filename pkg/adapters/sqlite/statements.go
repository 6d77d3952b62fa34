package sqlite

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

var matchSyntax = adapter.MatchSyntax{Like: "LIKE", Regex: "REGEXP"}

// createTableName matches the table name of a stored CREATE TABLE statement in
// any of SQLite's identifier spellings.
var createTableName = regexp.MustCompile("(?is)^\\s*CREATE\\s+TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?" +
	"(\"(?:[^\"]|\"\")*\"|`(?:[^`]|``)*`|\\[[^\\]]*\\]|'(?:[^']|'')*'|[^\\s(]+)")

// ColumnDefinition renders a SQLite column definition. AUTOINCREMENT is only
// valid on an INTEGER PRIMARY KEY, so the type is forced in that case.
func (a *Adapter) ColumnDefinition(def core.ColumnDef) string {
	typ := def.TypeWithLength()
	var suffix []string
	if def.PrimaryKey {
		if def.AutoIncrement {
			typ = "INTEGER"
			suffix = append(suffix, "PRIMARY KEY AUTOINCREMENT")
		} else {
			suffix = append(suffix, "PRIMARY KEY")
		}
	}
	return adapter.ColumnDefinition(a, def, typ, suffix...)
}

// CreateDatabaseSQL returns "". Databases are files; see FeatureDatabases.
func (a *Adapter) CreateDatabaseSQL(string) string { return "" }

// DropDatabaseSQL returns "".
func (a *Adapter) DropDatabaseSQL(string) string { return "" }

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
	return "ALTER TABLE " + a.QuoteIdentifier(from.Name) + " RENAME TO " + a.QuoteIdentifier(to.Name)
}

// DropTableSQL renders DROP TABLE.
func (a *Adapter) DropTableSQL(ref core.TableRef) string {
	return "DROP TABLE " + a.QuoteIdentifier(ref.Name)
}

// TruncateTableSQL renders DELETE FROM, SQLite's substitute for TRUNCATE.
// Unlike TRUNCATE it is an ordinary row-by-row delete: it fires triggers and
// does not reset AUTOINCREMENT counters.
func (a *Adapter) TruncateTableSQL(ref core.TableRef) string {
	return "DELETE FROM " + a.QuoteIdentifier(ref.Name)
}

// CopyStructureSQL re-issues the stored CREATE TABLE of src under dst's name.
func (a *Adapter) CopyStructureSQL(ctx context.Context, src, dst core.TableRef) (string, error) {
	stmt, err := a.CreateStatement(ctx, src.Name)
	if err != nil {
		return "", err
	}
	loc := createTableName.FindStringSubmatchIndex(stmt)
	if loc == nil {
		return "", fmt.Errorf("cannot parse CREATE statement of %s", src.Name)
	}
	return strings.TrimSpace(stmt[:loc[2]]) + " " + a.QuoteIdentifier(dst.Name) + stmt[loc[3]:], nil
}

// MatchSQL renders a filter predicate. REGEXP is provided by a registered
// Go function.
func (a *Adapter) MatchSQL(column string, op core.Operator, value string) string {
	return matchSyntax.Match(a, column, op, value)
}
