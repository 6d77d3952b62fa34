// Package adapter provides the dialect adapter contract for dabiro.
//
// An Adapter is an open, dialect-tagged connection handle. It owns exactly
// one live connection and tracks the current database explicitly. Everything
// dialect-specific (catalog queries, value quoting, DDL templates) is behind
// this interface so the rest of the system never switches on dialect names.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"

	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/dialect"
)

// Adapter defines the interface that all database adapters must implement.
// An Adapter is not safe for concurrent use.
type Adapter interface {
	Quoter
	Catalog
	Statements

	// Connect opens the connection described by desc. A failure is returned
	// immediately as a *core.ConnectionError; nothing is retried.
	Connect(ctx context.Context, desc core.ConnectionDescriptor) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows and reports rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query executes a statement and collects every row.
	Query(ctx context.Context, sql string, args ...any) (*core.ResultSet, error)

	// Dialect returns the static dialect configuration of this adapter.
	Dialect() *dialect.Dialect

	// Descriptor returns the descriptor the adapter was connected with.
	Descriptor() core.ConnectionDescriptor

	// CurrentDatabase returns the database unqualified names resolve against.
	CurrentDatabase() string

	// UseDatabase switches the current database of the handle.
	UseDatabase(ctx context.Context, name string) error

	// ServerVersion returns the engine version string.
	ServerVersion(ctx context.Context) (string, error)
}

// Quoter renders values and identifiers as SQL text.
type Quoter interface {
	// QuoteValue renders v as a literal. nil renders as NULL.
	QuoteValue(v any) string

	// QuoteIdentifier wraps name in the dialect's identifier quotes.
	QuoteIdentifier(name string) string

	// QuoteTable quotes a possibly database-qualified table reference.
	QuoteTable(ref core.TableRef) string
}

// Catalog reads structural metadata from the system catalog.
// Catalog methods report errors; best-effort degradation is the caller's policy.
type Catalog interface {
	ListDatabases(ctx context.Context) ([]string, error)

	// ListTables lists tables of the current database.
	ListTables(ctx context.Context) ([]string, error)

	ListColumns(ctx context.Context, table string) ([]core.Column, error)

	// TableStats never fails; unknown statistics are left empty.
	TableStats(ctx context.Context, table string) core.TableStats

	// CreateStatement returns the CREATE TABLE text for a table.
	CreateStatement(ctx context.Context, table string) (string, error)
}

// Statements builds dialect-specific statement text. Methods that need to
// read the catalog take a context.
type Statements interface {
	ColumnDefinition(def core.ColumnDef) string
	CreateDatabaseSQL(name string) string
	DropDatabaseSQL(name string) string
	CreateTableSQL(table string, defs []core.ColumnDef) string
	AddColumnSQL(table string, def core.ColumnDef) string
	RenameTableSQL(from, to core.TableRef) string
	DropTableSQL(ref core.TableRef) string
	TruncateTableSQL(ref core.TableRef) string
	CopyStructureSQL(ctx context.Context, src, dst core.TableRef) (string, error)

	// MatchSQL renders "column <op> value" for a filter operator.
	// column must already be quoted.
	MatchSQL(column string, op core.Operator, value string) string
}
