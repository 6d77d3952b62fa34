// Package schema enumerates structural metadata through an adapter's catalog.
//
// The Introspector is best-effort: a catalog query that fails (missing
// privileges, a dropped table, a lost connection) yields an empty or unknown
// result and a warning in the log, never an error. Callers that need the
// error should use the adapter's Catalog methods directly.
package schema

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Handle is the part of an adapter the Introspector needs.
type Handle interface {
	adapter.Catalog
	CurrentDatabase() string
	UseDatabase(ctx context.Context, name string) error
}

// Introspector reads databases, tables, columns and statistics.
type Introspector struct {
	logger *slog.Logger
}

// New creates an Introspector. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Introspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Introspector{logger: logger}
}

// ListDatabases lists databases visible to the handle.
func (i *Introspector) ListDatabases(ctx context.Context, h Handle) []string {
	dbs, err := h.ListDatabases(ctx)
	if err != nil {
		i.degraded("list databases", err)
		return []string{}
	}
	return dbs
}

// ListTables lists the tables of database. A non-empty database other than
// the current one switches the handle's current database first, and the
// switch persists after the call.
func (i *Introspector) ListTables(ctx context.Context, h Handle, database string) []string {
	if database != "" && database != h.CurrentDatabase() {
		if err := h.UseDatabase(ctx, database); err != nil {
			i.degraded("switch database", err, slog.String("database", database))
			return []string{}
		}
	}

	tables, err := h.ListTables(ctx)
	if err != nil {
		i.degraded("list tables", err, slog.String("database", h.CurrentDatabase()))
		return []string{}
	}
	return tables
}

// ListColumns lists the columns of a table in the current database.
func (i *Introspector) ListColumns(ctx context.Context, h Handle, table string) []core.Column {
	cols, err := h.ListColumns(ctx, table)
	if err != nil {
		i.degraded("list columns", err, slog.String("table", table))
		return []core.Column{}
	}
	return cols
}

// EstimateStats returns best-effort statistics; each field may be unknown.
func (i *Introspector) EstimateStats(ctx context.Context, h Handle, table string) core.TableStats {
	return h.TableStats(ctx, table)
}

// Describe returns the columns and statistics of a table.
func (i *Introspector) Describe(ctx context.Context, h Handle, table string) core.TableMetadata {
	return core.TableMetadata{
		Database: h.CurrentDatabase(),
		Name:     table,
		Columns:  i.ListColumns(ctx, h, table),
		Stats:    i.EstimateStats(ctx, h, table),
	}
}

func (i *Introspector) degraded(op string, err error, attrs ...any) {
	args := append([]any{slog.String("op", op), slog.Any("error", err)}, attrs...)
	i.logger.Warn("catalog query failed, returning empty result", args...)
}
