// Package postgres provides a PostgreSQL database adapter for dabiro.
//
// This file registers the PostgreSQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/dabiro/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/dialect"
)

// Postgres is the PostgreSQL dialect configuration.
// Catalogs are separate connections, so statements never qualify table names
// with a database.
var Postgres = dialect.NewDialect(core.DialectPostgres).
	Identifiers(`"`, `"`, `""`).
	DefaultDatabase("postgres").
	Features(
		dialect.FeatureDatabases,
		dialect.FeatureTruncate,
	).
	Build()

func init() {
	adapter.Register(core.DialectPostgres, func(l *slog.Logger) adapter.Adapter { return New(l) })
}
