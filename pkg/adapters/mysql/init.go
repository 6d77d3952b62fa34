// Package mysql provides a MySQL/MariaDB adapter for dabiro.
//
// This file registers the MySQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/dabiro/pkg/adapters/mysql"
package mysql

import (
	"log/slog"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/dialect"
)

// MySQL is the MySQL/MariaDB dialect configuration.
var MySQL = dialect.NewDialect(core.DialectMySQL).
	Identifiers("`", "`", "``").
	Features(
		dialect.FeatureDatabases,
		dialect.FeatureTruncate,
		dialect.FeatureMoveTable,
		dialect.FeatureQualifiedNames,
		dialect.FeatureShowCreate,
	).
	Build()

func init() {
	adapter.Register(core.DialectMySQL, func(l *slog.Logger) adapter.Adapter { return New(l) })
}
