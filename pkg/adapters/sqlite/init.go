// Package sqlite provides a SQLite database adapter for dabiro, backed by the
// pure Go modernc.org/sqlite driver.
//
// A SQLite connection is a single file with one logical database, "main".
// Database creation, TRUNCATE and cross-database moves are not available.
//
//	import _ "github.com/leapstack-labs/dabiro/pkg/adapters/sqlite"
package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/dialect"
)

// MainDatabase is the only database name a SQLite handle reports.
const MainDatabase = "main"

// SQLite is the SQLite dialect configuration.
var SQLite = dialect.NewDialect(core.DialectSQLite).
	Identifiers("`", "`", "``").
	DefaultDatabase(MainDatabase).
	Features(dialect.FeatureShowCreate).
	Build()

func init() {
	registerFunctions()
	adapter.Register(core.DialectSQLite, func(l *slog.Logger) adapter.Adapter { return New(l) })
}
