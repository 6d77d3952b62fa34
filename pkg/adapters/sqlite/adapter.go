package sqlite

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger, Dia: SQLite},
	}
}

// Connect opens the database file named by the descriptor's path (or host).
// The database name of the descriptor is ignored.
// Use ":memory:" for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, desc core.ConnectionDescriptor) error {
	path := desc.FilePath()
	if path == "" {
		return &core.ConnectionError{Dialect: core.DialectSQLite, Err: &core.ValidationError{Field: "path", Reason: "is required"}}
	}

	a.Logger.Debug("opening sqlite database", slog.String("path", path))

	db, err := a.OpenDB(ctx, "sqlite", buildSQLiteDSN(path, desc.Options))
	if err != nil {
		return err
	}

	a.DB = db
	a.Desc = desc
	a.Current = MainDatabase
	return nil
}

// buildSQLiteDSN appends a busy timeout pragma and any extra options to path.
func buildSQLiteDSN(path string, options map[string]string) string {
	params := []string{"_pragma=busy_timeout(5000)"}
	for _, k := range slices.Sorted(maps.Keys(options)) {
		params = append(params, k+"="+options[k])
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// UseDatabase accepts only "main".
func (a *Adapter) UseDatabase(_ context.Context, name string) error {
	if name == MainDatabase || name == "" {
		return nil
	}
	return &core.UnsupportedError{Operation: "switching database", Dialect: core.DialectSQLite}
}

// ServerVersion returns the SQLite library version.
func (a *Adapter) ServerVersion(ctx context.Context) (string, error) {
	v, err := a.QueryStrings(ctx, "SELECT sqlite_version()")
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		return "", nil
	}
	return v[0], nil
}
