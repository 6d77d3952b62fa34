package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	// pgx registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger, Dia: Postgres},
	}
}

// Connect establishes a connection to PostgreSQL. Without a database in the
// descriptor it connects to the administrative "postgres" database so that
// databases can still be listed.
func (a *Adapter) Connect(ctx context.Context, desc core.ConnectionDescriptor) error {
	if desc.Database == "" {
		desc.Database = Postgres.DefaultDatabase
	}

	a.Logger.Debug("connecting to postgres", slog.String("host", desc.Host), slog.String("database", desc.Database))

	db, err := a.OpenDB(ctx, "pgx", buildPostgresDSN(desc))
	if err != nil {
		return err
	}

	a.DB = db
	a.Desc = desc
	a.Current = desc.Database
	return nil
}

// UseDatabase reconnects to another catalog with the same credentials.
// On failure the existing connection stays current.
func (a *Adapter) UseDatabase(ctx context.Context, name string) error {
	if name == "" {
		return &core.ValidationError{Field: "database", Reason: "is required"}
	}
	if name == a.Current && a.DB != nil {
		return nil
	}

	desc := a.Desc
	desc.Database = name
	db, err := a.OpenDB(ctx, "pgx", buildPostgresDSN(desc))
	if err != nil {
		return err
	}

	if a.DB != nil {
		_ = a.DB.Close()
	}
	a.DB = db
	a.Desc = desc
	a.Current = name
	a.Logger.Debug("switched database", slog.String("database", name))
	return nil
}

// buildPostgresDSN constructs a PostgreSQL key=value connection string.
func buildPostgresDSN(desc core.ConnectionDescriptor) string {
	host := desc.Host
	if host == "" {
		host = "localhost"
	}

	port := desc.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := desc.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		dsnValue(host), port, dsnValue(desc.Database), dsnValue(sslmode))

	if desc.User != "" {
		dsn += " user=" + dsnValue(desc.User)
	}
	if desc.Password != "" {
		dsn += " password=" + dsnValue(desc.Password)
	}

	return dsn
}

// dsnValue single-quotes a keyword value when it is empty or contains
// spaces, quotes or backslashes.
func dsnValue(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// ServerVersion returns the server_version setting.
func (a *Adapter) ServerVersion(ctx context.Context) (string, error) {
	v, err := a.QueryStrings(ctx, "SHOW server_version")
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		return "", nil
	}
	return v[0], nil
}
