package mysql

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Adapter implements the adapter.Adapter interface for MySQL and MariaDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a new MySQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{
			Logger:    logger,
			Dia:       MySQL,
			ErrorCode: errorNumber,
		},
	}
}

// Connect establishes a connection to MySQL. The descriptor's database,
// when given, becomes the current database.
func (a *Adapter) Connect(ctx context.Context, desc core.ConnectionDescriptor) error {
	a.Logger.Debug("connecting to mysql", slog.String("host", desc.Host), slog.String("database", desc.Database))

	db, err := a.OpenDB(ctx, "mysql", buildMySQLDSN(desc))
	if err != nil {
		return err
	}

	a.DB = db
	a.Desc = desc
	a.Current = desc.Database
	return nil
}

// buildMySQLDSN constructs a go-sql-driver DSN. A host starting with "/" is a unix socket.
func buildMySQLDSN(desc core.ConnectionDescriptor) string {
	cfg := mysql.NewConfig()
	cfg.User = desc.User
	cfg.Passwd = desc.Password
	cfg.DBName = desc.Database
	cfg.MultiStatements = true

	host := desc.Host
	if host == "" {
		host = "localhost"
	}
	if strings.HasPrefix(host, "/") {
		cfg.Net = "unix"
		cfg.Addr = host
	} else {
		port := desc.Port
		if port == 0 {
			port = 3306
		}
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	cfg.Params = map[string]string{"charset": "utf8mb4"}
	for k, v := range desc.Options {
		if k == "tls" {
			cfg.TLSConfig = v
			continue
		}
		cfg.Params[k] = v
	}
	return cfg.FormatDSN()
}

// errorNumber returns the MySQL error number of err, or 0.
func errorNumber(err error) int {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return int(me.Number)
	}
	return 0
}

// UseDatabase switches the connection's default database with USE.
func (a *Adapter) UseDatabase(ctx context.Context, name string) error {
	if name == "" {
		return &core.ValidationError{Field: "database", Reason: "is required"}
	}
	if _, err := a.Exec(ctx, "USE "+a.QuoteIdentifier(name)); err != nil {
		return err
	}
	a.Current = name
	return nil
}

// ServerVersion returns the server version string.
func (a *Adapter) ServerVersion(ctx context.Context) (string, error) {
	v, err := a.QueryStrings(ctx, "SELECT VERSION()")
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		return "", nil
	}
	return v[0], nil
}
