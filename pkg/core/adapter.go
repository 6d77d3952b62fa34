package core

import "strings"

// Dialect names understood by the adapter registry.
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// ConnectionDescriptor holds everything needed to open a connection.
// It is passed by value and never mutated after a session is opened.
type ConnectionDescriptor struct {
	Dialect  string
	Host     string
	Port     int
	Path     string // SQLite database file; Host is used when empty
	User     string
	Password string
	Database string
	Options  map[string]string
}

// FilePath returns the SQLite file path of the descriptor.
func (d ConnectionDescriptor) FilePath() string {
	if d.Path != "" {
		return d.Path
	}
	return d.Host
}

// NormalizedDialect returns the lower-cased dialect name, mapping common aliases.
func (d ConnectionDescriptor) NormalizedDialect() string {
	switch name := strings.ToLower(strings.TrimSpace(d.Dialect)); name {
	case "mariadb":
		return DialectMySQL
	case "pgsql", "postgresql":
		return DialectPostgres
	case "sqlite3":
		return DialectSQLite
	default:
		return name
	}
}

// TableRef identifies a table. An empty Database means the handle's current database.
type TableRef struct {
	Database string
	Name     string
}

// Table is a shorthand for a TableRef in the current database.
func Table(name string) TableRef {
	return TableRef{Name: name}
}

func (r TableRef) String() string {
	if r.Database == "" {
		return r.Name
	}
	return r.Database + "." + r.Name
}

// Column represents a column in a database table.
// Type is the dialect-native declared type, never normalized.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	Default    *string
	PrimaryKey bool
	Extra      string
	Position   int
}

// TableStats holds best-effort statistics for a table.
// A nil pointer or an empty string means the value is unknown.
type TableStats struct {
	SizeBytes *int64
	RowCount  *int64
	Collation string
	Engine    string
}

// TableMetadata holds the columns and statistics of one table.
type TableMetadata struct {
	Database string
	Name     string
	Columns  []Column
	Stats    TableStats
}
