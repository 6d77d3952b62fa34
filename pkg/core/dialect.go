package core

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data; statement templates live in the adapters.
type DialectConfig struct {
	// Name is the dialect identifier ("mysql", "postgres", "sqlite")
	Name string

	// Identifiers defines quoting rules
	Identifiers IdentifierConfig

	// DefaultDatabase is used when a descriptor names no database
	// ("postgres" for Postgres, "main" for SQLite)
	DefaultDatabase string
}

// IdentifierConfig defines how identifiers are quoted.
type IdentifierConfig struct {
	Quote    string // Quote character: ", `
	QuoteEnd string // End quote character (usually same as Quote)
	Escape   string // Escape sequence for QuoteEnd inside a name: "", ``
}
