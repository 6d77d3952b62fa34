// Package dialect provides static SQL dialect configuration.
//
// A Dialect describes how a database spells identifiers and which structural
// operations it supports. Concrete dialects are declared by the adapters in
// pkg/adapters/*/.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Feature is a structural capability a dialect may lack.
type Feature uint

// Capabilities checked before any statement is attempted.
const (
	// FeatureDatabases allows CREATE DATABASE / DROP DATABASE.
	FeatureDatabases Feature = 1 << iota
	// FeatureTruncate is a native TRUNCATE TABLE statement.
	FeatureTruncate
	// FeatureMoveTable moves tables between databases.
	FeatureMoveTable
	// FeatureQualifiedNames allows database.table references in statements.
	FeatureQualifiedNames
	// FeatureShowCreate returns the stored CREATE statement of a table.
	FeatureShowCreate
)

var featureNames = map[Feature]string{
	FeatureDatabases:      "databases",
	FeatureTruncate:       "truncate",
	FeatureMoveTable:      "move table",
	FeatureQualifiedNames: "qualified names",
	FeatureShowCreate:     "show create",
}

func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return "unknown"
}

// Dialect is a registered SQL dialect.
type Dialect struct {
	core.DialectConfig
	features Feature
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// Supports reports whether the dialect has the given capability.
func (d *Dialect) Supports(f Feature) bool {
	return d.features&f == f
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
// Embedded quote characters are escaped, so the result is always a single identifier.
func (d *Dialect) QuoteIdentifier(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteTable quotes a table reference. The database part is only emitted
// when the dialect supports qualified names.
func (d *Dialect) QuoteTable(ref core.TableRef) string {
	if ref.Database != "" && d.Supports(FeatureQualifiedNames) {
		return d.QuoteIdentifier(ref.Database) + "." + d.QuoteIdentifier(ref.Name)
	}
	return d.QuoteIdentifier(ref.Name)
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
// Identifiers default to ANSI double quotes.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			DialectConfig: core.DialectConfig{
				Name: name,
				Identifiers: core.IdentifierConfig{
					Quote:    `"`,
					QuoteEnd: `"`,
					Escape:   `""`,
				},
			},
		},
	}
}

// Identifiers configures identifier quoting.
func (b *Builder) Identifiers(quote, quoteEnd, escape string) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:    quote,
		QuoteEnd: quoteEnd,
		Escape:   escape,
	}
	return b
}

// DefaultDatabase sets the database used when a descriptor names none.
func (b *Builder) DefaultDatabase(name string) *Builder {
	b.dialect.DefaultDatabase = name
	return b
}

// Features declares the capabilities of the dialect.
func (b *Builder) Features(fs ...Feature) *Builder {
	for _, f := range fs {
		b.dialect.features |= f
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
