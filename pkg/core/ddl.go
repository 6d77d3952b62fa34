package core

import "regexp"

// Type and length are embedded into DDL as written, so they are restricted to
// type names, "10" / "10,2" and quoted ENUM/SET members.
var (
	typePattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*$`)
	lengthPattern = regexp.MustCompile(`^(?:\d+(?:\s*,\s*\d+)?|'(?:[^'\\]|'')*'(?:\s*,\s*'(?:[^'\\]|'')*')*)$`)
)

// ColumnDef is a caller-supplied column definition for CreateTable and AddColumn.
type ColumnDef struct {
	Name          string  `mapstructure:"name"`
	Type          string  `mapstructure:"type"`
	Length        string  `mapstructure:"length"`
	Nullable      bool    `mapstructure:"nullable"`
	Default       *string `mapstructure:"default"`
	AutoIncrement bool    `mapstructure:"auto_increment"`
	PrimaryKey    bool    `mapstructure:"primary_key"`
}

// TypeWithLength returns the type with its length suffix, e.g. VARCHAR(255).
func (c ColumnDef) TypeWithLength() string {
	if c.Length == "" {
		return c.Type
	}
	return c.Type + "(" + c.Length + ")"
}

// Validate checks that the definition has the required fields.
func (c ColumnDef) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "column.name", Reason: "is required"}
	}
	if c.Type == "" {
		return &ValidationError{Field: "column.type", Reason: "is required"}
	}
	if !typePattern.MatchString(c.Type) {
		return &ValidationError{Field: "column.type", Reason: "must be a type name, got " + c.Type}
	}
	if c.Length != "" && !lengthPattern.MatchString(c.Length) {
		return &ValidationError{Field: "column.length", Reason: "must be a size, precision or list of quoted values, got " + c.Length}
	}
	return nil
}
