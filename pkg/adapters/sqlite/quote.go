package sqlite

import (
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
)

// QuoteValue renders v as a SQLite string literal, or NULL.
// SQLite has no backslash escapes; only single quotes are doubled.
// NUL characters are dropped since statement text is NUL-terminated.
// Bytes become a blob literal.
func (a *Adapter) QuoteValue(v any) string {
	if b, ok := v.([]byte); ok {
		return "X'" + adapter.HexText(b) + "'"
	}
	s, ok := adapter.LiteralText(v)
	if !ok {
		return "NULL"
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
