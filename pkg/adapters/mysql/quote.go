package mysql

import (
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
)

// literalEscaper mirrors mysql_real_escape_string for the default sql_mode.
var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

// QuoteValue renders v as a single-quoted MySQL string literal, a hex
// literal for bytes, or NULL.
func (a *Adapter) QuoteValue(v any) string {
	return quoteLiteral(v)
}

func quoteLiteral(v any) string {
	if b, ok := v.([]byte); ok {
		return "X'" + adapter.HexText(b) + "'"
	}
	s, ok := adapter.LiteralText(v)
	if !ok {
		return "NULL"
	}
	return "'" + literalEscaper.Replace(s) + "'"
}
