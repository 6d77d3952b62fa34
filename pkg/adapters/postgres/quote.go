package postgres

import (
	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/lib/pq"
)

// QuoteValue renders v as a PostgreSQL string literal, or NULL.
// Values containing backslashes use the E-prefixed escape string form.
// Bytes are decoded from hex into bytea.
func (a *Adapter) QuoteValue(v any) string {
	if b, ok := v.([]byte); ok {
		return "decode('" + adapter.HexText(b) + "', 'hex')"
	}
	s, ok := adapter.LiteralText(v)
	if !ok {
		return "NULL"
	}
	return pq.QuoteLiteral(s)
}

// QuoteIdentifier renders name as a double-quoted identifier.
func (a *Adapter) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}
