package adapter

import (
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/core"
)

// DefaultClause renders the DEFAULT clause of a column definition.
// The literal string NULL (any case) means SQL NULL, and CURRENT_TIMESTAMP
// is kept as a keyword; every other default is quoted.
func DefaultClause(q Quoter, def *string) string {
	if def == nil {
		return ""
	}
	switch strings.ToUpper(strings.TrimSpace(*def)) {
	case "NULL":
		return "DEFAULT NULL"
	case "CURRENT_TIMESTAMP", "CURRENT_TIMESTAMP()":
		return "DEFAULT CURRENT_TIMESTAMP"
	}
	return "DEFAULT " + q.QuoteValue(*def)
}

// ColumnDefinition renders "name type NULL|NOT NULL [DEFAULT ...] suffix..."
// where typeText is the dialect's spelling of the column type.
func ColumnDefinition(q Quoter, def core.ColumnDef, typeText string, suffix ...string) string {
	var sb strings.Builder
	sb.WriteString(q.QuoteIdentifier(def.Name))
	sb.WriteString(" ")
	sb.WriteString(typeText)
	if def.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if clause := DefaultClause(q, def.Default); clause != "" {
		sb.WriteString(" ")
		sb.WriteString(clause)
	}
	for _, s := range suffix {
		if s == "" {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(s)
	}
	return sb.String()
}

// TableBody renders the parenthesized column list of a CREATE TABLE.
// A single primary key column is declared inline by render; several are
// declared as a table-level PRIMARY KEY constraint.
func TableBody(q Quoter, defs []core.ColumnDef, render func(def core.ColumnDef) string) string {
	var pk []string
	for _, d := range defs {
		if d.PrimaryKey {
			pk = append(pk, q.QuoteIdentifier(d.Name))
		}
	}

	lines := make([]string, 0, len(defs)+1)
	for _, d := range defs {
		if len(pk) > 1 {
			d.PrimaryKey = false
		}
		lines = append(lines, "  "+render(d))
	}
	if len(pk) > 1 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	return "(\n" + strings.Join(lines, ",\n") + "\n)"
}

// MatchSyntax describes how a dialect spells pattern predicates.
type MatchSyntax struct {
	Like        string              // LIKE or ILIKE
	LikeOperand func(string) string // optional wrapper around the column for LIKE
	Regex       string              // REGEXP or ~
}

// Match renders "column <op> value" with the value quoted by q.
func (s MatchSyntax) Match(q Quoter, column string, op core.Operator, value string) string {
	likeCol := column
	if s.LikeOperand != nil {
		likeCol = s.LikeOperand(column)
	}
	switch op {
	case core.OpEquals:
		return column + " = " + q.QuoteValue(value)
	case core.OpNotEquals:
		return column + " != " + q.QuoteValue(value)
	case core.OpStartsWith:
		return likeCol + " " + s.Like + " " + q.QuoteValue(value+"%")
	case core.OpEndsWith:
		return likeCol + " " + s.Like + " " + q.QuoteValue("%"+value)
	case core.OpRegex:
		return column + " " + s.Regex + " " + q.QuoteValue(value)
	default:
		return likeCol + " " + s.Like + " " + q.QuoteValue("%"+value+"%")
	}
}
