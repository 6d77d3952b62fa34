package bulk

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/query"
)

// textType matches declared column types that hold text.
var textType = regexp.MustCompile(`(?i)char|text|enum|set`)

// TableMatch holds the rows of one table that matched a search.
type TableMatch struct {
	Table   string
	Columns []string // searched columns
	Rows    core.ResultSet
}

// TextColumns returns the names of the text-like columns. Enum columns
// count as text whatever their type is named.
func TextColumns(cols []core.Column) []string {
	var out []string
	for _, c := range cols {
		if textType.MatchString(c.Type) || c.Extra == "enum" {
			out = append(out, c.Name)
		}
	}
	return out
}

// Search looks for term in the text-like columns of every table of database
// (the current one when empty). Each table returns at most the search limit.
// Tables without text columns or matches are left out, and tables whose
// query fails are skipped.
func (e *Engine) Search(ctx context.Context, term, database string) ([]TableMatch, error) {
	if term == "" {
		return nil, &core.ValidationError{Field: "term", Reason: "is required"}
	}
	query.AuditValue(e.logger, "search", term)

	var matches []TableMatch
	for _, table := range e.schema.ListTables(ctx, e.h, database) {
		cols := TextColumns(e.schema.ListColumns(ctx, e.h, table))
		if len(cols) == 0 {
			continue
		}

		preds := make([]string, len(cols))
		for i, c := range cols {
			preds[i] = e.h.MatchSQL(e.h.QuoteIdentifier(c), core.OpContains, term)
		}
		sqlStr := "SELECT * FROM " + e.h.QuoteTable(core.TableRef{Name: table}) +
			" WHERE " + strings.Join(preds, " OR ") +
			" LIMIT " + strconv.Itoa(e.searchLimit)

		rs, err := e.h.Query(ctx, sqlStr)
		if err != nil {
			e.logger.Warn("search skipped table", slog.String("table", table), slog.Any("error", err))
			continue
		}
		if rs.Len() == 0 {
			continue
		}
		matches = append(matches, TableMatch{Table: table, Columns: cols, Rows: *rs})
	}
	return matches, nil
}
