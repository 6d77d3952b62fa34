// Package query builds and executes table reads and row writes.
//
// Values are embedded as literals through the adapter's QuoteValue and
// identifiers through QuoteIdentifier; nothing from a request is interpolated
// raw. Column references are checked against the table's live column list
// and unknown references are dropped rather than reported, so a stale or
// forged request can never produce a SQL error.
package query

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// OldPrefix marks Record fields that carry a row's original value in an update.
const OldPrefix = "old_"

// Dialect is what the Builder needs from an adapter.
type Dialect interface {
	adapter.Quoter
	MatchSQL(column string, op core.Operator, value string) string
}

// Builder renders SELECT, COUNT, INSERT, UPDATE and DELETE statements.
type Builder struct {
	d      Dialect
	logger *slog.Logger
}

// NewBuilder creates a Builder. If logger is nil, a discard logger is used.
func NewBuilder(d Dialect, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{d: d, logger: logger}
}

// SelectStatement is a paginated read and the matching row count.
type SelectStatement struct {
	Query string
	Count string
}

// Select builds the page query and the COUNT(*) query for req. Filters,
// column searches and the sort that reference a column not in columns are
// dropped.
func (b *Builder) Select(req core.QueryRequest, columns []core.Column) SelectStatement {
	known := columnSet(columns)
	table := b.table(req.Table)
	where := b.where(req, known)

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)
	sb.WriteString(where)
	if req.Sort != nil && req.Sort.Column != "" {
		if known[req.Sort.Column] {
			sb.WriteString(" ORDER BY ")
			sb.WriteString(b.d.QuoteIdentifier(req.Sort.Column))
			sb.WriteString(" ")
			sb.WriteString(string(core.ParseSortDirection(string(req.Sort.Direction))))
		} else {
			b.logger.Debug("dropping sort on unknown column", slog.String("column", req.Sort.Column))
		}
	}
	if req.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(req.Limit))
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(max(req.Offset, 0)))
	}

	return SelectStatement{
		Query: sb.String(),
		Count: "SELECT COUNT(*) FROM " + table + where,
	}
}

// where renders " WHERE ..." or "" when no predicate survives validation.
func (b *Builder) where(req core.QueryRequest, known map[string]bool) string {
	var preds []string
	for _, f := range req.Filters {
		if !known[f.Column] {
			b.logger.Debug("dropping filter on unknown column", slog.String("column", f.Column))
			continue
		}
		AuditValue(b.logger, f.Column, f.Value)
		op := f.Operator
		if op == "" {
			op = core.OpContains
		}
		preds = append(preds, b.d.MatchSQL(b.d.QuoteIdentifier(f.Column), op, f.Value))
	}

	for _, col := range slices.Sorted(maps.Keys(req.ColumnSearches)) {
		value := req.ColumnSearches[col]
		if value == "" {
			continue
		}
		if !known[col] {
			b.logger.Debug("dropping search on unknown column", slog.String("column", col))
			continue
		}
		AuditValue(b.logger, col, value)
		preds = append(preds, b.d.MatchSQL(b.d.QuoteIdentifier(col), core.OpContains, value))
	}

	if len(preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(preds, " AND ")
}

// Insert builds INSERT INTO t (cols) VALUES (values) from the record's
// fields that are not prefixed with OldPrefix.
func (b *Builder) Insert(table string, rec core.Record, columns []core.Column) (string, error) {
	fields := b.fields(rec, columns, false)
	if len(fields) == 0 {
		return "", &core.ValidationError{Field: "record", Reason: "has no known columns to insert"}
	}

	names := make([]string, len(fields))
	values := make([]string, len(fields))
	for i, f := range fields {
		names[i] = b.d.QuoteIdentifier(f)
		values[i] = b.d.QuoteValue(rec[f])
	}
	return "INSERT INTO " + b.table(table) + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(values, ", ") + ")", nil
}

// Update builds UPDATE t SET col = new ... WHERE col = old ... . New values
// are the record's plain fields and the original row image is carried in
// fields prefixed with OldPrefix. Every row equal to the original image is
// updated; tables with duplicate rows are updated together.
func (b *Builder) Update(table string, rec core.Record, columns []core.Column) (string, error) {
	set := b.fields(rec, columns, false)
	if len(set) == 0 {
		return "", &core.ValidationError{Field: "record", Reason: "has no known columns to update"}
	}
	old := b.fields(rec, columns, true)
	if len(old) == 0 {
		return "", &core.ValidationError{Field: "record", Reason: "has no original values to match the row"}
	}

	assignments := make([]string, len(set))
	for i, f := range set {
		assignments[i] = b.d.QuoteIdentifier(f) + " = " + b.d.QuoteValue(rec[f])
	}

	match := make(core.Record, len(old))
	for _, f := range old {
		match[f] = rec[OldPrefix+f]
	}
	return "UPDATE " + b.table(table) + " SET " + strings.Join(assignments, ", ") + b.matchClause(match, old), nil
}

// Delete builds DELETE FROM t WHERE col = val AND ... from a row image.
func (b *Builder) Delete(table string, match core.Record, columns []core.Column) (string, error) {
	fields := b.fields(match, columns, false)
	if len(fields) == 0 {
		return "", &core.ValidationError{Field: "match", Reason: "has no known columns to match the row"}
	}
	return "DELETE FROM " + b.table(table) + b.matchClause(match, fields), nil
}

func (b *Builder) matchClause(match core.Record, fields []string) string {
	preds := make([]string, len(fields))
	for i, f := range fields {
		col := b.d.QuoteIdentifier(f)
		if match[f] == nil {
			preds[i] = col + " IS NULL"
		} else {
			preds[i] = col + " = " + b.d.QuoteValue(match[f])
		}
	}
	return " WHERE " + strings.Join(preds, " AND ")
}

// fields returns the record's column names, without OldPrefix when old is
// set, in table column order. Names not in columns are dropped. With no
// columns the record's names are used in sorted order.
func (b *Builder) fields(rec core.Record, columns []core.Column, old bool) []string {
	names := make(map[string]bool, len(rec))
	for k := range rec {
		base, isOld := strings.CutPrefix(k, OldPrefix)
		switch {
		case old && isOld:
			names[base] = true
		case !old && !isOld:
			names[k] = true
		case !old && isOld && hasColumn(columns, k):
			// A real column whose name starts with the prefix.
			names[k] = true
		}
	}

	if len(columns) == 0 {
		return slices.Sorted(maps.Keys(names))
	}

	out := make([]string, 0, len(names))
	for _, c := range columns {
		if names[c.Name] {
			out = append(out, c.Name)
			delete(names, c.Name)
		}
	}
	for n := range names {
		b.logger.Debug("dropping unknown column", slog.String("column", n))
	}
	return out
}

func (b *Builder) table(name string) string {
	return b.d.QuoteTable(core.TableRef{Name: name})
}

func columnSet(columns []core.Column) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c.Name] = true
	}
	return set
}

func hasColumn(columns []core.Column, name string) bool {
	for _, c := range columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
