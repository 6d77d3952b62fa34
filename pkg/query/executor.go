package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/schema"
)

// Executor runs built statements against one handle.
type Executor struct {
	h       adapter.Adapter
	builder *Builder
	schema  *schema.Introspector
	logger  *slog.Logger
}

// NewExecutor creates an Executor for h. If logger is nil, a discard logger is used.
func NewExecutor(h adapter.Adapter, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		h:       h,
		builder: NewBuilder(h, logger),
		schema:  schema.New(logger),
		logger:  logger,
	}
}

// Browse reads one page of a table. The page query and the count share the
// same WHERE clause and run one after the other on the handle's connection.
func (e *Executor) Browse(ctx context.Context, req core.QueryRequest) (*core.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cols := e.schema.ListColumns(ctx, e.h, req.Table)
	stmt := e.builder.Select(req, cols)

	rs, err := e.h.Query(ctx, stmt.Query)
	if err != nil {
		return nil, err
	}

	total, err := e.count(ctx, stmt.Count)
	if err != nil {
		return nil, err
	}

	page := core.NewPage(*rs, total, req.Limit, req.Offset)
	return &page, nil
}

func (e *Executor) count(ctx context.Context, sqlStr string) (int64, error) {
	rs, err := e.h.Query(ctx, sqlStr)
	if err != nil {
		return 0, err
	}
	if rs.Len() == 0 {
		return 0, nil
	}
	row := rs.Rows[0]
	if n, ok := adapter.FieldInt(row, rs.Columns[0]); ok {
		return n, nil
	}
	return 0, nil
}

// Insert adds one row and reports rows affected.
func (e *Executor) Insert(ctx context.Context, table string, rec core.Record) (int64, error) {
	stmt, err := e.builder.Insert(table, rec, e.schema.ListColumns(ctx, e.h, table))
	if err != nil {
		return 0, err
	}
	return e.h.Exec(ctx, stmt)
}

// Update changes the rows equal to the record's original image.
func (e *Executor) Update(ctx context.Context, table string, rec core.Record) (int64, error) {
	stmt, err := e.builder.Update(table, rec, e.schema.ListColumns(ctx, e.h, table))
	if err != nil {
		return 0, err
	}
	return e.h.Exec(ctx, stmt)
}

// Delete removes the rows equal to match.
func (e *Executor) Delete(ctx context.Context, table string, match core.Record) (int64, error) {
	stmt, err := e.builder.Delete(table, match, e.schema.ListColumns(ctx, e.h, table))
	if err != nil {
		return 0, err
	}
	return e.h.Exec(ctx, stmt)
}

// StatementResult is the outcome of an ad-hoc statement: a result set for
// statements that return rows, otherwise the number of rows affected.
type StatementResult struct {
	Rows         *core.ResultSet
	RowsAffected int64
}

// HasRows reports whether the statement produced a result set.
func (r *StatementResult) HasRows() bool {
	return r.Rows != nil
}

var rowKeywords = map[string]bool{
	"SELECT":   true,
	"SHOW":     true,
	"PRAGMA":   true,
	"EXPLAIN":  true,
	"WITH":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"VALUES":   true,
	"TABLE":    true,
}

// ReturnsRows reports whether sqlStr is a statement that produces a result set,
// judged by its first keyword after leading comments.
func ReturnsRows(sqlStr string) bool {
	s := stripLeadingComments(sqlStr)
	s = strings.TrimLeft(s, "( \t\r\n")
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end >= 0 {
		s = s[:end]
	}
	return rowKeywords[strings.ToUpper(s)]
}

func stripLeadingComments(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"), strings.HasPrefix(s, "#"):
			nl := strings.IndexByte(s, '\n')
			if nl < 0 {
				return ""
			}
			s = s[nl+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s, "*/")
			if end < 0 {
				return ""
			}
			s = s[end+2:]
		default:
			return s
		}
	}
}

// RunStatement executes ad-hoc SQL. Engine errors are returned unchanged.
func (e *Executor) RunStatement(ctx context.Context, sqlStr string) (*StatementResult, error) {
	if strings.TrimSpace(sqlStr) == "" {
		return nil, &core.ValidationError{Field: "sql", Reason: "is empty"}
	}
	if ReturnsRows(sqlStr) {
		rs, err := e.h.Query(ctx, sqlStr)
		if err != nil {
			return nil, err
		}
		return &StatementResult{Rows: rs}, nil
	}
	n, err := e.h.Exec(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	return &StatementResult{RowsAffected: n}, nil
}

// ImportSQL executes a SQL script as a single multi-statement exec. The
// script is not split or wrapped in a transaction; statements before a
// failing one stay applied.
func (e *Executor) ImportSQL(ctx context.Context, script string) (int64, error) {
	if strings.TrimSpace(script) == "" {
		return 0, &core.ValidationError{Field: "script", Reason: "is empty"}
	}
	e.logger.Info("importing sql script", slog.Int("bytes", len(script)), slog.String("database", e.h.CurrentDatabase()))
	return e.h.Exec(ctx, script)
}
