// Package bulk applies one action to many targets and searches a term across
// the tables of a database.
//
// Both are best-effort: a failing target or table is recorded or skipped and
// processing continues. Nothing already done is rolled back.
package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/ddl"
	"github.com/leapstack-labs/dabiro/pkg/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Action is a bulk action.
type Action string

// Bulk actions.
const (
	ActionDrop     Action = "drop"
	ActionTruncate Action = "truncate"
)

// ParseAction resolves an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionDrop, ActionTruncate:
		return a, nil
	}
	return "", &core.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown bulk action %q", s)}
}

// DefaultSearchLimit caps the rows returned per table by Search.
const DefaultSearchLimit = 100

// Engine runs bulk actions and searches against one handle.
type Engine struct {
	h           adapter.Adapter
	op          *ddl.Operator
	schema      *schema.Introspector
	logger      *slog.Logger
	searchLimit int
}

// Option configures an Engine.
type Option func(*Engine)

// WithSearchLimit sets the per-table row cap of Search.
func WithSearchLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.searchLimit = n
		}
	}
}

// NewEngine creates an Engine. If logger is nil, a discard logger is used.
func NewEngine(h adapter.Adapter, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		h:           h,
		op:          ddl.NewOperator(h, logger),
		schema:      schema.New(logger),
		logger:      logger,
		searchLimit: DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs action on each target independently. With a database, targets
// are tables in it; without one, drop targets are databases and truncate
// targets are tables of the current database.
func (e *Engine) Apply(ctx context.Context, action Action, database string, targets []string) core.BulkResult {
	var res core.BulkResult
	for _, target := range targets {
		in, err := intentFor(action, database, target)
		if err == nil {
			_, err = e.op.Execute(ctx, in)
		}
		if err != nil {
			e.logger.Warn("bulk item failed", slog.String("action", string(action)), slog.String("target", target), slog.Any("error", err))
			res.Failures = append(res.Failures, core.ItemFailure{Target: target, Err: err})
			continue
		}
		res.Succeeded++
	}
	return res
}

func intentFor(action Action, database, target string) (ddl.Intent, error) {
	switch action {
	case ActionDrop:
		if database == "" {
			return ddl.DropDatabase{Name: target}, nil
		}
		return ddl.DropTable{Database: database, Table: target}, nil
	case ActionTruncate:
		return ddl.TruncateTable{Database: database, Table: target}, nil
	}
	return nil, &core.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown bulk action %q", action)}
}

// Message summarizes a bulk result, e.g.
// "Drop completed successfully on 2 item(s)".
func Message(action Action, res core.BulkResult) string {
	name := cases.Title(language.English).String(string(action))
	if res.OK() {
		return fmt.Sprintf("%s completed successfully on %d item(s)", name, res.Succeeded)
	}
	return fmt.Sprintf("%s completed with errors: %s", name, strings.Join(res.FailureMessages(), "; "))
}
