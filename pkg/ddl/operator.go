package ddl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/leapstack-labs/dabiro/pkg/dialect"
)

// Handle is what the Operator needs from an adapter.
type Handle interface {
	adapter.Quoter
	adapter.Statements
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Dialect() *dialect.Dialect
	CurrentDatabase() string
	UseDatabase(ctx context.Context, name string) error
}

// Operator executes intents against one handle.
type Operator struct {
	h      Handle
	logger *slog.Logger
}

// NewOperator creates an Operator. If logger is nil, a discard logger is used.
func NewOperator(h Handle, logger *slog.Logger) *Operator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Operator{h: h, logger: logger}
}

type step struct {
	name string
	sql  string
}

// Execute validates, plans and runs an intent. Validation and capability
// errors are returned before any statement runs. For multi-statement intents
// a failure is returned as a *StepError together with the Result, whose
// outcomes show which statements took effect.
func (o *Operator) Execute(ctx context.Context, in Intent) (*Result, error) {
	if in == nil {
		return nil, &core.ValidationError{Field: "intent", Reason: "is required"}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := o.checkSupported(in); err != nil {
		return nil, err
	}

	steps, err := o.plan(ctx, in)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: in.Kind(), Statements: make([]StatementOutcome, len(steps))}
	for i, s := range steps {
		res.Statements[i] = StatementOutcome{Step: s.name, SQL: s.sql}
	}

	for i, s := range steps {
		n, err := o.h.Exec(ctx, s.sql)
		if err != nil {
			res.Statements[i].Err = err
			if len(steps) == 1 {
				return res, err
			}
			if i > 0 {
				o.logger.Warn("intent stopped partway; earlier statements are committed",
					slog.String("kind", string(in.Kind())),
					slog.String("failed_step", s.name),
					slog.Int("executed", i))
			}
			return res, &StepError{Step: s.name, Err: err}
		}
		res.Statements[i].Executed = true
		res.Statements[i].RowsAffected = n
	}

	o.logger.Debug("intent executed", slog.String("kind", string(in.Kind())), slog.Int("statements", len(steps)))
	return res, nil
}

func (o *Operator) checkSupported(in Intent) error {
	d := o.h.Dialect()
	unsupported := func(op string) error {
		return &core.UnsupportedError{Operation: op, Dialect: d.GetName()}
	}

	switch in.(type) {
	case CreateDatabase, *CreateDatabase:
		if !d.Supports(dialect.FeatureDatabases) {
			return unsupported("CREATE DATABASE")
		}
	case DropDatabase, *DropDatabase:
		if !d.Supports(dialect.FeatureDatabases) {
			return unsupported("DROP DATABASE")
		}
	case MoveTable, *MoveTable:
		if !d.Supports(dialect.FeatureMoveTable) {
			return unsupported("MOVE TABLE")
		}
	}
	return nil
}

func (o *Operator) plan(ctx context.Context, in Intent) ([]step, error) {
	switch i := in.(type) {
	case *CreateDatabase:
		return o.plan(ctx, *i)
	case *DropDatabase:
		return o.plan(ctx, *i)
	case *CreateTable:
		return o.plan(ctx, *i)
	case *AddColumn:
		return o.plan(ctx, *i)
	case *RenameTable:
		return o.plan(ctx, *i)
	case *DropTable:
		return o.plan(ctx, *i)
	case *TruncateTable:
		return o.plan(ctx, *i)
	case *CopyTable:
		return o.plan(ctx, *i)
	case *MoveTable:
		return o.plan(ctx, *i)

	case CreateDatabase:
		return single(o.h.CreateDatabaseSQL(i.Name)), nil
	case DropDatabase:
		return single(o.h.DropDatabaseSQL(i.Name)), nil
	case CreateTable:
		return single(o.h.CreateTableSQL(i.Table, i.Columns)), nil
	case AddColumn:
		return single(o.h.AddColumnSQL(i.Table, i.Column)), nil
	case RenameTable:
		return single(o.h.RenameTableSQL(core.TableRef{Name: i.Table}, core.TableRef{Name: i.NewName})), nil
	case DropTable:
		ref, err := o.target(ctx, i.Database, i.Table)
		if err != nil {
			return nil, err
		}
		return single(o.h.DropTableSQL(ref)), nil
	case TruncateTable:
		ref, err := o.target(ctx, i.Database, i.Table)
		if err != nil {
			return nil, err
		}
		return single(o.h.TruncateTableSQL(ref)), nil
	case CopyTable:
		return o.planCopy(ctx, core.TableRef{Name: i.Source}, core.TableRef{Name: i.Target}, i.CopyData)
	case MoveTable:
		return o.planMove(ctx, i)
	default:
		return nil, fmt.Errorf("unknown intent %T", in)
	}
}

func single(sql string) []step {
	return []step{{sql: sql}}
}

// target resolves a table in database. Dialects that cannot qualify names
// with a database switch the handle to it first.
func (o *Operator) target(ctx context.Context, database, table string) (core.TableRef, error) {
	ref := core.TableRef{Name: table}
	if database == "" || database == o.h.CurrentDatabase() {
		return ref, nil
	}
	if o.h.Dialect().Supports(dialect.FeatureQualifiedNames) {
		ref.Database = database
		return ref, nil
	}
	if err := o.h.UseDatabase(ctx, database); err != nil {
		return ref, err
	}
	return ref, nil
}

func (o *Operator) planCopy(ctx context.Context, src, dst core.TableRef, copyData bool) ([]step, error) {
	create, err := o.h.CopyStructureSQL(ctx, src, dst)
	if err != nil {
		return nil, err
	}
	steps := []step{{name: StepCreateStructure, sql: create}}
	if copyData {
		steps = append(steps, step{
			name: StepCopyData,
			sql:  "INSERT INTO " + o.h.QuoteTable(dst) + " SELECT * FROM " + o.h.QuoteTable(src),
		})
	}
	return steps, nil
}

// planMove renames within one database. Across databases it copies the
// structure and rows and then drops the source, as three separate statements.
func (o *Operator) planMove(ctx context.Context, i MoveTable) ([]step, error) {
	current := o.h.CurrentDatabase()
	src := core.TableRef{Database: or(i.SourceDatabase, current), Name: i.SourceTable}
	dst := core.TableRef{Database: or(i.TargetDatabase, src.Database), Name: or(i.TargetTable, i.SourceTable)}

	if src.Database == dst.Database {
		if src.Name == dst.Name {
			return nil, &core.ValidationError{Field: "target", Reason: "must differ from source"}
		}
		return []step{{name: "rename", sql: o.h.RenameTableSQL(src, dst)}}, nil
	}

	steps, err := o.planCopy(ctx, src, dst, true)
	if err != nil {
		return nil, err
	}
	return append(steps, step{name: StepDropSource, sql: o.h.DropTableSQL(src)}), nil
}

func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
