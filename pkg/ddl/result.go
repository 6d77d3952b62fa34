package ddl

import "fmt"

// Steps of multi-statement intents.
const (
	StepCreateStructure = "create structure"
	StepCopyData        = "copy data"
	StepDropSource      = "drop source"
)

// StatementOutcome records one statement of an intent.
type StatementOutcome struct {
	Step         string
	SQL          string
	Executed     bool
	RowsAffected int64
	Err          error
}

// Result lists the statements an intent ran, in order. When a statement
// fails, the outcomes before it are the ones that took effect.
type Result struct {
	Kind       Kind
	Statements []StatementOutcome
}

// Executed returns the number of statements that ran successfully.
func (r *Result) Executed() int {
	n := 0
	for _, s := range r.Statements {
		if s.Executed {
			n++
		}
	}
	return n
}

// Partial reports whether some but not all statements took effect.
func (r *Result) Partial() bool {
	n := r.Executed()
	return n > 0 && n < len(r.Statements)
}

// StepError is returned when a statement of an intent fails. Statements of
// earlier steps have already been committed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	if e.Step == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
