package core

// ItemFailure records why one target of a batch failed.
type ItemFailure struct {
	Target string
	Err    error
}

// BulkResult is the outcome of a best-effort batch: some items may have
// succeeded while others failed. It is a result, not an error.
type BulkResult struct {
	Succeeded int
	Failures  []ItemFailure
}

// OK reports whether every item succeeded.
func (r BulkResult) OK() bool {
	return len(r.Failures) == 0
}

// FailureMessages returns "target: message" strings for each failure.
func (r BulkResult) FailureMessages() []string {
	msgs := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		msgs[i] = f.Target + ": " + f.Err.Error()
	}
	return msgs
}
