package formbody

// Values is the decoded body: an object of fields, each a scalar, a nested
// map[string]any, an ordered []any, or a *FilePart for uploaded files.
type Values map[string]any

// Outcome enumerates the three terminal states of a decode operation.
type Outcome int

const (
	// OutcomeSkipped means the content type was not recognized. No body value
	// was produced; this is neither success nor failure.
	OutcomeSkipped Outcome = iota
	// OutcomeDecoded means the body decoded cleanly within all limits.
	OutcomeDecoded
	// OutcomeRejected means one or more limit violations were recorded. The
	// stream was still consumed to completion, but no partial body survives.
	OutcomeRejected
)

// Result is the settled outcome of one decode operation. A Result is produced
// exactly once per operation and is immutable afterwards.
type Result struct {
	outcome    Outcome
	value      any
	violations Violations
}

func skippedResult() Result { return Result{outcome: OutcomeSkipped} }

func decodedResult(v any) Result { return Result{outcome: OutcomeDecoded, value: v} }

func rejectedResult(vs Violations) Result {
	return Result{outcome: OutcomeRejected, violations: vs}
}

// Outcome reports the terminal state of the operation.
func (r Result) Outcome() Outcome { return r.outcome }

// Handled reports whether a decode pipeline ran at all. It is false exactly
// when the content type was not recognized.
func (r Result) Handled() bool { return r.outcome != OutcomeSkipped }

// OK reports whether the body decoded without violations.
func (r Result) OK() bool { return r.outcome == OutcomeDecoded }

// Value returns the decoded document. For form bodies this is always a
// Values tree; for JSON bodies it is whatever the document's top level is.
func (r Result) Value() any { return r.value }

// Body returns the decoded tree when the document's top level is an object,
// and nil otherwise.
func (r Result) Body() Values {
	switch t := r.value.(type) {
	case Values:
		return t
	case map[string]any:
		return Values(t)
	default:
		return nil
	}
}

// Violations returns the violations recorded during the operation, in
// emission order. Empty unless the outcome is OutcomeRejected.
func (r Result) Violations() Violations { return r.violations }

// Err returns the violations as an error, or nil when there are none.
func (r Result) Err() error {
	if len(r.violations) == 0 {
		return nil
	}
	return r.violations
}
