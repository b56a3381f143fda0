package formbody

import (
	"errors"
	"fmt"
	"strings"
)

// Violation codes (exported consts for IDE completion and type safety by convention)
const (
	CodeFieldSizeExceeded = "field_size_exceeded"
	CodeFileSizeExceeded  = "file_size_exceeded"
	CodeFileCountExceeded = "file_count_exceeded"
	CodeFileTypeRejected  = "file_type_rejected"
	CodeJSONSizeExceeded  = "json_size_exceeded"
)

// Violation records a single limit or type breach observed while decoding.
// Violations never abort the byte stream; they are collected and surfaced
// together once the operation settles.
type Violation struct {
	Code    string `json:"code"`            // One of the codes listed above.
	Field   string `json:"field,omitempty"` // Field path or file field name, when known.
	Message string `json:"message"`
}

// Violations is a collection of violations that implements error. Order is
// emission order and is stable for a given input.
type Violations []Violation

// Error summarizes the first few violations.
func (vs Violations) Error() string {
	if len(vs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(vs)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		v := vs[i]
		if v.Field != "" {
			fmt.Fprintf(b, "%s at %s", v.Code, v.Field)
		} else {
			b.WriteString(v.Code)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendViolations appends violations to the destination, initializing the
// slice when needed.
func AppendViolations(dst Violations, more ...Violation) Violations {
	if dst == nil {
		dst = Violations{}
	}
	dst = append(dst, more...)
	return dst
}

// AsViolations extracts Violations from an error using errors.As internally.
func AsViolations(err error) (Violations, bool) {
	if err == nil {
		return nil, false
	}
	var vs Violations
	if errors.As(err, &vs) {
		return vs, true
	}
	return nil, false
}
