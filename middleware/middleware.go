// Package middleware holds framework-agnostic plumbing shared by the echo
// and gin body-decoding adapters.
package middleware

import (
	"context"

	formbody "github.com/reoring/formbody"
)

// ctxKeyResult is a typed context key for storing a decoded body Result.
type ctxKeyResult struct{}

// ContextWithResult attaches a settled Result to the context.
func ContextWithResult(ctx context.Context, res formbody.Result) context.Context {
	return context.WithValue(ctx, ctxKeyResult{}, res)
}

// ResultFromContext retrieves a Result from context.
func ResultFromContext(ctx context.Context) (formbody.Result, bool) {
	v, ok := ctx.Value(ctxKeyResult{}).(formbody.Result)
	return v, ok
}

// ErrorPayload shapes Violations for JSON responses.
func ErrorPayload(vs formbody.Violations) map[string]any {
	return map[string]any{"violations": vs}
}
