package formbody

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	gojson "github.com/goccy/go-json"
)

// JSONDriver decodes one JSON document from a reader. The default is backed
// by goccy/go-json and may be swapped with SetJSONDriver; an encoding/json
// implementation lives in source/jsonenc.
type JSONDriver interface {
	Decode(r io.Reader) (any, error)
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json-backed driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

func getJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type defaultJSONDriver struct{}

func (defaultJSONDriver) Decode(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (defaultJSONDriver) Name() string { return "go-json" }

// DecodeJSON decodes a JSON body, applying the total-size cap and the
// per-field size limit. Syntax errors are transport-level and returned as a
// plain error; limit breaches become violations on the Result.
func DecodeJSON(ctx context.Context, r io.Reader, opt Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	lim := opt.Limits.normalize()

	data, overLimit, err := readJSONBody(r, lim.maxJSONBytes)
	if err != nil {
		return Result{}, fmt.Errorf("formbody: read json body: %w", err)
	}
	if overLimit {
		return rejectedResult(Violations{jsonSizeViolation(lim.maxJSONBytes)}), nil
	}

	v, err := getJSONDriver().Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("formbody: decode json: %w", err)
	}

	var vs Violations
	walkFieldSizes(v, "", lim.maxFieldBytes, &vs)
	if len(vs) > 0 {
		return rejectedResult(vs), nil
	}
	if m, ok := v.(map[string]any); ok {
		return decodedResult(Values(m)), nil
	}
	return decodedResult(v), nil
}

// readJSONBody buffers the body. When the cap is exceeded the remaining
// bytes are still consumed so the connection is not stalled, and overLimit
// is reported instead of a partial document.
func readJSONBody(r io.Reader, max int64) (data []byte, overLimit bool, err error) {
	if max <= 0 {
		data, err = io.ReadAll(r)
		return data, false, err
	}
	data, err = io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > max {
		if _, err := io.Copy(io.Discard, r); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	return data, false, nil
}

// walkFieldSizes enforces the per-field size limit on every string leaf of
// the parsed document. enclosing carries the nearest object key down the
// walk, so elements of an array attribute their violations to the
// surrounding field rather than forming indexed names of their own. Object
// keys are visited in sorted order to keep violation order stable.
func walkFieldSizes(v any, enclosing string, limit int64, out *Violations) {
	if limit <= 0 {
		return
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkFieldSizes(t[k], k, limit, out)
		}
	case []any:
		for _, e := range t {
			walkFieldSizes(e, enclosing, limit, out)
		}
	case string:
		if viol := checkFieldSize(enclosing, int64(len(t)), limit); viol != nil {
			*out = AppendViolations(*out, *viol)
		}
	}
}
