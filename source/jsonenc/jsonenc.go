// Package jsonenc provides a formbody.JSONDriver backed by encoding/json,
// for callers that prefer the standard library decoder over go-json.
package jsonenc

import (
	"encoding/json"
	"io"

	formbody "github.com/reoring/formbody"
)

// Driver returns the encoding/json-backed JSON driver.
func Driver() formbody.JSONDriver { return driver{} }

type driver struct{}

func (driver) Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (driver) Name() string { return "encoding/json" }
