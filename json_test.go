package formbody_test

import (
	"context"
	"strings"
	"testing"

	formbody "github.com/reoring/formbody"
	"github.com/reoring/formbody/source/jsonenc"
)

func decodeJSON(t *testing.T, body string, lim formbody.Limits) (formbody.Result, error) {
	t.Helper()
	return formbody.DecodeJSON(context.Background(), strings.NewReader(body), formbody.Options{Limits: lim})
}

func TestDecodeJSON_Object(t *testing.T) {
	res, err := decodeJSON(t, `{"user":{"name":"ana"},"tags":["a","b"]}`, formbody.Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected decoded result, got %v", res.Violations())
	}
	user, ok := res.Body()["user"].(map[string]any)
	if !ok || user["name"] != "ana" {
		t.Fatalf("body = %v", res.Body())
	}
}

func TestDecodeJSON_TopLevelArray(t *testing.T) {
	res, err := decodeJSON(t, `[1,2,3]`, formbody.Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected decoded result")
	}
	arr, ok := res.Value().([]any)
	if !ok || len(arr) != 3 {
		t.Fatalf("value = %v", res.Value())
	}
	if res.Body() != nil {
		t.Fatalf("Body should be nil for a non-object document")
	}
}

func TestDecodeJSON_FieldSizeLimit(t *testing.T) {
	long := strings.Repeat("x", 50)
	res, err := decodeJSON(t, `{"bio":"`+long+`","name":"ok"}`, formbody.Limits{MaxFieldSize: "10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK() {
		t.Fatalf("expected rejection")
	}
	vs := res.Violations()
	if len(vs) != 1 {
		t.Fatalf("expected exactly one violation, got %v", vs)
	}
	if vs[0].Code != formbody.CodeFieldSizeExceeded || vs[0].Field != "bio" {
		t.Fatalf("violation = %+v", vs[0])
	}
}

// Array elements attribute violations to the nearest enclosing object key.
func TestDecodeJSON_ArrayAttribution(t *testing.T) {
	long := strings.Repeat("x", 20)
	res, err := decodeJSON(t, `{"items":["ok","`+long+`"]}`, formbody.Limits{MaxFieldSize: "10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vs := res.Violations()
	if len(vs) != 1 || vs[0].Field != "items" {
		t.Fatalf("violations = %v", vs)
	}
}

func TestDecodeJSON_ViolationOrderIsStable(t *testing.T) {
	long := strings.Repeat("x", 20)
	body := `{"b":"` + long + `","a":"` + long + `"}`
	for i := 0; i < 5; i++ {
		res, err := decodeJSON(t, body, formbody.Limits{MaxFieldSize: "10"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		vs := res.Violations()
		if len(vs) != 2 || vs[0].Field != "a" || vs[1].Field != "b" {
			t.Fatalf("violations = %v", vs)
		}
	}
}

func TestDecodeJSON_SizeLimit(t *testing.T) {
	body := `{"data":"` + strings.Repeat("x", 100) + `"}`
	res, err := decodeJSON(t, body, formbody.Limits{MaxJSONSize: "50"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vs := res.Violations()
	if len(vs) != 1 || vs[0].Code != formbody.CodeJSONSizeExceeded {
		t.Fatalf("violations = %v", vs)
	}
}

func TestDecodeJSON_SizeLimitJustUnder(t *testing.T) {
	body := `{"a":"b"}`
	res, err := decodeJSON(t, body, formbody.Limits{MaxJSONSize: formbody.ByteSize("9")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("expected decoded result, got %v", res.Violations())
	}
}

func TestDecodeJSON_SyntaxErrorIsTransportLevel(t *testing.T) {
	res, err := decodeJSON(t, `{"broken":`, formbody.Limits{})
	if err == nil {
		t.Fatalf("expected error, got %+v", res)
	}
	if _, ok := formbody.AsViolations(err); ok {
		t.Fatalf("syntax errors must not surface as violations")
	}
}

func TestDecodeJSON_DriverSwap(t *testing.T) {
	formbody.SetJSONDriver(jsonenc.Driver())
	defer formbody.UseDefaultJSONDriver()

	res, err := decodeJSON(t, `{"n":1}`, formbody.Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK() || res.Body()["n"] == nil {
		t.Fatalf("body = %v", res.Body())
	}
}
