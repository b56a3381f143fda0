package formbody

import "strings"

// Route identifies which decode pipeline handles a request.
type Route int

const (
	// RouteNone means no pipeline applies; the operation is skipped.
	RouteNone Route = iota
	RouteJSON
	RouteURLEncoded
	RouteMultipart
)

var routePrefixes = []struct {
	prefix string
	route  Route
}{
	{"application/json", RouteJSON},
	{"application/x-www-form-urlencoded", RouteURLEncoded},
	{"multipart/form-data", RouteMultipart},
}

// DetectRoute maps a declared Content-Type header value to a route family.
// Matching is a case-sensitive prefix match; parameters such as charset or
// boundary are ignored here and consumed later by the tokenizers. Anything
// unrecognized, including the empty string, yields RouteNone.
func DetectRoute(contentType string) Route {
	for _, rp := range routePrefixes {
		if strings.HasPrefix(contentType, rp.prefix) {
			return rp.route
		}
	}
	return RouteNone
}
