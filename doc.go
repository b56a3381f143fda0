// Package formbody decodes HTTP request bodies into nested data values.
//
// It provides:
//
//   - A single entry point, Decode, that routes a request by content type to
//     either the JSON pipeline or the streaming form pipeline
//     (multipart/form-data and application/x-www-form-urlencoded).
//   - A stable error model via Violations (code, field, message), aggregated
//     across the whole operation instead of failing on the first breach.
//   - Size, count and mime-type limits expressed through Limits, with
//     human-readable size strings ("10mb") accepted anywhere a byte count is.
//   - Path-addressed field assignment: flat field names such as "user.tags[]"
//     or "items[0].sku" build a single nested structure regardless of the
//     order fields arrive in.
//
// Design policy:
//   - Keep only public APIs in the root package; put tokenizer details under
//     internal/.
//   - Alternate JSON drivers live under source/, HTTP framework adapters
//     under middleware/, and the demo server under cmd/formbody.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	res, err := formbody.Decode(ctx, req, formbody.Options{
//		Limits: formbody.Limits{MaxFileSize: "10mb", MaxFiles: 4},
//	})
//	switch {
//	case err != nil:        // transport-level failure
//	case !res.Handled():    // content type not recognized; no body value
//	case !res.OK():         // limit violations: res.Violations()
//	default:                // res.Body() holds the decoded tree
//	}
package formbody
