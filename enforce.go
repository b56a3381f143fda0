package formbody

import (
	"fmt"
	"strings"
)

// Pure limit classifiers. Each returns nil when the input is within policy
// and a single Violation otherwise. Refusing further bytes is the
// tokenizers' job; these only translate what was observed into records.

// MimeMatcher decides whether a declared mime type satisfies an accept
// pattern. Injectable via Options for callers with their own matching rules.
type MimeMatcher func(declared, pattern string) bool

// MatchMime is the default matcher. pattern is a comma-separated list of
// alternatives, each an exact type ("application/pdf"), a wildcard subtype
// ("image/*"), or "*". Parameters on the declared type are ignored and
// matching is case-insensitive.
func MatchMime(declared, pattern string) bool {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	for _, alt := range strings.Split(pattern, ",") {
		alt = strings.ToLower(strings.TrimSpace(alt))
		switch {
		case alt == "":
			continue
		case alt == "*", alt == "*/*":
			return true
		case strings.HasSuffix(alt, "/*"):
			if strings.HasPrefix(declared, alt[:len(alt)-1]) {
				return true
			}
		case declared == alt:
			return true
		}
	}
	return false
}

// checkFieldSize classifies a field value length against the field size
// limit. Used by the JSON walk, where lengths are observed directly.
func checkFieldSize(field string, size, limit int64) *Violation {
	if limit <= 0 || size <= limit {
		return nil
	}
	return &Violation{
		Code:    CodeFieldSizeExceeded,
		Field:   field,
		Message: fmt.Sprintf("field %q is %d bytes, over the %d byte field size limit", field, size, limit),
	}
}

// checkFieldTruncated translates tokenizer truncation flags for a text field
// into a record.
func checkFieldTruncated(field string, nameTruncated, valueTruncated bool) *Violation {
	if !nameTruncated && !valueTruncated {
		return nil
	}
	return &Violation{
		Code:    CodeFieldSizeExceeded,
		Field:   field,
		Message: fmt.Sprintf("field %q exceeds the field size limit", field),
	}
}

// checkFileSize translates a stream truncation signal into a record.
func checkFileSize(field, filename string, truncated bool) *Violation {
	if !truncated {
		return nil
	}
	return &Violation{
		Code:    CodeFileSizeExceeded,
		Field:   field,
		Message: fmt.Sprintf("file %q exceeds the file size limit", filename),
	}
}

// checkFileCount translates the tokenizer's file-count ceiling signal into a
// record.
func checkFileCount(limit int) *Violation {
	return &Violation{
		Code:    CodeFileCountExceeded,
		Message: fmt.Sprintf("too many files; at most %d allowed", limit),
	}
}

// checkMimeType classifies a file part's declared mime type against the
// accept pattern. The caller still drains the rejected stream.
func checkMimeType(field, filename, mimeType, pattern string, match MimeMatcher) *Violation {
	if pattern == "" {
		return nil
	}
	if match == nil {
		match = MatchMime
	}
	if match(mimeType, pattern) {
		return nil
	}
	return &Violation{
		Code:    CodeFileTypeRejected,
		Field:   field,
		Message: fmt.Sprintf("file %q of type %q is not an accepted type", filename, mimeType),
	}
}

func jsonSizeViolation(limit int64) Violation {
	return Violation{
		Code:    CodeJSONSizeExceeded,
		Message: fmt.Sprintf("json body exceeds the %d byte size limit", limit),
	}
}
