package formbody

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// ByteSize expresses a size threshold either as a raw byte count ("1048576")
// or a human-readable size string ("10mb", "512KiB"). All suffixes mean
// binary multiples: "10mb" and "10MiB" are both 10485760 bytes. The empty
// string, and any string that fails to parse, mean unbounded.
type ByteSize string

// Bytes resolves the threshold. ok is false when the limit is unbounded.
func (b ByteSize) Bytes() (n int64, ok bool) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, false
	}
	u, err := humanize.ParseBytes(binarySuffix(s))
	if err != nil {
		return 0, false
	}
	return int64(u), true
}

// binarySuffix rewrites decimal unit suffixes to their binary counterparts
// ("10mb" -> "10mib") so humanize parses every suffix as a power of 1024.
func binarySuffix(s string) string {
	l := strings.ToLower(s)
	for _, suf := range []string{"kb", "mb", "gb", "tb", "pb"} {
		if strings.HasSuffix(l, suf) {
			return l[:len(l)-1] + "ib"
		}
	}
	return s
}

// Limits bundles the thresholds for one decode operation. The zero value
// imposes no limits. Limits are immutable for the lifetime of an operation;
// they are normalized once when decoding starts.
type Limits struct {
	// MaxFiles caps the number of named file parts. Zero means unlimited.
	// Parts with an empty filename are never counted.
	MaxFiles int `json:"max_files" yaml:"max_files"`
	// MaxFileSize caps the bytes of any single file part. Oversized files are
	// truncated by the tokenizer and dropped from the result.
	MaxFileSize ByteSize `json:"max_file_size" yaml:"max_file_size"`
	// MaxFieldSize caps the bytes of any single text field value. It also
	// bounds every string leaf of a JSON body.
	MaxFieldSize ByteSize `json:"max_field_size" yaml:"max_field_size"`
	// MaxJSONSize caps the total bytes of a JSON body.
	MaxJSONSize ByteSize `json:"max_json_size" yaml:"max_json_size"`
	// AcceptTypes restricts file mime types, e.g. "image/*" or
	// "image/png,application/pdf". Empty accepts everything.
	AcceptTypes string `json:"accept_types" yaml:"accept_types"`
}

// limitSet is the normalized form consumed by the pipelines. Zero fields mean
// unbounded.
type limitSet struct {
	maxFiles      int
	maxFileBytes  int64
	maxFieldBytes int64
	maxJSONBytes  int64
	acceptTypes   string
}

func (l Limits) normalize() limitSet {
	ls := limitSet{maxFiles: l.MaxFiles, acceptTypes: strings.TrimSpace(l.AcceptTypes)}
	if n, ok := l.MaxFileSize.Bytes(); ok {
		ls.maxFileBytes = n
	}
	if n, ok := l.MaxFieldSize.Bytes(); ok {
		ls.maxFieldBytes = n
	}
	if n, ok := l.MaxJSONSize.Bytes(); ok {
		ls.maxJSONBytes = n
	}
	return ls
}
