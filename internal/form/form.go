// Package form holds the low-level form tokenizers: they split a multipart
// or url-encoded byte stream into discrete field/file events and enforce the
// raw read limits (field bytes, file bytes, file count) by truncating, never
// by aborting the stream.
package form

import "io"

// Kind enumerates tokenizer events.
type Kind int

const (
	// KindField carries one text field.
	KindField Kind = iota
	// KindFile announces one file part. The consumer must read Stream to EOF
	// before asking for the next event.
	KindFile
	// KindFilesLimit signals that the file-count ceiling was hit. Emitted at
	// most once; subsequent file parts are drained and discarded.
	KindFilesLimit
)

// Stream delivers the bytes of one file part. Reads past the configured file
// size cap silently consume the remaining part bytes so the transport is
// never stalled; Truncated reports whether that happened. Truncated is only
// meaningful after Read returned io.EOF.
type Stream interface {
	io.Reader
	Truncated() bool
}

// Event is one tokenizer event. Exactly the fields implied by Kind are set.
type Event struct {
	Kind Kind

	// KindField
	Name           string
	Value          string
	NameTruncated  bool
	ValueTruncated bool

	// KindFile
	Field    string // field name of the part
	Filename string // client-declared filename, may be empty
	MimeType string
	Stream   Stream
}

// Source emits an ordered sequence of events and returns io.EOF once the
// underlying body is exhausted.
type Source interface {
	Next() (Event, error)
}

// Limits are the raw tokenizer thresholds. Zero values mean unbounded.
type Limits struct {
	MaxFiles      int
	MaxFileBytes  int64
	MaxFieldBytes int64
}

// capName truncates a field name at max bytes. max <= 0 means unbounded.
func capName(name string, max int64) (string, bool) {
	if max <= 0 || int64(len(name)) <= max {
		return name, false
	}
	return name[:max], true
}
