package formbody

import (
	"io"
	"mime/multipart"

	iform "github.com/reoring/formbody/internal/form"
)

// EventKind enumerates form decoder events.
type EventKind int

const (
	// EventField carries one text field.
	EventField EventKind = iota
	// EventFile announces one file part. Stream must be consumed to EOF
	// before the next call to Next.
	EventFile
	// EventFilesLimit signals the file-count ceiling was hit. Non-fatal.
	EventFilesLimit
)

// FileStream delivers the bytes of one file part. Truncated reports whether
// bytes beyond the file size cap were discarded; it is meaningful only after
// Read returned io.EOF.
type FileStream interface {
	io.Reader
	Truncated() bool
}

// Event is one form decoder event. The fields implied by Kind are set.
type Event struct {
	Kind EventKind

	// EventField
	Name           string
	Value          string
	NameTruncated  bool
	ValueTruncated bool

	// EventFile
	Field    string // field name of the part
	Filename string // client-declared filename, may be empty
	MimeType string
	Stream   FileStream
}

// FormSource abstracts over form tokenizers. Next returns io.EOF once the
// body is exhausted; any other error is transport-level and aborts the
// operation. Custom implementations can be fed to DecodeForm.
type FormSource interface {
	Next() (Event, error)
}

// FormLimits are the raw tokenizer thresholds. Zero values mean unbounded.
type FormLimits struct {
	MaxFiles      int
	MaxFileBytes  int64
	MaxFieldBytes int64
}

// MultipartSource wraps a multipart.Reader as a FormSource.
func MultipartSource(mr *multipart.Reader, lim FormLimits) FormSource {
	return &formSourceAdapter{inner: iform.NewMultipart(mr, toTokenizerLimits(lim))}
}

// URLEncodedSource wraps a url-encoded body as a FormSource.
func URLEncodedSource(r io.Reader, lim FormLimits) FormSource {
	return &formSourceAdapter{inner: iform.NewURLEncoded(r, toTokenizerLimits(lim))}
}

func (l limitSet) formLimits() FormLimits {
	return FormLimits{MaxFiles: l.maxFiles, MaxFileBytes: l.maxFileBytes, MaxFieldBytes: l.maxFieldBytes}
}

func toTokenizerLimits(l FormLimits) iform.Limits {
	return iform.Limits{MaxFiles: l.MaxFiles, MaxFileBytes: l.MaxFileBytes, MaxFieldBytes: l.MaxFieldBytes}
}

type formSourceAdapter struct {
	inner iform.Source
}

func (a *formSourceAdapter) Next() (Event, error) {
	ev, err := a.inner.Next()
	if err != nil {
		return Event{}, err
	}
	return Event{
		Kind:           fromTokenizerKind(ev.Kind),
		Name:           ev.Name,
		Value:          ev.Value,
		NameTruncated:  ev.NameTruncated,
		ValueTruncated: ev.ValueTruncated,
		Field:          ev.Field,
		Filename:       ev.Filename,
		MimeType:       ev.MimeType,
		Stream:         ev.Stream,
	}, nil
}

func fromTokenizerKind(k iform.Kind) EventKind {
	switch k {
	case iform.KindFile:
		return EventFile
	case iform.KindFilesLimit:
		return EventFilesLimit
	default:
		return EventField
	}
}
