package form

import (
	"io"
	"mime"
	"mime/multipart"
)

// NewMultipart tokenizes a multipart/form-data body into events.
func NewMultipart(mr *multipart.Reader, lim Limits) Source {
	return &multipartSource{mr: mr, lim: lim}
}

type multipartSource struct {
	mr    *multipart.Reader
	lim   Limits
	files int
	// limitSent ensures KindFilesLimit is emitted at most once.
	limitSent bool
}

func (s *multipartSource) Next() (Event, error) {
	for {
		part, err := s.mr.NextPart()
		if err != nil {
			// io.EOF for a well-formed terminal boundary; anything else is a
			// transport-level error.
			return Event{}, err
		}

		if !isFilePart(part) {
			return s.fieldEvent(part)
		}

		filename := part.FileName()
		if filename != "" {
			if s.lim.MaxFiles > 0 && s.files >= s.lim.MaxFiles {
				// over the ceiling: drain and discard the part
				_, _ = io.Copy(io.Discard, part)
				if !s.limitSent {
					s.limitSent = true
					return Event{Kind: KindFilesLimit}, nil
				}
				continue
			}
			s.files++
		}

		return Event{
			Kind:     KindFile,
			Field:    part.FormName(),
			Filename: filename,
			MimeType: part.Header.Get("Content-Type"),
			Stream:   newCappedStream(part, s.lim.MaxFileBytes),
		}, nil
	}
}

func (s *multipartSource) fieldEvent(part *multipart.Part) (Event, error) {
	name, nameTruncated := capName(part.FormName(), s.lim.MaxFieldBytes)
	ev := Event{Kind: KindField, Name: name, NameTruncated: nameTruncated}
	value, truncated, err := readCapped(part, s.lim.MaxFieldBytes)
	if err != nil {
		return Event{}, err
	}
	ev.Value = value
	ev.ValueTruncated = truncated
	return ev, nil
}

// isFilePart reports whether the part's Content-Disposition carries a
// filename parameter. An empty filename="" still marks a file part; the
// aggregation layer decides how to treat it.
func isFilePart(part *multipart.Part) bool {
	cd := part.Header.Get("Content-Disposition")
	if cd == "" {
		return false
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

// readCapped reads r fully, returning at most max bytes and a flag telling
// whether anything was discarded. max <= 0 means unbounded.
func readCapped(r io.Reader, max int64) (string, bool, error) {
	if max <= 0 {
		b, err := io.ReadAll(r)
		return string(b), false, err
	}
	b, err := io.ReadAll(io.LimitReader(r, max))
	if err != nil {
		return "", false, err
	}
	rest, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", false, err
	}
	return string(b), rest > 0, nil
}

// cappedStream delivers up to max bytes of the part, then consumes and
// discards the remainder so the connection keeps moving.
type cappedStream struct {
	r         io.Reader
	remaining int64
	unbounded bool
	truncated bool
	drained   bool
}

func newCappedStream(r io.Reader, max int64) *cappedStream {
	return &cappedStream{r: r, remaining: max, unbounded: max <= 0}
}

func (c *cappedStream) Read(p []byte) (int, error) {
	if c.unbounded {
		return c.r.Read(p)
	}
	if c.remaining <= 0 {
		if !c.drained {
			c.drained = true
			n, err := io.Copy(io.Discard, c.r)
			if err != nil {
				return 0, err
			}
			c.truncated = n > 0
		}
		return 0, io.EOF
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}

func (c *cappedStream) Truncated() bool { return c.truncated }
