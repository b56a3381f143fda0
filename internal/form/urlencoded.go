package form

import (
	"fmt"
	"io"
	"net/url"
	"strings"
)

// NewURLEncoded tokenizes an application/x-www-form-urlencoded body into
// field events, preserving the order pairs appear in on the wire.
func NewURLEncoded(r io.Reader, lim Limits) Source {
	return &urlencodedSource{r: r, lim: lim}
}

type urlencodedSource struct {
	r      io.Reader
	lim    Limits
	pairs  []string
	pos    int
	parsed bool
	err    error
}

func (s *urlencodedSource) Next() (Event, error) {
	if !s.parsed {
		s.parsed = true
		body, err := io.ReadAll(s.r)
		if err != nil {
			s.err = err
		} else if len(body) > 0 {
			s.pairs = strings.Split(string(body), "&")
		}
	}
	if s.err != nil {
		return Event{}, s.err
	}
	for s.pos < len(s.pairs) {
		pair := s.pairs[s.pos]
		s.pos++
		if pair == "" {
			continue
		}
		return s.fieldEvent(pair)
	}
	return Event{}, io.EOF
}

func (s *urlencodedSource) fieldEvent(pair string) (Event, error) {
	rawName, rawValue, _ := strings.Cut(pair, "=")
	name, err := url.QueryUnescape(rawName)
	if err != nil {
		return Event{}, fmt.Errorf("urlencoded: bad field name: %w", err)
	}
	value, err := url.QueryUnescape(rawValue)
	if err != nil {
		return Event{}, fmt.Errorf("urlencoded: bad value for %q: %w", name, err)
	}
	name, nameTruncated := capName(name, s.lim.MaxFieldBytes)
	ev := Event{Kind: KindField, Name: name, Value: value, NameTruncated: nameTruncated}
	if max := s.lim.MaxFieldBytes; max > 0 && int64(len(value)) > max {
		ev.Value = value[:max]
		ev.ValueTruncated = true
	}
	return ev, nil
}
