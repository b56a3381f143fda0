package form

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"testing"
)

func multipartFixture(t *testing.T, build func(w *multipart.Writer)) *multipart.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	build(w)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return multipart.NewReader(&buf, w.Boundary())
}

func collect(t *testing.T, src Source) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if ev.Kind == KindFile {
			// the stream must be consumed before the next event
			b, err := io.ReadAll(ev.Stream)
			if err != nil {
				t.Fatalf("read part: %v", err)
			}
			ev.Value = string(b) // stash for assertions
		}
		events = append(events, ev)
	}
}

func TestMultipart_FieldsAndFiles(t *testing.T) {
	mr := multipartFixture(t, func(w *multipart.Writer) {
		_ = w.WriteField("user.name", "ana")
		fw, _ := w.CreateFormFile("avatar", "me.png")
		_, _ = fw.Write([]byte("png bytes"))
		_ = w.WriteField("active", "true")
	})

	events := collect(t, NewMultipart(mr, Limits{}))
	if len(events) != 3 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Kind != KindField || events[0].Name != "user.name" || events[0].Value != "ana" {
		t.Fatalf("event 0 = %+v", events[0])
	}
	f := events[1]
	if f.Kind != KindFile || f.Field != "avatar" || f.Filename != "me.png" {
		t.Fatalf("event 1 = %+v", f)
	}
	if f.MimeType != "application/octet-stream" {
		t.Fatalf("mime = %q", f.MimeType)
	}
	if f.Value != "png bytes" {
		t.Fatalf("file content = %q", f.Value)
	}
	if events[2].Name != "active" {
		t.Fatalf("event 2 = %+v", events[2])
	}
}

func TestMultipart_FieldValueTruncation(t *testing.T) {
	mr := multipartFixture(t, func(w *multipart.Writer) {
		_ = w.WriteField("bio", "hello world")
		_ = w.WriteField("ok", "abc")
	})

	events := collect(t, NewMultipart(mr, Limits{MaxFieldBytes: 5}))
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if !events[0].ValueTruncated || events[0].Value != "hello" {
		t.Fatalf("event 0 = %+v", events[0])
	}
	if events[1].ValueTruncated {
		t.Fatalf("event 1 should fit: %+v", events[1])
	}
}

func TestMultipart_FieldNameTruncation(t *testing.T) {
	mr := multipartFixture(t, func(w *multipart.Writer) {
		_ = w.WriteField("a.very.long.field.name", "v")
		_ = w.WriteField("ok", "v")
	})

	events := collect(t, NewMultipart(mr, Limits{MaxFieldBytes: 6}))
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if !events[0].NameTruncated || events[0].Name != "a.very" {
		t.Fatalf("event 0 = %+v", events[0])
	}
	if events[1].NameTruncated || events[1].Name != "ok" {
		t.Fatalf("event 1 = %+v", events[1])
	}
}

func TestMultipart_FileStreamCap(t *testing.T) {
	mr := multipartFixture(t, func(w *multipart.Writer) {
		fw, _ := w.CreateFormFile("doc", "big.bin")
		_, _ = fw.Write([]byte("abcdefgh"))
	})

	src := NewMultipart(mr, Limits{MaxFileBytes: 4})
	ev, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(ev.Stream)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "abcd" {
		t.Fatalf("delivered %q", b)
	}
	if !ev.Stream.Truncated() {
		t.Fatalf("expected truncation")
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestMultipart_ExactSizeIsNotTruncated(t *testing.T) {
	mr := multipartFixture(t, func(w *multipart.Writer) {
		fw, _ := w.CreateFormFile("doc", "fit.bin")
		_, _ = fw.Write([]byte("abcd"))
	})

	src := NewMultipart(mr, Limits{MaxFileBytes: 4})
	ev, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(ev.Stream)
	if string(b) != "abcd" || ev.Stream.Truncated() {
		t.Fatalf("delivered %q truncated=%v", b, ev.Stream.Truncated())
	}
}

func TestMultipart_FileCountCeiling(t *testing.T) {
	mr := multipartFixture(t, func(w *multipart.Writer) {
		for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
			fw, _ := w.CreateFormFile("docs[]", name)
			_, _ = fw.Write([]byte(name))
		}
		_ = w.WriteField("after", "1")
	})

	events := collect(t, NewMultipart(mr, Limits{MaxFiles: 1}))
	var kinds []Kind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	// one accepted file, one ceiling signal (emitted once), the trailing field
	want := []Kind{KindFile, KindFilesLimit, KindField}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", kinds, want)
		}
	}
}

func TestMultipart_EmptyFilenameNotCounted(t *testing.T) {
	mr := multipartFixture(t, func(w *multipart.Writer) {
		fw, _ := w.CreateFormFile("anon", "")
		_, _ = fw.Write([]byte("nameless"))
		fw, _ = w.CreateFormFile("named", "real.txt")
		_, _ = fw.Write([]byte("named bytes"))
	})

	events := collect(t, NewMultipart(mr, Limits{MaxFiles: 1}))
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Kind != KindFile || events[0].Filename != "" {
		t.Fatalf("event 0 = %+v", events[0])
	}
	// the empty-filename part left the one-file quota untouched
	if events[1].Kind != KindFile || events[1].Filename != "real.txt" {
		t.Fatalf("event 1 = %+v", events[1])
	}
}
