package formbody

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FilePart describes one accepted uploaded file as it appears in the result
// tree. It is mutated while the part stream is active and final once the
// operation settles.
type FilePart struct {
	Field    string `json:"field"`
	Name     string `json:"name"` // client-declared filename
	MimeType string `json:"mime_type"`
	// Size mirrors the length of the most recent chunk read from the part
	// stream, not a running total. Consumers that need cumulative byte counts
	// should count in a per-file handler.
	Size int64 `json:"size"`
	// Path is the storage destination when no per-file handler was supplied;
	// empty otherwise.
	Path string `json:"path,omitempty"`
}

// coordinator owns the lifecycle of one form decode operation: it pumps
// tokenizer events, launches per-file side work, accumulates violations, and
// settles exactly once. The stream is always consumed to completion, even
// after a violation, so the underlying connection is never stalled.
type coordinator struct {
	lim     limitSet
	opt     Options
	storage Storage
	tree    map[string]any

	violations Violations

	// side tracks in-flight per-file work (storage writes, handler calls).
	// It is joined after the final event and before settlement.
	side    sync.WaitGroup
	sideMu  sync.Mutex
	sideErr error
}

func newCoordinator(opt Options) *coordinator {
	st := opt.Storage
	if st == nil {
		st = osStorage{}
	}
	return &coordinator{
		lim:     opt.Limits.normalize(),
		opt:     opt,
		storage: st,
		tree:    map[string]any{},
	}
}

func (c *coordinator) run(ctx context.Context, src FormSource) (Result, error) {
	err := c.consume(ctx, src)
	// join side work regardless, so abandoned goroutines never outlive the
	// operation unobserved
	c.side.Wait()
	if err != nil {
		return Result{}, err
	}
	if c.sideErr != nil {
		return Result{}, c.sideErr
	}
	if len(c.violations) > 0 {
		return rejectedResult(c.violations), nil
	}
	return decodedResult(Values(c.tree)), nil
}

func (c *coordinator) consume(ctx context.Context, src FormSource) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch ev.Kind {
		case EventField:
			c.onField(ev)
		case EventFile:
			if err := c.onFile(ev); err != nil {
				return err
			}
		case EventFilesLimit:
			c.report(*checkFileCount(c.lim.maxFiles))
		}
	}
}

func (c *coordinator) onField(ev Event) {
	if v := checkFieldTruncated(ev.Name, ev.NameTruncated, ev.ValueTruncated); v != nil {
		c.report(*v)
		return
	}
	Assign(Values(c.tree), ev.Name, ev.Value)
}

func (c *coordinator) onFile(ev Event) error {
	if ev.Filename == "" {
		// a part advertised as a file but carrying no filename is an empty
		// field: drain, discard, and count nothing
		return drain(ev.Stream)
	}
	fp := &FilePart{Field: ev.Field, Name: ev.Filename, MimeType: ev.MimeType}
	if v := checkMimeType(ev.Field, ev.Filename, ev.MimeType, c.lim.acceptTypes, c.opt.MatchMime); v != nil {
		c.report(*v)
		return drain(ev.Stream)
	}
	sink, err := c.openSink(fp)
	if err != nil {
		_ = drain(ev.Stream)
		return err
	}
	if err := c.pump(ev.Stream, sink, fp); err != nil {
		return err
	}
	if ev.Stream.Truncated() {
		// a truncated file is dropped from the result, not partially included
		c.report(*checkFileSize(fp.Field, fp.Name, true))
		return nil
	}
	Assign(Values(c.tree), ev.Field, fp)
	return nil
}

// openSink routes the file bytes: to the caller's handler when one was
// supplied, otherwise to a uniquely named file under the upload directory.
// The consuming goroutine is tracked in c.side.
func (c *coordinator) openSink(fp *FilePart) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	if c.opt.OnFile != nil {
		c.side.Add(1)
		go func() {
			defer c.side.Done()
			if err := c.opt.OnFile(fp, pr); err != nil {
				c.recordSideErr(err)
				pr.CloseWithError(err)
				return
			}
			// the handler may return before reading everything; release the pump
			_, _ = io.Copy(io.Discard, pr)
			_ = pr.Close()
		}()
		return pw, nil
	}

	dir := c.uploadDir()
	if err := c.storage.EnsureDir(dir); err != nil {
		return nil, err
	}
	fp.Path = filepath.Join(dir, uniqueName(fp.Name))
	w, err := c.storage.Create(fp.Path)
	if err != nil {
		return nil, err
	}
	c.side.Add(1)
	go func() {
		defer c.side.Done()
		_, cerr := io.Copy(w, pr)
		if werr := w.Close(); cerr == nil {
			cerr = werr
		}
		if cerr != nil {
			c.recordSideErr(cerr)
			pr.CloseWithError(cerr)
			log := c.logger()
			log.Error().Err(cerr).Str("path", fp.Path).Msg("upload write failed")
			return
		}
		_ = pr.Close()
	}()
	return pw, nil
}

// pump copies the part stream into sink chunk by chunk, mirroring the latest
// chunk length into fp.Size. The stream is consumed to EOF even when the
// sink gives up, so the transport keeps moving.
func (c *coordinator) pump(stream FileStream, sink io.WriteCloser, fp *FilePart) error {
	buf := make([]byte, 32*1024)
	broken := false
	for {
		n, rerr := stream.Read(buf)
		if n > 0 {
			fp.Size = int64(n)
			if !broken {
				if _, werr := sink.Write(buf[:n]); werr != nil {
					// the consumer already recorded its failure; keep draining
					broken = true
				}
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			_ = sink.Close()
			return rerr
		}
	}
	return sink.Close()
}

func (c *coordinator) report(v Violation) {
	c.violations = AppendViolations(c.violations, v)
}

func (c *coordinator) recordSideErr(err error) {
	c.sideMu.Lock()
	if c.sideErr == nil {
		c.sideErr = err
	}
	c.sideMu.Unlock()
}

func (c *coordinator) uploadDir() string {
	if c.opt.UploadDir != "" {
		return c.opt.UploadDir
	}
	return DefaultUploadDir
}

func (c *coordinator) logger() zerolog.Logger {
	if c.opt.Logger != nil {
		return *c.opt.Logger
	}
	return zerolog.Nop()
}

func drain(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, err := io.Copy(io.Discard, r)
	return err
}
