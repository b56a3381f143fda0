package formbody

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// FileHandler receives the descriptor and raw byte stream of one accepted
// file part. When a handler is supplied, the coordinator hands the stream
// over instead of writing to storage. The handler runs concurrently with
// event processing; the operation does not settle until it returns.
type FileHandler func(file *FilePart, r io.Reader) error

// Options configures one decode operation.
type Options struct {
	Limits Limits
	// UploadDir overrides DefaultUploadDir as the destination for accepted
	// files when no OnFile handler is supplied.
	UploadDir string
	// OnFile, when set, consumes accepted file streams instead of storage.
	OnFile FileHandler
	// MatchMime overrides the default mime acceptance matcher.
	MatchMime MimeMatcher
	// Storage overrides the OS-backed storage writer.
	Storage Storage
	// Logger, when set, receives storage-write failures of abandoned side
	// work. The decode pipelines are otherwise silent.
	Logger *zerolog.Logger
}

// Decode decodes the request body according to its declared content type.
//
// The returned Result is skipped (not handled) for unrecognized content
// types, decoded on success, or rejected with the full set of violations
// when any limit was breached. A non-nil error is reserved for
// transport-level failures: malformed multipart framing, JSON syntax errors,
// interrupted reads. Violations never surface as the error return.
func Decode(ctx context.Context, req *http.Request, opt Options) (Result, error) {
	switch DetectRoute(req.Header.Get("Content-Type")) {
	case RouteJSON:
		return DecodeJSON(ctx, req.Body, opt)
	case RouteURLEncoded:
		lim := opt.Limits.normalize()
		return DecodeForm(ctx, URLEncodedSource(req.Body, lim.formLimits()), opt)
	case RouteMultipart:
		mr, err := req.MultipartReader()
		if err != nil {
			return Result{}, fmt.Errorf("formbody: multipart: %w", err)
		}
		lim := opt.Limits.normalize()
		return DecodeForm(ctx, MultipartSource(mr, lim.formLimits()), opt)
	default:
		return skippedResult(), nil
	}
}

// DecodeForm runs the streaming aggregation pipeline over an arbitrary
// FormSource. Most callers want Decode; this entry point exists for custom
// tokenizers and tests.
func DecodeForm(ctx context.Context, src FormSource, opt Options) (Result, error) {
	return newCoordinator(opt).run(ctx, src)
}
