package formbody

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultUploadDir is where accepted files land when no per-file handler and
// no Options.UploadDir are supplied. The only process-wide state the package
// keeps.
var DefaultUploadDir = filepath.Join(os.TempDir(), "formbody-uploads")

// Storage abstracts the destination file system for uploaded files.
type Storage interface {
	// EnsureDir creates the directory (and parents) when absent.
	EnsureDir(dir string) error
	// Create opens a write stream at path, truncating any existing file.
	Create(path string) (io.WriteCloser, error)
}

type osStorage struct{}

func (osStorage) EnsureDir(dir string) error { return os.MkdirAll(dir, 0o755) }

func (osStorage) Create(path string) (io.WriteCloser, error) { return os.Create(path) }

// uniqueName derives a collision-resistant destination name for an upload.
// The upload directory is shared across operations and guarded only by
// naming, not locking, so the suffix does the heavy lifting.
func uniqueName(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(filepath.Base(original), ext)
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "upload"
	}
	return base + "-" + uuid.NewString() + ext
}
