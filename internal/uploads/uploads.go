package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
)

// allowed maps detected content types to the extension stored on disk.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Store saves uploaded images and returns the public URL path to serve them
// under.
type Store interface {
	Save(ctx context.Context, r io.Reader) (string, error)
}

// Local writes uploads to a directory on disk. Files are renamed to a random
// UUID so client-supplied names never reach the filesystem.
type Local struct {
	dir      string
	maxBytes int64
	baseURL  string
}

// NewLocal creates the upload directory if needed. baseURL is the URL path
// prefix the saved files are served under, e.g. "/uploads".
func NewLocal(dir string, maxBytes int64, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, maxBytes: maxBytes, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Save(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Sniff the real type from the first bytes; the client's filename and
	// Content-Type header are both untrusted.
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	ext, ok := allowed[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.New().String() + ext
	path := filepath.Join(l.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	rest := r
	if l.maxBytes > 0 {
		// One byte past the limit so oversize uploads are detectable.
		rest = io.LimitReader(r, l.maxBytes-int64(len(head))+1)
	}
	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), rest))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if l.maxBytes > 0 && written > l.maxBytes {
		_ = os.Remove(path)
		return "", ErrTooLarge
	}

	return l.baseURL + "/" + name, nil
}
