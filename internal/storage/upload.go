package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Upload is a request file spooled to a temp file until a Store consumes it.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Extension   string
	Size        int64

	path string
}

// Stage copies r into a temp file under dir, rejecting payloads larger than
// maxBytes. The caller owns the returned Upload and must hand it to a Store
// or Discard it.
func Stage(dir, field, filename string, r io.Reader, maxBytes int64) (*Upload, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max bytes must be greater than 0")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
	}

	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	u := &Upload{Field: field, Filename: filepath.Base(filename), path: f.Name()}

	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = u.Discard()
		return nil, fmt.Errorf("spool %q: %w", u.Filename, err)
	}
	if n > maxBytes {
		_ = u.Discard()
		return nil, fmt.Errorf("%w: %q is larger than %d bytes", ErrTooLarge, u.Filename, maxBytes)
	}
	u.Size = n

	mt, err := mimetype.DetectFile(u.path)
	if err != nil {
		_ = u.Discard()
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	u.ContentType = mt.String()
	u.Extension = strings.ToLower(filepath.Ext(u.Filename))
	if u.Extension == "" {
		u.Extension = mt.Extension()
	}
	return u, nil
}

// Open opens the staged bytes for reading.
func (u *Upload) Open() (*os.File, error) {
	return os.Open(u.path)
}

// Path returns the staged file location.
func (u *Upload) Path() string {
	return u.path
}

// Discard removes the staged file. Discarding twice is harmless.
func (u *Upload) Discard() error {
	if u == nil || u.path == "" {
		return nil
	}
	if err := os.Remove(u.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// DiscardAll removes every staged file in uploads, ignoring nil entries.
func DiscardAll(uploads []*Upload) {
	for _, u := range uploads {
		_ = u.Discard()
	}
}
