package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the path the API serves the local upload directory under.
const URLPrefix = "/uploads"

// Local implements Store on a directory served by the API at URLPrefix.
type Local struct {
	root       string
	publicBase string
}

// NewLocal creates the upload root if needed. publicBase is prepended to
// returned URLs ("" keeps them host-relative, e.g. "/uploads/gallery/x.jpg").
func NewLocal(root, publicBase string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &Local{root: abs, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Root returns the absolute directory served at URLPrefix.
func (s *Local) Root() string {
	return s.root
}

// Put copies the staged upload to <root>/<folder>/<uuid><ext>.
func (s *Local) Put(_ context.Context, upload *Upload, folder string) (Reference, error) {
	defer func() {
		_ = upload.Discard()
	}()

	key := path.Join(cleanFolder(folder), uuid.NewString()+upload.Extension)
	dest, err := s.hostPath(key)
	if err != nil {
		return Reference{}, uploadFailed(upload, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Reference{}, uploadFailed(upload, fmt.Errorf("create parent dir: %w", err))
	}
	if err := copyStaged(upload, dest); err != nil {
		return Reference{}, uploadFailed(upload, err)
	}
	return Reference{URL: s.publicBase + URLPrefix + "/" + key}, nil
}

// Delete removes the file the reference URL points at.
func (s *Local) Delete(_ context.Context, ref Reference) error {
	key, err := s.keyFromURL(ref.URL)
	if err != nil {
		return err
	}
	dest, err := s.hostPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// copyStaged writes to a sibling temp name and renames it into place so a
// failed copy never leaves a partial file at dest.
func copyStaged(upload *Upload, dest string) error {
	src, err := upload.Open()
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer src.Close()

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move file into place: %w", err)
	}
	return nil
}

// keyFromURL accepts both host-relative ("/uploads/a/b.jpg") and absolute
// ("https://cdn.example/uploads/a/b.jpg") URLs.
func (s *Local) keyFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse asset url: %w", err)
	}
	p := u.Path
	if s.publicBase != "" && strings.HasPrefix(raw, s.publicBase) {
		p = strings.TrimPrefix(raw, s.publicBase)
	}
	if !strings.HasPrefix(p, URLPrefix+"/") {
		return "", fmt.Errorf("asset url %q is outside %s", raw, URLPrefix)
	}
	return strings.TrimPrefix(p, URLPrefix+"/"), nil
}

func (s *Local) hostPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == "." {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal is forbidden: %s", key)
	}
	joined := filepath.Join(s.root, clean)
	if !strings.HasPrefix(joined, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes upload root: %s", key)
	}
	return joined, nil
}

func cleanFolder(folder string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" {
		return "misc"
	}
	return folder
}
