package request

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aaxiero/service/internal/response"
	"github.com/aaxiero/service/internal/storage"
)

// maxMemory bounds the in-memory part of multipart parsing; larger parts
// spill to disk before they are staged.
const maxMemory = 8 << 20

// Uploads configures how request files are staged.
type Uploads struct {
	StagingDir string
	MaxBytes   int64
}

// Form is a parsed multipart request whose files are staged uploads.
type Form struct {
	values map[string][]string
	files  map[string][]*storage.Upload
}

// Parse reads a multipart or urlencoded body. File parts are staged through
// storage.Stage in the order they arrived. Callers must Discard the form once
// the request is handled.
func (u Uploads) Parse(r *http.Request) (*Form, error) {
	form := &Form{values: map[string][]string{}, files: map[string][]*storage.Upload{}}

	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/") {
		if err := r.ParseForm(); err != nil {
			return nil, ErrInvalidBody
		}
		form.values = r.PostForm
		return form, nil
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, ErrInvalidBody
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()
	form.values = r.MultipartForm.Value

	for field, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			up, err := u.stage(field, fh)
			if err != nil {
				form.Discard()
				return nil, err
			}
			form.files[field] = append(form.files[field], up)
		}
	}
	return form, nil
}

// Read is Parse for handlers: on failure it writes the error response and
// reports false.
func (u Uploads) Read(w http.ResponseWriter, r *http.Request) (*Form, bool) {
	form, err := u.Parse(r)
	switch {
	case err == nil:
		return form, true
	case IsTooLarge(err), errors.Is(err, ErrInvalidBody):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, r, err)
	}
	return nil, false
}

func (u Uploads) stage(field string, fh *multipart.FileHeader) (*storage.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %q: %w", fh.Filename, err)
	}
	defer f.Close()
	return storage.Stage(u.StagingDir, field, fh.Filename, f, u.MaxBytes)
}

// Value returns the trimmed first value for key.
func (f *Form) Value(key string) string {
	if vs := f.values[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// Files returns every upload sent under field, in arrival order.
func (f *Form) Files(field string) []*storage.Upload {
	return f.files[field]
}

// File returns the first upload sent under field, or nil.
func (f *Form) File(field string) *storage.Upload {
	if ups := f.files[field]; len(ups) > 0 {
		return ups[0]
	}
	return nil
}

// Discard removes every staged upload that was not consumed by a store.
func (f *Form) Discard() {
	for _, ups := range f.files {
		storage.DiscardAll(ups)
	}
}

// IsTooLarge reports whether err came from an upload over the byte limit.
func IsTooLarge(err error) bool {
	return errors.Is(err, storage.ErrTooLarge)
}
