// Package storage defines where uploaded assets physically live.
// Swap backends by changing the concrete Store injected at startup: Local writes
// beneath a directory the API serves itself, Minio talks to any S3-compatible
// provider (MinIO, ArvanCloud, AWS S3).
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrTooLarge is returned when a staged upload exceeds the configured byte limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// Reference points at a stored asset. Handle is nil for stores that derive
// the object location from the URL itself.
type Reference struct {
	URL    string  `json:"url"`
	Handle *string `json:"deletionHandle"`
}

// NewReference builds a Reference carrying an opaque deletion handle.
func NewReference(url, handle string) Reference {
	return Reference{URL: url, Handle: &handle}
}

// HandleValue returns the deletion handle or "" when the reference has none.
func (r Reference) HandleValue() string {
	if r.Handle == nil {
		return ""
	}
	return *r.Handle
}

// Store is the interface for persisting and removing uploaded assets.
type Store interface {
	// Put stores the staged upload beneath folder and returns its reference.
	// The staged temp file is removed whether or not Put succeeds.
	Put(ctx context.Context, upload *Upload, folder string) (Reference, error)
	// Delete removes the object behind ref. A missing object is not an error.
	Delete(ctx context.Context, ref Reference) error
}

// UploadError reports a failed Put.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func uploadFailed(u *Upload, err error) error {
	return &UploadError{Filename: u.Filename, Err: err}
}
