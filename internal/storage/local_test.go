package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stage(t *testing.T, dir, name, body string) *Upload {
	t.Helper()
	u, err := Stage(dir, "images", name, strings.NewReader(body), 1<<20)
	require.NoError(t, err)
	return u
}

func TestStage(t *testing.T) {
	dir := t.TempDir()

	u := stage(t, dir, "photo.JPG", "hello")
	assert.Equal(t, "photo.JPG", u.Filename)
	assert.Equal(t, ".jpg", u.Extension)
	assert.Equal(t, int64(5), u.Size)
	assert.FileExists(t, u.Path())

	require.NoError(t, u.Discard())
	assert.NoFileExists(t, u.Path())
	require.NoError(t, u.Discard(), "discarding twice is harmless")
}

func TestStage_TooLarge(t *testing.T) {
	dir := t.TempDir()

	_, err := Stage(dir, "images", "big.png", bytes.NewReader(make([]byte, 11)), 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected payload must not leave a staged file")
}

func TestStage_ExtensionFromContent(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	u, err := Stage(t.TempDir(), "image", "noext", bytes.NewReader(png), 1<<20)
	require.NoError(t, err)
	defer u.Discard()

	assert.Equal(t, "image/png", u.ContentType)
	assert.Equal(t, ".png", u.Extension)
}

func TestLocal_PutAndDelete(t *testing.T) {
	ctx := context.Background()
	staging := t.TempDir()
	store, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	u := stage(t, staging, "a.jpg", "image-bytes")
	ref, err := store.Put(ctx, u, "gallery")
	require.NoError(t, err)

	assert.Nil(t, ref.Handle, "local references carry no deletion handle")
	assert.True(t, strings.HasPrefix(ref.URL, "/uploads/gallery/"), ref.URL)
	assert.True(t, strings.HasSuffix(ref.URL, ".jpg"), ref.URL)
	assert.NoFileExists(t, u.Path(), "staged copy is removed after put")

	stored := filepath.Join(store.Root(), strings.TrimPrefix(ref.URL, "/uploads/"))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	require.NoError(t, store.Delete(ctx, ref))
	assert.NoFileExists(t, stored)

	require.NoError(t, store.Delete(ctx, ref), "deleting an absent asset is success")
}

func TestLocal_PutDistinctNames(t *testing.T) {
	ctx := context.Background()
	staging := t.TempDir()
	store, err := NewLocal(t.TempDir(), "http://cdn.example.com/")
	require.NoError(t, err)

	first, err := store.Put(ctx, stage(t, staging, "same.png", "x"), "gallery")
	require.NoError(t, err)
	second, err := store.Put(ctx, stage(t, staging, "same.png", "x"), "gallery")
	require.NoError(t, err)

	assert.NotEqual(t, first.URL, second.URL)
	assert.True(t, strings.HasPrefix(first.URL, "http://cdn.example.com/uploads/gallery/"), first.URL)

	require.NoError(t, store.Delete(ctx, first))
	stored := filepath.Join(store.Root(), "gallery", filepath.Base(second.URL))
	assert.FileExists(t, stored)
}

func TestLocal_PutFailureRemovesStaging(t *testing.T) {
	ctx := context.Background()
	staging := t.TempDir()
	store, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	u := stage(t, staging, "a.jpg", "x")
	require.NoError(t, os.Remove(u.Path()))

	_, err = store.Put(ctx, u, "gallery")
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "a.jpg", uploadErr.Filename)

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocal_DeleteRejectsForeignPaths(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	tests := []string{
		"/etc/passwd",
		"/uploads/../../etc/passwd",
		"https://example.com/static/a.jpg",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.Error(t, store.Delete(ctx, Reference{URL: raw}))
		})
	}
}

func TestLocal_DeleteAbsoluteURL(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	dir := filepath.Join(store.Root(), "subcategories")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	target := filepath.Join(dir, "thumb.png")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	err = store.Delete(ctx, Reference{URL: "http://api.example.com/uploads/subcategories/thumb.png"})
	require.NoError(t, err)
	assert.NoFileExists(t, target)
}

func TestHandleFromURL(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		base   string
		want   string
		wantOK bool
	}{
		{"under public base", "http://localhost:9000/aaxiero/gallery/abc.jpg", "http://localhost:9000/aaxiero", "gallery/abc.jpg", true},
		{"base with trailing slash", "https://cdn.example.com/project/p1.png", "https://cdn.example.com/", "project/p1.png", true},
		{"foreign host", "https://s3.example.com/bucket/gallery/abc.jpg", "https://cdn.example.com", "gallery/abc.jpg", true},
		{"no extension", "https://s3.example.com/bucket/gallery/abc", "", "", false},
		{"single segment", "https://s3.example.com/abc.jpg", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HandleFromURL(tt.raw, tt.base)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type recordingObserver struct {
	puts    []error
	deletes []error
	bytes   int64
}

func (o *recordingObserver) RecordPut(_ string, _ time.Duration, size int64, err error) {
	o.puts = append(o.puts, err)
	if err == nil {
		o.bytes += size
	}
}

func (o *recordingObserver) RecordDelete(_ string, _ time.Duration, err error) {
	o.deletes = append(o.deletes, err)
}

func TestObserve(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	obs := &recordingObserver{}
	store := Observe(local, "local", obs)

	ref, err := store.Put(ctx, stage(t, t.TempDir(), "a.jpg", "12345"), "gallery")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, ref))
	assert.Error(t, store.Delete(ctx, Reference{URL: "/elsewhere/a.jpg"}))

	assert.Len(t, obs.puts, 1)
	assert.Equal(t, int64(5), obs.bytes)
	require.Len(t, obs.deletes, 2)
	assert.NoError(t, obs.deletes[0])
	assert.Error(t, obs.deletes[1])

	assert.Same(t, local, Observe(local, "local", nil))
}
