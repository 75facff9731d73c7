// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aaxiero/service/internal/storage"
)

// ErrInjected is the failure returned by FailPutOn / FailDeleteOn.
var ErrInjected = errors.New("injected store failure")

// Memory is a Store keeping object names in memory. It removes staged files
// exactly like the real stores do.
type Memory struct {
	mu       sync.Mutex
	seq      int
	objects  map[string]string
	deleted  []string
	failPut  map[string]bool
	failDel  map[string]bool
	putCalls int
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]string),
		failPut: make(map[string]bool),
		failDel: make(map[string]bool),
	}
}

// Put records the upload under a URL derived from its original filename.
func (m *Memory) Put(_ context.Context, upload *storage.Upload, folder string) (storage.Reference, error) {
	defer func() {
		_ = upload.Discard()
	}()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.failPut[upload.Filename] {
		return storage.Reference{}, &storage.UploadError{Filename: upload.Filename, Err: ErrInjected}
	}
	m.seq++
	url := fmt.Sprintf("mem://%s/%d-%s", folder, m.seq, upload.Filename)
	m.objects[url] = upload.Filename
	return storage.NewReference(url, url), nil
}

// Delete removes the object. Unknown URLs are success.
func (m *Memory) Delete(_ context.Context, ref storage.Reference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ref.URL)
	if m.failDel[ref.URL] {
		return ErrInjected
	}
	delete(m.objects, ref.URL)
	return nil
}

// Seed stores an object directly and returns its reference.
func (m *Memory) Seed(folder, name string) storage.Reference {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	url := fmt.Sprintf("mem://%s/%d-%s", folder, m.seq, name)
	m.objects[url] = name
	return storage.NewReference(url, url)
}

// FailPutOn makes Put fail for uploads with the given original filename.
func (m *Memory) FailPutOn(filename string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPut[filename] = true
}

// FailDeleteOn makes Delete fail for the given URL.
func (m *Memory) FailDeleteOn(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDel[url] = true
}

// Has reports whether the object exists.
func (m *Memory) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[url]
	return ok
}

// Len returns the number of live objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// PutCalls returns how many times Put was invoked.
func (m *Memory) PutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putCalls
}

// Deleted returns every URL passed to Delete, sorted.
func (m *Memory) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.deleted...)
	sort.Strings(out)
	return out
}

// Names maps references back to the original filenames they were stored from.
func Names(refs []storage.Reference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		name := r.URL[strings.LastIndex(r.URL, "/")+1:]
		if i := strings.Index(name, "-"); i >= 0 {
			name = name[i+1:]
		}
		out = append(out, name)
	}
	return out
}

// Stage spools each name as a small upload under dir.
func Stage(t testing.TB, dir string, names ...string) []*storage.Upload {
	t.Helper()
	out := make([]*storage.Upload, 0, len(names))
	for _, name := range names {
		u, err := storage.Stage(dir, "images", name, strings.NewReader("data:"+name), 1<<20)
		require.NoError(t, err)
		out = append(out, u)
	}
	return out
}
