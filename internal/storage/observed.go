package storage

import (
	"context"
	"time"
)

// Observer captures telemetry for store operations.
type Observer interface {
	RecordPut(backend string, duration time.Duration, sizeBytes int64, err error)
	RecordDelete(backend string, duration time.Duration, err error)
}

type observed struct {
	next     Store
	backend  string
	observer Observer
}

// Observe wraps store so every Put and Delete is reported to observer.
func Observe(store Store, backend string, observer Observer) Store {
	if observer == nil {
		return store
	}
	return &observed{next: store, backend: backend, observer: observer}
}

func (s *observed) Put(ctx context.Context, upload *Upload, folder string) (Reference, error) {
	start := time.Now()
	size := upload.Size
	ref, err := s.next.Put(ctx, upload, folder)
	s.observer.RecordPut(s.backend, time.Since(start), size, err)
	return ref, err
}

func (s *observed) Delete(ctx context.Context, ref Reference) error {
	start := time.Now()
	err := s.next.Delete(ctx, ref)
	s.observer.RecordDelete(s.backend, time.Since(start), err)
	return err
}
