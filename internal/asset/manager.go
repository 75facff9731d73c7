// Package asset keeps stored files consistent with the records that reference
// them. Entity services decide what their records look like; the Manager
// decides which store operations run and in what order.
package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aaxiero/service/internal/storage"
)

// releaseConcurrency bounds parallel deletes issued by Release.
const releaseConcurrency = 4

var (
	// ErrNoFiles indicates an operation that requires at least one upload received none.
	ErrNoFiles = errors.New("at least one image required")
	// ErrCapacityExceeded indicates the upload would push an entity past its cap.
	ErrCapacityExceeded = errors.New("image limit exceeded")
	// ErrReferenceNotFound indicates the reference is not held by the entity.
	ErrReferenceNotFound = errors.New("image not found")
	// ErrInvalidSlot indicates a slot index outside the entity's slot range.
	ErrInvalidSlot = errors.New("invalid image slot")
)

// Manager runs the store side of asset lifecycles against a single Store.
type Manager struct {
	store  storage.Store
	logger *slog.Logger
	locks  *keyLock
}

// NewManager creates a Manager backed by store.
func NewManager(store storage.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		logger: logger.With(slog.String("component", "asset")),
		locks:  newKeyLock(),
	}
}

// Lock serialises mutations of the entity identified by key and returns the
// matching unlock function.
func (m *Manager) Lock(key string) func() {
	return m.locks.lock(key)
}

// Create stores uploads for an entity that holds no references yet.
func (m *Manager) Create(ctx context.Context, uploads []*storage.Upload, limit int, folder string) ([]storage.Reference, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	if len(uploads) > limit {
		storage.DiscardAll(uploads)
		return nil, capacityError(limit)
	}
	return m.storeAll(ctx, uploads, folder)
}

// Append stores uploads and returns existing followed by the new references
// in upload order. Nothing is stored when the result would exceed limit.
func (m *Manager) Append(ctx context.Context, existing []storage.Reference, uploads []*storage.Upload, limit int, folder string) ([]storage.Reference, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	if len(existing)+len(uploads) > limit {
		storage.DiscardAll(uploads)
		return nil, capacityError(limit)
	}
	added, err := m.storeAll(ctx, uploads, folder)
	if err != nil {
		return nil, err
	}
	out := make([]storage.Reference, 0, len(existing)+len(added))
	out = append(out, existing...)
	return append(out, added...), nil
}

// Replace stores the superseding set of uploads. The limit applies to the new
// set alone. Callers persist the result and only then Release the previous
// references, so the entity never points at nothing while it had images.
func (m *Manager) Replace(ctx context.Context, uploads []*storage.Upload, limit int, folder string) ([]storage.Reference, error) {
	return m.Create(ctx, uploads, limit, folder)
}

// Put stores a single upload, e.g. the new content of a named slot.
func (m *Manager) Put(ctx context.Context, upload *storage.Upload, folder string) (storage.Reference, error) {
	ref, err := m.store.Put(ctx, upload, folder)
	if err != nil {
		return storage.Reference{}, fmt.Errorf("store asset: %w", err)
	}
	return ref, nil
}

// Remove returns existing without the reference whose URL equals url.
// existing is not modified.
func (m *Manager) Remove(existing []storage.Reference, url string) ([]storage.Reference, storage.Reference, error) {
	for i, ref := range existing {
		if ref.URL != url {
			continue
		}
		out := make([]storage.Reference, 0, len(existing)-1)
		out = append(out, existing[:i]...)
		out = append(out, existing[i+1:]...)
		return out, ref, nil
	}
	return nil, storage.Reference{}, ErrReferenceNotFound
}

// Release deletes refs from the store. Deletes run concurrently and
// independently; failures are logged, never returned. Releasing outlives
// cancellation of ctx.
func (m *Manager) Release(ctx context.Context, refs ...storage.Reference) {
	if len(refs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(releaseConcurrency)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			if err := m.store.Delete(ctx, ref); err != nil {
				m.logger.Warn("release asset failed",
					slog.String("url", ref.URL),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// CheckSlot validates a 1-based slot index against count slots.
func CheckSlot(slot, count int) error {
	if slot < 1 || slot > count {
		return fmt.Errorf("%w: must be between 1 and %d", ErrInvalidSlot, count)
	}
	return nil
}

// storeAll puts uploads in order. When a put fails the references already
// stored for this batch are released and the remaining staged files are
// discarded, so a failed batch leaves nothing behind.
func (m *Manager) storeAll(ctx context.Context, uploads []*storage.Upload, folder string) ([]storage.Reference, error) {
	stored := make([]storage.Reference, 0, len(uploads))
	for i, u := range uploads {
		ref, err := m.store.Put(ctx, u, folder)
		if err != nil {
			storage.DiscardAll(uploads[i+1:])
			m.Release(ctx, stored...)
			return nil, fmt.Errorf("store asset: %w", err)
		}
		stored = append(stored, ref)
	}
	return stored, nil
}

func capacityError(limit int) error {
	return fmt.Errorf("%w: max %d images allowed", ErrCapacityExceeded, limit)
}
