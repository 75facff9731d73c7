package gallery

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aaxiero/service/internal/asset"
	"github.com/aaxiero/service/internal/storage"
)

// MaxImages caps the number of images a gallery may hold.
const MaxImages = 20

const folder = "gallery"

type repository interface {
	CategoryExists(ctx context.Context, categoryID string) (bool, error)
	GetByCategory(ctx context.Context, categoryID string) (*Gallery, error)
	GetByID(ctx context.Context, id string) (*Gallery, error)
	List(ctx context.Context) ([]*Gallery, error)
	Create(ctx context.Context, categoryID string, images []storage.Reference) (*Gallery, error)
	UpdateImages(ctx context.Context, id string, images []storage.Reference) (*Gallery, error)
	Delete(ctx context.Context, id string) error
}

// Service keeps gallery records and their stored images in step.
type Service struct {
	repo   repository
	assets *asset.Manager
	logger *slog.Logger
}

// NewService creates a new gallery Service.
func NewService(repo repository, assets *asset.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, assets: assets, logger: logger.With(slog.String("service", "gallery"))}
}

func lockKey(categoryID string) string {
	return "gallery:" + categoryID
}

// List returns all galleries.
func (s *Service) List(ctx context.Context) ([]*Gallery, error) {
	return s.repo.List(ctx)
}

// GetByCategory returns the gallery of a category.
func (s *Service) GetByCategory(ctx context.Context, categoryID string) (*Gallery, error) {
	return s.repo.GetByCategory(ctx, categoryID)
}

// CreateOrAppend creates the category's gallery from uploads, or appends the
// uploads to the existing one. The bool reports whether it was created.
func (s *Service) CreateOrAppend(ctx context.Context, categoryID string, uploads []*storage.Upload) (*Gallery, bool, error) {
	defer storage.DiscardAll(uploads)
	if len(uploads) == 0 {
		return nil, false, asset.ErrNoFiles
	}

	unlock := s.assets.Lock(lockKey(categoryID))
	defer unlock()

	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, false, err
	}

	current, err := s.repo.GetByCategory(ctx, categoryID)
	if errors.Is(err, ErrNotFound) {
		g, err := s.create(ctx, categoryID, uploads)
		if err != nil {
			return nil, false, err
		}
		return g, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	g, err := s.append(ctx, current, uploads)
	if err != nil {
		return nil, false, err
	}
	return g, false, nil
}

// Replace swaps every image of the category's gallery for uploads, creating
// the gallery when the category has none. The bool reports whether it was created.
func (s *Service) Replace(ctx context.Context, categoryID string, uploads []*storage.Upload) (*Gallery, bool, error) {
	defer storage.DiscardAll(uploads)
	if len(uploads) == 0 {
		return nil, false, asset.ErrNoFiles
	}

	unlock := s.assets.Lock(lockKey(categoryID))
	defer unlock()

	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, false, err
	}

	current, err := s.repo.GetByCategory(ctx, categoryID)
	if errors.Is(err, ErrNotFound) {
		g, err := s.create(ctx, categoryID, uploads)
		if err != nil {
			return nil, false, err
		}
		return g, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	fresh, err := s.assets.Replace(ctx, uploads, MaxImages, folder)
	if err != nil {
		return nil, false, err
	}
	g, err := s.repo.UpdateImages(ctx, current.ID, fresh)
	if err != nil {
		s.assets.Release(ctx, fresh...)
		return nil, false, err
	}
	s.assets.Release(ctx, current.Images...)
	return g, false, nil
}

// AppendByID appends uploads to the gallery with the given ID.
func (s *Service) AppendByID(ctx context.Context, galleryID string, uploads []*storage.Upload) (*Gallery, error) {
	defer storage.DiscardAll(uploads)
	if len(uploads) == 0 {
		return nil, asset.ErrNoFiles
	}

	current, unlock, err := s.lockByID(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.append(ctx, current, uploads)
}

// DeleteImage removes the image with the given URL from the gallery and
// releases its stored file.
func (s *Service) DeleteImage(ctx context.Context, galleryID, url string) (*Gallery, error) {
	current, unlock, err := s.lockByID(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rest, removed, err := s.assets.Remove(current.Images, url)
	if err != nil {
		return nil, err
	}
	g, err := s.repo.UpdateImages(ctx, current.ID, rest)
	if err != nil {
		return nil, err
	}
	s.assets.Release(ctx, removed)
	return g, nil
}

// Delete removes the category's gallery and releases all of its images.
func (s *Service) Delete(ctx context.Context, categoryID string) error {
	unlock := s.assets.Lock(lockKey(categoryID))
	defer unlock()

	current, err := s.repo.GetByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return err
	}
	s.assets.Release(ctx, current.Images...)
	return nil
}

// DeleteForCategory is Delete for a category that may have no gallery.
func (s *Service) DeleteForCategory(ctx context.Context, categoryID string) error {
	if err := s.Delete(ctx, categoryID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) requireCategory(ctx context.Context, categoryID string) error {
	ok, err := s.repo.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Service) create(ctx context.Context, categoryID string, uploads []*storage.Upload) (*Gallery, error) {
	refs, err := s.assets.Create(ctx, uploads, MaxImages, folder)
	if err != nil {
		return nil, err
	}
	g, err := s.repo.Create(ctx, categoryID, refs)
	if err != nil {
		s.assets.Release(ctx, refs...)
		return nil, err
	}
	s.logger.Info("gallery created",
		slog.String("gallery_id", g.ID),
		slog.String("category_id", categoryID),
		slog.Int("images", len(refs)),
	)
	return g, nil
}

func (s *Service) append(ctx context.Context, current *Gallery, uploads []*storage.Upload) (*Gallery, error) {
	all, err := s.assets.Append(ctx, current.Images, uploads, MaxImages, folder)
	if err != nil {
		return nil, err
	}
	g, err := s.repo.UpdateImages(ctx, current.ID, all)
	if err != nil {
		s.assets.Release(ctx, all[len(current.Images):]...)
		return nil, err
	}
	return g, nil
}

// lockByID resolves the gallery's category, takes its lock and re-reads the
// gallery under it.
func (s *Service) lockByID(ctx context.Context, galleryID string) (*Gallery, func(), error) {
	g, err := s.repo.GetByID(ctx, galleryID)
	if err != nil {
		return nil, nil, err
	}
	unlock := s.assets.Lock(lockKey(g.CategoryID))
	g, err = s.repo.GetByID(ctx, galleryID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return g, unlock, nil
}
