package subcategory

import (
	"context"
	"errors"
	"strings"

	"github.com/aaxiero/service/internal/asset"
	"github.com/aaxiero/service/internal/storage"
)

const folder = "subcategories"

// ErrInvalidInput is returned when the subcategory name is blank.
var ErrInvalidInput = errors.New("subcategory name required")

type repository interface {
	NameTaken(ctx context.Context, name, exceptID string) (bool, error)
	Create(ctx context.Context, name string, image *storage.Reference) (*SubCategory, error)
	List(ctx context.Context) ([]*SubCategory, error)
	GetByID(ctx context.Context, id string) (*SubCategory, error)
	Update(ctx context.Context, id, name string, image *storage.Reference) (*SubCategory, error)
	Delete(ctx context.Context, id string) error
}

// Service keeps subcategories and their thumbnails in step.
type Service struct {
	repo   repository
	assets *asset.Manager
}

// NewService creates a new subcategory Service.
func NewService(repo repository, assets *asset.Manager) *Service {
	return &Service{repo: repo, assets: assets}
}

func lockKey(id string) string {
	return "subcategory:" + id
}

// Create adds a subcategory, storing image when one is given.
func (s *Service) Create(ctx context.Context, name string, image *storage.Upload) (*SubCategory, error) {
	defer discard(image)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if err := s.checkName(ctx, name, ""); err != nil {
		return nil, err
	}

	ref, err := s.put(ctx, image)
	if err != nil {
		return nil, err
	}
	sc, err := s.repo.Create(ctx, name, ref)
	if err != nil {
		s.release(ctx, ref)
		return nil, err
	}
	return sc, nil
}

// List returns all subcategories.
func (s *Service) List(ctx context.Context) ([]*SubCategory, error) {
	return s.repo.List(ctx)
}

// Get returns one subcategory.
func (s *Service) Get(ctx context.Context, id string) (*SubCategory, error) {
	return s.repo.GetByID(ctx, id)
}

// Update renames the subcategory and, when image is given, replaces its
// thumbnail. The previous thumbnail is released once the update is saved.
func (s *Service) Update(ctx context.Context, id, name string, image *storage.Upload) (*SubCategory, error) {
	defer discard(image)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	unlock := s.assets.Lock(lockKey(id))
	defer unlock()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}

	ref, err := s.put(ctx, image)
	if err != nil {
		return nil, err
	}
	next := current.Image
	if ref != nil {
		next = ref
	}

	sc, err := s.repo.Update(ctx, id, name, next)
	if err != nil {
		s.release(ctx, ref)
		return nil, err
	}
	if ref != nil {
		s.release(ctx, current.Image)
	}
	return sc, nil
}

// Delete removes the subcategory and releases its thumbnail.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.assets.Lock(lockKey(id))
	defer unlock()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.release(ctx, current.Image)
	return nil
}

func (s *Service) checkName(ctx context.Context, name, exceptID string) error {
	taken, err := s.repo.NameTaken(ctx, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrAlreadyExists
	}
	return nil
}

func (s *Service) put(ctx context.Context, image *storage.Upload) (*storage.Reference, error) {
	if image == nil {
		return nil, nil
	}
	ref, err := s.assets.Put(ctx, image, folder)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (s *Service) release(ctx context.Context, ref *storage.Reference) {
	if ref != nil {
		s.assets.Release(ctx, *ref)
	}
}

func discard(u *storage.Upload) {
	if u != nil {
		_ = u.Discard()
	}
}
