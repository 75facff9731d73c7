package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned when the category name is blank.
var ErrInvalidInput = errors.New("category name required")

type repository interface {
	Create(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Update(ctx context.Context, id, name string) (*Category, error)
	Delete(ctx context.Context, id string) error
}

// GalleryRemover deletes the gallery attached to a category, stored files included.
type GalleryRemover interface {
	DeleteForCategory(ctx context.Context, categoryID string) error
}

// Service contains category business logic.
type Service struct {
	repo      repository
	galleries GalleryRemover
}

// NewService creates a new category Service.
func NewService(repo repository, galleries GalleryRemover) *Service {
	return &Service{repo: repo, galleries: galleries}
}

// Create adds a category.
func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.Create(ctx, name)
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

// Get returns one category.
func (s *Service) Get(ctx context.Context, id string) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Update renames a category.
func (s *Service) Update(ctx context.Context, id, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.Update(ctx, id, name)
}

// Delete removes a category together with its gallery and the gallery's files.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if s.galleries != nil {
		if err := s.galleries.DeleteForCategory(ctx, id); err != nil {
			return fmt.Errorf("delete category gallery: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}
