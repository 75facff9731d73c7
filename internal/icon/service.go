package icon

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidInput is returned when name or icon is blank.
var ErrInvalidInput = errors.New("both name and icon are required")

type repository interface {
	Create(ctx context.Context, name, icon string) (*Icon, error)
	List(ctx context.Context) ([]*Icon, error)
	GetByID(ctx context.Context, id string) (*Icon, error)
	Delete(ctx context.Context, id string) error
}

// Service contains icon business logic.
type Service struct {
	repo repository
}

// NewService creates a new icon Service.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Create adds an icon. Names are unique.
func (s *Service) Create(ctx context.Context, name, icon string) (*Icon, error) {
	name, icon = strings.TrimSpace(name), strings.TrimSpace(icon)
	if name == "" || icon == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.Create(ctx, name, icon)
}

func (s *Service) List(ctx context.Context) ([]*Icon, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Icon, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
