package offering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aaxiero/service/internal/icon"
)

// ErrInvalidInput is returned when required service fields are missing.
var ErrInvalidInput = errors.New("serviceName and iconId are required")

type repository interface {
	Create(ctx context.Context, o *Offering) (*Offering, error)
	List(ctx context.Context) ([]*Offering, error)
	GetByID(ctx context.Context, id string) (*Offering, error)
	Update(ctx context.Context, o *Offering) (*Offering, error)
	Delete(ctx context.Context, id string) error
}

// IconFinder resolves icons by id.
type IconFinder interface {
	Get(ctx context.Context, id string) (*icon.Icon, error)
}

// Input carries service fields. Nil fields are left unchanged on update.
type Input struct {
	ServiceName *string
	Description *string
	IconID      *string
}

// Service contains business logic for studio services.
type Service struct {
	repo  repository
	icons IconFinder
}

// NewService creates a new offering Service.
func NewService(repo repository, icons IconFinder) *Service {
	return &Service{repo: repo, icons: icons}
}

// Create adds a service pointing at an existing icon.
func (s *Service) Create(ctx context.Context, in Input) (*Offering, error) {
	o := &Offering{}
	if in.ServiceName != nil {
		o.ServiceName = strings.TrimSpace(*in.ServiceName)
	}
	if in.Description != nil {
		o.Description = strings.TrimSpace(*in.Description)
	}
	if in.IconID != nil {
		o.IconID = *in.IconID
	}
	if o.ServiceName == "" || o.IconID == "" {
		return nil, ErrInvalidInput
	}
	if err := s.requireIcon(ctx, o.IconID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, o)
}

func (s *Service) List(ctx context.Context) ([]*Offering, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Offering, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the non-nil fields of in. A new icon must exist.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Offering, error) {
	if in.IconID != nil {
		if err := s.requireIcon(ctx, *in.IconID); err != nil {
			return nil, err
		}
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	if in.ServiceName != nil {
		if name := strings.TrimSpace(*in.ServiceName); name != "" {
			next.ServiceName = name
		}
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
	}
	if in.IconID != nil {
		next.IconID = *in.IconID
	}
	return s.repo.Update(ctx, &next)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) requireIcon(ctx context.Context, id string) error {
	if _, err := s.icons.Get(ctx, id); err != nil {
		if errors.Is(err, icon.ErrNotFound) {
			return ErrIconNotFound
		}
		return fmt.Errorf("look up icon: %w", err)
	}
	return nil
}
