package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aaxiero/service/internal/asset"
	"github.com/aaxiero/service/internal/storage"
)

const folder = "projects"

// ErrInvalidInput is returned when required project fields are missing or malformed.
var ErrInvalidInput = errors.New("invalid project input")

type repository interface {
	List(ctx context.Context) ([]*Project, error)
	GetByID(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, p *Project) (*Project, error)
	Update(ctx context.Context, p *Project) (*Project, error)
	Delete(ctx context.Context, id string) error
}

// Input carries the non-file project fields. Nil fields are left unchanged
// on update.
type Input struct {
	ProjectName      *string
	SubCategoryID    *string
	SubSubCategoryID *string
}

// Files carries the uploads of a project request. Slots[i] is image<i+1>.
type Files struct {
	Cover *storage.Upload
	Slots [SlotCount]*storage.Upload
}

// uploads lists the present files, cover first, and the setters that place
// each stored reference back on a project.
func (f Files) uploads() ([]*storage.Upload, []func(*Project, *storage.Reference)) {
	var (
		ups  []*storage.Upload
		sets []func(*Project, *storage.Reference)
	)
	if f.Cover != nil {
		ups = append(ups, f.Cover)
		sets = append(sets, func(p *Project, ref *storage.Reference) { p.CoverImage = ref })
	}
	for i, u := range f.Slots {
		if u == nil {
			continue
		}
		i := i
		ups = append(ups, u)
		sets = append(sets, func(p *Project, ref *storage.Reference) { p.Slots[i] = ref })
	}
	return ups, sets
}

// Service keeps project records and their stored images in step.
type Service struct {
	repo   repository
	assets *asset.Manager
	logger *slog.Logger
}

// NewService creates a new project Service.
func NewService(repo repository, assets *asset.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, assets: assets, logger: logger.With(slog.String("service", "project"))}
}

func lockKey(id string) string {
	return "project:" + id
}

// List returns all projects.
func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.List(ctx)
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the provided images and inserts the project. A project needs
// a name and a subcategory or sub-subcategory.
func (s *Service) Create(ctx context.Context, in Input, files Files) (*Project, error) {
	ups, sets := files.uploads()
	defer storage.DiscardAll(ups)

	p := &Project{SubCategoryID: in.SubCategoryID, SubSubCategoryID: in.SubSubCategoryID}
	if in.ProjectName != nil {
		p.ProjectName = strings.TrimSpace(*in.ProjectName)
	}
	if p.ProjectName == "" {
		return nil, fmt.Errorf("%w: projectName is required", ErrInvalidInput)
	}
	if p.SubCategoryID == nil && p.SubSubCategoryID == nil {
		return nil, fmt.Errorf("%w: subCategoryId or subsubCategoryId is required", ErrInvalidInput)
	}

	stored, err := s.store(ctx, ups)
	if err != nil {
		return nil, err
	}
	for i, ref := range stored {
		ref := ref
		sets[i](p, &ref)
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.assets.Release(ctx, stored...)
		return nil, err
	}
	return created, nil
}

// Update applies the non-nil fields of in and replaces the cover and every
// slot that received a file. Slots without a file keep their image.
func (s *Service) Update(ctx context.Context, id string, in Input, files Files) (*Project, error) {
	ups, sets := files.uploads()
	defer storage.DiscardAll(ups)

	unlock := s.assets.Lock(lockKey(id))
	defer unlock()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	if in.ProjectName != nil {
		if name := strings.TrimSpace(*in.ProjectName); name != "" {
			next.ProjectName = name
		}
	}
	if in.SubCategoryID != nil {
		next.SubCategoryID = in.SubCategoryID
	}
	if in.SubSubCategoryID != nil {
		next.SubSubCategoryID = in.SubSubCategoryID
	}

	stored, err := s.store(ctx, ups)
	if err != nil {
		return nil, err
	}
	for i, ref := range stored {
		ref := ref
		sets[i](&next, &ref)
	}

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		s.assets.Release(ctx, stored...)
		return nil, err
	}
	s.assets.Release(ctx, superseded(current, &next)...)
	return updated, nil
}

// ClearSlot empties a 1-based slot and releases its image. Clearing an
// empty slot changes nothing.
func (s *Service) ClearSlot(ctx context.Context, id string, slot int) (*Project, error) {
	if err := asset.CheckSlot(slot, SlotCount); err != nil {
		return nil, err
	}

	unlock := s.assets.Lock(lockKey(id))
	defer unlock()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := current.Slots[slot-1]
	if old == nil {
		return current, nil
	}

	next := *current
	next.Slots[slot-1] = nil
	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	s.assets.Release(ctx, *old)
	return updated, nil
}

// Delete removes the project and releases all of its images.
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
	refs := current.References()
	s.assets.Release(ctx, refs...)
	s.logger.Info("project deleted", slog.String("project_id", id), slog.Int("images", len(refs)))
	return nil
}

func (s *Service) store(ctx context.Context, ups []*storage.Upload) ([]storage.Reference, error) {
	if len(ups) == 0 {
		return nil, nil
	}
	return s.assets.Create(ctx, ups, len(ups), folder)
}

// superseded lists the references of before that after no longer holds.
func superseded(before, after *Project) []storage.Reference {
	var out []storage.Reference
	if before.CoverImage != nil && !sameRef(before.CoverImage, after.CoverImage) {
		out = append(out, *before.CoverImage)
	}
	for i, ref := range before.Slots {
		if ref != nil && !sameRef(ref, after.Slots[i]) {
			out = append(out, *ref)
		}
	}
	return out
}

func sameRef(a, b *storage.Reference) bool {
	return b != nil && a.URL == b.URL
}
