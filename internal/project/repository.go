// Package project manages portfolio projects: a cover image plus eight
// independently addressable image slots, filed under a subcategory.
package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aaxiero/service/internal/db"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("project not found")

// ErrSubCategoryNotFound is returned when a referenced subcategory does not exist.
var ErrSubCategoryNotFound = errors.New("subcategory not found")

// Repository handles project persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new project Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Rows written before the subcategory rename only carry legacy_category_id,
// so reads resolve the subcategory through COALESCE.
const selectProject = `SELECT p.id, p.project_name, p.cover_image, p.slots,
		COALESCE(p.sub_category_id, p.legacy_category_id), p.subsub_category_id,
		s.id, s.name, s.image,
		ss.id, ss.name, ss.image,
		p.created_at, p.updated_at
	 FROM projects p
	 LEFT JOIN sub_categories s ON s.id = COALESCE(p.sub_category_id, p.legacy_category_id)
	 LEFT JOIN sub_categories ss ON ss.id = p.subsub_category_id`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	var (
		cover, slots     []byte
		subID, subName   *string
		subImage         []byte
		ssubID, ssubName *string
		ssubImage        []byte
	)
	err := row.Scan(&p.ID, &p.ProjectName, &cover, &slots,
		&p.SubCategoryID, &p.SubSubCategoryID,
		&subID, &subName, &subImage,
		&ssubID, &ssubName, &ssubImage,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := db.ScanJSON(cover, &p.CoverImage); err != nil {
		return nil, err
	}
	if err := db.ScanJSON(slots, &p.Slots); err != nil {
		return nil, err
	}
	if p.SubCategory, err = summary(subID, subName, subImage); err != nil {
		return nil, err
	}
	if p.SubSubCategory, err = summary(ssubID, ssubName, ssubImage); err != nil {
		return nil, err
	}
	return p, nil
}

func summary(id, name *string, image []byte) (*SubCategorySummary, error) {
	if id == nil {
		return nil, nil
	}
	s := &SubCategorySummary{ID: *id}
	if name != nil {
		s.Name = *name
	}
	if err := db.ScanJSON(image, &s.Image); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns every project, newest first.
func (r *Repository) List(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.Query(ctx, selectProject+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches one project.
func (r *Repository) GetByID(ctx context.Context, id string) (*Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx, selectProject+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// Create inserts p and returns the stored project.
func (r *Repository) Create(ctx context.Context, p *Project) (*Project, error) {
	cover, slots, err := encodeImages(p)
	if err != nil {
		return nil, err
	}
	var id string
	err = r.db.QueryRow(ctx,
		`INSERT INTO projects (project_name, cover_image, slots, sub_category_id, subsub_category_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.ProjectName, cover, slots, p.SubCategoryID, p.SubSubCategoryID,
	).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrSubCategoryNotFound
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update overwrites every mutable column of p. The subcategory is always
// written to sub_category_id, retiring any legacy value.
func (r *Repository) Update(ctx context.Context, p *Project) (*Project, error) {
	cover, slots, err := encodeImages(p)
	if err != nil {
		return nil, err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE projects
		 SET project_name = $2, cover_image = $3, slots = $4,
		     sub_category_id = $5, subsub_category_id = $6,
		     legacy_category_id = NULL, updated_at = NOW()
		 WHERE id = $1`,
		p.ID, p.ProjectName, cover, slots, p.SubCategoryID, p.SubSubCategoryID,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrSubCategoryNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

// Delete removes a project record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeImages(p *Project) (cover, slots []byte, err error) {
	if cover, err = db.JSON(p.CoverImage); err != nil {
		return nil, nil, fmt.Errorf("encode cover image: %w", err)
	}
	if slots, err = db.JSON(&p.Slots); err != nil {
		return nil, nil, fmt.Errorf("encode image slots: %w", err)
	}
	return cover, slots, nil
}
