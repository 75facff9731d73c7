// Package gallery manages the image gallery attached to each category.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aaxiero/service/internal/db"
	"github.com/aaxiero/service/internal/storage"
)

// Gallery is the ordered set of images shown for one category.
type Gallery struct {
	ID           string              `json:"id"`
	CategoryID   string              `json:"categoryId"`
	CategoryName string              `json:"categoryName,omitempty"`
	Images       []storage.Reference `json:"images"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// ErrNotFound is returned when a gallery does not exist.
var ErrNotFound = errors.New("gallery not found")

// ErrCategoryNotFound is returned when the target category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// ErrAlreadyExists is returned when the category already has a gallery.
var ErrAlreadyExists = errors.New("gallery already exists for this category")

// Repository handles gallery persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new gallery Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectGallery = `SELECT g.id, g.category_id, c.name, g.images, g.created_at, g.updated_at
	 FROM galleries g JOIN categories c ON c.id = g.category_id`

func scanGallery(row pgx.Row) (*Gallery, error) {
	g := &Gallery{}
	var images []byte
	if err := row.Scan(&g.ID, &g.CategoryID, &g.CategoryName, &images, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	if err := db.ScanJSON(images, &g.Images); err != nil {
		return nil, err
	}
	if g.Images == nil {
		g.Images = []storage.Reference{}
	}
	return g, nil
}

// CategoryExists reports whether the category exists.
func (r *Repository) CategoryExists(ctx context.Context, categoryID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`,
		categoryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return exists, nil
}

// GetByCategory fetches the gallery of a category.
func (r *Repository) GetByCategory(ctx context.Context, categoryID string) (*Gallery, error) {
	g, err := scanGallery(r.db.QueryRow(ctx, selectGallery+` WHERE g.category_id = $1`, categoryID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get gallery by category: %w", err)
	}
	return g, nil
}

// GetByID fetches a gallery by its own ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Gallery, error) {
	g, err := scanGallery(r.db.QueryRow(ctx, selectGallery+` WHERE g.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get gallery: %w", err)
	}
	return g, nil
}

// List returns every gallery with its category name, newest first.
func (r *Repository) List(ctx context.Context) ([]*Gallery, error) {
	rows, err := r.db.Query(ctx, selectGallery+` ORDER BY g.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list galleries: %w", err)
	}
	defer rows.Close()

	out := []*Gallery{}
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Create inserts a gallery for the category.
func (r *Repository) Create(ctx context.Context, categoryID string, images []storage.Reference) (*Gallery, error) {
	raw, err := db.JSON(&images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	var id string
	err = r.db.QueryRow(ctx,
		`INSERT INTO galleries (category_id, images) VALUES ($1, $2) RETURNING id`,
		categoryID, raw,
	).Scan(&id)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, ErrAlreadyExists
		case db.IsForeignKeyViolation(err):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("create gallery: %w", err)
	}
	return r.GetByID(ctx, id)
}

// UpdateImages overwrites the image list.
func (r *Repository) UpdateImages(ctx context.Context, id string, images []storage.Reference) (*Gallery, error) {
	raw, err := db.JSON(&images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE galleries SET images = $2, updated_at = NOW() WHERE id = $1`,
		id, raw,
	)
	if err != nil {
		return nil, fmt.Errorf("update gallery images: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a gallery record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM galleries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gallery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
