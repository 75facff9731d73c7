// Package category manages the top-level portfolio categories.
package category

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aaxiero/service/internal/db"
)

// Category is a named group of gallery images.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a category does not exist.
var ErrNotFound = errors.New("category not found")

// ErrAlreadyExists is returned when another category has the same name, ignoring case.
var ErrAlreadyExists = errors.New("category already exists")

// Repository handles category persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new category Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const columns = `id, name, created_at, updated_at`

// Create inserts a category.
func (r *Repository) Create(ctx context.Context, name string) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING `+columns,
		name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// List returns every category, newest first.
func (r *Repository) List(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM categories ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []*Category{}
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a category.
func (r *Repository) GetByID(ctx context.Context, id string) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRow(ctx,
		`SELECT `+columns+` FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Update renames a category.
func (r *Repository) Update(ctx context.Context, id, name string) (*Category, error) {
	c := &Category{}
	err := r.db.QueryRow(ctx,
		`UPDATE categories SET name = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+columns,
		id, name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes a category.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
