// Package icon stores the named icons services are displayed with.
package icon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aaxiero/service/internal/db"
)

// Icon is a named icon payload, e.g. an SVG document or a CSS class.
type Icon struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("icon not found")
	ErrAlreadyExists = errors.New("icon with this name already exists")
	// ErrInUse is returned when deleting an icon a service still points at.
	ErrInUse = errors.New("icon is used by a service")
)

// Repository handles icon persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new icon Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts an icon.
func (r *Repository) Create(ctx context.Context, name, icon string) (*Icon, error) {
	i := &Icon{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO icons (name, icon) VALUES ($1, $2)
		 RETURNING id, name, icon, created_at, updated_at`,
		name, icon,
	).Scan(&i.ID, &i.Name, &i.Icon, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create icon: %w", err)
	}
	return i, nil
}

// List returns every icon, newest first.
func (r *Repository) List(ctx context.Context) ([]*Icon, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, icon, created_at, updated_at FROM icons ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list icons: %w", err)
	}
	defer rows.Close()

	icons := []*Icon{}
	for rows.Next() {
		i := &Icon{}
		if err := rows.Scan(&i.ID, &i.Name, &i.Icon, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan icon: %w", err)
		}
		icons = append(icons, i)
	}
	return icons, rows.Err()
}

// GetByID fetches an icon.
func (r *Repository) GetByID(ctx context.Context, id string) (*Icon, error) {
	i := &Icon{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, icon, created_at, updated_at FROM icons WHERE id = $1`, id,
	).Scan(&i.ID, &i.Name, &i.Icon, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get icon: %w", err)
	}
	return i, nil
}

// Delete removes an icon that no service references.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM icons WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete icon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
