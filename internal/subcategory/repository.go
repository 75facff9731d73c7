// Package subcategory manages project subcategories and their thumbnail image.
package subcategory

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

// SubCategory groups projects and carries an optional thumbnail.
type SubCategory struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Image     *storage.Reference `json:"image"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ErrNotFound is returned when a subcategory does not exist.
var ErrNotFound = errors.New("subcategory not found")

// ErrAlreadyExists is returned when another subcategory has the same name, ignoring case.
var ErrAlreadyExists = errors.New("subcategory already exists")

// Repository handles subcategory persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new subcategory Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const columns = `id, name, image, created_at, updated_at`

func scan(row pgx.Row) (*SubCategory, error) {
	sc := &SubCategory{}
	var image []byte
	if err := row.Scan(&sc.ID, &sc.Name, &image, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := db.ScanJSON(image, &sc.Image); err != nil {
		return nil, err
	}
	return sc, nil
}

// NameTaken reports whether a subcategory other than exceptID uses name, ignoring case.
func (r *Repository) NameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM sub_categories
		   WHERE lower(name) = lower($1) AND ($2 = '' OR id::text <> $2)
		 )`,
		name, exceptID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check subcategory name: %w", err)
	}
	return taken, nil
}

// Create inserts a subcategory.
func (r *Repository) Create(ctx context.Context, name string, image *storage.Reference) (*SubCategory, error) {
	raw, err := db.JSON(image)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	sc, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO sub_categories (name, image) VALUES ($1, $2) RETURNING `+columns,
		name, raw,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create subcategory: %w", err)
	}
	return sc, nil
}

// List returns every subcategory, newest first.
func (r *Repository) List(ctx context.Context) ([]*SubCategory, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM sub_categories ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	out := []*SubCategory{}
	for rows.Next() {
		sc, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// GetByID fetches a subcategory.
func (r *Repository) GetByID(ctx context.Context, id string) (*SubCategory, error) {
	sc, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM sub_categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subcategory: %w", err)
	}
	return sc, nil
}

// Update overwrites the name and image.
func (r *Repository) Update(ctx context.Context, id, name string, image *storage.Reference) (*SubCategory, error) {
	raw, err := db.JSON(image)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	sc, err := scan(r.db.QueryRow(ctx,
		`UPDATE sub_categories SET name = $2, image = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+columns,
		id, name, raw,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("update subcategory: %w", err)
	}
	return sc, nil
}

// Delete removes a subcategory. Projects filed under it keep existing with no subcategory.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sub_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
