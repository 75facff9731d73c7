// Package offering manages the services the studio lists, each shown with an icon.
package offering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aaxiero/service/internal/db"
	"github.com/aaxiero/service/internal/icon"
)

// Offering is a service entry. Icon is populated on reads.
type Offering struct {
	ID          string     `json:"id"`
	ServiceName string     `json:"serviceName"`
	Description string     `json:"description"`
	IconID      string     `json:"iconId"`
	Icon        *icon.Icon `json:"icon"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

var (
	ErrNotFound = errors.New("service not found")
	// ErrIconNotFound is returned when iconId does not name an existing icon.
	ErrIconNotFound = errors.New("iconId not found")
)

// Repository handles service persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new offering Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectOffering = `
	SELECT s.id, s.service_name, s.description, s.icon_id, s.created_at, s.updated_at,
	       i.id, i.name, i.icon, i.created_at, i.updated_at
	FROM services s
	LEFT JOIN icons i ON i.id = s.icon_id`

func scanOffering(row pgx.Row) (*Offering, error) {
	o := &Offering{}
	var (
		iconID, iconName, iconBody *string
		iconCreated, iconUpdated   *time.Time
	)
	err := row.Scan(&o.ID, &o.ServiceName, &o.Description, &o.IconID, &o.CreatedAt, &o.UpdatedAt,
		&iconID, &iconName, &iconBody, &iconCreated, &iconUpdated)
	if err != nil {
		return nil, err
	}
	if iconID != nil {
		o.Icon = &icon.Icon{ID: *iconID, Name: *iconName, Icon: *iconBody, CreatedAt: *iconCreated, UpdatedAt: *iconUpdated}
	}
	return o, nil
}

// Create inserts a service and returns it with its icon.
func (r *Repository) Create(ctx context.Context, o *Offering) (*Offering, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO services (service_name, description, icon_id) VALUES ($1, $2, $3) RETURNING id`,
		o.ServiceName, o.Description, o.IconID,
	).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrIconNotFound
		}
		return nil, fmt.Errorf("create service: %w", err)
	}
	return r.GetByID(ctx, id)
}

// List returns every service, newest first.
func (r *Repository) List(ctx context.Context) ([]*Offering, error) {
	rows, err := r.db.Query(ctx, selectOffering+` ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	out := []*Offering{}
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetByID fetches a service.
func (r *Repository) GetByID(ctx context.Context, id string) (*Offering, error) {
	o, err := scanOffering(r.db.QueryRow(ctx, selectOffering+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return o, nil
}

// Update overwrites the service fields.
func (r *Repository) Update(ctx context.Context, o *Offering) (*Offering, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE services SET service_name = $2, description = $3, icon_id = $4, updated_at = NOW()
		 WHERE id = $1`,
		o.ID, o.ServiceName, o.Description, o.IconID,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrIconNotFound
		}
		return nil, fmt.Errorf("update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, o.ID)
}

// Delete removes a service.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
