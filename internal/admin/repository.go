// Package admin manages administrator accounts, login and the default-admin
// bootstrap.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aaxiero/service/internal/db"
)

// Admin is an administrator account.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when no admin matches.
var ErrNotFound = errors.New("admin not found")

// ErrAlreadyExists is returned when the email is already registered.
var ErrAlreadyExists = errors.New("admin already exists")

// Repository handles admin persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new admin Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// FindByEmail fetches an admin by email, ignoring case.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	a := &Admin{}
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at, updated_at
		 FROM admins WHERE lower(email) = lower($1)`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return a, nil
}

// Create inserts a new admin.
func (r *Repository) Create(ctx context.Context, email, passwordHash, role string) (*Admin, error) {
	a := &Admin{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO admins (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, role, created_at, updated_at`,
		email, passwordHash, role,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}
