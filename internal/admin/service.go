package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aaxiero/service/internal/retry"
)

// RoleAdmin is the role carried by every token this package issues.
const RoleAdmin = "admin"

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type repository interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	Create(ctx context.Context, email, passwordHash, role string) (*Admin, error)
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	Admin *Admin
}

// Service contains the admin authentication logic.
type Service struct {
	repo      repository
	secret    []byte
	expiresIn time.Duration
	lookup    retry.Config
	hashCost  int
	logger    *slog.Logger
}

// NewService creates a new admin Service. lookup controls how database reads
// for login and bootstrap are retried.
func NewService(repo repository, jwtSecret string, expiresIn time.Duration, lookup retry.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		secret:    []byte(jwtSecret),
		expiresIn: expiresIn,
		lookup:    lookup,
		hashCost:  bcrypt.DefaultCost,
		logger:    logger.With(slog.String("service", "admin")),
	}
}

// Login verifies the credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	a, err := s.find(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(a)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, Admin: a}, nil
}

// EnsureDefault makes sure an admin with email exists, creating it with
// password when absent. Existing accounts are left untouched. It reports
// whether an account was created.
func (s *Service) EnsureDefault(ctx context.Context, email, password string) (bool, error) {
	created := false
	err := retry.Do(ctx, s.lookup, func(ctx context.Context) error {
		_, err := s.repo.FindByEmail(ctx, email)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		_, err = s.repo.Create(ctx, email, string(hash), RoleAdmin)
		if errors.Is(err, ErrAlreadyExists) {
			return nil
		}
		if err != nil {
			return err
		}
		created = true
		return nil
	}, s.notify("ensure default admin"))
	if err != nil {
		return false, fmt.Errorf("ensure default admin: %w", err)
	}
	return created, nil
}

// find looks the admin up, retrying on database errors. A missing admin is
// not retried and yields (nil, nil).
func (s *Service) find(ctx context.Context, email string) (*Admin, error) {
	var found *Admin
	err := retry.Do(ctx, s.lookup, func(ctx context.Context) error {
		a, err := s.repo.FindByEmail(ctx, email)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = a
		return nil
	}, s.notify("admin lookup"))
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return found, nil
}

func (s *Service) notify(op string) func(int, error) {
	return func(attempt int, err error) {
		s.logger.Warn(op+" failed",
			slog.Int("attempt", attempt),
			slog.Int("attempts", s.lookup.Attempts),
			slog.Any("error", err),
		)
	}
}

func (s *Service) issueToken(a *Admin) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   a.ID,
		"email": a.Email,
		"role":  a.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
