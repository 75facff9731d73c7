package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aaxiero/service/internal/retry"
)

var errDB = errors.New("connection reset")

type fakeRepo struct {
	mu       sync.Mutex
	admins   map[string]*Admin
	failures int // FindByEmail fails this many times before answering
	finds    int
	creates  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{admins: make(map[string]*Admin)}
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.failures > 0 {
		f.failures--
		return nil, errDB
	}
	a, ok := f.admins[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) Create(_ context.Context, email, hash, role string) (*Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	key := strings.ToLower(email)
	if _, ok := f.admins[key]; ok {
		return nil, ErrAlreadyExists
	}
	a := &Admin{ID: "admin-" + key, Email: email, PasswordHash: hash, Role: role}
	f.admins[key] = a
	return a, nil
}

func (f *fakeRepo) seed(t *testing.T, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	f.admins[strings.ToLower(email)] = &Admin{ID: "admin-1", Email: email, PasswordHash: string(hash), Role: RoleAdmin}
}

func newTestService(repo *fakeRepo) *Service {
	s := NewService(repo, "test-secret", time.Hour, retry.Linear(3, time.Millisecond), nil)
	s.hashCost = bcrypt.MinCost
	return s
}

func TestLogin(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(t, "Admin@Aaxiero.com", "pa55")
	svc := newTestService(repo)

	result, err := svc.Login(context.Background(), "admin@aaxiero.com", "pa55")
	require.NoError(t, err)
	assert.Equal(t, "Admin@Aaxiero.com", result.Admin.Email)

	token, err := jwt.Parse(result.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin-1", claims["sub"])
	assert.Equal(t, RoleAdmin, claims["role"])
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(t, "admin@aaxiero.com", "pa55")
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "admin@aaxiero.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@aaxiero.com", "pa55")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 2, repo.finds, "a missing admin is not retried")
}

func TestLogin_RetriesDatabaseErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(t, "admin@aaxiero.com", "pa55")
	repo.failures = 2
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "admin@aaxiero.com", "pa55")
	require.NoError(t, err)
	assert.Equal(t, 3, repo.finds)
}

func TestLogin_GivesUpAfterThreeAttempts(t *testing.T) {
	repo := newFakeRepo()
	repo.failures = 5
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "admin@aaxiero.com", "pa55")
	require.Error(t, err)
	assert.ErrorIs(t, err, errDB)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 3, repo.finds)
}

func TestEnsureDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.EnsureDefault(ctx, "admin@aaxiero.com", "pa55")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureDefault(ctx, "ADMIN@aaxiero.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, repo.creates)

	_, err = svc.Login(ctx, "admin@aaxiero.com", "pa55")
	assert.NoError(t, err, "existing password is kept")
}

func TestEnsureDefault_Retries(t *testing.T) {
	repo := newFakeRepo()
	repo.failures = 2
	svc := newTestService(repo)

	created, err := svc.EnsureDefault(context.Background(), "admin@aaxiero.com", "pa55")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 3, repo.finds)
}

func TestHandler_Login(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(t, "admin@aaxiero.com", "pa55")
	h := NewHandler(newTestService(repo))

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "ok", body: `{"email":"admin@aaxiero.com","password":"pa55"}`, want: http.StatusOK},
		{name: "mixed case keys", body: `{"EMAIL":"admin@aaxiero.com","Password":"pa55"}`, want: http.StatusOK},
		{name: "missing password", body: `{"email":"admin@aaxiero.com"}`, want: http.StatusBadRequest},
		{name: "malformed", body: `{`, want: http.StatusBadRequest},
		{name: "wrong password", body: `{"email":"admin@aaxiero.com","password":"x"}`, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/aaxiero/admin/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Login(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"token"`)
			}
		})
	}
}
