package offering

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaxiero/service/internal/icon"
)

const (
	iconID      = "00000000-0000-0000-0004-000000000001"
	otherIconID = "00000000-0000-0000-0004-000000000002"
	missingIcon = "00000000-0000-0000-0004-000000000099"
)

type iconSet map[string]*icon.Icon

func (s iconSet) Get(_ context.Context, id string) (*icon.Icon, error) {
	i, ok := s[id]
	if !ok {
		return nil, icon.ErrNotFound
	}
	return i, nil
}

type memRepo struct {
	mu    sync.Mutex
	seq   int
	byID  map[string]*Offering
	icons iconSet
}

func newMemRepo(icons iconSet) *memRepo {
	return &memRepo{byID: map[string]*Offering{}, icons: icons}
}

func (r *memRepo) populate(o *Offering) *Offering {
	c := *o
	c.Icon = r.icons[o.IconID]
	return &c
}

func (r *memRepo) Create(_ context.Context, o *Offering) (*Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := *o
	c.ID = fmt.Sprintf("00000000-0000-0000-0005-%012d", r.seq)
	r.byID[c.ID] = &c
	return r.populate(&c), nil
}

func (r *memRepo) List(context.Context) ([]*Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Offering{}
	for _, o := range r.byID {
		out = append(out, r.populate(o))
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.populate(o), nil
}

func (r *memRepo) Update(_ context.Context, o *Offering) (*Offering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[o.ID]; !ok {
		return nil, ErrNotFound
	}
	c := *o
	r.byID[o.ID] = &c
	return r.populate(&c), nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func newTestService() (*Service, *memRepo) {
	icons := iconSet{
		iconID:      {ID: iconID, Name: "pencil", Icon: "fa-pencil"},
		otherIconID: {ID: otherIconID, Name: "ruler", Icon: "fa-ruler"},
	}
	repo := newMemRepo(icons)
	return NewService(repo, icons), repo
}

func ptr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	o, err := svc.Create(ctx, Input{ServiceName: ptr(" Design "), Description: ptr("Full rooms"), IconID: ptr(iconID)})
	require.NoError(t, err)
	assert.Equal(t, "Design", o.ServiceName)
	require.NotNil(t, o.Icon)
	assert.Equal(t, "pencil", o.Icon.Name)

	_, err = svc.Create(ctx, Input{ServiceName: ptr("Design")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, Input{ServiceName: ptr("Design"), IconID: ptr(missingIcon)})
	assert.ErrorIs(t, err, ErrIconNotFound)
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, err := svc.Create(ctx, Input{ServiceName: ptr("Design"), Description: ptr("Rooms"), IconID: ptr(iconID)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, o.ID, Input{Description: ptr("Whole houses")})
	require.NoError(t, err)
	assert.Equal(t, "Design", updated.ServiceName)
	assert.Equal(t, "Whole houses", updated.Description)
	assert.Equal(t, iconID, updated.IconID)

	_, err = svc.Update(ctx, o.ID, Input{IconID: ptr(missingIcon)})
	assert.ErrorIs(t, err, ErrIconNotFound)

	updated, err = svc.Update(ctx, o.ID, Input{IconID: ptr(otherIconID)})
	require.NoError(t, err)
	assert.Equal(t, "ruler", updated.Icon.Name)

	_, err = svc.Update(ctx, "00000000-0000-0000-0005-000000000099", Input{ServiceName: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandler(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Post("/service", h.Create)
	r.Get("/service", h.List)
	r.Get("/service/{id}", h.Get)
	r.Put("/service/{id}", h.Update)
	r.Delete("/service/{id}", h.Delete)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/service", `{"serviceName":"Design","iconId":"`+iconID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"icon":{"id":"`+iconID+`"`)

	rec = do(http.MethodPost, "/service", `{"serviceName":"Design","iconId":"`+missingIcon+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "iconId not found")

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/service", `{"serviceName":"Design","iconId":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/service", `{"iconId":"`+iconID+`"}`).Code)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/service/"+id, "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPut, "/service/"+id, `{"description":"new"}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodDelete, "/service/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/service/"+id, "").Code)
}
