package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaxiero/service/internal/asset"
	"github.com/aaxiero/service/internal/request"
	"github.com/aaxiero/service/internal/storage"
	"github.com/aaxiero/service/internal/storage/storagetest"
)

const subID = "00000000-0000-0000-0000-0000000000c1"

var errPersist = errors.New("persist failed")

type memRepo struct {
	mu         sync.Mutex
	seq        int
	byID       map[string]*Project
	failUpdate bool
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*Project{}}
}

func copyProject(p *Project) *Project {
	c := *p
	return &c
}

func (r *memRepo) List(context.Context) ([]*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Project{}
	for _, p := range r.byID {
		out = append(out, copyProject(p))
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyProject(p), nil
}

func (r *memRepo) Create(_ context.Context, p *Project) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := copyProject(p)
	c.ID = fmt.Sprintf("00000000-0000-0000-0002-%012d", r.seq)
	r.byID[c.ID] = c
	return copyProject(c), nil
}

func (r *memRepo) Update(_ context.Context, p *Project) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return nil, errPersist
	}
	if _, ok := r.byID[p.ID]; !ok {
		return nil, ErrNotFound
	}
	r.byID[p.ID] = copyProject(p)
	return copyProject(p), nil
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

type fixture struct {
	repo    *memRepo
	store   *storagetest.Memory
	svc     *Service
	staging string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemRepo()
	store := storagetest.NewMemory()
	return &fixture{
		repo:    repo,
		store:   store,
		svc:     NewService(repo, asset.NewManager(store, nil), nil),
		staging: t.TempDir(),
	}
}

func (f *fixture) upload(t *testing.T, name string) *storage.Upload {
	t.Helper()
	return storagetest.Stage(t, f.staging, name)[0]
}

func (f *fixture) fullProject(t *testing.T) *Project {
	t.Helper()
	files := Files{Cover: f.upload(t, "cover.jpg")}
	for i := range files.Slots {
		files.Slots[i] = f.upload(t, fmt.Sprintf("slot%d.jpg", i+1))
	}
	p, err := f.svc.Create(context.Background(), Input{ProjectName: ptr("Villa"), SubCategoryID: ptr(subID)}, files)
	require.NoError(t, err)
	return p
}

func ptr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	f := newFixture(t)
	p := f.fullProject(t)

	assert.Equal(t, "Villa", p.ProjectName)
	require.NotNil(t, p.CoverImage)
	assert.Equal(t, []string{"cover.jpg"}, storagetest.Names([]storage.Reference{*p.CoverImage}))
	for i, ref := range p.Slots {
		require.NotNil(t, ref, "slot %d", i+1)
		assert.Equal(t, []string{fmt.Sprintf("slot%d.jpg", i+1)}, storagetest.Names([]storage.Reference{*ref}))
	}
	assert.Equal(t, 9, f.store.Len())
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, Input{SubCategoryID: ptr(subID)}, Files{Cover: f.upload(t, "c.jpg")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Create(ctx, Input{ProjectName: ptr("Villa")}, Files{Cover: f.upload(t, "c.jpg")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, f.store.PutCalls())
	entries, err := os.ReadDir(f.staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreate_PutFailureLeavesNothing(t *testing.T) {
	f := newFixture(t)
	f.store.FailPutOn("slot2.jpg")

	files := Files{Cover: f.upload(t, "cover.jpg")}
	files.Slots[0] = f.upload(t, "slot1.jpg")
	files.Slots[1] = f.upload(t, "slot2.jpg")
	files.Slots[2] = f.upload(t, "slot3.jpg")

	_, err := f.svc.Create(context.Background(), Input{ProjectName: ptr("Villa"), SubCategoryID: ptr(subID)}, files)
	var uploadErr *storage.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Zero(t, f.store.Len())
	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdate_ReplacesOnlyProvidedSlots(t *testing.T) {
	f := newFixture(t)
	p := f.fullProject(t)
	before := p.Slots

	files := Files{}
	files.Slots[4] = f.upload(t, "new5.jpg")
	updated, err := f.svc.Update(context.Background(), p.ID, Input{}, files)
	require.NoError(t, err)

	for i := range updated.Slots {
		if i == 4 {
			assert.Equal(t, []string{"new5.jpg"}, storagetest.Names([]storage.Reference{*updated.Slots[i]}))
			continue
		}
		assert.Equal(t, before[i].URL, updated.Slots[i].URL, "slot %d untouched", i+1)
	}
	assert.Equal(t, p.CoverImage.URL, updated.CoverImage.URL)
	assert.False(t, f.store.Has(before[4].URL), "replaced slot released")
	assert.Equal(t, []string{before[4].URL}, f.store.Deleted())
}

func TestUpdate_FieldsAndCover(t *testing.T) {
	f := newFixture(t)
	p := f.fullProject(t)
	oldCover := p.CoverImage.URL

	other := "00000000-0000-0000-0000-0000000000c2"
	updated, err := f.svc.Update(context.Background(), p.ID,
		Input{ProjectName: ptr(" Loft "), SubSubCategoryID: ptr(other)},
		Files{Cover: f.upload(t, "cover2.jpg")})
	require.NoError(t, err)

	assert.Equal(t, "Loft", updated.ProjectName)
	assert.Equal(t, subID, *updated.SubCategoryID)
	assert.Equal(t, other, *updated.SubSubCategoryID)
	assert.NotEqual(t, oldCover, updated.CoverImage.URL)
	assert.False(t, f.store.Has(oldCover))
}

func TestUpdate_PersistFailureKeepsOldImages(t *testing.T) {
	f := newFixture(t)
	p := f.fullProject(t)

	f.repo.failUpdate = true
	files := Files{}
	files.Slots[0] = f.upload(t, "new1.jpg")
	_, err := f.svc.Update(context.Background(), p.ID, Input{}, files)
	require.ErrorIs(t, err, errPersist)

	assert.True(t, f.store.Has(p.Slots[0].URL))
	assert.Equal(t, 9, f.store.Len(), "new slot image released")
}

func TestUpdate_NotFoundDiscardsUploads(t *testing.T) {
	f := newFixture(t)
	files := Files{Cover: f.upload(t, "c.jpg")}

	_, err := f.svc.Update(context.Background(), "00000000-0000-0000-0002-000000000999", Input{}, files)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.store.PutCalls())
	entries, err := os.ReadDir(f.staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClearSlot(t *testing.T) {
	f := newFixture(t)
	p := f.fullProject(t)

	updated, err := f.svc.ClearSlot(context.Background(), p.ID, 3)
	require.NoError(t, err)

	assert.Nil(t, updated.Slots[2])
	for i, ref := range updated.Slots {
		if i == 2 {
			continue
		}
		require.NotNil(t, ref)
		assert.Equal(t, p.Slots[i].URL, ref.URL)
	}
	assert.Equal(t, p.CoverImage.URL, updated.CoverImage.URL)
	assert.Equal(t, []string{p.Slots[2].URL}, f.store.Deleted())
}

func TestClearSlot_EmptySlotIsNoop(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), Input{ProjectName: ptr("Villa"), SubCategoryID: ptr(subID)}, Files{})
	require.NoError(t, err)

	_, err = f.svc.ClearSlot(context.Background(), p.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, f.store.Deleted())
}

func TestClearSlot_InvalidSlot(t *testing.T) {
	f := newFixture(t)
	p := f.fullProject(t)

	for _, slot := range []int{0, 9, -1} {
		_, err := f.svc.ClearSlot(context.Background(), p.ID, slot)
		assert.ErrorIs(t, err, asset.ErrInvalidSlot, "slot %d", slot)
	}
	assert.Empty(t, f.store.Deleted())
}

func TestDelete_ReleasesCoverAndSlots(t *testing.T) {
	f := newFixture(t)
	p := f.fullProject(t)
	f.store.FailDeleteOn(p.Slots[0].URL)

	require.NoError(t, f.svc.Delete(context.Background(), p.ID))
	_, err := f.svc.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, f.store.Deleted(), 9)
	assert.Equal(t, 1, f.store.Len(), "only the failed delete survives")
}

func TestMarshalJSON(t *testing.T) {
	ref := storage.Reference{URL: "/uploads/projects/a.jpg"}
	p := &Project{ID: "p1", ProjectName: "Villa", SubCategoryID: ptr(subID)}
	p.Slots[1] = &ref

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Nil(t, out["image1"])
	assert.Equal(t, "/uploads/projects/a.jpg", out["image2"].(map[string]interface{})["url"])
	assert.Contains(t, out, "image8")
	assert.Equal(t, subID, out["subCategoryId"])
	assert.NotContains(t, out, "Slots")
}

func TestHandler_CreateAcceptsCategoryAlias(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, request.Uploads{StagingDir: f.staging, MaxBytes: 1 << 20})
	r := chi.NewRouter()
	r.Post("/project", h.Create)
	r.Delete("/project/{id}/images/{slot}", h.ClearSlot)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("projectName", "Villa"))
	require.NoError(t, mw.WriteField("categoryId", subID))
	fw, err := mw.CreateFormFile("image2", "two.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("two"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/project", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"subCategoryId":"`+subID+`"`)
	assert.Contains(t, rec.Body.String(), `"image1":null`)

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/project/"+list[0].ID+"/images/9", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/project/"+list[0].ID+"/images/two", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/project/"+list[0].ID+"/images/2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"image2":null`))
	assert.Zero(t, f.store.Len())
}
