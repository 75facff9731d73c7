package request

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createBody struct {
	Name   string `json:"name"   validate:"required,max=10"`
	IconID string `json:"iconId" validate:"omitempty,uuid"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"web"}`},
		{name: "malformed", body: `{`, wantErr: "invalid request body"},
		{name: "missing name", body: `{}`, wantErr: "name is required"},
		{name: "too long", body: `{"name":"abcdefghijkl"}`, wantErr: "name must be at most 10 characters"},
		{name: "bad uuid", body: `{"name":"web","iconId":"x"}`, wantErr: "iconId must be a valid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst createBody
			err := DecodeJSON(r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "web", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "8b0c2f4e-5b6a-4c1e-9d2f-1a2b3c4d5e6f")
	rctx.URLParams.Add("bad", "42")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	id, ok := ID(r, "id")
	assert.True(t, ok)
	assert.Equal(t, "8b0c2f4e-5b6a-4c1e-9d2f-1a2b3c4d5e6f", id)

	_, ok = ID(r, "bad")
	assert.False(t, ok)
}

func TestTrimmed(t *testing.T) {
	assert.Nil(t, Trimmed("   "))
	require.NotNil(t, Trimmed(" web "))
	assert.Equal(t, "web", *Trimmed(" web "))
}

func multipartRequest(t *testing.T, values map[string]string, files map[string][]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("content of " + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUploads_Parse(t *testing.T) {
	staging := t.TempDir()
	uploads := Uploads{StagingDir: staging, MaxBytes: 1 << 20}

	r := multipartRequest(t,
		map[string]string{"categoryId": " abc "},
		map[string][]string{"images": {"1.jpg", "2.jpg", "3.jpg"}, "coverImage": {"cover.png"}},
	)
	form, err := uploads.Parse(r)
	require.NoError(t, err)

	assert.Equal(t, "abc", form.Value("categoryId"))
	assert.Equal(t, "", form.Value("missing"))

	images := form.Files("images")
	require.Len(t, images, 3)
	for i, name := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		assert.Equal(t, name, images[i].Filename)
		assert.Equal(t, "images", images[i].Field)
	}
	require.NotNil(t, form.File("coverImage"))
	assert.Nil(t, form.File("image1"))

	form.Discard()
	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploads_ParseTooLarge(t *testing.T) {
	staging := t.TempDir()
	uploads := Uploads{StagingDir: staging, MaxBytes: 4}

	r := multipartRequest(t, nil, map[string][]string{"images": {"a.jpg", "b.jpg"}})
	_, err := uploads.Parse(r)
	require.Error(t, err)
	assert.True(t, IsTooLarge(err))

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries, "already staged parts are discarded")
}

func TestUploads_ParseURLEncoded(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=web"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := Uploads{MaxBytes: 1}.Parse(r)
	require.NoError(t, err)
	assert.Equal(t, "web", form.Value("name"))
	assert.Nil(t, form.Files("images"))
}
