package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		body   string
	}{
		{"ok", func(w http.ResponseWriter) { OK(w, map[string]int{"n": 1}) }, 200, `{"success":true,"data":{"n":1}}`},
		{"created", func(w http.ResponseWriter) { Created(w, []string{}) }, 201, `{"success":true,"data":[]}`},
		{"deleted", func(w http.ResponseWriter) { Deleted(w, "gallery deleted") }, 200, `{"success":true,"message":"gallery deleted"}`},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "name is required") }, 400, `{"success":false,"error":"name is required"}`},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "exists") }, 409, `{"success":false,"error":"exists"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"server error"}`, rec.Body.String())
}
