package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"id": 3})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":3}`, rec.Body.String())

	rec = httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)
	assert.Equal(t, "null", rec.Body.String())

	rec = httptest.NewRecorder()
	JSON(rec, http.StatusOK, func() {})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
	assert.JSONEq(t, `{"error":"validation_failed","details":{"name":"required"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	JSONError(rec, http.StatusNotFound, "not_found", nil)
	assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"name":"Rakoto"}`, true},
		{"unknown field", `{"name":"x","extra":1}`, false},
		{"trailing", `{"name":"x"}{"name":"y"}`, false},
		{"malformed", `{"name":`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "Rakoto", p.Name)
				return
			}
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestDecodeJSONTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var p struct {
		Name string `json:"name"`
	}
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), req, &p), ErrBadRequest)
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, WantsJSON(req))

	req.Header.Set("Accept", "application/json, text/plain")
	assert.True(t, WantsJSON(req))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, WantsJSON(req))

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.False(t, WantsJSON(req))
}
