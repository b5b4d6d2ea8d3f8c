package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSuccess_MergesRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-1"))
	w := httptest.NewRecorder()

	JSONSuccess(w, r, map[string]string{"key": "value"}, map[string]interface{}{"total": 10})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Success bool                   `json:"success"`
		Data    map[string]string      `json:"data"`
		Meta    map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "value", body.Data["key"])
	assert.Equal(t, "req-1", body.Meta["request_id"])
	assert.Equal(t, float64(10), body.Meta["total"])
}

func TestJSONSuccess_RawMessagePassesThrough(t *testing.T) {
	w := httptest.NewRecorder()

	JSONSuccess(w, httptest.NewRequest(http.MethodGet, "/", nil), json.RawMessage(`[{"id":1,"name":"Fiction"}]`), nil)

	assert.JSONEq(t, `{"success":true,"data":[{"id":1,"name":"Fiction"}]}`, w.Body.String())
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	details := []ErrorDetail{{Field: "email", Message: "email is required"}}

	JSONError(w, httptest.NewRequest(http.MethodPost, "/", nil), http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, details, body.Error.Details)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Fiction"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "Fiction", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.Error(t, DecodeJSON(r, &v))
}
