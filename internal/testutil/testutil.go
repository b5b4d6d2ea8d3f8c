// Package testutil holds helpers shared by handler and store tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"booksapi/internal/platform/crypto"
)

func GenerateTestToken(secret, userID, role string) string {
	tok, _ := crypto.GenerateToken(secret, userID, role, time.Hour)
	return tok.Value
}

// GenerateExpiredToken signs a token that expired an hour ago.
func GenerateExpiredToken(secret, userID, role string) string {
	signed, _ := crypto.Sign(secret, crypto.NewClaims(userID, role, time.Now().Add(-2*time.Hour), time.Hour))
	return signed
}

// NewRequestWithAuth encodes body as JSON when non-nil and sets the bearer
// token when non-empty.
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	var r *http.Request
	if body == nil {
		r = httptest.NewRequest(method, path, nil)
	} else {
		raw, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(raw))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// RecordHTTPResponse decodes the recorded JSON envelope. A non-JSON body
// leaves Body nil.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	resp := RecordResponse{Code: w.Code, Header: w.Header()}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp.Body)
	}
	return resp
}

// ErrorCode returns error.code from a recorded error envelope, or "".
func (r RecordResponse) ErrorCode() string {
	errBody, _ := r.Body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}
