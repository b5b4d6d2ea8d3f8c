package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"booksapi/internal/entity"
	"booksapi/internal/httpx"
	"booksapi/internal/testutil"

	"github.com/stretchr/testify/assert"
)

const secret = "middleware-secret"

func protected() http.Handler {
	return httpx.AuthMiddleware(secret)(httpx.RequireRole(entity.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpx.JSONSuccess(w, r, map[string]string{"user": httpx.UserIDFrom(r), "role": httpx.RoleFrom(r)}, nil)
		}),
	))
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name  string
		token string
		code  int
		error string
	}{
		{name: "missing token", code: http.StatusUnauthorized, error: "UNAUTHORIZED"},
		{name: "garbage token", token: "not-a-jwt", code: http.StatusUnauthorized, error: "UNAUTHORIZED"},
		{name: "expired token", token: testutil.GenerateExpiredToken(secret, "u1", entity.RoleAdmin), code: http.StatusUnauthorized, error: "UNAUTHORIZED"},
		{name: "wrong secret", token: testutil.GenerateTestToken("other", "u1", entity.RoleAdmin), code: http.StatusUnauthorized, error: "UNAUTHORIZED"},
		{name: "wrong role", token: testutil.GenerateTestToken(secret, "u1", entity.RoleUser), code: http.StatusForbidden, error: "FORBIDDEN"},
		{name: "admin", token: testutil.GenerateTestToken(secret, "u1", entity.RoleAdmin), code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			protected().ServeHTTP(w, testutil.NewRequestWithAuth(http.MethodGet, "/admin", nil, tt.token))

			resp := testutil.RecordHTTPResponse(w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.error, resp.ErrorCode())
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	handler := httpx.RequireRole(entity.RoleUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
