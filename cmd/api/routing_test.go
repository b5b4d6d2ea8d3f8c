package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"booksapi/internal/auth"
	"booksapi/internal/cache/localcache"
	"booksapi/internal/catalog"
	"booksapi/internal/config"
	"booksapi/internal/store/memory"
	"booksapi/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		JWTSecret:          "routing-secret",
		JWTTTL:             time.Hour,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		CORSAllowedOrigins: "*",
		MaxBodyBytes:       1 << 20,
		APIVersions:        "1,2",
	}
	st := memory.New()
	c, err := localcache.New(localcache.DefaultConfig())
	require.NoError(t, err)
	userService := user.NewService(user.NewMemoryRepo())

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		cache:   c,
		catalog: catalog.NewHTTPHandler(catalog.NewCategoryService(st, c, logger), catalog.NewBookService(st, logger), logger),
		auth:    auth.NewHTTPHandler(auth.NewService(cfg.JWTSecret, cfg.JWTTTL, userService, logger), logger),
		users:   user.NewHTTPHandler(userService, logger),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return testServer{handler: a.routes(ctx), store: st}
}

func (s testServer) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func TestHealthAndReadiness(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = s.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	s.store.SetUnavailable(true)
	w = s.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/v1/books", "", "")

	w := s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "booksapi_http_requests_total")
}

func TestVersionedRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, prefix := range []string{"/api/v1", "/api/v2"} {
		w := s.do(t, http.MethodGet, prefix+"/books", "", "")
		assert.Equal(t, http.StatusOK, w.Code, prefix)
		assert.Equal(t, "1.0, 2.0", w.Header().Get("api-supported-versions"))
	}

	w := s.do(t, http.MethodGet, "/api/v3/books", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/books", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountFlow(t *testing.T) {
	s := newTestServer(t)
	const password = "Str0ng!Pass"

	w := s.do(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"reader@example.com","full_name":"Avid Reader","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"reader@example.com","full_name":"Avid Reader","password":"`+password+`"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"reader@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"reader@example.com","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Data struct {
			AccessToken string `json:"access_token"`
			Role        string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	token := login.Data.AccessToken
	require.NotEmpty(t, token)
	assert.Equal(t, "User", login.Data.Role)

	// Categories need a token.
	w = s.do(t, http.MethodGet, "/api/v2/categories", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/api/v2/categories", `{"name":"Fiction"}`, token)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, http.MethodGet, "/api/v2/categories", "", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fiction")

	// Only admins can create admins.
	w = s.do(t, http.MethodPost, "/api/v1/auth/admins",
		`{"email":"boss@example.com","full_name":"The Boss","password":"`+password+`"}`, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reader@example.com")

	w = s.do(t, http.MethodPut, "/api/v1/auth/password",
		`{"current_password":"`+password+`","new_password":"`+password+`"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/auth/password",
		`{"current_password":"`+password+`","new_password":"N3w!Password"}`, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/auth/account", "", token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"reader@example.com","password":"N3w!Password"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	r.Header.Set("Origin", "https://client.example")
	w := httptest.NewRecorder()

	s.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Pagination")
}
