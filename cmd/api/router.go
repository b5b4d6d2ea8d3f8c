package main

import (
	"context"
	"net/http"
	"time"

	"booksapi/internal/auth"
	"booksapi/internal/cache"
	"booksapi/internal/catalog"
	"booksapi/internal/config"
	"booksapi/internal/entity"
	"booksapi/internal/httpx"
	"booksapi/internal/metrics"
	"booksapi/internal/store"
	"booksapi/internal/user"

	"go.uber.org/zap"
)

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   store.Store
	cache   cache.Cache
	catalog *catalog.HTTPHandler
	auth    *auth.HTTPHandler
	users   *user.HTTPHandler
}

// routes builds the mux and wraps it in the middleware chain. ctx bounds the
// rate limiter's cleanup goroutine.
func (a *app) routes(ctx context.Context) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", a.ready)
	router.Handle("GET /metrics", metrics.Handler())

	authenticated := httpx.AuthMiddleware(a.cfg.JWTSecret)
	withRoles := func(roles ...string) func(http.Handler) http.Handler {
		requireRole := httpx.RequireRole(roles...)
		return func(next http.Handler) http.Handler {
			return authenticated(requireRole(next))
		}
	}
	catalogAccess := withRoles(entity.RoleUser, entity.RoleAdmin)
	adminOnly := withRoles(entity.RoleAdmin)

	versions := httpx.NewVersions(a.cfg.Versions()...)
	versions.Mount(func(prefix string) {
		a.catalog.Routes(router, prefix, catalogAccess)

		router.HandleFunc("POST "+prefix+"/auth/register", a.auth.Register)
		router.HandleFunc("POST "+prefix+"/auth/login", a.auth.Login)
		router.Handle("POST "+prefix+"/auth/admins", adminOnly(http.HandlerFunc(a.auth.CreateAdmin)))
		router.Handle("PUT "+prefix+"/auth/password", authenticated(http.HandlerFunc(a.auth.ChangePassword)))
		router.Handle("DELETE "+prefix+"/auth/account", authenticated(http.HandlerFunc(a.auth.DeleteAccount)))
		router.Handle("GET "+prefix+"/me", authenticated(http.HandlerFunc(a.users.Me)))
	})

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, a.cfg.RateLimitRPS, a.cfg.RateLimitBurst)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(a.logger),
		httpx.AccessLogMiddleware(a.logger),
		httpx.SecurityHeadersMiddleware(a.cfg.IsProduction()),
		httpx.CORSMiddleware(a.cfg.AllowedOrigins()),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(a.cfg.MaxBodyBytes),
		versions.Middleware,
		// Innermost so it sees the pattern the mux matched.
		httpx.MetricsMiddleware,
	)
}

// ready fails only when the store is down. A cache outage is reported but
// the service keeps serving from the store.
func (a *app) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		a.logger.Warn("readiness: store not ready", zap.Error(err))
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "store not ready", nil)
		return
	}

	cacheStatus := "ok"
	if err := a.cache.Ping(ctx); err != nil {
		a.logger.Warn("readiness: cache degraded", zap.Error(err))
		cacheStatus = "degraded"
	}
	httpx.JSONSuccess(w, r, map[string]string{"store": "ok", "cache": cacheStatus}, nil)
}
