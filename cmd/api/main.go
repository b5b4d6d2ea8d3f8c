package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booksapi/internal/auth"
	"booksapi/internal/cache"
	"booksapi/internal/cache/localcache"
	"booksapi/internal/cache/rediscache"
	"booksapi/internal/catalog"
	"booksapi/internal/config"
	"booksapi/internal/store"
	"booksapi/internal/store/memory"
	"booksapi/internal/store/postgres"
	"booksapi/internal/store/sqlite"
	"booksapi/internal/user"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "booksapi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.Stringer("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, users, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	userService := user.NewService(users)
	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		cache:   c,
		catalog: catalog.NewHTTPHandler(catalog.NewCategoryService(st, c, logger), catalog.NewBookService(st, logger), logger),
		auth:    auth.NewHTTPHandler(auth.NewService(cfg.JWTSecret, cfg.JWTTTL, userService, logger), logger),
		users:   user.NewHTTPHandler(userService, logger),
	}

	httpServer := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      a.routes(ctx),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.AppAddr), zap.Strings("versions", cfg.Versions()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build()
}

// openStore returns the catalog store and the user repository sharing its
// connection.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, user.Repository, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DBDSN, cfg.DBTimeout, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open database (%s): %w", config.RedactDSN(cfg.DBDSN), err)
		}
		return s, user.NewPostgresRepo(s.Pool(), cfg.DBTimeout), nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.DBTimeout, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open sqlite database %s: %w", cfg.SQLitePath, err)
		}
		return s, user.NewSQLiteRepo(s.DB(), cfg.DBTimeout), nil
	default:
		logger.Warn("using the in-memory store; data is lost on restart")
		return memory.New(), user.NewMemoryRepo(), nil
	}
}

func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	if cfg.CacheDriver == config.DriverRedis {
		c := rediscache.New(rediscache.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
			TTL:      cfg.CacheTTL,
		}, logger)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		// The category listing falls back to the store, so Redis being down
		// at startup is not fatal.
		if err := c.Ping(pingCtx); err != nil {
			logger.Warn("redis not reachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		return c, nil
	}

	// sturdyc needs a positive TTL; zero keeps its default.
	lc := localcache.DefaultConfig()
	if cfg.CacheTTL > 0 {
		lc.TTL = cfg.CacheTTL
	}
	c, err := localcache.New(lc)
	if err != nil {
		return nil, fmt.Errorf("local cache: %w", err)
	}
	return c, nil
}
