package main

import (
	"context"
	"flag"
	"time"

	"booksapi/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	loadEnvFiles()
	dir := migrationsDir()

	if *command == "create" {
		if *name == "" {
			logger.Fatal("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			logger.Fatal("failed to create migration", zap.Error(err))
		}
		logger.Info("migration created", zap.String("name", *name), zap.String("dir", dir))
		return
	}

	dsn := databaseDSN()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.String("dsn", config.RedactDSN(dsn)), zap.Error(err))
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal("goose dialect", zap.Error(err))
	}

	switch *command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("migrations applied", zap.String("dir", dir))
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			logger.Fatal("failed to roll back migration", zap.Error(err))
		}
		logger.Info("migration rolled back", zap.String("dir", dir))
	case "status":
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			logger.Fatal("failed to check migration status", zap.Error(err))
		}
	default:
		logger.Fatal("unknown command, use: up, down, status, create", zap.String("command", *command))
	}
}
