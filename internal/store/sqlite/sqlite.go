// Package sqlite implements the catalog store on SQLite via modernc.org/sqlite
// and sqlx. The schema ships embedded and is applied with goose on Open.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"booksapi/internal/store"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var _ store.Store = (*Store)(nil)

var dialect = goqu.Dialect("sqlite3")

//go:embed migrations/*.sql
var migrations embed.FS

// querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type querier interface {
	sqlx.ExtContext
}

type Store struct {
	db      *sqlx.DB
	timeout time.Duration
	logger  *zap.Logger
}

// Open opens (or creates) the database at path, applies pragmas and runs the
// embedded migrations. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, timeout time.Duration, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// One connection keeps writes serialized and an in-memory database alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping sqlite %q: %v", store.ErrUnavailable, path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	if err := migrate(ctx, db.DB); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database connection OK", zap.String("driver", "sqlite"), zap.String("path", path))
	return &Store{db: db, timeout: timeout, logger: logger}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// DB exposes the handle for repositories outside the catalog.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Categories() store.CategoryRepository {
	return &categoryRepo{q: s.db, timeout: s.timeout}
}

func (s *Store) Books() store.BookRepository {
	return &bookRepo{q: s.db, timeout: s.timeout}
}

func (s *Store) Tags() store.TagRepository {
	return &tagRepo{q: s.db, timeout: s.timeout}
}

func (s *Store) Begin(ctx context.Context) (store.UnitOfWork, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	return &unitOfWork{tx: tx, timeout: s.timeout}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.logger.Info("closing sqlite database")
	return s.db.Close()
}

type unitOfWork struct {
	tx      *sqlx.Tx
	timeout time.Duration
}

func (u *unitOfWork) Categories() store.CategoryRepository {
	return &categoryRepo{q: u.tx, timeout: u.timeout}
}

func (u *unitOfWork) Books() store.BookRepository {
	return &bookRepo{q: u.tx, timeout: u.timeout}
}

func (u *unitOfWork) Tags() store.TagRepository {
	return &tagRepo{q: u.tx, timeout: u.timeout}
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	return classify(u.tx.Commit())
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return classify(err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("sqlite: %w", store.ErrNotFound)
	case errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		strings.Contains(err.Error(), "database is locked"):
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	case strings.Contains(err.Error(), "constraint failed"):
		return fmt.Errorf("sqlite: %v: %w", err, store.ErrConstraint)
	}
	return fmt.Errorf("sqlite: %w", err)
}

func affected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite: %s %d: %w", what, id, store.ErrNotFound)
	}
	return nil
}
