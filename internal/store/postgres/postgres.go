// Package postgres implements the catalog store on PostgreSQL through a pgx
// pool, with statements built by goqu.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booksapi/internal/store"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var _ store.Store = (*Store)(nil)

var dialect = goqu.Dialect("postgres")

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  *zap.Logger
}

// Open creates the pool and pings it once.
func Open(ctx context.Context, dsn string, timeout time.Duration, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", store.ErrUnavailable, err)
	}
	logger.Info("database connection OK", zap.String("driver", "postgres"))
	return New(pool, timeout, logger), nil
}

func New(pool *pgxpool.Pool, timeout time.Duration, logger *zap.Logger) *Store {
	return &Store{pool: pool, timeout: timeout, logger: logger}
}

// Pool exposes the underlying pool for repositories outside the catalog.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Categories() store.CategoryRepository {
	return &categoryRepo{q: s.pool, timeout: s.timeout}
}

func (s *Store) Books() store.BookRepository {
	return &bookRepo{q: s.pool, timeout: s.timeout}
}

func (s *Store) Tags() store.TagRepository {
	return &tagRepo{q: s.pool, timeout: s.timeout}
}

func (s *Store) Begin(ctx context.Context) (store.UnitOfWork, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return &unitOfWork{tx: tx, timeout: s.timeout}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	s.logger.Info("database pool closed")
	return nil
}

type unitOfWork struct {
	tx      pgx.Tx
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
	return classify(u.tx.Commit(ctx))
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return classify(err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

// classify maps driver errors onto the store sentinels. Anything that is not a
// server-side error is treated as the backend being unreachable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("postgres: %w", store.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503", "23505":
			return fmt.Errorf("postgres: %s: %w", pgErr.Message, store.ErrConstraint)
		}
		return fmt.Errorf("postgres: %w", err)
	}
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}

func affected(tag pgconn.CommandTag, what string, id int64) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: %s %d: %w", what, id, store.ErrNotFound)
	}
	return nil
}
