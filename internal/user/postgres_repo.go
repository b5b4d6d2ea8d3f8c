package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Repository = (*PostgresRepo)(nil)

var (
	pgDialect   = goqu.Dialect("postgres")
	userColumns = []any{"id", "email", "full_name", "password_hash", "role", "created_at"}
)

type PostgresRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(pool *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{pool: pool, timeout: timeout}
}

// Create lets the database assign id and created_at.
func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	query, args, err := pgDialect.Insert("users").
		Rows(goqu.Record{
			"email":         u.Email,
			"full_name":     u.FullName,
			"password_hash": u.PasswordHash,
			"role":          u.Role,
		}).
		Returning("id", "created_at").
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	err = r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) findBy(ctx context.Context, column, value string) (User, error) {
	query, args, err := pgDialect.From("users").
		Select(userColumns...).
		Where(goqu.C(column).Eq(value)).
		Limit(1).
		Prepared(true).ToSQL()
	if err != nil {
		return User{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	var u User
	err = r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users by %s: %w", column, err)
	}
	return u, nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.findBy(ctx, "email", email)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.findBy(ctx, "id", id)
}

func (r *PostgresRepo) exec(ctx context.Context, query string, args []any) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query, args, err := pgDialect.Update("users").
		Set(goqu.Record{"password_hash": passwordHash}).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	return r.exec(ctx, query, args)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	query, args, err := pgDialect.Delete("users").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	return r.exec(ctx, query, args)
}
