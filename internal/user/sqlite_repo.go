package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var _ Repository = (*SQLiteRepo)(nil)

type SQLiteRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewSQLiteRepo(db *sqlx.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLiteRepo) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New().String()
	u.CreatedAt = time.Now().UTC()

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.NamedExecContext(timeoutCtx, `
	INSERT INTO users (id, email, full_name, password_hash, role, created_at)
	VALUES (:id, :email, :full_name, :password_hash, :role, :created_at)
	`, u)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrAlreadyExists
	}
	return err
}

func (r *SQLiteRepo) getOne(ctx context.Context, where string, arg any) (User, error) {
	var u User
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.GetContext(timeoutCtx, &u, `
	SELECT id, email, full_name, password_hash, role, created_at
	FROM users WHERE `+where+` = ? LIMIT 1
	`, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *SQLiteRepo) exec(ctx context.Context, query string, args ...any) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
}
