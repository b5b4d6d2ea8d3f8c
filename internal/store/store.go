// Package store defines the persistence ports of the catalog. Backends live in
// the memory, postgres and sqlite subpackages.
package store

import (
	"context"
	"errors"

	"booksapi/internal/entity"
)

var (
	ErrNotFound    = errors.New("store: record not found")
	ErrUnavailable = errors.New("store: backend unavailable")
	// ErrConstraint reports a foreign key or uniqueness violation.
	ErrConstraint = errors.New("store: constraint violated")
)

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]entity.Category, error)
	GetByID(ctx context.Context, id int64) (entity.Category, error)
	// Add assigns the new id to c.ID.
	Add(ctx context.Context, c *entity.Category) error
	Update(ctx context.Context, c *entity.Category) error
	// Delete removes the category and, through the cascade, its books.
	Delete(ctx context.Context, id int64) error
	GetAllWithBooks(ctx context.Context) ([]entity.Category, error)
}

type BookRepository interface {
	GetAll(ctx context.Context) ([]entity.Book, error)
	GetByID(ctx context.Context, id int64) (entity.Book, error)
	Add(ctx context.Context, b *entity.Book) error
	Update(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id int64) error
	// GetAllWithCategory returns books ordered by id with Category and Tags set.
	GetAllWithCategory(ctx context.Context) ([]entity.Book, error)
}

type TagRepository interface {
	GetAll(ctx context.Context) ([]entity.Tag, error)
	Add(ctx context.Context, t *entity.Tag) error
	Attach(ctx context.Context, bookID, tagID int64) error
}

type Repositories interface {
	Categories() CategoryRepository
	Books() BookRepository
	Tags() TagRepository
}

// UnitOfWork groups the writes of one request. Nothing is visible to other
// readers until Commit returns nil. Rollback after Commit is a no-op.
type UnitOfWork interface {
	Repositories
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Store interface {
	Repositories
	Begin(ctx context.Context) (UnitOfWork, error)
	Ping(ctx context.Context) error
	Close() error
}

// InTx runs fn inside a unit of work and commits when fn returns nil.
func InTx(ctx context.Context, s Store, fn func(uow UnitOfWork) error) error {
	uow, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
