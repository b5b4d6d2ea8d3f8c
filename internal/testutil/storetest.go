package testutil

import (
	"context"
	"errors"
	"testing"

	"booksapi/internal/entity"
	"booksapi/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract exercises behaviour every store.Store backend must share.
// open must return an empty store.
func RunStoreContract(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("category crud", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		c := entity.Category{Name: "Fiction"}
		require.NoError(t, s.Categories().Add(ctx, &c))
		require.NotZero(t, c.ID)

		got, err := s.Categories().GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fiction", got.Name)

		c.Name = "Fiction2"
		require.NoError(t, s.Categories().Update(ctx, &c))
		got, err = s.Categories().GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fiction2", got.Name)

		require.NoError(t, s.Categories().Delete(ctx, c.ID))
		_, err = s.Categories().GetByID(ctx, c.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing records", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		_, err := s.Books().GetByID(ctx, 404)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, s.Books().Delete(ctx, 404), store.ErrNotFound)
		assert.ErrorIs(t, s.Categories().Update(ctx, &entity.Category{Base: entity.Base{ID: 404}, Name: "x"}), store.ErrNotFound)
		assert.ErrorIs(t, s.Categories().Delete(ctx, 404), store.ErrNotFound)
	})

	t.Run("book needs category", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		err := s.Books().Add(ctx, &entity.Book{Title: "Orphan", Author: "a", Price: 1, CategoryID: 404})
		assert.ErrorIs(t, err, store.ErrConstraint)
	})

	t.Run("composite reads and cascade", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		classics := entity.Category{Name: "Classics"}
		empty := entity.Category{Name: "Empty"}
		require.NoError(t, s.Categories().Add(ctx, &classics))
		require.NoError(t, s.Categories().Add(ctx, &empty))

		war := entity.Book{Title: "War and Peace", Author: "Tolstoy", Price: 15.5, CategoryID: classics.ID}
		emma := entity.Book{Title: "Emma", Author: "Austen", Price: 8, CategoryID: classics.ID}
		require.NoError(t, s.Books().Add(ctx, &war))
		require.NoError(t, s.Books().Add(ctx, &emma))

		russian := entity.Tag{Name: "russian"}
		require.NoError(t, s.Tags().Add(ctx, &russian))
		require.NoError(t, s.Tags().Attach(ctx, war.ID, russian.ID))
		// Attaching twice is a no-op.
		require.NoError(t, s.Tags().Attach(ctx, war.ID, russian.ID))

		books, err := s.Books().GetAllWithCategory(ctx)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, war.ID, books[0].ID)
		require.NotNil(t, books[0].Category)
		assert.Equal(t, "Classics", books[0].Category.Name)
		require.Len(t, books[0].Tags, 1)
		assert.Equal(t, "russian", books[0].Tags[0].Name)
		assert.Empty(t, books[1].Tags)

		got, err := s.Books().GetByID(ctx, war.ID)
		require.NoError(t, err)
		assert.Equal(t, 15.5, got.Price)
		assert.Equal(t, "Classics", got.Category.Name)

		categories, err := s.Categories().GetAllWithBooks(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Len(t, categories[0].Books, 2)
		assert.Empty(t, categories[1].Books)

		require.NoError(t, s.Categories().Delete(ctx, classics.ID))
		left, err := s.Books().GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("unit of work commit and rollback", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		err := store.InTx(ctx, s, func(uow store.UnitOfWork) error {
			if err := uow.Categories().Add(ctx, &entity.Category{Name: "Discarded"}); err != nil {
				return err
			}
			return errors.New("abort")
		})
		require.EqualError(t, err, "abort")
		all, err := s.Categories().GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		kept := entity.Category{Name: "Kept"}
		require.NoError(t, store.InTx(ctx, s, func(uow store.UnitOfWork) error {
			return uow.Categories().Add(ctx, &kept)
		}))
		all, err = s.Categories().GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, kept.ID, all[0].ID)
	})
}
