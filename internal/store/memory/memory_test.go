package memory

import (
	"context"
	"sync"
	"testing"

	"booksapi/internal/entity"
	"booksapi/internal/store"
	"booksapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	testutil.RunStoreContract(t, func(t *testing.T) store.Store { return New() })
}

func TestSetUnavailable(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SetUnavailable(true)

	_, err := s.Categories().GetAll(ctx)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	_, err = s.Begin(ctx)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.ErrorIs(t, s.Ping(ctx), store.ErrUnavailable)

	s.SetUnavailable(false)
	assert.NoError(t, s.Ping(ctx))
}

func TestUnitOfWork_WritesInvisibleUntilCommit(t *testing.T) {
	s := New()
	ctx := context.Background()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	c := entity.Category{Name: "Pending"}
	require.NoError(t, uow.Categories().Add(ctx, &c))
	assert.NotZero(t, c.ID)

	all, err := s.Categories().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, uow.Commit(ctx))
	// Rollback after commit is a no-op.
	require.NoError(t, uow.Rollback(ctx))
	assert.Error(t, uow.Commit(ctx))

	all, err = s.Categories().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUnitOfWork_FailedOpDiscardsAll(t *testing.T) {
	s := New()
	ctx := context.Background()
	parent := entity.Category{Name: "Parent"}
	require.NoError(t, s.Categories().Add(ctx, &parent))

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Books().Add(ctx, &entity.Book{Title: "ok", Author: "a", Price: 1, CategoryID: parent.ID}))
	// Removed by another writer before commit.
	require.NoError(t, s.Categories().Delete(ctx, parent.ID))

	assert.ErrorIs(t, uow.Commit(ctx), store.ErrConstraint)
	books, err := s.Books().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestConcurrentAdds(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.InTx(ctx, s, func(uow store.UnitOfWork) error {
				return uow.Tags().Add(ctx, &entity.Tag{Name: "t" + string(rune('A'+i%26)) + string(rune('a'+i/26))})
			})
		}()
	}
	wg.Wait()

	tags, err := s.Tags().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 50)
}
