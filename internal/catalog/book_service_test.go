package catalog

import (
	"context"
	"errors"
	"math"
	"testing"

	"booksapi/internal/entity"
	"booksapi/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type bookFixture struct {
	svc      *BookService
	st       *memory.Store
	category int64
}

func newBookFixture(t *testing.T) bookFixture {
	t.Helper()
	st := memory.New()
	ctx := context.Background()

	uow, err := st.Begin(ctx)
	require.NoError(t, err)
	c := entity.Category{Name: "Classics"}
	require.NoError(t, uow.Categories().Add(ctx, &c))
	require.NoError(t, uow.Commit(ctx))

	return bookFixture{svc: NewBookService(st, zaptest.NewLogger(t)), st: st, category: c.ID}
}

func (f bookFixture) add(t *testing.T, title string, price float64) BookView {
	t.Helper()
	v, err := f.svc.AddBook(context.Background(), &AddBookInput{Title: title, Author: "someone", Price: price, CategoryID: f.category})
	require.NoError(t, err)
	return v
}

func TestAddBook_Validation(t *testing.T) {
	f := newBookFixture(t)
	// Validation runs before the store is touched.
	f.st.SetUnavailable(true)
	ctx := context.Background()

	cases := map[string]*AddBookInput{
		"nil":         nil,
		"empty title": {Title: "", Author: "a", Price: 10, CategoryID: f.category},
		"no author":   {Title: "t", Author: " ", Price: 10, CategoryID: f.category},
		"zero price":  {Title: "t", Author: "a", Price: 0, CategoryID: f.category},
		"negative":    {Title: "t", Author: "a", Price: -3, CategoryID: f.category},
		"NaN price":   {Title: "t", Author: "a", Price: math.NaN(), CategoryID: f.category},
		"inf price":   {Title: "t", Author: "a", Price: math.Inf(1), CategoryID: f.category},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.AddBook(ctx, in)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestAddBook_DuplicateTitleAndMissingCategory(t *testing.T) {
	f := newBookFixture(t)
	ctx := context.Background()
	f.add(t, "Emma", 8)

	_, err := f.svc.AddBook(ctx, &AddBookInput{Title: "Emma", Author: "Austen", Price: 9, CategoryID: f.category})
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = f.svc.AddBook(ctx, &AddBookInput{Title: "Persuasion", Author: "Austen", Price: 9, CategoryID: 404})
	require.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Category doesn't exist", Message(err))
}

func TestAddBook_ReturnsCategoryName(t *testing.T) {
	f := newBookFixture(t)
	v := f.add(t, "Emma", 8)
	assert.NotZero(t, v.ID)
	assert.Equal(t, "Classics", v.CategoryName)
}

func TestUpdateBook(t *testing.T) {
	f := newBookFixture(t)
	ctx := context.Background()
	emma := f.add(t, "Emma", 8)
	f.add(t, "Persuasion", 9)

	_, err := f.svc.UpdateBook(ctx, emma.ID, &AddBookInput{Title: "Persuasion", Author: "Austen", Price: 8, CategoryID: f.category})
	assert.True(t, errors.Is(err, ErrConflict))

	v, err := f.svc.UpdateBook(ctx, emma.ID, &AddBookInput{Title: "Emma", Author: "Austen", Price: 11, CategoryID: f.category})
	require.NoError(t, err)
	assert.Equal(t, 11.0, v.Price)

	_, err = f.svc.UpdateBook(ctx, 999, &AddBookInput{Title: "Ghost", Author: "x", Price: 1, CategoryID: f.category})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteBook(t *testing.T) {
	f := newBookFixture(t)
	ctx := context.Background()
	v := f.add(t, "Emma", 8)

	require.NoError(t, f.svc.DeleteBook(ctx, v.ID))
	_, err := f.svc.GetBookByID(ctx, v.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(f.svc.DeleteBook(ctx, v.ID), ErrNotFound))
}

func TestFilterBooks_PageProperties(t *testing.T) {
	f := newBookFixture(t)
	ctx := context.Background()
	for i, title := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		f.add(t, title, float64(i+1))
	}

	for size := 1; size <= 8; size++ {
		for number := 1; number <= 9; number++ {
			filter := DefaultBookFilter()
			filter.PageSize, filter.PageNumber = size, number

			p, err := f.svc.FilterBooks(ctx, filter)
			require.NoError(t, err)
			assert.Len(t, p.Items, min(size, max(0, 7-(number-1)*size)))
			assert.Equal(t, number*size < 7, p.HasNext)
			assert.Equal(t, number > 1, p.HasPrevious)
		}
	}
}

func TestFilterBooks_TitleAndPrice(t *testing.T) {
	f := newBookFixture(t)
	ctx := context.Background()
	f.add(t, "War and Peace", 15)
	f.add(t, "Cheap Thrills", 5)
	f.add(t, "Pricey", 25)

	byTitle := DefaultBookFilter()
	byTitle.Title = "war"
	p, err := f.svc.FilterBooks(ctx, byTitle)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "War and Peace", p.Items[0].Title)

	byPrice := DefaultBookFilter()
	byPrice.MinPrice, byPrice.MaxPrice = 10, 20
	p, err = f.svc.FilterBooks(ctx, byPrice)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, 15.0, p.Items[0].Price)
}

func TestFilterBooks_Errors(t *testing.T) {
	f := newBookFixture(t)
	ctx := context.Background()

	bad := DefaultBookFilter()
	bad.PageSize = 0
	_, err := f.svc.FilterBooks(ctx, bad)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	nan := DefaultBookFilter()
	nan.MinPrice = math.NaN()
	_, err = f.svc.FilterBooks(ctx, nan)
	assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)

	f.st.SetUnavailable(true)
	_, err = f.svc.FilterBooks(ctx, DefaultBookFilter())
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}
