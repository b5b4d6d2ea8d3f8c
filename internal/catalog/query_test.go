package catalog

import (
	"errors"
	"math"
	"testing"

	"booksapi/internal/entity"

	"github.com/stretchr/testify/assert"
)

func sampleBooks() []entity.Book {
	return []entity.Book{
		{Base: entity.Base{ID: 1}, Title: "War and Peace", Price: 15},
		{Base: entity.Base{ID: 2}, Title: "Anna Karenina", Price: 10},
		{Base: entity.Base{ID: 3}, Title: "The Art of War", Price: 20},
		{Base: entity.Base{ID: 4}, Title: "Dune", Price: 9.99},
		{Base: entity.Base{ID: 5}, Title: "Emma", Price: 20},
	}
}

func titles(views []BookView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Title)
	}
	return out
}

func TestFilterBooks_TitleIsCaseInsensitive(t *testing.T) {
	f := DefaultBookFilter()
	f.Title = "war"

	got := filterBooks(sampleBooks(), f)

	assert.Equal(t, []string{"The Art of War", "War and Peace"}, titles(got))
}

func TestFilterBooks_PriceRangeInclusive(t *testing.T) {
	f := DefaultBookFilter()
	f.MinPrice = 10
	f.MaxPrice = 20

	got := filterBooks(sampleBooks(), f)

	for _, v := range got {
		assert.GreaterOrEqual(t, v.Price, 10.0)
		assert.LessOrEqual(t, v.Price, 20.0)
	}
	assert.Len(t, got, 4)
}

func TestFilterBooks_OrderByPriceDescendingIsStable(t *testing.T) {
	f := DefaultBookFilter()
	f.OrderByTitle = false

	got := filterBooks(sampleBooks(), f)

	// Both 20.00 books keep store order.
	assert.Equal(t, []string{"The Art of War", "Emma", "War and Peace", "Anna Karenina", "Dune"}, titles(got))
}

func TestValidateFilter(t *testing.T) {
	assert.NoError(t, validateFilter(DefaultBookFilter()))

	for name, mutate := range map[string]func(*BookFilter){
		"zero size":      func(f *BookFilter) { f.PageSize = 0 },
		"negative page":  func(f *BookFilter) { f.PageNumber = -1 },
		"negative price": func(f *BookFilter) { f.MinPrice = -1 },
		"NaN min price":  func(f *BookFilter) { f.MinPrice = math.NaN() },
		"NaN max price":  func(f *BookFilter) { f.MaxPrice = math.NaN() },
	} {
		t.Run(name, func(t *testing.T) {
			f := DefaultBookFilter()
			mutate(&f)
			assert.True(t, errors.Is(validateFilter(f), ErrInvalidArgument))
		})
	}
}
