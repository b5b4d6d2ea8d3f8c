package catalog

import (
	"testing"

	"booksapi/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRoundTrip(t *testing.T) {
	record := entity.Category{Base: entity.Base{ID: 7}, Name: "Fiction"}

	back := CategoryFromView(CategoryToView(record))

	assert.Equal(t, record.ID, back.ID)
	assert.Equal(t, record.Name, back.Name)
}

func TestCategoryToView_BooksCarryParentName(t *testing.T) {
	record := entity.Category{
		Base: entity.Base{ID: 1},
		Name: "History",
		Books: []entity.Book{
			{Base: entity.Base{ID: 3}, Title: "SPQR", Price: 12, CategoryID: 1},
		},
	}

	v := CategoryToView(record)

	assert.Len(t, v.Books, 1)
	assert.Equal(t, "History", v.Books[0].CategoryName)
}

func TestBookRoundTrip(t *testing.T) {
	record := entity.Book{
		Base:        entity.Base{ID: 4},
		Title:       "War and Peace",
		Description: "long",
		Author:      "Tolstoy",
		Price:       15.5,
		CategoryID:  2,
		Category:    &entity.Category{Base: entity.Base{ID: 2}, Name: "Classics"},
		Tags:        []entity.Tag{{Base: entity.Base{ID: 1}, Name: "russian"}},
	}

	v := BookToView(record)
	assert.Equal(t, "Classics", v.CategoryName)
	assert.Equal(t, []string{"russian"}, v.Tags)

	back := BookFromView(v)
	assert.Equal(t, record.ID, back.ID)
	assert.Equal(t, record.Title, back.Title)
	assert.Equal(t, record.Description, back.Description)
	assert.Equal(t, record.Author, back.Author)
	assert.Equal(t, record.Price, back.Price)
	assert.Equal(t, record.CategoryID, back.CategoryID)
	assert.Equal(t, "Classics", back.Category.Name)
	// Tag ids are not part of the view.
	assert.Equal(t, []entity.Tag{{Name: "russian"}}, back.Tags)
}

func TestBookFromView_Defaults(t *testing.T) {
	b := BookFromView(BookView{Title: "x"})
	assert.Nil(t, b.Category)
	assert.Nil(t, b.Tags)
	assert.Zero(t, b.ID)
}

func TestAddBookInputToRecord(t *testing.T) {
	b := AddBookInputToRecord(AddBookInput{Title: "t", Author: "a", Price: 3, CategoryID: 9})
	assert.Zero(t, b.ID)
	assert.Equal(t, int64(9), b.CategoryID)
	assert.Equal(t, 3.0, b.Price)
}
