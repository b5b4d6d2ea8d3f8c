// Package catalog implements the book and category services: filtered paging
// over the store, validated writes and the cached category listing.
package catalog

import "math"

type BookView struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Author       string   `json:"author"`
	Price        float64  `json:"price"`
	CategoryID   int64    `json:"category_id"`
	CategoryName string   `json:"category_name"`
	Tags         []string `json:"tags,omitempty"`
}

type CategoryView struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Books []BookView `json:"books,omitempty"`
}

// AddBookInput is the payload for creating or replacing a book.
type AddBookInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"category_id"`
}

type BookFilter struct {
	PageSize     int
	PageNumber   int
	Title        string
	MinPrice     float64
	MaxPrice     float64
	OrderByTitle bool
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// DefaultBookFilter matches every book: first page, any price, ordered by title.
func DefaultBookFilter() BookFilter {
	return BookFilter{
		PageSize:     DefaultPageSize,
		PageNumber:   1,
		MinPrice:     0,
		MaxPrice:     math.MaxFloat64,
		OrderByTitle: true,
	}
}
