package catalog

import (
	"math"
	"sort"
	"strings"

	"booksapi/internal/entity"
)

func validateFilter(f BookFilter) error {
	if f.PageSize <= 0 {
		return newError(ErrInvalidArgument, "page size must be greater than 0")
	}
	if f.PageNumber <= 0 {
		return newError(ErrInvalidArgument, "page number must be greater than 0")
	}
	// Written as negations so NaN fails them.
	if !(f.MinPrice >= 0) {
		return newError(ErrInvalidArgument, "minimum price must not be negative")
	}
	if math.IsNaN(f.MaxPrice) {
		return newError(ErrInvalidArgument, "maximum price must be a number")
	}
	return nil
}

// filterBooks keeps store order until the final stable sort, so ties stay in
// the order the store returned them.
func filterBooks(books []entity.Book, f BookFilter) []BookView {
	title := strings.ToLower(f.Title)
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		if title != "" && !strings.Contains(strings.ToLower(b.Title), title) {
			continue
		}
		if b.Price < f.MinPrice || b.Price > f.MaxPrice {
			continue
		}
		views = append(views, BookToView(b))
	}

	if f.OrderByTitle {
		sort.SliceStable(views, func(i, j int) bool { return views[i].Title < views[j].Title })
	} else {
		sort.SliceStable(views, func(i, j int) bool { return views[i].Price > views[j].Price })
	}
	return views
}
