package catalog

// Page is one window of an ordered result set.
type Page[T any] struct {
	Items       []T  `json:"items"`
	TotalCount  int  `json:"total_count"`
	PageSize    int  `json:"page_size"`
	CurrentPage int  `json:"current_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	n := p.TotalCount / p.PageSize
	if p.TotalCount%p.PageSize != 0 {
		n++
	}
	return n
}

// NewPage slices all to the 1-based page. A page past the end is empty.
func NewPage[T any](all []T, pageSize, pageNumber int) (Page[T], error) {
	if pageSize <= 0 {
		return Page[T]{}, newError(ErrInvalidArgument, "page size must be greater than 0")
	}
	if pageNumber <= 0 {
		return Page[T]{}, newError(ErrInvalidArgument, "page number must be greater than 0")
	}

	total := len(all)
	p := Page[T]{
		Items:       []T{},
		TotalCount:  total,
		PageSize:    pageSize,
		CurrentPage: pageNumber,
		HasPrevious: pageNumber > 1,
	}
	lastPage := p.TotalPages()
	// Compared by page count so huge page numbers cannot overflow.
	p.HasNext = pageNumber < lastPage
	if pageNumber > lastPage {
		return p, nil
	}

	start := (pageNumber - 1) * pageSize
	end := total
	if pageSize < total-start {
		end = start + pageSize
	}
	p.Items = append(p.Items, all[start:end]...)
	return p, nil
}
