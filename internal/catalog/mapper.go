package catalog

import "booksapi/internal/entity"

func CategoryToView(c entity.Category) CategoryView {
	v := CategoryView{ID: c.ID, Name: c.Name}
	if len(c.Books) > 0 {
		v.Books = make([]BookView, 0, len(c.Books))
		for _, b := range c.Books {
			if b.Category == nil {
				b.Category = &entity.Category{Base: c.Base, Name: c.Name}
			}
			v.Books = append(v.Books, BookToView(b))
		}
	}
	return v
}

func CategoryFromView(v CategoryView) entity.Category {
	c := entity.Category{Base: entity.Base{ID: v.ID}, Name: v.Name}
	if len(v.Books) > 0 {
		c.Books = make([]entity.Book, 0, len(v.Books))
		for _, b := range v.Books {
			c.Books = append(c.Books, BookFromView(b))
		}
	}
	return c
}

func BookToView(b entity.Book) BookView {
	v := BookView{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Author:      b.Author,
		Price:       b.Price,
		CategoryID:  b.CategoryID,
	}
	if b.Category != nil {
		v.CategoryName = b.Category.Name
	}
	if len(b.Tags) > 0 {
		v.Tags = make([]string, 0, len(b.Tags))
		for _, t := range b.Tags {
			v.Tags = append(v.Tags, t.Name)
		}
	}
	return v
}

func BookFromView(v BookView) entity.Book {
	b := entity.Book{
		Base:        entity.Base{ID: v.ID},
		Title:       v.Title,
		Description: v.Description,
		Author:      v.Author,
		Price:       v.Price,
		CategoryID:  v.CategoryID,
	}
	if v.CategoryName != "" {
		b.Category = &entity.Category{Base: entity.Base{ID: v.CategoryID}, Name: v.CategoryName}
	}
	if len(v.Tags) > 0 {
		b.Tags = make([]entity.Tag, 0, len(v.Tags))
		for _, name := range v.Tags {
			b.Tags = append(b.Tags, entity.Tag{Name: name})
		}
	}
	return b
}

// AddBookInputToRecord leaves the id for the store to assign.
func AddBookInputToRecord(in AddBookInput) entity.Book {
	return entity.Book{
		Title:       in.Title,
		Description: in.Description,
		Author:      in.Author,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
	}
}
