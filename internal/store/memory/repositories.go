package memory

import (
	"context"
	"fmt"

	"booksapi/internal/entity"
	"booksapi/internal/store"
)

type categoryRepo struct {
	s   *Store
	uow *unitOfWork
}

func (r *categoryRepo) GetAll(ctx context.Context) ([]entity.Category, error) {
	var out []entity.Category
	err := r.s.read(func(st *state) error {
		out = make([]entity.Category, 0, len(st.categories))
		for _, id := range sortedIDs(st.categories) {
			out = append(out, st.categories[id])
		}
		return nil
	})
	return out, err
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (entity.Category, error) {
	var out entity.Category
	err := r.s.read(func(st *state) error {
		c, ok := st.categories[id]
		if !ok {
			return notFound("category", id)
		}
		out = c
		return nil
	})
	return out, err
}

func (r *categoryRepo) Add(ctx context.Context, c *entity.Category) error {
	id := r.s.nextID()
	rec := entity.Category{Base: entity.Base{ID: id}, Name: c.Name}
	err := write(r.s, r.uow, nil, func(st *state) error {
		st.categories[id] = rec
		return nil
	})
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, c *entity.Category) error {
	id := c.ID
	name := c.Name
	exists := func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return notFound("category", id)
		}
		return nil
	}
	return write(r.s, r.uow, exists, func(st *state) error {
		if err := exists(st); err != nil {
			return err
		}
		st.categories[id] = entity.Category{Base: entity.Base{ID: id}, Name: name}
		return nil
	})
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	exists := func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return notFound("category", id)
		}
		return nil
	}
	return write(r.s, r.uow, exists, func(st *state) error {
		if err := exists(st); err != nil {
			return err
		}
		delete(st.categories, id)
		for bookID, b := range st.books {
			if b.CategoryID == id {
				delete(st.books, bookID)
				delete(st.bookTags, bookID)
			}
		}
		return nil
	})
}

func (r *categoryRepo) GetAllWithBooks(ctx context.Context) ([]entity.Category, error) {
	var out []entity.Category
	err := r.s.read(func(st *state) error {
		byCategory := make(map[int64][]entity.Book)
		for _, id := range sortedIDs(st.books) {
			b := st.books[id]
			b.Tags = tagsOf(st, id)
			byCategory[b.CategoryID] = append(byCategory[b.CategoryID], b)
		}
		out = make([]entity.Category, 0, len(st.categories))
		for _, id := range sortedIDs(st.categories) {
			c := st.categories[id]
			c.Books = byCategory[id]
			out = append(out, c)
		}
		return nil
	})
	return out, err
}

type bookRepo struct {
	s   *Store
	uow *unitOfWork
}

func (r *bookRepo) GetAll(ctx context.Context) ([]entity.Book, error) {
	var out []entity.Book
	err := r.s.read(func(st *state) error {
		out = make([]entity.Book, 0, len(st.books))
		for _, id := range sortedIDs(st.books) {
			out = append(out, st.books[id])
		}
		return nil
	})
	return out, err
}

func (r *bookRepo) GetByID(ctx context.Context, id int64) (entity.Book, error) {
	var out entity.Book
	err := r.s.read(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return notFound("book", id)
		}
		if c, ok := st.categories[b.CategoryID]; ok {
			b.Category = &c
		}
		b.Tags = tagsOf(st, id)
		out = b
		return nil
	})
	return out, err
}

func scalarBook(b *entity.Book) entity.Book {
	return entity.Book{
		Base:        b.Base,
		Title:       b.Title,
		Description: b.Description,
		Author:      b.Author,
		Price:       b.Price,
		CategoryID:  b.CategoryID,
	}
}

func categoryExists(st *state, id int64) error {
	if _, ok := st.categories[id]; !ok {
		return fmt.Errorf("memory: book references category %d: %w", id, store.ErrConstraint)
	}
	return nil
}

func (r *bookRepo) Add(ctx context.Context, b *entity.Book) error {
	rec := scalarBook(b)
	rec.ID = r.s.nextID()
	err := write(r.s, r.uow, nil, func(st *state) error {
		if err := categoryExists(st, rec.CategoryID); err != nil {
			return err
		}
		st.books[rec.ID] = rec
		return nil
	})
	if err != nil {
		return err
	}
	b.ID = rec.ID
	return nil
}

func (r *bookRepo) Update(ctx context.Context, b *entity.Book) error {
	rec := scalarBook(b)
	exists := func(st *state) error {
		if _, ok := st.books[rec.ID]; !ok {
			return notFound("book", rec.ID)
		}
		return nil
	}
	return write(r.s, r.uow, exists, func(st *state) error {
		if err := exists(st); err != nil {
			return err
		}
		if err := categoryExists(st, rec.CategoryID); err != nil {
			return err
		}
		st.books[rec.ID] = rec
		return nil
	})
}

func (r *bookRepo) Delete(ctx context.Context, id int64) error {
	exists := func(st *state) error {
		if _, ok := st.books[id]; !ok {
			return notFound("book", id)
		}
		return nil
	}
	return write(r.s, r.uow, exists, func(st *state) error {
		if err := exists(st); err != nil {
			return err
		}
		delete(st.books, id)
		delete(st.bookTags, id)
		return nil
	})
}

func (r *bookRepo) GetAllWithCategory(ctx context.Context) ([]entity.Book, error) {
	var out []entity.Book
	err := r.s.read(func(st *state) error {
		out = make([]entity.Book, 0, len(st.books))
		for _, id := range sortedIDs(st.books) {
			b := st.books[id]
			if c, ok := st.categories[b.CategoryID]; ok {
				b.Category = &c
			}
			b.Tags = tagsOf(st, id)
			out = append(out, b)
		}
		return nil
	})
	return out, err
}

type tagRepo struct {
	s   *Store
	uow *unitOfWork
}

func (r *tagRepo) GetAll(ctx context.Context) ([]entity.Tag, error) {
	var out []entity.Tag
	err := r.s.read(func(st *state) error {
		out = make([]entity.Tag, 0, len(st.tags))
		for _, id := range sortedIDs(st.tags) {
			out = append(out, st.tags[id])
		}
		return nil
	})
	return out, err
}

func (r *tagRepo) Add(ctx context.Context, t *entity.Tag) error {
	rec := entity.Tag{Base: entity.Base{ID: r.s.nextID()}, Name: t.Name}
	err := write(r.s, r.uow, nil, func(st *state) error {
		for _, existing := range st.tags {
			if existing.Name == rec.Name {
				return fmt.Errorf("memory: tag %q: %w", rec.Name, store.ErrConstraint)
			}
		}
		st.tags[rec.ID] = rec
		return nil
	})
	if err != nil {
		return err
	}
	t.ID = rec.ID
	return nil
}

func (r *tagRepo) Attach(ctx context.Context, bookID, tagID int64) error {
	return write(r.s, r.uow, nil, func(st *state) error {
		if _, ok := st.books[bookID]; !ok {
			return fmt.Errorf("memory: attach to book %d: %w", bookID, store.ErrConstraint)
		}
		if _, ok := st.tags[tagID]; !ok {
			return fmt.Errorf("memory: attach tag %d: %w", tagID, store.ErrConstraint)
		}
		set, ok := st.bookTags[bookID]
		if !ok {
			set = make(map[int64]struct{})
			st.bookTags[bookID] = set
		}
		set[tagID] = struct{}{}
		return nil
	})
}
