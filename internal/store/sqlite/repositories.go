package sqlite

import (
	"context"
	"time"

	"booksapi/internal/entity"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

type categoryRepo struct {
	q       querier
	timeout time.Duration
}

func (r *categoryRepo) GetAll(ctx context.Context) ([]entity.Category, error) {
	query, args, err := dialect.From("categories").
		Select("id", "name").
		Order(goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	categories := []entity.Category{}
	if err := sqlx.SelectContext(timeoutCtx, r.q, &categories, query, args...); err != nil {
		return nil, classify(err)
	}
	return categories, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (entity.Category, error) {
	query, args, err := dialect.From("categories").
		Select("id", "name").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return entity.Category{}, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var c entity.Category
	if err := sqlx.GetContext(timeoutCtx, r.q, &c, query, args...); err != nil {
		return entity.Category{}, classify(err)
	}
	return c, nil
}

func (r *categoryRepo) Add(ctx context.Context, c *entity.Category) error {
	query, args, err := dialect.Insert("categories").
		Rows(goqu.Record{"name": c.Name}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.q.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err)
	}
	c.ID = id
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, c *entity.Category) error {
	query, args, err := dialect.Update("categories").
		Set(goqu.Record{"name": c.Name}).
		Where(goqu.C("id").Eq(c.ID)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.q.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	return affected(res, "category", c.ID)
}

// Delete relies on ON DELETE CASCADE, which needs PRAGMA foreign_keys=ON.
func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := dialect.Delete("categories").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.q.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	return affected(res, "category", id)
}

func (r *categoryRepo) GetAllWithBooks(ctx context.Context) ([]entity.Category, error) {
	categories, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	books, err := (&bookRepo{q: r.q, timeout: r.timeout}).GetAllWithCategory(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]entity.Book, len(categories))
	for _, b := range books {
		b.Category = nil
		byCategory[b.CategoryID] = append(byCategory[b.CategoryID], b)
	}
	for i := range categories {
		categories[i].Books = byCategory[categories[i].ID]
	}
	return categories, nil
}

type bookRow struct {
	entity.Book
	CategoryName string `db:"category_name"`
}

type bookTagRow struct {
	BookID int64 `db:"book_id"`
	entity.Tag
}

type bookRepo struct {
	q       querier
	timeout time.Duration
}

func (r *bookRepo) selectBooks() *goqu.SelectDataset {
	return dialect.From("books").
		Join(goqu.T("categories"), goqu.On(goqu.I("books.category_id").Eq(goqu.I("categories.id")))).
		Select(
			goqu.I("books.id").As("id"),
			goqu.I("books.title").As("title"),
			goqu.I("books.description").As("description"),
			goqu.I("books.author").As("author"),
			goqu.I("books.price").As("price"),
			goqu.I("books.category_id").As("category_id"),
			goqu.I("categories.name").As("category_name"),
		)
}

func (row bookRow) toEntity(tags []entity.Tag) entity.Book {
	b := row.Book
	b.Category = &entity.Category{Base: entity.Base{ID: b.CategoryID}, Name: row.CategoryName}
	b.Tags = tags
	return b
}

func (r *bookRepo) GetAll(ctx context.Context) ([]entity.Book, error) {
	query, args, err := dialect.From("books").
		Select("id", "title", "description", "author", "price", "category_id").
		Order(goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	books := []entity.Book{}
	if err := sqlx.SelectContext(timeoutCtx, r.q, &books, query, args...); err != nil {
		return nil, classify(err)
	}
	return books, nil
}

func (r *bookRepo) GetByID(ctx context.Context, id int64) (entity.Book, error) {
	query, args, err := r.selectBooks().
		Where(goqu.I("books.id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return entity.Book{}, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var row bookRow
	if err := sqlx.GetContext(timeoutCtx, r.q, &row, query, args...); err != nil {
		return entity.Book{}, classify(err)
	}

	tags, err := r.tagsByBook(ctx, &id)
	if err != nil {
		return entity.Book{}, err
	}
	return row.toEntity(tags[id]), nil
}

func bookRecord(b *entity.Book) goqu.Record {
	return goqu.Record{
		"title":       b.Title,
		"description": b.Description,
		"author":      b.Author,
		"price":       b.Price,
		"category_id": b.CategoryID,
	}
}

func (r *bookRepo) Add(ctx context.Context, b *entity.Book) error {
	query, args, err := dialect.Insert("books").
		Rows(bookRecord(b)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.q.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err)
	}
	b.ID = id
	return nil
}

func (r *bookRepo) Update(ctx context.Context, b *entity.Book) error {
	query, args, err := dialect.Update("books").
		Set(bookRecord(b)).
		Where(goqu.C("id").Eq(b.ID)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.q.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	return affected(res, "book", b.ID)
}

func (r *bookRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := dialect.Delete("books").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.q.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	return affected(res, "book", id)
}

func (r *bookRepo) GetAllWithCategory(ctx context.Context) ([]entity.Book, error) {
	query, args, err := r.selectBooks().
		Order(goqu.I("books.id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var rows []bookRow
	if err := sqlx.SelectContext(timeoutCtx, r.q, &rows, query, args...); err != nil {
		return nil, classify(err)
	}

	tags, err := r.tagsByBook(ctx, nil)
	if err != nil {
		return nil, err
	}
	books := make([]entity.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toEntity(tags[row.ID]))
	}
	return books, nil
}

func (r *bookRepo) tagsByBook(ctx context.Context, bookID *int64) (map[int64][]entity.Tag, error) {
	ds := dialect.From("book_tags").
		Join(goqu.T("tags"), goqu.On(goqu.I("book_tags.tag_id").Eq(goqu.I("tags.id")))).
		Select(
			goqu.I("book_tags.book_id").As("book_id"),
			goqu.I("tags.id").As("id"),
			goqu.I("tags.name").As("name"),
		).
		Order(goqu.I("book_tags.book_id").Asc(), goqu.I("tags.id").Asc())
	if bookID != nil {
		ds = ds.Where(goqu.I("book_tags.book_id").Eq(*bookID))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var rows []bookTagRow
	if err := sqlx.SelectContext(timeoutCtx, r.q, &rows, query, args...); err != nil {
		return nil, classify(err)
	}
	out := make(map[int64][]entity.Tag)
	for _, row := range rows {
		out[row.BookID] = append(out[row.BookID], row.Tag)
	}
	return out, nil
}

type tagRepo struct {
	q       querier
	timeout time.Duration
}

func (r *tagRepo) GetAll(ctx context.Context) ([]entity.Tag, error) {
	query, args, err := dialect.From("tags").
		Select("id", "name").
		Order(goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	tags := []entity.Tag{}
	if err := sqlx.SelectContext(timeoutCtx, r.q, &tags, query, args...); err != nil {
		return nil, classify(err)
	}
	return tags, nil
}

func (r *tagRepo) Add(ctx context.Context, t *entity.Tag) error {
	query, args, err := dialect.Insert("tags").
		Rows(goqu.Record{"name": t.Name}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.q.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err)
	}
	t.ID = id
	return nil
}

func (r *tagRepo) Attach(ctx context.Context, bookID, tagID int64) error {
	query, args, err := dialect.Insert("book_tags").
		Rows(goqu.Record{"book_id": bookID, "tag_id": tagID}).
		OnConflict(goqu.DoNothing()).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	_, err = r.q.ExecContext(timeoutCtx, query, args...)
	return classify(err)
}
