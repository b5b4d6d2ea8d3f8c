package postgres

import (
	"context"
	"time"

	"booksapi/internal/entity"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
)

var bookColumns = []any{
	goqu.I("books.id"),
	goqu.I("books.title"),
	goqu.I("books.description"),
	goqu.I("books.author"),
	goqu.I("books.price"),
	goqu.I("books.category_id"),
}

type bookRepo struct {
	q       querier
	timeout time.Duration
}

func scanBook(row pgx.Row, b *entity.Book, extra ...any) error {
	dest := append([]any{&b.ID, &b.Title, &b.Description, &b.Author, &b.Price, &b.CategoryID}, extra...)
	return row.Scan(dest...)
}

func (r *bookRepo) GetAll(ctx context.Context) ([]entity.Book, error) {
	query, args, err := dialect.From("books").
		Select(bookColumns...).
		Order(goqu.I("books.id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.q.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	books := []entity.Book{}
	for rows.Next() {
		var b entity.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, classify(err)
		}
		books = append(books, b)
	}
	return books, classify(rows.Err())
}

func (r *bookRepo) GetByID(ctx context.Context, id int64) (entity.Book, error) {
	query, args, err := dialect.From("books").
		Join(goqu.T("categories"), goqu.On(goqu.I("books.category_id").Eq(goqu.I("categories.id")))).
		Select(append(bookColumns, goqu.I("categories.name"))...).
		Where(goqu.I("books.id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return entity.Book{}, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var b entity.Book
	var categoryName string
	if err := scanBook(r.q.QueryRow(timeoutCtx, query, args...), &b, &categoryName); err != nil {
		return entity.Book{}, classify(err)
	}
	b.Category = &entity.Category{Base: entity.Base{ID: b.CategoryID}, Name: categoryName}

	tags, err := r.tagsByBook(ctx, goqu.I("book_tags.book_id").Eq(id))
	if err != nil {
		return entity.Book{}, err
	}
	b.Tags = tags[id]
	return b, nil
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
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return classify(r.q.QueryRow(timeoutCtx, query, args...).Scan(&b.ID))
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
	tag, err := r.q.Exec(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	return affected(tag, "book", b.ID)
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
	tag, err := r.q.Exec(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	return affected(tag, "book", id)
}

func (r *bookRepo) GetAllWithCategory(ctx context.Context) ([]entity.Book, error) {
	query, args, err := dialect.From("books").
		Join(goqu.T("categories"), goqu.On(goqu.I("books.category_id").Eq(goqu.I("categories.id")))).
		Select(append(bookColumns, goqu.I("categories.name"))...).
		Order(goqu.I("books.id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.q.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	books := []entity.Book{}
	for rows.Next() {
		var b entity.Book
		var categoryName string
		if err := scanBook(rows, &b, &categoryName); err != nil {
			return nil, classify(err)
		}
		b.Category = &entity.Category{Base: entity.Base{ID: b.CategoryID}, Name: categoryName}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	tags, err := r.tagsByBook(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range books {
		books[i].Tags = tags[books[i].ID]
	}
	return books, nil
}

// tagsByBook loads tag associations, optionally narrowed by filter.
func (r *bookRepo) tagsByBook(ctx context.Context, filter exp.Expression) (map[int64][]entity.Tag, error) {
	ds := dialect.From("book_tags").
		Join(goqu.T("tags"), goqu.On(goqu.I("book_tags.tag_id").Eq(goqu.I("tags.id")))).
		Select(goqu.I("book_tags.book_id"), goqu.I("tags.id"), goqu.I("tags.name")).
		Order(goqu.I("book_tags.book_id").Asc(), goqu.I("tags.id").Asc())
	if filter != nil {
		ds = ds.Where(filter)
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.q.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make(map[int64][]entity.Tag)
	for rows.Next() {
		var bookID int64
		var t entity.Tag
		if err := rows.Scan(&bookID, &t.ID, &t.Name); err != nil {
			return nil, classify(err)
		}
		out[bookID] = append(out[bookID], t)
	}
	return out, classify(rows.Err())
}
