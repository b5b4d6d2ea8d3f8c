package postgres

import (
	"context"
	"time"

	"booksapi/internal/entity"

	"github.com/doug-martin/goqu/v9"
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
	rows, err := r.q.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	categories := []entity.Category{}
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, classify(err)
		}
		categories = append(categories, c)
	}
	return categories, classify(rows.Err())
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
	if err := r.q.QueryRow(timeoutCtx, query, args...).Scan(&c.ID, &c.Name); err != nil {
		return entity.Category{}, classify(err)
	}
	return c, nil
}

func (r *categoryRepo) Add(ctx context.Context, c *entity.Category) error {
	query, args, err := dialect.Insert("categories").
		Rows(goqu.Record{"name": c.Name}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return classify(r.q.QueryRow(timeoutCtx, query, args...).Scan(&c.ID))
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
	tag, err := r.q.Exec(timeoutCtx, query, args...)
	if err != nil {
		return classify(err)
	}
	return affected(tag, "category", c.ID)
}

// Delete relies on ON DELETE CASCADE from books.category_id.
func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := dialect.Delete("categories").
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
	return affected(tag, "category", id)
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
