package postgres

import (
	"context"
	"time"

	"booksapi/internal/entity"

	"github.com/doug-martin/goqu/v9"
)

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
	rows, err := r.q.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	tags := []entity.Tag{}
	for rows.Next() {
		var t entity.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, classify(err)
		}
		tags = append(tags, t)
	}
	return tags, classify(rows.Err())
}

func (r *tagRepo) Add(ctx context.Context, t *entity.Tag) error {
	query, args, err := dialect.Insert("tags").
		Rows(goqu.Record{"name": t.Name}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return classify(r.q.QueryRow(timeoutCtx, query, args...).Scan(&t.ID))
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
	_, err = r.q.Exec(timeoutCtx, query, args...)
	return classify(err)
}
