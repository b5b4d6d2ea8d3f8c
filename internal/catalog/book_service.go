package catalog

import (
	"context"
	"errors"
	"math"
	"strings"

	"booksapi/internal/entity"
	"booksapi/internal/metrics"
	"booksapi/internal/store"

	"go.uber.org/zap"
)

type BookService struct {
	store  store.Store
	logger *zap.Logger
}

func NewBookService(st store.Store, logger *zap.Logger) *BookService {
	return &BookService{store: st, logger: logger.Named("books")}
}

// FilterBooks filters, orders and pages the whole book set in memory.
func (s *BookService) FilterBooks(ctx context.Context, f BookFilter) (Page[BookView], error) {
	if err := validateFilter(f); err != nil {
		return Page[BookView]{}, err
	}
	books, err := s.store.Books().GetAllWithCategory(ctx)
	if err != nil {
		return Page[BookView]{}, fromStore(err, "books")
	}
	return NewPage(filterBooks(books, f), f.PageSize, f.PageNumber)
}

func validateBookInput(in *AddBookInput) error {
	if in == nil {
		return newError(ErrValidation, "book is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return newError(ErrValidation, "title is required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return newError(ErrValidation, "author is required")
	}
	if !(in.Price > 0) || math.IsInf(in.Price, 1) {
		return newError(ErrValidation, "price must be greater than 0")
	}
	return nil
}

// checkBookRefs rejects a title already used by another book and a missing
// category. selfID is 0 for new books.
func checkBookRefs(ctx context.Context, uow store.UnitOfWork, in *AddBookInput, selfID int64) (entity.Category, error) {
	books, err := uow.Books().GetAll(ctx)
	if err != nil {
		return entity.Category{}, err
	}
	for _, b := range books {
		if b.Title == in.Title && b.ID != selfID {
			return entity.Category{}, newError(ErrConflict, "book %q already exists", in.Title)
		}
	}

	category, err := uow.Categories().GetByID(ctx, in.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		return entity.Category{}, newError(ErrValidation, "Category doesn't exist")
	}
	return category, err
}

func (s *BookService) AddBook(ctx context.Context, in *AddBookInput) (BookView, error) {
	if err := validateBookInput(in); err != nil {
		return BookView{}, err
	}

	record := AddBookInputToRecord(*in)
	err := store.InTx(ctx, s.store, func(uow store.UnitOfWork) error {
		category, err := checkBookRefs(ctx, uow, in, 0)
		if err != nil {
			return err
		}
		if err := uow.Books().Add(ctx, &record); err != nil {
			return err
		}
		record.Category = &category
		return nil
	})
	if err != nil {
		return BookView{}, fromStore(err, "book")
	}

	metrics.CatalogWrites.WithLabelValues("book", "add").Inc()
	s.logger.Info("book added", zap.Int64("id", record.ID), zap.String("title", record.Title))
	return BookToView(record), nil
}

func (s *BookService) UpdateBook(ctx context.Context, id int64, in *AddBookInput) (BookView, error) {
	if err := validateBookInput(in); err != nil {
		return BookView{}, err
	}

	record := AddBookInputToRecord(*in)
	record.ID = id
	err := store.InTx(ctx, s.store, func(uow store.UnitOfWork) error {
		existing, err := uow.Books().GetByID(ctx, id)
		if err != nil {
			return err
		}
		category, err := checkBookRefs(ctx, uow, in, id)
		if err != nil {
			return err
		}
		if err := uow.Books().Update(ctx, &record); err != nil {
			return err
		}
		record.Category = &category
		record.Tags = existing.Tags
		return nil
	})
	if err != nil {
		return BookView{}, fromStore(err, "book")
	}

	metrics.CatalogWrites.WithLabelValues("book", "update").Inc()
	s.logger.Info("book updated", zap.Int64("id", id))
	return BookToView(record), nil
}

func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	err := store.InTx(ctx, s.store, func(uow store.UnitOfWork) error {
		if _, err := uow.Books().GetByID(ctx, id); err != nil {
			return err
		}
		return uow.Books().Delete(ctx, id)
	})
	if err != nil {
		return fromStore(err, "book")
	}

	metrics.CatalogWrites.WithLabelValues("book", "delete").Inc()
	s.logger.Info("book deleted", zap.Int64("id", id))
	return nil
}

func (s *BookService) GetBooks(ctx context.Context) ([]BookView, error) {
	books, err := s.store.Books().GetAllWithCategory(ctx)
	if err != nil {
		return nil, fromStore(err, "books")
	}
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, BookToView(b))
	}
	return views, nil
}

func (s *BookService) GetBookByID(ctx context.Context, id int64) (BookView, error) {
	b, err := s.store.Books().GetByID(ctx, id)
	if err != nil {
		return BookView{}, fromStore(err, "book")
	}
	return BookToView(b), nil
}
