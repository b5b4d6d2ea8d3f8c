package catalog

import (
	"context"
	"strings"

	"booksapi/internal/cache"
	"booksapi/internal/entity"
	"booksapi/internal/metrics"
	"booksapi/internal/store"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var payloadJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type CategoryService struct {
	store  store.Store
	cache  cache.Cache
	logger *zap.Logger
}

func NewCategoryService(st store.Store, c cache.Cache, logger *zap.Logger) *CategoryService {
	return &CategoryService{store: st, cache: c, logger: logger.Named("categories")}
}

func (s *CategoryService) AddCategory(ctx context.Context, name string) (CategoryView, error) {
	if strings.TrimSpace(name) == "" {
		return CategoryView{}, newError(ErrValidation, "category name is required")
	}

	created := entity.Category{Name: name}
	err := store.InTx(ctx, s.store, func(uow store.UnitOfWork) error {
		all, err := uow.Categories().GetAll(ctx)
		if err != nil {
			return err
		}
		for _, c := range all {
			if c.Name == name {
				return newError(ErrConflict, "category %q already exists", name)
			}
		}
		return uow.Categories().Add(ctx, &created)
	})
	if err != nil {
		return CategoryView{}, fromStore(err, "category")
	}

	metrics.CatalogWrites.WithLabelValues("category", "add").Inc()
	s.logger.Info("category added", zap.Int64("id", created.ID), zap.String("name", name))
	s.invalidate(ctx)
	return CategoryToView(created), nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, name string) (CategoryView, error) {
	if strings.TrimSpace(name) == "" {
		return CategoryView{}, newError(ErrValidation, "category name is required")
	}

	updated := entity.Category{Base: entity.Base{ID: id}, Name: name}
	err := store.InTx(ctx, s.store, func(uow store.UnitOfWork) error {
		if _, err := uow.Categories().GetByID(ctx, id); err != nil {
			return err
		}
		all, err := uow.Categories().GetAll(ctx)
		if err != nil {
			return err
		}
		for _, c := range all {
			if c.Name == name && c.ID != id {
				return newError(ErrConflict, "category %q already exists", name)
			}
		}
		return uow.Categories().Update(ctx, &updated)
	})
	if err != nil {
		return CategoryView{}, fromStore(err, "category")
	}

	metrics.CatalogWrites.WithLabelValues("category", "update").Inc()
	s.logger.Info("category updated", zap.Int64("id", id), zap.String("name", name))
	s.invalidate(ctx)
	return CategoryToView(updated), nil
}

// DeleteCategory removes the category and its books. An unknown id leaves the
// cache untouched.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	err := store.InTx(ctx, s.store, func(uow store.UnitOfWork) error {
		if _, err := uow.Categories().GetByID(ctx, id); err != nil {
			return err
		}
		return uow.Categories().Delete(ctx, id)
	})
	if err != nil {
		return fromStore(err, "category")
	}

	metrics.CatalogWrites.WithLabelValues("category", "delete").Inc()
	s.logger.Info("category deleted", zap.Int64("id", id))
	s.invalidate(ctx)
	return nil
}

// invalidate runs after commit. A failure is logged and counted, never
// returned: the write already happened.
func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Remove(ctx, cache.CategoriesKey); err != nil {
		metrics.CacheInvalidations.WithLabelValues("error").Inc()
		s.logger.Warn("category listing invalidation failed",
			zap.Error(&Error{Kind: ErrCacheUnavailable, Message: "remove " + cache.CategoriesKey, Err: err}))
		return
	}
	metrics.CacheInvalidations.WithLabelValues("ok").Inc()
}

// CategoriesCached returns the serialized listing of every category. A cache
// failure falls back to the store.
func (s *CategoryService) CategoriesCached(ctx context.Context) (string, error) {
	payload, ok, err := s.cache.GetString(ctx, cache.CategoriesKey)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("category listing cache read failed, reading store",
			zap.Error(&Error{Kind: ErrCacheUnavailable, Message: "get " + cache.CategoriesKey, Err: err}))
		return s.serializeCategories(ctx)
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return payload, nil
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	payload, err = s.serializeCategories(ctx)
	if err != nil {
		return "", err
	}
	if err := s.cache.SetString(ctx, cache.CategoriesKey, payload); err != nil {
		s.logger.Warn("category listing cache write failed",
			zap.Error(&Error{Kind: ErrCacheUnavailable, Message: "set " + cache.CategoriesKey, Err: err}))
	}
	return payload, nil
}

func (s *CategoryService) serializeCategories(ctx context.Context) (string, error) {
	categories, err := s.store.Categories().GetAll(ctx)
	if err != nil {
		return "", fromStore(err, "categories")
	}
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryToView(c))
	}
	b, err := payloadJSON.Marshal(views)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *CategoryService) ListCategories(ctx context.Context, pageSize, pageNumber int) (Page[CategoryView], error) {
	if pageSize <= 0 || pageNumber <= 0 {
		return NewPage[CategoryView](nil, pageSize, pageNumber)
	}
	categories, err := s.store.Categories().GetAll(ctx)
	if err != nil {
		return Page[CategoryView]{}, fromStore(err, "categories")
	}
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryToView(c))
	}
	return NewPage(views, pageSize, pageNumber)
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, id int64) (CategoryView, error) {
	c, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		return CategoryView{}, fromStore(err, "category")
	}
	return CategoryToView(c), nil
}

func (s *CategoryService) GetCategoriesWithBooks(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.store.Categories().GetAllWithBooks(ctx)
	if err != nil {
		return nil, fromStore(err, "categories")
	}
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryToView(c))
	}
	return views, nil
}
