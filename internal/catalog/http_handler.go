package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"booksapi/internal/httpx"

	"go.uber.org/zap"
)

const paginationHeader = "X-Pagination"

type HTTPHandler struct {
	categories *CategoryService
	books      *BookService
	logger     *zap.Logger
}

func NewHTTPHandler(categories *CategoryService, books *BookService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{categories: categories, books: books, logger: logger.Named("catalog_http")}
}

// Routes registers the catalog under prefix. Category routes are wrapped with
// protect; book routes are public.
func (h *HTTPHandler) Routes(mux *http.ServeMux, prefix string, protect func(http.Handler) http.Handler) {
	category := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, protect(fn))
	}
	category("GET "+prefix+"/categories", h.GetCategories)
	category("GET "+prefix+"/categories/paged", h.GetCategoriesPaged)
	category("GET "+prefix+"/categories/with-books", h.GetCategoriesWithBooks)
	category("GET "+prefix+"/categories/{id}", h.GetCategory)
	category("POST "+prefix+"/categories", h.AddCategory)
	category("PUT "+prefix+"/categories/{id}", h.UpdateCategory)
	category("DELETE "+prefix+"/categories/{id}", h.DeleteCategory)

	mux.HandleFunc("GET "+prefix+"/books", h.GetBooks)
	mux.HandleFunc("GET "+prefix+"/books/filter", h.FilterBooks)
	mux.HandleFunc("GET "+prefix+"/books/{id}", h.GetBook)
	mux.HandleFunc("POST "+prefix+"/books", h.AddBook)
	mux.HandleFunc("PUT "+prefix+"/books/{id}", h.UpdateBook)
	mux.HandleFunc("DELETE "+prefix+"/books/{id}", h.DeleteBook)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", Message(err), nil)
	case errors.Is(err, ErrInvalidArgument):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", Message(err), nil)
	case errors.Is(err, ErrConflict):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", Message(err), nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", Message(err), nil)
	case errors.Is(err, ErrStoreUnavailable):
		h.logger.Error("store unavailable", zap.Error(err), zap.String("request_id", httpx.RequestIDFrom(r)))
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable", nil)
	default:
		h.logger.Error("unexpected catalog error", zap.Error(err), zap.String("request_id", httpx.RequestIDFrom(r)))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a finite number", key, raw)
	}
	return v, nil
}

// pageParams reads page and page_size. Sizes above MaxPageSize are clamped;
// non-positive values reach the service, which rejects them.
func pageParams(r *http.Request) (size, number int, err error) {
	if size, err = queryInt(r, "page_size", DefaultPageSize); err != nil {
		return 0, 0, err
	}
	if number, err = queryInt(r, "page", 1); err != nil {
		return 0, 0, err
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return size, number, nil
}

type paginationMeta struct {
	TotalCount  int
	PageSize    int
	CurrentPage int
	HasNext     bool
	HasPrevious bool
}

func setPagination[T any](w http.ResponseWriter, p Page[T]) {
	b, err := payloadJSON.Marshal(paginationMeta{
		TotalCount:  p.TotalCount,
		PageSize:    p.PageSize,
		CurrentPage: p.CurrentPage,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	})
	if err != nil {
		return
	}
	w.Header().Set(paginationHeader, string(b))
}

type categoryReq struct {
	Name string `json:"name"`
}

// GetCategories handles GET /categories
// @Summary List categories
// @Description Return every category. Served from the listing cache when possible.
// @Tags categories
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /categories [get]
func (h *HTTPHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	payload, err := h.categories.CategoriesCached(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, json.RawMessage(payload), nil)
}

// GetCategoriesPaged handles GET /categories/paged
// @Summary List categories page by page
// @Description The page window is returned in the X-Pagination header
// @Tags categories
// @Produce json
// @Security Bearer
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(10)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /categories/paged [get]
func (h *HTTPHandler) GetCategoriesPaged(w http.ResponseWriter, r *http.Request) {
	size, number, err := pageParams(r)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "page and page_size must be integers", nil)
		return
	}

	page, err := h.categories.ListCategories(r.Context(), size, number)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setPagination(w, page)
	httpx.JSONSuccess(w, r, page.Items, nil)
}

// GetCategoriesWithBooks handles GET /categories/with-books
// @Summary List categories with their books
// @Tags categories
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /categories/with-books [get]
func (h *HTTPHandler) GetCategoriesWithBooks(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetCategoriesWithBooks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, categories, nil)
}

// GetCategory handles GET /categories/{id}
// @Summary Get a category
// @Tags categories
// @Produce json
// @Security Bearer
// @Param id path int true "Category ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /categories/{id} [get]
func (h *HTTPHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	category, err := h.categories.GetCategoryByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, category, nil)
}

// AddCategory handles POST /categories
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body categoryReq true "Category"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /categories [post]
func (h *HTTPHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	category, err := h.categories.AddCategory(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, category)
}

// UpdateCategory handles PUT /categories/{id}
// @Summary Rename a category
// @Tags categories
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Category ID"
// @Param request body categoryReq true "Category"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /categories/{id} [put]
func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	category, err := h.categories.UpdateCategory(r.Context(), id, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, category, nil)
}

// DeleteCategory handles DELETE /categories/{id}
// @Summary Delete a category and its books
// @Tags categories
// @Security Bearer
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /categories/{id} [delete]
func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.categories.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// GetBooks handles GET /books
// @Summary List books
// @Description Every book with its category and tags
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /books [get]
func (h *HTTPHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.GetBooks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, nil)
}

// FilterBooks handles GET /books/filter
// @Summary Filter books
// @Tags books
// @Produce json
// @Param title query string false "Case-insensitive title fragment"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param order_by_title query bool false "Order by title ascending, otherwise by price descending" default(true)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(10)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books/filter [get]
func (h *HTTPHandler) FilterBooks(w http.ResponseWriter, r *http.Request) {
	f := DefaultBookFilter()
	f.Title = strings.TrimSpace(r.URL.Query().Get("title"))

	var err error
	if f.PageSize, f.PageNumber, err = pageParams(r); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "page and page_size must be integers", nil)
		return
	}
	if f.MinPrice, err = queryFloat(r, "min_price", f.MinPrice); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "min_price must be a number", nil)
		return
	}
	if f.MaxPrice, err = queryFloat(r, "max_price", f.MaxPrice); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "max_price must be a number", nil)
		return
	}
	if raw := r.URL.Query().Get("order_by_title"); raw != "" {
		if f.OrderByTitle, err = strconv.ParseBool(raw); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "order_by_title must be a boolean", nil)
			return
		}
	}

	page, err := h.books.FilterBooks(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setPagination(w, page)
	httpx.JSONSuccess(w, r, page.Items, map[string]any{
		"page":        page.CurrentPage,
		"page_size":   page.PageSize,
		"total":       page.TotalCount,
		"total_pages": page.TotalPages(),
	})
}

// GetBook handles GET /books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	book, err := h.books.GetBookByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

// AddBook handles POST /books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Param request body AddBookInput true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var in AddBookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	book, err := h.books.AddBook(r.Context(), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, book)
}

// UpdateBook handles PUT /books/{id}
// @Summary Replace a book
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param request body AddBookInput true "Book"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books/{id} [put]
func (h *HTTPHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in AddBookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	book, err := h.books.UpdateBook(r.Context(), id, &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

// DeleteBook handles DELETE /books/{id}
// @Summary Delete a book
// @Tags books
// @Param id path int true "Book ID"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.books.DeleteBook(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
