package user

import (
	"errors"
	"net/http"

	"booksapi/internal/httpx"

	"go.uber.org/zap"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// Me handles GET /me
// @Summary Current account
// @Description Returns the account behind the bearer token
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me [get]
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := httpx.UserIDFrom(r)
	if id == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		// token outlived its account
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	case err != nil:
		h.logger.Error("load current user", zap.String("user_id", id), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, u, nil)
}
