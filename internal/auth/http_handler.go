package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"booksapi/internal/httpx"
	"booksapi/internal/platform/crypto"
	"booksapi/internal/user"

	"go.uber.org/zap"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type RegisterReq struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,password_strength"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password_strength,nefield=CurrentPassword"`
}

func isPasswordPolicyError(err error) bool {
	return errors.Is(err, crypto.ErrPasswordTooShort) ||
		errors.Is(err, crypto.ErrPasswordNoUpper) ||
		errors.Is(err, crypto.ErrPasswordNoLower) ||
		errors.Is(err, crypto.ErrPasswordNoNumber) ||
		errors.Is(err, crypto.ErrPasswordNoSpecialChar)
}

func (h *HTTPHandler) decodeRegister(w http.ResponseWriter, r *http.Request) (RegisterReq, bool) {
	var req RegisterReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return req, false
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return req, false
	}
	return req, true
}

func (h *HTTPHandler) writeAccount(w http.ResponseWriter, r *http.Request, u user.User, err error) {
	if err != nil {
		switch {
		case errors.Is(err, user.ErrAlreadyExists):
			httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", "Email already exists", nil)
		case isPasswordPolicyError(err):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			h.logger.Error("account creation failed", zap.Error(err))
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONCreated(w, r, map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"full_name": u.FullName,
		"role":      u.Role,
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Create a new account with the User role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterReq true "Registration request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /auth/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRegister(w, r)
	if !ok {
		return
	}
	u, err := h.service.Register(r.Context(), req.Email, req.FullName, req.Password)
	h.writeAccount(w, r, u, err)
}

// CreateAdmin handles POST /auth/admins
// @Summary Create an administrator
// @Description Create a new account with the Admin role. Admin only.
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body RegisterReq true "Registration request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /auth/admins [post]
func (h *HTTPHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRegister(w, r)
	if !ok {
		return
	}
	u, err := h.service.CreateAdmin(r.Context(), req.Email, req.FullName, req.Password)
	h.writeAccount(w, r, u, err)
}

// Login handles POST /auth/login
// @Summary User login
// @Description Authenticate and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginReq true "Login request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /auth/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	token, u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{
		"access_token": token.Value,
		"token_type":   "Bearer",
		"expires_in":   int(time.Until(token.ExpiresAt).Seconds()),
		"role":         u.Role,
	}, nil)
}

// ChangePassword handles PUT /auth/password
// @Summary Change password
// @Description Replace the caller's password after verifying the current one
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ChangePasswordReq true "Change password request"
// @Success 204
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /auth/password [put]
func (h *HTTPHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var req ChangePasswordReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		httpx.JSONNoContent(w)
	case errors.Is(err, ErrUnauthorized):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	case errors.Is(err, ErrSamePassword), errors.Is(err, ErrInvalidPassword), isPasswordPolicyError(err):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		h.logger.Error("change password failed", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// DeleteAccount handles DELETE /auth/account
// @Summary Delete account
// @Description Delete the caller's account
// @Tags auth
// @Security Bearer
// @Success 204
// @Failure 401 {object} httpx.ErrorResponse
// @Router /auth/account [delete]
func (h *HTTPHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		h.logger.Error("delete account failed", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONNoContent(w)
}
