// Package auth implements account registration, login and credential changes
// on top of the user repository.
package auth

import (
	"context"
	"errors"
	"time"

	"booksapi/internal/entity"
	"booksapi/internal/platform/crypto"
	"booksapi/internal/user"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSamePassword    = errors.New("new password can't be the same as the current password")
	ErrInvalidPassword = errors.New("current password is incorrect")
)

const DefaultTokenTTL = 24 * time.Hour

type Service struct {
	secret      string
	tokenTTL    time.Duration
	userService *user.Service
	logger      *zap.Logger
}

func NewService(secret string, tokenTTL time.Duration, userService *user.Service, logger *zap.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		secret:      secret,
		tokenTTL:    tokenTTL,
		userService: userService,
		logger:      logger.Named("auth"),
	}
}

func (s *Service) register(ctx context.Context, email, fullName, password, role string) (user.User, error) {
	if err := crypto.ValidatePasswordStrength(password); err != nil {
		return user.User{}, err
	}
	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return user.User{}, err
	}
	u, err := s.userService.Register(ctx, email, fullName, hashed, role)
	if err != nil {
		return user.User{}, err
	}
	s.logger.Info("account created", zap.String("user_id", u.ID), zap.String("role", role))
	return u, nil
}

// Register creates an account with the User role.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (user.User, error) {
	return s.register(ctx, email, fullName, password, entity.RoleUser)
}

// CreateAdmin creates an account with the Admin role. Callers must already be
// authorized as Admin.
func (s *Service) CreateAdmin(ctx context.Context, email, fullName, password string) (user.User, error) {
	return s.register(ctx, email, fullName, password, entity.RoleAdmin)
}

func (s *Service) Login(ctx context.Context, email, password string) (crypto.Token, user.User, error) {
	u, err := s.userService.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return crypto.Token{}, user.User{}, ErrUnauthorized
		}
		return crypto.Token{}, user.User{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return crypto.Token{}, user.User{}, ErrUnauthorized
	}

	token, err := crypto.GenerateToken(s.secret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return crypto.Token{}, user.User{}, err
	}
	return token, u, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if currentPassword == newPassword {
		return ErrSamePassword
	}
	if !crypto.VerifyPassword(u.PasswordHash, currentPassword) {
		return ErrInvalidPassword
	}
	if err := crypto.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userService.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.userService.Delete(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}
