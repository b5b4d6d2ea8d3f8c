// Package user persists accounts. Credential handling lives in auth.
package user

import (
	"errors"

	"booksapi/internal/entity"
)

type User = entity.User

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)
