package catalog

import (
	"errors"
	"fmt"

	"booksapi/internal/store"
)

// Error kinds. Match with errors.Is; read the message with errors.As(*Error).
var (
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCacheUnavailable = errors.New("cache unavailable")
)

type Error struct {
	Kind    error
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// fromStore translates store sentinels into catalog kinds and passes catalog
// errors through untouched.
func fromStore(err error, what string) error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return err
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: ErrNotFound, Message: what + " not found", Err: err}
	case errors.Is(err, store.ErrUnavailable):
		return &Error{Kind: ErrStoreUnavailable, Message: "store unavailable", Err: err}
	case errors.Is(err, store.ErrConstraint):
		return &Error{Kind: ErrConflict, Message: what + " violates a constraint", Err: err}
	}
	return fmt.Errorf("%s: %w", what, err)
}
