// Package cache defines the key-value port used for the category listing.
package cache

//go:generate mockgen -source=cache.go -destination=mock_cache.go -package=cache

import (
	"context"
	"errors"
)

// CategoriesKey holds the serialized, unpaginated category listing.
const CategoriesKey = "categories"

var ErrUnavailable = errors.New("cache: backend unavailable")

// Cache never owns data: a missing key always means recompute from the store.
type Cache interface {
	// GetString reports ok=false on a miss; a miss is not an error.
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error
	// Remove succeeds when the key is already absent.
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
