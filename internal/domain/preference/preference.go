// Package preference defines the local key/value settings the order
// service keeps between runs.
package preference

import (
	"context"
	"errors"
)

// Key names a stored preference
type Key string

const (
	// KeyAPIKey holds the opaque key passed to the remote backend
	KeyAPIKey Key = "api_key"
	// KeyProductsCache holds the last product list as a JSON array
	KeyProductsCache Key = "products_cache"
)

// ErrNotFound is returned when a key has never been written
var ErrNotFound = errors.New("preference not found")

// Store persists preferences. Each key is overwritten independently.
type Store interface {
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string) error
	Ping(ctx context.Context) error
	Close() error
}
