package s3

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store holds uploaded objects by key.
type Store interface {
	// Upload stores data at key, replacing any existing object.
	Upload(ctx context.Context, key string, data []byte) error

	// Download returns the object at key, or ErrNotFound.
	Download(ctx context.Context, key string) ([]byte, error)
}
