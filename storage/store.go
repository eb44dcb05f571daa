// Package storage keeps task image bytes outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/taskdesk/config"
)

// ErrNotFound is returned when a key does not exist in the store
var ErrNotFound = errors.New("storage: object not found")

// Store is a flat key/value blob store
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.MediaDriver
func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.MediaDriver {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.MediaDriver)
	}
}
