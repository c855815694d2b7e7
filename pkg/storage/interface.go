package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned by Read when the key does not exist.
var ErrNotFound = errors.New("object not found")

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Write stores content from the reader with the given key.
	// The size parameter is the expected content size (-1 if unknown).
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key.
	// The caller is responsible for closing the returned ReadCloser.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all content with keys starting with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Exists checks if content with the given key exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// Config selects and configures a storage backend.
type Config struct {
	Driver string      `mapstructure:"driver"` // "local", "s3"
	Local  LocalConfig `mapstructure:"local"`
	S3     S3Config    `mapstructure:"s3"`
}

// New creates the configured Storage.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocalStorage(cfg.Local)
	case DriverS3:
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
