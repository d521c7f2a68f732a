package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the interface for blob storage. Chat images and profile
// pictures are written once and served by URL.
type Storage interface {
	// Write stores content from the reader with the given key.
	// The size parameter is the expected content size (-1 if unknown).
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key.
	// The caller is responsible for closing the returned ReadCloser.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key.
	Delete(ctx context.Context, key string) error

	// Exists checks if content with the given key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns a URL for accessing the content.
	// For local storage this is a path under the public base URL.
	// For S3 it is a presigned URL valid for the specified duration.
	GetURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Config selects and configures a storage backend.
type Config struct {
	Driver string   `mapstructure:"driver"` // s3, local
	S3     S3Config `mapstructure:"s3"`
	Local  struct {
		BaseDir   string `mapstructure:"base_dir"`
		PublicURL string `mapstructure:"public_url"`
	} `mapstructure:"local"`
}
