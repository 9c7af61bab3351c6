// Package storage uploads recipe images to S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pageza/recipebox/backend/config"
)

// ErrNotConfigured is returned when no storage driver is set
var ErrNotConfigured = errors.New("object storage is not configured")

// ObjectStore provides access to object storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver. It returns nil and no error
// for the "none" driver.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "minio":
		return NewMinioStore(ctx, cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.UseSSL)
	case "s3":
		awsCfg, err := cfg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return NewS3Store(awsCfg, cfg.Bucket, cfg.Endpoint), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
