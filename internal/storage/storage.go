package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"csdept/internal/config"
)

var ErrInvalidPath = errors.New("storage: path escapes storage root")

// Storage keeps attachment bytes. Paths are slash-separated and relative to
// the backend root; they are what gets persisted in attachments.file_url.
type Storage interface {
	Save(ctx context.Context, path string, r io.Reader, contentType string) error
	// Delete removes path. A path that is already gone is not an error.
	Delete(ctx context.Context, path string) error
	// URL returns a client-facing URL for path.
	URL(path string) string
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, log logrus.FieldLogger) (Storage, error) {
	switch cfg.Driver {
	case "local":
		log.WithField("root", cfg.LocalRoot).Info("using local disk storage")
		return NewLocal(cfg.LocalRoot, cfg.PublicURL)
	case "s3":
		log.WithFields(logrus.Fields{
			"bucket":   cfg.S3.Bucket,
			"region":   cfg.S3.Region,
			"endpoint": cfg.S3.Endpoint,
		}).Info("initializing S3 storage")
		return NewS3(ctx, cfg.S3, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
