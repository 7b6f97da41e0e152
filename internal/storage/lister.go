package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/cloudutil/pkg/logger"
)

// Lister reads object descriptors from an object store.
type Lister struct {
	backend Backend
	timeout time.Duration
}

func NewLister(backend Backend, timeout time.Duration) *Lister {
	return &Lister{backend: backend, timeout: timeout}
}

// List returns at most MaxListKeys descriptors under prefix. Only the first page
// is read, so larger prefixes are truncated.
func (l *Lister) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrList)
	}

	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	log := logger.Log.With().Str("bucket", bucket).Str("prefix", prefix).Logger()

	objects, err := l.backend.ListObjects(ctx, bucket, prefix, MaxListKeys)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read file from s3")
		return nil, fmt.Errorf("%w: %w", ErrList, err)
	}

	if objects == nil {
		objects = make([]ObjectInfo, 0)
	}
	if len(objects) > MaxListKeys {
		objects = objects[:MaxListKeys]
	}

	log.Info().Int("count", len(objects)).Msg("successfully read from s3")
	return objects, nil
}
