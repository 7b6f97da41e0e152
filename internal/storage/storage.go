package storage

import (
	"context"
	"errors"
	"time"
)

// MaxListKeys caps List to a single page; larger prefixes are truncated.
const MaxListKeys = 100

// ObjectNameMetadataKey carries the display name on uploaded objects.
const ObjectNameMetadataKey = "object-name"

var (
	ErrWrite = errors.New("object store write failed")
	ErrList  = errors.New("object store list failed")
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
}

// PutInfo is what a backend reports after a successful upload.
type PutInfo struct {
	ETag string
	Size int64
}

// Backend captures the minimal S3-compatible operations the writer and lister need.
type Backend interface {
	PutObject(ctx context.Context, bucket, key string, body []byte, metadata map[string]string) (PutInfo, error)
	ListObjects(ctx context.Context, bucket, prefix string, maxKeys int) ([]ObjectInfo, error)
}

// BucketEnsurer is implemented by backends that can create missing buckets.
type BucketEnsurer interface {
	EnsureBucket(ctx context.Context, bucket string) error
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
