package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/cloudutil/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for MinIO / S3-compatible storage.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// MinioBackend implements Backend for MinIO and other S3-compatible services.
type MinioBackend struct {
	client *minio.Client
}

func NewMinioBackend(cfg MinioConfig) (*MinioBackend, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials must be provided")
	}

	// minio.New wants a bare host:port
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, useSSL = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, useSSL = strings.TrimPrefix(endpoint, "http://"), false
	}

	client, err := minio.New(strings.TrimSuffix(endpoint, "/"), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioBackend{client: client}, nil
}

func (b *MinioBackend) PutObject(ctx context.Context, bucket, key string, body []byte, metadata map[string]string) (PutInfo, error) {
	info, err := b.client.PutObject(
		ctx,
		bucket,
		key,
		bytes.NewReader(body),
		int64(len(body)),
		minio.PutObjectOptions{UserMetadata: metadata},
	)
	if err != nil {
		return PutInfo{}, fmt.Errorf("minio put %s/%s: %w", bucket, key, err)
	}

	return PutInfo{ETag: info.ETag, Size: info.Size}, nil
}

// ListObjects stops after maxKeys entries.
func (b *MinioBackend) ListObjects(ctx context.Context, bucket, prefix string, maxKeys int) ([]ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	objectCh := b.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   maxKeys,
	})
	// the listing goroutine only exits once the channel is drained
	defer func() {
		cancel()
		for range objectCh {
		}
	}()

	results := make([]ObjectInfo, 0)
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("minio list %s/%s: %w", bucket, prefix, object.Err)
		}
		results = append(results, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ETag:         object.ETag,
		})
		if len(results) >= maxKeys {
			break
		}
	}
	return results, nil
}

// EnsureBucket creates bucket if it doesn't exist
func (b *MinioBackend) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := b.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		logger.Log.Debug().Str("bucket", bucket).Msg("Bucket exists")
		return nil
	}

	if err := b.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("error creating bucket: %w", err)
	}
	logger.Log.Info().Str("bucket", bucket).Msg("Created bucket")
	return nil
}

var (
	_ Backend       = (*MinioBackend)(nil)
	_ BucketEnsurer = (*MinioBackend)(nil)
)
