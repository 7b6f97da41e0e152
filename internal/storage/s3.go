package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of *s3.Client used by S3Backend.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Backend implements Backend on top of the AWS SDK.
type S3Backend struct {
	client S3API
}

func NewS3Backend(client S3API) *S3Backend {
	return &S3Backend{client: client}
}

func (b *S3Backend) PutObject(ctx context.Context, bucket, key string, body []byte, metadata map[string]string) (PutInfo, error) {
	out, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata:      metadata,
	})
	if err != nil {
		return PutInfo{}, fmt.Errorf("s3 put %s/%s: %w", bucket, key, err)
	}

	return PutInfo{
		ETag: aws.ToString(out.ETag),
		Size: int64(len(body)),
	}, nil
}

// ListObjects returns the first page only; continuation tokens are ignored.
func (b *S3Backend) ListObjects(ctx context.Context, bucket, prefix string, maxKeys int) ([]ObjectInfo, error) {
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(int32(maxKeys)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 list %s/%s: %w", bucket, prefix, err)
	}

	results := make([]ObjectInfo, 0, len(out.Contents))
	for _, object := range out.Contents {
		results = append(results, ObjectInfo{
			Key:          aws.ToString(object.Key),
			Size:         aws.ToInt64(object.Size),
			LastModified: aws.ToTime(object.LastModified),
			ETag:         aws.ToString(object.ETag),
		})
	}
	return results, nil
}

var _ Backend = (*S3Backend)(nil)
