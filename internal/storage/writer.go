package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/cloudutil/pkg/logger"
)

// WriteRequest describes one upload.
//
//   - Source identifies where the payload came from. When Data is nil, the bytes of
//     Source itself are uploaded.
//   - ObjectName is the display name; it defaults to Source when empty.
type WriteRequest struct {
	Source     string
	Data       []byte
	Bucket     string
	Path       string
	ObjectName string
}

type WriteResult struct {
	Bucket     string `json:"bucket"`
	Path       string `json:"path"`
	ObjectName string `json:"object_name"`
	ETag       string `json:"etag,omitempty"`
	Size       int64  `json:"size"`
}

// Writer uploads payloads to an object store.
type Writer struct {
	backend Backend
	timeout time.Duration
}

// NewWriter returns a Writer; timeout <= 0 leaves the call bounded only by ctx.
func NewWriter(backend Backend, timeout time.Duration) *Writer {
	return &Writer{backend: backend, timeout: timeout}
}

func (w *Writer) Write(ctx context.Context, req WriteRequest) (WriteResult, error) {
	if req.Bucket == "" || req.Path == "" {
		return WriteResult{}, fmt.Errorf("%w: bucket and path are required", ErrWrite)
	}

	objectName := req.ObjectName
	if objectName == "" {
		objectName = req.Source
	}

	body := req.Data
	if body == nil {
		body = []byte(req.Source)
	}

	var metadata map[string]string
	if objectName != "" {
		metadata = map[string]string{ObjectNameMetadataKey: objectName}
	}

	ctx, cancel := withTimeout(ctx, w.timeout)
	defer cancel()

	log := logger.Log.With().Str("bucket", req.Bucket).Str("path", req.Path).Logger()

	info, err := w.backend.PutObject(ctx, req.Bucket, req.Path, body, metadata)
	if err != nil {
		log.Error().Err(err).Msg("file upload failed")
		return WriteResult{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	log.Info().Str("object_name", objectName).Int64("size", info.Size).Msg("File uploaded successfully")
	return WriteResult{
		Bucket:     req.Bucket,
		Path:       req.Path,
		ObjectName: objectName,
		ETag:       info.ETag,
		Size:       info.Size,
	}, nil
}
