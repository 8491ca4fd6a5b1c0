// Package minioapi defines the minio-go client surface used by the
// compatible-store adapter so it can be mocked in tests.
package minioapi

import (
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// API is the subset of minio.Core the adapter calls.
type API interface {
	// NewMultipartUpload starts a multipart session and returns its upload id
	NewMultipartUpload(ctx context.Context, bucket, object string, opts minio.PutObjectOptions) (string, error)

	// AbortMultipartUpload discards the session and its stored parts
	AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error

	// Presign returns a presigned URL for any method and query parameters
	Presign(
		ctx context.Context,
		method, bucket, object string,
		expires time.Duration,
		reqParams url.Values,
	) (*url.URL, error)

	// StatObject returns object metadata
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

var _ API = (*minio.Core)(nil)
