// Package minioadapter drives multipart uploads against a MinIO (or other
// S3-compatible) server through the minio-go Core client.
//
// minio-go presigns by method and query parameters only, so neither the part
// size nor any other header is bound into part URLs. Part sizes are checked
// by the server when the upload is completed.
package minioadapter

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/minioapi"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
)

// Name identifies this adapter in errors, logs and metrics.
const Name = "minio"

// maxExpiry is the longest presign lifetime minio-go accepts.
const maxExpiry = 7 * 24 * time.Hour

// Config addresses the bucket the adapter operates on.
type Config struct {
	Bucket        string
	PresignExpiry time.Duration
}

// Adapter implements backend.Adapter for MinIO.
type Adapter struct {
	client minioapi.API
	cfg    Config
}

var _ backend.Adapter = (*Adapter)(nil)

// New creates a MinIO adapter.
func New(client minioapi.API, cfg Config) *Adapter {
	switch {
	case cfg.PresignExpiry <= 0:
		cfg.PresignExpiry = time.Hour
	case cfg.PresignExpiry > maxExpiry:
		cfg.PresignExpiry = maxExpiry
	}
	return &Adapter{client: client, cfg: cfg}
}

// Name implements backend.Adapter.
func (a *Adapter) Name() string {
	return Name
}

// Limits implements backend.Adapter.
func (a *Adapter) Limits() sizes.Limits {
	return sizes.S3Limits
}

// CreateSession implements backend.Adapter.
func (a *Adapter) CreateSession(ctx context.Context, key string, _ int64, contentType string) (string, error) {
	uploadID, err := a.client.NewMultipartUpload(ctx, a.cfg.Bucket, key, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", translateError("createSession", err).WithKey(key)
	}
	if uploadID == "" {
		return "", mperrors.NewError("createSession", mperrors.ErrBackendUnavailable).
			WithBackend(Name).
			WithKey(key).
			WithMessage("backend returned no upload id")
	}
	return uploadID, nil
}

// PresignPart implements backend.Adapter.
func (a *Adapter) PresignPart(
	ctx context.Context,
	key, uploadID string,
	part sizes.Part,
) (backend.PresignedRequest, error) {
	params := url.Values{}
	params.Set("partNumber", strconv.Itoa(part.Number))
	params.Set("uploadId", uploadID)

	u, err := a.client.Presign(ctx, http.MethodPut, a.cfg.Bucket, key, a.cfg.PresignExpiry, params)
	if err != nil {
		return backend.PresignedRequest{}, translateError("presignPart", err).WithKey(key).WithUploadID(uploadID)
	}
	return backend.PresignedRequest{URL: u.String()}, nil
}

// PresignComplete implements backend.Adapter.
func (a *Adapter) PresignComplete(ctx context.Context, parts mptypes.TransferredParts) (string, error) {
	params := url.Values{}
	params.Set("uploadId", parts.UploadID)

	u, err := a.client.Presign(ctx, http.MethodPost, a.cfg.Bucket, parts.ObjectKey, a.cfg.PresignExpiry, params)
	if err != nil {
		return "", translateError("presignComplete", err).WithKey(parts.ObjectKey).WithUploadID(parts.UploadID)
	}
	return u.String(), nil
}

// BuildCompleteBody implements backend.Adapter. MinIO speaks the S3
// completion document.
func (a *Adapter) BuildCompleteBody(parts mptypes.TransferredParts) (string, error) {
	return backend.CompleteBody(parts)
}

// Abort implements backend.Adapter.
func (a *Adapter) Abort(ctx context.Context, key, uploadID string) error {
	if err := a.client.AbortMultipartUpload(ctx, a.cfg.Bucket, key, uploadID); err != nil {
		return translateError("abort", err).WithKey(key).WithUploadID(uploadID)
	}
	return nil
}

// StatObject implements backend.Adapter.
func (a *Adapter) StatObject(ctx context.Context, key string) (int64, error) {
	info, err := a.client.StatObject(ctx, a.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, translateError("statObject", err).WithKey(key)
	}
	return info.Size, nil
}
