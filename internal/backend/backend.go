// Package backend defines the contract every storage adapter fulfils and the
// pieces of the multipart protocol shared between adapters.
package backend

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
)

// Adapter translates the upload lifecycle into calls against one backend
// protocol. Adapters are stateless: every call is fully described by its
// arguments. All returned errors wrap a sentinel from the errors package.
type Adapter interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Limits reports the backend's multipart constraints.
	Limits() sizes.Limits

	// CreateSession opens a multipart session for key and returns its upload id.
	CreateSession(ctx context.Context, key string, fileSize int64, contentType string) (string, error)

	// PresignPart returns a presigned PUT for one part. Where the protocol
	// supports it the part size is part of the signature.
	PresignPart(ctx context.Context, key, uploadID string, part sizes.Part) (PresignedRequest, error)

	// PresignComplete returns a presigned POST that commits the upload.
	PresignComplete(ctx context.Context, parts mptypes.TransferredParts) (string, error)

	// BuildCompleteBody serializes the completion payload.
	BuildCompleteBody(parts mptypes.TransferredParts) (string, error)

	// Abort discards the session and any stored parts.
	Abort(ctx context.Context, key, uploadID string) error

	// StatObject returns the size of a committed object.
	StatObject(ctx context.Context, key string) (int64, error)
}

// PresignedRequest is a presigned URL plus the headers that were signed into
// it and therefore must accompany the request.
type PresignedRequest struct {
	URL     string
	Headers map[string]string
}
