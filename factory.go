package multipart

import (
	"fmt"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/backend/minioadapter"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/backend/s3adapter"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/storage"
)

// Supported reports whether uploads can be driven against store at all.
// It performs no I/O.
func Supported(store any) bool {
	switch s := store.(type) {
	case *storage.S3:
		return s != nil && s.Client != nil && s.Presigner != nil
	case *storage.Minio:
		return s != nil && s.Core != nil
	default:
		return false
	}
}

// newAdapter is the single place a storage configuration is mapped to a
// backend adapter.
func newAdapter(store any, opts *managerOptions) (backend.Adapter, error) {
	if !Supported(store) {
		return nil, mperrors.NewError("new", mperrors.ErrUnsupportedBackend).
			WithMessage(fmt.Sprintf("no adapter for storage %T", store))
	}

	switch s := store.(type) {
	case *storage.S3:
		return s3adapter.New(s.Client, s.Presigner, v4.NewSigner(), s3adapter.Config{
			Bucket:        s.Bucket,
			Region:        s.Region,
			Endpoint:      s.Endpoint,
			UsePathStyle:  s.UsePathStyle,
			PresignExpiry: opts.presignExpiry,
			Credentials:   s.Credentials,
		}), nil
	case *storage.Minio:
		return minioadapter.New(s.Core, minioadapter.Config{
			Bucket:        s.Bucket,
			PresignExpiry: opts.presignExpiry,
		}), nil
	}

	// Unreachable while Supported and the switch above agree
	return nil, mperrors.NewError("new", mperrors.ErrUnsupportedBackend)
}
