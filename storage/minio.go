package storage

import (
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio is a bucket on a MinIO server.
type Minio struct {
	Core   *minio.Core
	Bucket string
}

// MinioOptions configures NewMinio.
type MinioOptions struct {
	// Endpoint is host[:port]; a scheme prefix is accepted and decides UseSSL.
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// NewMinio builds a MinIO storage configuration with static V4 credentials.
func NewMinio(opts MinioOptions) (*Minio, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}

	endpoint, secure := splitEndpoint(opts.Endpoint, opts.UseSSL)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Minio{Core: core, Bucket: opts.Bucket}, nil
}

// splitEndpoint strips an http:// or https:// prefix, which minio-go does not
// accept, and derives the TLS setting from it.
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return strings.TrimSuffix(endpoint, "/"), useSSL
	}
}
