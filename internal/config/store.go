package config

import (
	"context"
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/multipart/storage"
)

// BuildStore returns the storage configuration selected by c:
// *storage.S3, *storage.Minio or *storage.Local.
func (c StorageConfig) BuildStore(ctx context.Context) (any, error) {
	switch c.Backend {
	case BackendS3:
		return storage.NewS3(ctx, storage.S3Options{
			Bucket:       c.Bucket,
			Region:       c.Region,
			Endpoint:     c.Endpoint,
			AccessKey:    c.AccessKey,
			SecretKey:    c.SecretKey,
			UsePathStyle: c.ForcePathStyle,
		})
	case BackendMinio:
		return storage.NewMinio(storage.MinioOptions{
			Endpoint:  c.Endpoint,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			Bucket:    c.Bucket,
			Region:    c.Region,
			UseSSL:    c.UseSSL,
		})
	case BackendLocal:
		return storage.NewLocal(c.Root)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}
