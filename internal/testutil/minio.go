package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MinIO container defaults.
const (
	MinioImage     = "minio/minio:latest"
	MinioAccessKey = "minioadmin"
	MinioSecretKey = "minioadmin"
	MinioRegion    = "us-east-1"

	minioPort = "9000"
)

// MinioContainer wraps a MinIO server container for testing.
type MinioContainer struct {
	container testcontainers.Container
	endpoint  string
}

// NewMinioContainer creates and starts a new MinIO container.
func NewMinioContainer(ctx context.Context, t *testing.T) (*MinioContainer, error) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        MinioImage,
		ExposedPorts: []string{minioPort + "/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinioAccessKey,
			"MINIO_ROOT_PASSWORD": MinioSecretKey,
		},
		Cmd: []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").
			WithPort(minioPort + "/tcp").
			WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MinIO container: %w", err)
	}

	port, err := nat.NewPort("tcp", minioPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("invalid MinIO port: %w", err)
	}

	// An empty proto yields host:port, the form minio-go expects
	endpoint, err := container.PortEndpoint(ctx, port, "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get MinIO endpoint: %w", err)
	}

	return &MinioContainer{
		container: container,
		endpoint:  endpoint,
	}, nil
}

// Endpoint returns the MinIO host:port.
func (c *MinioContainer) Endpoint() string {
	return c.endpoint
}

// URL returns the MinIO endpoint as an http URL.
func (c *MinioContainer) URL() string {
	return "http://" + c.endpoint
}

// Client returns a minio-go client for the container.
func (c *MinioContainer) Client() (*minio.Client, error) {
	client, err := minio.New(c.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(MinioAccessKey, MinioSecretKey, ""),
		Secure: false,
		Region: MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return client, nil
}

// CreateBucket creates a bucket in the container.
func (c *MinioContainer) CreateBucket(ctx context.Context, bucket string) error {
	client, err := c.Client()
	if err != nil {
		return err
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: MinioRegion}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Terminate stops and removes the MinIO container.
func (c *MinioContainer) Terminate(ctx context.Context) error {
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}

// SetupMinioTest starts MinIO with a fresh bucket for a test. The container
// is terminated when the test finishes.
func SetupMinioTest(t *testing.T) (*MinioContainer, string) {
	t.Helper()

	// Skip if running in CI without Docker
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := NewMinioContainer(ctx, t)
	if err != nil {
		t.Fatalf("Failed to create MinIO container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MinIO container: %v", err)
		}
	})

	bucket := GenerateTestBucketName("multipart")
	if err := container.CreateBucket(ctx, bucket); err != nil {
		t.Fatalf("Failed to create bucket: %v", err)
	}

	return container, bucket
}
