package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3FromConfig(t *testing.T) {
	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	}

	store := NewS3FromConfig(cfg, S3Options{
		Bucket:       "uploads",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	})

	require.NotNil(t, store.Client)
	require.NotNil(t, store.Presigner)
	assert.Equal(t, "us-east-1", store.Region)
	assert.Equal(t, "uploads", store.Bucket)
	assert.True(t, store.UsePathStyle)

	creds, err := store.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
}

func TestNewS3(t *testing.T) {
	_, err := NewS3(context.Background(), S3Options{})
	assert.Error(t, err)

	store, err := NewS3(context.Background(), S3Options{
		Bucket:    "uploads",
		Region:    "eu-west-1",
		AccessKey: "AKID",
		SecretKey: "SECRET",
	})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", store.Region)
}

func TestNewMinio(t *testing.T) {
	tests := []struct {
		name       string
		opts       MinioOptions
		wantErr    bool
		wantSecure bool
	}{
		{"plain host", MinioOptions{Endpoint: "localhost:9000", Bucket: "b"}, false, false},
		{"https scheme", MinioOptions{Endpoint: "https://minio.example.com", Bucket: "b"}, false, true},
		{"http scheme overrides flag", MinioOptions{Endpoint: "http://localhost:9000/", Bucket: "b", UseSSL: true}, false, false},
		{"missing bucket", MinioOptions{Endpoint: "localhost:9000"}, true, false},
		{"missing endpoint", MinioOptions{Bucket: "b"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewMinio(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "b", store.Bucket)
			assert.Equal(t, tt.wantSecure, store.Core.EndpointURL().Scheme == "https")
		})
	}
}

func TestNewLocal(t *testing.T) {
	_, err := NewLocal("")
	assert.Error(t, err)

	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)
	assert.Equal(t, root, store.Root)

	require.NoError(t, store.FS.MkdirAll("/incoming", 0o755))
	require.NoError(t, store.FS.WriteFile("/incoming/a.txt", []byte("hello"), 0o644))

	data, err := os.ReadFile(filepath.Join(root, "incoming", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
