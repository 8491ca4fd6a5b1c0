package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 is a bucket reached through the AWS SDK.
type S3 struct {
	// Client issues multipart and metadata requests.
	Client *s3.Client

	// Presigner presigns part uploads.
	Presigner *s3.PresignClient

	// Credentials sign requests the SDK cannot presign itself.
	Credentials aws.CredentialsProvider

	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// S3Options configures NewS3.
type S3Options struct {
	Bucket string
	Region string

	// Endpoint points the client at an S3-compatible server.
	Endpoint string

	// AccessKey and SecretKey select static credentials. When both are empty
	// the default AWS credential chain is used.
	AccessKey string
	SecretKey string

	UsePathStyle bool
}

// NewS3 loads AWS configuration and builds an S3 storage configuration.
//
// Example:
//
//	store, err := storage.NewS3(ctx, storage.S3Options{
//	    Bucket: "uploads",
//	    Region: "eu-central-1",
//	})
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3FromConfig(cfg, opts), nil
}

// NewS3FromConfig builds an S3 storage configuration from an existing AWS
// configuration. Region falls back to us-east-1 when neither cfg nor opts set it.
func NewS3FromConfig(cfg aws.Config, opts S3Options) *S3 {
	if opts.Region != "" {
		cfg.Region = opts.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &S3{
		Client:       client,
		Presigner:    s3.NewPresignClient(client),
		Credentials:  cfg.Credentials,
		Bucket:       opts.Bucket,
		Region:       cfg.Region,
		Endpoint:     opts.Endpoint,
		UsePathStyle: opts.UsePathStyle,
	}
}
