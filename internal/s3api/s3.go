// Package s3api defines interfaces for S3 operations to enable testing and mocking.
package s3api

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API defines the S3 operations the multipart adapter issues directly.
type S3API interface {
	// CreateMultipartUpload initiates a multipart upload
	CreateMultipartUpload(
		ctx context.Context,
		params *s3.CreateMultipartUploadInput,
		optFns ...func(*s3.Options),
	) (*s3.CreateMultipartUploadOutput, error)

	// AbortMultipartUpload aborts a multipart upload
	AbortMultipartUpload(
		ctx context.Context,
		params *s3.AbortMultipartUploadInput,
		optFns ...func(*s3.Options),
	) (*s3.AbortMultipartUploadOutput, error)

	// HeadObject retrieves metadata about an object without retrieving the object itself
	HeadObject(
		ctx context.Context,
		params *s3.HeadObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.HeadObjectOutput, error)
}

// Presigner presigns individual part uploads.
type Presigner interface {
	PresignUploadPart(
		ctx context.Context,
		params *s3.UploadPartInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
}

// HTTPPresigner signs arbitrary requests into query-string presigned URLs.
// The SDK has no presign operation for CompleteMultipartUpload, so that
// request is built by hand and signed through this interface.
type HTTPPresigner interface {
	PresignHTTP(
		ctx context.Context,
		credentials aws.Credentials,
		r *http.Request,
		payloadHash string,
		service string,
		region string,
		signingTime time.Time,
		optFns ...func(*v4.SignerOptions),
	) (signedURI string, signedHeaders http.Header, err error)
}

// Verify that the AWS SDK types implement our interfaces
var (
	_ S3API         = (*s3.Client)(nil)
	_ Presigner     = (*s3.PresignClient)(nil)
	_ HTTPPresigner = (*v4.Signer)(nil)
)
