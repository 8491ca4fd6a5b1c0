// Package testutil provides test utilities and mocks for the storage clients
// and adapters. This package is internal and should only be used for testing
// within this module.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"

	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/minioapi"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/s3api"
)

// MockS3Client is a mock implementation of the S3API interface for testing.
// It allows customization of each S3 operation through function fields.
type MockS3Client struct {
	CreateMultipartUploadFunc func(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	AbortMultipartUploadFunc  func(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
	HeadObjectFunc            func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// CreateMultipartUpload mocks the S3 CreateMultipartUpload operation.
func (m *MockS3Client) CreateMultipartUpload(
	ctx context.Context,
	params *s3.CreateMultipartUploadInput,
	optFns ...func(*s3.Options),
) (*s3.CreateMultipartUploadOutput, error) {
	if m.CreateMultipartUploadFunc != nil {
		return m.CreateMultipartUploadFunc(ctx, params, optFns...)
	}
	return &s3.CreateMultipartUploadOutput{}, nil
}

// AbortMultipartUpload mocks the S3 AbortMultipartUpload operation.
func (m *MockS3Client) AbortMultipartUpload(
	ctx context.Context,
	params *s3.AbortMultipartUploadInput,
	optFns ...func(*s3.Options),
) (*s3.AbortMultipartUploadOutput, error) {
	if m.AbortMultipartUploadFunc != nil {
		return m.AbortMultipartUploadFunc(ctx, params, optFns...)
	}
	return &s3.AbortMultipartUploadOutput{}, nil
}

// HeadObject mocks the S3 HeadObject operation.
func (m *MockS3Client) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if m.HeadObjectFunc != nil {
		return m.HeadObjectFunc(ctx, params, optFns...)
	}
	return &s3.HeadObjectOutput{}, nil
}

// MockPresigner is a mock implementation of s3api.Presigner.
// Without a custom function it returns a deterministic fake URL that encodes
// the request parameters, and signs Host and Content-Length.
type MockPresigner struct {
	PresignUploadPartFunc func(context.Context, *s3.UploadPartInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PresignUploadPart mocks the presign client's PresignUploadPart operation.
func (m *MockPresigner) PresignUploadPart(
	ctx context.Context,
	params *s3.UploadPartInput,
	optFns ...func(*s3.PresignOptions),
) (*v4.PresignedHTTPRequest, error) {
	if m.PresignUploadPartFunc != nil {
		return m.PresignUploadPartFunc(ctx, params, optFns...)
	}

	rawURL := fmt.Sprintf("https://%s.s3.mock.local/%s?partNumber=%d&uploadId=%s&X-Amz-Signature=mock",
		aws.ToString(params.Bucket),
		aws.ToString(params.Key),
		aws.ToInt32(params.PartNumber),
		url.QueryEscape(aws.ToString(params.UploadId)),
	)
	return &v4.PresignedHTTPRequest{
		URL:    rawURL,
		Method: http.MethodPut,
		SignedHeader: http.Header{
			"Host":           []string{aws.ToString(params.Bucket) + ".s3.mock.local"},
			"Content-Length": []string{strconv.FormatInt(aws.ToInt64(params.ContentLength), 10)},
		},
	}, nil
}

// MockHTTPPresigner is a mock implementation of s3api.HTTPPresigner.
// Without a custom function it appends a fake signature to the request URL.
type MockHTTPPresigner struct {
	PresignHTTPFunc func(
		ctx context.Context,
		credentials aws.Credentials,
		r *http.Request,
		payloadHash, service, region string,
		signingTime time.Time,
		optFns ...func(*v4.SignerOptions),
	) (string, http.Header, error)
}

// PresignHTTP mocks the SigV4 signer's PresignHTTP operation.
func (m *MockHTTPPresigner) PresignHTTP(
	ctx context.Context,
	credentials aws.Credentials,
	r *http.Request,
	payloadHash string,
	service string,
	region string,
	signingTime time.Time,
	optFns ...func(*v4.SignerOptions),
) (string, http.Header, error) {
	if m.PresignHTTPFunc != nil {
		return m.PresignHTTPFunc(ctx, credentials, r, payloadHash, service, region, signingTime, optFns...)
	}

	u := *r.URL
	q := u.Query()
	q.Set("X-Amz-Credential", credentials.AccessKeyID+"/"+region+"/"+service)
	q.Set("X-Amz-Signature", "mock")
	u.RawQuery = q.Encode()
	return u.String(), http.Header{"Host": []string{u.Host}}, nil
}

// MockMinioClient is a mock implementation of minioapi.API.
type MockMinioClient struct {
	NewMultipartUploadFunc   func(ctx context.Context, bucket, object string, opts minio.PutObjectOptions) (string, error)
	AbortMultipartUploadFunc func(ctx context.Context, bucket, object, uploadID string) error
	PresignFunc              func(ctx context.Context, method, bucket, object string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	StatObjectFunc           func(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// NewMultipartUpload mocks minio.Core.NewMultipartUpload.
func (m *MockMinioClient) NewMultipartUpload(
	ctx context.Context,
	bucket, object string,
	opts minio.PutObjectOptions,
) (string, error) {
	if m.NewMultipartUploadFunc != nil {
		return m.NewMultipartUploadFunc(ctx, bucket, object, opts)
	}
	return "", nil
}

// AbortMultipartUpload mocks minio.Core.AbortMultipartUpload.
func (m *MockMinioClient) AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error {
	if m.AbortMultipartUploadFunc != nil {
		return m.AbortMultipartUploadFunc(ctx, bucket, object, uploadID)
	}
	return nil
}

// Presign mocks minio.Client.Presign. Without a custom function it returns a
// path-style URL carrying the request parameters.
func (m *MockMinioClient) Presign(
	ctx context.Context,
	method, bucket, object string,
	expires time.Duration,
	reqParams url.Values,
) (*url.URL, error) {
	if m.PresignFunc != nil {
		return m.PresignFunc(ctx, method, bucket, object, expires, reqParams)
	}

	q := url.Values{}
	for k, v := range reqParams {
		q[k] = v
	}
	q.Set("X-Amz-Expires", strconv.Itoa(int(expires/time.Second)))
	q.Set("X-Amz-Signature", "mock")
	return &url.URL{
		Scheme:   "http",
		Host:     "minio.mock.local:9000",
		Path:     "/" + bucket + "/" + object,
		RawQuery: q.Encode(),
	}, nil
}

// StatObject mocks minio.Client.StatObject.
func (m *MockMinioClient) StatObject(
	ctx context.Context,
	bucket, object string,
	opts minio.StatObjectOptions,
) (minio.ObjectInfo, error) {
	if m.StatObjectFunc != nil {
		return m.StatObjectFunc(ctx, bucket, object, opts)
	}
	return minio.ObjectInfo{Key: object}, nil
}

// Ensure the mocks implement the client interfaces
var (
	_ s3api.S3API         = (*MockS3Client)(nil)
	_ s3api.Presigner     = (*MockPresigner)(nil)
	_ s3api.HTTPPresigner = (*MockHTTPPresigner)(nil)
	_ minioapi.API        = (*MockMinioClient)(nil)
)
