// Package s3adapter drives multipart uploads against Amazon S3 (or any
// endpoint speaking the S3 protocol) through aws-sdk-go-v2.
//
// Part URLs are presigned with the SDK's presign client and carry the part
// size as a signed Content-Length. The SDK cannot presign
// CompleteMultipartUpload, so the completion URL is assembled here and signed
// with the SigV4 signer directly.
package s3adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
)

// Name identifies this adapter in errors, logs and metrics.
const Name = "s3"

const (
	signingService = "s3"
	unsignedBody   = "UNSIGNED-PAYLOAD"
)

// Config addresses the bucket the adapter operates on.
type Config struct {
	Bucket string
	Region string

	// Endpoint overrides the AWS endpoint, e.g. "http://localhost:9000".
	// Empty means the regional AWS endpoint.
	Endpoint string

	// UsePathStyle places the bucket in the path instead of the host name.
	UsePathStyle bool

	// PresignExpiry is the lifetime of every presigned URL.
	PresignExpiry time.Duration

	// Credentials sign the completion URL.
	Credentials aws.CredentialsProvider
}

// Adapter implements backend.Adapter for S3.
type Adapter struct {
	client    s3api.S3API
	presigner s3api.Presigner
	signer    s3api.HTTPPresigner
	cfg       Config
	now       func() time.Time
}

var _ backend.Adapter = (*Adapter)(nil)

// New creates an S3 adapter.
func New(client s3api.S3API, presigner s3api.Presigner, signer s3api.HTTPPresigner, cfg Config) *Adapter {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = time.Hour
	}
	return &Adapter{
		client:    client,
		presigner: presigner,
		signer:    signer,
		cfg:       cfg,
		now:       time.Now,
	}
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
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(a.cfg.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := a.client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return "", translateError("createSession", err).WithKey(key)
	}

	uploadID := aws.ToString(out.UploadId)
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
	req, err := a.presigner.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(a.cfg.Bucket),
		Key:           aws.String(key),
		UploadId:      aws.String(uploadID),
		PartNumber:    aws.Int32(int32(part.Number)),
		ContentLength: aws.Int64(part.Size),
	}, s3.WithPresignExpires(a.cfg.PresignExpiry))
	if err != nil {
		return backend.PresignedRequest{}, translateError("presignPart", err).WithKey(key).WithUploadID(uploadID)
	}

	return backend.PresignedRequest{
		URL:     req.URL,
		Headers: signedHeaders(req.SignedHeader),
	}, nil
}

// PresignComplete implements backend.Adapter.
func (a *Adapter) PresignComplete(ctx context.Context, parts mptypes.TransferredParts) (string, error) {
	wrap := func(err error) *mperrors.Error {
		return mperrors.NewError("presignComplete", err).
			WithBackend(Name).
			WithKey(parts.ObjectKey).
			WithUploadID(parts.UploadID)
	}

	if a.cfg.Credentials == nil {
		return "", wrap(mperrors.ErrBackendUnavailable).WithMessage("no credentials to sign completion request")
	}

	u, err := a.objectURL(parts.ObjectKey)
	if err != nil {
		return "", wrap(fmt.Errorf("%w: %w", mperrors.ErrBackendUnavailable, err))
	}

	query := url.Values{}
	query.Set("uploadId", parts.UploadID)
	query.Set("X-Amz-Expires", strconv.FormatInt(int64(a.cfg.PresignExpiry/time.Second), 10))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return "", wrap(fmt.Errorf("%w: %w", mperrors.ErrBackendUnavailable, err))
	}

	creds, err := a.cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return "", wrap(fmt.Errorf("%w: %w", mperrors.ErrBackendUnavailable, err))
	}

	signed, _, err := a.signer.PresignHTTP(
		ctx, creds, req, unsignedBody, signingService, a.cfg.Region, a.now().UTC(),
		func(o *v4.SignerOptions) {
			// The key was already escaped into its canonical form
			o.DisableURIPathEscaping = true
		},
	)
	if err != nil {
		return "", wrap(fmt.Errorf("%w: %w", mperrors.ErrBackendUnavailable, err))
	}

	return signed, nil
}

// BuildCompleteBody implements backend.Adapter.
func (a *Adapter) BuildCompleteBody(parts mptypes.TransferredParts) (string, error) {
	return backend.CompleteBody(parts)
}

// Abort implements backend.Adapter.
func (a *Adapter) Abort(ctx context.Context, key, uploadID string) error {
	_, err := a.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(a.cfg.Bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return translateError("abort", err).WithKey(key).WithUploadID(uploadID)
	}
	return nil
}

// StatObject implements backend.Adapter.
func (a *Adapter) StatObject(ctx context.Context, key string) (int64, error) {
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, translateError("statObject", err).WithKey(key)
	}
	return aws.ToInt64(out.ContentLength), nil
}

// objectURL returns the unsigned URL of key, honoring a custom endpoint and
// the addressing style.
func (a *Adapter) objectURL(key string) (*url.URL, error) {
	escaped := backend.EscapeKey(key)

	if a.cfg.Endpoint == "" {
		host := "s3." + a.cfg.Region + ".amazonaws.com"
		if a.cfg.UsePathStyle {
			return &url.URL{
				Scheme:  "https",
				Host:    host,
				Path:    "/" + a.cfg.Bucket + "/" + key,
				RawPath: "/" + a.cfg.Bucket + "/" + escaped,
			}, nil
		}
		return &url.URL{
			Scheme:  "https",
			Host:    a.cfg.Bucket + "." + host,
			Path:    "/" + key,
			RawPath: "/" + escaped,
		}, nil
	}

	base, err := url.Parse(a.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", a.cfg.Endpoint, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("endpoint %q must include scheme and host", a.cfg.Endpoint)
	}

	prefix := strings.TrimSuffix(base.Path, "/")
	u := &url.URL{Scheme: base.Scheme, Host: base.Host}
	if a.cfg.UsePathStyle {
		u.Path = prefix + "/" + a.cfg.Bucket + "/" + key
		u.RawPath = prefix + "/" + a.cfg.Bucket + "/" + escaped
	} else {
		u.Host = a.cfg.Bucket + "." + base.Host
		u.Path = prefix + "/" + key
		u.RawPath = prefix + "/" + escaped
	}
	return u, nil
}

// signedHeaders flattens the headers the presigner signed, minus Host which
// every HTTP client sets on its own.
func signedHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	headers := make(map[string]string, len(h))
	for name, values := range h {
		if strings.EqualFold(name, "Host") {
			continue
		}
		headers[http.CanonicalHeaderKey(name)] = strings.Join(values, ",")
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}
