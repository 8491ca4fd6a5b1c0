package multipart

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
)

// Defaults applied by New.
const (
	DefaultPartSize      = 64 * sizes.MiB
	DefaultPresignExpiry = time.Hour
)

// managerOptions holds configuration options for the Manager.
type managerOptions struct {
	partSize      int64
	presignExpiry time.Duration
	logger        *slog.Logger
	registerer    prometheus.Registerer
	httpClient    *http.Client
}

// Option is a functional option for configuring the Manager.
type Option func(*managerOptions)

// WithPartSize sets the nominal part size. The effective size is clamped into
// the backend's limits and grown as needed to stay within its part count.
// Non-positive values are ignored.
func WithPartSize(size int64) Option {
	return func(o *managerOptions) {
		if size > 0 {
			o.partSize = size
		}
	}
}

// WithPresignExpiry sets the lifetime of presigned URLs.
// Non-positive values are ignored.
func WithPresignExpiry(expiry time.Duration) Option {
	return func(o *managerOptions) {
		if expiry > 0 {
			o.presignExpiry = expiry
		}
	}
}

// WithLogger configures the manager with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithMetrics registers lifecycle metrics on reg.
// If reg is nil, metrics are disabled.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *managerOptions) {
		o.registerer = reg
	}
}

// WithHTTPClient sets the HTTP client TestUpload uses to transfer its
// self-check object. Default is http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(o *managerOptions) {
		o.httpClient = client
	}
}

// defaultOptions returns the default configuration options.
func defaultOptions() *managerOptions {
	return &managerOptions{
		partSize:      DefaultPartSize,
		presignExpiry: DefaultPresignExpiry,
		logger:        nil, // No default logger
		registerer:    nil, // No metrics
		httpClient:    nil, // http.DefaultClient
	}
}

// applyOptions applies the given options to the manager options.
func applyOptions(opts *managerOptions, options []Option) {
	for _, option := range options {
		option(opts)
	}
}
