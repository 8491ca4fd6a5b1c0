package multipart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/transfer"
)

// Manager drives the multipart upload lifecycle against one storage backend.
//
// Thread Safety: Manager holds no mutable state after construction and all
// methods are safe for concurrent use. Concurrent sessions on the same key
// are independent; the object store decides which completion wins.
type Manager struct {
	adapter  backend.Adapter
	partSize int64
	logger   *slog.Logger
	metrics  *metrics.Metrics
	transfer *transfer.Client
}

// New creates a Manager for the given storage configuration.
// Unrecognized configurations fail with ErrUnsupportedBackend.
//
// Example:
//
//	store, err := storage.NewS3(ctx, storage.S3Options{Bucket: "uploads"})
//	if err != nil {
//	    return err
//	}
//	mgr, err := multipart.New(store,
//	    multipart.WithPartSize(32*sizes.MiB),
//	    multipart.WithLogger(slog.Default()),
//	)
func New(store any, opts ...Option) (*Manager, error) {
	options := defaultOptions()
	applyOptions(options, opts)

	adapter, err := newAdapter(store, options)
	if err != nil {
		return nil, err
	}

	return newManager(adapter, options)
}

func newManager(adapter backend.Adapter, options *managerOptions) (*Manager, error) {
	m, err := metrics.New(options.registerer)
	if err != nil {
		return nil, err
	}
	return &Manager{
		adapter:  adapter,
		partSize: options.partSize,
		logger:   options.logger,
		metrics:  m,
		transfer: transfer.New(transfer.WithHTTPClient(options.httpClient)),
	}, nil
}

// Backend returns the name of the selected backend adapter.
func (m *Manager) Backend() string {
	return m.adapter.Name()
}

// PartSize returns the configured nominal part size.
func (m *Manager) PartSize() int64 {
	return m.partSize
}

// PlanParts returns the part plan InitializeUpload would use for an object
// of fileSize bytes. It performs no I/O.
func (m *Manager) PlanParts(fileSize int64) ([]sizes.Part, error) {
	return sizes.Plan(fileSize, m.partSize, m.adapter.Limits())
}

// InitializeUpload opens a multipart session for key and presigns every
// planned part. The session holds backend storage until it is completed or
// aborted. If presigning fails, the session just opened is aborted.
func (m *Manager) InitializeUpload(
	ctx context.Context,
	key string,
	fileSize int64,
	contentType string,
) (result *mptypes.UploadInitialization, err error) {
	start := time.Now()
	defer func() { m.metrics.Observe(m.adapter.Name(), "initializeUpload", err, time.Since(start)) }()

	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	// Planning first means an impossible size never reserves a session
	plan, err := m.PlanParts(fileSize)
	if err != nil {
		return nil, mperrors.NewError("initializeUpload", err).WithKey(key)
	}

	uploadID, err := m.adapter.CreateSession(ctx, key, fileSize, contentType)
	if err != nil {
		m.logError(ctx, "failed to create upload session", err, "key", key)
		return nil, err
	}

	parts := make([]mptypes.PartInitialization, 0, len(plan))
	for _, p := range plan {
		req, err := m.adapter.PresignPart(ctx, key, uploadID, p)
		if err != nil {
			m.logError(ctx, "failed to presign part", err,
				"key", key, "upload_id", uploadID, "part_number", p.Number)
			m.abort(ctx, key, uploadID)
			return nil, err
		}
		parts = append(parts, mptypes.PartInitialization{
			PartNumber: p.Number,
			Size:       p.Size,
			UploadURL:  req.URL,
			Headers:    req.Headers,
		})
	}

	m.metrics.Transition(m.adapter.Name(), metrics.TransitionInitialized)
	m.metrics.PlannedParts(m.adapter.Name(), len(parts))
	if m.logger != nil {
		m.logger.InfoContext(ctx, "multipart upload initialized",
			"backend", m.adapter.Name(),
			"key", key,
			"upload_id", uploadID,
			"size", fileSize,
			"parts", len(parts))
	}

	return &mptypes.UploadInitialization{
		ObjectKey: key,
		UploadID:  uploadID,
		Parts:     parts,
	}, nil
}

// CompleteUpload returns the presigned completion request for a transferred
// upload. The upload is not committed until the caller sends the returned
// body to the returned URL. CompleteUpload never aborts the session; on
// failure the caller decides whether to retry or call AbortUpload.
func (m *Manager) CompleteUpload(
	ctx context.Context,
	parts mptypes.TransferredParts,
) (result *mptypes.CompletedUpload, err error) {
	start := time.Now()
	defer func() { m.metrics.Observe(m.adapter.Name(), "completeUpload", err, time.Since(start)) }()

	if err := validation.ValidateObjectKey(parts.ObjectKey); err != nil {
		return nil, err
	}
	if err := m.validateManifest(parts); err != nil {
		return nil, err
	}

	body, err := m.adapter.BuildCompleteBody(parts)
	if err != nil {
		return nil, err
	}

	completeURL, err := m.adapter.PresignComplete(ctx, parts)
	if err != nil {
		m.logError(ctx, "failed to presign completion", err,
			"key", parts.ObjectKey, "upload_id", parts.UploadID)
		return nil, err
	}

	m.metrics.Transition(m.adapter.Name(), metrics.TransitionCompletionPrepared)
	if m.logger != nil {
		m.logger.InfoContext(ctx, "multipart completion prepared",
			"backend", m.adapter.Name(),
			"key", parts.ObjectKey,
			"upload_id", parts.UploadID,
			"parts", len(parts.Parts))
	}

	return &mptypes.CompletedUpload{
		CompleteURL: completeURL,
		Body:        body,
	}, nil
}

// AbortUpload discards an upload session and its stored parts. Backend
// failures are logged and not returned, since abort runs on cleanup paths;
// only malformed arguments produce an error.
func (m *Manager) AbortUpload(ctx context.Context, key, uploadID string) error {
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}
	if uploadID == "" {
		return mperrors.NewError("abortUpload", mperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage("upload id cannot be empty")
	}

	m.abort(ctx, key, uploadID)
	return nil
}

// GetObjectSize returns the size of a committed object. A missing key fails
// with ErrObjectNotFound.
func (m *Manager) GetObjectSize(ctx context.Context, key string) (size int64, err error) {
	start := time.Now()
	defer func() { m.metrics.Observe(m.adapter.Name(), "getObjectSize", err, time.Since(start)) }()

	if err := validation.ValidateObjectKey(key); err != nil {
		return 0, err
	}

	size, err = m.adapter.StatObject(ctx, key)
	if err != nil {
		if !mperrors.IsObjectNotFound(err) {
			m.logError(ctx, "failed to stat object", err, "key", key)
		}
		return 0, err
	}
	return size, nil
}

// RefreshPartURLs presigns the given parts of an existing upload again, for
// clients whose URLs expired mid-transfer. Part sizes are recomputed from
// fileSize, which must be the size passed to InitializeUpload. An empty
// partNumbers refreshes every part.
func (m *Manager) RefreshPartURLs(
	ctx context.Context,
	key, uploadID string,
	fileSize int64,
	partNumbers []int,
) (result []mptypes.PartInitialization, err error) {
	start := time.Now()
	defer func() { m.metrics.Observe(m.adapter.Name(), "refreshPartURLs", err, time.Since(start)) }()

	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}
	if uploadID == "" {
		return nil, mperrors.NewError("refreshPartURLs", mperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage("upload id cannot be empty")
	}

	plan, err := m.PlanParts(fileSize)
	if err != nil {
		return nil, mperrors.NewError("refreshPartURLs", err).WithKey(key).WithUploadID(uploadID)
	}

	selected := plan
	if len(partNumbers) > 0 {
		selected = make([]sizes.Part, 0, len(partNumbers))
		for _, n := range partNumbers {
			if n < 1 || n > len(plan) {
				return nil, mperrors.NewError("refreshPartURLs", mperrors.ErrInvalidInput).
					WithKey(key).
					WithUploadID(uploadID).
					WithMessage(fmt.Sprintf("part %d is not in a %d-part plan", n, len(plan)))
			}
			selected = append(selected, plan[n-1])
		}
	}

	parts := make([]mptypes.PartInitialization, 0, len(selected))
	for _, p := range selected {
		req, err := m.adapter.PresignPart(ctx, key, uploadID, p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, mptypes.PartInitialization{
			PartNumber: p.Number,
			Size:       p.Size,
			UploadURL:  req.URL,
			Headers:    req.Headers,
		})
	}

	return parts, nil
}

// validateManifest checks the caller-assembled manifest before anything is
// signed. Parts need not be ordered, but numbers must be positive, within the
// backend limit and unique.
func (m *Manager) validateManifest(parts mptypes.TransferredParts) error {
	invalid := func(msg string) error {
		return mperrors.NewError("completeUpload", mperrors.ErrInvalidInput).
			WithKey(parts.ObjectKey).
			WithUploadID(parts.UploadID).
			WithMessage(msg)
	}

	if parts.UploadID == "" {
		return invalid("upload id cannot be empty")
	}
	if len(parts.Parts) == 0 {
		return invalid("at least one transferred part is required")
	}

	maxParts := m.adapter.Limits().MaxParts
	seen := make(map[int]struct{}, len(parts.Parts))
	for _, p := range parts.Parts {
		if p.PartNumber < 1 || (maxParts > 0 && p.PartNumber > maxParts) {
			return invalid(fmt.Sprintf("part number %d out of range", p.PartNumber))
		}
		if _, dup := seen[p.PartNumber]; dup {
			return invalid(fmt.Sprintf("part number %d listed twice", p.PartNumber))
		}
		if p.ETag == "" {
			return invalid(fmt.Sprintf("part %d has no etag", p.PartNumber))
		}
		seen[p.PartNumber] = struct{}{}
	}
	return nil
}

// abort is the best-effort abort shared by AbortUpload and failure paths.
func (m *Manager) abort(ctx context.Context, key, uploadID string) {
	if err := m.adapter.Abort(ctx, key, uploadID); err != nil {
		m.metrics.Transition(m.adapter.Name(), metrics.TransitionAbortFailed)
		if m.logger != nil {
			m.logger.WarnContext(ctx, "failed to abort multipart upload",
				"backend", m.adapter.Name(),
				"key", key,
				"upload_id", uploadID,
				"error", err)
		}
		return
	}

	m.metrics.Transition(m.adapter.Name(), metrics.TransitionAborted)
	if m.logger != nil {
		m.logger.InfoContext(ctx, "multipart upload aborted",
			"backend", m.adapter.Name(),
			"key", key,
			"upload_id", uploadID)
	}
}

func (m *Manager) logError(ctx context.Context, msg string, err error, args ...any) {
	if m.logger == nil {
		return
	}
	args = append([]any{"backend", m.adapter.Name()}, args...)
	args = append(args, "error", err)
	m.logger.ErrorContext(ctx, msg, args...)
}
