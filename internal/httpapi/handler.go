// Package httpapi exposes the upload manager as a JSON API. The server never
// sees upload bytes: clients PUT parts and POST the completion body straight
// to the presigned URLs it returns.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/multipart"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
)

// Uploader is the part of *multipart.Manager the handlers use.
type Uploader interface {
	Backend() string
	InitializeUpload(ctx context.Context, key string, fileSize int64, contentType string) (*mptypes.UploadInitialization, error)
	CompleteUpload(ctx context.Context, parts mptypes.TransferredParts) (*mptypes.CompletedUpload, error)
	AbortUpload(ctx context.Context, key, uploadID string) error
	RefreshPartURLs(ctx context.Context, key, uploadID string, fileSize int64, partNumbers []int) ([]mptypes.PartInitialization, error)
	GetObjectSize(ctx context.Context, key string) (int64, error)
}

var _ Uploader = (*multipart.Manager)(nil)

// maxBodyBytes bounds request bodies; a 10,000-part manifest fits easily.
const maxBodyBytes = 4 << 20

// Handler holds the upload endpoints.
type Handler struct {
	uploader Uploader
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewHandler creates a Handler. A nil logger disables request error logging.
func NewHandler(uploader Uploader, logger *slog.Logger) *Handler {
	return &Handler{
		uploader: uploader,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// InitializeRequest opens an upload. Either ObjectKey or FileName is required;
// with only FileName the key is generated.
type InitializeRequest struct {
	ObjectKey   string `json:"object_key,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type,omitempty"`
}

// AbortRequest discards an upload.
type AbortRequest struct {
	ObjectKey string `json:"object_key"`
	UploadID  string `json:"upload_id"`
}

// RefreshRequest re-presigns parts of an open upload.
type RefreshRequest struct {
	ObjectKey   string `json:"object_key"`
	UploadID    string `json:"upload_id"`
	FileSize    int64  `json:"file_size"`
	PartNumbers []int  `json:"part_numbers,omitempty"`
}

// ObjectSize is the body of a size lookup.
type ObjectSize struct {
	ObjectKey string `json:"object_key"`
	Size      int64  `json:"size"`
}

// Initialize handles POST /api/v1/uploads.
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req InitializeRequest
	if !h.decode(w, r, &req) {
		return
	}

	key := req.ObjectKey
	if key == "" {
		if req.FileName == "" {
			badRequest(w, "object_key or file_name is required")
			return
		}
		var valid bool
		if key, valid = h.generateKey(req.FileName); !valid {
			badRequest(w, "file_name must name a file")
			return
		}
	}

	init, err := h.uploader.InitializeUpload(r.Context(), key, req.FileSize, req.ContentType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, init)
}

// Complete handles POST /api/v1/uploads/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req mptypes.TransferredParts
	if !h.decode(w, r, &req) {
		return
	}

	completed, err := h.uploader.CompleteUpload(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, completed)
}

// Abort handles POST /api/v1/uploads/abort.
func (h *Handler) Abort(w http.ResponseWriter, r *http.Request) {
	var req AbortRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.uploader.AbortUpload(r.Context(), req.ObjectKey, req.UploadID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles POST /api/v1/uploads/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	parts, err := h.uploader.RefreshPartURLs(r.Context(), req.ObjectKey, req.UploadID, req.FileSize, req.PartNumbers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, parts)
}

// ObjectSize handles GET /api/v1/objects/size?key=.
func (h *Handler) ObjectSize(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		badRequest(w, "key query parameter is required")
		return
	}

	size, err := h.uploader.GetObjectSize(r.Context(), key)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, ObjectSize{ObjectKey: key, Size: size})
}

// Health handles GET /healthz. It does not contact the backend.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	ok(w, map[string]string{"status": "ok", "backend": h.uploader.Backend()})
}

// generateKey places the base of name under uploads/YYYY/MM/DD/<uuid>/.
// It reports false when name has no usable base, such as "/" or "..".
func (h *Handler) generateKey(name string) (string, bool) {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return "", false
	}
	return fmt.Sprintf("uploads/%s/%s/%s", h.now().UTC().Format("2006/01/02"), h.newID(), name), true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if h.logger != nil {
		h.logger.WarnContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	writeError(w, err)
}
