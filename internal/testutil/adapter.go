package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
)

// MockAdapter is a function-field implementation of backend.Adapter. Unset
// functions fall back to an in-memory behavior that issues sequential upload
// ids and fake URLs. Calls are recorded for assertions.
type MockAdapter struct {
	NameValue   string
	LimitsValue sizes.Limits

	CreateSessionFunc     func(ctx context.Context, key string, fileSize int64, contentType string) (string, error)
	PresignPartFunc       func(ctx context.Context, key, uploadID string, part sizes.Part) (backend.PresignedRequest, error)
	PresignCompleteFunc   func(ctx context.Context, parts mptypes.TransferredParts) (string, error)
	BuildCompleteBodyFunc func(parts mptypes.TransferredParts) (string, error)
	AbortFunc             func(ctx context.Context, key, uploadID string) error
	StatObjectFunc        func(ctx context.Context, key string) (int64, error)

	mu       sync.Mutex
	sessions int
	calls    []string
}

// NewMockAdapter returns a MockAdapter with S3 limits.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{NameValue: "mock", LimitsValue: sizes.S3Limits}
}

// Calls returns the recorded operation names in call order.
func (m *MockAdapter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times op was invoked.
func (m *MockAdapter) CallCount(op string) int {
	count := 0
	for _, c := range m.Calls() {
		if c == op {
			count++
		}
	}
	return count
}

func (m *MockAdapter) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
}

// Name implements backend.Adapter.
func (m *MockAdapter) Name() string {
	return m.NameValue
}

// Limits implements backend.Adapter.
func (m *MockAdapter) Limits() sizes.Limits {
	return m.LimitsValue
}

// CreateSession implements backend.Adapter.
func (m *MockAdapter) CreateSession(ctx context.Context, key string, fileSize int64, contentType string) (string, error) {
	m.record("CreateSession")
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, key, fileSize, contentType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions++
	return fmt.Sprintf("upload-%d", m.sessions), nil
}

// PresignPart implements backend.Adapter.
func (m *MockAdapter) PresignPart(
	ctx context.Context,
	key, uploadID string,
	part sizes.Part,
) (backend.PresignedRequest, error) {
	m.record("PresignPart")
	if m.PresignPartFunc != nil {
		return m.PresignPartFunc(ctx, key, uploadID, part)
	}
	return backend.PresignedRequest{
		URL: fmt.Sprintf("https://mock.local/%s?partNumber=%d&uploadId=%s", key, part.Number, uploadID),
	}, nil
}

// PresignComplete implements backend.Adapter.
func (m *MockAdapter) PresignComplete(ctx context.Context, parts mptypes.TransferredParts) (string, error) {
	m.record("PresignComplete")
	if m.PresignCompleteFunc != nil {
		return m.PresignCompleteFunc(ctx, parts)
	}
	return fmt.Sprintf("https://mock.local/%s?uploadId=%s", parts.ObjectKey, parts.UploadID), nil
}

// BuildCompleteBody implements backend.Adapter.
func (m *MockAdapter) BuildCompleteBody(parts mptypes.TransferredParts) (string, error) {
	m.record("BuildCompleteBody")
	if m.BuildCompleteBodyFunc != nil {
		return m.BuildCompleteBodyFunc(parts)
	}
	return backend.CompleteBody(parts)
}

// Abort implements backend.Adapter.
func (m *MockAdapter) Abort(ctx context.Context, key, uploadID string) error {
	m.record("Abort")
	if m.AbortFunc != nil {
		return m.AbortFunc(ctx, key, uploadID)
	}
	return nil
}

// StatObject implements backend.Adapter.
func (m *MockAdapter) StatObject(ctx context.Context, key string) (int64, error) {
	m.record("StatObject")
	if m.StatObjectFunc != nil {
		return m.StatObjectFunc(ctx, key)
	}
	return 0, nil
}

var _ backend.Adapter = (*MockAdapter)(nil)
