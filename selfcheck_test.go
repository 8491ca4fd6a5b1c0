package multipart

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/sizes"
)

// memoryStore is an HTTP server that accepts presigned part PUTs and
// completion POSTs, committing an object when its upload is completed.
type memoryStore struct {
	mu        sync.Mutex
	parts     map[string][]byte
	objects   map[string]int64
	completes int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{parts: map[string][]byte{}, objects: map[string]int64{}}
}

func (s *memoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.URL.Path[1:]

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		s.parts[key] = body
		w.Header().Set("ETag", fmt.Sprintf(`"%x"`, md5.Sum(body)))
	case http.MethodPost:
		s.completes++
		s.objects[key] = int64(len(s.parts[key]))
		_, _ = io.WriteString(w, `<CompleteMultipartUploadResult/>`)
	}
}

func (s *memoryStore) adapter(baseURL string) *testutil.MockAdapter {
	adapter := testutil.NewMockAdapter()
	adapter.PresignPartFunc = func(_ context.Context, key, uploadID string, part sizes.Part) (backend.PresignedRequest, error) {
		return backend.PresignedRequest{URL: fmt.Sprintf("%s/%s?uploadId=%s&partNumber=%d", baseURL, key, uploadID, part.Number)}, nil
	}
	adapter.PresignCompleteFunc = func(_ context.Context, parts mptypes.TransferredParts) (string, error) {
		return fmt.Sprintf("%s/%s?uploadId=%s", baseURL, parts.ObjectKey, parts.UploadID), nil
	}
	adapter.StatObjectFunc = func(_ context.Context, key string) (int64, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		size, ok := s.objects[key]
		if !ok {
			return 0, mperrors.NewError("statObject", mperrors.ErrObjectNotFound)
		}
		return size, nil
	}
	return adapter
}

func TestManager_TestUpload(t *testing.T) {
	store := newMemoryStore()
	srv := httptest.NewServer(store)
	defer srv.Close()

	adapter := store.adapter(srv.URL)
	mgr := newTestManager(t, adapter, WithHTTPClient(srv.Client()))

	require.NoError(t, mgr.TestUpload(context.Background()))

	assert.Equal(t, 1, store.completes)
	assert.Equal(t, int64(100), store.objects[SelfCheckKey])
	assert.Equal(t, 0, adapter.CallCount("Abort"))
}

func TestManager_TestUpload_TransferFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	adapter := newMemoryStore().adapter(srv.URL)
	mgr := newTestManager(t, adapter, WithHTTPClient(srv.Client()))

	err := mgr.TestUpload(context.Background())

	assert.ErrorIs(t, err, mperrors.ErrBackendUnavailable)
	assert.Equal(t, 1, adapter.CallCount("Abort"))
}

func TestManager_TestUpload_SizeMismatch(t *testing.T) {
	store := newMemoryStore()
	srv := httptest.NewServer(store)
	defer srv.Close()

	adapter := store.adapter(srv.URL)
	adapter.StatObjectFunc = func(context.Context, string) (int64, error) { return 99, nil }
	mgr := newTestManager(t, adapter, WithHTTPClient(srv.Client()))

	err := mgr.TestUpload(context.Background())

	assert.ErrorIs(t, err, mperrors.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "99 bytes")
}
