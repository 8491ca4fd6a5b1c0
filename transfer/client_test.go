package transfer

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
)

// fakeStore accepts part PUTs and records them by part number.
type fakeStore struct {
	mu       sync.Mutex
	parts    map[string][]byte
	headers  map[string]http.Header
	complete string
	failPart string
	respBody string
}

func newFakeStore() *fakeStore {
	return &fakeStore{parts: map[string][]byte{}, headers: map[string]http.Header{}}
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	partNumber := r.URL.Query().Get("partNumber")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		if partNumber == s.failPart {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `<Error><Code>SignatureDoesNotMatch</Code><Message>bad signature</Message></Error>`)
			return
		}
		if r.ContentLength != int64(len(body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.parts[partNumber] = body
		s.headers[partNumber] = r.Header.Clone()
		w.Header().Set("ETag", fmt.Sprintf(`"%x"`, md5.Sum(body)))
	case http.MethodPost:
		s.complete = string(body)
		_, _ = io.WriteString(w, s.respBody)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func initialization(baseURL string, sizes ...int64) *mptypes.UploadInitialization {
	init := &mptypes.UploadInitialization{ObjectKey: "new-object", UploadID: "abc"}
	for i, size := range sizes {
		init.Parts = append(init.Parts, mptypes.PartInitialization{
			PartNumber: i + 1,
			Size:       size,
			UploadURL:  baseURL + "/new-object?uploadId=abc&partNumber=" + strconv.Itoa(i+1),
			Headers:    map[string]string{"Content-Length": strconv.FormatInt(size, 10), "X-Amz-Meta-Test": "1"},
		})
	}
	return init
}

func TestClient_PutPart(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(store)
	defer srv.Close()

	init := initialization(srv.URL, 5)
	part, err := New(WithHTTPClient(srv.Client())).PutPart(context.Background(), init.Parts[0], strings.NewReader("hello world"))

	require.NoError(t, err)
	assert.Equal(t, 1, part.PartNumber)
	assert.Equal(t, int64(5), part.Size)
	assert.Equal(t, fmt.Sprintf(`"%x"`, md5.Sum([]byte("hello"))), part.ETag)
	assert.Equal(t, []byte("hello"), store.parts["1"])
	assert.Equal(t, "1", store.headers["1"].Get("X-Amz-Meta-Test"))
}

// failingReader fails every read, standing in for a broken source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk gone")
}

func TestClient_PutPart_Streams(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(store)
	defer srv.Close()

	init := initialization(srv.URL, 5)
	// Reading past the part would hit the failing reader.
	body := io.MultiReader(strings.NewReader("hello"), failingReader{})

	part, err := New(WithHTTPClient(srv.Client())).PutPart(context.Background(), init.Parts[0], body)

	require.NoError(t, err)
	assert.Equal(t, int64(5), part.Size)
	assert.Equal(t, []byte("hello"), store.parts["1"])
}

func TestClient_PutPart_BadSource(t *testing.T) {
	tests := []struct {
		name    string
		body    io.Reader
		wantErr error
		errMsg  string
	}{
		{"short body", strings.NewReader("short"), mperrors.ErrInvalidInput, "got 5 bytes, want 10"},
		{"read failure", io.MultiReader(strings.NewReader("abc"), failingReader{}), nil, "disk gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			srv := httptest.NewServer(store)
			defer srv.Close()

			init := initialization(srv.URL, 10)
			_, err := New(WithHTTPClient(srv.Client())).PutPart(context.Background(), init.Parts[0], tt.body)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NotErrorIs(t, err, mperrors.ErrBackendUnavailable)

			store.mu.Lock()
			defer store.mu.Unlock()
			assert.Empty(t, store.parts)
		})
	}
}

func TestClient_PutPart_Rejected(t *testing.T) {
	store := newFakeStore()
	store.failPart = "1"
	srv := httptest.NewServer(store)
	defer srv.Close()

	init := initialization(srv.URL, 3)
	_, err := New(WithHTTPClient(srv.Client())).PutPart(context.Background(), init.Parts[0], strings.NewReader("abc"))

	assert.ErrorIs(t, err, mperrors.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
}

func TestClient_PutPart_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	init := initialization(url, 3)
	_, err := New().PutPart(context.Background(), init.Parts[0], strings.NewReader("abc"))

	assert.ErrorIs(t, err, mperrors.ErrBackendUnavailable)
}

func TestClient_Upload(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(store)
	defer srv.Close()

	data := []byte("0123456789abcdefghij-tail")
	init := initialization(srv.URL, 10, 10, 5)

	manifest, err := New(WithHTTPClient(srv.Client()), WithConcurrency(2)).
		Upload(context.Background(), init, bytes.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, "new-object", manifest.ObjectKey)
	assert.Equal(t, "abc", manifest.UploadID)
	require.Len(t, manifest.Parts, 3)
	for i, p := range manifest.Parts {
		assert.Equal(t, i+1, p.PartNumber)
	}
	assert.Equal(t, []byte("0123456789"), store.parts["1"])
	assert.Equal(t, []byte("abcdefghij"), store.parts["2"])
	assert.Equal(t, []byte("-tail"), store.parts["3"])
	assert.Equal(t, int64(len(data)), manifest.Size())
}

func TestClient_Upload_FailsOnAnyPart(t *testing.T) {
	store := newFakeStore()
	store.failPart = "2"
	srv := httptest.NewServer(store)
	defer srv.Close()

	init := initialization(srv.URL, 4, 4)
	_, err := New(WithHTTPClient(srv.Client())).Upload(context.Background(), init, strings.NewReader("abcdefgh"))

	assert.Error(t, err)
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name     string
		respBody string
		wantErr  error
	}{
		{
			name:     "success",
			respBody: `<CompleteMultipartUploadResult><ETag>"x-2"</ETag></CompleteMultipartUploadResult>`,
		},
		{
			name:     "error inside 200",
			respBody: `<?xml version="1.0" encoding="UTF-8"?><Error><Code>InternalError</Code><Message>try again</Message></Error>`,
			wantErr:  mperrors.ErrBackendUnavailable,
		},
		{
			name:     "part too small",
			respBody: `<Error><Code>EntityTooSmall</Code></Error>`,
			wantErr:  mperrors.ErrPartSizeConstraint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.respBody = tt.respBody
			srv := httptest.NewServer(store)
			defer srv.Close()

			err := New(WithHTTPClient(srv.Client())).Complete(context.Background(), &mptypes.CompletedUpload{
				CompleteURL: srv.URL + "/new-object?uploadId=abc",
				Body:        "<CompleteMultipartUpload/>",
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "<CompleteMultipartUpload/>", store.complete)
		})
	}
}

func TestClassifyCode(t *testing.T) {
	assert.Equal(t, mperrors.ErrObjectNotFound, classifyCode("", http.StatusNotFound))
	assert.Equal(t, mperrors.ErrInvalidInput, classifyCode("NoSuchUpload", http.StatusNotFound))
	assert.Equal(t, mperrors.ErrInvalidInput, classifyCode("InvalidPart", http.StatusBadRequest))
	assert.Equal(t, mperrors.ErrBackendUnavailable, classifyCode("", http.StatusBadGateway))
}
