package errors

import (
	"errors"
	"fmt"
	"testing"

	forgeerrors "github.com/input-output-hk/catalyst-forge-libs/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "operation only",
			err:  NewError("select", ErrUnsupportedBackend),
			want: "multipart.select: multipart: unsupported storage backend",
		},
		{
			name: "with key",
			err:  NewError("statObject", ErrObjectNotFound).WithKey("a/b.txt"),
			want: "multipart.statObject a/b.txt: multipart: object not found",
		},
		{
			name: "with key upload and backend",
			err: NewError("presignPart", ErrBackendUnavailable).
				WithKey("a/b.txt").
				WithUploadID("up-1").
				WithBackend("s3"),
			want: "s3: multipart.presignPart a/b.txt (upload up-1): multipart: backend unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_WithMessageKeepsSentinel(t *testing.T) {
	err := NewError("completeUpload", ErrInvalidInput).WithMessage("no parts")

	assert.True(t, IsInvalidInput(err))
	assert.Contains(t, err.Error(), "no parts")
}

func TestTranslate(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")

	err := Translate("createSession", ErrBackendUnavailable, cause)

	assert.True(t, IsBackendUnavailable(err))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, IsObjectNotFound(err))

	bare := Translate("createSession", ErrInvalidKey, nil)
	assert.True(t, IsInvalidKey(bare))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want forgeerrors.ErrorCode
	}{
		{nil, ""},
		{NewError("op", ErrObjectNotFound), forgeerrors.CodeNotFound},
		{NewError("op", ErrInvalidKey), CodeInvalidKey},
		{NewError("op", ErrInvalidInput), forgeerrors.CodeInvalidInput},
		{NewError("op", ErrPartSizeConstraint), CodeConstraint},
		{NewError("op", ErrUnsupportedBackend), forgeerrors.CodeNotImplemented},
		{Translate("op", ErrBackendUnavailable, errors.New("boom")), forgeerrors.CodeUnavailable},
		{errors.New("something else"), forgeerrors.CodeUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeOf(tt.err))
	}
}
