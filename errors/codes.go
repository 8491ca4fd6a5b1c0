package errors

import (
	"errors"

	forgeerrors "github.com/input-output-hk/catalyst-forge-libs/errors"
)

// Codes for failures the platform-wide set has no name for.
const (
	// CodeInvalidKey indicates the object key was rejected by naming rules.
	CodeInvalidKey forgeerrors.ErrorCode = "INVALID_KEY"

	// CodeConstraint indicates a size constraint of the backend was violated.
	CodeConstraint forgeerrors.ErrorCode = "PART_SIZE_CONSTRAINT"
)

// CodeOf classifies err into a platform error code. Nil yields the empty code.
func CodeOf(err error) forgeerrors.ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrObjectNotFound):
		return forgeerrors.CodeNotFound
	case errors.Is(err, ErrInvalidKey):
		return CodeInvalidKey
	case errors.Is(err, ErrInvalidInput):
		return forgeerrors.CodeInvalidInput
	case errors.Is(err, ErrPartSizeConstraint):
		return CodeConstraint
	case errors.Is(err, ErrUnsupportedBackend):
		return forgeerrors.CodeNotImplemented
	case errors.Is(err, ErrBackendUnavailable):
		return forgeerrors.CodeUnavailable
	default:
		return forgeerrors.CodeUnknown
	}
}
