package s3adapter

import (
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
)

// translateError maps an SDK error onto the multipart error taxonomy.
func translateError(op string, err error) *mperrors.Error {
	return mperrors.Translate(op, classify(err), err).WithBackend(Name)
}

func classify(err error) error {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return mperrors.ErrObjectNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return mperrors.ErrObjectNotFound
		case "KeyTooLongError", "InvalidObjectName", "XMinioInvalidObjectName":
			return mperrors.ErrInvalidKey
		case "EntityTooSmall", "EntityTooLarge":
			return mperrors.ErrPartSizeConstraint
		}
	}

	// HeadObject errors carry no body, so a bare 404 is all there is
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return mperrors.ErrObjectNotFound
	}

	return mperrors.ErrBackendUnavailable
}
