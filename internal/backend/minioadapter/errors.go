package minioadapter

import (
	"net/http"

	"github.com/minio/minio-go/v7"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
)

// translateError maps a minio-go error onto the multipart error taxonomy.
func translateError(op string, err error) *mperrors.Error {
	return mperrors.Translate(op, classify(err), err).WithBackend(Name)
}

func classify(err error) error {
	resp := minio.ToErrorResponse(err)

	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return mperrors.ErrObjectNotFound
	case "XMinioInvalidObjectName", "InvalidObjectName", "KeyTooLongError":
		return mperrors.ErrInvalidKey
	case "EntityTooSmall", "EntityTooLarge":
		return mperrors.ErrPartSizeConstraint
	}

	if resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket" && resp.Code != "NoSuchUpload" {
		return mperrors.ErrObjectNotFound
	}

	return mperrors.ErrBackendUnavailable
}
