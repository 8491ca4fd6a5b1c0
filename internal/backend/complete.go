package backend

import (
	"encoding/xml"
	"fmt"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/mptypes"
)

const (
	// xmlHeader differs from xml.Header: S3 completion bodies carry no
	// newline between the declaration and the root element.
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

	// S3Namespace is the XML namespace of S3 request documents.
	S3Namespace = "http://s3.amazonaws.com/doc/2006-03-01/"
)

type completeMultipartUpload struct {
	XMLName xml.Name       `xml:"CompleteMultipartUpload"`
	Xmlns   string         `xml:"xmlns,attr"`
	Parts   []completePart `xml:"Part"`
}

type completePart struct {
	PartNumber int    `xml:"PartNumber"`
	ETag       string `xml:"ETag"`
}

// CompleteBody renders the CompleteMultipartUpload document for the given
// manifest. Parts are written in ascending part-number order whatever order
// the caller supplied them in.
func CompleteBody(parts mptypes.TransferredParts) (string, error) {
	if len(parts.Parts) == 0 {
		return "", mperrors.NewError("buildCompleteBody", mperrors.ErrInvalidInput).
			WithKey(parts.ObjectKey).
			WithUploadID(parts.UploadID).
			WithMessage("no parts to complete")
	}

	doc := completeMultipartUpload{Xmlns: S3Namespace}
	for _, p := range parts.Sorted() {
		if p.PartNumber < 1 {
			return "", mperrors.NewError("buildCompleteBody", mperrors.ErrInvalidInput).
				WithKey(parts.ObjectKey).
				WithUploadID(parts.UploadID).
				WithMessage(fmt.Sprintf("part number %d is not positive", p.PartNumber))
		}
		doc.Parts = append(doc.Parts, completePart{PartNumber: p.PartNumber, ETag: p.ETag})
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", mperrors.NewError("buildCompleteBody", fmt.Errorf("%w: %w", mperrors.ErrInvalidInput, err))
	}

	return xmlHeader + string(out), nil
}
