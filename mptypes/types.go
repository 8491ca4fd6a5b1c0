// Package mptypes provides the value types exchanged between the multipart
// manager and the external byte-transfer step.
package mptypes

import (
	"cmp"
	"slices"
)

// UploadInitialization is the result of initializing a multipart upload.
// Parts are ordered by part number and must be transferred by the caller
// before the upload can be completed.
type UploadInitialization struct {
	ObjectKey string               `json:"object_key"`
	UploadID  string               `json:"upload_id"`
	Parts     []PartInitialization `json:"parts"`
}

// Size returns the total number of bytes covered by the planned parts.
func (u *UploadInitialization) Size() int64 {
	var total int64
	for _, p := range u.Parts {
		total += p.Size
	}
	return total
}

// PartInitialization describes one part the caller must PUT to UploadURL.
type PartInitialization struct {
	PartNumber int    `json:"part_number"`
	Size       int64  `json:"size"`
	UploadURL  string `json:"upload_url"`

	// Headers lists request headers that were part of the signature and must
	// be sent with the PUT (for example Content-Length).
	Headers map[string]string `json:"headers,omitempty"`
}

// TransferredPart is reported by the byte-transfer step after a part PUT succeeds.
type TransferredPart struct {
	PartNumber int    `json:"part_number"`
	Size       int64  `json:"size"`
	ETag       string `json:"etag"`
}

// TransferredParts is the manifest passed to CompleteUpload.
type TransferredParts struct {
	ObjectKey string            `json:"object_key"`
	UploadID  string            `json:"upload_id"`
	Parts     []TransferredPart `json:"parts"`
}

// Sorted returns a copy of the parts ordered by ascending part number.
// The receiver is left untouched.
func (t TransferredParts) Sorted() []TransferredPart {
	parts := slices.Clone(t.Parts)
	slices.SortStableFunc(parts, func(a, b TransferredPart) int {
		return cmp.Compare(a.PartNumber, b.PartNumber)
	})
	return parts
}

// Size returns the total number of bytes reported across all parts.
func (t TransferredParts) Size() int64 {
	var total int64
	for _, p := range t.Parts {
		total += p.Size
	}
	return total
}

// CompletedUpload holds the presigned completion request. The upload is not
// committed until the caller sends Body to CompleteURL.
type CompletedUpload struct {
	CompleteURL string `json:"complete_url"`
	Body        string `json:"body"`
}
