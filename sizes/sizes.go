// Package sizes computes multipart part plans.
//
// A plan maps a total object size onto an ordered sequence of parts whose
// numbers run 1..n without gaps. Every part but the last has the same
// effective size; the last part carries the remainder. Planning is pure and
// deterministic, so a plan can always be recomputed from the object size.
package sizes

import (
	"fmt"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
)

// Byte units.
const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
	TiB int64 = 1 << 40
)

// Limits describes the multipart constraints of a storage backend.
type Limits struct {
	// MinPartSize is the smallest size allowed for any part but the last.
	MinPartSize int64

	// MaxPartSize is the largest size allowed for a single part.
	MaxPartSize int64

	// MaxParts is the largest part number the backend accepts.
	MaxParts int

	// MaxObjectSize is the largest object the backend can assemble.
	MaxObjectSize int64
}

// S3Limits are the multipart limits documented for Amazon S3. MinIO enforces
// the same values.
var S3Limits = Limits{
	MinPartSize:   5 * MiB,
	MaxPartSize:   5 * GiB,
	MaxParts:      10_000,
	MaxObjectSize: 5 * TiB,
}

// Part is one planned part of a multipart upload.
type Part struct {
	Number int
	Size   int64
}

// EffectivePartSize clamps the requested part size into the backend bounds
// and grows it, if needed, so fileSize fits in at most MaxParts parts.
func EffectivePartSize(fileSize, requested int64, limits Limits) int64 {
	size := max(requested, limits.MinPartSize)
	size = min(size, limits.MaxPartSize)

	if limits.MaxParts > 0 && fileSize > 0 {
		maxParts := int64(limits.MaxParts)
		// Ceiling division
		size = max(size, (fileSize+maxParts-1)/maxParts)
	}

	return size
}

// Plan returns the parts for an object of fileSize bytes uploaded with the
// requested nominal part size.
//
// An object no larger than the effective part size is a single part of
// exactly fileSize bytes, which includes the empty object.
func Plan(fileSize, requested int64, limits Limits) ([]Part, error) {
	if fileSize < 0 {
		return nil, mperrors.NewError("planParts", mperrors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("file size %d is negative", fileSize))
	}
	if requested <= 0 {
		return nil, mperrors.NewError("planParts", mperrors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("part size %d must be positive", requested))
	}
	if limits.MaxObjectSize > 0 && fileSize > limits.MaxObjectSize {
		return nil, mperrors.NewError("planParts", mperrors.ErrPartSizeConstraint).
			WithMessage(fmt.Sprintf("file size %d exceeds maximum object size %d", fileSize, limits.MaxObjectSize))
	}

	partSize := EffectivePartSize(fileSize, requested, limits)
	if limits.MaxPartSize > 0 && partSize > limits.MaxPartSize {
		return nil, mperrors.NewError("planParts", mperrors.ErrPartSizeConstraint).
			WithMessage(fmt.Sprintf("file size %d needs parts of %d bytes, above the %d byte maximum",
				fileSize, partSize, limits.MaxPartSize))
	}

	if fileSize <= partSize {
		return []Part{{Number: 1, Size: fileSize}}, nil
	}

	count := int((fileSize + partSize - 1) / partSize)
	parts := make([]Part, count)
	for i := range parts {
		parts[i] = Part{Number: i + 1, Size: partSize}
	}
	parts[count-1].Size = fileSize - partSize*int64(count-1)

	return parts, nil
}

// Sum returns the total number of bytes covered by parts.
func Sum(parts []Part) int64 {
	var total int64
	for _, p := range parts {
		total += p.Size
	}
	return total
}
