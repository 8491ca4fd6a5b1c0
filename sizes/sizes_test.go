package sizes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name            string
		fileSize        int64
		requestedSize   int64
		initialPartSize int64
		finalPartSize   int64
		partCount       int
	}{
		{"base", 50 * MiB, 10 * MiB, 10 * MiB, 10 * MiB, 5},
		{"different_final", 55 * MiB, 10 * MiB, 10 * MiB, 5 * MiB, 6},
		{"single_part", 10 * MiB, 10 * MiB, 0, 10 * MiB, 1},
		{"too_small_part", 50 * MiB, 2 * MiB, 5 * MiB, 5 * MiB, 10},
		{"too_large_part", 50 * GiB, 10 * GiB, 5 * GiB, 5 * GiB, 10},
		{"too_many_parts", 100_000 * MiB, 5 * MiB, 10 * MiB, 10 * MiB, 10_000},
		{"tiny_single_part", 10, 64 * MiB, 0, 10, 1},
		{"empty_object", 0, 64 * MiB, 0, 0, 1},
		{"below_floor_single_part", 3 * MiB, 2 * MiB, 0, 3 * MiB, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := Plan(tt.fileSize, tt.requestedSize, S3Limits)
			require.NoError(t, err)
			require.Len(t, parts, tt.partCount)

			for i, p := range parts {
				assert.Equal(t, i+1, p.Number)
			}
			for _, p := range parts[:len(parts)-1] {
				assert.Equal(t, tt.initialPartSize, p.Size)
			}
			assert.Equal(t, tt.finalPartSize, parts[len(parts)-1].Size)
			assert.Equal(t, tt.fileSize, Sum(parts))
		})
	}
}

func TestPlan_Properties(t *testing.T) {
	fileSizes := []int64{0, 1, 5*MiB - 1, 5 * MiB, 5*MiB + 1, 64 * MiB, 1 * GiB, 333*MiB + 7, 77 * GiB, 5 * TiB}
	requested := []int64{1, 5 * MiB, 8 * MiB, 64 * MiB, 6 * GiB}

	for _, fileSize := range fileSizes {
		for _, req := range requested {
			parts, err := Plan(fileSize, req, S3Limits)
			require.NoError(t, err, "file=%d requested=%d", fileSize, req)
			require.NotEmpty(t, parts)
			require.LessOrEqual(t, len(parts), S3Limits.MaxParts)

			effective := EffectivePartSize(fileSize, req, S3Limits)
			assert.Equal(t, fileSize, Sum(parts))
			for i, p := range parts {
				assert.Equal(t, i+1, p.Number)
				if i < len(parts)-1 {
					assert.Equal(t, effective, p.Size)
				}
			}

			last := parts[len(parts)-1].Size
			if len(parts) == 1 {
				assert.Equal(t, fileSize, last)
			} else {
				assert.Greater(t, last, int64(0))
				assert.LessOrEqual(t, last, effective)
			}
		}
	}
}

func TestPlan_Deterministic(t *testing.T) {
	a, err := Plan(123*MiB+17, 8*MiB, S3Limits)
	require.NoError(t, err)
	b, err := Plan(123*MiB+17, 8*MiB, S3Limits)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fileSize int64
		partSize int64
		limits   Limits
		sentinel error
	}{
		{"negative file size", -1, 5 * MiB, S3Limits, mperrors.ErrInvalidInput},
		{"zero part size", 10, 0, S3Limits, mperrors.ErrInvalidInput},
		{"object too large", 5*TiB + 1, 64 * MiB, S3Limits, mperrors.ErrPartSizeConstraint},
		{
			"parts would exceed ceiling",
			10 * GiB,
			1 * GiB,
			Limits{MinPartSize: 1 * MiB, MaxPartSize: 1 * GiB, MaxParts: 5},
			mperrors.ErrPartSizeConstraint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.fileSize, tt.partSize, tt.limits)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestEffectivePartSize(t *testing.T) {
	assert.Equal(t, 5*MiB, EffectivePartSize(50*MiB, 1*MiB, S3Limits))
	assert.Equal(t, 5*GiB, EffectivePartSize(50*GiB, 10*GiB, S3Limits))
	assert.Equal(t, 64*MiB, EffectivePartSize(1*GiB, 64*MiB, S3Limits))
	// 10,001 MiB over 10,000 parts rounds up to the next byte above 1 MiB, then the floor wins
	assert.Equal(t, 5*MiB, EffectivePartSize(10_001*MiB, 1*MiB, S3Limits))
	assert.Equal(t, (200_001*MiB+9_999)/10_000, EffectivePartSize(200_001*MiB, 5*MiB, S3Limits))
}
