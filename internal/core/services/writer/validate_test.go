package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
	"github.com/iamNilotpal/bagwriter/pkg/errors"
)

func TestValidateCompressionOptions(t *testing.T) {
	tests := []struct {
		name      string
		opts      domain.CompressionOptions
		wantField string
	}{
		{
			name: "valid message mode",
			opts: domain.CompressionOptions{
				CompressionFormat: "zstd",
				Mode:              domain.CompressionModeMessage,
				ThreadCount:       4,
			},
		},
		{
			name: "none mode needs no format",
			opts: domain.CompressionOptions{Mode: domain.CompressionModeNone, ThreadCount: 1},
		},
		{
			name:      "unknown mode",
			opts:      domain.CompressionOptions{Mode: domain.CompressionMode(9), ThreadCount: 1},
			wantField: "mode",
		},
		{
			name: "missing format",
			opts: domain.CompressionOptions{
				Mode:        domain.CompressionModeFile,
				ThreadCount: 1,
			},
			wantField: "compressionFormat",
		},
		{
			name: "blank format",
			opts: domain.CompressionOptions{
				CompressionFormat: "   ",
				Mode:              domain.CompressionModeFile,
				ThreadCount:       1,
			},
			wantField: "compressionFormat",
		},
		{
			name: "zero threads",
			opts: domain.CompressionOptions{
				CompressionFormat: "zstd",
				Mode:              domain.CompressionModeMessage,
			},
			wantField: "threadCount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCompressionOptions(&tt.opts)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			validation := errors.AsValidationError(err)
			require.NotNil(t, validation)
			assert.Equal(t, tt.wantField, validation.Field)
		})
	}
}

func TestPrepareDefaults(t *testing.T) {
	prepared := prepareDefaults(nil)
	assert.Equal(t, domain.CompressionModeNone, prepared.Mode)
	assert.Equal(t, uint64(DefaultThreadCount), prepared.ThreadCount)

	original := &domain.CompressionOptions{
		CompressionFormat: "zstd",
		Mode:              domain.CompressionModeMessage,
		QueueSize:         0,
	}
	prepared = prepareDefaults(original)
	assert.Equal(t, uint64(DefaultThreadCount), prepared.ThreadCount)
	assert.Equal(t, uint64(0), prepared.QueueSize)

	// The caller's options are never mutated.
	assert.Equal(t, uint64(0), original.ThreadCount)

	explicit := &domain.CompressionOptions{
		CompressionFormat: "zstd",
		Mode:              domain.CompressionModeMessage,
		ThreadCount:       2,
	}
	assert.Equal(t, uint64(2), prepareDefaults(explicit).ThreadCount)
}
