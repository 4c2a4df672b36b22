package writer

import (
	"fmt"
	"strings"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
	"github.com/iamNilotpal/bagwriter/pkg/errors"
)

// ValidateCompressionOptions checks the compression options against
// acceptable bounds. Pure validation, performed once at open; whether the
// compressor identifier resolves is checked separately against the
// compression factory.
func ValidateCompressionOptions(opts *domain.CompressionOptions) error {
	if !opts.Mode.IsValid() {
		return errors.NewValidationError(
			"mode", opts.Mode, fmt.Errorf("unknown compression mode: %d", opts.Mode),
		)
	}

	if opts.Mode != domain.CompressionModeNone && strings.TrimSpace(opts.CompressionFormat) == "" {
		return errors.NewValidationError(
			"compressionFormat", opts.CompressionFormat,
			fmt.Errorf("compression format is required for mode %s", opts.Mode),
		)
	}

	if opts.ThreadCount < 1 {
		return errors.NewValidationError(
			"threadCount", opts.ThreadCount, fmt.Errorf("thread count must be at least 1"),
		)
	}

	return nil
}

func validateStorageOptions(opts *domain.StorageOptions) error {
	if opts == nil {
		return errors.NewValidationError("storageOptions", nil, fmt.Errorf("storage options are required"))
	}

	if strings.TrimSpace(opts.URI) == "" {
		return errors.NewValidationError("uri", opts.URI, fmt.Errorf("storage uri must not be empty"))
	}

	return nil
}
