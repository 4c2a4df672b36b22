package writer

import "github.com/iamNilotpal/bagwriter/internal/core/domain"

const (
	// DefaultThreadCount is the worker count used when the options leave it
	// unset.
	DefaultThreadCount uint64 = 4
)

// prepareDefaults copies the caller's compression options and fills in the
// defaults. QueueSize is deliberately left untouched: 0 is a meaningful
// value (synchronous hand-off), not an omission.
func prepareDefaults(opts *domain.CompressionOptions) *domain.CompressionOptions {
	if opts == nil {
		opts = &domain.CompressionOptions{}
	}
	prepared := *opts

	if prepared.Mode == 0 {
		prepared.Mode = domain.CompressionModeNone
	}
	if prepared.ThreadCount == 0 {
		prepared.ThreadCount = DefaultThreadCount
	}

	return &prepared
}
