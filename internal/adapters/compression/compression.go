// Package compression provides the compressor registry and the built-in
// compressor implementations resolved by identifier at open time.
package compression

import (
	"fmt"

	"github.com/iamNilotpal/bagwriter/internal/core/ports"
)

const (
	// ZstdFormat identifies the zstd compressor. Compressed bag files carry
	// the ".zstd" extension.
	ZstdFormat = "zstd"

	// GzipFormat identifies the parallel gzip compressor. Compressed bag
	// files carry the ".gz" extension.
	GzipFormat = "gz"
)

// Factory resolves compressor implementations by identifier.
// It implements ports.CompressionFactoryPort.
type Factory struct{}

// NewFactory creates a compression factory with the built-in compressors.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateCompressor returns a ready-to-use compressor for the identifier, or
// an error for identifiers outside the supported set. The error is what the
// writer converts into a configuration failure at open.
func (f *Factory) CreateCompressor(identifier string) (ports.CompressionPort, error) {
	switch identifier {
	case ZstdFormat:
		return NewZstdCompressor(DefaultZstdOptions())
	case GzipFormat:
		return NewGzipCompressor(), nil
	default:
		return nil, fmt.Errorf("unsupported compression format: %q", identifier)
	}
}

// SupportedFormats lists the identifiers the factory can resolve.
func (f *Factory) SupportedFormats() []string {
	return []string{ZstdFormat, GzipFormat}
}
