package compression

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/iamNilotpal/bagwriter/pkg/pool"
)

// Compression level constants define the trade-off between compression ratio and speed.
// Higher levels provide better compression at the cost of increased CPU usage and time.
const (
	FastestLevel uint8 = 1 // Optimized for speed with minimal compression.
	DefaultLevel uint8 = 3 // Balanced between speed and compression ratio.
	BestLevel    uint8 = 4 // Maximum compression ratio, higher CPU usage.
)

// fileCopyBufferSize is the buffer size used when streaming a whole bag file
// through the encoder.
const fileCopyBufferSize = 1 << 20 // 1MB

// ZstdOptions configures the zstd compressor.
type ZstdOptions struct {
	// Level must be between FastestLevel and BestLevel.
	Level uint8

	// EncoderConcurrency specifies the number of concurrent compression
	// operations. Defaults to the number of CPU cores if set to 0.
	EncoderConcurrency uint8
}

// DefaultZstdOptions returns recommended settings that balance compression
// ratio and throughput.
func DefaultZstdOptions() ZstdOptions {
	return ZstdOptions{
		Level:              DefaultLevel,
		EncoderConcurrency: uint8(runtime.NumCPU()),
	}
}

// ZstdCompressor implements ports.CompressionPort using the zstd algorithm.
// It provides thread-safe compression for both individual message payloads
// and whole closed bag files.
type ZstdCompressor struct {
	level   uint8
	mu      sync.RWMutex     // Protects concurrent access to the encoder.
	encoder *zstd.Encoder    // Thread-safe encoder instance.
	buffers *pool.BufferPool // Copy buffers for file compression.
}

// NewZstdCompressor creates a new zstd compressor with the specified options.
//
// Returns an error if:
// - The compression level is invalid
// - The encoder initialization fails
func NewZstdCompressor(opts ZstdOptions) (*ZstdCompressor, error) {
	if opts.Level < FastestLevel || opts.Level > BestLevel {
		return nil, fmt.Errorf(
			"compression level must be between %d and %d, got %d", FastestLevel, BestLevel, opts.Level,
		)
	}
	if opts.EncoderConcurrency == 0 {
		opts.EncoderConcurrency = uint8(runtime.NumCPU())
	}

	encoder, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderLevel(zstd.EncoderLevel(opts.Level)),
		zstd.WithEncoderConcurrency(int(opts.EncoderConcurrency)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	return &ZstdCompressor{
		encoder: encoder,
		level:   opts.Level,
		buffers: pool.NewBufferPool(fileCopyBufferSize),
	}, nil
}

// Compress compresses a single serialized message payload.
// The operation is thread-safe and can be called concurrently from multiple
// compression workers.
func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	z.mu.RLock()
	defer z.mu.RUnlock()

	return z.encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// CompressFile streams the whole closed bag file through the encoder,
// producing "<path>.zstd" and removing the original on success.
func (z *ZstdCompressor) CompressFile(path string) (string, error) {
	z.mu.RLock()
	defer z.mu.RUnlock()

	source, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open bag file : %w", err)
	}
	defer source.Close()

	compressedPath := path + "." + ZstdFormat
	destination, err := os.OpenFile(compressedPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create compressed file : %w", err)
	}

	writer, err := zstd.NewWriter(destination, zstd.WithEncoderLevel(zstd.EncoderLevel(z.level)))
	if err != nil {
		destination.Close()
		return "", fmt.Errorf("failed to create file encoder : %w", err)
	}

	buffer := z.buffers.Get()
	defer z.buffers.Put(buffer)

	if _, err := io.CopyBuffer(writer, source, buffer.Bytes()[:buffer.Cap()]); err != nil {
		writer.Close()
		destination.Close()
		return "", fmt.Errorf("failed to compress bag file : %w", err)
	}

	if err := writer.Close(); err != nil {
		destination.Close()
		return "", fmt.Errorf("failed to finalize compressed file : %w", err)
	}
	if err := destination.Close(); err != nil {
		return "", fmt.Errorf("failed to close compressed file : %w", err)
	}

	// The uncompressed original is no longer part of the bag.
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove uncompressed file : %w", err)
	}

	return compressedPath, nil
}

// Identifier returns the registry identifier of the compressor.
func (z *ZstdCompressor) Identifier() string {
	return ZstdFormat
}

// Close releases all resources used by the compressor instance.
// After closing, the instance cannot be used for compression.
func (z *ZstdCompressor) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()

	if err := z.encoder.Close(); err != nil {
		return fmt.Errorf("error closing encoder : %w", err)
	}
	return nil
}
