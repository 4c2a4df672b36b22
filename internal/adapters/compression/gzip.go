package compression

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"

	"github.com/iamNilotpal/bagwriter/pkg/pool"
)

// GzipCompressor implements ports.CompressionPort using parallel gzip.
// pgzip splits the input into blocks compressed on multiple goroutines,
// which makes it a good fit for whole-file compression of rotated bags.
type GzipCompressor struct {
	buffers *pool.BufferPool
}

// NewGzipCompressor creates a gzip compressor with default settings.
func NewGzipCompressor() *GzipCompressor {
	return &GzipCompressor{buffers: pool.NewBufferPool(fileCopyBufferSize)}
}

// Compress compresses a single serialized message payload.
func (g *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var compressed bytes.Buffer

	writer := pgzip.NewWriter(&compressed)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to compress payload : %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize payload : %w", err)
	}

	return compressed.Bytes(), nil
}

// CompressFile streams the whole closed bag file through pgzip, producing
// "<path>.gz" and removing the original on success.
func (g *GzipCompressor) CompressFile(path string) (string, error) {
	source, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open bag file : %w", err)
	}
	defer source.Close()

	compressedPath := path + "." + GzipFormat
	destination, err := os.OpenFile(compressedPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create compressed file : %w", err)
	}

	writer := pgzip.NewWriter(destination)

	buffer := g.buffers.Get()
	defer g.buffers.Put(buffer)

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

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove uncompressed file : %w", err)
	}

	return compressedPath, nil
}

// Identifier returns the registry identifier of the compressor.
func (g *GzipCompressor) Identifier() string {
	return GzipFormat
}

// Close cleans up compression resources. pgzip writers are created per
// operation, so there is nothing long-lived to release.
func (g *GzipCompressor) Close() error {
	return nil
}
