package ports

// Defines the interface for compression operations.
// This allows us to swap compression algorithms without changing core logic.
type CompressionPort interface {
	// Compress reduces the size of a single serialized message payload.
	// Returns compressed data and any error that occurred.
	Compress(data []byte) ([]byte, error)

	// CompressFile compresses a whole closed bag file in place, removing the
	// original and returning the path of the compressed file. The returned
	// path carries the compressor identifier as its extension.
	CompressFile(path string) (string, error)

	// Identifier returns the registry identifier of this compressor.
	// It doubles as the file extension of compressed bag files.
	Identifier() string

	// Close cleans up compression resources.
	Close() error
}

// CompressionFactoryPort resolves compressors by identifier. Unknown
// identifiers must fail resolution so that open can reject bad options
// before any file is created.
type CompressionFactoryPort interface {
	CreateCompressor(identifier string) (CompressionPort, error)
}
