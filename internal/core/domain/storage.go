package domain

// StorageOptions configures the storage backend for a single recording.
// The options are constructed by the caller and consumed at open time.
type StorageOptions struct {
	// URI is the base location of the bag. Individual bag files are derived
	// from it by appending a monotonically increasing file index.
	// Must be non-empty.
	URI string

	// StorageID names the storage backend implementation to use.
	// An empty value selects the factory's default backend.
	StorageID string

	// MaxBagfileSize is the size threshold in bytes at which the active bag
	// file is closed and the next one opened. A value of 0 disables size
	// based splitting. When greater than 0 it must be at least the backend's
	// minimum splittable file size, otherwise open fails.
	MaxBagfileSize uint64

	// MaxCacheSize is the number of bytes the backend may buffer in memory
	// before flushing to disk. 0 lets the backend pick its default.
	MaxCacheSize uint64
}
