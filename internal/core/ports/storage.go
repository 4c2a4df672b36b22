package ports

import "github.com/iamNilotpal/bagwriter/internal/core/domain"

// StoragePort is the capability surface of a single opened bag file.
// Implementations persist serialized messages; they are never called
// concurrently for writes, since the writer serializes every write through a
// single hand-off point even when compression runs in parallel.
type StoragePort interface {
	// Write persists one serialized message to the active bag file.
	Write(message *domain.SerializedBagMessage) error

	// CreateTopic registers a topic with the backend before messages for it
	// are written.
	CreateTopic(topic *domain.TopicMetadata) error

	// RemoveTopic removes a previously registered topic.
	RemoveTopic(topic *domain.TopicMetadata) error

	// GetBagfileSize reports the current size of the active bag file in the
	// backend's splitting units.
	GetBagfileSize() (uint64, error)

	// GetRelativeFilePath returns the bag file's path relative to the bag
	// directory.
	GetRelativeFilePath() string

	// UpdateMetadata hands the backend an immutable metadata snapshot at a
	// lifecycle point (open, split close, split open, final close).
	UpdateMetadata(metadata *domain.BagMetadata) error

	// Close flushes and closes the bag file. The handle is unusable after.
	Close() error
}

// StorageFactoryPort opens storage backends and exposes backend limits that
// must be known before any file is created.
type StorageFactoryPort interface {
	// OpenReadWrite opens (creating if necessary) the bag file named by the
	// options URI and returns its handle.
	OpenReadWrite(options *domain.StorageOptions) (StoragePort, error)

	// GetMinimumSplitFileSize is the smallest MaxBagfileSize the backend can
	// split at. Smaller requested split sizes fail validation at open.
	GetMinimumSplitFileSize() uint64
}
