package domain

import "time"

// MetadataVersion is the format version written into every metadata record.
const MetadataVersion = 1

// FileInformation is the per-file record appended to the bag metadata each
// time a bag file is closed.
type FileInformation struct {
	// Path is the file's path relative to the bag directory. For file-mode
	// compression it already carries the compressor extension.
	Path string `yaml:"path"`

	// StartingTime is the receive time of the first message in the file, or
	// the file open time if the file holds no messages.
	StartingTime time.Time `yaml:"starting_time"`

	// Duration spans from the file's starting time to its last message.
	Duration time.Duration `yaml:"duration"`

	// MessageCount is the number of messages persisted in this file.
	MessageCount uint64 `yaml:"message_count"`
}

// TopicInformation pairs a registered topic with the number of messages
// recorded for it across the whole bag.
type TopicInformation struct {
	Topic        TopicMetadata `yaml:"topic_metadata"`
	MessageCount uint64        `yaml:"message_count"`
}

// BagMetadata is the aggregate record of a recording. It is owned and
// mutated exclusively by the metadata aggregator; every other component only
// ever sees immutable snapshots produced by Clone.
type BagMetadata struct {
	// Version of the metadata format.
	Version int `yaml:"version"`

	// RecordingID uniquely identifies this recording session.
	RecordingID string `yaml:"recording_id"`

	// StorageIdentifier names the storage backend the bag was written with.
	StorageIdentifier string `yaml:"storage_identifier"`

	// RelativeFilePaths lists every bag file created, in creation order,
	// relative to the bag directory.
	RelativeFilePaths []string `yaml:"relative_file_paths"`

	// Files holds one record per closed bag file, in close order.
	Files []FileInformation `yaml:"files"`

	// TopicsWithMessageCount lists registered topics and their counts.
	TopicsWithMessageCount []TopicInformation `yaml:"topics_with_message_count"`

	// MessageCount is the total number of messages written across all files.
	MessageCount uint64 `yaml:"message_count"`

	// CompressionFormat is the compressor identifier, empty when
	// compression is disabled.
	CompressionFormat string `yaml:"compression_format"`

	// CompressionMode is the canonical mode name, see CompressionMode.String.
	CompressionMode string `yaml:"compression_mode"`

	// StartingTime is when the recording was opened.
	StartingTime time.Time `yaml:"starting_time"`

	// Duration spans the whole recording.
	Duration time.Duration `yaml:"duration"`
}

// Clone returns a deep copy of the metadata. Snapshots handed to external
// sinks are always clones so sinks can never mutate the aggregator's state.
func (m *BagMetadata) Clone() *BagMetadata {
	clone := *m

	clone.RelativeFilePaths = make([]string, len(m.RelativeFilePaths))
	copy(clone.RelativeFilePaths, m.RelativeFilePaths)

	clone.Files = make([]FileInformation, len(m.Files))
	copy(clone.Files, m.Files)

	clone.TopicsWithMessageCount = make([]TopicInformation, len(m.TopicsWithMessageCount))
	copy(clone.TopicsWithMessageCount, m.TopicsWithMessageCount)

	return &clone
}
