// Package metadata maintains the running bag statistics and produces the
// immutable snapshots emitted at lifecycle events. The aggregator owns the
// only mutable copy of the metadata; external sinks exclusively receive
// deep copies.
package metadata

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
)

// Options carries the recording-wide fields fixed at open time.
type Options struct {
	StorageIdentifier string
	CompressionFormat string
	CompressionMode   domain.CompressionMode
}

// Aggregator accumulates per-file and per-bag statistics. All methods are
// safe for concurrent use, though in practice only the writer mutates it at
// defined lifecycle points.
type Aggregator struct {
	mu       sync.Mutex
	metadata *domain.BagMetadata

	// Per-file accumulators, reset on every file open.
	fileStartingTime time.Time
	fileLastMessage  time.Time
	fileMessageCount uint64
}

// NewAggregator initializes the bag metadata for a fresh recording:
// message count zero, no files, compression mode set.
func NewAggregator(opts Options) *Aggregator {
	now := time.Now()
	return &Aggregator{
		metadata: &domain.BagMetadata{
			Version:           domain.MetadataVersion,
			RecordingID:       uuid.NewString(),
			StartingTime:      now,
			StorageIdentifier: opts.StorageIdentifier,
			CompressionFormat: opts.CompressionFormat,
			CompressionMode:   opts.CompressionMode.String(),
		},
	}
}

// OnFileOpened records the relative path of a newly opened bag file and
// resets the per-file accumulators.
func (a *Aggregator) OnFileOpened(relativePath string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metadata.RelativeFilePaths = append(a.metadata.RelativeFilePaths, relativePath)

	now := time.Now()
	a.fileStartingTime = now
	a.fileLastMessage = now
	a.fileMessageCount = 0
}

// OnFileClosed appends the per-file record for the bag file that just
// closed. The relative path must match the one passed to OnFileOpened.
func (a *Aggregator) OnFileClosed(relativePath string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metadata.Files = append(a.metadata.Files, domain.FileInformation{
		Path:         relativePath,
		StartingTime: a.fileStartingTime,
		Duration:     a.fileLastMessage.Sub(a.fileStartingTime),
		MessageCount: a.fileMessageCount,
	})
}

// OnMessageWritten accounts one message for the bag, the active file and
// the message's topic. Called at write accounting time, before any deferred
// compression completes.
func (a *Aggregator) OnMessageWritten(topicName string, timeStamp int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metadata.MessageCount++
	a.fileMessageCount++
	a.fileLastMessage = time.Unix(0, timeStamp)

	for i := range a.metadata.TopicsWithMessageCount {
		if a.metadata.TopicsWithMessageCount[i].Topic.Name == topicName {
			a.metadata.TopicsWithMessageCount[i].MessageCount++
			return
		}
	}
}

// OnTopicCreated registers a topic with a zero message count.
// Re-registering an existing topic is a no-op.
func (a *Aggregator) OnTopicCreated(topic *domain.TopicMetadata) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.metadata.TopicsWithMessageCount {
		if a.metadata.TopicsWithMessageCount[i].Topic.Name == topic.Name {
			return
		}
	}

	a.metadata.TopicsWithMessageCount = append(
		a.metadata.TopicsWithMessageCount,
		domain.TopicInformation{Topic: *topic},
	)
}

// OnTopicRemoved drops a topic and its count from the metadata.
func (a *Aggregator) OnTopicRemoved(topicName string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	topics := a.metadata.TopicsWithMessageCount
	for i := range topics {
		if topics[i].Topic.Name == topicName {
			a.metadata.TopicsWithMessageCount = append(topics[:i], topics[i+1:]...)
			return
		}
	}
}

// Snapshot returns an immutable deep copy of the current aggregate state
// with the duration brought up to date. Sinks can hold onto the snapshot
// indefinitely without observing later mutations.
func (a *Aggregator) Snapshot() *domain.BagMetadata {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metadata.Duration = time.Since(a.metadata.StartingTime)
	return a.metadata.Clone()
}
