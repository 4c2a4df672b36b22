package domain

import "fmt"

// CompressionMode selects the unit of work handed to the compressor.
type CompressionMode uint8

const (
	// CompressionModeNone disables compression entirely. Messages are written
	// straight through to the storage backend.
	CompressionModeNone CompressionMode = iota + 1

	// CompressionModeFile compresses each bag file as a whole after it has
	// been closed by a split or by the final close.
	CompressionModeFile

	// CompressionModeMessage compresses each serialized message individually
	// before it is written to the storage backend.
	CompressionModeMessage
)

// String returns the canonical upper-case name of the mode as it appears in
// the persisted bag metadata.
func (m CompressionMode) String() string {
	switch m {
	case CompressionModeNone:
		return "NONE"
	case CompressionModeFile:
		return "FILE"
	case CompressionModeMessage:
		return "MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// IsValid checks if the CompressionMode is a known mode.
func (m CompressionMode) IsValid() bool {
	return m >= CompressionModeNone && m <= CompressionModeMessage
}

// CompressionModeFromString parses the canonical mode name back into a
// CompressionMode. The inverse of CompressionMode.String.
func CompressionModeFromString(mode string) (CompressionMode, error) {
	switch mode {
	case "NONE", "":
		return CompressionModeNone, nil
	case "FILE":
		return CompressionModeFile, nil
	case "MESSAGE":
		return CompressionModeMessage, nil
	default:
		return 0, fmt.Errorf("unknown compression mode: %q", mode)
	}
}

// CompressionOptions configures the compression behavior of the bag writer.
// The options are consumed once at open time and are immutable afterwards.
type CompressionOptions struct {
	// CompressionFormat identifies the compressor to resolve from the
	// compression factory, e.g. "zstd" or "gz". The identifier doubles as the
	// file extension of compressed bag files. Must resolve to a known
	// compressor when Mode is not CompressionModeNone, otherwise open fails.
	CompressionFormat string

	// Mode selects whether whole files or individual messages are compressed.
	Mode CompressionMode

	// QueueSize bounds the number of compression tasks that may be buffered
	// before the caller's write blocks (backpressure, never message drop).
	// A value of 0 degrades the queue to a synchronous hand-off: each task is
	// compressed and persisted before the write call returns.
	QueueSize uint64

	// ThreadCount is the number of worker threads consuming the task queue.
	// Must be at least 1. Default is 4 if set to 0.
	ThreadCount uint64

	// ThreadPriority, when set, is applied as the OS scheduling priority
	// (nice value) of every worker thread right after it starts. A failure to
	// apply the priority is surfaced as a configuration error at open time.
	ThreadPriority *int
}
