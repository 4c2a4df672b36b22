package compression

import (
	"fmt"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
	"github.com/iamNilotpal/bagwriter/internal/core/ports"
)

// task is a unit of deferred compression work: either a serialized message
// destined for the active bag file, or a just-closed bag file path.
// Ownership transfers into the queue on submission; exactly one worker runs
// the task and exactly the committer observes its completion.
type task struct {
	// Exactly one of message / filePath is set.
	message  *domain.SerializedBagMessage
	filePath string

	// Result of the compression step, filled in by the worker.
	result         *domain.SerializedBagMessage
	compressedPath string
	err            error

	// done is closed by the worker once compression finished (success or
	// failure). The committer waits on it to preserve submission order.
	done chan struct{}

	// committed, when non-nil, is closed by the committer after the task's
	// storage hand-off completed. Used for synchronous submission and for
	// flush barriers.
	committed chan struct{}

	// barrier tasks carry no work; they only mark a point in the ordered
	// stream that the committer acknowledges via committed.
	barrier bool
}

// run executes the compression step on a worker thread.
func (t *task) run(compressor ports.CompressionPort) {
	if t.message != nil {
		data, err := compressor.Compress(t.message.SerializedData)
		if err != nil {
			t.err = fmt.Errorf("failed to compress message for topic %q : %w", t.message.TopicName, err)
			return
		}
		t.result = &domain.SerializedBagMessage{
			TopicName:      t.message.TopicName,
			TimeStamp:      t.message.TimeStamp,
			SerializedData: data,
		}
		return
	}

	path, err := compressor.CompressFile(t.filePath)
	if err != nil {
		t.err = fmt.Errorf("failed to compress bag file %q : %w", t.filePath, err)
		return
	}
	t.compressedPath = path
}
