// Package compression implements the worker pool that executes compression
// off the caller's write path while preserving per-file write ordering.
//
// Tasks flow through two channels: workers pull from the task channel and
// compress in parallel; a single committer goroutine pulls the same tasks in
// submission order, waits for each one's compression to finish, and performs
// the storage hand-off. Storage therefore observes writes in exactly the
// order messages were submitted, no matter how compression completes across
// workers.
package compression

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
	"github.com/iamNilotpal/bagwriter/internal/core/ports"
)

// ErrPoolClosed indicates a submission after the pool started draining.
var ErrPoolClosed = errors.New("compression pool is closed")

// Options configures a worker pool for one open bag.
type Options struct {
	// QueueSize bounds buffered tasks; 0 makes every submission synchronous.
	QueueSize uint64

	// ThreadCount is the number of compression workers. Must be >= 1.
	ThreadCount uint64

	// ThreadPriority, when set, is applied to each worker's OS thread right
	// after it starts. Any failure aborts pool startup.
	ThreadPriority *int

	// Compressor executes the actual compression.
	Compressor ports.CompressionPort

	// Write is the single serialization point into the storage backend.
	// Only the committer ever calls it.
	Write func(message *domain.SerializedBagMessage) error

	Logger *zap.SugaredLogger
}

// Pool is a fixed set of worker threads consuming a bounded task queue.
// It is driven by a single producer (the writer); Submit, Flush and
// DrainAndJoin must not race each other.
type Pool struct {
	opts Options

	tasks   chan *task // Consumed by workers, compression fan-out.
	ordered chan *task // Consumed by the committer, in submission order.

	workers       *errgroup.Group
	committerDone chan struct{}

	closed  atomic.Bool
	drained atomic.Bool

	mu   sync.Mutex
	errs error // Accumulated task and hand-off failures.
}

// NewPool creates a pool; no goroutines run until Start.
func NewPool(opts Options) *Pool {
	return &Pool{
		opts:          opts,
		tasks:         make(chan *task, opts.QueueSize),
		ordered:       make(chan *task, opts.QueueSize),
		committerDone: make(chan struct{}),
	}
}

// Start launches the committer and all worker threads. When a thread
// priority is configured, Start blocks until every worker reported whether
// the priority could be applied, and fails (after shutting the pool back
// down) if any application failed. Failure to set priority is a hard error,
// not a silent no-op.
func (p *Pool) Start() error {
	go p.commit()

	startup := make(chan error, p.opts.ThreadCount)
	p.workers = &errgroup.Group{}

	for i := uint64(0); i < p.opts.ThreadCount; i++ {
		p.workers.Go(func() error {
			// Scheduling priority is a property of the OS thread, so the
			// goroutine must stay pinned to it for the pool's lifetime.
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			if p.opts.ThreadPriority != nil {
				if err := setThreadPriority(*p.opts.ThreadPriority); err != nil {
					startup <- fmt.Errorf("failed to set thread priority %d : %w", *p.opts.ThreadPriority, err)
					return err
				}
			}
			startup <- nil

			for t := range p.tasks {
				t.run(p.opts.Compressor)
				close(t.done)
			}
			return nil
		})
	}

	var startupErr error
	for i := uint64(0); i < p.opts.ThreadCount; i++ {
		startupErr = multierr.Append(startupErr, <-startup)
	}
	if startupErr != nil {
		// Tear the half-started pool down before reporting.
		p.closed.Store(true)
		p.drained.Store(true)
		close(p.tasks)
		_ = p.workers.Wait()
		close(p.ordered)
		<-p.committerDone
		return startupErr
	}

	return nil
}

// SubmitMessage enqueues a serialized message for compression and ordered
// persistence. Blocks when the queue is full (backpressure, never drop);
// with QueueSize 0 it additionally blocks until the message has been
// compressed and handed to storage.
func (p *Pool) SubmitMessage(message *domain.SerializedBagMessage) error {
	return p.submit(&task{message: message})
}

// SubmitFile enqueues a just-closed bag file for whole-file compression.
func (p *Pool) SubmitFile(path string) error {
	return p.submit(&task{filePath: path})
}

func (p *Pool) submit(t *task) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	t.done = make(chan struct{})
	synchronous := p.opts.QueueSize == 0
	if synchronous {
		t.committed = make(chan struct{})
	}

	// Ordered first: the committer must see tasks in submission order. The
	// bounded task channel below is what exerts backpressure on the caller.
	p.ordered <- t
	p.tasks <- t

	if synchronous {
		<-t.committed
		return p.takeErrors()
	}
	return nil
}

// Flush blocks until every task submitted so far has been compressed and
// handed to storage, then reports all failures observed since the previous
// synchronization point. Used by the writer before closing a bag file so the
// closing file's content is complete.
func (p *Pool) Flush() error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	barrier := &task{barrier: true, committed: make(chan struct{})}
	p.ordered <- barrier
	<-barrier.committed

	return p.takeErrors()
}

// DrainAndJoin stops accepting new tasks, waits for the queue to empty and
// all workers to finish, joins them, and returns every failure collected
// since the last synchronization point. Safe to call once per pool; later
// calls are no-ops. Must run before the storage backend is closed for
// message tasks, and after the last file task was submitted for file tasks.
func (p *Pool) DrainAndJoin() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.drained.Store(true)

	close(p.tasks)
	workerErr := p.workers.Wait()
	close(p.ordered)
	<-p.committerDone

	return multierr.Append(p.takeErrors(), workerErr)
}

// commit is the single serialization point into storage. It consumes tasks
// in submission order, waits for each one's compression to complete, and
// performs the write. Compression failures never abort the stream: the
// failure is recorded and surfaced at the next synchronization point.
func (p *Pool) commit() {
	defer close(p.committerDone)

	for t := range p.ordered {
		if t.barrier {
			close(t.committed)
			continue
		}

		<-t.done

		switch {
		case t.err != nil:
			p.recordError(t.err)
		case t.result != nil:
			if err := p.opts.Write(t.result); err != nil {
				p.recordError(fmt.Errorf("failed to write compressed message : %w", err))
			}
		default:
			p.opts.Logger.Debugw("compressed bag file", "path", t.compressedPath)
		}

		if t.committed != nil {
			close(t.committed)
		}
	}
}

func (p *Pool) recordError(err error) {
	p.opts.Logger.Errorw("compression task failed", "error", err)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = multierr.Append(p.errs, err)
}

// takeErrors returns and clears the accumulated failures so each
// synchronization point reports a task failure exactly once.
func (p *Pool) takeErrors() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	errs := p.errs
	p.errs = nil
	return errs
}
