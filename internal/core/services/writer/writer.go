// Package writer implements the sequential compression bag writer: the
// lifecycle and rotation state machine that routes messages through the
// optional compression pipeline, triggers splits, and drives metadata
// emission on open, split and close.
package writer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
	"github.com/iamNilotpal/bagwriter/internal/core/ports"
	compressionsvc "github.com/iamNilotpal/bagwriter/internal/core/services/compression"
	metadatasvc "github.com/iamNilotpal/bagwriter/internal/core/services/metadata"
	"github.com/iamNilotpal/bagwriter/internal/core/services/rotation"
	"github.com/iamNilotpal/bagwriter/pkg/errors"
	"github.com/iamNilotpal/bagwriter/pkg/system"
)

// Options wires the writer to its collaborators. All factories are
// capability ports; none of them is implemented by this package.
type Options struct {
	// Compression configures the compression pipeline. A nil value means no
	// compression.
	Compression *domain.CompressionOptions

	CompressionFactory ports.CompressionFactoryPort
	StorageFactory     ports.StorageFactoryPort
	ConverterFactory   ports.ConverterFactoryPort
	MetadataIO         ports.MetadataIOPort

	Logger *zap.SugaredLogger
}

// Writer is the orchestrator of a single recording. It owns the active
// storage handle, the worker pool, the rotator and the metadata aggregator.
//
// State machine: Closed -> Open(file 0) via Open, Open -> Open(next file)
// via SplitBagfile, Open -> Closed via Close. Closing a closed writer is a
// no-op.
type Writer struct {
	opts        Options
	compression *domain.CompressionOptions
	storageOpts *domain.StorageOptions
	logger      *zap.SugaredLogger

	compressor ports.CompressionPort
	converter  ports.ConverterPort
	pool       *compressionsvc.Pool
	aggregator *metadatasvc.Aggregator
	rotator    *rotation.Rotator

	fileIndex uint64

	// mu serializes the public operations; storageMu guards the active
	// storage handle separately so the pool's committer can write while mu
	// is held during a flush.
	mu        sync.Mutex
	storageMu sync.Mutex
	storage   ports.StoragePort
	open      bool
}

// New creates a closed writer. Options are validated at Open.
func New(opts Options) *Writer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Writer{opts: opts, logger: logger}
}

// Open validates all options, opens the first bag file, emits the initial
// metadata snapshot and, when compression is enabled, starts the worker
// pool. The writer remains Closed on any failure.
func (w *Writer) Open(
	ctx context.Context, storageOpts *domain.StorageOptions, converterOpts *domain.ConverterOptions,
) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.open {
		return errors.New(errors.ErrorConfiguration, "open", fmt.Errorf("writer is already open"))
	}

	if err := validateStorageOptions(storageOpts); err != nil {
		return errors.New(errors.ErrorConfiguration, "open", err)
	}

	compression := prepareDefaults(w.opts.Compression)
	if err := ValidateCompressionOptions(compression); err != nil {
		return errors.New(errors.ErrorConfiguration, "open", err)
	}

	// Resolve the compressor capability first: an unknown identifier must
	// fail before any file is created, regardless of storage options.
	var compressor ports.CompressionPort
	if compression.Mode != domain.CompressionModeNone {
		created, err := w.opts.CompressionFactory.CreateCompressor(compression.CompressionFormat)
		if err != nil {
			return errors.New(errors.ErrorConfiguration, "open", err)
		}
		compressor = created
	}

	// Degenerate split sizes are rejected up front rather than producing
	// single-message files.
	if storageOpts.MaxBagfileSize > 0 {
		if minimum := w.opts.StorageFactory.GetMinimumSplitFileSize(); storageOpts.MaxBagfileSize < minimum {
			w.closeCompressor(compressor)
			return errors.New(errors.ErrorConfiguration, "open", fmt.Errorf(
				"max bagfile size (%d) is below the storage minimum split size (%d)",
				storageOpts.MaxBagfileSize, minimum,
			))
		}
	}

	converter, err := w.loadConverter(converterOpts)
	if err != nil {
		w.closeCompressor(compressor)
		return errors.New(errors.ErrorConfiguration, "open", err)
	}

	rotator := rotation.NewRotator(storageOpts.MaxBagfileSize)
	storage, err := w.openStorage(storageOpts, rotator, 0)
	if err != nil {
		w.closeCompressor(compressor)
		return errors.New(errors.ErrorStorage, "open", err)
	}

	aggregator := metadatasvc.NewAggregator(metadatasvc.Options{
		StorageIdentifier: storageOpts.StorageID,
		CompressionFormat: compression.CompressionFormat,
		CompressionMode:   compression.Mode,
	})

	var pool *compressionsvc.Pool
	if compression.Mode != domain.CompressionModeNone {
		pool = compressionsvc.NewPool(compressionsvc.Options{
			QueueSize:      compression.QueueSize,
			ThreadCount:    compression.ThreadCount,
			ThreadPriority: compression.ThreadPriority,
			Compressor:     compressor,
			Write:          w.writeToStorage,
			Logger:         w.logger,
		})
		if err := pool.Start(); err != nil {
			w.storageMu.Lock()
			w.storage.Close()
			w.storage = nil
			w.storageMu.Unlock()
			w.closeCompressor(compressor)
			return errors.New(errors.ErrorConfiguration, "open", err)
		}
	}

	w.compression = compression
	w.storageOpts = storageOpts
	w.compressor = compressor
	w.converter = converter
	w.rotator = rotator
	w.aggregator = aggregator
	w.pool = pool
	w.fileIndex = 0

	// Metadata event 1: baseline snapshot with zero messages, before any
	// data is written.
	aggregator.OnFileOpened(w.relativePath(0))
	if err := storage.UpdateMetadata(aggregator.Snapshot()); err != nil {
		w.failLocked()
		return errors.New(errors.ErrorStorage, "open", err)
	}

	w.open = true
	w.logger.Infow("bag writer opened",
		"uri", storageOpts.URI,
		"compression_mode", compression.Mode.String(),
		"compression_format", compression.CompressionFormat,
	)
	return nil
}

// CreateTopic registers a topic with the storage backend and the metadata
// aggregator. Fails when the writer is closed.
func (w *Writer) CreateTopic(topic *domain.TopicMetadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return errors.New(errors.ErrorNotOpen, "create-topic", fmt.Errorf("bag writer is not open"))
	}

	w.storageMu.Lock()
	err := w.storage.CreateTopic(topic)
	w.storageMu.Unlock()
	if err != nil {
		return errors.New(errors.ErrorStorage, "create-topic", err)
	}

	w.aggregator.OnTopicCreated(topic)
	return nil
}

// RemoveTopic removes a previously registered topic.
func (w *Writer) RemoveTopic(topic *domain.TopicMetadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return errors.New(errors.ErrorNotOpen, "remove-topic", fmt.Errorf("bag writer is not open"))
	}

	w.storageMu.Lock()
	err := w.storage.RemoveTopic(topic)
	w.storageMu.Unlock()
	if err != nil {
		return errors.New(errors.ErrorStorage, "remove-topic", err)
	}

	w.aggregator.OnTopicRemoved(topic.Name)
	return nil
}

// Write routes one message to the active bag file. The rotator is consulted
// first and a due split is performed before the message lands in the
// successor file. In message compression mode the message is then submitted
// to the worker pool (blocking only when the bounded queue is full);
// otherwise it is written directly.
func (w *Writer) Write(ctx context.Context, message *domain.SerializedBagMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return errors.New(errors.ErrorNotOpen, "write", fmt.Errorf("bag writer is not open"))
	}

	// Rotation is decided at the write boundary: when the previous write
	// filled the active file, it is split before this message lands. This
	// guarantees K writes against a threshold of one message produce exactly
	// K files and never a trailing empty one.
	if w.storageOpts.MaxBagfileSize > 0 {
		size, err := w.currentBagfileSize()
		if err != nil {
			w.failLocked()
			return errors.New(errors.ErrorStorage, "write", err)
		}
		if w.rotator.ShouldSplit(size) {
			if err := w.splitLocked(); err != nil {
				return err
			}
		}
	}

	persisted := message
	if w.converter != nil {
		converted, err := w.converter.Convert(message)
		if err != nil {
			return errors.New(errors.ErrorStorage, "write", fmt.Errorf("failed to convert message : %w", err))
		}
		persisted = converted
	}

	if w.compression.Mode == domain.CompressionModeMessage {
		if err := w.pool.SubmitMessage(persisted); err != nil {
			return errors.New(errors.ErrorCompression, "write", err)
		}
	} else {
		if err := w.writeToStorage(persisted); err != nil {
			// Storage failures are fatal for the current file: release all
			// resources instead of silently continuing.
			w.failLocked()
			return errors.New(errors.ErrorStorage, "write", err)
		}
	}

	w.aggregator.OnMessageWritten(message.TopicName, message.TimeStamp)
	return nil
}

// SplitBagfile closes the current bag file and opens the next one.
// Explicit caller-invoked splits and size-triggered splits share this path.
func (w *Writer) SplitBagfile(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return errors.New(errors.ErrorNotOpen, "split-bagfile", fmt.Errorf("bag writer is not open"))
	}
	return w.splitLocked()
}

func (w *Writer) splitLocked() error {
	// The closing file's content must be complete before hand-off: wait for
	// every in-flight message task. A task failure here fails the whole
	// split; the writer transitions to Closed so no partial file is ever
	// extended afterwards.
	if w.compression.Mode == domain.CompressionModeMessage {
		if err := w.pool.Flush(); err != nil {
			w.failLocked()
			return errors.New(errors.ErrorCompression, "split-bagfile", err)
		}
	}

	closedRelative := w.relativePath(w.fileIndex)
	closedURI := w.rotator.NextFileURI(w.storageOpts.URI, w.fileIndex)
	w.aggregator.OnFileClosed(closedRelative)

	// Close-marking snapshot, emitted through the closing file's handle.
	w.storageMu.Lock()
	err := w.storage.UpdateMetadata(w.aggregator.Snapshot())
	if err == nil {
		err = w.storage.Close()
		w.storage = nil
	}
	w.storageMu.Unlock()
	if err != nil {
		w.failLocked()
		return errors.New(errors.ErrorStorage, "split-bagfile", err)
	}

	// The closed file itself becomes a compression task in file mode.
	if w.compression.Mode == domain.CompressionModeFile {
		if err := w.pool.SubmitFile(closedURI); err != nil {
			w.failLocked()
			return errors.New(errors.ErrorCompression, "split-bagfile", err)
		}
	}

	w.fileIndex++
	storage, err := w.openStorage(w.storageOpts, w.rotator, w.fileIndex)
	if err != nil {
		w.failLocked()
		return errors.New(errors.ErrorStorage, "split-bagfile", err)
	}

	// Open-marking snapshot for the successor file.
	w.aggregator.OnFileOpened(w.relativePath(w.fileIndex))
	if err := storage.UpdateMetadata(w.aggregator.Snapshot()); err != nil {
		w.failLocked()
		return errors.New(errors.ErrorStorage, "split-bagfile", err)
	}

	w.logger.Infow("bag file split", "closed", closedRelative, "opened", w.relativePath(w.fileIndex))
	return nil
}

// Close drains the worker pool, closes the active bag file and emits the
// final aggregate metadata snapshot through both metadata channels. The
// drain and release sequence runs even when ctx is already canceled; a
// canceled context must never be able to drop acknowledged messages.
// Idempotent: closing an already closed writer is a no-op.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return nil
	}
	w.open = false

	return system.RunWithContext(ctx, func(context.Context) error {
		var errs error

		// Everything queued for the closing file must be on disk before the
		// handle closes; failures are collected, never swallowed.
		if w.pool != nil && w.compression.Mode == domain.CompressionModeMessage {
			if err := w.pool.Flush(); err != nil {
				errs = multierr.Append(errs, errors.New(errors.ErrorCompression, "close", err))
			}
		}

		closedRelative := w.relativePath(w.fileIndex)
		closedURI := w.rotator.NextFileURI(w.storageOpts.URI, w.fileIndex)
		w.aggregator.OnFileClosed(closedRelative)

		// The final aggregate snapshot feeds both channels: the backend's
		// metadata update and the metadata IO sink observe identical counts.
		final := w.aggregator.Snapshot()

		w.storageMu.Lock()
		if w.storage != nil {
			if err := w.storage.UpdateMetadata(final); err != nil {
				errs = multierr.Append(errs, errors.New(errors.ErrorStorage, "close", err))
			}
			if err := w.storage.Close(); err != nil {
				errs = multierr.Append(errs, errors.New(errors.ErrorStorage, "close", err))
			}
			w.storage = nil
		}
		w.storageMu.Unlock()

		if w.pool != nil {
			if w.compression.Mode == domain.CompressionModeFile {
				if err := w.pool.SubmitFile(closedURI); err != nil {
					errs = multierr.Append(errs, errors.New(errors.ErrorCompression, "close", err))
				}
			}
			if err := w.pool.DrainAndJoin(); err != nil {
				errs = multierr.Append(errs, errors.New(errors.ErrorCompression, "close", err))
			}
		}

		if err := w.opts.MetadataIO.WriteMetadata(w.storageOpts.URI, final); err != nil {
			errs = multierr.Append(errs, errors.New(errors.ErrorStorage, "close", err))
		}

		if w.compressor != nil {
			if err := w.compressor.Close(); err != nil {
				errs = multierr.Append(errs, errors.New(errors.ErrorCompression, "close", err))
			}
			w.compressor = nil
		}

		w.logger.Infow("bag writer closed",
			"uri", w.storageOpts.URI,
			"message_count", final.MessageCount,
			"files", len(final.Files),
		)
		return errs
	})
}

// writeToStorage is the single serialization point for storage writes.
// The pool's committer and the direct write path both land here.
func (w *Writer) writeToStorage(message *domain.SerializedBagMessage) error {
	w.storageMu.Lock()
	defer w.storageMu.Unlock()

	if w.storage == nil {
		return fmt.Errorf("storage is closed")
	}
	return w.storage.Write(message)
}

func (w *Writer) currentBagfileSize() (uint64, error) {
	w.storageMu.Lock()
	defer w.storageMu.Unlock()

	if w.storage == nil {
		return 0, fmt.Errorf("storage is closed")
	}
	return w.storage.GetBagfileSize()
}

// failLocked releases every resource after a fatal mid-recording error.
// The writer transitions to Closed; no further metadata is emitted because
// the aggregate state can no longer be trusted.
func (w *Writer) failLocked() {
	w.open = false

	if w.pool != nil {
		if err := w.pool.DrainAndJoin(); err != nil {
			w.logger.Errorw("drain after failure", "error", err)
		}
	}

	w.storageMu.Lock()
	if w.storage != nil {
		if err := w.storage.Close(); err != nil {
			w.logger.Errorw("storage close after failure", "error", err)
		}
		w.storage = nil
	}
	w.storageMu.Unlock()

	w.closeCompressor(w.compressor)
	w.compressor = nil
}

func (w *Writer) closeCompressor(compressor ports.CompressionPort) {
	if compressor == nil {
		return
	}
	if err := compressor.Close(); err != nil {
		w.logger.Errorw("compressor close", "error", err)
	}
}

func (w *Writer) openStorage(
	storageOpts *domain.StorageOptions, rotator *rotation.Rotator, fileIndex uint64,
) (ports.StoragePort, error) {
	derived := *storageOpts
	derived.URI = rotator.NextFileURI(storageOpts.URI, fileIndex)

	storage, err := w.opts.StorageFactory.OpenReadWrite(&derived)
	if err != nil {
		return nil, err
	}

	w.storageMu.Lock()
	w.storage = storage
	w.storageMu.Unlock()
	return storage, nil
}

func (w *Writer) relativePath(fileIndex uint64) string {
	return w.rotator.NextRelativePath(
		w.storageOpts.URI, fileIndex, w.compression.Mode, w.compression.CompressionFormat,
	)
}

func (w *Writer) loadConverter(converterOpts *domain.ConverterOptions) (ports.ConverterPort, error) {
	if converterOpts == nil ||
		converterOpts.InputSerializationFormat == converterOpts.OutputSerializationFormat {
		return nil, nil
	}
	if w.opts.ConverterFactory == nil {
		return nil, fmt.Errorf(
			"no converter factory to convert from %q to %q",
			converterOpts.InputSerializationFormat, converterOpts.OutputSerializationFormat,
		)
	}
	return w.opts.ConverterFactory.Load(
		converterOpts.InputSerializationFormat, converterOpts.OutputSerializationFormat,
	)
}
