// Package storage provides the local append-only file backend implementing
// the storage port. Each bag file is a sequence of length-prefixed,
// crc32-framed records; heavier backends can replace it behind the port.
package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
	"github.com/iamNilotpal/bagwriter/internal/core/ports"
)

const (
	// StorageID is the identifier of this backend in StorageOptions.
	StorageID = "local"

	// MinimumSplitFileSize is the smallest max bagfile size the backend
	// accepts for splitting. Below this, rotation would produce degenerate
	// files dominated by framing overhead.
	MinimumSplitFileSize uint64 = 4096

	// DefaultCacheSize is the write buffer size used when the storage
	// options leave MaxCacheSize unset.
	DefaultCacheSize = 65536 // 64KB
)

// ErrStorageClosed indicates an operation on a closed bag file handle.
var ErrStorageClosed = errors.New("bag file storage is closed")

// Factory opens local file storage handles. Implements
// ports.StorageFactoryPort.
type Factory struct{}

// NewFactory creates a local storage factory.
func NewFactory() *Factory {
	return &Factory{}
}

// OpenReadWrite creates the bag file named by the options URI, creating
// parent directories as needed, and returns its handle.
func (f *Factory) OpenReadWrite(options *domain.StorageOptions) (ports.StoragePort, error) {
	if err := os.MkdirAll(filepath.Dir(options.URI), 0755); err != nil {
		return nil, fmt.Errorf("error creating bag directory : %w", err)
	}

	// 0644 permissions: owner can read/write, others can only read.
	file, err := os.OpenFile(options.URI, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating bag file : %w", err)
	}

	cacheSize := options.MaxCacheSize
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}

	return &LocalStorage{
		uri:    options.URI,
		file:   file,
		writer: bufio.NewWriterSize(file, int(cacheSize)),
		topics: make(map[string]domain.TopicMetadata),
	}, nil
}

// GetMinimumSplitFileSize reports the backend's minimum splittable size.
func (f *Factory) GetMinimumSplitFileSize() uint64 {
	return MinimumSplitFileSize
}

// LocalStorage is one open bag file. Writes append framed records through a
// buffered writer; the frame is:
//
//	timestamp (8B LE) | topic len (4B LE) | topic | payload len (4B LE) | payload | crc32 of payload (4B LE)
type LocalStorage struct {
	uri    string
	file   *os.File
	writer *bufio.Writer

	size     uint64
	topics   map[string]domain.TopicMetadata
	metadata *domain.BagMetadata

	mu     sync.Mutex
	closed atomic.Bool
}

// Write appends one framed record and updates the accumulated size.
func (s *LocalStorage) Write(message *domain.SerializedBagMessage) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	topic := []byte(message.TopicName)
	header := make([]byte, 16)
	binary.LittleEndian.PutUint64(header[0:8], uint64(message.TimeStamp))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(topic)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(message.SerializedData)))

	if _, err := s.writer.Write(header); err != nil {
		return fmt.Errorf("failed to write record header : %w", err)
	}
	if _, err := s.writer.Write(topic); err != nil {
		return fmt.Errorf("failed to write record topic : %w", err)
	}
	if nn, err := s.writer.Write(message.SerializedData); err != nil {
		return fmt.Errorf("failed to write record payload : %w", err)
	} else if nn != len(message.SerializedData) {
		return fmt.Errorf("short write: %d != %d", nn, len(message.SerializedData))
	}

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], crc32.ChecksumIEEE(message.SerializedData))
	if _, err := s.writer.Write(trailer[:]); err != nil {
		return fmt.Errorf("failed to write record checksum : %w", err)
	}

	s.size += uint64(len(header) + len(topic) + len(message.SerializedData) + len(trailer))
	return nil
}

// CreateTopic registers a topic. Registering the same topic twice with a
// different type is rejected.
func (s *LocalStorage) CreateTopic(topic *domain.TopicMetadata) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.topics[topic.Name]; ok && existing.Type != topic.Type {
		return fmt.Errorf("topic %q already registered with type %q", topic.Name, existing.Type)
	}
	s.topics[topic.Name] = *topic
	return nil
}

// RemoveTopic removes a previously registered topic.
func (s *LocalStorage) RemoveTopic(topic *domain.TopicMetadata) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.topics, topic.Name)
	return nil
}

// GetBagfileSize reports the bytes appended so far, including buffered ones.
func (s *LocalStorage) GetBagfileSize() (uint64, error) {
	if s.closed.Load() {
		return 0, ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size, nil
}

// GetRelativeFilePath returns the bag file name relative to its directory.
func (s *LocalStorage) GetRelativeFilePath() string {
	return filepath.Base(s.uri)
}

// UpdateMetadata retains the latest snapshot for the lifetime of the
// handle. The local backend has no embedded metadata table; the retained
// snapshot exists so callers can read back what they last pushed.
func (s *LocalStorage) UpdateMetadata(metadata *domain.BagMetadata) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metadata = metadata
	return nil
}

// Metadata returns the last snapshot pushed via UpdateMetadata.
func (s *LocalStorage) Metadata() *domain.BagMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

// Close flushes buffered records, syncs and closes the file. The handle is
// unusable afterwards; closing twice returns ErrStorageClosed.
func (s *LocalStorage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush bag file : %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync bag file : %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("error closing bag file : %w", err)
	}
	return nil
}
