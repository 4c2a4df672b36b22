package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory classifies the different types of errors that can occur
// during bag recording. This helps in proper error handling, monitoring,
// and debugging of the system.
type ErrorCategory int

const (
	// ErrorConfiguration indicates invalid options detected at open time,
	// such as an unknown compressor identifier, a split size below the
	// backend minimum, or a worker priority that could not be applied.
	ErrorConfiguration ErrorCategory = iota + 1

	// ErrorNotOpen indicates an operation attempted while the writer is
	// closed. Recoverable by the caller: open the writer first.
	ErrorNotOpen

	// ErrorStorage indicates errors propagated from the storage backend
	// during open, write or close, such as file I/O, disk space, or
	// permission failures.
	ErrorStorage

	// ErrorCompression indicates a compression task failure. The affected
	// message or file is not durably persisted; the failure is surfaced at
	// the next split or close that drains the task queue.
	ErrorCompression
)

// String returns the string representation of the error category.
// This is useful for logging, metrics, and error reporting.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorConfiguration:
		return "configuration"
	case ErrorNotOpen:
		return "not-open"
	case ErrorStorage:
		return "storage"
	case ErrorCompression:
		return "compression"
	default:
		return "unknown"
	}
}

// BagError is the error type surfaced by the writer's public operations.
// It carries the failing operation, the category, and the time of failure.
type BagError struct {
	Err       error
	Operation string
	Timestamp time.Time
	Category  ErrorCategory
}

// New creates a BagError stamped with the current time.
func New(category ErrorCategory, operation string, err error) *BagError {
	return &BagError{
		Err:       err,
		Category:  category,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

func (e *BagError) Error() string {
	return fmt.Sprintf("[%v] %s: %v : %s", e.Category, e.Operation, e.Err, e.Timestamp.String())
}

func (e *BagError) Unwrap() error {
	return e.Err
}

// IsRetryAble returns whether errors of this category can be retried.
// This helps callers decide whether to retry failed operations.
func (e *BagError) IsRetryAble() bool {
	switch e.Category {
	case ErrorStorage:
		// Storage errors might be temporary (e.g., disk full, slow device).
		return true
	case ErrorNotOpen:
		// Recoverable, but only by opening the writer, not by retrying.
		return false
	case ErrorConfiguration, ErrorCompression:
		// Bad options and failed compression tasks don't heal on retry.
		return false
	default:
		return false
	}
}

// IsCategory reports whether err is (or wraps) a BagError of the given
// category.
func IsCategory(err error, category ErrorCategory) bool {
	var be *BagError
	if errors.As(err, &be) {
		return be.Category == category
	}
	return false
}

// IsConfiguration checks for a configuration error anywhere in err's chain.
func IsConfiguration(err error) bool { return IsCategory(err, ErrorConfiguration) }

// IsNotOpen checks for a not-open error anywhere in err's chain.
func IsNotOpen(err error) bool { return IsCategory(err, ErrorNotOpen) }

// IsStorage checks for a storage error anywhere in err's chain.
func IsStorage(err error) bool { return IsCategory(err, ErrorStorage) }

// IsCompression checks for a compression error anywhere in err's chain.
func IsCompression(err error) bool { return IsCategory(err, ErrorCompression) }
