//go:build !linux

package compression

import "errors"

var errPriorityUnsupported = errors.New("worker thread priority is not supported on this platform")

func setThreadPriority(priority int) error {
	return errPriorityUnsupported
}

func threadPriority() (int, error) {
	return 0, errPriorityUnsupported
}
