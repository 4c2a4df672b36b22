//go:build linux

package compression

import "golang.org/x/sys/unix"

// setThreadPriority applies the given nice value to the calling OS thread.
// The caller must have locked the goroutine to its thread beforehand,
// otherwise the priority would land on an arbitrary thread.
func setThreadPriority(priority int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), priority)
}

// threadPriority reads the nice value of the calling OS thread.
func threadPriority() (int, error) {
	return unix.Getpriority(unix.PRIO_PROCESS, unix.Gettid())
}
