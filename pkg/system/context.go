// Package system holds small lifecycle helpers shared by the recorder
// services.
package system

import (
	"context"
)

// RunWithContext executes a resource release operation under a caller
// supplied context. The operation always runs, even when the context is
// already canceled: cancellation must never be able to skip a drain, flush
// or handle close, otherwise acknowledged data could be dropped. The context
// only bounds how much optional work the operation performs.
//
// The operation receives its own context, canceled as soon as the caller's
// context is done, so it can cut non-essential work short. RunWithContext
// waits for the operation to return in every case and reports its error.
func RunWithContext(ctx context.Context, operation func(context.Context) error) error {
	operationCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Buffered so the goroutine can exit even if nobody reads immediately.
	done := make(chan error, 1)
	go func() {
		done <- operation(operationCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// Signal the operation to wrap up, then wait for it. Returning before
		// the operation finished would leak whatever it was releasing.
		cancel()
		return <-done
	}
}
