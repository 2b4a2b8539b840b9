package worker

import "errors"

// Sentinel errors reported to the drop handler.
var (
	// ErrExecutorShutdown indicates a task was submitted after Shutdown.
	ErrExecutorShutdown = errors.New("executor is shut down")

	// ErrPoolSaturated indicates no worker slot freed up within AcquireTimeout.
	ErrPoolSaturated = errors.New("worker pool saturated")
)
