package notify

// Executor runs a delivery task off the caller's goroutine. Submit must not
// block on the task itself. worker.Pool is the production implementation.
type Executor interface {
	Submit(task func())
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(task func())

// Submit calls f(task).
func (f ExecutorFunc) Submit(task func()) {
	f(task)
}

// GoExecutor starts one goroutine per task.
var GoExecutor = ExecutorFunc(func(task func()) { go task() })

// InlineExecutor runs the task on the caller's goroutine. Tests use it to make
// delivery synchronous.
var InlineExecutor = ExecutorFunc(func(task func()) { task() })
