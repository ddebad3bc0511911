package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrSchedulerNotRunning is returned when trying to submit a run to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrSchedulerRunning is returned when registering after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrQueueFull is returned when the run queue is full
	ErrQueueFull = errors.New("run queue is full")

	// ErrInvalidTask is returned for tasks without name, interval or function
	ErrInvalidTask = errors.New("invalid task")

	// ErrDuplicateTask is returned when a task name is registered twice
	ErrDuplicateTask = errors.New("task already registered")

	// ErrTaskNotFound is returned when triggering an unknown task
	ErrTaskNotFound = errors.New("task not found")
)

// PanicError wraps a panic raised by a task
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}
