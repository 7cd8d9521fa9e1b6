package tasks

import (
	"context"
	"errors"
	"fmt"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

// ErrorKind classifies the outcome of a failed task.
type ErrorKind string

const (
	ErrorFatal    ErrorKind = "fatal"    // Run must stop.
	ErrorWarning  ErrorKind = "warning"  // Recorded; the run continues.
	ErrorCanceled ErrorKind = "canceled" // Context cancellation.
)

// TaskError carries the task and classification of a failure.
type TaskError struct {
	Kind ErrorKind
	Task Name
	Err  error
}

func (e *TaskError) Error() string { return fmt.Sprintf("%s task %s: %v", e.Kind, e.Task, e.Err) }
func (e *TaskError) Unwrap() error { return e.Err }

// NewFatalError wraps err as a fatal failure of task.
func NewFatalError(task Name, err error) *TaskError {
	return &TaskError{Kind: ErrorFatal, Task: task, Err: err}
}

// NewWarningError wraps err as a non-fatal failure of task.
func NewWarningError(task Name, err error) *TaskError {
	return &TaskError{Kind: ErrorWarning, Task: task, Err: err}
}

// NewCanceledError records that task did not run to completion.
func NewCanceledError(task Name, err error) *TaskError {
	return &TaskError{Kind: ErrorCanceled, Task: task, Err: err}
}

// classify normalizes whatever a task returned into a TaskError. Plain
// errors are fatal unless they carry a non-fatal classified severity.
func classify(task Name, err error) *TaskError {
	if err == nil {
		return nil
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewCanceledError(task, err)
	}
	if ferrors.GetSeverity(err) == ferrors.SeverityWarning {
		return NewWarningError(task, err)
	}
	return NewFatalError(task, err)
}
