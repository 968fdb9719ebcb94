package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrToolUnknown marks a tool call whose name is not in the catalog.
	ErrToolUnknown = errors.New("unknown tool")
	// ErrToolExecutionFailure matches every *ToolExecutionError.
	ErrToolExecutionFailure = errors.New("tool execution failure")
	// ErrInvalidArguments marks a tool call whose arguments could not be decoded.
	ErrInvalidArguments = errors.New("invalid tool arguments")
	// ErrModelUnavailable matches every *ModelUnavailableError.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrLoopTruncated marks a run stopped before the model produced a final answer.
	ErrLoopTruncated = errors.New("loop truncated")
)

// ToolExecutionError wraps a failure raised by a tool.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

func (e *ToolExecutionError) Is(target error) bool { return target == ErrToolExecutionFailure }

// ModelUnavailableError wraps a failed provider call. It is never retried inside a run.
type ModelUnavailableError struct {
	Provider string
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %s unavailable: %v", e.Provider, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }
