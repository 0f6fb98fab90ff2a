package workspace

import "errors"

var (
	// ErrTaskNotFound indicates no task carries the requested id or name.
	ErrTaskNotFound = errors.New("task not found")
	// ErrParentNotFound indicates the parent of a new task doesn't exist.
	ErrParentNotFound = errors.New("parent task not found")
	// ErrInvalidInput indicates invalid input for workspace operations.
	ErrInvalidInput = errors.New("invalid task input")
)
