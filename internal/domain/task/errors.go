package task

import "errors"

var (
	// ErrTypeMismatch indicates a lookup or comparison key of an unsupported kind.
	ErrTypeMismatch = errors.New("unsupported task key")
	// ErrIdentityMismatch indicates a merge or overwrite across different task ids.
	ErrIdentityMismatch = errors.New("task ids differ")
	// ErrNotFound indicates no node in the tree matches the key.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidName indicates a name that cannot be used as a path segment.
	ErrInvalidName = errors.New("invalid task name")
	// ErrInvalidStatus indicates a status outside the enumeration.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidTree indicates a flattened tree that does not describe a single rooted tree.
	ErrInvalidTree = errors.New("invalid task tree")
)
