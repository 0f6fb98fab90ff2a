package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/domain/workspace"
	"github.com/rpggio/tasktory/internal/journal"
)

var (
	// ErrInvalidParams indicates request parameters that could not be decoded.
	ErrInvalidParams = errors.New("invalid params")
	// ErrUnknownMethod indicates a method the handler doesn't serve.
	ErrUnknownMethod = errors.New("unknown method")
)

// API error codes.
const (
	CodeTaskNotFound     = "TASK_NOT_FOUND"
	CodeParentNotFound   = "PARENT_NOT_FOUND"
	CodeIdentityMismatch = "IDENTITY_MISMATCH"
	CodeTypeMismatch     = "TYPE_MISMATCH"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeMethodNotFound   = "METHOD_NOT_FOUND"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, workspace.ErrTaskNotFound), errors.Is(err, task.ErrNotFound):
		return &APIError{Code: CodeTaskNotFound, Message: err.Error(), RecoveryHint: "Call get_tree to list task ids"}
	case errors.Is(err, workspace.ErrParentNotFound):
		return &APIError{Code: CodeParentNotFound, Message: err.Error(), RecoveryHint: "Use 0 for the workspace root"}
	case errors.Is(err, task.ErrIdentityMismatch):
		return &APIError{Code: CodeIdentityMismatch, Message: err.Error(), RecoveryHint: "Both trees must share the root id"}
	case errors.Is(err, task.ErrTypeMismatch):
		return &APIError{Code: CodeTypeMismatch, Message: err.Error(), RecoveryHint: "Look tasks up by id or name"}
	case errors.Is(err, journal.ErrSyntax):
		return &APIError{Code: CodeInvalidInput, Message: err.Error(), RecoveryHint: "Read tasktory://docs/journal"}
	case errors.Is(err, workspace.ErrInvalidInput), errors.Is(err, ErrInvalidParams),
		errors.Is(err, task.ErrInvalidName), errors.Is(err, task.ErrInvalidStatus):
		return &APIError{Code: CodeInvalidInput, Message: err.Error()}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: CodeMethodNotFound, Message: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
