package prune

import (
	"errors"
	"fmt"
)

// Sentinel errors for prune operations.
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid prune configuration")

	// ErrValidationFailed indicates the requested deletion IDs did not
	// validate against the conversation.
	ErrValidationFailed = errors.New("deletion id validation failed")

	// ErrUnknownMessageID indicates a requested ID does not exist in the
	// conversation (strict mode only; lenient mode downgrades to a warning).
	ErrUnknownMessageID = errors.New("unknown message id")

	// ErrEmptyDeletionSpec indicates the spec requested no IDs.
	ErrEmptyDeletionSpec = errors.New("deletion spec has no message ids")

	// ErrSinkFailure indicates the debug sink rejected a snapshot. It is
	// logged and swallowed, never returned from Prune.
	ErrSinkFailure = errors.New("snapshot sink failed")
)

// Error provides structured error context for prune operations.
type Error struct {
	// Op is the operation that failed (e.g. "Prune", "ValidateIDs").
	Op string

	// ConversationID is the conversation ID if applicable.
	ConversationID string

	// Err is the underlying error.
	Err error

	// Context holds additional key-value pairs for debugging.
	Context map[string]any
}

// Error returns a formatted error message.
func (e *Error) Error() string {
	msg := fmt.Sprintf("prune %s failed", e.Op)
	if e.ConversationID != "" {
		msg += fmt.Sprintf(" for conversation %s", e.ConversationID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:      op,
		Err:     err,
		Context: make(map[string]any),
	}
}

// WithConversation sets the conversation ID and returns the error for chaining.
func (e *Error) WithConversation(conversationID string) *Error {
	e.ConversationID = conversationID
	return e
}

// WithContext adds a key-value pair to the error context and returns the
// error for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
