package coordinator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected command. Every kind is reported to the
// initiating connection only, never broadcast to the room.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindStateConflict ErrorKind = "state_conflict"
	KindPersistence   ErrorKind = "persistence"
)

type CommandError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...interface{}) *CommandError {
	return &CommandError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...interface{}) *CommandError {
	return &CommandError{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NewStateConflictError(format string, args ...interface{}) *CommandError {
	return &CommandError{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...)}
}

func NewPersistenceError(err error) *CommandError {
	return &CommandError{Kind: KindPersistence, Message: "storage error", Err: err}
}

// KindOf extracts the kind of a command error, defaulting unknown errors
// to persistence failures.
func KindOf(err error) ErrorKind {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Kind
	}
	return KindPersistence
}
