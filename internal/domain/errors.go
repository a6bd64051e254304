package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskExists       = errors.New("task already exists")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrOrderExhausted   = errors.New("order gap exhausted")
	ErrDragNotActive    = errors.New("no drag in progress")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrConfigExists     = errors.New("config file already exists")
	ErrConfigNil        = errors.New("config is nil")
)

// ParseError reports a task file that could not be split or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse task: %v", e.Err)
	}
	return fmt.Sprintf("parse task %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError is a single schema violation in task front-matter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError reports front-matter that decoded but does not match the
// TaskMetadata schema. Partial holds whatever fields were accepted.
type ValidationError struct {
	Path    string
	Fields  []FieldError
	Partial TaskMetadata
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	msg := "invalid task metadata: " + strings.Join(parts, "; ")
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

// HasField reports whether the given field path failed validation.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// PersistenceError reports a failed write to the authoritative task store.
type PersistenceError struct {
	Op     string
	TaskID string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("%s task [%s]: %v", e.Op, e.TaskID, e.Err)
	}
	return fmt.Sprintf("%s task: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
