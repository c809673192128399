package waypoint

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence matches every log I/O failure.
	ErrPersistence = errors.New("waypoint log persistence failure")
	// ErrCorruptLine is wrapped by ParseLine for lines that cannot be decoded.
	ErrCorruptLine = errors.New("corrupt waypoint log line")
	// ErrInvalidUndo is returned when there is no removable entry.
	ErrInvalidUndo = errors.New("nothing to undo")
	// ErrDisabled is returned by operations that need an enabled session.
	ErrDisabled = errors.New("recorder is disabled")
)

// PersistenceError describes a failed log operation.
type PersistenceError struct {
	Op   string // "append", "read" or "truncate"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("waypoint log %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrPersistence and the underlying cause to errors.Is.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
