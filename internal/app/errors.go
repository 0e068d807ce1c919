package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNotRegistered indicates Dispatch was called before Register.
	ErrNotRegistered = errors.New("plugins not registered")

	// ErrAlreadyRegistered indicates Register was called twice.
	ErrAlreadyRegistered = errors.New("plugins already registered")
)

// InitError reports a component that could not be constructed.
type InitError struct {
	Component string
	Err       error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
