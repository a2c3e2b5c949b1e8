package async

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var ErrTimeout = errors.New("async: timeout waiting for completion")

// PanicError wraps a value recovered from a panic and the stack at the
// panic point.
type PanicError struct {
	Value any
	Stack []byte
}

// NewPanicError captures the current stack. Call it from the deferred recover.
func NewPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
