package pool

import (
	"errors"
	"fmt"
)

var (
	ErrShuttingDown   = errors.New("pool is shutting down, job rejected")
	ErrDisconnected   = errors.New("no live workers left, job rejected")
	ErrNilJob         = errors.New("nil job rejected")
	ErrWorkerPanicked = errors.New("worker terminated abnormally")
)

// PanicError carries a job panic out of the worker that recovered it.
type PanicError struct {
	Worker int
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker %d: job panicked: %v", e.Worker, e.Value)
}

func (e *PanicError) Unwrap() error { return ErrWorkerPanicked }
