package sched

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadySetUp = errors.New("controller already set up")
	ErrClosed       = errors.New("controller closed")
)

// InitError is a fatal setup failure. The controller stays Uninitialized.
type InitError struct {
	Stage string // load, attach, shape, input
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialization failed at %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// SliceAdvanceError aborts the run it occurred in. The run is not retried.
type SliceAdvanceError struct {
	Run   int
	Chunk int
	Err   error
}

func (e *SliceAdvanceError) Error() string {
	return fmt.Sprintf("run %02d chunk %d: %v", e.Run, e.Chunk, e.Err)
}

func (e *SliceAdvanceError) Unwrap() error { return e.Err }

// ResourceReleaseError reports a resource that failed to release on teardown.
type ResourceReleaseError struct {
	Resource string
	Err      error
}

func (e *ResourceReleaseError) Error() string {
	return fmt.Sprintf("release %s: %v", e.Resource, e.Err)
}

func (e *ResourceReleaseError) Unwrap() error { return e.Err }
