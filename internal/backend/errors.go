package backend

import (
	"errors"
	"fmt"
)

var (
	ErrShapeUnresolved = errors.New("input shape unresolved")
	ErrReleased        = errors.New("buffer already released")
	ErrNotAttached     = errors.New("attachment closed")
	ErrRunInFlight     = errors.New("execution already in flight")
	ErrNoOutput        = errors.New("no completed output")
)

// LoadError reports a model asset that could not be deserialized.
type LoadError struct {
	Asset string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Asset == "" {
		return fmt.Sprintf("load model: %v", e.Err)
	}
	return fmt.Sprintf("load model %q: %v", e.Asset, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
