package sched

import (
	"slicebench/internal/backend"
	"slicebench/internal/timing"
)

// Phase names the controller's state.
type Phase int

const (
	Uninitialized Phase = iota
	Idle
	RunActive
	Completed
	Failed
	Closed
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "Uninitialized"
	case Idle:
		return "Idle"
	case RunActive:
		return "RunActive"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further tick can do work.
func (p Phase) Terminal() bool {
	return p == Completed || p == Failed || p == Closed
}

// state carries the data that only exists in one phase.
type state interface {
	phase() Phase
}

type uninitialized struct {
	err error // set once setup has failed
}

type idle struct{}

type runActive struct {
	index  int
	exec   backend.Execution
	series *timing.Series
}

type completed struct {
	report timing.Report
}

type failed struct {
	err error
}

type closed struct{}

func (uninitialized) phase() Phase { return Uninitialized }
func (idle) phase() Phase          { return Idle }
func (*runActive) phase() Phase    { return RunActive }
func (completed) phase() Phase     { return Completed }
func (failed) phase() Phase        { return Failed }
func (closed) phase() Phase        { return Closed }
