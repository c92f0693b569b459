package sched

import (
	"fmt"

	"slicebench/internal/backend"
	"slicebench/internal/timing"
)

// ChunkScheduler advances an execution by at most sliceSteps atomic steps
// per call and times exactly that slice.
type ChunkScheduler struct {
	sliceSteps int
	watch      *timing.Stopwatch
}

func NewChunkScheduler(sliceSteps int, clock timing.Clock) (*ChunkScheduler, error) {
	if sliceSteps < 1 {
		return nil, fmt.Errorf("slice size must be at least 1, got %d", sliceSteps)
	}
	return &ChunkScheduler{
		sliceSteps: sliceSteps,
		watch:      timing.NewStopwatch(clock),
	}, nil
}

// SliceSteps returns the configured slice size.
func (s *ChunkScheduler) SliceSteps() int { return s.sliceSteps }

// Step runs one slice. It returns the measured chunk and whether the
// execution has no steps left. An execution with no steps at all still
// yields one chunk. On error the chunk covers the steps that did run.
func (s *ChunkScheduler) Step(exec backend.Execution) (timing.Chunk, bool, error) {
	s.watch.Restart()
	steps := 0
	exhausted := false
	for steps < s.sliceSteps && !exec.Done() {
		ok, err := exec.Advance()
		if err != nil {
			return timing.Chunk{Steps: steps, Elapsed: s.watch.Stop()}, false, err
		}
		if !ok {
			exhausted = true
			break
		}
		steps++
	}
	elapsed := s.watch.Stop()
	return timing.Chunk{Steps: steps, Elapsed: elapsed}, exhausted || exec.Done(), nil
}
