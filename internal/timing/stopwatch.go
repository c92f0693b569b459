// Package timing measures chunk durations and turns the per-run series
// into a report.
package timing

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Stopwatch measures elapsed time between Restart and Stop.
// It is not safe for concurrent use.
type Stopwatch struct {
	clock   Clock
	start   time.Time
	elapsed time.Duration
	running bool
}

// NewStopwatch returns a stopped stopwatch. A nil clock means SystemClock.
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Stopwatch{clock: clock}
}

// Start resumes measuring without discarding time already accumulated.
func (s *Stopwatch) Start() {
	if s.running {
		return
	}
	s.start = s.clock.Now()
	s.running = true
}

// Restart zeroes the stopwatch and starts it.
func (s *Stopwatch) Restart() {
	s.elapsed = 0
	s.running = false
	s.Start()
}

// Stop halts the stopwatch and returns the total elapsed time.
func (s *Stopwatch) Stop() time.Duration {
	if s.running {
		s.elapsed += s.clock.Now().Sub(s.start)
		s.running = false
	}
	return s.elapsed
}

// Elapsed returns the elapsed time, including the running interval.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.running {
		return s.elapsed + s.clock.Now().Sub(s.start)
	}
	return s.elapsed
}

func (s *Stopwatch) Running() bool { return s.running }
