// Package metrics publishes benchmark counters through expvar.
package metrics

import (
	"expvar"
	"time"
)

// Kind classifies an observation.
type Kind int

const (
	Other Kind = iota
	Tick
	RunStarted
	ChunkRecorded
	RunSealed
	RunFailed
)

var (
	ticksTotal       = new(expvar.Int)
	runsStartedTotal = new(expvar.Int)
	runsSealedTotal  = new(expvar.Int)
	runsFailedTotal  = new(expvar.Int)
	chunksTotal      = new(expvar.Int)
	stepsTotal       = new(expvar.Int)
	lastChunkMicros  = new(expvar.Int)
)

func init() {
	expvar.Publish("slicebench_ticks_total", ticksTotal)
	expvar.Publish("slicebench_runs_started_total", runsStartedTotal)
	expvar.Publish("slicebench_runs_sealed_total", runsSealedTotal)
	expvar.Publish("slicebench_runs_failed_total", runsFailedTotal)
	expvar.Publish("slicebench_chunks_total", chunksTotal)
	expvar.Publish("slicebench_steps_total", stepsTotal)
	expvar.Publish("slicebench_last_chunk_us", lastChunkMicros)
}

// Observe records one status change. steps and elapsed only matter for
// ChunkRecorded.
func Observe(k Kind, steps int, elapsed time.Duration) {
	switch k {
	case Tick:
		ticksTotal.Add(1)
	case RunStarted:
		runsStartedTotal.Add(1)
	case ChunkRecorded:
		chunksTotal.Add(1)
		stepsTotal.Add(int64(steps))
		lastChunkMicros.Set(elapsed.Microseconds())
	case RunSealed:
		runsSealedTotal.Add(1)
	case RunFailed:
		runsFailedTotal.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Ticks       int64
	RunsStarted int64
	RunsSealed  int64
	RunsFailed  int64
	Chunks      int64
	Steps       int64
}

func Read() Snapshot {
	return Snapshot{
		Ticks:       ticksTotal.Value(),
		RunsStarted: runsStartedTotal.Value(),
		RunsSealed:  runsSealedTotal.Value(),
		RunsFailed:  runsFailedTotal.Value(),
		Chunks:      chunksTotal.Value(),
		Steps:       stepsTotal.Value(),
	}
}
