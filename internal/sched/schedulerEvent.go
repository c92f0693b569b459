// internal/sched/schedulerEvent.go

package sched

import (
	"time"
)

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusTick StatusKind = iota
	StatusRunStart
	StatusChunk
	StatusRunSealed
	StatusCompleted
	StatusFailed
)

// StatusEvent is emitted on every state change of the controller.
type StatusEvent struct {
	Time    time.Time
	Kind    StatusKind
	Run     int           // run index, chronological
	Chunk   int           // chunk index within the run
	Steps   int           // atomic steps covered by the chunk
	Elapsed time.Duration // chunk duration
	Err     error
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusTick:
		return "Tick"
	case StatusRunStart:
		return "RunStart"
	case StatusChunk:
		return "Chunk"
	case StatusRunSealed:
		return "RunSealed"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
