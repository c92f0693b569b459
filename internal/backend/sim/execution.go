package sim

import (
	"fmt"

	"github.com/emirpasic/gods/queues/linkedlistqueue"

	"slicebench/internal/job"
)

// execution walks the pending layers of one run, one per Advance.
type execution struct {
	att      *Attachment
	pending  *linkedlistqueue.Queue
	dispatch job.Kernel
	steps    int
	err      error
}

func newExecution(att *Attachment, layers []Layer, dispatch job.Kernel) *execution {
	q := linkedlistqueue.New()
	for _, l := range layers {
		q.Enqueue(l)
	}
	return &execution{att: att, pending: q, dispatch: dispatch}
}

func (e *execution) Advance() (bool, error) {
	if e.err != nil {
		return false, e.err
	}
	v, ok := e.pending.Dequeue()
	if !ok {
		return false, nil
	}
	l := v.(Layer)
	if err := job.Chain(e.dispatch, l.Kernel)(); err != nil {
		e.err = fmt.Errorf("layer %d (%s): %w", e.steps, l.Name, err)
		return false, e.err
	}
	e.steps++
	if e.pending.Empty() {
		e.att.complete(e)
	}
	return true, nil
}

func (e *execution) Done() bool {
	return e.err == nil && e.pending.Empty()
}

// Steps returns how many layers have run.
func (e *execution) Steps() int { return e.steps }
