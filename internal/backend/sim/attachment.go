package sim

import (
	"fmt"
	"sync/atomic"
	"time"

	"slicebench/internal/backend"
	"slicebench/internal/job"
)

// DefaultDispatchLatency is added to every layer on the gpu-sim target to
// model kernel launch overhead.
const DefaultDispatchLatency = 200 * time.Microsecond

// Backend attaches simulated models.
type Backend struct {
	DispatchLatency time.Duration
}

func NewBackend() *Backend {
	return &Backend{DispatchLatency: DefaultDispatchLatency}
}

func (b *Backend) Attach(m backend.Model, kind backend.Kind) (backend.Attachment, error) {
	model, ok := m.(*Model)
	if !ok {
		return nil, fmt.Errorf("sim: unsupported model type %T", m)
	}

	dispatch := job.Noop()
	switch kind {
	case backend.KindCPU:
	case backend.KindGPUSim:
		dispatch = job.Sleep(b.DispatchLatency)
	default:
		return nil, fmt.Errorf("sim: unsupported backend kind %q", kind)
	}
	return &Attachment{model: model, kind: kind, dispatch: dispatch}, nil
}

// Attachment runs one model at a time. It is not safe for concurrent use.
type Attachment struct {
	model    *Model
	kind     backend.Kind
	dispatch job.Kernel
	live     atomic.Int64
	current  *execution
	output   *tensor
	closed   bool
}

func (a *Attachment) Kind() backend.Kind { return a.kind }

// LiveBuffers reports how many buffers from this attachment are unreleased.
func (a *Attachment) LiveBuffers() int64 { return a.live.Load() }

func (a *Attachment) NewInput(shape backend.Shape) (backend.Buffer, error) {
	if a.closed {
		return nil, backend.ErrNotAttached
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return deviceBuffer{newTensor(shape, 0.5, &a.live)}, nil
}

func (a *Attachment) ScheduleIterable(input backend.Buffer) (backend.Execution, error) {
	if a.closed {
		return nil, backend.ErrNotAttached
	}
	in, ok := input.(deviceBuffer)
	if !ok {
		return nil, fmt.Errorf("sim: input %T was not allocated by this backend", input)
	}
	if in.released.Load() {
		return nil, backend.ErrReleased
	}
	if a.current != nil && a.current.err == nil && !a.current.Done() {
		return nil, backend.ErrRunInFlight
	}
	a.dropOutput()

	e := newExecution(a, a.model.layers, a.dispatch)
	a.current = e
	if e.Done() {
		a.complete(e)
	}
	return e, nil
}

func (a *Attachment) PeekOutput() (backend.DeviceBuffer, error) {
	if a.closed {
		return nil, backend.ErrNotAttached
	}
	if a.output == nil {
		return nil, backend.ErrNoOutput
	}
	out := a.output
	a.output = nil
	return deviceBuffer{out}, nil
}

// Close releases any output nobody claimed. Buffers handed to the caller
// stay the caller's to release.
func (a *Attachment) Close() error {
	if a.closed {
		return nil
	}
	a.dropOutput()
	a.current = nil
	a.closed = true
	return nil
}

func (a *Attachment) complete(e *execution) {
	if a.current != e {
		return
	}
	a.dropOutput()
	a.output = newTensor(a.model.outputShape(), float32(e.steps), &a.live)
}

func (a *Attachment) dropOutput() {
	if a.output != nil {
		_ = a.output.Release()
		a.output = nil
	}
}
