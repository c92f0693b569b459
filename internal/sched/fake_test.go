package sched

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"slicebench/internal/backend"
	"slicebench/internal/timing"
)

var errDeviceLost = errors.New("device lost")

// stepClock advances by step on every reading, so each chunk measures
// exactly one step.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

type fakeModel struct {
	name     string
	shape    backend.Shape
	shapeErr error
	steps    int
}

func (m *fakeModel) Name() string { return m.name }

func (m *fakeModel) InputShape() (backend.Shape, error) { return m.shape, m.shapeErr }

type fakeLoader struct {
	model *fakeModel
	err   error
	calls int
}

func (l *fakeLoader) Load([]byte) (backend.Model, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.model, nil
}

type fakeBackend struct {
	att *fakeAttachment
	err error
}

func (b *fakeBackend) Attach(m backend.Model, _ backend.Kind) (backend.Attachment, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.att.model = m.(*fakeModel)
	return b.att, nil
}

// fakeAttachment counts steps per run and live buffers.
type fakeAttachment struct {
	model           *fakeModel
	failRun         int // run index whose step failStep errors; -1 for none
	failStep        int
	closeErr        error
	inputReleaseErr error

	runs     int
	advanced []int
	current  *fakeExec
	output   *fakeBuffer
	live     int
	closed   bool
}

func newFakeAttachment() *fakeAttachment {
	return &fakeAttachment{failRun: -1}
}

func (a *fakeAttachment) NewInput(shape backend.Shape) (backend.Buffer, error) {
	a.live++
	return &fakeBuffer{att: a, shape: shape, releaseErr: a.inputReleaseErr}, nil
}

func (a *fakeAttachment) ScheduleIterable(backend.Buffer) (backend.Execution, error) {
	if a.closed {
		return nil, backend.ErrNotAttached
	}
	if a.current != nil && a.current.err == nil && !a.current.Done() {
		return nil, backend.ErrRunInFlight
	}
	if a.output != nil {
		return nil, errors.New("previous output was never drained")
	}
	e := &fakeExec{att: a, run: a.runs, total: a.model.steps}
	a.runs++
	a.advanced = append(a.advanced, 0)
	a.current = e
	if e.total == 0 {
		a.produceOutput()
	}
	return e, nil
}

func (a *fakeAttachment) PeekOutput() (backend.DeviceBuffer, error) {
	if a.output == nil {
		return nil, backend.ErrNoOutput
	}
	out := a.output
	a.output = nil
	return out, nil
}

func (a *fakeAttachment) Close() error {
	a.closed = true
	if a.output != nil {
		_ = a.output.Release()
		a.output = nil
	}
	return a.closeErr
}

func (a *fakeAttachment) produceOutput() {
	a.live++
	a.output = &fakeBuffer{att: a, shape: backend.Shape{2}}
}

type fakeExec struct {
	att   *fakeAttachment
	run   int
	total int
	done  int
	err   error
}

func (e *fakeExec) Advance() (bool, error) {
	if e.err != nil {
		return false, e.err
	}
	if e.done >= e.total {
		return false, nil
	}
	if e.att.failRun == e.run && e.att.failStep == e.done {
		e.err = errDeviceLost
		return false, e.err
	}
	e.done++
	e.att.advanced[e.run]++
	if e.done == e.total {
		e.att.produceOutput()
	}
	return true, nil
}

func (e *fakeExec) Done() bool { return e.err == nil && e.done >= e.total }

type fakeBuffer struct {
	att        *fakeAttachment
	shape      backend.Shape
	released   bool
	releaseErr error
}

func (b *fakeBuffer) Shape() backend.Shape { return b.shape }

func (b *fakeBuffer) Release() error {
	if !b.released {
		b.released = true
		b.att.live--
	}
	return b.releaseErr
}

func (b *fakeBuffer) ReadbackAndClone() (backend.HostBuffer, error) {
	if b.released {
		return nil, backend.ErrReleased
	}
	b.att.live++
	return &fakeBuffer{att: b.att, shape: b.shape}, nil
}

func (b *fakeBuffer) Data() ([]float32, error) {
	if b.released {
		return nil, backend.ErrReleased
	}
	return make([]float32, b.shape.Size()), nil
}

type recordSink struct {
	reports []timing.Report
	err     error
}

func (s *recordSink) Publish(r timing.Report) error {
	s.reports = append(s.reports, r)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
