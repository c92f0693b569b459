package sched

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"slicebench/internal/backend"
	"slicebench/internal/timing"
)

// ReportSink receives the final report.
type ReportSink interface {
	Publish(r timing.Report) error
}

// Option customizes a Controller.
type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock replaces the clock chunks are timed with.
func WithClock(clock timing.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithObserver registers fn to receive every status event. fn runs on the
// ticking goroutine and must not block.
func WithObserver(fn func(StatusEvent)) Option {
	return func(c *Controller) { c.observer = fn }
}

// resources are the process-wide singletons acquired by Setup.
type resources struct {
	model backend.Model
	att   backend.Attachment
	input backend.Buffer
}

// Controller runs the model up to runBudget times, one bounded slice per
// Tick. It is driven from a single goroutine and holds no thread of its own.
type Controller struct {
	runBudget int
	kind      backend.Kind
	loader    backend.Loader
	backend   backend.Backend
	sink      ReportSink
	clock     timing.Clock
	chunker   *ChunkScheduler
	history   *timing.History
	res       *resources
	state     state
	started   int
	observer  func(StatusEvent)
	logger    *slog.Logger
}

// NewController returns an Uninitialized controller. sink may be nil.
func NewController(cfg Config, loader backend.Loader, be backend.Backend, sink ReportSink, opts ...Option) (*Controller, error) {
	if cfg.RunBudget < 1 {
		return nil, fmt.Errorf("run budget must be at least 1, got %d", cfg.RunBudget)
	}
	c := &Controller{
		runBudget: cfg.RunBudget,
		kind:      backend.Kind(cfg.Backend),
		loader:    loader,
		backend:   be,
		sink:      sink,
		history:   timing.NewHistory(),
		state:     uninitialized{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	chunker, err := NewChunkScheduler(cfg.SliceSteps, c.clock)
	if err != nil {
		return nil, err
	}
	c.chunker = chunker
	return c, nil
}

// Setup loads the model, attaches the backend and allocates the input
// buffer. A failure is permanent: later calls return the same error and
// Tick never does work.
func (c *Controller) Setup(asset []byte) error {
	switch s := c.state.(type) {
	case uninitialized:
		if s.err != nil {
			return s.err
		}
	case closed:
		return ErrClosed
	default:
		return ErrAlreadySetUp
	}

	res, err := c.acquire(asset)
	if err != nil {
		c.state = uninitialized{err: err}
		c.logger.Error("Setup failed", "error", err)
		return err
	}
	c.res = res
	c.state = idle{}

	shape, _ := res.model.InputShape()
	c.logger.Info("Controller ready",
		"model", res.model.Name(),
		"backend", c.kind,
		"input_shape", shape.String(),
		"run_budget", c.runBudget,
		"slice_steps", c.chunker.SliceSteps(),
	)
	return nil
}

func (c *Controller) acquire(asset []byte) (*resources, error) {
	model, err := c.loader.Load(asset)
	if err != nil {
		return nil, &InitError{Stage: "load", Err: err}
	}
	att, err := c.backend.Attach(model, c.kind)
	if err != nil {
		return nil, &InitError{Stage: "attach", Err: err}
	}
	shape, err := model.InputShape()
	if err != nil {
		return nil, errors.Join(&InitError{Stage: "shape", Err: err}, closeAttachment(att))
	}
	input, err := att.NewInput(shape)
	if err != nil {
		return nil, errors.Join(&InitError{Stage: "input", Err: err}, closeAttachment(att))
	}
	return &resources{model: model, att: att, input: input}, nil
}

// Tick does one unit of work: start a run, advance the active run by one
// slice, or finish once the budget is spent. It is a no-op before a
// successful Setup and after a terminal phase.
func (c *Controller) Tick() error {
	switch s := c.state.(type) {
	case idle:
		if c.history.Len() >= c.runBudget {
			return c.finish()
		}
		run, err := c.startRun()
		if err != nil {
			return c.fail(err)
		}
		return c.advance(run)
	case *runActive:
		return c.advance(s)
	default:
		return nil
	}
}

func (c *Controller) startRun() (*runActive, error) {
	exec, err := c.res.att.ScheduleIterable(c.res.input)
	if err != nil {
		return nil, &SliceAdvanceError{Run: c.started, Err: fmt.Errorf("schedule: %w", err)}
	}
	run := &runActive{index: c.started, exec: exec, series: timing.NewSeries()}
	c.started++
	c.state = run

	c.logger.Info("Run started", "run", run.index, "budget", c.runBudget)
	c.emit(StatusEvent{Kind: StatusRunStart, Run: run.index})
	return run, nil
}

func (c *Controller) advance(run *runActive) error {
	chunk, done, err := c.chunker.Step(run.exec)
	if err != nil {
		return c.fail(&SliceAdvanceError{Run: run.index, Chunk: run.series.Len(), Err: err})
	}
	if err := run.series.Append(chunk); err != nil {
		return c.fail(err)
	}
	idx := run.series.Len() - 1
	c.logger.Debug("Chunk", "run", run.index, "chunk", idx, "steps", chunk.Steps, "ms", chunk.Milliseconds())
	c.emit(StatusEvent{Kind: StatusChunk, Run: run.index, Chunk: idx, Steps: chunk.Steps, Elapsed: chunk.Elapsed})
	if !done {
		return nil
	}

	if err := c.drainOutput(); err != nil {
		return c.fail(&SliceAdvanceError{Run: run.index, Chunk: idx, Err: err})
	}
	run.series.Seal()
	if err := c.history.Append(run.series); err != nil {
		return c.fail(err)
	}
	c.state = idle{}

	c.logger.Info("Run sealed",
		"run", run.index,
		"chunks", run.series.Len(),
		"steps", run.series.Steps(),
		"total_ms", fmt.Sprintf("%.2f", run.series.TotalMilliseconds()),
	)
	c.emit(StatusEvent{
		Kind:    StatusRunSealed,
		Run:     run.index,
		Chunk:   idx,
		Steps:   run.series.Steps(),
		Elapsed: time.Duration(run.series.TotalMilliseconds() * float64(time.Millisecond)),
	})
	return nil
}

// drainOutput copies the finished run's output to the host and releases
// both copies. The values are not inspected.
func (c *Controller) drainOutput() (err error) {
	out, err := c.res.att.PeekOutput()
	if err != nil {
		return fmt.Errorf("peek output: %w", err)
	}
	defer func() { err = errors.Join(err, release("output buffer", out)) }()

	host, err := out.ReadbackAndClone()
	if err != nil {
		return fmt.Errorf("readback output: %w", err)
	}
	defer func() { err = errors.Join(err, release("host output", host)) }()

	if _, err := host.Data(); err != nil {
		return fmt.Errorf("download output: %w", err)
	}
	return nil
}

func (c *Controller) finish() error {
	report := timing.Aggregate(c.history)
	c.state = completed{report: report}

	c.logger.Info("Benchmark completed", "runs", c.history.Len())
	c.emit(StatusEvent{Kind: StatusCompleted, Run: c.history.Len()})
	return c.publish(report)
}

// fail aborts the benchmark. Sealed runs are still reported.
func (c *Controller) fail(err error) error {
	c.state = failed{err: err}
	c.logger.Error("Run aborted", "error", err, "sealed_runs", c.history.Len())
	ev := StatusEvent{Kind: StatusFailed, Run: c.started, Err: err}
	var sae *SliceAdvanceError
	if errors.As(err, &sae) {
		ev.Run = sae.Run
	}
	c.emit(ev)

	if c.history.Len() == 0 {
		return err
	}
	if perr := c.publish(timing.Aggregate(c.history)); perr != nil {
		return errors.Join(err, perr)
	}
	return err
}

func (c *Controller) publish(r timing.Report) error {
	if c.sink == nil {
		return nil
	}
	if err := c.sink.Publish(r); err != nil {
		c.logger.Error("Failed to publish report", "error", err)
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

// Report aggregates the sealed runs. It has no side effects.
func (c *Controller) Report() timing.Report {
	if s, ok := c.state.(completed); ok {
		return s.report
	}
	return timing.Aggregate(c.history)
}

// Phase returns the current state.
func (c *Controller) Phase() Phase { return c.state.phase() }

// CompletedRuns returns how many runs were sealed into the history.
func (c *Controller) CompletedRuns() int { return c.history.Len() }

// StartedRuns returns how many runs were started.
func (c *Controller) StartedRuns() int { return c.started }

// Err returns the error that put the controller in a dead state, if any.
func (c *Controller) Err() error {
	switch s := c.state.(type) {
	case uninitialized:
		return s.err
	case failed:
		return s.err
	default:
		return nil
	}
}

// Close releases the attachment and the input buffer, whether or not a run
// is in flight. Release failures are logged and returned, never retried.
func (c *Controller) Close() error {
	if _, ok := c.state.(closed); ok {
		return nil
	}
	if run, ok := c.state.(*runActive); ok {
		c.logger.Warn("Closing with run in flight", "run", run.index, "chunks", run.series.Len())
	}

	var errs []error
	if c.res != nil {
		errs = append(errs, closeAttachment(c.res.att), release("input buffer", c.res.input))
		c.res = nil
	}
	c.state = closed{}

	err := errors.Join(errs...)
	if err != nil {
		c.logger.Error("Teardown release failed", "error", err)
	}
	return err
}

func (c *Controller) emit(ev StatusEvent) {
	if c.observer == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	c.observer(ev)
}

func release(name string, b backend.Buffer) error {
	if err := b.Release(); err != nil {
		return &ResourceReleaseError{Resource: name, Err: err}
	}
	return nil
}

func closeAttachment(att backend.Attachment) error {
	if err := att.Close(); err != nil {
		return &ResourceReleaseError{Resource: "backend attachment", Err: err}
	}
	return nil
}
