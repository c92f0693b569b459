// internal/sched/scheduler.go

package sched

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"slicebench/internal/ctxlog"
	"slicebench/internal/metrics"
)

// Driver is the host loop: it ticks the controller at a fixed rate and
// streams the controller's status changes to a consumer.
type Driver struct {
	ctrl     *Controller
	clock    *TickClock
	interval time.Duration
	statusCh chan StatusEvent // events from the ticking goroutine
	loopErr  error            // written before statusCh closes

	// logging-related
	csvFile   *os.File
	csvWriter *csv.Writer
}

// NewDriver wires itself as the controller's observer. The controller must
// not have another observer.
func NewDriver(ctrl *Controller, cfg Config) *Driver {
	d := &Driver{
		ctrl:     ctrl,
		clock:    NewTickClock(),
		interval: cfg.TickInterval(),
		statusCh: make(chan StatusEvent, 256), // buffered channel for status events
	}
	ctrl.observer = func(ev StatusEvent) { d.statusCh <- ev }
	return d
}

// EnableCSVLogging opens the given file path for CSV logging of events.
// Must be called before Run().
func (d *Driver) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	// write header
	if err := w.Write([]string{"timestamp", "tick", "event", "run", "chunk", "steps", "elapsed_ms", "error"}); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	d.csvFile = f
	d.csvWriter = w
	return nil
}

// Run ticks the controller until it reaches a terminal phase or ctx is
// cancelled, then closes it. It returns the error that stopped the
// controller joined with any teardown error.
func (d *Driver) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	d.clock.Start(d.interval)

	// start loop
	go d.loop(ctx)

	// consume events
	for ev := range d.statusCh {
		d.handleEvent(ctx, ev)
	}

	var csvErr error
	if d.csvFile != nil {
		d.csvWriter.Flush()
		csvErr = errors.Join(d.csvWriter.Error(), d.csvFile.Close())
	}

	logger.Debug("Driver stopped", "ticks", d.clock.Count(), "dropped_ticks", d.clock.Dropped(), "phase", d.ctrl.Phase())
	return errors.Join(d.loopErr, d.ctrl.Close(), csvErr)
}

// loop owns the controller: exactly one Tick is in flight at a time.
func (d *Driver) loop(ctx context.Context) {
	defer func() {
		// stop the underlying clock to release its goroutine
		d.clock.Stop()
		close(d.statusCh)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.clock.Ch:
		}

		d.statusCh <- StatusEvent{Time: time.Now(), Kind: StatusTick}
		if err := d.ctrl.Tick(); err != nil {
			d.loopErr = err
			return
		}
		if d.ctrl.Phase().Terminal() {
			return
		}
	}
}

func (d *Driver) handleEvent(ctx context.Context, ev StatusEvent) {
	metrics.Observe(metricsKind(ev.Kind), ev.Steps, ev.Elapsed)

	// ticks are frequent; they only feed the metrics
	if ev.Kind == StatusTick {
		return
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Status",
		"event", ev.Kind.String(),
		"tick", d.clock.Count(),
		"run", ev.Run,
		"chunk", ev.Chunk,
		"steps", ev.Steps,
		"elapsed", ev.Elapsed,
	)

	// CSV output
	if d.csvWriter != nil {
		errText := ""
		if ev.Err != nil {
			errText = ev.Err.Error()
		}
		rec := []string{
			ev.Time.Format(time.RFC3339Nano),
			strconv.FormatInt(d.clock.Count(), 10),
			ev.Kind.String(),
			strconv.Itoa(ev.Run),
			strconv.Itoa(ev.Chunk),
			strconv.Itoa(ev.Steps),
			fmt.Sprintf("%.4f", float64(ev.Elapsed)/float64(time.Millisecond)),
			errText,
		}
		if err := d.csvWriter.Write(rec); err != nil {
			logger.Error("Failed to write status event to CSV", "error", err)
		}
		d.csvWriter.Flush()
	}
}

func metricsKind(k StatusKind) metrics.Kind {
	switch k {
	case StatusRunStart:
		return metrics.RunStarted
	case StatusChunk:
		return metrics.ChunkRecorded
	case StatusRunSealed:
		return metrics.RunSealed
	case StatusFailed:
		return metrics.RunFailed
	case StatusTick:
		return metrics.Tick
	default:
		return metrics.Other
	}
}
