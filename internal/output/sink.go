// Package output renders benchmark reports to logs, text, CSV and JSON Lines.
package output

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"slicebench/internal/timing"
)

// Sink publishes a finished report.
type Sink interface {
	Publish(r timing.Report) error
}

// LogSink logs one line per run.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(r timing.Report) error {
	for _, run := range r.Runs {
		s.logger.Info(run.String(),
			"run", run.Index,
			"chunks", run.Chunks,
			"steps", run.Steps,
			"total_ms", fmt.Sprintf("%.2f", run.TotalMS),
		)
	}
	return nil
}

// TextSink writes the report text as is.
type TextSink struct {
	w io.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (s *TextSink) Publish(r timing.Report) error {
	_, err := io.WriteString(s.w, r.Text)
	return err
}

// Multi fans a report out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(r timing.Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
