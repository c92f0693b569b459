package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"slicebench/internal/backend/sim"
	"slicebench/internal/ctxlog"
	"slicebench/internal/output"
	"slicebench/internal/sched"
)

func main() {
	if err := run(os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(stdout, stderr io.Writer) error {
	// Read the configuration
	path := os.Getenv("SLICEBENCH_CONFIG")
	if path == "" {
		path = "config.yml"
	}
	cfg, err := sched.Load(path)
	if err != nil {
		return err
	}
	logger := output.NewLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	logger.Debug("Loaded config", "path", path, "config", fmt.Sprintf("%+v", cfg))

	asset, err := os.ReadFile(cfg.Model)
	if err != nil {
		return fmt.Errorf("read model asset: %w", err)
	}

	sinks := output.Multi{output.NewLogSink(logger), output.NewTextSink(stdout)}
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Error("Failed to close report file", "error", err)
			}
		}
	}()
	if cfg.ReportCSV != "" {
		w, err := output.NewCSVWriter(cfg.ReportCSV)
		if err != nil {
			return fmt.Errorf("init CSV report at %s: %w", cfg.ReportCSV, err)
		}
		sinks = append(sinks, w)
		closers = append(closers, w)
	}
	if cfg.ReportJSON != "" {
		w, err := output.NewJSONWriter(cfg.ReportJSON)
		if err != nil {
			return fmt.Errorf("init JSON report at %s: %w", cfg.ReportJSON, err)
		}
		sinks = append(sinks, w)
		closers = append(closers, w)
	}

	ctrl, err := sched.NewController(cfg, sim.NewLoader(), sim.NewBackend(), sinks, sched.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := ctrl.Setup(asset); err != nil {
		return err
	}

	driver := sched.NewDriver(ctrl, cfg)
	if cfg.CSVPath != "" {
		if err := driver.EnableCSVLogging(cfg.CSVPath); err != nil {
			return errors.Join(fmt.Errorf("open event log: %w", err), ctrl.Close())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return driver.Run(ctxlog.WithLogger(ctx, logger))
}
