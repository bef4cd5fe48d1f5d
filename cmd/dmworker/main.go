// Package main provides the drilling-machine worker: it normalizes raw
// drilling-machine JSON records from an input folder into an output folder.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"dmworker/internal/config"
	"dmworker/internal/logger"
	"dmworker/internal/normalizer"
	"dmworker/internal/pipeline"
	"dmworker/internal/trigger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the worker and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 2
	}

	baseLog, err := logger.NewWithFile(cfg.Logging.Level, cfg.Logging.GetLogFile(time.Now()))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer baseLog.Close()

	log := baseLog.With("run_id", uuid.New().String())
	log.Info("Starting drilling machine worker", "config", cfg.String())

	steps, err := normalizer.NewTransformer(log).StepsByName(cfg.Pipeline.Steps)
	if err != nil {
		log.Error("Invalid pipeline", "error", err)
		return 1
	}

	runner := pipeline.NewRunner(normalizer.NewProcessor(steps), cfg.Pipeline.Pattern, log)

	batch := func(ctx context.Context) error {
		stats, err := runner.Run(ctx, cfg.Pipeline.InputDir, cfg.Pipeline.OutputDir)
		if stats.Total > 0 {
			fmt.Fprintln(stdout, pipeline.Summary(stats))
		}

		return err
	}

	if err := batch(ctx); err != nil {
		if ctx.Err() != nil {
			log.Info("Interrupted")
			return 0
		}

		log.Error("Worker aborted", "error", err)

		return 1
	}

	switch cfg.Trigger.Mode {
	case config.ModeWatch:
		err = trigger.Watch(ctx, cfg.Pipeline.InputDir, cfg.Pipeline.Pattern, cfg.Trigger.GetDebounce(), batch, log)
	case config.ModeSchedule:
		err = trigger.Schedule(ctx, cfg.Trigger.Schedule, batch, log)
	}

	if err != nil && ctx.Err() == nil {
		log.Error("Worker aborted", "error", err)
		return 1
	}

	log.Info("Worker finished")

	return 0
}

// parseConfig builds the configuration from the optional -config file, then
// applies the flags that were set on the command line.
func parseConfig(args []string, stderr io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet("dmworker", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to YAML configuration file")
	inputDir := fs.String("input", "", "Folder holding raw drilling machine files")
	outputDir := fs.String("output", "", "Folder receiving processed files")
	pattern := fs.String("pattern", "", "Glob selecting input files (default "+pipeline.DefaultPattern+")")
	mode := fs.String("mode", "", "Run mode: once, watch or schedule")
	schedule := fs.String("schedule", "", "Cron expression or @every interval for schedule mode")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn or error")
	logFile := fs.String("log-file", "", "Also write logs to this file; {timestamp} expands to the start time")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()

	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Pipeline.InputDir = *inputDir
		case "output":
			cfg.Pipeline.OutputDir = *outputDir
		case "pattern":
			cfg.Pipeline.Pattern = *pattern
		case "mode":
			cfg.Trigger.Mode = *mode
		case "schedule":
			cfg.Trigger.Schedule = *schedule
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-file":
			cfg.Logging.File = *logFile
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
