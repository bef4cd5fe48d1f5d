// Package pipeline orchestrates file discovery, per-file processing, and
// batch summary reporting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dmworker/internal/jsonfile"
	"dmworker/internal/logger"
	"dmworker/internal/normalizer"
)

// ErrInputDir is returned when the input directory is missing or not a directory.
var ErrInputDir = errors.New("input folder does not exist")

// RecordWriter persists one transformed record.
type RecordWriter interface {
	Write(path string, v any) error
}

// Runner processes drilling-machine files one at a time.
type Runner struct {
	processor *normalizer.Processor
	writer    RecordWriter
	pattern   string
	log       *logger.Logger
}

// NewRunner creates a runner applying processor to files matching pattern.
// An empty pattern selects DefaultPattern.
func NewRunner(processor *normalizer.Processor, pattern string, log *logger.Logger) *Runner {
	if pattern == "" {
		pattern = DefaultPattern
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Runner{
		processor: processor,
		writer:    jsonfile.NewWriter(),
		pattern:   pattern,
		log:       log,
	}
}

// ProcessFile reads inputPath, runs the pipeline on it and atomically writes
// the result to outputDir under the same name. Errors are returned, not
// logged: *jsonfile.FileError and *normalizer.StepError are per-file
// failures, anything else is unexpected.
func (r *Runner) ProcessFile(inputPath, outputDir string) error {
	name := filepath.Base(inputPath)
	r.log.Info("Processing file", "file", name)

	record, err := jsonfile.Read(inputPath)
	if err != nil {
		return err
	}

	out, err := r.processor.Process(name, record)
	if err != nil {
		return err
	}

	return r.writer.Write(filepath.Join(outputDir, name), out)
}

// Run processes every matching file of inputDir into outputDir. A file that
// fails with a classified error is counted and logged, and the batch moves
// on. Any other error, including cancellation of ctx, stops the batch and is
// returned with the stats gathered so far.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string) (stats RunStats, err error) {
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		r.log.Error("Input folder does not exist", "dir", inputDir)
		return stats, fmt.Errorf("%w: %s", ErrInputDir, inputDir)
	}

	if err = os.MkdirAll(outputDir, 0755); err != nil {
		return stats, fmt.Errorf("failed to create output folder: %w", err)
	}

	files, err := Discover(inputDir, r.pattern)
	if err != nil {
		return stats, err
	}

	if len(files) == 0 {
		r.log.Warn("No files matched", "dir", inputDir, "pattern", r.pattern)
		return stats, nil
	}

	stats.Total = len(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			r.log.Warn("Batch interrupted", "processed", stats.Processed, "failed", stats.Failed)
			return stats, err
		}

		name := filepath.Base(path)

		err := r.ProcessFile(path, outputDir)
		if err == nil {
			stats.record(FileResult{Name: name, Status: StatusProcessed})
			r.log.Info("Processed file", "file", name, "success", stats.Processed, "failures", stats.Failed)

			continue
		}

		result, ok := classify(name, err)
		if !ok {
			r.log.Error("Unexpected error", "file", name, "error", err)
			return stats, fmt.Errorf("processing %s: %w", name, err)
		}

		stats.record(result)
		r.logFailure(result)
	}

	r.log.Info("Processing complete",
		"success", stats.Processed,
		"failures", stats.Failed,
		"step_failures", stats.StepFailures,
		"total", stats.Total,
	)

	return stats, nil
}

// classify maps err onto a failed FileResult when it belongs to the known
// per-file taxonomy.
func classify(name string, err error) (FileResult, bool) {
	var stepErr *normalizer.StepError
	if errors.As(err, &stepErr) {
		return FileResult{Name: name, Status: StatusFailed, Step: stepErr.Step, Err: err}, true
	}

	var fileErr *jsonfile.FileError
	if errors.As(err, &fileErr) {
		return FileResult{Name: name, Status: StatusFailed, Kind: fileErr.Op + ":" + fileErr.Kind.String(), Err: err}, true
	}

	return FileResult{}, false
}

func (r *Runner) logFailure(res FileResult) {
	if res.Step != "" {
		r.log.Error("PipelineStepError", "file", res.Name, "step", res.Step, "error", res.Err,
			"cause", errors.Unwrap(res.Err))

		return
	}

	r.log.Error("FileProcessingError", "file", res.Name, "kind", res.Kind, "error", res.Err)
}
