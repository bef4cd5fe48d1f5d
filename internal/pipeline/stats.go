package pipeline

import "time"

// Status is the outcome of one file.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// FileResult records what happened to one input file.
type FileResult struct {
	Name   string
	Status Status
	Step   string // failing step, for step failures
	Kind   string // failure kind, for file failures
	Err    error
}

// RunStats tracks aggregate counters across a batch run. It is owned by a
// single Run call and returned to the caller.
type RunStats struct {
	Total        int
	Processed    int
	Failed       int
	StepFailures int
	Results      []FileResult
	Duration     time.Duration
}

// Failures returns the results of files that were not written.
func (s *RunStats) Failures() []FileResult {
	var failed []FileResult

	for _, r := range s.Results {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}

	return failed
}

func (s *RunStats) record(r FileResult) {
	s.Results = append(s.Results, r)

	switch r.Status {
	case StatusProcessed:
		s.Processed++
	case StatusFailed:
		s.Failed++
		if r.Step != "" {
			s.StepFailures++
		}
	}
}
