// Package normalizer provides the drilling-machine record transforms and the
// runner that applies them in sequence to a single record.
package normalizer

import (
	"errors"
	"fmt"

	"dmworker/internal/models"
)

// ErrStepPanic marks a step that panicked instead of returning.
var ErrStepPanic = errors.New("step panicked")

// StepError reports a pipeline step that failed or broke its contract.
type StepError struct {
	Step string
	File string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed for file %q: %v", e.Step, e.File, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Processor handles data processing and transformation.
type Processor struct {
	steps     []Step
	validator *Validator
}

// NewProcessor creates a processor running steps in order.
func NewProcessor(steps []Step) *Processor {
	return &Processor{
		steps:     steps,
		validator: NewValidator(),
	}
}

// Process feeds record through every step, each step receiving the previous
// step's output. The first failing step aborts processing with a *StepError
// naming the step and fileName. Failed steps are not retried.
func (p *Processor) Process(fileName string, record models.Record) (models.Record, error) {
	// Steps work on a private copy of record.
	data := record.Clone()

	for _, step := range p.steps {
		out, err := p.apply(step, data)
		if err != nil {
			return nil, &StepError{Step: step.Name, File: fileName, Err: err}
		}

		if err := p.validator.Validate(out); err != nil {
			return nil, &StepError{Step: step.Name, File: fileName, Err: err}
		}

		data = out
	}

	return data, nil
}

func (p *Processor) apply(step Step, data models.Record) (out models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrStepPanic, r)
		}
	}()

	return step.Apply(data)
}
