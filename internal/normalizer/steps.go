package normalizer

import (
	"errors"
	"fmt"

	"dmworker/internal/models"
)

// Step names, used in errors, logs and configuration.
const (
	StepNormalizeKeyCasing       = "normalize_key_casing"
	StepFilterRelevantFields     = "filter_relevant_fields"
	StepReformatDates            = "reformat_dates"
	StepConvertMileageToMetric   = "convert_mileage_to_metric"
	StepEnsureContactInformation = "ensure_contact_information"
)

// ErrUnknownStep is returned when a configured step name is not registered.
var ErrUnknownStep = errors.New("unknown pipeline step")

// TransformFunc is a total record transform.
type TransformFunc func(models.Record) models.Record

// StepFunc is a pipeline stage that may fail.
type StepFunc func(models.Record) (models.Record, error)

// Step is a named pipeline stage.
type Step struct {
	Name  string
	Apply StepFunc
}

// Lift wraps a total transform into a Step.
func Lift(name string, fn TransformFunc) Step {
	return Step{
		Name: name,
		Apply: func(r models.Record) (models.Record, error) {
			return fn(r), nil
		},
	}
}

// DefaultStepNames lists the standard transforms in pipeline order.
func DefaultStepNames() []string {
	return []string{
		StepNormalizeKeyCasing,
		StepFilterRelevantFields,
		StepReformatDates,
		StepConvertMileageToMetric,
		StepEnsureContactInformation,
	}
}

func (t *Transformer) registry() map[string]TransformFunc {
	return map[string]TransformFunc{
		StepNormalizeKeyCasing:       t.NormalizeKeyCasing,
		StepFilterRelevantFields:     t.FilterRelevantFields,
		StepReformatDates:            t.ReformatDates,
		StepConvertMileageToMetric:   t.ConvertMileageToMetric,
		StepEnsureContactInformation: t.EnsureContactInformation,
	}
}

// DefaultSteps returns the five standard transforms in pipeline order.
func (t *Transformer) DefaultSteps() []Step {
	steps, _ := t.StepsByName(DefaultStepNames())
	return steps
}

// StepsByName resolves step names to steps, keeping the given order.
func (t *Transformer) StepsByName(names []string) ([]Step, error) {
	reg := t.registry()
	steps := make([]Step, 0, len(names))

	for _, name := range names {
		fn, ok := reg[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, name)
		}

		steps = append(steps, Lift(name, fn))
	}

	return steps, nil
}

// IsKnownStep reports whether name is a registered transform.
func IsKnownStep(name string) bool {
	_, ok := defaultTransformer.registry()[name]
	return ok
}
