package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"dmworker/internal/models"
)

// Validation errors.
var (
	ErrNotARecord       = errors.New("step result is not a record")
	ErrUnsupportedValue = errors.New("record holds a value that cannot be encoded as JSON")
)

// Validator checks that a step produced a well-formed record.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns an error when data is nil or holds values outside the
// JSON data model.
func (v *Validator) Validate(data models.Record) error {
	if data == nil {
		return ErrNotARecord
	}

	for k, val := range data {
		if err := validateValue(val); err != nil {
			return fmt.Errorf("%w at %q", err, k)
		}
	}

	return nil
}

func validateValue(v any) error {
	switch val := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ErrUnsupportedValue
		}

		return nil
	case float32:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return ErrUnsupportedValue
		}

		return nil
	case map[string]any:
		for k, item := range val {
			if err := validateValue(item); err != nil {
				return fmt.Errorf("%w at %q", err, k)
			}
		}

		return nil
	case models.Record:
		return validateValue(map[string]any(val))
	case []any:
		for i, item := range val {
			if err := validateValue(item); err != nil {
				return fmt.Errorf("%w at index %d", err, i)
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
