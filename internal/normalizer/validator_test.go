package normalizer

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"dmworker/internal/models"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		data    models.Record
		wantErr error
	}{
		{"empty record", models.Record{}, nil},
		{
			"json values",
			models.Record{
				"s": "x", "n": json.Number("1"), "f": 1.5, "i": 2, "b": true, "null": nil,
				"obj":  map[string]any{"list": []any{"a", map[string]any{"k": 1.0}}},
				"nest": models.Record{"x": "y"},
			},
			nil,
		},
		{"nil record", nil, ErrNotARecord},
		{"NaN", models.Record{"f": math.NaN()}, ErrUnsupportedValue},
		{"Inf in list", models.Record{"l": []any{math.Inf(1)}}, ErrUnsupportedValue},
		{"func", models.Record{"fn": func() {}}, ErrUnsupportedValue},
		{"struct", models.Record{"s": struct{}{}}, ErrUnsupportedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate returned unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
