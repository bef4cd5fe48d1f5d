package normalizer

import (
	"encoding/json"
	"log/slog"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"dmworker/internal/logger"
	"dmworker/internal/models"
)

// MetersPerMile is the factor applied by the mileage conversion.
const MetersPerMile = 1609.0

const (
	isoDateLayout    = "2006-01-02"
	outputDateLayout = "02/01/2006"
)

// mileageFields maps each mile-denominated specification to its metric key.
var mileageFields = []struct {
	miles  string
	meters string
}{
	{models.KeyDepthCapacityMiles, models.KeyDepthCapacityMeters},
	{models.KeyDrillingSpeedMilesPerDay, models.KeyDrillingSpeedMetersPerDay},
}

var dateFields = []string{models.KeyLastMaintenanceDate, models.KeyNextMaintenanceDue}

// Transformer holds the record transforms. Every transform returns a new
// record and never mutates its input.
type Transformer struct {
	log         *logger.Logger
	datePattern *regexp.Regexp
}

// NewTransformer creates a new transformer instance reporting to log.
func NewTransformer(log *logger.Logger) *Transformer {
	if log == nil {
		log = logger.Discard()
	}

	return &Transformer{
		log:         log,
		datePattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	}
}

var defaultTransformer = NewTransformer(nil)

// NormalizeKeyCasing lower-cases every key at every depth. See Transformer.NormalizeKeyCasing.
func NormalizeKeyCasing(r models.Record) models.Record {
	return defaultTransformer.NormalizeKeyCasing(r)
}

// FilterRelevantFields keeps only allow-listed top-level keys.
func FilterRelevantFields(r models.Record) models.Record {
	return defaultTransformer.FilterRelevantFields(r)
}

// ReformatDates rewrites ISO maintenance dates as DD/MM/YYYY.
func ReformatDates(r models.Record) models.Record {
	return defaultTransformer.ReformatDates(r)
}

// ConvertMileageToMetric converts mile-denominated specifications to meters.
func ConvertMileageToMetric(r models.Record) models.Record {
	return defaultTransformer.ConvertMileageToMetric(r)
}

// EnsureContactInformation guarantees contact_information is a mapping.
func EnsureContactInformation(r models.Record) models.Record {
	return defaultTransformer.EnsureContactInformation(r)
}

// NormalizeKeyCasing returns a deep copy of r where every key, including keys
// of mappings nested in arrays, is lower-cased. A nil record yields an empty
// one. When two keys collide after lower-casing, keys are visited in sorted
// order and the last one wins.
func (t *Transformer) NormalizeKeyCasing(r models.Record) models.Record {
	if r == nil {
		t.log.Debug("input is not a mapping, returning empty record", "step", StepNormalizeKeyCasing)
		return models.Record{}
	}

	return models.Record(lowerKeys(map[string]any(r)))
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out[strings.ToLower(k)] = lowerKeysValue(m[k])
	}

	return out
}

func lowerKeysValue(v any) any {
	if m, ok := models.AsMap(v); ok {
		return lowerKeys(m)
	}

	if items, ok := v.([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = lowerKeysValue(item)
		}

		return out
	}

	return v
}

// FilterRelevantFields returns a record holding only the allow-listed
// top-level keys. Nested values are shared with the input, not copied.
func (t *Transformer) FilterRelevantFields(r models.Record) models.Record {
	out := make(models.Record, len(models.RelevantKeys))

	for k, v := range r {
		if models.IsRelevant(k) {
			out[k] = v
		}
	}

	if t.log.Enabled(slog.LevelDebug) {
		for _, k := range slices.Sorted(maps.Keys(r)) {
			if !models.IsRelevant(k) {
				t.log.Debug("dropping irrelevant top-level key", "key", k)
			}
		}
	}

	return out
}

// ReformatDates converts last_maintenance_date and next_maintenance_due from
// YYYY-MM-DD to DD/MM/YYYY. Values that are not valid ISO dates are kept.
func (t *Transformer) ReformatDates(r models.Record) models.Record {
	out := r.Copy()

	for _, key := range dateFields {
		s, ok := out[key].(string)
		if !ok {
			continue
		}

		converted, ok := t.formatISODate(s)
		if !ok {
			t.log.Debug("date left unchanged", "key", key, "value", s)
			continue
		}

		t.log.Debug("converted date", "key", key, "from", s, "to", converted)
		out[key] = converted
	}

	return out
}

func (t *Transformer) formatISODate(s string) (string, bool) {
	if !t.datePattern.MatchString(s) {
		return "", false
	}

	d, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return "", false
	}

	return d.Format(outputDateLayout), true
}

// ConvertMileageToMetric replaces depth_capacity_miles and
// drilling_speed_miles_per_day under specifications with their meter
// equivalents. Values that do not parse as finite numbers, or whose meter
// value overflows, stay as they are.
// A missing or non-mapping specifications is passed through.
func (t *Transformer) ConvertMileageToMetric(r models.Record) models.Record {
	out := r.Copy()

	specs, ok := models.AsMap(out[models.KeySpecifications])
	if !ok {
		return out
	}

	converted := make(map[string]any, len(specs))
	maps.Copy(converted, specs)

	for _, f := range mileageFields {
		raw, present := converted[f.miles]
		if !present {
			continue
		}

		miles, ok := toFloat(raw)
		if !ok {
			t.log.Debug("mileage left unchanged", "key", f.miles, "value", raw)
			continue
		}

		meters := miles * MetersPerMile
		if math.IsInf(meters, 0) {
			t.log.Debug("mileage left unchanged, meters overflow", "key", f.miles, "value", raw)
			continue
		}

		delete(converted, f.miles)
		converted[f.meters] = meters
		t.log.Debug("converted mileage", "key", f.miles, "miles", miles, "meters", meters)
	}

	out[models.KeySpecifications] = converted

	return out
}

// toFloat accepts numbers and numeric strings. Non-finite values are rejected
// because they cannot be written back as JSON.
func toFloat(v any) (float64, bool) {
	var f float64

	switch val := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil {
			return 0, false
		}

		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}

		f = parsed
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// EnsureContactInformation sets contact_information to an all-null template
// when it is absent or not a mapping. An existing mapping is kept as is, even
// when some of its fields are missing.
func (t *Transformer) EnsureContactInformation(r models.Record) models.Record {
	out := r.Copy()

	if _, ok := models.AsMap(out[models.KeyContactInformation]); ok {
		return out
	}

	out[models.KeyContactInformation] = models.EmptyContactInformation()
	t.log.Debug("added missing contact_information template")

	return out
}
