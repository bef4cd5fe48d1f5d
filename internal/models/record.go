// Package models defines the drilling-machine record that flows through the worker.
package models

// Record is one JSON-decoded drilling-machine document.
//
// Values are whatever encoding/json produces with UseNumber: string,
// json.Number, bool, nil, map[string]any and []any. A nil Record stands for
// a document whose top level was not a JSON object.
type Record map[string]any

// Top-level keys of a drilling-machine record.
const (
	KeyMachineID           = "machine_id"
	KeyName                = "name"
	KeyLocation            = "location"
	KeyStatus              = "status"
	KeySpecifications      = "specifications"
	KeyLastMaintenanceDate = "last_maintenance_date"
	KeyNextMaintenanceDue  = "next_maintenance_due"
	KeyContactInformation  = "contact_information"
)

// Keys under specifications that carry mile-denominated values, and their
// meter-denominated replacements.
const (
	KeyDepthCapacityMiles        = "depth_capacity_miles"
	KeyDepthCapacityMeters       = "depth_capacity_meters"
	KeyDrillingSpeedMilesPerDay  = "drilling_speed_miles_per_day"
	KeyDrillingSpeedMetersPerDay = "drilling_speed_meters_per_day"
)

// Fields of contact_information.
const (
	KeyOperatorCompany = "operator_company"
	KeyContactPerson   = "contact_person"
	KeyPhone           = "phone"
	KeyEmail           = "email"
)

// RelevantKeys is the allow-list of top-level keys kept by the worker.
var RelevantKeys = map[string]struct{}{
	KeyMachineID:           {},
	KeyName:                {},
	KeyLocation:            {},
	KeyStatus:              {},
	KeySpecifications:      {},
	KeyLastMaintenanceDate: {},
	KeyNextMaintenanceDue:  {},
	KeyContactInformation:  {},
}

// IsRelevant reports whether key is on the top-level allow-list.
func IsRelevant(key string) bool {
	_, ok := RelevantKeys[key]
	return ok
}

// EmptyContactInformation returns a fresh all-null contact_information mapping.
func EmptyContactInformation() map[string]any {
	return map[string]any{
		KeyOperatorCompany: nil,
		KeyContactPerson:   nil,
		KeyPhone:           nil,
		KeyEmail:           nil,
	}
}

// Copy returns a shallow copy of r. Nested maps and slices are shared.
func (r Record) Copy() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}

	return out
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	out, _ := CloneValue(map[string]any(r)).(map[string]any)

	return Record(out)
}

// CloneValue deep-copies maps and slices inside v; other values are returned as is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = CloneValue(item)
		}

		return out
	case Record:
		return Record(CloneValue(map[string]any(val)).(map[string]any))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}

		return out
	default:
		return v
	}
}

// AsMap returns v as a plain mapping when it is one.
func AsMap(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case Record:
		return map[string]any(val), true
	default:
		return nil, false
	}
}
