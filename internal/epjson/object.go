package epjson

import (
	"encoding/json"
	"strings"

	"github.com/nvandessel/hardsize/internal/constants"
)

// Has reports whether the object declares key, whatever its value.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String safely extracts a string field, returning defaultVal if not found or wrong type.
func (o Object) String(key, defaultVal string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return defaultVal
}

// Float safely extracts a numeric field.
// Handles json.Number (documents read by this package), float64 and int.
func (o Object) Float(key string) (float64, bool) {
	switch v := o[key].(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// IsAutosized reports whether the field currently holds an engine autosize
// marker ("Autosize" or "Autocalculate", any casing).
func (o Object) IsAutosized(key string) bool {
	return IsAutosizeValue(o[key])
}

// IsAutosizeValue reports whether v is an autosize marker.
func IsAutosizeValue(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, constants.AutosizeValue) || strings.EqualFold(s, constants.AutocalculateValue)
}
