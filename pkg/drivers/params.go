package drivers

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseConnectionString splits "key1=value1;key2=value2" into a
// parameter map. Items are split on ";", then on the first "=" so
// values may contain "=". Keys are trimmed, no value escaping.
func ParseConnectionString(connStr string) map[string]interface{} {
	params := map[string]interface{}{}
	for _, item := range strings.Split(connStr, ";") {
		if strings.TrimSpace(item) == "" {
			continue
		}

		kv := strings.SplitN(item, "=", 2)
		key := strings.TrimSpace(kv[0])
		value := ""
		if len(kv) == 2 {
			value = kv[1]
		}
		params[key] = value
	}
	return params
}

// MergeParams overlays supplied values on a fresh copy of defaults.
// The defaults map is never mutated.
func MergeParams(defaults, supplied map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults)+len(supplied))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range supplied {
		merged[key] = value
	}
	return merged
}

// CoerceInt converts an int, int64, float64 or numeric string value.
func CoerceInt(v interface{}) (int, error) {
	switch value := v.(type) {
	case int:
		return value, nil
	case int64:
		return int(value), nil
	case float64:
		return int(value), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, errors.Wrapf(err, "invalid integer value: %s", value)
		}
		return n, nil
	default:
		return 0, errors.Errorf("invalid integer value: %v", v)
	}
}

// CoerceBool converts a native bool as is. A string is true when it
// contains "true" case-insensitively. Anything else becomes false.
func CoerceBool(v interface{}) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return strings.Contains(strings.ToLower(value), "true")
	default:
		return false
	}
}

// CheckRequired returns a MissingArgumentError naming every required
// key that is absent or empty in params.
func CheckRequired(params map[string]interface{}, required []string) error {
	var missing []string
	for _, key := range required {
		value, ok := params[key]
		if !ok || value == nil || value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingArgumentError{Missing: missing}
	}
	return nil
}

// FilterParams drops keys that are not in recognized.
func FilterParams(params map[string]interface{}, recognized map[string]string) map[string]interface{} {
	filtered := map[string]interface{}{}
	for key, value := range params {
		if _, ok := recognized[key]; ok {
			filtered[key] = value
		}
	}
	return filtered
}
