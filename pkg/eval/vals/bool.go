package vals

import "math"

// Truth converts a value to a boolean, used for conditions. The values false,
// null, 0, NaN and the empty string are falsy; everything else, including
// empty arrays, is truthy.
func Truth(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	default:
		return true
	}
}
