package vals

import (
	"math"
	"strconv"
	"strings"
)

// Stringer wraps the String method.
type Stringer interface {
	// Stringer converts the receiver to a string.
	String() string
}

// ToString converts a value to a string, as used by print and string
// concatenation. Elements of arrays are joined with commas, with null
// elements and arrays that contain themselves rendered as empty.
func ToString(v any) string {
	return toString(v, nil)
}

func toString(v any, seen map[*Array]bool) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return FormatNumber(v)
	case string:
		return v
	case *Array:
		if seen[v] {
			return ""
		}
		seen = with(seen, v)
		defer delete(seen, v)
		var sb strings.Builder
		for i, elem := range v.Elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			if elem != nil {
				sb.WriteString(toString(elem, seen))
			}
		}
		return sb.String()
	case Stringer:
		return v.String()
	default:
		return Repr(v)
	}
}

// FormatNumber formats a number the way scripts display them: integral values
// have no fractional part, and very large or very small magnitudes use
// exponent notation.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits; drop the padding.
		i := strings.IndexByte(s, 'e')
		return s[:i+2] + strings.TrimLeft(s[i+2:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func with(seen map[*Array]bool, a *Array) map[*Array]bool {
	if seen == nil {
		seen = make(map[*Array]bool)
	}
	seen[a] = true
	return seen
}
