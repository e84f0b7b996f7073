package vals

import (
	"fmt"
	"strconv"
	"strings"
)

// Reprer wraps the Repr method.
type Reprer interface {
	// Repr returns a string that represents the value, such as
	// `<function f(a, b)>`.
	Repr() string
}

// Repr returns the representation of a value: a literal that evaluates to an
// equal value where possible. Strings are double-quoted, and arrays that
// contain themselves are shown as [...] at the point of recursion. It is used
// when echoing values in the REPL.
func Repr(v any) string {
	return repr(v, nil)
}

func repr(v any, seen map[*Array]bool) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool, float64:
		return ToString(v)
	case string:
		return strconv.Quote(v)
	case *Array:
		if seen[v] {
			return "[...]"
		}
		seen = with(seen, v)
		defer delete(seen, v)
		elems := make([]string, len(v.Elems))
		for i, elem := range v.Elems {
			elems[i] = repr(elem, seen)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case Reprer:
		return v.Repr()
	default:
		return fmt.Sprintf("<unknown %v>", v)
	}
}
