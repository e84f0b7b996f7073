// Package vals contains basic facilities for manipulating values used in dde
// scripts.
//
// A value is one of float64, string, bool, nil (null), *Array, or a type that
// implements Kinder, such as user-defined functions.
package vals

import (
	"fmt"
)

// Kinder wraps the Kind method.
type Kinder interface {
	Kind() string
}

// Kind returns the kind of the value. The result is also what the typeof
// builtin reports. For types not known to this package and not satisfying
// the Kinder interface, it returns the Go type name of the argument preceded
// by "!!".
func Kind(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Array:
		return "array"
	case Kinder:
		return v.Kind()
	default:
		return fmt.Sprintf("!!%T", v)
	}
}
