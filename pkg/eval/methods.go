package eval

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"src.dde.sh/pkg/eval/errs"
	"src.dde.sh/pkg/eval/vals"
)

type method[T any] struct {
	minArgs, maxArgs int
	impl             func(recv T, args []any) (any, error)
}

func (m method[T]) call(name string, recv T, args []any) (any, error) {
	if err := checkArity("arguments of "+name, m.minArgs, m.maxArgs, len(args)); err != nil {
		return nil, err
	}
	return m.impl(recv, args)
}

var arrayMethods = map[string]method[*vals.Array]{
	"push": {0, -1, func(a *vals.Array, args []any) (any, error) {
		a.Push(args...)
		return a, nil
	}},
	"pop": {0, 0, func(a *vals.Array, _ []any) (any, error) {
		if a.Len() == 0 {
			return nil, nil
		}
		last := a.Elems[a.Len()-1]
		a.Elems = a.Elems[:a.Len()-1]
		return last, nil
	}},
	"join": {0, 1, func(a *vals.Array, args []any) (any, error) {
		sep := ","
		if len(args) == 1 {
			s, err := stringArg("separator", args[0])
			if err != nil {
				return nil, err
			}
			sep = s
		}
		strs := make([]string, a.Len())
		for i, elem := range a.Elems {
			if elem != nil {
				strs[i] = vals.ToString(elem)
			}
		}
		return strings.Join(strs, sep), nil
	}},
	"includes": {1, 1, func(a *vals.Array, args []any) (any, error) {
		return indexOfElem(a, args[0]) != -1, nil
	}},
	"indexOf": {1, 1, func(a *vals.Array, args []any) (any, error) {
		return float64(indexOfElem(a, args[0])), nil
	}},
	"slice": {0, 2, func(a *vals.Array, args []any) (any, error) {
		from, to, err := sliceBounds(a.Len(), args)
		if err != nil {
			return nil, err
		}
		return vals.NewArray(append([]any(nil), a.Elems[from:to]...)...), nil
	}},
}

var stringMethods = map[string]method[string]{
	"toUpperCase": {0, 0, func(s string, _ []any) (any, error) {
		return strings.ToUpper(s), nil
	}},
	"toLowerCase": {0, 0, func(s string, _ []any) (any, error) {
		return strings.ToLower(s), nil
	}},
	"trim": {0, 0, func(s string, _ []any) (any, error) {
		return strings.TrimSpace(s), nil
	}},
	"split": {0, 1, func(s string, args []any) (any, error) {
		if len(args) == 0 {
			return vals.NewArray(s), nil
		}
		sep, err := stringArg("separator", args[0])
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s, sep)
		elems := make([]any, len(parts))
		for i, part := range parts {
			elems[i] = part
		}
		return vals.NewArray(elems...), nil
	}},
	"includes": {1, 1, func(s string, args []any) (any, error) {
		sub, err := stringArg("substring", args[0])
		if err != nil {
			return nil, err
		}
		return strings.Contains(s, sub), nil
	}},
	"indexOf": {1, 1, func(s string, args []any) (any, error) {
		sub, err := stringArg("substring", args[0])
		if err != nil {
			return nil, err
		}
		i := strings.Index(s, sub)
		if i == -1 {
			return -1.0, nil
		}
		return float64(utf8.RuneCountInString(s[:i])), nil
	}},
	"slice": {0, 2, func(s string, args []any) (any, error) {
		runes := []rune(s)
		from, to, err := sliceBounds(len(runes), args)
		if err != nil {
			return nil, err
		}
		return string(runes[from:to]), nil
	}},
}

func callMethod(obj any, name string, args []any) (any, error) {
	switch obj := obj.(type) {
	case *vals.Array:
		if m, ok := arrayMethods[name]; ok {
			return m.call(name, obj, args)
		}
	case string:
		if m, ok := stringMethods[name]; ok {
			return m.call(name, obj, args)
		}
	}
	return nil, fmt.Errorf("property %q is not a function", name)
}

func getProperty(obj any, name string) (any, error) {
	if name == "length" {
		switch obj := obj.(type) {
		case *vals.Array:
			return float64(obj.Len()), nil
		case string:
			return float64(utf8.RuneCountInString(obj)), nil
		}
	}
	return nil, fmt.Errorf("no property %q on %s", name, vals.Kind(obj))
}

func indexValue(obj, idx any) (any, error) {
	switch obj := obj.(type) {
	case *vals.Array:
		i, err := indexArg(idx, obj.Len())
		if err != nil {
			return nil, err
		}
		return obj.Elems[i], nil
	case string:
		runes := []rune(obj)
		i, err := indexArg(idx, len(runes))
		if err != nil {
			return nil, err
		}
		return string(runes[i]), nil
	default:
		return nil, fmt.Errorf("cannot index %s", vals.Kind(obj))
	}
}

func indexArg(idx any, n int) (int, error) {
	f, ok := idx.(float64)
	if !ok {
		return 0, errs.BadValue{What: "index", Valid: "number", Actual: vals.Kind(idx)}
	}
	// Written so that NaN is out of range too.
	if !(f >= 0 && f < float64(n)) {
		return 0, errs.OutOfRange{What: "index",
			ValidLow: 0, ValidHigh: n - 1, Actual: vals.FormatNumber(f)}
	}
	if f != math.Trunc(f) {
		return 0, errs.BadValue{What: "index", Valid: "integer", Actual: vals.FormatNumber(f)}
	}
	return int(f), nil
}

// Resolves the optional start and end arguments of slice against a length n.
// Fractions are truncated, negative values count from the end, and values are
// clamped to [0, n]. NaN counts as 0.
func sliceBounds(n int, args []any) (int, int, error) {
	bounds := [2]int{0, n}
	for i, arg := range args {
		f, ok := arg.(float64)
		if !ok {
			what := [...]string{"start", "end"}[i]
			return 0, 0, errs.BadValue{What: what, Valid: "number", Actual: vals.Kind(arg)}
		}
		if math.IsNaN(f) {
			f = 0
		}
		f = math.Trunc(f)
		if f < 0 {
			f += float64(n)
		}
		// Clamp before converting, since int(f) is undefined for values out
		// of the range of int.
		bounds[i] = int(math.Max(0, math.Min(f, float64(n))))
	}
	if bounds[1] < bounds[0] {
		bounds[1] = bounds[0]
	}
	return bounds[0], bounds[1], nil
}

func stringArg(what string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errs.BadValue{What: what, Valid: "string", Actual: vals.Kind(v)}
	}
	return s, nil
}

func indexOfElem(a *vals.Array, v any) int {
	for i, elem := range a.Elems {
		if vals.Equal(elem, v) {
			return i
		}
	}
	return -1
}
