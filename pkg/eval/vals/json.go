package vals

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
)

// JSONer is implemented by values that have a custom JSON rendering.
type JSONer interface {
	// JSONValue returns a value that encoding/json can marshal.
	JSONValue() any
}

// ErrCircular is returned when converting an array that contains itself.
var ErrCircular = errors.New("cannot convert circular array to JSON")

// JSON renders a value as JSON. NaN and infinities become null. The indent
// argument is used for each level of nesting; with an empty indent the output
// is compact.
func JSON(v any, indent string) (string, error) {
	jv, err := ToJSONValue(v)
	if err != nil {
		return "", err
	}
	return MarshalJSON(jv, indent)
}

// JSONMap renders a mapping of names to values as a JSON object with keys in
// sorted order.
func JSONMap(names []string, get func(string) any, indent string) (string, error) {
	m, err := ToJSONObject(names, get)
	if err != nil {
		return "", err
	}
	return MarshalJSON(m, indent)
}

// ToJSONObject converts the values of a mapping with ToJSONValue.
func ToJSONObject(names []string, get func(string) any) (map[string]any, error) {
	m := make(map[string]any, len(names))
	for _, name := range names {
		jv, err := ToJSONValue(get(name))
		if err != nil {
			return nil, err
		}
		m[name] = jv
	}
	return m, nil
}

// MarshalJSON marshals a value already converted with ToJSONValue. Map keys
// are sorted, and HTML characters are not escaped.
func MarshalJSON(jv any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(jv); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// ToJSONValue converts a value to one that encoding/json can marshal.
func ToJSONValue(v any) (any, error) {
	return toJSONValue(v, nil)
}

func toJSONValue(v any, seen map[*Array]bool) (any, error) {
	switch v := v.(type) {
	case nil, bool, string:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil
		}
		return v, nil
	case *Array:
		if seen[v] {
			return nil, ErrCircular
		}
		seen = with(seen, v)
		defer delete(seen, v)
		elems := make([]any, len(v.Elems))
		for i, elem := range v.Elems {
			jv, err := toJSONValue(elem, seen)
			if err != nil {
				return nil, err
			}
			elems[i] = jv
		}
		return elems, nil
	case JSONer:
		return v.JSONValue(), nil
	default:
		return Repr(v), nil
	}
}
