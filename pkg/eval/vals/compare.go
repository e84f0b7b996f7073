package vals

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUncomparable is wrapped by the error returned from Compare when the
// values cannot be ordered.
var ErrUncomparable = errors.New("cannot compare")

// Compare orders two values. It returns -1 if a < b, 0 if a = b and 1 if
// a > b. Only two numbers or two strings can be ordered; strings are
// compared bytewise. Comparing NaN with any number yields an ordering of 2,
// which is not less than, equal to or greater than anything.
func Compare(a, b any) (int, error) {
	switch a := a.(type) {
	case float64:
		if b, ok := b.(float64); ok {
			switch {
			case a < b:
				return -1, nil
			case a > b:
				return 1, nil
			case a == b:
				return 0, nil
			default:
				return 2, nil
			}
		}
	case string:
		if b, ok := b.(string); ok {
			return strings.Compare(a, b), nil
		}
	}
	return 0, fmt.Errorf("%w %s and %s", ErrUncomparable, Kind(a), Kind(b))
}
