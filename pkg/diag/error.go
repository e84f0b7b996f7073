package diag

import (
	"errors"
	"fmt"
)

// ErrorTag is used to parameterize [Error] into different concrete types.
type ErrorTag interface {
	ErrorTag() string
}

// Error represents an error with context that can be showed.
type Error[T ErrorTag] struct {
	Message string
	Context Context
	// Indicates whether the error may be caused by partial input. More
	// formally, this field is true when the error occurred at the end of the
	// input.
	Partial bool
}

// Tag returns the tag of the error, like "parse error".
func (e *Error[T]) Tag() string {
	var t T
	return t.ErrorTag()
}

// Error returns a plain text representation of the error.
func (e *Error[T]) Error() string {
	return e.Tag() + ": " + e.Context.Describe() + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error[T]) Range() Ranging {
	return e.Context.Range()
}

var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Show shows the error.
func (e *Error[T]) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s\n", capitalize(e.Tag()), messageStart, e.Message, messageEnd)
	return header + indent + "  " + e.Context.ShowCompact(indent+"  ")
}

// UnpackErrors returns the constituent errors of the given tag, if err is
// or wraps one or more of them. Errors combined with [errors.Join] are
// supported.
func UnpackErrors[T ErrorTag](err error) []*Error[T] {
	if err == nil {
		return nil
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		var errs []*Error[T]
		for _, e := range multi.Unwrap() {
			errs = append(errs, UnpackErrors[T](e)...)
		}
		return errs
	}
	var e *Error[T]
	if errors.As(err, &e) {
		return []*Error[T]{e}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
