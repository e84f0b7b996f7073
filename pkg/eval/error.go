package eval

import (
	"errors"
	"fmt"

	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/parse"
)

// Error is an error raised while evaluating a statement.
type Error = diag.Error[ErrorTag]

// ErrorTag parameterizes [diag.Error] to define [Error].
type ErrorTag struct{}

// ErrorTag returns "eval error".
func (ErrorTag) ErrorTag() string { return "eval error" }

// ExitSignal is returned when the exit builtin is called. It stops the
// current evaluation; Evaler.Eval turns it into an exited Result rather than
// an error.
type ExitSignal struct {
	Code int
}

func (e *ExitSignal) Error() string {
	return fmt.Sprintf("exit with code %d", e.Code)
}

// Errors returned while evaluating a statement.
var (
	ErrBareFunc        = errors.New("functions must be assigned to a variable")
	ErrReturnOutside   = errors.New("return outside of function")
	ErrCallDepth       = errors.New("maximum call depth exceeded")
	errUnknownNodeType = errors.New("unknown node type")
)

// Wraps err as an *Error pointing at r. Errors that are already *Error or
// *ExitSignal are returned unchanged, so the innermost position wins.
func wrapError(src parse.Source, r diag.Ranger, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *Error
	var exit *ExitSignal
	if errors.As(err, &evalErr) || errors.As(err, &exit) {
		return err
	}
	return &Error{
		Message: err.Error(),
		Context: *diag.NewContext(src.Name, src.Code, r),
	}
}
