package eval

import (
	"strings"

	"src.dde.sh/pkg/parse"
)

// Func is a user-defined function. It has no closure: when called, its body
// is evaluated in a snapshot of the caller's environment.
type Func struct {
	Name   string
	Params []string
	Body   *parse.Block
}

// Kind returns "function".
func (*Func) Kind() string { return "function" }

// Repr returns "<function name(a, b)>".
func (f *Func) Repr() string {
	return "<function " + f.Signature() + ">"
}

// String is the same as Repr.
func (f *Func) String() string { return f.Repr() }

// Signature returns the name and parameter list of the function, such as
// "add(a, b)".
func (f *Func) Signature() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

// JSONValue returns a description of the function.
func (f *Func) JSONValue() any {
	params := make([]any, len(f.Params))
	for i, p := range f.Params {
		params[i] = p
	}
	return map[string]any{"type": "userFunction", "params": params}
}
