// Package analysis provides static introspection of dde code for editor
// tooling: declared names, the builtin surface and call signatures.
//
// All functions work on possibly incomplete code and never fail; code that
// doesn't parse simply yields less information.
package analysis

import (
	"strings"

	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/eval"
	"src.dde.sh/pkg/parse"
)

// DeclKind classifies a declaration.
type DeclKind int

// Possible values of DeclKind.
const (
	Builtin DeclKind = iota
	Function
	Variable
)

var declKindDetails = [...]string{
	Builtin:  "Built-in function",
	Function: "Declared function",
	Variable: "Declared variable",
}

// Detail returns a human-readable description, such as "Built-in function".
func (k DeclKind) Detail() string { return declKindDetails[k] }

// Decl is a name available to code: a builtin, or a top-level assignment.
type Decl struct {
	Name string
	Kind DeclKind
	// Parameters of builtins and functions.
	Params []string
	// Range of the assignment. Zero for builtins.
	diag.Ranging
}

// Signature returns "name(a, b)" for builtins and functions, and the name for
// variables.
func (d Decl) Signature() string {
	if d.Kind == Variable {
		return d.Name
	}
	return d.Name + "(" + strings.Join(d.Params, ", ") + ")"
}

// Builtins returns the declarations of all builtins, sorted by name.
func Builtins() []Decl {
	reg := eval.NewRegistry(eval.RegistryConfig{})
	decls := make([]Decl, 0, len(reg))
	for _, name := range reg.Names() {
		decls = append(decls, Decl{Name: name, Kind: Builtin, Params: reg[name].Params})
	}
	return decls
}

// Declarations returns the names assigned by top-level statements, in the
// order of their first assignment. A name is a function if its last
// assignment is a function definition, and a variable otherwise.
func Declarations(nodes []parse.Node) []Decl {
	var decls []Decl
	index := make(map[string]int)
	for _, node := range nodes {
		assign, ok := node.(*parse.Assign)
		if !ok {
			continue
		}
		decl := Decl{Name: assign.Name, Kind: Variable, Ranging: assign.Range()}
		if fn, ok := assign.Value.(*parse.Func); ok {
			decl.Kind, decl.Params = Function, fn.Params
		}
		if i, seen := index[decl.Name]; seen {
			decls[i] = decl
		} else {
			index[decl.Name] = len(decls)
			decls = append(decls, decl)
		}
	}
	return decls
}

// Completions returns the builtins followed by the declarations in code.
func Completions(code string) []Decl {
	return append(Builtins(), Declarations(parse.ParseOnly(source(code)))...)
}

// Lookup finds a builtin or a declaration by name. Builtins take precedence,
// matching how calls are resolved.
func Lookup(decls []Decl, name string) (Decl, bool) {
	var found Decl
	ok := false
	for _, d := range decls {
		if d.Name != name {
			continue
		}
		if d.Kind == Builtin {
			return d, true
		}
		found, ok = d, true
	}
	return found, ok
}

func source(code string) parse.Source {
	return parse.Source{Name: "[analysis]", Code: code}
}
