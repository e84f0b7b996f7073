package parse

import "src.dde.sh/pkg/diag"

// Node is an AST node. The set of node types is closed; it consists of the
// types defined in this file.
type Node interface {
	diag.Ranger
	isNode()
}

// Number is a numeric literal.
type Number struct {
	diag.Ranging
	Value float64
}

// String is a string literal.
type String struct {
	diag.Ranging
	Value string
}

// Bool is a boolean literal.
type Bool struct {
	diag.Ranging
	Value bool
}

// Null is the null literal.
type Null struct {
	diag.Ranging
}

// Ident is a reference to a name.
type Ident struct {
	diag.Ranging
	Name string
}

// Binary is a binary operation. Op is one of + - * / == != > < >= <=.
type Binary struct {
	diag.Ranging
	Op    string
	Left  Node
	Right Node
}

// Array is an array literal.
type Array struct {
	diag.Ranging
	Elems []Node
}

// Index is an indexing expression, like a[i].
type Index struct {
	diag.Ranging
	Object Node
	Index  Node
}

// Property is a property access, like a.length.
type Property struct {
	diag.Ranging
	Object Node
	Name   string
}

// Assign binds the value of an expression to a name. Value may be a *Func,
// which is the only place a function literal can appear.
type Assign struct {
	diag.Ranging
	Name  string
	Value Node
}

// Func is a function literal.
type Func struct {
	diag.Ranging
	Params []string
	Body   *Block
}

// Call is a function or method call. Callee is either an *Ident or a
// *Property.
type Call struct {
	diag.Ranging
	Callee Node
	Args   []Node
}

// Block is a sequence of statements delimited by braces. Its value is the
// value of the last statement.
type Block struct {
	diag.Ranging
	Stmts []Node
}

// If is a conditional. Else is nil, an *If (for elseif and "else if"
// chains) or a *Block.
type If struct {
	diag.Ranging
	Cond Node
	Then *Block
	Else Node
}

// For iterates over an array. Index is empty when the loop does not bind an
// index variable.
type For struct {
	diag.Ranging
	Item     string
	Index    string
	Iterable Node
	Body     *Block
}

// Return returns from the enclosing function. Value is nil for a bare return.
type Return struct {
	diag.Ranging
	Value Node
}

func (*Number) isNode()   {}
func (*String) isNode()   {}
func (*Bool) isNode()     {}
func (*Null) isNode()     {}
func (*Ident) isNode()    {}
func (*Binary) isNode()   {}
func (*Array) isNode()    {}
func (*Index) isNode()    {}
func (*Property) isNode() {}
func (*Assign) isNode()   {}
func (*Func) isNode()     {}
func (*Call) isNode()     {}
func (*Block) isNode()    {}
func (*If) isNode()       {}
func (*For) isNode()      {}
func (*Return) isNode()   {}

// CalleeName returns the name of the function called by c: the identifier for
// plain calls and the property name for method calls.
func (c *Call) CalleeName() string {
	switch callee := c.Callee.(type) {
	case *Ident:
		return callee.Name
	case *Property:
		return callee.Name
	}
	return ""
}
