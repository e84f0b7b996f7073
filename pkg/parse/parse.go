// Package parse implements the parser of the dde script language.
//
// The parser is a recursive-descent parser over the tokens produced by
// [lex.Tokenize]. Operator precedence, from lowest to highest, is:
//
//	assignment, if, for, return
//	comparison (== != > < >= <=), not chainable
//	additive (+ -), left-associative
//	multiplicative (* /), left-associative
//	primary, followed by any number of postfix [index], .property and
//	.method(args)
//
// The parser stops at the first error; no partial AST is returned.
package parse

import (
	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/lex"
)

// Source describes a piece of source code.
type Source = lex.Source

// Error is a parse error.
type Error = diag.Error[ErrorTag]

// ErrorTag parameterizes [diag.Error] to define [Error].
type ErrorTag struct{}

// ErrorTag returns "parse error".
func (ErrorTag) ErrorTag() string { return "parse error" }

// Parse tokenizes and parses the given source, returning the top-level
// statements. If the error is not nil, it has type *lex.Error or *Error.
func Parse(src Source) ([]Node, error) {
	tokens, err := lex.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(src, tokens)
}

// ParseTokens parses tokens previously produced from src. The source is used
// for error messages only. If the error is not nil, it has type *Error.
func ParseTokens(src Source, tokens []lex.Token) (nodes []Node, err error) {
	ps := &parser{src: src, tokens: tokens}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			nodes, err = nil, b.err
		}
	}()
	return ps.parseStatements(), nil
}

// ParseOnly is like Parse, but never fails: on any lex or parse error it
// returns an empty sequence. It is intended for editor tooling that
// introspects possibly incomplete source code.
func ParseOnly(src Source) []Node {
	nodes, err := Parse(src)
	if err != nil {
		return []Node{}
	}
	return nodes
}

// IsPartial reports whether err is a lex or parse error caused by the input
// ending too early, i.e. whether appending more text may fix it.
func IsPartial(err error) bool {
	for _, e := range diag.UnpackErrors[ErrorTag](err) {
		if e.Partial {
			return true
		}
	}
	for _, e := range diag.UnpackErrors[lex.ErrorTag](err) {
		if e.Partial {
			return true
		}
	}
	return false
}
