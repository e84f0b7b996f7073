package parse

import (
	"fmt"
	"strconv"

	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/lex"
)

// parser maintains the mutable state of parsing. The cursor only moves
// forward.
type parser struct {
	src    Source
	tokens []lex.Token
	pos    int
}

// bailout is used as a panic value to abort parsing at the first error; it is
// recovered in ParseTokens.
type bailout struct{ err *Error }

func (ps *parser) more() bool { return ps.pos < len(ps.tokens) }

// Returns the token at the given offset from the cursor, or nil.
func (ps *parser) peekAt(offset int) *lex.Token {
	if ps.pos+offset >= len(ps.tokens) {
		return nil
	}
	return &ps.tokens[ps.pos+offset]
}

func (ps *parser) peek() *lex.Token { return ps.peekAt(0) }

// Reports whether the token under the cursor has the given kind and, if text
// is not empty, the given text.
func (ps *parser) peekIs(k lex.Kind, text string) bool {
	tok := ps.peek()
	return tok != nil && tok.Kind == k && (text == "" || tok.Text == text)
}

// Consumes a token of the given kind and, if text is not empty, the given
// text. Fails otherwise.
func (ps *parser) consume(k lex.Kind, text string) lex.Token {
	if !ps.peekIs(k, text) {
		if text != "" {
			ps.failExpecting("'" + text + "'")
		}
		ps.failExpecting(k.String())
	}
	ps.pos++
	return ps.tokens[ps.pos-1]
}

func (ps *parser) failExpecting(what string) {
	tok := ps.peek()
	if tok == nil {
		ps.fail(diag.PointRanging(len(ps.src.Code)), true,
			"expected %s, got end of input", what)
	}
	ps.fail(tok.Ranging, false, "expected %s, got %s", what, tok.Describe())
}

func (ps *parser) fail(r diag.Ranging, partial bool, format string, args ...any) {
	panic(bailout{&Error{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(ps.src.Name, ps.src.Code, r),
		Partial: partial,
	}})
}

// Program = { ';' | Expression }
func (ps *parser) parseStatements() []Node {
	nodes := []Node{}
	for ps.more() {
		if ps.peekIs(lex.Semicolon, "") {
			ps.pos++
			continue
		}
		nodes = append(nodes, ps.parseExpression())
	}
	return nodes
}

// Expression = Assign | If | For | Return | Comparison
func (ps *parser) parseExpression() Node {
	tok := ps.peek()
	switch {
	case tok == nil:
		ps.failExpecting("expression")
	case tok.Kind == lex.Ident:
		if next := ps.peekAt(1); next != nil && next.Is(lex.Operator, "=") {
			return ps.parseAssign()
		}
	case tok.Is(lex.Keyword, "if"):
		return ps.parseIf()
	case tok.Is(lex.Keyword, "for"):
		return ps.parseFor()
	case tok.Is(lex.Keyword, "return"):
		return ps.parseReturn()
	}
	return ps.parseComparison()
}

// Assign = Ident '=' ( Func | Expression )
func (ps *parser) parseAssign() Node {
	name := ps.consume(lex.Ident, "")
	ps.consume(lex.Operator, "=")
	var value Node
	if ps.peekIs(lex.Paren, "(") {
		value = ps.parseFunc()
	} else {
		value = ps.parseExpression()
	}
	return &Assign{diag.MixedRanging(name, value), name.Text, value}
}

// Func = '(' [ Ident { ',' Ident } ] ')' Block
func (ps *parser) parseFunc() *Func {
	open := ps.consume(lex.Paren, "(")
	var params []string
	for ps.more() && !ps.peekIs(lex.Paren, ")") {
		params = append(params, ps.consume(lex.Ident, "").Text)
		if !ps.peekIs(lex.Comma, "") {
			break
		}
		ps.pos++
	}
	ps.consume(lex.Paren, ")")
	body := ps.parseBlock()
	return &Func{diag.MixedRanging(open, body), params, body}
}

// Comparison = Additive [ Comparator Additive ]
func (ps *parser) parseComparison() Node {
	left := ps.parseAdditive()
	if !ps.peekIs(lex.Comparator, "") {
		return left
	}
	op := ps.consume(lex.Comparator, "")
	right := ps.parseAdditive()
	if tok := ps.peek(); tok != nil && tok.Kind == lex.Comparator {
		ps.fail(tok.Ranging, false,
			"comparison operators cannot be chained, got %s after %s", tok.Describe(), op.Describe())
	}
	return &Binary{diag.MixedRanging(left, right), op.Text, left, right}
}

// Additive = Multiplicative { ( '+' | '-' ) Multiplicative }
func (ps *parser) parseAdditive() Node {
	node := ps.parseMultiplicative()
	for ps.peekIs(lex.Operator, "+") || ps.peekIs(lex.Operator, "-") {
		op := ps.consume(lex.Operator, "")
		right := ps.parseMultiplicative()
		node = &Binary{diag.MixedRanging(node, right), op.Text, node, right}
	}
	return node
}

// Multiplicative = Primary { ( '*' | '/' ) Primary }
func (ps *parser) parseMultiplicative() Node {
	node := ps.parsePrimary()
	for ps.peekIs(lex.Operator, "*") || ps.peekIs(lex.Operator, "/") {
		op := ps.consume(lex.Operator, "")
		right := ps.parsePrimary()
		node = &Binary{diag.MixedRanging(node, right), op.Text, node, right}
	}
	return node
}

// Primary = ( Number | String | Bool | 'null' | Ident [ Args ]
//
//	| '(' Expression ')' | Block | ArrayLiteral ) { Postfix }
func (ps *parser) parsePrimary() Node {
	tok := ps.peek()
	if tok == nil {
		ps.failExpecting("expression")
	}
	var node Node
	switch {
	case tok.Kind == lex.Number:
		ps.pos++
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			ps.fail(tok.Ranging, false, "malformed number literal %s", tok.Text)
		}
		node = &Number{tok.Ranging, f}
	case tok.Kind == lex.String:
		ps.pos++
		node = &String{tok.Ranging, tok.Text}
	case tok.Kind == lex.Bool:
		ps.pos++
		node = &Bool{tok.Ranging, tok.Text == "true"}
	case tok.Is(lex.Keyword, "null"):
		ps.pos++
		node = &Null{tok.Ranging}
	case tok.Kind == lex.Ident:
		ps.pos++
		node = &Ident{tok.Ranging, tok.Text}
		if ps.peekIs(lex.Paren, "(") {
			node = ps.parseCall(node)
		}
	case tok.Is(lex.Paren, "("):
		ps.pos++
		node = ps.parseExpression()
		ps.consume(lex.Paren, ")")
	case tok.Is(lex.Brace, "{"):
		node = ps.parseBlock()
	case tok.Is(lex.Bracket, "["):
		node = ps.parseArray()
	default:
		ps.failExpecting("expression")
	}
	return ps.parsePostfix(node)
}

// Postfix = '[' Expression ']' | '.' Ident [ Args ]
func (ps *parser) parsePostfix(node Node) Node {
	for {
		switch {
		case ps.peekIs(lex.Bracket, "["):
			ps.pos++
			index := ps.parseExpression()
			end := ps.consume(lex.Bracket, "]")
			node = &Index{diag.MixedRanging(node, end), node, index}
		case ps.peekIs(lex.Dot, ""):
			ps.pos++
			name := ps.consume(lex.Ident, "")
			node = &Property{diag.MixedRanging(node, name), node, name.Text}
			if ps.peekIs(lex.Paren, "(") {
				node = ps.parseCall(node)
			}
		default:
			return node
		}
	}
}

// Args = '(' [ Expression { ',' Expression } ] ')'
func (ps *parser) parseCall(callee Node) Node {
	ps.consume(lex.Paren, "(")
	var args []Node
	for ps.more() && !ps.peekIs(lex.Paren, ")") {
		args = append(args, ps.parseExpression())
		if !ps.peekIs(lex.Comma, "") {
			break
		}
		ps.pos++
	}
	end := ps.consume(lex.Paren, ")")
	return &Call{diag.MixedRanging(callee, end), callee, args}
}

// ArrayLiteral = '[' [ Expression { ',' Expression } [ ',' ] ] ']'
func (ps *parser) parseArray() Node {
	open := ps.consume(lex.Bracket, "[")
	elems := []Node{}
	for ps.more() && !ps.peekIs(lex.Bracket, "]") {
		elems = append(elems, ps.parseExpression())
		if !ps.peekIs(lex.Comma, "") {
			break
		}
		ps.pos++
	}
	end := ps.consume(lex.Bracket, "]")
	return &Array{diag.MixedRanging(open, end), elems}
}

// Block = '{' { ';' | Expression } '}'
func (ps *parser) parseBlock() *Block {
	open := ps.consume(lex.Brace, "{")
	stmts := []Node{}
	for ps.more() && !ps.peekIs(lex.Brace, "}") {
		if ps.peekIs(lex.Semicolon, "") {
			ps.pos++
			continue
		}
		stmts = append(stmts, ps.parseExpression())
	}
	end := ps.consume(lex.Brace, "}")
	return &Block{diag.MixedRanging(open, end), stmts}
}

// If = ( 'if' | 'elseif' ) '(' Expression ')' Block
//
//	[ If(elseif) | 'else' ( If | Block ) ]
func (ps *parser) parseIf() *If {
	kw := ps.peek()
	if kw == nil || kw.Kind != lex.Keyword || (kw.Text != "if" && kw.Text != "elseif") {
		ps.failExpecting("if")
	}
	ps.pos++
	ps.consume(lex.Paren, "(")
	cond := ps.parseExpression()
	ps.consume(lex.Paren, ")")
	then := ps.parseBlock()
	n := &If{diag.MixedRanging(kw, then), cond, then, nil}

	switch {
	case ps.peekIs(lex.Keyword, "elseif"):
		n.Else = ps.parseIf()
	case ps.peekIs(lex.Keyword, "else"):
		ps.pos++
		if ps.peekIs(lex.Keyword, "if") {
			n.Else = ps.parseIf()
		} else {
			n.Else = ps.parseBlock()
		}
	}
	if n.Else != nil {
		n.To = n.Else.Range().To
	}
	return n
}

// For = 'for' '(' Ident [ ',' Ident ] ( ')' 'in' Expression
//
//	| 'in' Expression ')' ) Block
func (ps *parser) parseFor() *For {
	kw := ps.consume(lex.Keyword, "for")
	ps.consume(lex.Paren, "(")
	n := &For{Item: ps.consume(lex.Ident, "").Text}
	if ps.peekIs(lex.Comma, "") {
		ps.pos++
		n.Index = ps.consume(lex.Ident, "").Text
	}
	if ps.peekIs(lex.Keyword, "in") {
		ps.pos++
		n.Iterable = ps.parseExpression()
		ps.consume(lex.Paren, ")")
	} else {
		ps.consume(lex.Paren, ")")
		ps.consume(lex.Keyword, "in")
		n.Iterable = ps.parseExpression()
	}
	n.Body = ps.parseBlock()
	n.Ranging = diag.MixedRanging(kw, n.Body)
	return n
}

// Return = 'return' [ Expression ]
func (ps *parser) parseReturn() *Return {
	kw := ps.consume(lex.Keyword, "return")
	n := &Return{Ranging: kw.Ranging}
	if ps.more() && !ps.peekIs(lex.Semicolon, "") && !ps.peekIs(lex.Brace, "}") {
		n.Value = ps.parseExpression()
		n.To = n.Value.Range().To
	}
	return n
}
