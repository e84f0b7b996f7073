// Package lex implements the lexer of the dde script language.
//
// The lexer turns source text into a flat sequence of tokens in source order.
// Whitespace and "//" line comments are skipped; every other character must
// start a token.
package lex

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.dde.sh/pkg/diag"
)

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// Error is a lex error.
type Error = diag.Error[ErrorTag]

// ErrorTag parameterizes [diag.Error] to define [Error].
type ErrorTag struct{}

// ErrorTag returns "lex error".
func (ErrorTag) ErrorTag() string { return "lex error" }

// Tokenize converts source code into tokens. If the error is not nil, it
// always has type *Error.
func Tokenize(src Source) ([]Token, error) {
	lx := &lexer{src: src}
	for {
		lx.skipInsignificant()
		if lx.pos == len(lx.src.Code) {
			return lx.tokens, nil
		}
		if err := lx.lexToken(); err != nil {
			return nil, err
		}
	}
}

type lexer struct {
	src    Source
	pos    int
	tokens []Token
}

const eof rune = -1

func (lx *lexer) peekAt(offset int) rune {
	p := lx.pos + offset
	if p >= len(lx.src.Code) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(lx.src.Code[p:])
	return r
}

func (lx *lexer) peek() rune { return lx.peekAt(0) }

func (lx *lexer) next() rune {
	if lx.pos >= len(lx.src.Code) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(lx.src.Code[lx.pos:])
	lx.pos += size
	return r
}

func (lx *lexer) skipInsignificant() {
	for {
		r := lx.peek()
		switch {
		case r == eof:
			return
		case unicode.IsSpace(r):
			lx.next()
		case r == '/' && lx.peekAt(1) == '/':
			for r := lx.peek(); r != eof && r != '\n'; r = lx.peek() {
				lx.next()
			}
		default:
			return
		}
	}
}

func (lx *lexer) emit(k Kind, begin int) {
	lx.emitText(k, lx.src.Code[begin:lx.pos], begin)
}

func (lx *lexer) emitText(k Kind, text string, begin int) {
	lx.tokens = append(lx.tokens, Token{k, text, diag.Ranging{From: begin, To: lx.pos}})
}

func (lx *lexer) lexToken() error {
	begin := lx.pos
	r := lx.next()
	switch {
	case isDigit(r):
		lx.lexNumber(begin)
	case r == '"' || r == '\'':
		return lx.lexString(begin, r)
	case r == '_' || unicode.IsLetter(r):
		lx.lexWord(begin)
	case r == '+' || r == '-' || r == '*' || r == '/':
		lx.emit(Operator, begin)
	case r == '=':
		if lx.peek() == '=' {
			lx.next()
			lx.emit(Comparator, begin)
		} else {
			lx.emit(Operator, begin)
		}
	case r == '<' || r == '>':
		if lx.peek() == '=' {
			lx.next()
		}
		lx.emit(Comparator, begin)
	case r == '!' && lx.peek() == '=':
		lx.next()
		lx.emit(Comparator, begin)
	case r == '(' || r == ')':
		lx.emit(Paren, begin)
	case r == '{' || r == '}':
		lx.emit(Brace, begin)
	case r == '[' || r == ']':
		lx.emit(Bracket, begin)
	case r == ',':
		lx.emit(Comma, begin)
	case r == ';':
		lx.emit(Semicolon, begin)
	case r == '.':
		lx.emit(Dot, begin)
	default:
		return lx.errorf(diag.Ranging{From: begin, To: lx.pos}, false,
			"unexpected character %q", r)
	}
	return nil
}

// Number = Digits [ '.' Digits ]
func (lx *lexer) lexNumber(begin int) {
	lx.skipDigits()
	if lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		lx.next()
		lx.skipDigits()
	}
	lx.emit(Number, begin)
}

func (lx *lexer) skipDigits() {
	for isDigit(lx.peek()) {
		lx.next()
	}
}

func (lx *lexer) lexWord(begin int) {
	for r := lx.peek(); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r); r = lx.peek() {
		lx.next()
	}
	word := lx.src.Code[begin:lx.pos]
	switch {
	case word == "true" || word == "false":
		lx.emit(Bool, begin)
	case keywords[word]:
		lx.emit(Keyword, begin)
	default:
		lx.emit(Ident, begin)
	}
}

var escapes = map[rune]rune{
	'n': '\n', 't': '\t', 'r': '\r', '0': 0,
	'\\': '\\', '\'': '\'', '"': '"',
}

func (lx *lexer) lexString(begin int, quote rune) error {
	var sb strings.Builder
	for {
		r := lx.next()
		switch r {
		case eof:
			return lx.errorf(diag.Ranging{From: begin, To: lx.pos}, true,
				"string not terminated")
		case quote:
			lx.emitText(String, sb.String(), begin)
			return nil
		case '\\':
			escBegin := lx.pos - 1
			e := lx.next()
			if e == eof {
				return lx.errorf(diag.Ranging{From: begin, To: lx.pos}, true,
					"string not terminated")
			}
			resolved, ok := escapes[e]
			if !ok {
				return lx.errorf(diag.Ranging{From: escBegin, To: lx.pos}, false,
					"invalid escape sequence \\%c", e)
			}
			sb.WriteRune(resolved)
		default:
			sb.WriteRune(r)
		}
	}
}

func (lx *lexer) errorf(r diag.Ranging, partial bool, format string, args ...any) error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(lx.src.Name, lx.src.Code, r),
		Partial: partial,
	}
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }
