package analysis

import (
	"errors"
	"strings"

	"src.dde.sh/pkg/lex"
	"src.dde.sh/pkg/parse"
)

// Signature describes the call being typed at a position.
type Signature struct {
	Decl
	// Index of the parameter the cursor is in, counted by the commas typed
	// so far and capped at the last parameter.
	ActiveParam int
}

// SignatureAt finds the innermost unclosed call of the form name( before the
// byte offset pos, and returns the signature of the named builtin or
// function. It returns false if there is no such call, or the name is
// unknown.
func SignatureAt(code string, pos int) (Signature, bool) {
	pos = clamp(pos, len(code))
	tokens, ok := tokenizePrefix(code[:pos])
	if !ok {
		return Signature{}, false
	}

	type frame struct {
		name   string
		from   int
		commas int
	}
	var stack []frame
	for i, tok := range tokens {
		switch {
		case tok.Is(lex.Paren, "("):
			f := frame{from: tok.From}
			if i > 0 && tokens[i-1].Kind == lex.Ident &&
				!(i > 1 && tokens[i-2].Kind == lex.Dot) {
				f.name = tokens[i-1].Text
			}
			stack = append(stack, f)
		case tok.Is(lex.Bracket, "["), tok.Is(lex.Brace, "{"):
			// Commas in array literals and blocks don't separate arguments.
			stack = append(stack, frame{from: tok.From})
		case tok.Is(lex.Paren, ")"), tok.Is(lex.Bracket, "]"), tok.Is(lex.Brace, "}"):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case tok.Kind == lex.Comma:
			if len(stack) > 0 {
				stack[len(stack)-1].commas++
			}
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.name == "" {
			continue
		}
		decl, ok := Lookup(declsForCall(code, f.from), f.name)
		if !ok || decl.Kind == Variable {
			return Signature{}, false
		}
		active := min(f.commas, len(decl.Params)-1)
		if active < 0 {
			active = 0
		}
		return Signature{decl, active}, true
	}
	return Signature{}, false
}

// Tokenizes code that may end in the middle of a token. When the input ends
// inside a string, the string is dropped, since it is an argument still being
// typed.
func tokenizePrefix(code string) ([]lex.Token, bool) {
	tokens, err := lex.Tokenize(source(code))
	if err == nil {
		return tokens, true
	}
	var lexErr *lex.Error
	if !errors.As(err, &lexErr) || !lexErr.Partial || lexErr.Range().From >= len(code) {
		return nil, false
	}
	return tokenizePrefix(code[:lexErr.Range().From])
}

// DeclAt returns the builtin or declaration named by the identifier at the
// byte offset pos.
func DeclAt(code string, pos int) (Decl, bool) {
	tokens, err := lex.Tokenize(source(code))
	if err != nil {
		return Decl{}, false
	}
	for i, tok := range tokens {
		if tok.Kind == lex.Ident && tok.From <= pos && pos < tok.To {
			if i > 0 && tokens[i-1].Kind == lex.Dot {
				// A property or method name.
				return Decl{}, false
			}
			return Lookup(Completions(code), tok.Text)
		}
	}
	return Decl{}, false
}

// Returns the builtins and declarations visible to a call starting at the
// byte offset callFrom. While a call is being typed the whole code usually
// doesn't parse; in that case only the lines before the call are used.
func declsForCall(code string, callFrom int) []Decl {
	nodes := parse.ParseOnly(source(code))
	if len(nodes) == 0 {
		lineStart := strings.LastIndexByte(code[:callFrom], '\n') + 1
		nodes = parse.ParseOnly(source(code[:lineStart]))
	}
	return append(Builtins(), Declarations(nodes)...)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
