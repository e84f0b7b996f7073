package lex

import "src.dde.sh/pkg/diag"

// Kind is the kind of a token.
type Kind int

// Possible values of Kind.
const (
	Number Kind = iota
	String
	Bool
	Ident
	Keyword
	Operator
	Comparator
	Paren
	Brace
	Bracket
	Comma
	Semicolon
	Dot
)

var kindNames = [...]string{
	Number:     "number",
	String:     "string",
	Bool:       "boolean",
	Ident:      "identifier",
	Keyword:    "keyword",
	Operator:   "operator",
	Comparator: "comparator",
	Paren:      "parenthesis",
	Brace:      "curly-bracket",
	Bracket:    "square-bracket",
	Comma:      "comma",
	Semicolon:  "semicolon",
	Dot:        "dot",
}

func (k Kind) String() string {
	if 0 <= k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Keywords of the language. The boolean literals true and false are lexed as
// Bool tokens rather than keywords.
var keywords = map[string]bool{
	"if": true, "elseif": true, "else": true,
	"for": true, "in": true, "return": true, "null": true,
}

// IsKeyword reports whether s is a keyword.
func IsKeyword(s string) bool { return keywords[s] }

// Token is a lexical token. For String tokens, Text is the unquoted value with
// escape sequences resolved; for all other kinds it is the source text of the
// token.
type Token struct {
	Kind Kind
	Text string
	diag.Ranging
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(k Kind, text string) bool {
	return t.Kind == k && t.Text == text
}

// Describe returns a short description of the token for use in error
// messages.
func (t Token) Describe() string {
	switch t.Kind {
	case String:
		return "string " + quote(t.Text)
	case Number, Bool, Ident, Keyword:
		return t.Kind.String() + " " + t.Text
	default:
		return "'" + t.Text + "'"
	}
}

func quote(s string) string {
	if len(s) > 20 {
		s = s[:17] + "..."
	}
	return `"` + s + `"`
}
