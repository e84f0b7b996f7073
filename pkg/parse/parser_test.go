package parse

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/lex"
)

var ignoreRanges = cmpopts.IgnoreTypes(diag.Ranging{})

// Shorthands for building expected trees.

func num(f float64) *Number        { return &Number{Value: f} }
func str(s string) *String         { return &String{Value: s} }
func boolean(b bool) *Bool         { return &Bool{Value: b} }
func ident(name string) *Ident     { return &Ident{Name: name} }
func bin(op string, l, r Node) Node { return &Binary{Op: op, Left: l, Right: r} }
func arr(elems ...Node) *Array     { return &Array{Elems: elems} }
func block(stmts ...Node) *Block   { return &Block{Stmts: stmts} }
func assign(name string, v Node) *Assign {
	return &Assign{Name: name, Value: v}
}
func call(callee Node, args ...Node) *Call { return &Call{Callee: callee, Args: args} }
func prop(obj Node, name string) *Property {
	return &Property{Object: obj, Name: name}
}
func stmts(nodes ...Node) []Node { return nodes }

var parseTests = []struct {
	name string
	code string
	want []Node
}{
	{
		name: "precedence",
		code: "1 + 2 * 3 == 7",
		want: stmts(bin("==", bin("+", num(1), bin("*", num(2), num(3))), num(7))),
	},
	{
		name: "left associativity",
		code: "10 - 2 - 3; 8 / 4 / 2",
		want: stmts(
			bin("-", bin("-", num(10), num(2)), num(3)),
			bin("/", bin("/", num(8), num(4)), num(2))),
	},
	{
		name: "parentheses",
		code: "(1 + 2) * 3",
		want: stmts(bin("*", bin("+", num(1), num(2)), num(3))),
	},
	{
		name: "literals",
		code: `1.5; "s"; 'q'; true; false; null`,
		want: stmts(num(1.5), str("s"), str("q"), boolean(true), boolean(false), &Null{}),
	},
	{
		name: "statements separated by newlines",
		code: "a = 1\nb = a\nb",
		want: stmts(assign("a", num(1)), assign("b", ident("a")), ident("b")),
	},
	{
		name: "chained assignment",
		code: "a = b = 2",
		want: stmts(assign("a", assign("b", num(2)))),
	},
	{
		name: "function definition",
		code: "add = (a, b) { return a + b; }",
		want: stmts(assign("add", &Func{
			Params: []string{"a", "b"},
			Body:   block(&Return{Value: bin("+", ident("a"), ident("b"))}),
		})),
	},
	{
		name: "function without parameters",
		code: "f = () { }",
		want: stmts(assign("f", &Func{Body: block()})),
	},
	{
		name: "calls",
		code: "print(1, 'a'); f()",
		want: stmts(call(ident("print"), num(1), str("a")), call(ident("f"))),
	},
	{
		name: "method call and property",
		code: "arr.push(1).length",
		want: stmts(prop(call(prop(ident("arr"), "push"), num(1)), "length")),
	},
	{
		name: "indexing",
		code: "a[0][i + 1]",
		want: stmts(&Index{
			Object: &Index{Object: ident("a"), Index: num(0)},
			Index:  bin("+", ident("i"), num(1)),
		}),
	},
	{
		name: "postfix after call",
		code: "f(x)[0]",
		want: stmts(&Index{Object: call(ident("f"), ident("x")), Index: num(0)}),
	},
	{
		name: "arrays",
		code: "[]; [1, [2]]; [1, 2,]",
		want: stmts(arr(), arr(num(1), arr(num(2))), arr(num(1), num(2))),
	},
	{
		name: "if elseif else",
		code: "if (a) { 1 } elseif (b) { 2 } elseif (c) { 3 } else { 4 }",
		want: stmts(&If{
			Cond: ident("a"), Then: block(num(1)),
			Else: &If{
				Cond: ident("b"), Then: block(num(2)),
				Else: &If{
					Cond: ident("c"), Then: block(num(3)),
					Else: block(num(4)),
				},
			},
		}),
	},
	{
		name: "else if as two keywords",
		code: "if (a) { 1 } else if (b) { 2 }",
		want: stmts(&If{
			Cond: ident("a"), Then: block(num(1)),
			Else: &If{Cond: ident("b"), Then: block(num(2))},
		}),
	},
	{
		name: "for with iterable inside parentheses",
		code: "for (x in [1, 2]) { x; }",
		want: stmts(&For{Item: "x", Iterable: arr(num(1), num(2)), Body: block(ident("x"))}),
	},
	{
		name: "for with iterable after parentheses and index",
		code: "for (x, i) in xs { i }",
		want: stmts(&For{Item: "x", Index: "i", Iterable: ident("xs"), Body: block(ident("i"))}),
	},
	{
		name: "bare returns",
		code: "f = () { return; }; g = () { return }",
		want: stmts(
			assign("f", &Func{Body: block(&Return{})}),
			assign("g", &Func{Body: block(&Return{})})),
	},
	{
		name: "stray semicolons",
		code: ";; a ;; { ; b ; }",
		want: stmts(ident("a"), block(ident("b"))),
	},
	{
		name: "empty source",
		code: "",
		want: stmts(),
	},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(Source{Name: "[test]", Code: test.code})
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", test.code, err)
			}
			if diff := cmp.Diff(test.want, got, ignoreRanges, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse(%q) (-want +got):\n%s", test.code, diff)
			}
		})
	}
}

var parseErrorTests = []struct {
	code        string
	wantMessage string
	wantPartial bool
}{
	{"a =", "expected expression, got end of input", true},
	{"(1", "expected ')', got end of input", true},
	{"f(1, 2", "expected ')', got end of input", true},
	{"if (a) { 1", "expected '}', got end of input", true},
	{"}", "expected expression, got '}'", false},
	{"1 < 2 < 3", "comparison operators cannot be chained, got '<' after '<'", false},
	{"x = (1 + 2)", "expected identifier, got number 1", false},
	{"f = (a) 1", "expected '{', got number 1", false},
	{"for x in xs {}", "expected '(', got identifier x", false},
	{"for (x) xs {}", "expected 'in', got identifier xs", false},
	{"if (a) { } else 1", "expected '{', got number 1", false},
	{"a.1", "expected identifier, got number 1", false},
	{"[1 2]", "expected ']', got number 2", false},
}

func TestParse_Errors(t *testing.T) {
	for _, test := range parseErrorTests {
		_, err := Parse(Source{Name: "[test]", Code: test.code})
		errs := diag.UnpackErrors[ErrorTag](err)
		if len(errs) != 1 {
			t.Errorf("Parse(%q) -> error %v, want one parse error", test.code, err)
			continue
		}
		if errs[0].Message != test.wantMessage {
			t.Errorf("Parse(%q) -> message %q, want %q", test.code, errs[0].Message, test.wantMessage)
		}
		if errs[0].Partial != test.wantPartial {
			t.Errorf("Parse(%q) -> partial %v, want %v", test.code, errs[0].Partial, test.wantPartial)
		}
		if IsPartial(err) != test.wantPartial {
			t.Errorf("IsPartial(Parse(%q)) -> %v, want %v", test.code, !test.wantPartial, test.wantPartial)
		}
	}
}

func TestParse_LexErrorIsPropagated(t *testing.T) {
	nodes, err := Parse(Source{Name: "[test]", Code: "a = 1; b = @"})
	if nodes != nil {
		t.Errorf("got nodes %v, want nil", nodes)
	}
	if len(diag.UnpackErrors[lex.ErrorTag](err)) != 1 {
		t.Errorf("got error %v, want a lex error", err)
	}
}

func TestParse_Ranges(t *testing.T) {
	//      0         1         2
	//      012345678901234567890123
	code := "sum = add(1, 2) * 3"
	nodes, err := Parse(Source{Name: "[test]", Code: code})
	if err != nil {
		t.Fatal(err)
	}
	a := nodes[0].(*Assign)
	if a.Range() != (diag.Ranging{From: 0, To: 19}) {
		t.Errorf("assignment range %v", a.Range())
	}
	b := a.Value.(*Binary)
	if b.Left.Range() != (diag.Ranging{From: 6, To: 15}) {
		t.Errorf("call range %v", b.Left.Range())
	}
}

func TestParseOnly(t *testing.T) {
	src := Source{Name: "[test]", Code: "x = 1; f = (a) { a }"}
	first, second := ParseOnly(src), ParseOnly(src)
	if len(first) != 2 {
		t.Errorf("ParseOnly -> %d nodes, want 2", len(first))
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("ParseOnly is not idempotent (-first +second):\n%s", diff)
	}

	for _, code := range []string{"x = 1; f = (a) {", "x = 1; @"} {
		if got := ParseOnly(Source{Name: "[test]", Code: code}); len(got) != 0 {
			t.Errorf("ParseOnly(%q) -> %v, want empty", code, got)
		}
	}
}

func TestPprint(t *testing.T) {
	nodes, err := Parse(Source{Name: "[test]", Code: "f = (a) { a[0] }"})
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	Pprint(&sb, nodes)
	want := strings.Join([]string{
		"Assign f 0-16",
		"  Func (a) 4-16",
		"    Block 8-16",
		"      Index 10-14",
		"        Ident a 10-11",
		"        Number 0 12-13",
		"",
	}, "\n")
	if got := sb.String(); got != want {
		t.Errorf("Pprint wrote:\n%s\nwant:\n%s", got, want)
	}
}

func TestInspect(t *testing.T) {
	nodes, err := Parse(Source{Name: "[test]", Code: "for (x in xs) { if (x) { f(x) } }"})
	if err != nil {
		t.Fatal(err)
	}
	var idents []string
	Inspect(nodes[0], func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})
	if diff := cmp.Diff([]string{"xs", "x", "f", "x"}, idents); diff != "" {
		t.Errorf("Inspect visited (-want +got):\n%s", diff)
	}
}
