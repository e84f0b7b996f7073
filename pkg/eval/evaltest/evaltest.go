// Package evaltest provides a framework for testing dde scripts.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, followed by method calls
// that add additional information to it.
//
// Example:
//
//	Test(t,
//	    That("x = 1 + 2").Evaluates(3.0).Binds("x", 3.0),
//	    That("print('x')").Prints("x\n"))
//
// If some setup is needed, use the TestWithSetup function instead.
package evaltest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.dde.sh/pkg/eval"
	"src.dde.sh/pkg/eval/vals"
	"src.dde.sh/pkg/parse"
	"src.dde.sh/pkg/tt"
)

// Case is a test case that can be used in Test.
type Case struct {
	code  string
	setup func(ev *eval.Evaler)
	want  result
}

type result struct {
	value    any
	hasValue *bool
	out      *string
	failures []string
	bindings map[string]any
	unbound  []string
	exit     *int
	parseErr bool
}

// That returns a new Case with the specified source code. Multiple arguments
// are joined with newlines.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "1 + 2" evaluates to 3 reads:
//
//	That("1 + 2").Evaluates(3.0)
func That(lines ...string) Case {
	return Case{code: strings.Join(lines, "\n")}
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is executed.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// Evaluates returns an altered Case that requires the last successful
// statement to evaluate to v. The value may be a ValueMatcher, and array
// elements may also be ValueMatchers.
func (c Case) Evaluates(v any) Case {
	c.want.value = v
	c.want.hasValue = ptr(true)
	return c
}

// EvaluatesNothing returns an altered Case that requires that no statement
// evaluates successfully.
func (c Case) EvaluatesNothing() Case {
	c.want.hasValue = ptr(false)
	return c
}

// Prints returns an altered Case that requires the output, including the
// reports of failed statements, to be exactly s.
func (c Case) Prints(s string) Case {
	c.want.out = &s
	return c
}

// Fails returns an altered Case that requires statements to fail with the
// given messages, in order. Without Fails, a Case requires no statement to
// fail.
func (c Case) Fails(msgs ...string) Case {
	c.want.failures = msgs
	return c
}

// Binds returns an altered Case that requires the global environment to bind
// name to v after the evaluation. The value may be a ValueMatcher.
func (c Case) Binds(name string, v any) Case {
	if c.want.bindings == nil {
		c.want.bindings = make(map[string]any)
	}
	c.want.bindings[name] = v
	return c
}

// DoesNotBind returns an altered Case that requires the global environment to
// have no binding for the given names after the evaluation.
func (c Case) DoesNotBind(names ...string) Case {
	c.want.unbound = append(c.want.unbound, names...)
	return c
}

// Exits returns an altered Case that requires the evaluation to be stopped by
// exit with the given code.
func (c Case) Exits(code int) Case {
	c.want.exit = &code
	return c
}

// DoesNotParse returns an altered Case that requires the code to fail
// lexing or parsing.
func (c Case) DoesNotParse() Case {
	c.want.parseErr = true
	return c
}

// Test runs test cases. For each test case, a new Evaler is created with
// NewEvaler, with a deterministic random source.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case, a new Evaler is created
// with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			t.Helper()
			var out strings.Builder
			ev := eval.NewEvaler(eval.Config{Out: &out, Rand: rand.New(rand.NewSource(1))})
			setup(ev)
			if tc.setup != nil {
				tc.setup(ev)
			}

			res, err := ev.Eval(parse.Source{Name: "[test]", Code: tc.code})
			if tc.want.parseErr {
				if err == nil {
					t.Errorf("got no parse error, want one")
				}
				return
			}
			if err != nil {
				t.Fatalf("got parse error: %v", err)
			}

			if tc.want.hasValue != nil {
				if res.HasValue != *tc.want.hasValue {
					t.Errorf("got HasValue %v, want %v", res.HasValue, *tc.want.hasValue)
				} else if res.HasValue && !match(tc.want.value, res.Value) {
					t.Errorf("got value %s, want %s",
						vals.Repr(res.Value), reprWant(tc.want.value))
				}
			}
			if tc.want.out != nil && out.String() != *tc.want.out {
				t.Errorf("got output %q, want %q", out.String(), *tc.want.out)
			}
			gotFailures := make([]string, len(res.Errors))
			for i, e := range res.Errors {
				gotFailures[i] = e.Err.Message
			}
			if diff := cmp.Diff(tc.want.failures, gotFailures, tt.CommonCmpOpt); diff != "" {
				t.Errorf("got failures (-want +got):\n%s", diff)
			}
			for name, want := range tc.want.bindings {
				got, ok := res.Env.Get(name)
				if !ok {
					t.Errorf("want %s to be bound, but it's not", name)
				} else if !match(want, got) {
					t.Errorf("got %s = %s, want %s", name, vals.Repr(got), reprWant(want))
				}
			}
			for _, name := range tc.want.unbound {
				if got, ok := res.Env.Get(name); ok {
					t.Errorf("want %s to be unbound, but it's %s", name, vals.Repr(got))
				}
			}
			if tc.want.exit == nil {
				if res.Exited {
					t.Errorf("got exit with code %d, want no exit", res.ExitCode)
				}
			} else if !res.Exited || res.ExitCode != *tc.want.exit {
				t.Errorf("got (exited, code) = (%v, %d), want (true, %d)",
					res.Exited, res.ExitCode, *tc.want.exit)
			}
		})
	}
}

func reprWant(v any) string {
	if m, ok := v.(ValueMatcher); ok {
		return fmt.Sprint(m)
	}
	return vals.Repr(v)
}

func ptr[T any](v T) *T { return &v }
