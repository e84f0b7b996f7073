package evaltest

import (
	"fmt"
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"src.dde.sh/pkg/eval"
	"src.dde.sh/pkg/eval/vals"
	"src.dde.sh/pkg/tt"
)

// ValueMatcher is a value that can be passed to [Case.Evaluates] and
// [Case.Binds] and has its own matching semantics.
type ValueMatcher interface{ matchValue(any) bool }

// Anything matches anything. It is useful when the value contains information
// that is useful when the test fails.
var Anything ValueMatcher = anything{}

type anything struct{}

func (anything) matchValue(any) bool { return true }
func (anything) String() string      { return "anything" }

// ApproximatelyThreshold defines the threshold for matching float64 values when
// using [Approximately].
const ApproximatelyThreshold = 1e-15

// Approximately matches a float64 within the threshold defined by
// [ApproximatelyThreshold].
func Approximately(f float64) ValueMatcher { return approximately{f} }

type approximately struct{ value float64 }

func (a approximately) matchValue(value any) bool {
	if value, ok := value.(float64); ok {
		return matchFloat64(a.value, value, ApproximatelyThreshold)
	}
	return false
}

func (a approximately) String() string { return fmt.Sprintf("approximately %v", a.value) }

func matchFloat64(a, b, threshold float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if math.IsInf(a, 0) && math.IsInf(b, 0) &&
		math.Signbit(a) == math.Signbit(b) {
		return true
	}
	return math.Abs(a-b) <= threshold
}

// Between matches a number in the closed interval [lo, hi]. If integer is
// true, the number must also be integral.
func Between(lo, hi float64, integer bool) ValueMatcher { return between{lo, hi, integer} }

type between struct {
	lo, hi  float64
	integer bool
}

func (b between) matchValue(value any) bool {
	f, ok := value.(float64)
	return ok && b.lo <= f && f <= b.hi && (!b.integer || f == math.Trunc(f))
}

func (b between) String() string { return fmt.Sprintf("number in [%v, %v]", b.lo, b.hi) }

// FuncWithParams matches a user-defined function with the given name and
// parameters.
func FuncWithParams(name string, params ...string) ValueMatcher {
	return funcWithParams{name, params}
}

type funcWithParams struct {
	name   string
	params []string
}

func (m funcWithParams) matchValue(value any) bool {
	f, ok := value.(*eval.Func)
	return ok && f.Name == m.name && cmp.Equal(f.Params, m.params, tt.CommonCmpOpt)
}

func (m funcWithParams) String() string {
	return fmt.Sprintf("function %s with params %v", m.name, m.params)
}

// SameAs matches exactly the given array, by identity.
func SameAs(a *vals.Array) ValueMatcher { return sameAs{a} }

type sameAs struct{ a *vals.Array }

func (m sameAs) matchValue(value any) bool { return value == m.a }
func (m sameAs) String() string            { return "the same array as " + vals.Repr(m.a) }

func match(want, got any) bool {
	switch want := want.(type) {
	case ValueMatcher:
		return want.matchValue(got)
	case *vals.Array:
		got, ok := got.(*vals.Array)
		if !ok || len(want.Elems) != len(got.Elems) {
			return false
		}
		for i := range want.Elems {
			if !match(want.Elems[i], got.Elems[i]) {
				return false
			}
		}
		return true
	}
	if reflect.TypeOf(want) != reflect.TypeOf(got) {
		return false
	}
	return cmp.Equal(want, got, tt.CommonCmpOpt)
}
