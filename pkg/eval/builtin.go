package eval

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"src.dde.sh/pkg/eval/errs"
	"src.dde.sh/pkg/eval/vals"
)

// Builtin is a native function callable from scripts. Builtins live in their
// own namespace and cannot be redefined by scripts.
type Builtin struct {
	Name string
	// Parameter names, as shown by editor tooling. A name starting with "..."
	// takes the rest of the arguments.
	Params []string
	// Accepted number of arguments. MaxArgs is -1 when there is no upper
	// bound.
	MinArgs, MaxArgs int

	impl func(args []any) (any, error)
}

// Call checks the number of arguments and calls the builtin.
func (b *Builtin) Call(args []any) (any, error) {
	if err := checkArity("arguments of "+b.Name, b.MinArgs, b.MaxArgs, len(args)); err != nil {
		return nil, err
	}
	return b.impl(args)
}

// Signature returns the name and parameter list of the builtin, such as
// "random(min, max, isFloat)".
func (b *Builtin) Signature() string {
	return b.Name + "(" + strings.Join(b.Params, ", ") + ")"
}

func checkArity(what string, min, max, n int) error {
	if n < min || (max != -1 && n > max) {
		return errs.ArityMismatch{What: what, ValidLow: min, ValidHigh: max, Actual: n}
	}
	return nil
}

// Registry maps names to builtins.
type Registry map[string]*Builtin

// Names returns the names of all builtins in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryConfig holds the dependencies of builtins.
type RegistryConfig struct {
	// Receives the output of print. If nil, output is discarded.
	Out io.Writer
	// Source of random. If nil, a time-seeded source is used.
	Rand *rand.Rand
	// If not nil, called by exit before the evaluation stops.
	Exit func(code int)
}

const maxArrayLength = 1 << 24

// NewRegistry creates the builtins: print, typeof, exit, random, isFart and
// array.
func NewRegistry(cfg RegistryConfig) Registry {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	r := cfg.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	reg := Registry{}
	add := func(name string, params []string, min, max int, impl func([]any) (any, error)) {
		reg[name] = &Builtin{name, params, min, max, impl}
	}

	add("print", []string{"...values"}, 1, -1, func(args []any) (any, error) {
		strs := make([]string, len(args))
		for i, arg := range args {
			strs[i] = vals.ToString(arg)
		}
		fmt.Fprintln(out, strings.Join(strs, " "))
		return vals.NewArray(append([]any(nil), args...)...), nil
	})

	add("typeof", []string{"value"}, 1, 1, func(args []any) (any, error) {
		return vals.Kind(args[0]), nil
	})

	add("exit", []string{"code"}, 0, 1, func(args []any) (any, error) {
		code := 0
		if len(args) == 1 {
			f, ok := args[0].(float64)
			if !ok || f != math.Trunc(f) {
				return nil, errs.BadValue{What: "exit code", Valid: "integer", Actual: vals.Repr(args[0])}
			}
			if f < math.MinInt32 || f > math.MaxInt32 {
				return nil, errs.OutOfRange{What: "exit code",
					ValidLow: math.MinInt32, ValidHigh: math.MaxInt32, Actual: vals.FormatNumber(f)}
			}
			code = int(f)
		}
		if cfg.Exit != nil {
			cfg.Exit(code)
		}
		return nil, &ExitSignal{code}
	})

	add("random", []string{"min", "max", "isFloat"}, 0, 3, func(args []any) (any, error) {
		if len(args) == 0 {
			return r.Float64(), nil
		}
		bounds := make([]float64, 0, 2)
		for i, arg := range args[:min(len(args), 2)] {
			f, ok := arg.(float64)
			if !ok {
				what := [...]string{"min", "max"}[i]
				return nil, errs.BadValue{What: what, Valid: "number", Actual: vals.Kind(arg)}
			}
			bounds = append(bounds, f)
		}
		lo, hi := 0.0, bounds[0]
		if len(bounds) == 2 {
			lo, hi = bounds[0], bounds[1]
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if len(args) == 3 && vals.Truth(args[2]) {
			return r.Float64()*(hi-lo) + lo, nil
		}
		return math.Floor(r.Float64()*(hi-lo+1)) + lo, nil
	})

	add("isFart", []string{"value"}, 1, 1, func(args []any) (any, error) {
		return args[0] == "fart", nil
	})

	add("array", []string{"length", "fill"}, 1, 2, func(args []any) (any, error) {
		f, ok := args[0].(float64)
		if !ok {
			return nil, errs.BadValue{What: "length", Valid: "number", Actual: vals.Kind(args[0])}
		}
		if f < 0 || f > maxArrayLength {
			return nil, errs.OutOfRange{What: "length",
				ValidLow: 0, ValidHigh: maxArrayLength, Actual: vals.FormatNumber(f)}
		}
		if f != math.Trunc(f) {
			return nil, errs.BadValue{What: "length", Valid: "integer", Actual: vals.FormatNumber(f)}
		}
		var fill any
		if len(args) == 2 {
			fill = args[1]
		}
		elems := make([]any, int(f))
		for i := range elems {
			elems[i] = fill
		}
		return vals.NewArray(elems...), nil
	})

	return reg
}
