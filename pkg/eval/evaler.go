package eval

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"

	"src.dde.sh/pkg/parse"
)

// DefaultMaxCallDepth is the default limit of nested user function calls.
const DefaultMaxCallDepth = 10000

// Config keeps the dependencies and limits of an Evaler.
type Config struct {
	// Receives the output of print and the reports of failed statements. If
	// nil, output is discarded.
	Out io.Writer
	// If not nil, receives the reports of failed statements instead of Out.
	// Use io.Discard to drop them.
	Report io.Writer
	// Source of the random builtin. If nil, a time-seeded source is used.
	Rand *rand.Rand
	// If not nil, called by the exit builtin before the evaluation stops. The
	// Evaler never terminates the process itself.
	Exit func(code int)
	// Limit of nested user function calls. If 0, DefaultMaxCallDepth is used.
	MaxCallDepth int
}

// Evaler evaluates code, and maintains the global environment and builtins
// that persist between evaluations of different pieces of code. An Evaler is
// safe to use concurrently; evaluations are serialized.
type Evaler struct {
	mu  sync.Mutex
	cfg Config

	Global   *Env
	Builtins Registry
}

// NewEvaler creates a new Evaler with an empty global environment.
func NewEvaler(cfg Config) *Evaler {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Report == nil {
		cfg.Report = cfg.Out
	}
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Evaler{
		cfg:    cfg,
		Global: NewEnv(),
		Builtins: NewRegistry(RegistryConfig{
			Out: cfg.Out, Rand: cfg.Rand, Exit: cfg.Exit}),
	}
}

// Result is the outcome of evaluating a piece of code.
type Result struct {
	// Value of the last statement that was evaluated successfully. Only
	// meaningful when HasValue is true.
	Value    any
	HasValue bool
	// The global environment after the evaluation.
	Env *Env
	// Failed statements, in order.
	Errors []*StatementError
	// Whether exit was called, and the code it was called with. Statements
	// after the one that called exit are not evaluated.
	Exited   bool
	ExitCode int
}

// StatementError records the failure of one top-level statement.
type StatementError struct {
	// 1-based index of the statement.
	Index int
	Err   *Error
}

func (e *StatementError) Error() string { return e.Err.Error() }

func (e *StatementError) Unwrap() error { return e.Err }

// Line returns the line of the position where the error happened.
func (e *StatementError) Line() int {
	line, _ := e.Err.Context.Position()
	return line
}

// Report returns the line reported to the output when a statement fails.
func (e *StatementError) Report() string {
	return fmt.Sprintf("Error at statement %d (line %d): %s", e.Index, e.Line(), e.Err.Message)
}

// Eval parses src and evaluates each top-level statement in the global
// environment. A failing statement is reported to the output and recorded in
// the Result, and evaluation continues with the next statement. The returned
// error is non-nil only when src cannot be parsed, in which case it is a
// *lex.Error or *parse.Error and nothing is evaluated.
func (ev *Evaler) Eval(src parse.Source) (*Result, error) {
	nodes, err := parse.Parse(src)
	if err != nil {
		return nil, err
	}
	return ev.EvalNodes(src, nodes), nil
}

// EvalNodes is like Eval, but evaluates statements that have already been
// parsed from src.
func (ev *Evaler) EvalNodes(src parse.Source, nodes []parse.Node) *Result {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	e := &evaluator{src: src, builtins: ev.Builtins, maxDepth: ev.cfg.MaxCallDepth}
	res := &Result{Env: ev.Global}
	for i, node := range nodes {
		c, err := e.eval(node, ev.Global)
		if err == nil && c.Returning {
			err = wrapError(src, node, ErrReturnOutside)
		}
		if err == nil {
			res.Value, res.HasValue = c.Value, true
			continue
		}
		var exit *ExitSignal
		if errors.As(err, &exit) {
			logger.Printf("%s: exit with code %d at statement %d", src.Name, exit.Code, i+1)
			res.Exited, res.ExitCode = true, exit.Code
			break
		}
		var evalErr *Error
		if !errors.As(err, &evalErr) {
			// All errors are wrapped by the evaluator; this is a safeguard.
			evalErr = wrapError(src, node, err).(*Error)
		}
		stmtErr := &StatementError{i + 1, evalErr}
		logger.Println(stmtErr.Error())
		fmt.Fprintln(ev.cfg.Report, stmtErr.Report())
		res.Errors = append(res.Errors, stmtErr)
	}
	return res
}

// Run evaluates src with a fresh Evaler. It is a shorthand for
// NewEvaler(cfg).Eval(src).
func Run(src parse.Source, cfg Config) (*Result, error) {
	return NewEvaler(cfg).Eval(src)
}
