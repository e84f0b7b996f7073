// Package eval implements the evaluator of the dde script language, and
// provides runtime facilities such as environments and builtins.
package eval

import (
	"fmt"

	"src.dde.sh/pkg/diag"
	"src.dde.sh/pkg/eval/errs"
	"src.dde.sh/pkg/eval/vals"
	"src.dde.sh/pkg/logutil"
	"src.dde.sh/pkg/parse"
)

var logger = logutil.GetLogger("[eval] ")

// Completion is the outcome of evaluating a node. When Returning is true, a
// return statement has been evaluated; the completion propagates unchanged
// through blocks, ifs and loops until the nearest enclosing function call
// turns it into the call's value.
type Completion struct {
	Value     any
	Returning bool
}

type evaluator struct {
	src      parse.Source
	builtins Registry
	depth    int
	maxDepth int
}

func (ev *evaluator) errorf(r diag.Ranger, format string, args ...any) error {
	return wrapError(ev.src, r, fmt.Errorf(format, args...))
}

func (ev *evaluator) done(r diag.Ranger, v any, err error) (Completion, error) {
	if err != nil {
		return Completion{}, wrapError(ev.src, r, err)
	}
	return Completion{Value: v}, nil
}

func (ev *evaluator) eval(n parse.Node, env *Env) (Completion, error) {
	switch n := n.(type) {
	case *parse.Number:
		return Completion{Value: n.Value}, nil
	case *parse.String:
		return Completion{Value: n.Value}, nil
	case *parse.Bool:
		return Completion{Value: n.Value}, nil
	case *parse.Null:
		return Completion{}, nil
	case *parse.Ident:
		v, ok := env.Get(n.Name)
		if !ok {
			return Completion{}, ev.errorf(n, "undefined variable: %s", n.Name)
		}
		return Completion{Value: v}, nil
	case *parse.Binary:
		l, err := ev.eval(n.Left, env)
		if err != nil || l.Returning {
			return l, err
		}
		r, err := ev.eval(n.Right, env)
		if err != nil || r.Returning {
			return r, err
		}
		v, err := binaryOp(n.Op, l.Value, r.Value)
		return ev.done(n, v, err)
	case *parse.Array:
		elems, c, err := ev.evalList(n.Elems, env)
		if err != nil || c.Returning {
			return c, err
		}
		return Completion{Value: vals.NewArray(elems...)}, nil
	case *parse.Index:
		obj, err := ev.eval(n.Object, env)
		if err != nil || obj.Returning {
			return obj, err
		}
		idx, err := ev.eval(n.Index, env)
		if err != nil || idx.Returning {
			return idx, err
		}
		v, err := indexValue(obj.Value, idx.Value)
		return ev.done(n, v, err)
	case *parse.Property:
		obj, err := ev.eval(n.Object, env)
		if err != nil || obj.Returning {
			return obj, err
		}
		v, err := getProperty(obj.Value, n.Name)
		return ev.done(n, v, err)
	case *parse.Assign:
		return ev.evalAssign(n, env)
	case *parse.Func:
		return Completion{}, wrapError(ev.src, n, ErrBareFunc)
	case *parse.Call:
		return ev.evalCall(n, env)
	case *parse.Block:
		return ev.evalBlock(n, env)
	case *parse.If:
		cond, err := ev.eval(n.Cond, env)
		if err != nil || cond.Returning {
			return cond, err
		}
		if vals.Truth(cond.Value) {
			return ev.evalBlock(n.Then, env)
		} else if n.Else != nil {
			return ev.eval(n.Else, env)
		}
		return Completion{}, nil
	case *parse.For:
		return ev.evalFor(n, env)
	case *parse.Return:
		if n.Value == nil {
			return Completion{Returning: true}, nil
		}
		c, err := ev.eval(n.Value, env)
		if err != nil {
			return c, err
		}
		return Completion{Value: c.Value, Returning: true}, nil
	default:
		return Completion{}, wrapError(ev.src, n, fmt.Errorf("%w %T", errUnknownNodeType, n))
	}
}

// Evaluates nodes in order. If one of them returns, its completion is
// returned and the rest are not evaluated.
func (ev *evaluator) evalList(nodes []parse.Node, env *Env) ([]any, Completion, error) {
	values := make([]any, len(nodes))
	for i, node := range nodes {
		c, err := ev.eval(node, env)
		if err != nil || c.Returning {
			return nil, c, err
		}
		values[i] = c.Value
	}
	return values, Completion{}, nil
}

func (ev *evaluator) evalBlock(b *parse.Block, env *Env) (Completion, error) {
	var last Completion
	for _, stmt := range b.Stmts {
		c, err := ev.eval(stmt, env)
		if err != nil || c.Returning {
			return c, err
		}
		last = c
	}
	return last, nil
}

func (ev *evaluator) evalAssign(n *parse.Assign, env *Env) (Completion, error) {
	var v any
	if fn, ok := n.Value.(*parse.Func); ok {
		if _, isBuiltin := ev.builtins[n.Name]; isBuiltin {
			return Completion{}, ev.errorf(n, "cannot redefine function %s", n.Name)
		}
		v = &Func{n.Name, fn.Params, fn.Body}
	} else {
		c, err := ev.eval(n.Value, env)
		if err != nil || c.Returning {
			return c, err
		}
		v = c.Value
	}
	env.Set(n.Name, v)
	return Completion{Value: v}, nil
}

func (ev *evaluator) evalCall(n *parse.Call, env *Env) (Completion, error) {
	args, c, err := ev.evalList(n.Args, env)
	if err != nil || c.Returning {
		return c, err
	}
	switch callee := n.Callee.(type) {
	case *parse.Property:
		obj, err := ev.eval(callee.Object, env)
		if err != nil || obj.Returning {
			return obj, err
		}
		v, err := callMethod(obj.Value, callee.Name, args)
		return ev.done(n, v, err)
	case *parse.Ident:
		if b, ok := ev.builtins[callee.Name]; ok {
			v, err := b.Call(args)
			return ev.done(n, v, err)
		}
		if v, ok := env.Get(callee.Name); ok {
			if f, ok := v.(*Func); ok {
				return ev.callFunc(n, f, args, env)
			}
		}
	}
	return Completion{}, ev.errorf(n, "unknown function: %s", n.CalleeName())
}

func (ev *evaluator) callFunc(n *parse.Call, f *Func, args []any, env *Env) (Completion, error) {
	if ev.depth >= ev.maxDepth {
		return Completion{}, wrapError(ev.src, n, ErrCallDepth)
	}
	ev.depth++
	defer func() { ev.depth-- }()

	local := env.Snapshot()
	for i, param := range f.Params {
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		local.Set(param, arg)
	}
	c, err := ev.evalBlock(f.Body, local)
	if err != nil {
		return Completion{}, err
	}
	return Completion{Value: c.Value}, nil
}

func (ev *evaluator) evalFor(n *parse.For, env *Env) (Completion, error) {
	c, err := ev.eval(n.Iterable, env)
	if err != nil || c.Returning {
		return c, err
	}
	arr, ok := c.Value.(*vals.Array)
	if !ok {
		return Completion{}, ev.errorf(n.Iterable, "expected iterable, got %s", vals.Kind(c.Value))
	}
	var last Completion
	// The length is read on every iteration, so elements pushed by the body
	// are visited too.
	for i := 0; i < arr.Len(); i++ {
		local := env.Snapshot()
		local.Set(n.Item, arr.Elems[i])
		if n.Index != "" {
			local.Set(n.Index, float64(i))
		}
		c, err := ev.evalBlock(n.Body, local)
		if err != nil || c.Returning {
			return c, err
		}
		last = c
	}
	return last, nil
}

func binaryOp(op string, l, r any) (any, error) {
	switch op {
	case "+":
		_, lstr := l.(string)
		_, rstr := r.(string)
		if lstr || rstr {
			return vals.ToString(l) + vals.ToString(r), nil
		}
		lf, rf, err := numberOperands(op, "number or string", l, r)
		if err != nil {
			return nil, err
		}
		return lf + rf, nil
	case "-", "*", "/":
		lf, rf, err := numberOperands(op, "number", l, r)
		if err != nil {
			return nil, err
		}
		switch op {
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		default:
			return lf / rf, nil
		}
	case "==":
		return vals.Equal(l, r), nil
	case "!=":
		return !vals.Equal(l, r), nil
	case "<", "<=", ">", ">=":
		c, err := vals.Compare(l, r)
		if err != nil {
			return nil, err
		}
		switch op {
		case "<":
			return c == -1, nil
		case "<=":
			return c == -1 || c == 0, nil
		case ">":
			return c == 1, nil
		default:
			return c == 1 || c == 0, nil
		}
	default:
		return nil, fmt.Errorf("unknown operator %s", op)
	}
}

func numberOperands(op, valid string, l, r any) (float64, float64, error) {
	lf, ok := l.(float64)
	if !ok {
		return 0, 0, errs.BadValue{What: "left operand of " + op, Valid: valid, Actual: vals.Kind(l)}
	}
	rf, ok := r.(float64)
	if !ok {
		return 0, 0, errs.BadValue{What: "right operand of " + op, Valid: valid, Actual: vals.Kind(r)}
	}
	return lf, rf, nil
}
