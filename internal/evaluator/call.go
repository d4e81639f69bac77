package evaluator

import (
	"time"

	"github.com/mcgru/gulfmex/internal/ast"
	"github.com/mcgru/gulfmex/internal/diagnostics"
	"github.com/mcgru/gulfmex/internal/namespace"
	"github.com/mcgru/gulfmex/internal/scheduler"
	"github.com/mcgru/gulfmex/internal/value"
)

func (e *Evaluator) evalCall(n *ast.CallExpression, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	fn, err := e.Eval(n.Function, ns, y)
	if err != nil {
		return nil, err
	}
	args := make([]value.Value, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := e.Eval(a, ns, y)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch f := fn.(type) {
	case value.BuiltinFunction:
		if f.Arity >= 0 && len(args) != f.Arity {
			return nil, diagnostics.New(diagnostics.ArityMismatch, n.Tok, "%s expects %d argument(s), got %d", f.Name, f.Arity, len(args))
		}
		// The scheduler forbids parking an OS thread in a builtin, so
		// `sleep` is wired per call to the frame actually invoking it
		// rather than bound once at Context construction.
		e.Ctx.Sleep = func(ms float64) { y.Sleep(time.Duration(ms * float64(time.Millisecond))) }
		v, err := f.Fn(e.Ctx, args)
		if err != nil {
			if _, ok := err.(*diagnostics.Error); ok {
				return nil, err
			}
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "%v", err)
		}
		return v, nil
	case *value.Function:
		if len(args) != len(f.Parameters) {
			return nil, diagnostics.New(diagnostics.ArityMismatch, n.Tok, "%s expects %d argument(s), got %d", f.Name, len(f.Parameters), len(args))
		}
		if f.IsAsync {
			return e.Runner.SpawnAsync(f, args), nil
		}
		v, err := e.Runner.CallFunction(f, args, y)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "%s is not callable", fn.Kind())
}
