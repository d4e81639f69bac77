// Package evaluator implements the E component (spec.md §4.4): reducing an
// expression tree to a Value. Grounded on funxy's internal/evaluator's
// `Eval(node ast.Node, env *Environment) Object` dispatch shape, split here
// so the single Eval entry point type-switches over ast.Expression instead
// of the shared Node interface funxy uses for both statements and
// expressions.
//
// Evaluator never imports internal/executor: running a user function's
// block (needed for CallExpression) and spawning an async call's frame
// belong to S and R, and are reached back through the BlockRunner
// interface below, injected at construction time — the same
// callback/narrow-interface technique funxy's internal/pipeline uses
// (`PipelineContext.Loader interface{...}`) to let one stage call into
// another without a cyclic import.
package evaluator

import (
	"github.com/mcgru/gulfmex/internal/ast"
	"github.com/mcgru/gulfmex/internal/binding"
	"github.com/mcgru/gulfmex/internal/diagnostics"
	"github.com/mcgru/gulfmex/internal/namespace"
	"github.com/mcgru/gulfmex/internal/scheduler"
	"github.com/mcgru/gulfmex/internal/value"
)

// BlockRunner is implemented by internal/executor's Executor. It lets the
// evaluator run a user function's body (CallExpression) and spawn an async
// task's frame (async CallExpression) without importing internal/executor.
type BlockRunner interface {
	// CallFunction executes fn's body against a fresh child namespace
	// seeded with its parameters bound to args, returning the function's
	// explicit `return` value or Undefined.
	CallFunction(fn *value.Function, args []value.Value, y *scheduler.Yielder) (value.Value, error)

	// SpawnAsync starts fn's body as an independent scheduler frame and
	// returns the Promise that will receive its eventual result.
	SpawnAsync(fn *value.Function, args []value.Value) *value.Promise
}

// Evaluator holds the cross-cutting handles every Eval call needs.
type Evaluator struct {
	Runner BlockRunner
	Sched  *scheduler.Scheduler
	Ctx    *value.Context
}

func New(sched *scheduler.Scheduler, ctx *value.Context) *Evaluator {
	return &Evaluator{Sched: sched, Ctx: ctx}
}

// Eval reduces expr to a Value under namespace ns, using y to suspend the
// current frame at an `await` boundary.
func (e *Evaluator) Eval(expr ast.Expression, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return value.Number{V: n.Value}, nil
	case *ast.StringLiteral:
		return value.NewStr(n.Value), nil
	case *ast.BooleanLiteral:
		return value.Boolean{V: n.Value}, nil
	case *ast.UndefinedLiteral:
		return value.Undefined{}, nil
	case *ast.BlankLiteral:
		return value.Blank{}, nil
	case *ast.Identifier:
		return e.evalIdentifier(n, ns)
	case *ast.ListLiteral:
		return e.evalListLiteral(n, ns, y)
	case *ast.MapLiteral:
		return e.evalMapLiteral(n, ns, y)
	case *ast.FunctionLiteral:
		return &value.Function{Parameters: n.Parameters, Body: n.Body, IsAsync: n.IsAsync, Closure: ns, UID: value.NewUID()}, nil
	case *ast.PrefixExpression:
		return e.evalPrefix(n, ns, y)
	case *ast.InfixExpression:
		return e.evalInfix(n, ns, y)
	case *ast.IndexExpression:
		return e.evalIndex(n, ns, y)
	case *ast.MemberExpression:
		return e.evalMember(n, ns, y)
	case *ast.CallExpression:
		return e.evalCall(n, ns, y)
	case *ast.AwaitExpression:
		return e.evalAwait(n, ns, y)
	}
	return nil, diagnostics.New(diagnostics.InternalInvariant, expr.GetToken(), "no evaluation rule for %T", expr)
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier, ns *namespace.Stack) (value.Value, error) {
	entry, ok := ns.Lookup(n.Value)
	if !ok {
		return nil, diagnostics.New(diagnostics.UndefinedVariable, n.Tok, "%s is undefined", n.Value)
	}
	switch b := entry.(type) {
	case *binding.Name:
		return b.Value, nil
	case *binding.Variable:
		v, err := b.Read()
		if err != nil {
			return nil, diagnostics.New(diagnostics.UndefinedVariable, n.Tok, "%s is undefined", n.Value)
		}
		return v, nil
	}
	return nil, diagnostics.New(diagnostics.InternalInvariant, n.Tok, "unrecognized binding kind for %s", n.Value)
}

func (e *Evaluator) evalListLiteral(n *ast.ListLiteral, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	elems := make([]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.Eval(el, ns, y)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return value.NewList(elems), nil
}

func (e *Evaluator) evalMapLiteral(n *ast.MapLiteral, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	m := value.NewMap()
	for _, pair := range n.Pairs {
		k, err := e.Eval(pair.Key, ns, y)
		if err != nil {
			return nil, err
		}
		v, err := e.Eval(pair.Value, ns, y)
		if err != nil {
			return nil, err
		}
		if err := m.IndexSet(k, v); err != nil {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "map key must be a Number or String")
		}
	}
	return m, nil
}

func (e *Evaluator) evalAwait(n *ast.AwaitExpression, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	v, err := e.Eval(n.Value, ns, y)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*value.Promise)
	if !ok {
		return v, nil
	}
	result, perr := y.Await(p)
	if perr != nil {
		return nil, perr
	}
	return result, nil
}
