// Package executor implements the S component (spec.md §4.5): statement
// dispatch, the per-statement lifetime sweep, and the CallFunction/
// SpawnAsync hooks internal/evaluator calls back into (it implements
// evaluator.BlockRunner). Grounded on funxy's internal/evaluator/
// statements.go dispatch-by-type shape, generalized from funxy's single
// Eval(node) switch into a dedicated per-kind table since the Language
// keeps S and E as separate components instead of funxy's unified tree
// walk.
package executor

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcgru/gulfmex/internal/ast"
	"github.com/mcgru/gulfmex/internal/binding"
	"github.com/mcgru/gulfmex/internal/config"
	"github.com/mcgru/gulfmex/internal/evaluator"
	"github.com/mcgru/gulfmex/internal/modules"
	"github.com/mcgru/gulfmex/internal/namespace"
	"github.com/mcgru/gulfmex/internal/scheduler"
	"github.com/mcgru/gulfmex/internal/value"
)

// classTemplate is what a ClassDeclarationStatement binds: enough to
// construct a fresh Object on call (spec.md §4.5's "for class, also a
// constructor that creates an Object with member namespace").
type classTemplate struct {
	name    string
	members []ast.Statement
	closure *namespace.Stack
}

// Executor owns the cross-cutting handles statement execution needs: the
// expression evaluator, the scheduler, the module registry, and the
// program-wide variable registry the per-statement sweep walks.
type Executor struct {
	Eval  *evaluator.Evaluator
	Sched *scheduler.Scheduler
	Ctx   *value.Context
	Mods  *modules.Registry

	classes map[string]*classTemplate

	// vars is every Variable ever declared anywhere in the program,
	// tracked so the per-statement sweep can decrement lines_left on
	// "every live lifetime in all namespaces" per spec.md §4.4, not just
	// the current block's.
	vars []*binding.Variable

	// rootOverrides augments/replaces the builtin table at program start,
	// used by internal/pipeline to splice persisted globals (spec.md
	// §6.4) back in ahead of a fresh run.
	rootOverrides map[string]value.Value

	// root is the program's outermost namespace, kept around after
	// ExecuteProgram returns so GlobalSnapshot can read back whatever
	// the run left bound at that scope.
	root *namespace.Stack
}

func New(sched *scheduler.Scheduler, ctx *value.Context, mods *modules.Registry) *Executor {
	ex := &Executor{Sched: sched, Ctx: ctx, Mods: mods, classes: make(map[string]*classTemplate)}
	ex.Eval = evaluator.New(sched, ctx)
	ex.Eval.Runner = ex
	return ex
}

func (ex *Executor) trackVariable(v *binding.Variable) {
	ex.vars = append(ex.vars, v)
}

// SeedRoot overrides/augments the default builtin table the next
// ExecuteProgram call binds into the root namespace, keyed by identifier.
func (ex *Executor) SeedRoot(bindings map[string]value.Value) {
	ex.rootOverrides = bindings
}

// GlobalSnapshot returns the head value of every Variable bound directly at
// the program's root scope whose head lifetime is `const const` (neither
// resettable nor editable), for internal/pipeline to persist across runs
// (spec.md §6.4). Must be called after ExecuteProgram returns.
func (ex *Executor) GlobalSnapshot() map[string]value.Value {
	out := make(map[string]value.Value)
	if ex.root == nil {
		return out
	}
	for _, v := range ex.root.AllVariables() {
		if head, ok := v.Head(); ok && !head.CanBeReset && !head.CanEditValue {
			out[v.Name] = head.Value
		}
	}
	return out
}

// Sweep implements spec.md §4.4's "after every executed statement,
// decrement lines_left on every live lifetime in all namespaces and call
// clear_outdated", plus the timer decrement spec.md §4.6 ties to the same
// per-statement cadence.
func (ex *Executor) Sweep() {
	now := time.Now()
	live := ex.vars[:0]
	for _, v := range ex.vars {
		v.DecrementLines()
		if emptied := v.ClearOutdated(now); emptied {
			ex.Sched.UnregisterWatchersDependingOn(v)
			continue
		}
		live = append(live, v)
	}
	ex.vars = live
	ex.Sched.DecrementTimers()
}

// ExecuteProgram runs prog's top-level statements as the main frame's body,
// spawned and driven to completion by the scheduler.
func (ex *Executor) ExecuteProgram(prog *ast.Program) (value.Value, error) {
	ns := namespace.NewStack()
	root := ex.rootOverrides
	if root == nil {
		root = defaultRootBindings()
	}
	for name, v := range root {
		ns.InsertLocalName(name, &binding.Name{Identifier: name, Value: v})
	}
	ex.root = ns
	return ex.Sched.Run(func(y *scheduler.Yielder) (value.Value, error) {
		v, _, err := ex.ExecuteStatements(ns, prog.Statements, y)
		return v, err
	})
}

// ExecuteStatements runs a statement slice to completion or to the first
// explicit `return`, honoring in-place `reverse` mutation of the remaining
// slice (spec.md §9 Open Question b: reverse only the enclosing block's
// remaining siblings).
func (ex *Executor) ExecuteStatements(ns *namespace.Stack, stmts []ast.Statement, y *scheduler.Yielder) (value.Value, bool, error) {
	for i := 0; i < len(stmts); i++ {
		v, returned, err := ex.ExecuteStatement(ns, stmts[i], y)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return v, true, nil
		}
		if _, ok := stmts[i].(*ast.ReverseStatement); ok {
			remainder := stmts[i+1:]
			for l, r := 0, len(remainder)-1; l < r; l, r = l+1, r-1 {
				remainder[l], remainder[r] = remainder[r], remainder[l]
			}
		}
		ex.Sweep()
	}
	return value.Undefined{}, false, nil
}

// ExecuteBlock pushes a fresh innermost scope, runs the block's statements,
// and pops it back off before returning.
func (ex *Executor) ExecuteBlock(ns *namespace.Stack, block *ast.BlockStatement, y *scheduler.Yielder) (value.Value, bool, error) {
	ns.Push()
	defer ns.Pop()
	return ex.ExecuteStatements(ns, block.Statements, y)
}

// CallFunction implements evaluator.BlockRunner: run fn's body against a
// child of its defining namespace, seeded with its parameters.
func (ex *Executor) CallFunction(fn *value.Function, args []value.Value, y *scheduler.Yielder) (value.Value, error) {
	closure, _ := fn.Closure.(*namespace.Stack)
	if closure == nil {
		closure = namespace.NewStack()
	}
	callNS := closure.Child()
	for i, p := range fn.Parameters {
		v := &binding.Variable{Name: p.Name.Value}
		v.AddLifetime(binding.VariableLifetime{
			Value: args[i], LinesLeft: config.InfiniteLifetime,
			Confidence: config.DefaultConfidence, CanBeReset: true, CanEditValue: true,
			CreatedAt: time.Now(),
		})
		ex.trackVariable(v)
		callNS.InsertLocal(p.Name.Value, v)
	}
	result, returned, err := ex.ExecuteStatements(callNS, fn.Body.Statements, y)
	if err != nil {
		return nil, err
	}
	if !returned {
		return value.Undefined{}, nil
	}
	return result, nil
}

// SpawnAsync implements evaluator.BlockRunner: start fn's body as an
// independent scheduler frame, returning the Promise it will settle
// (spec.md §4.4's "async functions instead spawn a task and return a fresh
// Promise").
func (ex *Executor) SpawnAsync(fn *value.Function, args []value.Value) *value.Promise {
	p := &value.Promise{ID: newPromiseID(), UID: value.NewUID()}
	ex.Sched.Spawn(func(y *scheduler.Yielder) {
		result, err := ex.CallFunction(fn, args, y)
		if err != nil {
			ex.Sched.Resolve(p, value.Undefined{}, err)
			return
		}
		ex.Sched.Resolve(p, result, nil)
	})
	return p
}

func newPromiseID() uint64 {
	id := uuid.New()
	var out uint64
	for _, b := range id[:8] {
		out = out<<8 | uint64(b)
	}
	return out
}

