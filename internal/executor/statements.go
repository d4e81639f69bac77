package executor

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcgru/gulfmex/internal/ast"
	"github.com/mcgru/gulfmex/internal/binding"
	"github.com/mcgru/gulfmex/internal/config"
	"github.com/mcgru/gulfmex/internal/diagnostics"
	"github.com/mcgru/gulfmex/internal/namespace"
	"github.com/mcgru/gulfmex/internal/scheduler"
	"github.com/mcgru/gulfmex/internal/value"
)

// ExecuteStatement dispatches a single statement by its concrete kind
// (spec.md §4.5). The returned bool reports whether a `return` unwound
// this call; stmts further up the block stop executing when it is true.
func (ex *Executor) ExecuteStatement(ns *namespace.Stack, stmt ast.Statement, y *scheduler.Yielder) (value.Value, bool, error) {
	switch s := stmt.(type) {
	case *ast.DeclarationStatement:
		return ex.execDeclaration(ns, s, y)
	case *ast.AssignmentStatement:
		return ex.execAssignment(ns, s, y)
	case *ast.ConditionalStatement:
		return ex.execConditional(ns, s, y)
	case *ast.WhenStatement:
		return ex.execWhen(ns, s, y)
	case *ast.AfterStatement:
		return ex.execAfter(ns, s, y)
	case *ast.FunctionDefinitionStatement:
		return ex.execFunctionDef(ns, s)
	case *ast.ClassDeclarationStatement:
		return ex.execClassDecl(ns, s)
	case *ast.ReturnStatement:
		return ex.execReturn(ns, s, y)
	case *ast.DeleteStatement:
		return ex.execDelete(ns, s)
	case *ast.ReverseStatement:
		return value.Undefined{}, false, nil
	case *ast.ImportStatement:
		return ex.execImport(ns, s)
	case *ast.ExportStatement:
		return ex.execExport(ns, s)
	case *ast.ExpressionStatement:
		_, err := ex.Eval.Eval(s.Expression, ns, y)
		if err != nil {
			return nil, false, err
		}
		return value.Undefined{}, false, nil
	case *ast.BlockStatement:
		return ex.ExecuteBlock(ns, s, y)
	}
	return nil, false, diagnostics.New(diagnostics.InternalInvariant, stmt.GetToken(), "no execution rule for %T", stmt)
}

func (ex *Executor) execDeclaration(ns *namespace.Stack, d *ast.DeclarationStatement, y *scheduler.Yielder) (value.Value, bool, error) {
	val, err := ex.Eval.Eval(d.Value, ns, y)
	if err != nil {
		return nil, false, err
	}

	canReset := d.Modifiers.First == "var"
	canEdit := d.Modifiers.Second == "var"

	lines := config.InfiniteLifetime
	isTemporal := false
	var dur time.Duration
	if d.Lifetime != nil {
		if d.Lifetime.IsTemporal {
			isTemporal = true
			dur = time.Duration(d.Lifetime.DurationMS) * time.Millisecond
		} else {
			lines = d.Lifetime.Lines
		}
	}

	if existing, ok := ns.LookupLocal(d.Name.Value); ok {
		if head, has := existing.Head(); has && head.Confidence == d.Confidence && !head.CanBeReset {
			return nil, false, diagnostics.New(diagnostics.RedeclarationBlocked, d.Tok, "%s cannot be redeclared at confidence %d", d.Name.Value, d.Confidence)
		}
	}

	// A redeclaration in the same scope adds a confidence-ranked lifetime to
	// the existing Variable instead of replacing it.
	v, found := ns.LookupLocal(d.Name.Value)
	if !found || len(v.Lifetimes) == 0 {
		v = &binding.Variable{Name: d.Name.Value}
		ex.trackVariable(v)
		ns.InsertLocal(d.Name.Value, v)
	}
	v.AddLifetime(binding.VariableLifetime{
		Value: val, LinesLeft: lines, Confidence: d.Confidence,
		CanBeReset: canReset, CanEditValue: canEdit, CreatedAt: time.Now(),
		IsTemporal: isTemporal, TemporalDuration: dur,
	})
	headValue, _ := v.Read()
	ex.Sched.RecordWrite(y, v, headValue)
	return value.Undefined{}, false, nil
}

func (ex *Executor) execAssignment(ns *namespace.Stack, a *ast.AssignmentStatement, y *scheduler.Yielder) (value.Value, bool, error) {
	rhs, err := ex.Eval.Eval(a.Value, ns, y)
	if err != nil {
		return nil, false, err
	}

	v, ok := ns.LookupVariable(a.Name.Value)
	if !ok {
		return nil, false, diagnostics.New(diagnostics.UndeclaredAssignment, a.Tok, "%s was never declared", a.Name.Value)
	}

	if len(a.Indexes) == 0 {
		v.AddLifetime(binding.VariableLifetime{
			Value: rhs, LinesLeft: config.InfiniteLifetime, Confidence: a.Confidence,
			CanBeReset: true, CanEditValue: true, CreatedAt: time.Now(),
		})
		ex.Sched.RecordWrite(y, v, rhs)
		return value.Undefined{}, false, nil
	}

	head, has := v.Head()
	if !has {
		return nil, false, diagnostics.New(diagnostics.UndefinedVariable, a.Tok, "%s is undefined", a.Name.Value)
	}
	if !head.CanEditValue {
		return nil, false, diagnostics.New(diagnostics.ImmutableBinding, a.Tok, "%s cannot be edited in place", a.Name.Value)
	}

	// Walk down to the innermost container, remembering each (container,
	// key) step. Most containers (List, Map) are pointer-backed, so
	// IndexSet mutates them in place and the variable's own head value
	// already reflects the change once the deepest call returns. A
	// value-typed leaf like Number does not: its IndexSet runs against an
	// addressable local copy, so the mutated copy has to be carried back
	// up the chain (and finally into the variable's head) explicitly.
	type step struct {
		container value.Value
		key       value.Value
	}
	var chain []step
	target := head.Value
	for i := 0; i < len(a.Indexes)-1; i++ {
		idx, err := ex.Eval.Eval(a.Indexes[i], ns, y)
		if err != nil {
			return nil, false, err
		}
		indexable, ok := value.AsIndexable(target)
		if !ok {
			return nil, false, diagnostics.New(diagnostics.TypeMismatch, a.Tok, "%s is not indexable", target.Kind())
		}
		next, err := indexable.IndexGet(idx)
		if err != nil {
			return nil, false, diagnostics.New(indexErrKind(err), a.Tok, "%v", err)
		}
		chain = append(chain, step{container: target, key: idx})
		target = next
	}

	lastIdx, err := ex.Eval.Eval(a.Indexes[len(a.Indexes)-1], ns, y)
	if err != nil {
		return nil, false, err
	}

	newValue, err := setIndex(target, lastIdx, rhs)
	if err != nil {
		return nil, false, diagnostics.New(indexErrKind(err), a.Tok, "%v", err)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		newValue, err = setIndex(chain[i].container, chain[i].key, newValue)
		if err != nil {
			return nil, false, diagnostics.New(indexErrKind(err), a.Tok, "%v", err)
		}
	}

	v.SetHeadValue(newValue)
	ex.Sched.RecordWrite(y, v, newValue)
	return value.Undefined{}, false, nil
}

// setIndex mutates container at key to val and returns the value that must
// be propagated to whatever holds container: for pointer-backed containers
// (*List, *Map) that is just container itself, already mutated in place;
// for a value-typed leaf (Number digit assignment) IndexSet runs against an
// addressable local copy, and that updated copy is the value the caller
// needs to write back into the parent container or variable binding.
func setIndex(container, key, val value.Value) (value.Value, error) {
	if indexable, ok := value.AsIndexable(container); ok {
		if err := indexable.IndexSet(key, val); err != nil {
			return nil, err
		}
		return container, nil
	}
	if n, ok := container.(value.Number); ok {
		if err := n.IndexSet(key, val); err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, value.ErrTypeMismatch
}

func indexErrKind(err error) diagnostics.Kind {
	switch err {
	case value.ErrIndexOutOfBounds:
		return diagnostics.IndexOutOfBounds
	case value.ErrUnassignedIndex:
		return diagnostics.UnassignedIndex
	case value.ErrKeyNotFound:
		return diagnostics.KeyError
	default:
		return diagnostics.TypeMismatch
	}
}

func (ex *Executor) execConditional(ns *namespace.Stack, c *ast.ConditionalStatement, y *scheduler.Yielder) (value.Value, bool, error) {
	cond, err := ex.Eval.Eval(c.Condition, ns, y)
	if err != nil {
		return nil, false, err
	}
	b := value.ToBoolean(cond)
	if b.IsTrue() {
		return ex.ExecuteBlock(ns, c.Then, y)
	}
	if b.IsMaybe() {
		v, returned, err := ex.ExecuteBlock(ns, c.Then, y)
		if err != nil || returned {
			return v, returned, err
		}
		if c.Else != nil {
			return ex.ExecuteBlock(ns, c.Else, y)
		}
		return v, false, nil
	}
	if c.Else != nil {
		return ex.ExecuteBlock(ns, c.Else, y)
	}
	return value.Undefined{}, false, nil
}

func (ex *Executor) execWhen(ns *namespace.Stack, w *ast.WhenStatement, y *scheduler.Yielder) (value.Value, bool, error) {
	deps := make(map[*binding.Variable]bool)
	for _, name := range freeIdentifiers(w.Condition) {
		if v, ok := ns.LookupVariable(name); ok {
			deps[v] = true
		}
	}

	fire := func(fy *scheduler.Yielder) {
		cond, err := ex.Eval.Eval(w.Condition, ns, fy)
		if err != nil {
			return
		}
		if value.ToBoolean(cond).IsTrue() {
			ex.ExecuteBlock(ns, w.Body, fy)
		}
	}

	watcher := &scheduler.Watcher{ID: uuid.New(), Deps: deps, Body: fire}
	ex.Sched.RegisterWatcher(watcher)

	cond, err := ex.Eval.Eval(w.Condition, ns, y)
	if err != nil {
		return nil, false, err
	}
	if value.ToBoolean(cond).IsTrue() {
		watcher.InProgress = true
		if _, _, err := ex.ExecuteBlock(ns, w.Body, y); err != nil {
			return nil, false, err
		}
		watcher.InProgress = false
	}
	return value.Undefined{}, false, nil
}

func (ex *Executor) execAfter(ns *namespace.Stack, a *ast.AfterStatement, y *scheduler.Yielder) (value.Value, bool, error) {
	fire := func(fy *scheduler.Yielder) {
		ex.ExecuteBlock(ns, a.Body, fy)
	}
	if a.IsTemporal {
		ex.Sched.RegisterDurationTimer(time.Duration(a.DurationMS)*time.Millisecond, fire)
	} else {
		ex.Sched.RegisterLineTimer(a.Lines, fire)
	}
	return value.Undefined{}, false, nil
}

func (ex *Executor) execFunctionDef(ns *namespace.Stack, f *ast.FunctionDefinitionStatement) (value.Value, bool, error) {
	fn := &value.Function{Name: f.Name.Value, Parameters: f.Parameters, Body: f.Body, IsAsync: f.IsAsync, Closure: ns, UID: value.NewUID()}
	ns.InsertLocalName(f.Name.Value, &binding.Name{Identifier: f.Name.Value, Value: fn})
	return value.Undefined{}, false, nil
}

func (ex *Executor) execClassDecl(ns *namespace.Stack, c *ast.ClassDeclarationStatement) (value.Value, bool, error) {
	tmpl := &classTemplate{name: c.Name.Value, members: c.Members, closure: ns}
	ex.classes[c.Name.Value] = tmpl

	ctor := value.BuiltinFunction{
		Name: c.Name.Value, Arity: -1,
		Fn: func(ctx *value.Context, args []value.Value) (value.Value, error) {
			return ex.instantiate(tmpl, args)
		},
	}
	ns.InsertLocalName(c.Name.Value, &binding.Name{Identifier: c.Name.Value, Value: ctor})
	return value.Undefined{}, false, nil
}

// instantiate builds an Object from a class template, running its
// DeclarationStatement members as field initializers and binding its
// FunctionDefinitionStatement members into the object's namespace (spec.md
// §4.5's "also a constructor that creates an Object with member
// namespace").
func (ex *Executor) instantiate(tmpl *classTemplate, args []value.Value) (value.Value, error) {
	obj := value.NewObject(tmpl.name)
	objNS := tmpl.closure.Child()
	for _, member := range tmpl.members {
		switch m := member.(type) {
		case *ast.DeclarationStatement:
			// A field initializer that itself awaits is not supported: the
			// constructor runs outside any scheduler frame, so it is given
			// a detached Yielder with no backing frame.
			if _, _, err := ex.execDeclaration(objNS, m, &scheduler.Yielder{}); err != nil {
				return nil, err
			}
			if variable, ok := objNS.LookupVariable(m.Name.Value); ok {
				if head, has := variable.Head(); has {
					obj.SetField(m.Name.Value, head.Value)
				}
			}
		case *ast.FunctionDefinitionStatement:
			fn := &value.Function{Name: m.Name.Value, Parameters: m.Parameters, Body: m.Body, IsAsync: m.IsAsync, Closure: objNS, UID: value.NewUID()}
			obj.SetField(m.Name.Value, fn)
		}
	}
	return obj, nil
}

func (ex *Executor) execReturn(ns *namespace.Stack, r *ast.ReturnStatement, y *scheduler.Yielder) (value.Value, bool, error) {
	if r.Value == nil {
		return value.Undefined{}, true, nil
	}
	v, err := ex.Eval.Eval(r.Value, ns, y)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (ex *Executor) execDelete(ns *namespace.Stack, d *ast.DeleteStatement) (value.Value, bool, error) {
	ns.Delete(d.Name.Value)
	return value.Undefined{}, false, nil
}

func (ex *Executor) execImport(ns *namespace.Stack, i *ast.ImportStatement) (value.Value, bool, error) {
	source := ""
	if i.Source != nil {
		source = i.Source.Value
	}
	if len(i.Names) == 0 {
		names, err := ex.Mods.ExportedNames(source)
		if err != nil {
			return nil, false, diagnostics.New(diagnostics.UndefinedVariable, i.Tok, "module %q not found", source)
		}
		for name, n := range names {
			ns.InsertLocalName(name, n)
		}
		return value.Undefined{}, false, nil
	}
	for _, ident := range i.Names {
		n, err := ex.Mods.Import(source, ident.Value)
		if err != nil {
			return nil, false, diagnostics.New(diagnostics.UndefinedVariable, i.Tok, "%q does not export %s", source, ident.Value)
		}
		ns.InsertLocalName(ident.Value, n)
	}
	return value.Undefined{}, false, nil
}

func (ex *Executor) execExport(ns *namespace.Stack, e *ast.ExportStatement) (value.Value, bool, error) {
	for _, ident := range e.Names {
		entry, ok := ns.Lookup(ident.Value)
		if !ok {
			return nil, false, diagnostics.New(diagnostics.UndefinedVariable, e.Tok, "%s is undefined", ident.Value)
		}
		var n *binding.Name
		switch b := entry.(type) {
		case *binding.Name:
			n = b
		case *binding.Variable:
			head, _ := b.Head()
			n = &binding.Name{Identifier: ident.Value, Value: head.Value}
		}
		ex.Mods.Export("", ident.Value, n)
	}
	return value.Undefined{}, false, nil
}
