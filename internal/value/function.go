package value

import (
	"io"

	"github.com/google/uuid"

	"github.com/mcgru/gulfmex/internal/ast"
)

// Context is the narrow, dependency-free handle builtins receive instead of
// importing internal/executor or internal/scheduler directly (the same
// callback-injection technique funxy's pipeline.PipelineContext uses to let
// one stage call back into another without an import cycle). It is built
// once by internal/pipeline and threaded down through internal/executor and
// internal/evaluator.
type Context struct {
	Stdout io.Writer
	Stdin  io.Reader

	// Call invokes a Function/BuiltinFunction value with the given
	// arguments, returning whatever the evaluator would produce for a
	// CallExpression. Builtins that accept callbacks (none in the base
	// builtin table, but kept generic for user-defined higher-order use)
	// go through this rather than importing internal/evaluator.
	Call func(fn Value, args []Value) (Value, error)

	// Exit requests process termination with the given status code.
	Exit func(code int)

	// Sleep cooperatively yields the calling frame for the given number
	// of milliseconds without blocking an OS thread; internal/evaluator
	// rebinds it to the calling frame's scheduler Yielder on every builtin
	// call.
	Sleep func(ms float64)
}

// Function is a user-defined (possibly async) closure. Closure holds the
// defining *namespace.Stack as interface{} so this package need not import
// internal/namespace, which itself imports internal/value — Closure is
// type-asserted back to *namespace.Stack by internal/evaluator and
// internal/executor, the only packages that ever populate it.
type Function struct {
	Name       string
	Parameters []*ast.Parameter
	Body       *ast.BlockStatement
	IsAsync    bool
	Closure    interface{}
	// UID tags this closure's identity for the scheduler's write-set
	// tracking (spec.md §4.6).
	UID uuid.UUID
}

func (*Function) Kind() Kind { return KindFunction }

func (f *Function) Inspect() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	if f.IsAsync {
		return "<async function " + name + ">"
	}
	return "<function " + name + ">"
}

func (f *Function) ToBoolean() Boolean       { return True() }
func (f *Function) ToNumber() (Number, error) { return Number{}, ErrConversionImpossible }
func (f *Function) ToString() Str             { return Str{Runes: []rune(f.Inspect())} }

func (f *Function) NamespaceLookup(member string) (Member, error) {
	return Member{}, ErrNoSuchMember
}

// BuiltinFunction wraps a Go-implemented builtin (spec.md §6), or a bound
// mutates-receiver method returned from a variant's NamespaceLookup (push,
// pop, ...).
type BuiltinFunction struct {
	Name            string
	Arity           int // -1 means variadic
	MutatesReceiver bool
	Fn              func(ctx *Context, args []Value) (Value, error)
}

func (BuiltinFunction) Kind() Kind { return KindBuiltin }

func (b BuiltinFunction) Inspect() string { return "<builtin " + b.Name + ">" }

func (b BuiltinFunction) ToBoolean() Boolean        { return True() }
func (b BuiltinFunction) ToNumber() (Number, error) { return Number{}, ErrConversionImpossible }
func (b BuiltinFunction) ToString() Str             { return Str{Runes: []rune(b.Inspect())} }

func (b BuiltinFunction) NamespaceLookup(member string) (Member, error) {
	return Member{}, ErrNoSuchMember
}

// Object is a class instance: a namespace of fields plus the originating
// class name, spec.md §4.5's class support.
type Object struct {
	ClassName string
	Fields    map[string]Value
	// FieldOrder preserves declaration order for Inspect.
	FieldOrder []string
	// UID tags this instance's identity for the scheduler's write-set
	// tracking (spec.md §4.6).
	UID uuid.UUID
}

func NewObject(className string) *Object {
	return &Object{ClassName: className, Fields: make(map[string]Value), UID: newID()}
}

func (*Object) Kind() Kind { return KindObject }

func (o *Object) Inspect() string {
	out := "<" + o.ClassName + " {"
	for i, name := range o.FieldOrder {
		if i > 0 {
			out += ", "
		}
		out += name + ": " + o.Fields[name].Inspect()
	}
	return out + "}>"
}

func (o *Object) ToBoolean() Boolean        { return True() }
func (o *Object) ToNumber() (Number, error) { return Number{}, ErrConversionImpossible }
func (o *Object) ToString() Str             { return Str{Runes: []rune(o.Inspect())} }

func (o *Object) NamespaceLookup(member string) (Member, error) {
	if v, ok := o.Fields[member]; ok {
		return Member{Value: v}, nil
	}
	return Member{}, ErrNoSuchMember
}

func (o *Object) SetField(name string, v Value) {
	if _, exists := o.Fields[name]; !exists {
		o.FieldOrder = append(o.FieldOrder, name)
	}
	o.Fields[name] = v
}

// Promise is the single-assignment cell spec.md's async functions return:
// it transitions exactly once from pending (Resolved == false) to settled.
// internal/scheduler owns all writes to a Promise; internal/evaluator's
// `await` only ever reads it.
type Promise struct {
	ID       uint64
	Resolved bool
	Value    Value
	Err      error
	// UID tags this promise's identity for the scheduler's write-set
	// tracking (spec.md §4.6), distinct from ID, a 64-bit number taken
	// from a separately generated random UUID.
	UID uuid.UUID
}

func (*Promise) Kind() Kind { return KindPromise }

func (p *Promise) Inspect() string {
	if !p.Resolved {
		return "<promise pending>"
	}
	if p.Err != nil {
		return "<promise rejected>"
	}
	return "<promise resolved " + p.Value.Inspect() + ">"
}

func (p *Promise) ToBoolean() Boolean {
	if !p.Resolved {
		return MaybeV()
	}
	return True()
}
func (p *Promise) ToNumber() (Number, error) { return Number{}, ErrConversionImpossible }
func (p *Promise) ToString() Str             { return Str{Runes: []rune(p.Inspect())} }

func (p *Promise) NamespaceLookup(member string) (Member, error) {
	return Member{}, ErrNoSuchMember
}
