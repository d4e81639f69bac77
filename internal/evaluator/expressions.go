package evaluator

import (
	"github.com/mcgru/gulfmex/internal/ast"
	"github.com/mcgru/gulfmex/internal/diagnostics"
	"github.com/mcgru/gulfmex/internal/namespace"
	"github.com/mcgru/gulfmex/internal/scheduler"
	"github.com/mcgru/gulfmex/internal/value"
)

func (e *Evaluator) evalPrefix(n *ast.PrefixExpression, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	right, err := e.Eval(n.Right, ns, y)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "-":
		rn, err := value.ToNumber(right)
		if err != nil {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "cannot negate a non-Number")
		}
		return value.Number{V: -rn.V}, nil
	case "not":
		return value.ToBoolean(right).Not(), nil
	}
	return nil, diagnostics.New(diagnostics.InternalInvariant, n.Tok, "unknown prefix operator %q", n.Operator)
}

func (e *Evaluator) evalInfix(n *ast.InfixExpression, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	left, err := e.Eval(n.Left, ns, y)
	if err != nil {
		return nil, err
	}

	// Kleene boolean connectives short-circuit on the deciding operand the
	// way a three-valued `and`/`or` must: `false and x` is false and
	// `true or x` is true regardless of whether x can even be evaluated.
	switch n.Operator {
	case "and":
		lb := value.ToBoolean(left)
		if lb.IsFalse() {
			return lb, nil
		}
		right, err := e.Eval(n.Right, ns, y)
		if err != nil {
			return nil, err
		}
		return lb.And(value.ToBoolean(right)), nil
	case "or":
		lb := value.ToBoolean(left)
		if lb.IsTrue() {
			return lb, nil
		}
		right, err := e.Eval(n.Right, ns, y)
		if err != nil {
			return nil, err
		}
		return lb.Or(value.ToBoolean(right)), nil
	}

	right, err := e.Eval(n.Right, ns, y)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "==":
		return value.Equal(left, right), nil
	case "!=":
		return value.Equal(left, right).Not(), nil
	case "+":
		return evalPlus(n, left, right)
	case "-", "*", "/", "%":
		return evalArith(n, left, right)
	case "<", ">", "<=", ">=":
		return evalCompare(n, left, right)
	}
	return nil, diagnostics.New(diagnostics.InternalInvariant, n.Tok, "unknown infix operator %q", n.Operator)
}

// evalPlus implements spec.md §4.1's overload: Number+Number adds, any
// other pairing concatenates string forms.
func evalPlus(n *ast.InfixExpression, left, right value.Value) (value.Value, error) {
	if ln, ok := left.(value.Number); ok {
		if rn, ok := right.(value.Number); ok {
			return value.Number{V: ln.V + rn.V}, nil
		}
	}
	ls := value.ToString(left)
	rs := value.ToString(right)
	return value.NewStr(string(ls.Runes) + string(rs.Runes)), nil
}

func evalArith(n *ast.InfixExpression, left, right value.Value) (value.Value, error) {
	ln, err := value.ToNumber(left)
	if err != nil {
		return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "left operand of %q is not a Number", n.Operator)
	}
	rn, err := value.ToNumber(right)
	if err != nil {
		return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "right operand of %q is not a Number", n.Operator)
	}
	switch n.Operator {
	case "-":
		return value.Number{V: ln.V - rn.V}, nil
	case "*":
		return value.Number{V: ln.V * rn.V}, nil
	case "/":
		if rn.V == 0 {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "division by zero")
		}
		return value.Number{V: ln.V / rn.V}, nil
	case "%":
		if rn.V == 0 {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "modulo by zero")
		}
		return value.Number{V: float64(int64(ln.V) % int64(rn.V))}, nil
	}
	return nil, diagnostics.New(diagnostics.InternalInvariant, n.Tok, "unreachable arithmetic operator %q", n.Operator)
}

// evalCompare implements spec.md §4.4's "division by zero yields maybe for
// equality-style comparisons": an ordering comparison against a
// non-Number/non-comparable pairing returns `maybe` rather than failing.
func evalCompare(n *ast.InfixExpression, left, right value.Value) (value.Value, error) {
	ln, lerr := value.ToNumber(left)
	rn, rerr := value.ToNumber(right)
	if lerr != nil || rerr != nil {
		return value.MaybeV(), nil
	}
	switch n.Operator {
	case "<":
		return boolOf(ln.V < rn.V), nil
	case ">":
		return boolOf(ln.V > rn.V), nil
	case "<=":
		return boolOf(ln.V <= rn.V), nil
	case ">=":
		return boolOf(ln.V >= rn.V), nil
	}
	return nil, diagnostics.New(diagnostics.InternalInvariant, n.Tok, "unreachable comparison operator %q", n.Operator)
}

func boolOf(b bool) value.Boolean {
	if b {
		return value.True()
	}
	return value.False()
}

func (e *Evaluator) evalIndex(n *ast.IndexExpression, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	receiver, err := e.Eval(n.Receiver, ns, y)
	if err != nil {
		return nil, err
	}
	idx, err := e.Eval(n.Index, ns, y)
	if err != nil {
		return nil, err
	}
	indexable, ok := value.AsIndexable(receiver)
	if !ok {
		// Number and Str are held by value, and only their pointer types
		// satisfy Indexable; an addressable copy is enough for a read.
		switch r := receiver.(type) {
		case value.Number:
			indexable, ok = &r, true
		case value.Str:
			indexable, ok = &r, true
		}
	}
	if !ok {
		return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "%s is not indexable", receiver.Kind())
	}
	v, err := indexable.IndexGet(idx)
	if err != nil {
		return nil, diagnostics.New(indexErrKind(err), n.Tok, "%v", err)
	}
	return v, nil
}

// indexErrKind classifies a sentinel error from internal/value's
// IndexGet/IndexSet into the diagnostics.Kind spec.md §7 expects.
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

func (e *Evaluator) evalMember(n *ast.MemberExpression, ns *namespace.Stack, y *scheduler.Yielder) (value.Value, error) {
	receiver, err := e.Eval(n.Receiver, ns, y)
	if err != nil {
		return nil, err
	}
	namespaced, ok := value.AsNamespaced(receiver)
	if !ok {
		return nil, diagnostics.New(diagnostics.TypeMismatch, n.Tok, "%s has no members", receiver.Kind())
	}
	member, err := namespaced.NamespaceLookup(n.Member)
	if err != nil {
		return nil, diagnostics.New(diagnostics.InternalInvariant, n.Tok, "%s has no member %q", receiver.Kind(), n.Member)
	}
	if member.MutatesReceiver {
		if bf, ok := member.Value.(value.BuiltinFunction); ok {
			return boundMethod(bf), nil
		}
	}
	return member.Value, nil
}

// boundMethod wraps a mutates-receiver builtin so spec.md §4.4's "method
// binding" holds: the receiver is already closed over by the builtin's Fn
// closure (built by the variant's own NamespaceLookup), so this wrapper
// only needs to preserve identity for Inspect/arity checking.
func boundMethod(bf value.BuiltinFunction) value.Value { return bf }
