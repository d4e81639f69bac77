package value

// ToBoolean, ToNumber and ToString are the uniform conversion dispatchers
// spec.md §4.1 requires every component to use instead of type-switching on
// Value ad hoc. Most variants implement the conversion as a method; these
// free functions extend the same matrix to the variants that don't
// (Undefined, Blank, Keyword),
// so evaluator/executor call sites never need their own type switch.

type toBooleaner interface{ ToBoolean() Boolean }
type toNumberer interface {
	ToNumber() (Number, error)
}
type toStringer interface{ ToString() Str }

// ToBoolean implements spec.md §3's "every value converts to a boolean"
// rule. Undefined and Blank are always false; Keyword is always true
// (reaching one is already a reserved-word violation, not a falsy check).
func ToBoolean(v Value) Boolean {
	switch vv := v.(type) {
	case toBooleaner:
		return vv.ToBoolean()
	case Undefined:
		return False()
	case Blank:
		return False()
	case Keyword:
		return True()
	default:
		return False()
	}
}

// ToNumber implements spec.md §3's numeric coercion matrix. Undefined,
// Blank, List, Map, Function, BuiltinFunction, Object, Promise and Keyword
// have no numeric form and return ErrConversionImpossible.
func ToNumber(v Value) (Number, error) {
	if vv, ok := v.(toNumberer); ok {
		return vv.ToNumber()
	}
	return Number{}, ErrConversionImpossible
}

// ToString implements spec.md §3's "every value prints as something"
// stringification matrix, used by `print`, string concatenation and
// implicit string coercion.
func ToString(v Value) Str {
	switch vv := v.(type) {
	case toStringer:
		return vv.ToString()
	default:
		return Str{Runes: []rune(v.Inspect())}
	}
}

// AsIndexable type-asserts v against Indexable, the dispatcher used by
// IndexExpression evaluation (spec.md §4.1).
func AsIndexable(v Value) (Indexable, bool) {
	idx, ok := v.(Indexable)
	return idx, ok
}

// AsNamespaced type-asserts v against Namespaced, the dispatcher used by
// MemberExpression evaluation.
func AsNamespaced(v Value) (Namespaced, bool) {
	ns, ok := v.(Namespaced)
	return ns, ok
}

// Equal implements spec.md §3's equality semantics: Number-to-Number
// compares within FloatCompareEpsilon; String-to-String and Boolean-to-
// Boolean compare by value (Boolean's `maybe` equals nothing, including
// another `maybe`, per Kleene semantics); List/Map/Object/Function/Promise
// compare by their UID identity tag, not by contents; every other pairing
// (including cross-kind comparisons) is false.
func Equal(a, b Value) Boolean {
	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			d := av.V - bv.V
			if d < 0 {
				d = -d
			}
			return boolFromGo(d <= FloatCompareEpsilon)
		}
		return False()
	case Str:
		if bv, ok := b.(Str); ok {
			return boolFromGo(string(av.Runes) == string(bv.Runes))
		}
		return False()
	case Boolean:
		if bv, ok := b.(Boolean); ok {
			if av.IsMaybe() || bv.IsMaybe() {
				return False()
			}
			return boolFromGo(av.IsTrue() == bv.IsTrue())
		}
		return False()
	case Undefined:
		_, ok := b.(Undefined)
		return boolFromGo(ok)
	case Blank:
		_, ok := b.(Blank)
		return boolFromGo(ok)
	case *List:
		bv, ok := b.(*List)
		return boolFromGo(ok && av.UID == bv.UID)
	case *Map:
		bv, ok := b.(*Map)
		return boolFromGo(ok && av.UID == bv.UID)
	case *Object:
		bv, ok := b.(*Object)
		return boolFromGo(ok && av.UID == bv.UID)
	case *Function:
		bv, ok := b.(*Function)
		return boolFromGo(ok && av.UID == bv.UID)
	case *Promise:
		bv, ok := b.(*Promise)
		return boolFromGo(ok && av.UID == bv.UID)
	default:
		return False()
	}
}

func boolFromGo(b bool) Boolean {
	if b {
		return True()
	}
	return False()
}
