package value

import (
	"math"

	"github.com/google/uuid"
)

// List is a mutable, fractionally-indexable sequence. Its indexer map works
// exactly like Str's: a user-chosen index (possibly fractional, possibly
// negative) resolves to a real backing-slice position via Index. UID tags
// this List's identity for the scheduler's write-set tracking (spec.md
// §4.6's variable_id backed by identity rather than deep value equality
// for identity-bearing variants).
type List struct {
	Elements []Value
	Index    map[float64]int
	UID      uuid.UUID
}

// NewList builds a List with the default indexing scheme: the first element
// is index -1, then 0, 1, 2, ... (spec.md §3).
func NewList(elems []Value) *List {
	idx := make(map[float64]int, len(elems))
	for i := range elems {
		idx[float64(i-1)] = i
	}
	return &List{Elements: elems, Index: idx, UID: newID()}
}

func (*List) Kind() Kind { return KindList }

func (l *List) Inspect() string {
	out := "["
	for i, e := range l.sortedByRealPos() {
		if i > 0 {
			out += ", "
		}
		out += e.Inspect()
	}
	return out + "]"
}

func (l *List) sortedByRealPos() []Value {
	out := make([]Value, len(l.Elements))
	copy(out, l.Elements)
	return out
}

func (l *List) ToBoolean() Boolean {
	if len(l.Elements) == 0 {
		return False()
	}
	return True()
}

func (l *List) ToNumber() (Number, error) {
	return Number{}, ErrConversionImpossible
}

func (l *List) ToString() Str { return Str{Runes: []rune(l.Inspect())} }

// IndexGet resolves a (possibly fractional) user index to its backing
// element, spec.md §4.1.
func (l *List) IndexGet(key Value) (Value, error) {
	kn, ok := key.(Number)
	if !ok {
		return nil, ErrTypeMismatch
	}
	pos, ok := l.Index[kn.V]
	if !ok {
		return nil, ErrUnassignedIndex
	}
	if pos < 0 || pos >= len(l.Elements) {
		return nil, ErrIndexOutOfBounds
	}
	return l.Elements[pos], nil
}

// IndexSet implements spec.md §4.1's index_set for List: an existing user
// index overwrites its element in place; a brand-new (possibly fractional)
// index splices a single new element at floor(max(key+2, 0)) and shifts
// every user index whose key is strictly greater than the new key, and
// whose real position is at or past the insertion point, up by one.
func (l *List) IndexSet(key Value, val Value) error {
	kn, ok := key.(Number)
	if !ok {
		return ErrTypeMismatch
	}
	if pos, exists := l.Index[kn.V]; exists {
		if pos < 0 || pos >= len(l.Elements) {
			return ErrIndexOutOfBounds
		}
		l.Elements[pos] = val
		return nil
	}

	insertAt := int(math.Floor(math.Max(kn.V+2, 0)))
	if insertAt > len(l.Elements) {
		insertAt = len(l.Elements)
	}
	l.Elements = append(l.Elements, nil)
	copy(l.Elements[insertAt+1:], l.Elements[insertAt:])
	l.Elements[insertAt] = val

	for k, pos := range l.Index {
		if k > kn.V && pos >= insertAt {
			l.Index[k] = pos + 1
		}
	}
	l.Index[kn.V] = insertAt
	return nil
}

// NamespaceLookup exposes push/pop/length (spec.md §3).
func (l *List) NamespaceLookup(member string) (Member, error) {
	switch member {
	case "length":
		return Member{Value: Number{V: float64(len(l.Elements))}}, nil
	case "push":
		return Member{Value: BuiltinFunction{
			Name: "push", Arity: 1, MutatesReceiver: true,
			Fn: func(ctx *Context, args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, ErrTypeMismatch
				}
				nextKey := 0.0
				for k := range l.Index {
					if k >= nextKey {
						nextKey = k + 1
					}
				}
				l.Index[nextKey] = len(l.Elements)
				l.Elements = append(l.Elements, args[0])
				return Undefined{}, nil
			},
		}, MutatesReceiver: true}, nil
	case "pop":
		return Member{Value: BuiltinFunction{
			Name: "pop", Arity: 0, MutatesReceiver: true,
			Fn: func(ctx *Context, args []Value) (Value, error) {
				if len(l.Elements) == 0 {
					return nil, ErrIndexOutOfBounds
				}
				last := l.Elements[len(l.Elements)-1]
				lastPos := len(l.Elements) - 1
				l.Elements = l.Elements[:lastPos]
				for k, pos := range l.Index {
					if pos == lastPos {
						delete(l.Index, k)
					}
				}
				return last, nil
			},
		}, MutatesReceiver: true}, nil
	}
	return Member{}, ErrNoSuchMember
}
