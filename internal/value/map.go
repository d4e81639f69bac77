package value

import (
	"fmt"

	"github.com/google/uuid"
)

// mapKey renders a Value into a comparable Go map key. Only Number and Str
// are valid Map keys per spec.md §3 ("keyed by Number or String").
func mapKey(v Value) (string, error) {
	switch k := v.(type) {
	case Number:
		return "n:" + k.Inspect(), nil
	case Str:
		return "s:" + string(k.Runes), nil
	default:
		return "", ErrTypeMismatch
	}
}

// Map is an insertion-ordered dictionary keyed by Number or String. UID
// tags this Map's identity for the scheduler's write-set tracking (spec.md
// §4.6).
type Map struct {
	keys   []Value
	lookup map[string]int // rendered key -> index into keys/values
	values []Value
	UID    uuid.UUID
}

func NewMap() *Map {
	return &Map{lookup: make(map[string]int), UID: newID()}
}

func (*Map) Kind() Kind { return KindMap }

func (m *Map) Inspect() string {
	out := "{"
	for i, k := range m.keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %s", k.Inspect(), m.values[i].Inspect())
	}
	return out + "}"
}

func (m *Map) ToBoolean() Boolean {
	if len(m.keys) == 0 {
		return False()
	}
	return True()
}

func (m *Map) ToNumber() (Number, error) { return Number{}, ErrConversionImpossible }

func (m *Map) ToString() Str { return Str{Runes: []rune(m.Inspect())} }

func (m *Map) IndexGet(key Value) (Value, error) {
	rk, err := mapKey(key)
	if err != nil {
		return nil, err
	}
	i, ok := m.lookup[rk]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return m.values[i], nil
}

func (m *Map) IndexSet(key Value, val Value) error {
	rk, err := mapKey(key)
	if err != nil {
		return err
	}
	if i, ok := m.lookup[rk]; ok {
		m.values[i] = val
		return nil
	}
	m.lookup[rk] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, val)
	return nil
}

// Delete removes a key, spec.md's `delete` statement acting on a Map entry.
func (m *Map) Delete(key Value) error {
	rk, err := mapKey(key)
	if err != nil {
		return err
	}
	i, ok := m.lookup[rk]
	if !ok {
		return ErrKeyNotFound
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	delete(m.lookup, rk)
	for k, pos := range m.lookup {
		if pos > i {
			m.lookup[k] = pos - 1
		}
	}
	return nil
}

// Keys and Values expose insertion order for iteration builtins.
func (m *Map) Keys() []Value   { return m.keys }
func (m *Map) Values() []Value { return m.values }

func (m *Map) NamespaceLookup(member string) (Member, error) {
	switch member {
	case "length":
		return Member{Value: Number{V: float64(len(m.keys))}}, nil
	}
	return Member{}, ErrNoSuchMember
}
