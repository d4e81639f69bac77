package value

import (
	"math"
	"strings"
)

// strIndexEntry is one entry of a String's indexer map: the real buffer
// position `user_index` currently resolves to, plus how many "trailing
// extras" (additional runes inserted at that slot by a fractional insert
// or a multi-char replace) follow it before the next indexed slot.
type strIndexEntry struct {
	RealPos int
	Extras  int
}

// Str holds a mutable UTF-8 buffer plus the indexer map described in
// spec.md §3: `user_index => (real_position, trailing_extras)`, enabling
// fractional inserts and multi-char replacements at a single user-visible
// slot.
type Str struct {
	Runes []rune
	Index map[float64]strIndexEntry
}

// NewStr builds a Str from plain text with the default one-rune-per-slot
// indexer (`-1, 0, 1, ...` exactly like List's default indexing).
func NewStr(s string) Str {
	runes := []rune(s)
	idx := make(map[float64]strIndexEntry, len(runes))
	for i := range runes {
		idx[float64(i-1)] = strIndexEntry{RealPos: i, Extras: 0}
	}
	return Str{Runes: runes, Index: idx}
}

func (Str) Kind() Kind { return KindString }

func (s Str) Inspect() string { return string(s.Runes) }

func (s Str) ToBoolean() Boolean {
	if len(s.Runes) == 0 {
		return False()
	}
	if strings.TrimSpace(string(s.Runes)) == "" {
		return MaybeV()
	}
	return True()
}

func (s Str) ToNumber() (Number, error) {
	f, err := ParseNumberLiteral(string(s.Runes))
	if err != nil {
		return Number{}, ErrConversionImpossible
	}
	return Number{V: f}, nil
}

func (s Str) ToString() Str { return s }

// IndexGet returns the single-rune (plus any trailing extras as part of the
// same logical slot) substring at a previously-assigned user index.
func (s Str) IndexGet(key Value) (Value, error) {
	kn, ok := key.(Number)
	if !ok {
		return nil, ErrTypeMismatch
	}
	entry, ok := s.Index[kn.V]
	if !ok {
		return nil, ErrUnassignedIndex
	}
	end := entry.RealPos + 1 + entry.Extras
	if entry.RealPos < 0 || end > len(s.Runes) {
		return nil, ErrIndexOutOfBounds
	}
	return NewStr(string(s.Runes[entry.RealPos:end])), nil
}

// IndexSet implements spec.md §4.1's index_set contract for String: an
// existing user index is replaced in place (shifting the indexer by the
// delta in extras); a fractional index splices in new content at
// floor(max(key+2, 0)) and shifts every user index strictly greater than
// key by the inserted length.
func (s *Str) IndexSet(key Value, val Value) error {
	kn, ok := key.(Number)
	if !ok {
		return ErrTypeMismatch
	}
	vs := ToString(val)
	insertedRunes := vs.Runes

	if entry, exists := s.Index[kn.V]; exists {
		oldEnd := entry.RealPos + 1 + entry.Extras
		if entry.RealPos < 0 || oldEnd > len(s.Runes) {
			return ErrIndexOutOfBounds
		}
		if len(insertedRunes) == 0 {
			return ErrTypeMismatch
		}
		newExtras := len(insertedRunes) - 1
		delta := newExtras - entry.Extras
		newRunes := make([]rune, 0, len(s.Runes)+delta)
		newRunes = append(newRunes, s.Runes[:entry.RealPos]...)
		newRunes = append(newRunes, insertedRunes...)
		newRunes = append(newRunes, s.Runes[oldEnd:]...)
		s.Runes = newRunes
		s.Index[kn.V] = strIndexEntry{RealPos: entry.RealPos, Extras: newExtras}
		if delta != 0 {
			for k, e := range s.Index {
				if k == kn.V {
					continue
				}
				if e.RealPos > entry.RealPos {
					e.RealPos += delta
					s.Index[k] = e
				}
			}
		}
		return nil
	}

	// Fractional insert: compute the integer insertion point per spec.md
	// §4.1 ("as in the reference"): floor(max(key + 2, 0)).
	insertAt := int(math.Floor(math.Max(kn.V+2, 0)))
	if insertAt > len(s.Runes) {
		insertAt = len(s.Runes)
	}
	newRunes := make([]rune, 0, len(s.Runes)+len(insertedRunes))
	newRunes = append(newRunes, s.Runes[:insertAt]...)
	newRunes = append(newRunes, insertedRunes...)
	newRunes = append(newRunes, s.Runes[insertAt:]...)
	s.Runes = newRunes

	shiftLen := len(insertedRunes)
	for k, e := range s.Index {
		if k > kn.V && e.RealPos >= insertAt {
			e.RealPos += shiftLen
			s.Index[k] = e
		}
	}
	extras := 0
	if shiftLen > 1 {
		extras = shiftLen - 1
	}
	s.Index[kn.V] = strIndexEntry{RealPos: insertAt, Extras: extras}
	return nil
}

// NamespaceLookup exposes push/pop/length, spec.md §3/§4.1.
func (s *Str) NamespaceLookup(member string) (Member, error) {
	switch member {
	case "length":
		return Member{Value: Number{V: float64(len(s.Runes))}}, nil
	case "push":
		return Member{Value: BuiltinFunction{
			Name: "push", Arity: 1, MutatesReceiver: true,
			Fn: func(ctx *Context, args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, ErrTypeMismatch
				}
				appended := ToString(args[0])
				nextKey := 0.0
				for k := range s.Index {
					if k >= nextKey {
						nextKey = k + 1
					}
				}
				s.Runes = append(s.Runes, appended.Runes...)
				s.Index[nextKey] = strIndexEntry{RealPos: len(s.Runes) - len(appended.Runes), Extras: len(appended.Runes) - 1}
				return Undefined{}, nil
			},
		}, MutatesReceiver: true}, nil
	case "pop":
		return Member{Value: BuiltinFunction{
			Name: "pop", Arity: 0, MutatesReceiver: true,
			Fn: func(ctx *Context, args []Value) (Value, error) {
				if len(s.Runes) == 0 {
					return nil, ErrIndexOutOfBounds
				}
				last := s.Runes[len(s.Runes)-1]
				s.Runes = s.Runes[:len(s.Runes)-1]
				return NewStr(string(last)), nil
			},
		}, MutatesReceiver: true}, nil
	}
	return Member{}, ErrNoSuchMember
}
