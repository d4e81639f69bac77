// Package value implements the V component (spec.md §4.1): the tagged
// Value union for every runtime value in the Language, plus the three
// uniform dispatchers every variant implements (IndexGet/IndexSet,
// NamespaceLookup, and the to_boolean/to_number/to_string conversion
// matrix). Grounded on funxy's internal/evaluator/object.go (closed
// `Object` interface with one struct per variant, `Type()`/`Inspect()`/
// `Hash()`), adapted to the Language's twelve variants instead of funxy's
// typed-functional object set.
package value

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind names a Value variant.
type Kind string

const (
	KindNumber    Kind = "Number"
	KindString    Kind = "String"
	KindList      Kind = "List"
	KindBoolean   Kind = "Boolean"
	KindUndefined Kind = "Undefined"
	KindBlank     Kind = "BlankSpecial"
	KindMap       Kind = "Map"
	KindFunction  Kind = "Function"
	KindBuiltin   Kind = "BuiltinFunction"
	KindObject    Kind = "Object"
	KindKeyword   Kind = "Keyword"
	KindPromise   Kind = "Promise"
)

// Value is the closed interface every runtime value implements.
type Value interface {
	Kind() Kind
	Inspect() string
}

// Sentinel errors surfaced by the V dispatchers. Callers in internal/executor
// and internal/evaluator wrap these into diagnostics.Error with a source
// token location.
var (
	ErrIndexOutOfBounds     = errors.New("index out of bounds")
	ErrUnassignedIndex      = errors.New("index was never assigned")
	ErrKeyNotFound          = errors.New("key not found")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrConversionImpossible = errors.New("conversion impossible")
	ErrImmutableBinding     = errors.New("value is not editable in place")
	ErrNoSuchMember         = errors.New("no such member")
)

// Indexable is implemented by variants supporting index_get/index_set
// (Number, String, List, Map).
type Indexable interface {
	IndexGet(key Value) (Value, error)
	IndexSet(key Value, val Value) error
}

// Member is what namespace_lookup returns: either an immutable value (a
// bound method, a field) or a mutates-receiver builtin already bound to its
// receiver.
type Member struct {
	Value           Value
	MutatesReceiver bool
}

// Namespaced is implemented by variants supporting namespace_lookup
// (String, List for push/pop/length; Object for its member namespace).
type Namespaced interface {
	NamespaceLookup(member string) (Member, error)
}

func newID() uuid.UUID { return uuid.New() }

// NewUID mints an identity tag for a Function/Promise literal built outside
// this package (internal/evaluator, internal/executor), for the same
// write-set-tracking purpose newID serves List/Map/Object construction
// in-package.
func NewUID() uuid.UUID { return newID() }

// --- Undefined ---------------------------------------------------------

type Undefined struct{}

func (Undefined) Kind() Kind      { return KindUndefined }
func (Undefined) Inspect() string { return "undefined" }

// --- BlankSpecial --------------------------------------------------------

// Blank is the distinguished empty-argument marker value, bound to the
// empty identifier `""` in the root namespace (spec.md §3, §6).
type Blank struct{}

func (Blank) Kind() Kind      { return KindBlank }
func (Blank) Inspect() string { return "" }

// --- Keyword ---------------------------------------------------------

// Keyword is a reserved-word sentinel. internal/builtins binds `previous`
// and `next` to Keyword values in the root namespace, but the lexer reads
// both words as keyword tokens that no parse rule accepts, so a program
// using either fails to parse and never reaches these bindings.
type Keyword struct {
	Name string
}

func (Keyword) Kind() Kind        { return KindKeyword }
func (k Keyword) Inspect() string { return fmt.Sprintf("<keyword %s>", k.Name) }
