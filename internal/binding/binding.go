// Package binding implements the B component (spec.md §4.2): Name and
// Variable entities, confidence-ordered VariableLifetime lists, and the
// expiration sweep. Grounded on funxy's internal/evaluator/environment.go
// usage pattern (a binding holds a mutable, pointer-shared record so two
// namespaces referencing the same identifier see the same mutations) with
// the lifetime-list machinery the spec adds on top, since no Environment
// type survived in the retrieved teacher pack (see DESIGN.md).
package binding

import (
	"errors"
	"time"

	"github.com/mcgru/gulfmex/internal/value"
)

var (
	ErrUndefinedVariable  = errors.New("variable is undefined")
	ErrImmutableBinding   = errors.New("value is not editable in place")
	ErrRedeclarationBlocked = errors.New("redeclaration blocked: head lifetime cannot be reset")
)

// VariableLifetime is one entry of a Variable's ordered lifetime list
// (spec.md §4.2).
type VariableLifetime struct {
	Value            value.Value
	LinesLeft        int
	Confidence       int
	CanBeReset       bool
	CanEditValue     bool
	CreatedAt        time.Time
	IsTemporal       bool
	TemporalDuration time.Duration
}

// Expired reports whether this lifetime should be swept by clear_outdated:
// either its line budget is exhausted, or it is temporal and its wall-clock
// duration has elapsed.
func (l VariableLifetime) Expired(now time.Time) bool {
	if l.LinesLeft <= 0 {
		return true
	}
	if l.IsTemporal && now.Sub(l.CreatedAt) >= l.TemporalDuration {
		return true
	}
	return false
}

// Variable is a name carrying zero or more live, confidence-ordered
// lifetimes plus a history of values that have been supplanted as head.
type Variable struct {
	Name      string
	Lifetimes []VariableLifetime
	History   []value.Value
}

// AddLifetime inserts l into v.Lifetimes at the first index i where
// i == len(Lifetimes) or Lifetimes[i].Confidence >= l.Confidence
// (spec.md §4.2's "insert-before-first-≥" rule: lower confidence is
// observed first among equals, and a newer entry at an equal confidence
// displaces the old one to become head). If the new entry lands at index
// 0 and the list was non-empty, the previous head's value is pushed onto
// History before insertion.
func (v *Variable) AddLifetime(l VariableLifetime) {
	insertAt := len(v.Lifetimes)
	for i, existing := range v.Lifetimes {
		if existing.Confidence >= l.Confidence {
			insertAt = i
			break
		}
	}
	if insertAt == 0 && len(v.Lifetimes) > 0 {
		v.History = append(v.History, v.Lifetimes[0].Value)
	}
	v.Lifetimes = append(v.Lifetimes, VariableLifetime{})
	copy(v.Lifetimes[insertAt+1:], v.Lifetimes[insertAt:])
	v.Lifetimes[insertAt] = l
}

// ClearOutdated removes every expired lifetime (spec.md §4.2). Returns true
// if the variable is now empty (the caller must then remove it from its
// namespace).
func (v *Variable) ClearOutdated(now time.Time) (emptied bool) {
	kept := v.Lifetimes[:0]
	for _, l := range v.Lifetimes {
		if !l.Expired(now) {
			kept = append(kept, l)
		}
	}
	v.Lifetimes = kept
	return len(v.Lifetimes) == 0
}

// DecrementLines decrements lines_left on every live lifetime by one,
// called once per executed statement per spec.md §4.4.
func (v *Variable) DecrementLines() {
	for i := range v.Lifetimes {
		if v.Lifetimes[i].LinesLeft > 0 {
			v.Lifetimes[i].LinesLeft--
		}
	}
}

// Read returns the head (observed) value, or ErrUndefinedVariable if the
// variable has no live lifetimes.
func (v *Variable) Read() (value.Value, error) {
	if len(v.Lifetimes) == 0 {
		return nil, ErrUndefinedVariable
	}
	return v.Lifetimes[0].Value, nil
}

// Head returns the head lifetime itself, for permission checks
// (can_edit_value / can_be_reset) at the assignment/declaration call site.
func (v *Variable) Head() (VariableLifetime, bool) {
	if len(v.Lifetimes) == 0 {
		return VariableLifetime{}, false
	}
	return v.Lifetimes[0], true
}

// SetHeadValue replaces the head lifetime's Value in place, leaving its
// confidence, line budget and flags untouched. Used for index_set mutation
// (spec.md §4.1, e.g. a Number's digit or a List element changing), which
// edits the current binding rather than competing for head with a new
// confidence-ranked lifetime the way a plain assignment does.
func (v *Variable) SetHeadValue(val value.Value) {
	if len(v.Lifetimes) == 0 {
		return
	}
	v.Lifetimes[0].Value = val
}

// Name is an immutable binding (spec.md §4.2: "an identifier with either a
// Name (immutable) or a Variable"). Used for function/class definitions and
// import aliases, which never carry a lifetime list.
type Name struct {
	Identifier string
	Value      value.Value
}
