package value

import (
	"math"
	"strconv"
	"strings"
)

// IntegerEpsilon is the threshold spec.md §3 uses to decide whether a
// Number is "treated as an integer": min(x mod 1, 1 - x mod 1) < epsilon.
const IntegerEpsilon = 1e-8

// Number is indexable (digit access) and mutable in place.
type Number struct {
	V float64
}

func (Number) Kind() Kind { return KindNumber }

func (n Number) Inspect() string {
	if IsIntegral(n.V) {
		return strconv.FormatInt(int64(math.Round(n.V)), 10)
	}
	return strconv.FormatFloat(n.V, 'g', -1, 64)
}

// IsIntegral implements the spec.md §3 "treated as integer" test.
func IsIntegral(x float64) bool {
	frac := math.Mod(x, 1)
	if frac < 0 {
		frac += 1
	}
	return math.Min(frac, 1-frac) < IntegerEpsilon
}

// digits returns the unsigned decimal digit string of the integral part of
// |n.V|, with no sign and no dot, per spec.md §4.1 "Number index_get".
func (n Number) digits() string {
	abs := math.Abs(n.V)
	return strconv.FormatInt(int64(math.Round(abs)), 10)
}

// IndexGet returns the single decimal digit at the given (1-based-from-
// minus-one) position, spec.md §3/§8: digit-indexing on 123 at -1,0,1
// yields 1,2,3.
func (n Number) IndexGet(key Value) (Value, error) {
	kn, ok := key.(Number)
	if !ok || !IsIntegral(kn.V) {
		return nil, ErrTypeMismatch
	}
	idx := digitPosition(kn.V)
	ds := n.digits()
	if idx < 0 || idx >= len(ds) {
		return nil, ErrIndexOutOfBounds
	}
	d := ds[idx] - '0'
	return Number{V: float64(d)}, nil
}

// IndexSet replaces the digit at the given position; val must be a single
// decimal digit (0-9) integer (spec.md §4.1).
func (n *Number) IndexSet(key Value, val Value) error {
	kn, ok := key.(Number)
	if !ok || !IsIntegral(kn.V) {
		return ErrTypeMismatch
	}
	vn, ok := val.(Number)
	if !ok || !IsIntegral(vn.V) || vn.V < 0 || vn.V > 9 {
		return ErrTypeMismatch
	}
	idx := digitPosition(kn.V)
	ds := n.digits()
	if idx < 0 || idx >= len(ds) {
		return ErrIndexOutOfBounds
	}
	b := []byte(ds)
	b[idx] = byte('0' + int(math.Round(vn.V)))
	neg := n.V < 0
	parsed, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return ErrTypeMismatch
	}
	if neg {
		n.V = -float64(parsed)
	} else {
		n.V = float64(parsed)
	}
	return nil
}

// digitPosition maps the user's -1/0/1/2/... digit index onto a position in
// the unsigned digit string, matching List's "-1 is first element" scheme.
func digitPosition(userIndex float64) int {
	return int(math.Round(userIndex)) + 1
}

// NamespaceLookup: Number has no member namespace in the value model.
func (n Number) NamespaceLookup(member string) (Member, error) {
	return Member{}, ErrNoSuchMember
}

// --- conversions ---------------------------------------------------------

// ToBoolean implements spec.md §4.1's conversion matrix for Number: `0` is
// false; a number whose magnitude rounds to (but isn't exactly) zero is
// maybe; anything else is true.
func (n Number) ToBoolean() Boolean {
	if n.V == 0 {
		return Boolean{V: boolPtr(false)}
	}
	if math.Abs(n.V) <= FloatCompareEpsilon {
		return Boolean{V: nil}
	}
	return Boolean{V: boolPtr(true)}
}

func (n Number) ToNumber() (Number, error) { return n, nil }

func (n Number) ToString() Str { return Str{Runes: []rune(n.Inspect())} }

// FloatCompareEpsilon matches gulfofmexico/constants.py's
// FLOAT_COMPARISON_EPSILON (1e-10), used for the "rounds to zero" boolean
// coercion and for numeric equality comparisons.
const FloatCompareEpsilon = 1e-10

func boolPtr(b bool) *bool { return &b }

// ParseNumberLiteral is a small helper used by the parser/builtins for
// converting a lexed numeric literal's text form.
func ParseNumberLiteral(s string) (float64, error) {
	s = strings.TrimSpace(s)
	return strconv.ParseFloat(s, 64)
}
