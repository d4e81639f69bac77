package value

import "testing"

func TestBooleanKleeneAnd(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Boolean
		wantTrue bool
		wantMayb bool
	}{
		{"true_and_true", True(), True(), true, false},
		{"true_and_false", True(), False(), false, false},
		{"false_and_maybe", False(), MaybeV(), false, false},
		{"true_and_maybe", True(), MaybeV(), false, true},
		{"maybe_and_maybe", MaybeV(), MaybeV(), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.And(tt.b)
			if got.IsMaybe() != tt.wantMayb {
				t.Fatalf("And(%v, %v).IsMaybe() = %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got.IsMaybe(), tt.wantMayb)
			}
			if !got.IsMaybe() && got.IsTrue() != tt.wantTrue {
				t.Fatalf("And(%v, %v).IsTrue() = %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got.IsTrue(), tt.wantTrue)
			}
		})
	}
}

func TestBooleanKleeneOr(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Boolean
		wantTrue bool
		wantMayb bool
	}{
		{"false_or_false", False(), False(), false, false},
		{"true_or_maybe", True(), MaybeV(), true, false},
		{"false_or_maybe", False(), MaybeV(), false, true},
		{"maybe_or_maybe", MaybeV(), MaybeV(), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Or(tt.b)
			if got.IsMaybe() != tt.wantMayb {
				t.Fatalf("Or(%v, %v).IsMaybe() = %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got.IsMaybe(), tt.wantMayb)
			}
			if !got.IsMaybe() && got.IsTrue() != tt.wantTrue {
				t.Fatalf("Or(%v, %v).IsTrue() = %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got.IsTrue(), tt.wantTrue)
			}
		})
	}
}

func TestBooleanNot(t *testing.T) {
	if !MaybeV().Not().IsMaybe() {
		t.Fatal("not(maybe) should still be maybe")
	}
	if !False().Not().IsTrue() {
		t.Fatal("not(false) should be true")
	}
	if !True().Not().IsFalse() {
		t.Fatal("not(true) should be false")
	}
}

func TestBooleanToNumber(t *testing.T) {
	n, _ := MaybeV().ToNumber()
	if n.V != 0.5 {
		t.Fatalf("maybe.ToNumber() = %v, want 0.5", n.V)
	}
	n, _ = True().ToNumber()
	if n.V != 1 {
		t.Fatalf("true.ToNumber() = %v, want 1", n.V)
	}
}

func TestEqualMaybeNeverEqual(t *testing.T) {
	if Equal(MaybeV(), MaybeV()).IsTrue() {
		t.Fatal("maybe == maybe must not be true under Kleene equality")
	}
}
