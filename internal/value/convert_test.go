package value

import "testing"

func TestEqualComparesIdentityBearingValuesByUID(t *testing.T) {
	a := NewList([]Value{Number{V: 1}})
	b := NewList([]Value{Number{V: 1}})

	if Equal(a, b).IsTrue() {
		t.Fatal("two distinct Lists with equal contents must not compare equal (identity, not deep equality)")
	}
	if !Equal(a, a).IsTrue() {
		t.Fatal("a List must compare equal to itself")
	}

	// Mutating a does not change its identity.
	if err := a.IndexSet(Number{V: 0}, Number{V: 99}); err != nil {
		t.Fatalf("IndexSet error: %v", err)
	}
	if !Equal(a, a).IsTrue() {
		t.Fatal("a mutated List must still compare equal to itself by identity")
	}
}

func TestEqualDistinguishesMapsAndFunctionsByIdentity(t *testing.T) {
	m1 := NewMap()
	m2 := NewMap()
	if Equal(m1, m2).IsTrue() {
		t.Fatal("two distinct empty Maps must not compare equal")
	}
	if !Equal(m1, m1).IsTrue() {
		t.Fatal("a Map must compare equal to itself")
	}

	f1 := &Function{Name: "f", UID: NewUID()}
	f2 := &Function{Name: "f", UID: NewUID()}
	if Equal(f1, f2).IsTrue() {
		t.Fatal("two distinct Functions with the same name must not compare equal")
	}
	if !Equal(f1, f1).IsTrue() {
		t.Fatal("a Function must compare equal to itself")
	}
}
