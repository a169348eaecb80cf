package types

import (
	"testing"

	"quill/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID || b.Qubit == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	q, _ := in.Lookup(b.Qubit)
	if q.Kind != KindQubit {
		t.Fatalf("expected qubit kind, got %v", q.Kind)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().Qubit
	arr1 := in.Intern(MakeArray(elem, NatLit(4)))
	arr2 := in.Intern(MakeArray(elem, NatLit(4)))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
}

func TestArrayLengthAffectsIdentity(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().Int
	a := in.Intern(MakeArray(elem, NatLit(2)))
	b := in.Intern(MakeArray(elem, NatLit(3)))
	if a == b {
		t.Fatalf("arrays of different lengths must differ")
	}
	v := in.RegisterNatVar(source.NoStringID, 1, 0)
	c := in.Intern(MakeArray(elem, NatRef(v)))
	if c == a || c == b {
		t.Fatalf("open-length array must differ from closed ones")
	}
}

func TestTupleRegistrationDeduplicates(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	t1 := in.RegisterTuple([]TypeID{b.Int, b.Bool})
	t2 := in.RegisterTuple([]TypeID{b.Int, b.Bool})
	t3 := in.RegisterTuple([]TypeID{b.Bool, b.Int})
	if t1 != t2 {
		t.Fatalf("equal tuples should share a TypeID")
	}
	if t1 == t3 {
		t.Fatalf("element order must affect tuple identity")
	}
}

func TestStructInstanceLookup(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	name := strs.Intern("Register")
	b := in.Builtins()
	fields := []Field{{Name: strs.Intern("bits"), Type: in.Intern(MakeArray(b.Qubit, NatLit(2)))}}
	id := in.RegisterStruct(name, nil, []Nat{NatLit(2)}, fields)
	found, ok := in.FindStructInstance(name, nil, []Nat{NatLit(2)})
	if !ok || found != id {
		t.Fatalf("instance lookup failed: %v %v", found, ok)
	}
	if _, ok := in.FindStructInstance(name, nil, []Nat{NatLit(3)}); ok {
		t.Fatalf("different nat args must be a distinct instance")
	}
}

func TestConcrete(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	b := in.Builtins()
	if !in.Concrete(b.Int) {
		t.Fatalf("int must be concrete")
	}
	tv := in.RegisterTypeVar(strs.Intern("T"), 1, 0)
	if in.Concrete(tv) {
		t.Fatalf("type variable must not be concrete")
	}
	nv := in.RegisterNatVar(strs.Intern("n"), 1, 0)
	open := in.Intern(MakeArray(b.Qubit, NatRef(nv)))
	if in.Concrete(open) {
		t.Fatalf("array with unresolved length must not be concrete")
	}
	closed := in.Intern(MakeArray(b.Qubit, NatLit(8)))
	if !in.Concrete(closed) {
		t.Fatalf("closed array must be concrete")
	}
	if !in.ContainsTypeVar(in.Intern(MakeOption(tv))) {
		t.Fatalf("option over a type var must contain a type var")
	}
}

func TestFormat(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	b := in.Builtins()
	arr := in.Intern(MakeArray(b.Qubit, NatLit(4)))
	if got := Format(in, strs, arr); got != "array[qubit; 4]" {
		t.Fatalf("format = %q", got)
	}
	tup := in.RegisterTuple([]TypeID{b.Int, b.Bool})
	if got := Format(in, strs, tup); got != "(int, bool)" {
		t.Fatalf("format = %q", got)
	}
}
