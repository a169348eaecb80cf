package types

import (
	"testing"

	"quill/internal/source"
)

func TestLeafClassification(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		id   TypeID
		want OwnershipClass
	}{
		{b.Unit, Copyable},
		{b.Bool, Copyable},
		{b.Int, Copyable},
		{b.Float, Copyable},
		{b.Qubit, Linear},
		{b.Rng, Affine},
	}
	for _, c := range cases {
		if got := in.Classify(c.id); got != c.want {
			t.Fatalf("classify(%v) = %v, want %v", in.MustLookup(c.id).Kind, got, c.want)
		}
	}
}

func TestAggregateClassification(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if got := in.Classify(in.Intern(MakeArray(b.Int, NatLit(3)))); got != Copyable {
		t.Fatalf("array of int = %v", got)
	}
	if got := in.Classify(in.Intern(MakeArray(b.Qubit, NatLit(3)))); got != Linear {
		t.Fatalf("array of qubit = %v", got)
	}
	if got := in.Classify(in.RegisterTuple([]TypeID{b.Int, b.Rng})); got != Affine {
		t.Fatalf("tuple with rng = %v", got)
	}
	if got := in.Classify(in.Intern(MakeOption(b.Qubit))); got != Linear {
		t.Fatalf("option of qubit = %v", got)
	}
}

// Struct classification is derived from field types, never declared.
func TestStructClassificationDerivation(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	b := in.Builtins()

	cases := []struct {
		name   string
		fields []Field
		want   OwnershipClass
	}{
		{"AllCopyable", []Field{
			{Name: strs.Intern("a"), Type: b.Int},
			{Name: strs.Intern("b"), Type: b.Bool},
			{Name: strs.Intern("c"), Type: b.Float},
		}, Copyable},
		{"OneAffine", []Field{
			{Name: strs.Intern("a"), Type: b.Int},
			{Name: strs.Intern("r"), Type: b.Rng},
		}, Affine},
		{"OneLinear", []Field{
			{Name: strs.Intern("a"), Type: b.Int},
			{Name: strs.Intern("q"), Type: b.Qubit},
		}, Linear},
		{"LinearBeatsAffine", []Field{
			{Name: strs.Intern("r"), Type: b.Rng},
			{Name: strs.Intern("q"), Type: b.Qubit},
		}, Linear},
		{"NestedLinearArray", []Field{
			{Name: strs.Intern("qs"), Type: in.Intern(MakeArray(b.Qubit, NatLit(2)))},
		}, Linear},
		{"Empty", nil, Copyable},
	}
	for _, c := range cases {
		id := in.RegisterStruct(strs.Intern(c.name), nil, nil, c.fields)
		if got := in.Classify(id); got != c.want {
			t.Fatalf("%s: classify = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestClassificationIsMemoizedAndStable(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	id := in.Intern(MakeArray(b.Qubit, NatLit(5)))
	first := in.Classify(id)
	second := in.Classify(id)
	if first != second || first != Linear {
		t.Fatalf("classification unstable: %v then %v", first, second)
	}
}

func TestTypeVarClassifiesLinear(t *testing.T) {
	in := NewInterner()
	strs := source.NewInterner()
	tv := in.RegisterTypeVar(strs.Intern("T"), 7, 0)
	if got := in.Classify(tv); got != Linear {
		t.Fatalf("unbound type variable must be treated as linear, got %v", got)
	}
}
