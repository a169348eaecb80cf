package symbols

import (
	"errors"
	"testing"

	"quill/internal/ast"
	"quill/internal/types"
)

func TestResolveBuiltins(t *testing.T) {
	tbl := newTestTable()
	res := NewResolver(tbl.Types(), tbl.Strings(), tbl)
	b := tbl.Types().Builtins()

	cases := []struct {
		name string
		want types.TypeID
	}{
		{"unit", b.Unit},
		{"bool", b.Bool},
		{"int", b.Int},
		{"float", b.Float},
		{"qubit", b.Qubit},
		{"rng", b.Rng},
	}
	for _, c := range cases {
		got, err := res.ResolveType(ast.NamedType(c.name))
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: want %d, got %d", c.name, c.want, got)
		}
	}
}

func TestResolveArrayAndOption(t *testing.T) {
	tbl := newTestTable()
	res := NewResolver(tbl.Types(), tbl.Strings(), tbl)
	b := tbl.Types().Builtins()

	arr, err := res.ResolveType(ast.ArrayType(ast.NamedType("qubit"), ast.NatLit(4)))
	if err != nil {
		t.Fatalf("array: %v", err)
	}
	tt := tbl.Types().MustLookup(arr)
	if tt.Kind != types.KindArray || tt.Elem != b.Qubit {
		t.Fatalf("bad array descriptor: %+v", tt)
	}
	if !tt.Nat.Known || tt.Nat.Value != 4 {
		t.Fatalf("bad array length: %v", tt.Nat)
	}

	opt, err := res.ResolveType(ast.OptionType(ast.NamedType("bool")))
	if err != nil {
		t.Fatalf("option: %v", err)
	}
	ot := tbl.Types().MustLookup(opt)
	if ot.Kind != types.KindOption || ot.Elem != b.Bool {
		t.Fatalf("bad option descriptor: %+v", ot)
	}

	again, err := res.ResolveType(ast.ArrayType(ast.NamedType("qubit"), ast.NatLit(4)))
	if err != nil {
		t.Fatalf("array again: %v", err)
	}
	if again != arr {
		t.Fatalf("identical array types must intern to the same ID")
	}
}

func TestEmptyTupleIsUnit(t *testing.T) {
	tbl := newTestTable()
	res := NewResolver(tbl.Types(), tbl.Strings(), tbl)
	got, err := res.ResolveType(&ast.TypeExpr{Kind: ast.TypeTuple})
	if err != nil {
		t.Fatalf("tuple: %v", err)
	}
	if got != tbl.Types().Builtins().Unit {
		t.Fatalf("empty tuple should be unit")
	}
}

func TestStructInstantiationDedup(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{
		Name:       "Pair",
		TypeParams: []string{"T"},
		Fields: []ast.FieldDecl{
			{Name: "first", Type: ast.NamedType("T")},
			{Name: "second", Type: ast.NamedType("T")},
		},
	}); err != nil {
		t.Fatalf("register struct: %v", err)
	}

	res := NewResolver(tbl.Types(), tbl.Strings(), tbl)
	a, err := res.ResolveType(ast.NamedType("Pair", ast.NamedType("int")))
	if err != nil {
		t.Fatalf("Pair[int]: %v", err)
	}
	b, err := res.ResolveType(ast.NamedType("Pair", ast.NamedType("int")))
	if err != nil {
		t.Fatalf("Pair[int] again: %v", err)
	}
	if a != b {
		t.Fatalf("same instantiation must dedup to one TypeID")
	}

	info, ok := tbl.Types().StructInfo(a)
	if !ok {
		t.Fatalf("no struct info for Pair[int]")
	}
	for _, f := range info.Fields {
		if f.Type != tbl.Types().Builtins().Int {
			t.Fatalf("field types should have int substituted in")
		}
	}

	c, err := res.ResolveType(ast.NamedType("Pair", ast.NamedType("bool")))
	if err != nil {
		t.Fatalf("Pair[bool]: %v", err)
	}
	if c == a {
		t.Fatalf("distinct instantiations must get distinct TypeIDs")
	}
}

func TestStructArityMismatch(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{
		Name:       "Pair",
		TypeParams: []string{"T"},
		Fields: []ast.FieldDecl{
			{Name: "first", Type: ast.NamedType("T")},
		},
	}); err != nil {
		t.Fatalf("register struct: %v", err)
	}
	res := NewResolver(tbl.Types(), tbl.Strings(), tbl)
	_, err := res.ResolveType(ast.NamedType("Pair", ast.NamedType("int"), ast.NamedType("bool")))
	if !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("want ErrArityMismatch, got %v", err)
	}
	if _, err := res.ResolveType(ast.NamedType("Pair")); !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("want ErrArityMismatch for missing args, got %v", err)
	}
}

func TestRecursiveStructRejected(t *testing.T) {
	tbl := newTestTable()
	_, err := tbl.RegisterStructDecl(&ast.StructDecl{
		Name: "Node",
		Fields: []ast.FieldDecl{
			{Name: "next", Type: ast.NamedType("Node")},
		},
	})
	if !errors.Is(err, ErrRecursiveStruct) {
		t.Fatalf("want ErrRecursiveStruct, got %v", err)
	}
}

func TestRecursiveStructThroughOptionRejected(t *testing.T) {
	tbl := newTestTable()
	_, err := tbl.RegisterStructDecl(&ast.StructDecl{
		Name: "List",
		Fields: []ast.FieldDecl{
			{Name: "head", Type: ast.NamedType("int")},
			{Name: "tail", Type: ast.OptionType(ast.NamedType("List"))},
		},
	})
	if !errors.Is(err, ErrRecursiveStruct) {
		t.Fatalf("want ErrRecursiveStruct, got %v", err)
	}
}

func TestMutualRecursionRejected(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{
		Name: "A",
		Fields: []ast.FieldDecl{
			{Name: "b", Type: ast.NamedType("B")},
		},
	}); !errors.Is(err, ErrUnknownName) {
		// B is not declared yet; forward references are not supported.
		t.Fatalf("want ErrUnknownName for forward reference, got %v", err)
	}
}

func TestTypeVarTakesNoArguments(t *testing.T) {
	tbl := newTestTable()
	res := NewResolver(tbl.Types(), tbl.Strings(), tbl)
	res.TypeVars = map[string]types.TypeID{
		"T": tbl.Types().RegisterTypeVar(tbl.Strings().Intern("T"), 1, 0),
	}
	_, err := res.ResolveType(ast.NamedType("T", ast.NamedType("int")))
	if !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("want ErrArityMismatch, got %v", err)
	}
}

func TestUnknownNatVariable(t *testing.T) {
	tbl := newTestTable()
	res := NewResolver(tbl.Types(), tbl.Strings(), tbl)
	_, err := res.ResolveType(ast.ArrayType(ast.NamedType("int"), ast.NatVar("n")))
	if !errors.Is(err, ErrUnknownName) {
		t.Fatalf("want ErrUnknownName, got %v", err)
	}
}

func TestGenericStructOwnershipFollowsArgument(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields: []ast.FieldDecl{
			{Name: "value", Type: ast.NamedType("T")},
		},
	}); err != nil {
		t.Fatalf("register struct: %v", err)
	}
	res := NewResolver(tbl.Types(), tbl.Strings(), tbl)

	boxQubit, err := res.ResolveType(ast.NamedType("Box", ast.NamedType("qubit")))
	if err != nil {
		t.Fatalf("Box[qubit]: %v", err)
	}
	if c := tbl.Types().Classify(boxQubit); c != types.Linear {
		t.Fatalf("Box[qubit] should be linear, got %s", c)
	}

	boxInt, err := res.ResolveType(ast.NamedType("Box", ast.NamedType("int")))
	if err != nil {
		t.Fatalf("Box[int]: %v", err)
	}
	if c := tbl.Types().Classify(boxInt); c != types.Copyable {
		t.Fatalf("Box[int] should be copyable, got %s", c)
	}
}
