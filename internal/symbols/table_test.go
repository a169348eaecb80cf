package symbols

import (
	"errors"
	"testing"

	"quill/internal/ast"
	"quill/internal/source"
	"quill/internal/types"
)

func newTestTable() *Table {
	return NewTable(source.NewInterner(), types.NewInterner())
}

func TestRegisterFuncAndLookup(t *testing.T) {
	tbl := newTestTable()
	sig, err := tbl.RegisterFunc(&ast.FuncDecl{
		Name: "flip",
		Params: []ast.ParamDecl{
			{Name: "q", Type: ast.NamedType("qubit"), Owned: true},
		},
		Result: ast.NamedType("bool"),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sig.IsGeneric() {
		t.Fatalf("flip should not be generic")
	}

	got, err := tbl.Lookup("flip")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != sig {
		t.Fatalf("lookup returned a different signature")
	}
	if len(got.Params) != 1 {
		t.Fatalf("want 1 param, got %d", len(got.Params))
	}
	if got.Params[0].Type != tbl.Types().Builtins().Qubit {
		t.Fatalf("param type is not qubit")
	}
	if !got.Params[0].Owned {
		t.Fatalf("param should be owned")
	}
	if got.Result != tbl.Types().Builtins().Bool {
		t.Fatalf("result is not bool")
	}
}

func TestNilResultIsUnit(t *testing.T) {
	tbl := newTestTable()
	sig, err := tbl.RegisterFunc(&ast.FuncDecl{Name: "noop"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sig.Result != tbl.Types().Builtins().Unit {
		t.Fatalf("missing result should resolve to unit")
	}
}

func TestDuplicateDefinition(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterFunc(&ast.FuncDecl{Name: "f"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := tbl.RegisterFunc(&ast.FuncDecl{Name: "f"})
	if !errors.Is(err, ErrDuplicateDefinition) {
		t.Fatalf("want ErrDuplicateDefinition, got %v", err)
	}
}

func TestLookupUnknown(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.Lookup("missing"); !errors.Is(err, ErrUnknownName) {
		t.Fatalf("want ErrUnknownName, got %v", err)
	}
	if _, err := tbl.LookupStruct("Missing"); !errors.Is(err, ErrUnknownName) {
		t.Fatalf("want ErrUnknownName for struct, got %v", err)
	}
}

func TestFrozenTableRejectsRegistration(t *testing.T) {
	tbl := newTestTable()
	tbl.Freeze()
	if _, err := tbl.RegisterFunc(&ast.FuncDecl{Name: "late"}); !errors.Is(err, ErrFrozen) {
		t.Fatalf("want ErrFrozen, got %v", err)
	}
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{Name: "Late"}); !errors.Is(err, ErrFrozen) {
		t.Fatalf("want ErrFrozen for struct, got %v", err)
	}
}

func TestMethodRegistration(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{
		Name: "Counter",
		Fields: []ast.FieldDecl{
			{Name: "count", Type: ast.NamedType("int")},
		},
	}); err != nil {
		t.Fatalf("register struct: %v", err)
	}

	sig, err := tbl.RegisterFunc(&ast.FuncDecl{
		Name:      "bump",
		Receiver:  "Counter",
		SelfOwned: true,
		Result:    ast.NamedType("Counter"),
	})
	if err != nil {
		t.Fatalf("register method: %v", err)
	}

	got, err := tbl.Lookup("Counter.bump")
	if err != nil {
		t.Fatalf("lookup method: %v", err)
	}
	if got != sig {
		t.Fatalf("lookup returned a different signature")
	}
	if len(got.Params) != 1 || tbl.Strings().MustLookup(got.Params[0].Name) != "self" {
		t.Fatalf("method should synthesize a self parameter")
	}
	if !got.Params[0].Owned {
		t.Fatalf("self should be owned when SelfOwned is set")
	}

	entry, err := tbl.LookupStruct("Counter")
	if err != nil {
		t.Fatalf("lookup struct: %v", err)
	}
	if got.Params[0].Type != entry.Generic {
		t.Fatalf("self type should be the struct's generic instance")
	}
}

func TestMethodOnGenericReceiverMergesParams(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{
		Name:       "Register",
		TypeParams: []string{"T"},
		NatParams:  []string{"n"},
		Fields: []ast.FieldDecl{
			{Name: "data", Type: ast.ArrayType(ast.NamedType("T"), ast.NatVar("n"))},
		},
	}); err != nil {
		t.Fatalf("register struct: %v", err)
	}

	sig, err := tbl.RegisterFunc(&ast.FuncDecl{
		Name:     "size",
		Receiver: "Register",
		Result:   ast.NamedType("int"),
	})
	if err != nil {
		t.Fatalf("register method: %v", err)
	}
	if len(sig.TypeParams) != 1 || len(sig.NatParams) != 1 {
		t.Fatalf("receiver generics should be in scope: %d type, %d nat",
			len(sig.TypeParams), len(sig.NatParams))
	}
	if !sig.IsGeneric() {
		t.Fatalf("method over a generic receiver must be generic")
	}
	if sig.Params[0].Owned {
		t.Fatalf("self should be borrowed by default")
	}
}

func TestRegistrationOrderIsPreserved(t *testing.T) {
	tbl := newTestTable()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		if _, err := tbl.RegisterFunc(&ast.FuncDecl{Name: n}); err != nil {
			t.Fatalf("register %s: %v", n, err)
		}
	}
	funcs := tbl.Funcs()
	if len(funcs) != len(names) {
		t.Fatalf("want %d funcs, got %d", len(names), len(funcs))
	}
	for i, n := range names {
		if got := tbl.Strings().MustLookup(funcs[i].Name); got != n {
			t.Fatalf("position %d: want %s, got %s", i, n, got)
		}
	}
}
