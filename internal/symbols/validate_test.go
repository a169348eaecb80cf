package symbols

import (
	"strings"
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
)

func TestValidateNames(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{Name: "bell_pair"}); err != nil {
		t.Fatalf("register struct: %v", err)
	}
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{Name: "GoodName"}); err != nil {
		t.Fatalf("register struct: %v", err)
	}
	if _, err := tbl.RegisterFunc(&ast.FuncDecl{Name: "MakeBell"}); err != nil {
		t.Fatalf("register func: %v", err)
	}
	if _, err := tbl.RegisterFunc(&ast.FuncDecl{Name: "make_bell"}); err != nil {
		t.Fatalf("register func: %v", err)
	}

	bag := diag.NewBag(16)
	ValidateNames(tbl, diag.BagReporter{Bag: bag})

	if bag.Len() != 2 {
		t.Fatalf("want 2 warnings, got %d", bag.Len())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.SemaNameStyle {
			t.Fatalf("want SemaNameStyle, got %s", d.Code)
		}
		if d.Severity != diag.SevWarning {
			t.Fatalf("name style should warn, not error")
		}
	}
	if !strings.Contains(bag.Items()[0].Message, "BellPair") {
		t.Fatalf("struct warning should suggest BellPair: %q", bag.Items()[0].Message)
	}
}

func TestValidateNamesSkipsBuiltins(t *testing.T) {
	tbl := newTestTable()
	if err := LoadPrelude(tbl); err != nil {
		t.Fatalf("load prelude: %v", err)
	}
	bag := diag.NewBag(16)
	ValidateNames(tbl, diag.BagReporter{Bag: bag})
	if bag.Len() != 0 {
		t.Fatalf("builtins should not warn, got %d diagnostics", bag.Len())
	}
}

func TestValidateNamesMethods(t *testing.T) {
	tbl := newTestTable()
	if _, err := tbl.RegisterStructDecl(&ast.StructDecl{Name: "Counter"}); err != nil {
		t.Fatalf("register struct: %v", err)
	}
	if _, err := tbl.RegisterFunc(&ast.FuncDecl{Name: "Bump", Receiver: "Counter"}); err != nil {
		t.Fatalf("register method: %v", err)
	}
	bag := diag.NewBag(16)
	ValidateNames(tbl, diag.BagReporter{Bag: bag})
	if bag.Len() != 1 {
		t.Fatalf("method name should warn once, got %d", bag.Len())
	}
}
