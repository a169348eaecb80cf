package symbols

import (
	"errors"
	"testing"

	"quill/internal/ast"
	"quill/internal/types"
)

func TestLoadPrelude(t *testing.T) {
	tbl := newTestTable()
	if err := LoadPrelude(tbl); err != nil {
		t.Fatalf("load prelude: %v", err)
	}
	b := tbl.Types().Builtins()

	measure, err := tbl.Lookup("measure")
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if !measure.Builtin {
		t.Fatalf("measure should be marked builtin")
	}
	if len(measure.Params) != 1 || measure.Params[0].Type != b.Qubit || !measure.Params[0].Owned {
		t.Fatalf("measure should consume one owned qubit")
	}
	if measure.Result != b.Bool {
		t.Fatalf("measure should return bool")
	}

	h, err := tbl.Lookup("h")
	if err != nil {
		t.Fatalf("h: %v", err)
	}
	if h.Params[0].Owned {
		t.Fatalf("gates borrow their target")
	}
}

func TestPreludeGenericSignatures(t *testing.T) {
	tbl := newTestTable()
	if err := LoadPrelude(tbl); err != nil {
		t.Fatalf("load prelude: %v", err)
	}

	qa, err := tbl.Lookup("qalloc_array")
	if err != nil {
		t.Fatalf("qalloc_array: %v", err)
	}
	if len(qa.NatParams) != 1 || len(qa.TypeParams) != 0 {
		t.Fatalf("qalloc_array should be generic over one nat")
	}
	rt := tbl.Types().MustLookup(qa.Result)
	if rt.Kind != types.KindArray || rt.Elem != tbl.Types().Builtins().Qubit {
		t.Fatalf("qalloc_array should return an array of qubits")
	}
	if rt.Nat.Known || rt.Nat.Var != qa.NatVarIDs[0] {
		t.Fatalf("result length should reference the signature's nat variable")
	}

	ln, err := tbl.Lookup("len")
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if len(ln.TypeParams) != 1 || len(ln.NatParams) != 1 {
		t.Fatalf("len should be generic over one type and one nat")
	}
	pt := tbl.Types().MustLookup(ln.Params[0].Type)
	if pt.Kind != types.KindArray || pt.Elem != ln.TypeVarIDs[0] {
		t.Fatalf("len parameter should be array over the type variable")
	}
	if ln.Params[0].Owned {
		t.Fatalf("len should borrow its array")
	}
}

func TestPreludeClashReportsDuplicate(t *testing.T) {
	tbl := newTestTable()
	if err := LoadPrelude(tbl); err != nil {
		t.Fatalf("load prelude: %v", err)
	}
	_, err := tbl.RegisterFunc(&ast.FuncDecl{Name: "measure"})
	if !errors.Is(err, ErrDuplicateDefinition) {
		t.Fatalf("want ErrDuplicateDefinition, got %v", err)
	}
}

func TestPreludeLoadsIdempotentPerTable(t *testing.T) {
	// Two tables can each load the prelude against their own interners.
	for i := 0; i < 2; i++ {
		tbl := newTestTable()
		if err := LoadPrelude(tbl); err != nil {
			t.Fatalf("table %d: %v", i, err)
		}
	}
}
