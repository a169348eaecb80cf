package mono

import (
	"errors"
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/sema"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

type harness struct {
	t   *testing.T
	tbl *symbols.Table
	bag *diag.Bag
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tbl := symbols.NewTable(source.NewInterner(), types.NewInterner())
	if err := symbols.LoadPrelude(tbl); err != nil {
		t.Fatalf("load prelude: %v", err)
	}
	return &harness{t: t, tbl: tbl, bag: diag.NewBag(64)}
}

func (h *harness) addStruct(decl *ast.StructDecl) {
	h.t.Helper()
	if _, err := h.tbl.RegisterStructDecl(decl); err != nil {
		h.t.Fatalf("register struct %s: %v", decl.Name, err)
	}
}

func (h *harness) addFunc(decl *ast.FuncDecl) {
	h.t.Helper()
	if _, err := h.tbl.RegisterFunc(decl); err != nil {
		h.t.Fatalf("register func %s: %v", decl.Name, err)
	}
}

// run checks every registered function and specializes the program.
func (h *harness) run() (*Program, error) {
	h.t.Helper()
	results := sema.CheckAll(sema.Options{Table: h.tbl, Reporter: diag.BagReporter{Bag: h.bag}})
	if h.bag.HasErrors() {
		h.t.Fatalf("unexpected sema errors: %v", h.bag.Items())
	}
	return Run(Options{Table: h.tbl, Results: results, Reporter: diag.BagReporter{Bag: h.bag}})
}

func call(name string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprCall, Name: name, Args: args}
}
func varRef(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprVar, Name: name}
}
func intLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprInt, IntVal: v}
}
func stmtLet(name string, v *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtLet, Name: name, Value: v}
}
func stmtLetAnn(name string, ann *ast.TypeExpr, v *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtLet, Name: name, Ann: ann, Value: v}
}
func stmtExpr(v *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtExpr, Value: v}
}
func stmtRet(v *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtReturn, Value: v}
}

func funcNames(p *Program) []string {
	out := make([]string, 0, len(p.Funcs))
	for _, f := range p.Funcs {
		out = append(out, f.Name)
	}
	return out
}

func hasFunc(p *Program, name string) bool {
	for _, f := range p.Funcs {
		if f.Name == name {
			return true
		}
	}
	return false
}

func sampleDecl() *ast.FuncDecl {
	return &ast.FuncDecl{
		Name: "sample",
		Body: []*ast.Stmt{
			stmtLetAnn("qs",
				ast.ArrayType(ast.NamedType("qubit"), ast.NatLit(3)),
				call("qalloc_array")),
			stmtLet("bits", call("measure_array", varRef("qs"))),
		},
	}
}

func TestSpecializesDemandedInstantiations(t *testing.T) {
	h := newHarness(t)
	h.addFunc(sampleDecl())
	p, err := h.run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"sample", "qalloc_array[3]", "measure_array[3]"} {
		if !hasFunc(p, want) {
			t.Fatalf("missing %s in %v", want, funcNames(p))
		}
	}
}

func TestSpecializationTypesAreConcrete(t *testing.T) {
	h := newHarness(t)
	h.addFunc(sampleDecl())
	p, err := h.run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, f := range p.Funcs {
		for _, prm := range f.Params {
			if !h.tbl.Types().Concrete(prm.Type) {
				t.Fatalf("%s has non-concrete parameter %s",
					f.Name, types.Format(h.tbl.Types(), h.tbl.Strings(), prm.Type))
			}
		}
		if f.Result != types.NoTypeID && !h.tbl.Types().Concrete(f.Result) {
			t.Fatalf("%s has non-concrete result", f.Name)
		}
	}
}

func TestNestedGenericSubstitution(t *testing.T) {
	h := newHarness(t)
	h.addFunc(&ast.FuncDecl{
		Name:      "fresh",
		NatParams: []string{"n"},
		Result:    ast.ArrayType(ast.NamedType("qubit"), ast.NatVar("n")),
		Body: []*ast.Stmt{
			stmtRet(call("qalloc_array")),
		},
	})
	h.addFunc(&ast.FuncDecl{
		Name: "main",
		Body: []*ast.Stmt{
			stmtLetAnn("qs",
				ast.ArrayType(ast.NamedType("qubit"), ast.NatLit(2)),
				call("fresh")),
			stmtLet("bits", call("measure_array", varRef("qs"))),
		},
	})
	p, err := h.run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// fresh[2]'s body demands qalloc_array at the substituted length.
	for _, want := range []string{"main", "fresh[2]", "qalloc_array[2]", "measure_array[2]"} {
		if !hasFunc(p, want) {
			t.Fatalf("missing %s in %v", want, funcNames(p))
		}
	}
}

func TestSameArgumentsBuildOnce(t *testing.T) {
	h := newHarness(t)
	h.addFunc(sampleDecl())
	h.addFunc(&ast.FuncDecl{
		Name: "again",
		Body: []*ast.Stmt{
			stmtLetAnn("qs",
				ast.ArrayType(ast.NamedType("qubit"), ast.NatLit(3)),
				call("qalloc_array")),
			stmtLet("bits", call("measure_array", varRef("qs"))),
		},
	})
	p, err := h.run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	count := 0
	for _, f := range p.Funcs {
		if f.Name == "qalloc_array[3]" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("qalloc_array[3] should be built once, found %d", count)
	}
}

func TestDeterministicOutput(t *testing.T) {
	build := func() []string {
		h := newHarness(t)
		h.addFunc(sampleDecl())
		h.addFunc(&ast.FuncDecl{
			Name: "pairs",
			Body: []*ast.Stmt{
				stmtLetAnn("qs",
					ast.ArrayType(ast.NamedType("qubit"), ast.NatLit(2)),
					call("qalloc_array")),
				stmtLet("bits", call("measure_array", varRef("qs"))),
			},
		})
		p, err := h.run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return funcNames(p)
	}
	a, b := build(), build()
	if len(a) != len(b) {
		t.Fatalf("runs disagree: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs disagree at %d: %v vs %v", i, a, b)
		}
	}
}

func TestStructSpecializations(t *testing.T) {
	h := newHarness(t)
	h.addStruct(&ast.StructDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields: []ast.FieldDecl{
			{Name: "value", Type: ast.NamedType("T")},
		},
	})
	h.addFunc(&ast.FuncDecl{
		Name: "boxer",
		Body: []*ast.Stmt{
			stmtLet("b", &ast.Expr{Kind: ast.ExprStructLit, Name: "Box", Fields: []ast.FieldInit{
				{Name: "value", Value: intLit(5)},
			}}),
		},
	})
	p, err := h.run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(p.Structs) != 1 || p.Structs[0].Name != "Box[int]" {
		t.Fatalf("want Box[int], got %+v", p.Structs)
	}
	if !h.tbl.Types().Concrete(p.Structs[0].Type) {
		t.Fatalf("struct specialization should be concrete")
	}
}

func TestInstantiationCycleDetected(t *testing.T) {
	h := newHarness(t)
	spinCall := call("spin")
	spinCall.NatArgs = []*ast.NatExpr{ast.NatVar("n")}
	h.addFunc(&ast.FuncDecl{
		Name:      "spin",
		NatParams: []string{"n"},
		Body: []*ast.Stmt{
			stmtExpr(spinCall),
		},
	})
	rootCall := call("spin")
	rootCall.NatArgs = []*ast.NatExpr{ast.NatLit(2)}
	h.addFunc(&ast.FuncDecl{
		Name: "main",
		Body: []*ast.Stmt{
			stmtExpr(rootCall),
		},
	})
	_, err := h.run()
	if !errors.Is(err, ErrRecursiveInstantiation) {
		t.Fatalf("want ErrRecursiveInstantiation, got %v", err)
	}
	found := false
	for _, d := range h.bag.Items() {
		if d.Code == diag.MonoRecursiveInstantiation {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MonoRecursiveInstantiation diagnostic")
	}
}

func TestDepthLimit(t *testing.T) {
	h := newHarness(t)
	h.addFunc(sampleDecl())
	results := sema.CheckAll(sema.Options{Table: h.tbl, Reporter: diag.BagReporter{Bag: h.bag}})
	_, err := Run(Options{
		Table:    h.tbl,
		Results:  results,
		Reporter: diag.BagReporter{Bag: h.bag},
		MaxDepth: 1,
	})
	if !errors.Is(err, ErrRecursiveInstantiation) {
		t.Fatalf("want depth error, got %v", err)
	}
}
