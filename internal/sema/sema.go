// Package sema checks function bodies: expression typing, definite
// assignment, the linear/affine consumption discipline, and inference of
// generic arguments at call sites. It reports through diag.Reporter and
// records every generic instantiation a body demands, which is the work
// list the monomorphiser starts from.
package sema

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

// Options configures one checking run. Table must be frozen: checking
// never registers new signatures.
type Options struct {
	Table    *symbols.Table
	Reporter diag.Reporter
}

// InstKind discriminates recorded instantiations.
type InstKind uint8

const (
	InstFn InstKind = iota
	InstStruct
)

// Instantiation is one generic use a body demands: a callee or struct
// literal together with the inferred arguments. Arguments may still mention
// the enclosing function's own variables; the monomorphiser substitutes
// those when it specializes the enclosing function.
type Instantiation struct {
	Kind     InstKind
	Sym      symbols.SymbolID
	Name     source.StringID
	TypeArgs []types.TypeID
	NatArgs  []types.Nat
	Span     source.Span
}

// FuncResult is the outcome of checking one function body.
type FuncResult struct {
	Sig *symbols.Signature

	// ExprTypes assigns every checked expression its type. Expressions that
	// failed to type carry NoTypeID.
	ExprTypes map[*ast.Expr]types.TypeID

	Insts []Instantiation
}

// CheckAll checks every user function in registration order.
func CheckAll(opts Options) []*FuncResult {
	var out []*FuncResult
	for _, sig := range opts.Table.Funcs() {
		if sig.Builtin {
			continue
		}
		out = append(out, CheckFunc(opts, sig))
	}
	return out
}

// CheckFunc checks one function body against its registered signature.
func CheckFunc(opts Options, sig *symbols.Signature) *FuncResult {
	c := &Checker{
		table:   opts.Table,
		types:   opts.Table.Types(),
		strings: opts.Table.Strings(),
		rep:     opts.Reporter,
		res:     symbols.NewResolver(opts.Table.Types(), opts.Table.Strings(), opts.Table),
		sig:     sig,
		env:     newEnv(),
		out: &FuncResult{
			Sig:       sig,
			ExprTypes: make(map[*ast.Expr]types.TypeID),
		},
	}
	if c.rep == nil {
		c.rep = diag.NopReporter{}
	}

	// The function's own generic variables are in scope for explicit
	// generic arguments and loop bounds written inside the body.
	c.res.TypeVars = make(map[string]types.TypeID, len(sig.TypeParams))
	for i, p := range sig.TypeParams {
		c.res.TypeVars[c.strings.MustLookup(p)] = sig.TypeVarIDs[i]
	}
	c.res.NatVars = make(map[string]types.Nat, len(sig.NatParams))
	for i, p := range sig.NatParams {
		c.res.NatVars[c.strings.MustLookup(p)] = types.NatRef(sig.NatVarIDs[i])
	}

	for i := range sig.Params {
		p := &sig.Params[i]
		var declSpan source.Span
		if sig.Decl != nil {
			declSpan = sig.Decl.Span
		}
		c.env.declare(&binding{
			id:    c.newBindID(),
			name:  p.Name,
			typ:   p.Type,
			class: c.types.Classify(p.Type),
			state: stateDefined,
			owned: p.Owned,
			param: true,
			decl:  declSpan,
			last:  declSpan,
		})
	}

	if sig.Decl == nil {
		return c.out
	}
	terminated := c.checkBlock(sig.Decl.Body)
	if !terminated {
		if sig.Result != c.types.Builtins().Unit {
			c.report(diag.SemaReturnMismatch, sig.Decl.Span,
				"function %s does not return a value of type %s on every path",
				c.strings.MustLookup(sig.Name), c.fmtType(sig.Result))
		}
		c.leakCheck(c.env, sig.Decl.Span)
	}
	return c.out
}

// Checker holds the state for checking one function body.
type Checker struct {
	table   *symbols.Table
	types   *types.Interner
	strings *source.Interner
	rep     diag.Reporter
	res     *symbols.Resolver

	sig *symbols.Signature
	env *env
	out *FuncResult

	// nextBindID feeds binding identities; depth is the current block
	// nesting level. Together they make shadowing declarations visible to
	// the branch and loop reconciliation.
	nextBindID uint32
	depth      int
}

func (c *Checker) newBindID() uint32 {
	c.nextBindID++
	return c.nextBindID
}

func (c *Checker) report(code diag.Code, sp source.Span, format string, args ...any) {
	c.rep.Report(code, diag.SevError, sp, fmt.Sprintf(format, args...), nil)
}

func (c *Checker) reportNotes(code diag.Code, sp source.Span, notes []diag.Note, format string, args ...any) {
	c.rep.Report(code, diag.SevError, sp, fmt.Sprintf(format, args...), notes)
}

func (c *Checker) fmtType(id types.TypeID) string {
	return types.Format(c.types, c.strings, id)
}

// leakCheck reports every owned linear binding still holding a value. It
// runs at function exit, at every return, and for branch-local bindings
// when a branch ends. Shadowed bindings count too: past the shadow nothing
// can consume them on this path.
func (c *Checker) leakCheck(e *env, sp source.Span) {
	e.each(func(b *binding) { c.leakCheckBinding(b, sp) })
	for _, b := range e.hidden {
		c.leakCheckBinding(b, sp)
	}
}

func (c *Checker) leakCheckBinding(b *binding, sp source.Span) {
	if b.owned && b.class == types.Linear && b.state == stateDefined {
		c.reportNotes(diag.SemaResourceLeak, sp,
			[]diag.Note{{Span: b.decl, Msg: "defined here"}},
			"linear value %s of type %s is never consumed",
			c.strings.MustLookup(b.name), c.fmtType(b.typ))
	}
}
