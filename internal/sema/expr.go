package sema

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

// useMode says what an expression's context does with the value. Consuming
// contexts (let values, owned arguments, returns, aggregate elements) move
// linear and affine values; borrowing contexts (borrowed arguments) leave
// the binding live.
type useMode uint8

const (
	useConsume useMode = iota
	useBorrow
)

// checkExpr types an expression and records the result. expected seeds
// inference (empty aggregates, calls whose result type alone mentions a
// generic variable); NoTypeID means no expectation.
func (c *Checker) checkExpr(e *ast.Expr, expected types.TypeID, mode useMode) types.TypeID {
	t := c.typeExpr(e, expected, mode)
	c.out.ExprTypes[e] = t
	return t
}

func (c *Checker) typeExpr(e *ast.Expr, expected types.TypeID, mode useMode) types.TypeID {
	b := c.types.Builtins()
	switch e.Kind {
	case ast.ExprInt:
		return b.Int
	case ast.ExprFloat:
		return b.Float
	case ast.ExprBool:
		return b.Bool
	case ast.ExprUnit:
		return b.Unit
	case ast.ExprVar:
		return c.checkVar(e, mode)
	case ast.ExprCall:
		return c.checkCall(e, expected)
	case ast.ExprTuple:
		return c.checkTuple(e, expected)
	case ast.ExprArray:
		return c.checkArray(e, expected)
	case ast.ExprIndex:
		return c.checkIndex(e, mode)
	case ast.ExprField:
		return c.checkField(e, mode)
	case ast.ExprStructLit:
		return c.checkStructLit(e, expected)
	default:
		c.report(diag.SemaTypeMismatch, e.Span, "unsupported expression kind %d", e.Kind)
		return types.NoTypeID
	}
}

func (c *Checker) checkVar(e *ast.Expr, mode useMode) types.TypeID {
	name := c.strings.Intern(e.Name)
	bd := c.env.lookup(name)
	if bd == nil {
		return c.checkFnReference(e)
	}

	switch bd.state {
	case stateUndefined:
		c.reportNotes(diag.SemaUseBeforeDefinition, e.Span,
			[]diag.Note{{Span: bd.decl, Msg: "declared here"}},
			"%s is used before it is assigned", e.Name)
		return bd.typ
	case stateConsumed:
		c.reportNotes(diag.SemaUseAfterConsume, e.Span,
			[]diag.Note{{Span: bd.last, Msg: "consumed here"}},
			"%s was already consumed", e.Name)
		return bd.typ
	}

	if mode == useConsume && bd.class != types.Copyable {
		if bd.param && !bd.owned {
			c.report(diag.SemaBorrowViolation, e.Span,
				"cannot consume borrowed parameter %s", e.Name)
			return bd.typ
		}
		bd.state = stateConsumed
		bd.last = e.Span
	}
	return bd.typ
}

// checkFnReference types a bare function name used as a value.
func (c *Checker) checkFnReference(e *ast.Expr) types.TypeID {
	sig, err := c.table.Lookup(e.Name)
	if err != nil {
		c.report(diag.SemaUnknownName, e.Span, "unknown name %s", e.Name)
		return types.NoTypeID
	}
	if sig.IsGeneric() {
		c.report(diag.SemaUnresolvedParameter, e.Span,
			"generic function %s cannot be used as a value; call it directly", e.Name)
		return types.NoTypeID
	}
	params := make([]types.Param, 0, len(sig.Params))
	for _, p := range sig.Params {
		params = append(params, types.Param{Type: p.Type, Owned: p.Owned})
	}
	return c.types.RegisterFn(params, sig.Result)
}

func (c *Checker) checkCall(e *ast.Expr, expected types.TypeID) types.TypeID {
	if bd := c.env.lookup(c.strings.Intern(e.Name)); bd != nil {
		return c.checkFnValueCall(e, bd)
	}

	sig, err := c.table.Lookup(e.Name)
	if err != nil {
		c.report(diag.SemaUnknownName, e.Span, "call to unknown function %s", e.Name)
		for _, a := range e.Args {
			c.checkExpr(a, types.NoTypeID, useConsume)
		}
		return types.NoTypeID
	}
	if len(e.Args) != len(sig.Params) {
		c.report(diag.SemaArityMismatch, e.Span,
			"%s takes %d arguments, got %d", e.Name, len(sig.Params), len(e.Args))
		for _, a := range e.Args {
			c.checkExpr(a, types.NoTypeID, useConsume)
		}
		return types.NoTypeID
	}

	bs := newBindingSet(sig.ID)
	if !c.bindExplicitArgs(e, sig.TypeVarIDs, sig.NatVarIDs, bs) {
		return types.NoTypeID
	}

	for i, arg := range e.Args {
		declared := sig.Params[i]
		mode := useBorrow
		if declared.Owned {
			mode = useConsume
		}
		at := c.checkExpr(arg, c.substitute(declared.Type, bs), mode)
		c.checkBorrowedTemp(arg, at, mode)
		if at != types.NoTypeID && !c.unify(declared.Type, at, bs) {
			c.report(diag.SemaTypeMismatch, arg.Span,
				"argument %d to %s has type %s, expected %s",
				i+1, e.Name, c.fmtType(at), c.fmtType(c.substitute(declared.Type, bs)))
		}
	}

	// When the arguments alone do not pin down every variable, the
	// expected type of the call result can (qalloc_array, empty options).
	if expected != types.NoTypeID && len(c.unresolvedNames(sig.TypeVarIDs, sig.NatVarIDs, bs)) > 0 {
		c.unify(sig.Result, expected, bs)
	}
	if missing := c.unresolvedNames(sig.TypeVarIDs, sig.NatVarIDs, bs); len(missing) > 0 {
		c.report(diag.SemaUnresolvedParameter, e.Span,
			"cannot infer %v for call to %s; annotate the result or pass explicit arguments",
			missing, e.Name)
		return types.NoTypeID
	}

	if sig.IsGeneric() {
		c.recordInst(InstFn, sig.ID, sig.Name, sig.TypeVarIDs, sig.NatVarIDs, bs, e)
	}
	return c.substitute(sig.Result, bs)
}

// checkFnValueCall calls through a binding of function type.
func (c *Checker) checkFnValueCall(e *ast.Expr, bd *binding) types.TypeID {
	switch bd.state {
	case stateUndefined:
		c.report(diag.SemaUseBeforeDefinition, e.Span, "%s is used before it is assigned", e.Name)
		return types.NoTypeID
	case stateConsumed:
		c.report(diag.SemaUseAfterConsume, e.Span, "%s was already consumed", e.Name)
		return types.NoTypeID
	}
	info, ok := c.types.FnInfo(bd.typ)
	if !ok {
		c.report(diag.SemaNotCallable, e.Span,
			"%s has type %s and is not callable", e.Name, c.fmtType(bd.typ))
		for _, a := range e.Args {
			c.checkExpr(a, types.NoTypeID, useConsume)
		}
		return types.NoTypeID
	}
	if len(e.Args) != len(info.Params) {
		c.report(diag.SemaArityMismatch, e.Span,
			"%s takes %d arguments, got %d", e.Name, len(info.Params), len(e.Args))
		return info.Result
	}
	for i, arg := range e.Args {
		p := info.Params[i]
		mode := useBorrow
		if p.Owned {
			mode = useConsume
		}
		at := c.checkExpr(arg, p.Type, mode)
		c.checkBorrowedTemp(arg, at, mode)
		if at != types.NoTypeID && at != p.Type {
			c.report(diag.SemaTypeMismatch, arg.Span,
				"argument %d to %s has type %s, expected %s",
				i+1, e.Name, c.fmtType(at), c.fmtType(p.Type))
		}
	}
	return info.Result
}

// bindExplicitArgs resolves generic arguments written at the call site and
// pre-binds them in declaration order.
func (c *Checker) bindExplicitArgs(e *ast.Expr, typeVarIDs []types.TypeID, natVarIDs []types.NatVarID, bs *bindingSet) bool {
	if len(e.TypeArgs) > 0 {
		if len(e.TypeArgs) != len(typeVarIDs) {
			c.report(diag.SemaArityMismatch, e.Span,
				"%s declares %d type parameters, got %d arguments",
				e.Name, len(typeVarIDs), len(e.TypeArgs))
			return false
		}
		for i, ta := range e.TypeArgs {
			t, err := c.res.ResolveType(ta)
			if err != nil {
				c.report(diag.SemaUnknownName, e.Span, "invalid type argument: %v", err)
				return false
			}
			bs.bindType(typeVarIDs[i], t)
		}
	}
	if len(e.NatArgs) > 0 {
		if len(e.NatArgs) != len(natVarIDs) {
			c.report(diag.SemaArityMismatch, e.Span,
				"%s declares %d nat parameters, got %d arguments",
				e.Name, len(natVarIDs), len(e.NatArgs))
			return false
		}
		for i, na := range e.NatArgs {
			n, err := c.res.ResolveNat(na)
			if err != nil {
				c.report(diag.SemaUnknownName, e.Span, "invalid nat argument: %v", err)
				return false
			}
			bs.bindNat(natVarIDs[i], n)
		}
	}
	return true
}

// checkBorrowedTemp flags a linear temporary in borrowed position: the
// callee hands the value back, but nothing holds it afterwards.
func (c *Checker) checkBorrowedTemp(arg *ast.Expr, at types.TypeID, mode useMode) {
	if mode != useBorrow || at == types.NoTypeID {
		return
	}
	if placeRootVar(arg) != nil {
		return
	}
	if c.types.Classify(at) == types.Linear {
		c.report(diag.SemaResourceLeak, arg.Span,
			"temporary of linear type %s passed as borrowed is never consumed", c.fmtType(at))
	}
}

func (c *Checker) recordInst(kind InstKind, sym symbols.SymbolID, name source.StringID, typeVarIDs []types.TypeID, natVarIDs []types.NatVarID, bs *bindingSet, e *ast.Expr) {
	inst := Instantiation{Kind: kind, Sym: sym, Name: name, Span: e.Span}
	for _, v := range typeVarIDs {
		inst.TypeArgs = append(inst.TypeArgs, bs.typeVars[v])
	}
	for _, v := range natVarIDs {
		inst.NatArgs = append(inst.NatArgs, bs.natVars[v])
	}
	c.out.Insts = append(c.out.Insts, inst)
}

func (c *Checker) checkTuple(e *ast.Expr, expected types.TypeID) types.TypeID {
	var expectedElems []types.TypeID
	if info, ok := c.types.TupleInfo(expected); ok && len(info.Elems) == len(e.Args) {
		expectedElems = info.Elems
	}
	elems := make([]types.TypeID, 0, len(e.Args))
	for i, a := range e.Args {
		var exp types.TypeID
		if expectedElems != nil {
			exp = expectedElems[i]
		}
		elems = append(elems, c.checkExpr(a, exp, useConsume))
	}
	if len(elems) == 0 {
		return c.types.Builtins().Unit
	}
	for _, t := range elems {
		if t == types.NoTypeID {
			return types.NoTypeID
		}
	}
	return c.types.RegisterTuple(elems)
}

func (c *Checker) checkArray(e *ast.Expr, expected types.TypeID) types.TypeID {
	var expectedElem types.TypeID
	if tt, ok := c.types.Lookup(expected); ok && tt.Kind == types.KindArray {
		expectedElem = tt.Elem
	}

	if len(e.Args) == 0 {
		if expectedElem == types.NoTypeID {
			c.report(diag.SemaTypeMismatch, e.Span,
				"cannot infer the element type of an empty array literal")
			return types.NoTypeID
		}
		return c.types.Intern(types.MakeArray(expectedElem, types.NatLit(0)))
	}

	elemType := types.NoTypeID
	for _, a := range e.Args {
		at := c.checkExpr(a, expectedElem, useConsume)
		if at == types.NoTypeID {
			continue
		}
		if elemType == types.NoTypeID {
			elemType = at
			continue
		}
		if at != elemType {
			c.report(diag.SemaTypeMismatch, a.Span,
				"array element has type %s, previous elements have %s",
				c.fmtType(at), c.fmtType(elemType))
		}
	}
	if elemType == types.NoTypeID {
		return types.NoTypeID
	}
	return c.types.Intern(types.MakeArray(elemType, types.NatLit(uint64(len(e.Args)))))
}

func (c *Checker) checkIndex(e *ast.Expr, mode useMode) types.TypeID {
	base := c.checkExpr(e.Recv, types.NoTypeID, useBorrow)
	idx := c.checkExpr(e.Index, c.types.Builtins().Int, useConsume)
	if idx != types.NoTypeID && idx != c.types.Builtins().Int {
		c.report(diag.SemaInvalidIndex, e.Index.Span,
			"index has type %s, expected int", c.fmtType(idx))
	}
	if base == types.NoTypeID {
		return types.NoTypeID
	}
	tt := c.types.MustLookup(base)
	if tt.Kind != types.KindArray {
		c.report(diag.SemaInvalidIndex, e.Span, "cannot index a value of type %s", c.fmtType(base))
		return types.NoTypeID
	}
	if mode == useConsume && c.types.Classify(tt.Elem) != types.Copyable {
		c.report(diag.SemaLinearDiscard, e.Span,
			"cannot move a %s element out of an array; consume the whole array instead",
			c.fmtType(tt.Elem))
	}
	return tt.Elem
}

func (c *Checker) checkField(e *ast.Expr, mode useMode) types.TypeID {
	base := c.checkExpr(e.Recv, types.NoTypeID, useBorrow)
	if base == types.NoTypeID {
		return types.NoTypeID
	}
	info, ok := c.types.StructInfo(base)
	if !ok {
		c.report(diag.SemaNotAStruct, e.Span,
			"value of type %s has no fields", c.fmtType(base))
		return types.NoTypeID
	}
	ft, ok := info.FieldType(c.strings.Intern(e.Name))
	if !ok {
		c.report(diag.SemaUnknownField, e.Span,
			"%s has no field %s", c.fmtType(base), e.Name)
		return types.NoTypeID
	}
	if mode == useConsume && c.types.Classify(ft) != types.Copyable {
		c.report(diag.SemaLinearDiscard, e.Span,
			"cannot move field %s out of %s; consume the whole value instead",
			e.Name, c.fmtType(base))
	}
	return ft
}

func (c *Checker) checkStructLit(e *ast.Expr, expected types.TypeID) types.TypeID {
	entry, err := c.table.LookupStruct(e.Name)
	if err != nil {
		if _, ferr := c.table.Lookup(e.Name); ferr == nil {
			c.report(diag.SemaNotAStruct, e.Span, "%s is a function, not a struct", e.Name)
		} else {
			c.report(diag.SemaUnknownName, e.Span, "unknown struct %s", e.Name)
		}
		for i := range e.Fields {
			c.checkExpr(e.Fields[i].Value, types.NoTypeID, useConsume)
		}
		return types.NoTypeID
	}

	generic, ok := c.types.StructInfo(entry.Generic)
	if !ok {
		return types.NoTypeID
	}

	bs := newBindingSet(entry.ID)
	if !c.bindExplicitArgs(e, entry.TypeVarIDs, entry.NatVarIDs, bs) {
		return types.NoTypeID
	}
	if expected != types.NoTypeID {
		c.unify(entry.Generic, expected, bs)
	}

	seen := make(map[string]bool, len(e.Fields))
	for i := range e.Fields {
		f := &e.Fields[i]
		if seen[f.Name] {
			c.report(diag.SemaDuplicateDefinition, f.Span,
				"field %s is initialized twice", f.Name)
			continue
		}
		seen[f.Name] = true
		declared, ok := generic.FieldType(c.strings.Intern(f.Name))
		if !ok {
			c.report(diag.SemaUnknownField, f.Span,
				"%s has no field %s", e.Name, f.Name)
			c.checkExpr(f.Value, types.NoTypeID, useConsume)
			continue
		}
		at := c.checkExpr(f.Value, c.substitute(declared, bs), useConsume)
		if at != types.NoTypeID && !c.unify(declared, at, bs) {
			c.report(diag.SemaTypeMismatch, f.Value.Span,
				"field %s has type %s, value has type %s",
				f.Name, c.fmtType(c.substitute(declared, bs)), c.fmtType(at))
		}
	}
	for _, f := range generic.Fields {
		if !seen[c.lookupName(f.Name)] {
			c.report(diag.SemaMissingField, e.Span,
				"missing field %s in %s literal", c.lookupName(f.Name), e.Name)
		}
	}

	if missing := c.unresolvedNames(entry.TypeVarIDs, entry.NatVarIDs, bs); len(missing) > 0 {
		c.report(diag.SemaUnresolvedParameter, e.Span,
			"cannot infer %v for %s literal", missing, e.Name)
		return types.NoTypeID
	}

	typeArgs := make([]types.TypeID, 0, len(entry.TypeVarIDs))
	for _, v := range entry.TypeVarIDs {
		typeArgs = append(typeArgs, bs.typeVars[v])
	}
	natArgs := make([]types.Nat, 0, len(entry.NatVarIDs))
	for _, v := range entry.NatVarIDs {
		natArgs = append(natArgs, bs.natVars[v])
	}
	id, ierr := c.res.InstantiateStruct(entry, typeArgs, natArgs)
	if ierr != nil {
		c.report(diag.SemaTypeMismatch, e.Span, "cannot instantiate %s: %v", e.Name, ierr)
		return types.NoTypeID
	}
	if entry.IsGeneric() {
		inst := Instantiation{Kind: InstStruct, Sym: entry.ID, Name: entry.Name, Span: e.Span,
			TypeArgs: typeArgs, NatArgs: natArgs}
		c.out.Insts = append(c.out.Insts, inst)
	}
	return id
}

// placeRootVar chases index and field projections down to the variable a
// place expression names, or nil for temporaries.
func placeRootVar(e *ast.Expr) *ast.Expr {
	for {
		switch e.Kind {
		case ast.ExprVar:
			return e
		case ast.ExprIndex, ast.ExprField:
			e = e.Recv
		default:
			return nil
		}
	}
}
