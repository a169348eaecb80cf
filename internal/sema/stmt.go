package sema

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/types"
)

// checkBlock checks statements in order and reports whether the block
// terminates (every path ends in a return). Statements after a return are
// unreachable; they are still type-checked but excluded from the leak
// analysis.
func (c *Checker) checkBlock(stmts []*ast.Stmt) bool {
	terminated := false
	for _, s := range stmts {
		if terminated {
			c.checkStmt(s)
			continue
		}
		terminated = c.checkStmt(s)
	}
	return terminated
}

func (c *Checker) checkStmt(s *ast.Stmt) bool {
	switch s.Kind {
	case ast.StmtLet:
		c.checkLet(s)
	case ast.StmtAssign:
		c.checkAssign(s)
	case ast.StmtExpr:
		c.checkExprStmt(s)
	case ast.StmtIf:
		return c.checkIf(s)
	case ast.StmtFor:
		c.checkFor(s)
	case ast.StmtReturn:
		c.checkReturn(s)
		return true
	}
	return false
}

func (c *Checker) checkLet(s *ast.Stmt) {
	name := c.strings.Intern(s.Name)

	var annotated types.TypeID
	if s.Ann != nil {
		t, err := c.res.ResolveType(s.Ann)
		if err != nil {
			c.report(diag.SemaUnknownName, s.Span, "invalid type annotation: %v", err)
			t = types.NoTypeID
		}
		annotated = t
	}

	var valueType types.TypeID
	if s.Value != nil {
		valueType = c.checkExpr(s.Value, annotated, useConsume)
	} else if annotated == types.NoTypeID {
		c.report(diag.SemaInconsistentBindingType, s.Span,
			"let %s needs a type annotation or an initial value", s.Name)
	}

	if annotated != types.NoTypeID && valueType != types.NoTypeID && annotated != valueType {
		c.report(diag.SemaTypeMismatch, s.Span,
			"cannot bind value of type %s to %s declared as %s",
			c.fmtType(valueType), s.Name, c.fmtType(annotated))
	}

	bt := annotated
	if bt == types.NoTypeID {
		bt = valueType
	}

	// Rebinding a name in the same block loses the old value for good, so a
	// live linear one is a leak here. A shadow in a nested block is legal:
	// the outer binding comes back when the block ends, state intact.
	if old := c.env.lookup(name); old != nil && old.depth == c.depth &&
		old.owned && old.class == types.Linear && old.state == stateDefined {
		c.reportNotes(diag.SemaResourceLeak, s.Span,
			[]diag.Note{{Span: old.decl, Msg: "previous binding defined here"}},
			"rebinding %s loses its linear value of type %s", s.Name, c.fmtType(old.typ))
		// Poison so later exit checks do not repeat the report.
		old.state = stateConsumed
	}

	state := stateDefined
	if s.Value == nil {
		state = stateUndefined
	}
	c.env.declare(&binding{
		id:    c.newBindID(),
		depth: c.depth,
		name:  name,
		typ:   bt,
		class: c.types.Classify(bt),
		state: state,
		owned: true,
		decl:  s.Span,
		last:  s.Span,
	})
}

func (c *Checker) checkAssign(s *ast.Stmt) {
	name := c.strings.Intern(s.Name)
	b := c.env.lookup(name)
	if b == nil {
		c.report(diag.SemaUnknownName, s.Span, "assignment to undeclared name %s", s.Name)
		c.checkExpr(s.Value, types.NoTypeID, useConsume)
		return
	}
	if b.param && !b.owned {
		c.report(diag.SemaBorrowViolation, s.Span,
			"cannot assign to borrowed parameter %s", s.Name)
	}
	if b.owned && b.class == types.Linear && b.state == stateDefined {
		c.reportNotes(diag.SemaResourceLeak, s.Span,
			[]diag.Note{{Span: b.last, Msg: "current value originates here"}},
			"assignment to %s loses its linear value of type %s", s.Name, c.fmtType(b.typ))
	}

	valueType := c.checkExpr(s.Value, b.typ, useConsume)
	if valueType != types.NoTypeID && b.typ != types.NoTypeID && valueType != b.typ {
		c.report(diag.SemaInconsistentBindingType, s.Span,
			"%s was declared as %s, cannot assign %s",
			s.Name, c.fmtType(b.typ), c.fmtType(valueType))
	}
	b.state = stateDefined
	b.last = s.Span
}

func (c *Checker) checkExprStmt(s *ast.Stmt) {
	t := c.checkExpr(s.Value, types.NoTypeID, useConsume)
	if t == types.NoTypeID {
		return
	}
	if c.types.Classify(t) == types.Linear {
		c.report(diag.SemaLinearDiscard, s.Span,
			"result of type %s is linear and cannot be discarded", c.fmtType(t))
	}
}

func (c *Checker) checkIf(s *ast.Stmt) bool {
	condType := c.checkExpr(s.Cond, c.types.Builtins().Bool, useConsume)
	if condType != types.NoTypeID && condType != c.types.Builtins().Bool {
		c.report(diag.SemaConditionNotBool, s.Cond.Span,
			"condition has type %s, expected bool", c.fmtType(condType))
	}

	before := c.env
	c.depth++

	c.env = before.clone()
	thenTerm := c.checkBlock(s.Then)
	thenEnv := c.env
	if !thenTerm {
		c.leakCheckLocals(thenEnv, before, s.Span)
	}

	c.env = before.clone()
	elseTerm := c.checkBlock(s.Else)
	elseEnv := c.env
	if !elseTerm {
		c.leakCheckLocals(elseEnv, before, s.Span)
	}
	c.depth--

	switch {
	case thenTerm && elseTerm:
		// Unreachable after the if; keep the pre-state for the dead code.
		c.env = before
		return true
	case thenTerm:
		c.env = c.dropLocals(elseEnv, before)
	case elseTerm:
		c.env = c.dropLocals(thenEnv, before)
	default:
		c.env = c.mergeBranches(before, thenEnv, elseEnv, s.Span)
	}
	return false
}

// mergeBranches reconciles the binding states both branches left behind.
// Bindings introduced inside a branch are dropped (their leaks were already
// checked); bindings from before the if are matched by identity, so a
// branch-local shadow never stands in for the outer binding. Linear values
// must agree, or the disagreement is reported and the state poisoned to
// consumed to avoid cascades. Affine values may be consumed on one path
// only; the merged state is then consumed.
func (c *Checker) mergeBranches(before, thenEnv, elseEnv *env, sp source.Span) *env {
	out := before.clone()
	before.each(func(pre *binding) {
		tb := thenEnv.resolve(pre.name, pre.id)
		eb := elseEnv.resolve(pre.name, pre.id)
		merged := out.bindings[pre.name]
		*merged = *tb
		if tb.state == eb.state {
			return
		}
		switch {
		case pre.class == types.Linear:
			c.reportNotes(diag.SemaInconsistentConsumption, sp,
				[]diag.Note{
					{Span: tb.last, Msg: "state after then branch: " + tb.state.String()},
					{Span: eb.last, Msg: "state after else branch: " + eb.state.String()},
				},
				"%s must be consumed on both branches or on neither",
				c.strings.MustLookup(pre.name))
			merged.state = stateConsumed
		case tb.state == stateUndefined || eb.state == stateUndefined:
			// One path defined it, the other did not: not definitely
			// assigned afterwards.
			merged.state = stateUndefined
		default:
			merged.state = stateConsumed
		}
	})
	return out
}

// dropLocals keeps only the bindings that existed before the branch,
// with the states the surviving branch left them in.
func (c *Checker) dropLocals(surviving, before *env) *env {
	out := before.clone()
	before.each(func(pre *binding) {
		b := surviving.resolve(pre.name, pre.id)
		*out.bindings[pre.name] = *b
	})
	return out
}

// leakCheckLocals reports leaks for bindings introduced inside a branch,
// shadows of outer names included.
func (c *Checker) leakCheckLocals(branch, before *env, sp source.Span) {
	branch.each(func(b *binding) {
		if before.resolve(b.name, b.id) != nil {
			return
		}
		if b.owned && b.class == types.Linear && b.state == stateDefined {
			c.reportNotes(diag.SemaResourceLeak, sp,
				[]diag.Note{{Span: b.decl, Msg: "defined here"}},
				"linear value %s of type %s is never consumed",
				c.strings.MustLookup(b.name), c.fmtType(b.typ))
		}
	})
}

// checkFor checks a bounded loop. Since the bound may be zero or many, the
// body must leave every pre-existing binding in the state it found it.
func (c *Checker) checkFor(s *ast.Stmt) {
	if _, err := c.res.ResolveNat(s.Bound); err != nil {
		c.report(diag.SemaUnknownName, s.Span, "invalid loop bound: %v", err)
	}

	before := c.env
	c.depth++
	c.env = before.clone()
	if s.Name != "" {
		c.env.declare(&binding{
			id:    c.newBindID(),
			depth: c.depth,
			name:  c.strings.Intern(s.Name),
			typ:   c.types.Builtins().Int,
			class: types.Copyable,
			state: stateDefined,
			owned: true,
			decl:  s.Span,
			last:  s.Span,
		})
	}

	bodyTerm := c.checkBlock(s.Body)
	bodyEnv := c.env
	if !bodyTerm {
		c.leakCheckLocals(bodyEnv, before, s.Span)
	}
	c.depth--

	before.each(func(pre *binding) {
		post := bodyEnv.resolve(pre.name, pre.id)
		if post.state == pre.state {
			return
		}
		if pre.class == types.Copyable {
			return
		}
		c.reportNotes(diag.SemaLoopStateChange, s.Span,
			[]diag.Note{{Span: post.last, Msg: "state changes here"}},
			"%s is %s before the loop but %s after one iteration",
			c.strings.MustLookup(pre.name), pre.state, post.state)
	})

	// Zero iterations are possible, so the loop contributes nothing to the
	// binding states.
	c.env = before
}

func (c *Checker) checkReturn(s *ast.Stmt) {
	want := c.sig.Result
	unit := c.types.Builtins().Unit

	if s.Value == nil {
		if want != unit {
			c.report(diag.SemaReturnMismatch, s.Span,
				"bare return in function returning %s", c.fmtType(want))
		}
	} else {
		got := c.checkExpr(s.Value, want, useConsume)
		if got != types.NoTypeID && got != want {
			c.report(diag.SemaReturnMismatch, s.Span,
				"returning %s from function declared to return %s",
				c.fmtType(got), c.fmtType(want))
		}
	}
	c.leakCheck(c.env, s.Span)
}
