package sema

import (
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

// bindingSet accumulates the generic arguments inferred for one callee.
// Only variables owned by the callee bind; anything else must match
// exactly, so variables of the enclosing function flow through untouched.
type bindingSet struct {
	owner    uint32
	typeVars map[types.TypeID]types.TypeID
	natVars  map[types.NatVarID]types.Nat
}

func newBindingSet(owner symbols.SymbolID) *bindingSet {
	return &bindingSet{
		owner:    uint32(owner),
		typeVars: make(map[types.TypeID]types.TypeID),
		natVars:  make(map[types.NatVarID]types.Nat),
	}
}

func (b *bindingSet) bindType(v, actual types.TypeID) bool {
	if prev, ok := b.typeVars[v]; ok {
		return prev == actual
	}
	b.typeVars[v] = actual
	return true
}

func (b *bindingSet) bindNat(v types.NatVarID, actual types.Nat) bool {
	if prev, ok := b.natVars[v]; ok {
		return prev == actual
	}
	b.natVars[v] = actual
	return true
}

// unify matches a declared type (which may mention the callee's variables)
// against an actual type, binding variables as it goes.
func (c *Checker) unify(declared, actual types.TypeID, b *bindingSet) bool {
	if declared == types.NoTypeID || actual == types.NoTypeID {
		// Poisoned by an earlier error; pretend success to avoid cascades.
		return true
	}
	if declared == actual {
		return true
	}
	dt := c.types.MustLookup(declared)
	if dt.Kind == types.KindTypeVar {
		info, ok := c.types.TypeVarInfo(declared)
		if ok && info.Owner == b.owner {
			return b.bindType(declared, actual)
		}
		// A foreign variable only matches itself, which the identity
		// comparison above already covered.
		return false
	}

	at := c.types.MustLookup(actual)
	if dt.Kind != at.Kind {
		return false
	}
	switch dt.Kind {
	case types.KindArray:
		return c.unify(dt.Elem, at.Elem, b) && c.unifyNat(dt.Nat, at.Nat, b)
	case types.KindOption:
		return c.unify(dt.Elem, at.Elem, b)
	case types.KindTuple:
		di, _ := c.types.TupleInfo(declared)
		ai, _ := c.types.TupleInfo(actual)
		if di == nil || ai == nil || len(di.Elems) != len(ai.Elems) {
			return false
		}
		for i := range di.Elems {
			if !c.unify(di.Elems[i], ai.Elems[i], b) {
				return false
			}
		}
		return true
	case types.KindStruct:
		di, _ := c.types.StructInfo(declared)
		ai, _ := c.types.StructInfo(actual)
		if di == nil || ai == nil || di.Name != ai.Name {
			return false
		}
		if len(di.TypeArgs) != len(ai.TypeArgs) || len(di.NatArgs) != len(ai.NatArgs) {
			return false
		}
		for i := range di.TypeArgs {
			if !c.unify(di.TypeArgs[i], ai.TypeArgs[i], b) {
				return false
			}
		}
		for i := range di.NatArgs {
			if !c.unifyNat(di.NatArgs[i], ai.NatArgs[i], b) {
				return false
			}
		}
		return true
	case types.KindFn:
		di, _ := c.types.FnInfo(declared)
		ai, _ := c.types.FnInfo(actual)
		if di == nil || ai == nil || len(di.Params) != len(ai.Params) {
			return false
		}
		for i := range di.Params {
			if di.Params[i].Owned != ai.Params[i].Owned {
				return false
			}
			if !c.unify(di.Params[i].Type, ai.Params[i].Type, b) {
				return false
			}
		}
		return c.unify(di.Result, ai.Result, b)
	default:
		return false
	}
}

func (c *Checker) unifyNat(declared, actual types.Nat, b *bindingSet) bool {
	if declared == actual {
		return true
	}
	if declared.Known {
		return actual.Known && declared.Value == actual.Value
	}
	info, ok := c.types.NatVarInfo(declared.Var)
	if ok && info.Owner == b.owner {
		return b.bindNat(declared.Var, actual)
	}
	return false
}

// substitute rewrites a declared type with the bound generic arguments,
// interning whatever composite types the substitution produces.
func (c *Checker) substitute(declared types.TypeID, b *bindingSet) types.TypeID {
	if declared == types.NoTypeID {
		return types.NoTypeID
	}
	dt := c.types.MustLookup(declared)
	switch dt.Kind {
	case types.KindTypeVar:
		if bound, ok := b.typeVars[declared]; ok {
			return bound
		}
		return declared
	case types.KindArray:
		return c.types.Intern(types.MakeArray(c.substitute(dt.Elem, b), c.substituteNat(dt.Nat, b)))
	case types.KindOption:
		return c.types.Intern(types.MakeOption(c.substitute(dt.Elem, b)))
	case types.KindTuple:
		info, ok := c.types.TupleInfo(declared)
		if !ok {
			return declared
		}
		elems := make([]types.TypeID, 0, len(info.Elems))
		for _, e := range info.Elems {
			elems = append(elems, c.substitute(e, b))
		}
		return c.types.RegisterTuple(elems)
	case types.KindStruct:
		info, ok := c.types.StructInfo(declared)
		if !ok {
			return declared
		}
		typeArgs := make([]types.TypeID, 0, len(info.TypeArgs))
		for _, a := range info.TypeArgs {
			typeArgs = append(typeArgs, c.substitute(a, b))
		}
		natArgs := make([]types.Nat, 0, len(info.NatArgs))
		for _, n := range info.NatArgs {
			natArgs = append(natArgs, c.substituteNat(n, b))
		}
		entry, err := c.table.LookupStruct(c.strings.MustLookup(info.Name))
		if err != nil {
			return declared
		}
		id, err := c.res.InstantiateStruct(entry, typeArgs, natArgs)
		if err != nil {
			return declared
		}
		return id
	case types.KindFn:
		info, ok := c.types.FnInfo(declared)
		if !ok {
			return declared
		}
		params := make([]types.Param, 0, len(info.Params))
		for _, p := range info.Params {
			params = append(params, types.Param{Type: c.substitute(p.Type, b), Owned: p.Owned})
		}
		return c.types.RegisterFn(params, c.substitute(info.Result, b))
	default:
		return declared
	}
}

func (c *Checker) substituteNat(n types.Nat, b *bindingSet) types.Nat {
	if n.Known {
		return n
	}
	if bound, ok := b.natVars[n.Var]; ok {
		return bound
	}
	return n
}

// unresolvedNames lists the callee variables unification failed to bind.
func (c *Checker) unresolvedNames(typeVarIDs []types.TypeID, natVarIDs []types.NatVarID, b *bindingSet) []string {
	var missing []string
	for _, v := range typeVarIDs {
		if _, ok := b.typeVars[v]; !ok {
			if info, ok := c.types.TypeVarInfo(v); ok {
				missing = append(missing, c.lookupName(info.Name))
			}
		}
	}
	for _, v := range natVarIDs {
		if _, ok := b.natVars[v]; !ok {
			if info, ok := c.types.NatVarInfo(v); ok {
				missing = append(missing, c.lookupName(info.Name))
			}
		}
	}
	return missing
}

func (c *Checker) lookupName(id source.StringID) string {
	if s, ok := c.strings.Lookup(id); ok {
		return s
	}
	return "?"
}
