package mono

import (
	"quill/internal/types"
)

// substMap carries the generic arguments of the specialization being built.
type substMap struct {
	typeVars map[types.TypeID]types.TypeID
	natVars  map[types.NatVarID]types.Nat
}

func newSubstMap() *substMap {
	return &substMap{
		typeVars: make(map[types.TypeID]types.TypeID),
		natVars:  make(map[types.NatVarID]types.Nat),
	}
}

// subst rewrites a type under the substitution, interning composites as
// needed. Callers hold the engine lock: the type interner is not safe for
// concurrent mutation.
func (e *Engine) subst(id types.TypeID, sm *substMap) types.TypeID {
	if id == types.NoTypeID {
		return types.NoTypeID
	}
	tt := e.types.MustLookup(id)
	switch tt.Kind {
	case types.KindTypeVar:
		if bound, ok := sm.typeVars[id]; ok {
			return bound
		}
		return id
	case types.KindArray:
		return e.types.Intern(types.MakeArray(e.subst(tt.Elem, sm), e.substNat(tt.Nat, sm)))
	case types.KindOption:
		return e.types.Intern(types.MakeOption(e.subst(tt.Elem, sm)))
	case types.KindTuple:
		info, ok := e.types.TupleInfo(id)
		if !ok {
			return id
		}
		elems := make([]types.TypeID, 0, len(info.Elems))
		for _, el := range info.Elems {
			elems = append(elems, e.subst(el, sm))
		}
		return e.types.RegisterTuple(elems)
	case types.KindStruct:
		info, ok := e.types.StructInfo(id)
		if !ok {
			return id
		}
		typeArgs := make([]types.TypeID, 0, len(info.TypeArgs))
		for _, a := range info.TypeArgs {
			typeArgs = append(typeArgs, e.subst(a, sm))
		}
		natArgs := make([]types.Nat, 0, len(info.NatArgs))
		for _, n := range info.NatArgs {
			natArgs = append(natArgs, e.substNat(n, sm))
		}
		entry, err := e.table.LookupStruct(e.strings.MustLookup(info.Name))
		if err != nil {
			return id
		}
		out, err := e.res.InstantiateStruct(entry, typeArgs, natArgs)
		if err != nil {
			return id
		}
		return out
	case types.KindFn:
		info, ok := e.types.FnInfo(id)
		if !ok {
			return id
		}
		params := make([]types.Param, 0, len(info.Params))
		for _, p := range info.Params {
			params = append(params, types.Param{Type: e.subst(p.Type, sm), Owned: p.Owned})
		}
		return e.types.RegisterFn(params, e.subst(info.Result, sm))
	default:
		return id
	}
}

func (e *Engine) substNat(n types.Nat, sm *substMap) types.Nat {
	if n.Known {
		return n
	}
	if bound, ok := sm.natVars[n.Var]; ok {
		return bound
	}
	return n
}
