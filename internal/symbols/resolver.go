package symbols

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/source"
	"quill/internal/types"
)

// Resolver turns syntactic type expressions into interned TypeIDs within a
// generic scope (the type/nat variables of the enclosing definition).
type Resolver struct {
	Types    *types.Interner
	Strings  *source.Interner
	Table    *Table
	TypeVars map[string]types.TypeID
	NatVars  map[string]types.Nat

	// In-progress struct instantiations, shared across nested resolvers to
	// detect recursive struct layouts.
	resolving map[source.StringID]bool
}

// NewResolver builds a resolver without any generic variables in scope.
func NewResolver(tys *types.Interner, strs *source.Interner, table *Table) *Resolver {
	return &Resolver{
		Types:     tys,
		Strings:   strs,
		Table:     table,
		resolving: make(map[source.StringID]bool),
	}
}

// child shares the interners and the cycle-guard set but swaps the scope.
func (r *Resolver) child(typeVars map[string]types.TypeID, natVars map[string]types.Nat) *Resolver {
	return &Resolver{
		Types:     r.Types,
		Strings:   r.Strings,
		Table:     r.Table,
		TypeVars:  typeVars,
		NatVars:   natVars,
		resolving: r.resolving,
	}
}

// ResolveType resolves a syntactic type to a TypeID. Generic variables in
// scope take precedence over globally registered names.
func (r *Resolver) ResolveType(te *ast.TypeExpr) (types.TypeID, error) {
	if te == nil {
		return r.Types.Builtins().Unit, nil
	}
	switch te.Kind {
	case ast.TypeName:
		return r.resolveNamed(te)
	case ast.TypeTuple:
		elems := make([]types.TypeID, 0, len(te.Args))
		for _, a := range te.Args {
			id, err := r.ResolveType(a)
			if err != nil {
				return types.NoTypeID, err
			}
			elems = append(elems, id)
		}
		if len(elems) == 0 {
			return r.Types.Builtins().Unit, nil
		}
		return r.Types.RegisterTuple(elems), nil
	case ast.TypeArray:
		if len(te.Args) != 1 {
			return types.NoTypeID, fmt.Errorf("array type expects one element type")
		}
		elem, err := r.ResolveType(te.Args[0])
		if err != nil {
			return types.NoTypeID, err
		}
		nat, err := r.ResolveNat(te.Len)
		if err != nil {
			return types.NoTypeID, err
		}
		return r.Types.Intern(types.MakeArray(elem, nat)), nil
	case ast.TypeOption:
		if len(te.Args) != 1 {
			return types.NoTypeID, fmt.Errorf("option type expects one element type")
		}
		elem, err := r.ResolveType(te.Args[0])
		if err != nil {
			return types.NoTypeID, err
		}
		return r.Types.Intern(types.MakeOption(elem)), nil
	default:
		return types.NoTypeID, fmt.Errorf("unsupported type expression kind %d", te.Kind)
	}
}

// ResolveNat resolves a syntactic nat to a literal or an in-scope variable.
func (r *Resolver) ResolveNat(ne *ast.NatExpr) (types.Nat, error) {
	if ne == nil {
		return types.Nat{}, fmt.Errorf("missing nat argument")
	}
	if ne.Lit != nil {
		return types.NatLit(*ne.Lit), nil
	}
	if ne.Var != "" {
		if r.NatVars != nil {
			if n, ok := r.NatVars[ne.Var]; ok {
				return n, nil
			}
		}
		return types.Nat{}, fmt.Errorf("%w: nat variable %s", ErrUnknownName, ne.Var)
	}
	return types.Nat{}, fmt.Errorf("empty nat expression")
}

func (r *Resolver) resolveNamed(te *ast.TypeExpr) (types.TypeID, error) {
	if r.TypeVars != nil {
		if id, ok := r.TypeVars[te.Name]; ok {
			if len(te.Args) > 0 || len(te.NatArgs) > 0 {
				return types.NoTypeID, fmt.Errorf("%w: type variable %s takes no arguments", ErrArityMismatch, te.Name)
			}
			return id, nil
		}
	}

	b := r.Types.Builtins()
	switch te.Name {
	case "unit":
		return b.Unit, nil
	case "bool":
		return b.Bool, nil
	case "int":
		return b.Int, nil
	case "float":
		return b.Float, nil
	case "qubit":
		return b.Qubit, nil
	case "rng":
		return b.Rng, nil
	}

	if r.Table == nil {
		return types.NoTypeID, fmt.Errorf("%w: %s", ErrUnknownName, te.Name)
	}
	entry, err := r.Table.LookupStruct(te.Name)
	if err != nil {
		return types.NoTypeID, fmt.Errorf("%w: %s", ErrUnknownName, te.Name)
	}
	if len(te.Args) != len(entry.TypeParams) || len(te.NatArgs) != len(entry.NatParams) {
		return types.NoTypeID, fmt.Errorf("%w: %s expects %d type and %d nat arguments",
			ErrArityMismatch, te.Name, len(entry.TypeParams), len(entry.NatParams))
	}
	typeArgs := make([]types.TypeID, 0, len(te.Args))
	for _, a := range te.Args {
		id, err := r.ResolveType(a)
		if err != nil {
			return types.NoTypeID, err
		}
		typeArgs = append(typeArgs, id)
	}
	natArgs := make([]types.Nat, 0, len(te.NatArgs))
	for _, n := range te.NatArgs {
		nat, err := r.ResolveNat(n)
		if err != nil {
			return types.NoTypeID, err
		}
		natArgs = append(natArgs, nat)
	}
	return r.InstantiateStruct(entry, typeArgs, natArgs)
}

// InstantiateStruct resolves the entry's fields under the given arguments
// and interns the resulting struct instance. Instances are deduplicated by
// (name, typeArgs, natArgs).
func (r *Resolver) InstantiateStruct(entry *StructEntry, typeArgs []types.TypeID, natArgs []types.Nat) (types.TypeID, error) {
	if len(typeArgs) != len(entry.TypeParams) || len(natArgs) != len(entry.NatParams) {
		return types.NoTypeID, fmt.Errorf("%w: struct %s", ErrArityMismatch, r.Strings.MustLookup(entry.Name))
	}
	if id, ok := r.Types.FindStructInstance(entry.Name, typeArgs, natArgs); ok {
		return id, nil
	}
	if r.resolving[entry.Name] {
		return types.NoTypeID, fmt.Errorf("%w: %s", ErrRecursiveStruct, r.Strings.MustLookup(entry.Name))
	}
	r.resolving[entry.Name] = true
	defer delete(r.resolving, entry.Name)

	typeVars := make(map[string]types.TypeID, len(entry.TypeParams))
	for i, p := range entry.TypeParams {
		typeVars[r.Strings.MustLookup(p)] = typeArgs[i]
	}
	natVars := make(map[string]types.Nat, len(entry.NatParams))
	for i, p := range entry.NatParams {
		natVars[r.Strings.MustLookup(p)] = natArgs[i]
	}
	sub := r.child(typeVars, natVars)

	fields := make([]types.Field, 0, len(entry.Decl.Fields))
	for _, f := range entry.Decl.Fields {
		ft, err := sub.ResolveType(f.Type)
		if err != nil {
			return types.NoTypeID, err
		}
		fields = append(fields, types.Field{Name: r.Strings.Intern(f.Name), Type: ft})
	}
	return r.Types.RegisterStruct(entry.Name, typeArgs, natArgs, fields), nil
}
