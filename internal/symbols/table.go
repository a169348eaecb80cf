package symbols

import (
	"fmt"
	"sync"

	"quill/internal/ast"
	"quill/internal/source"
	"quill/internal/types"
)

// Table maps definition names to their declared generic signatures. It is
// populated once per compilation unit (single-threaded registration phase),
// then frozen; concurrent lookups are safe because nothing mutates after
// the freeze.
type Table struct {
	mu      sync.RWMutex
	frozen  bool
	strings *source.Interner
	types   *types.Interner

	funcs   map[source.StringID]*Signature
	structs map[source.StringID]*StructEntry

	funcOrder   []*Signature
	structOrder []*StructEntry

	nextSym SymbolID
}

// NewTable creates an empty signature table over the shared interners.
func NewTable(strs *source.Interner, tys *types.Interner) *Table {
	return &Table{
		strings: strs,
		types:   tys,
		funcs:   make(map[source.StringID]*Signature),
		structs: make(map[source.StringID]*StructEntry),
	}
}

// Strings returns the shared string interner.
func (t *Table) Strings() *source.Interner { return t.strings }

// Types returns the shared type interner.
func (t *Table) Types() *types.Interner { return t.types }

// Freeze ends the registration phase. Further registrations fail.
func (t *Table) Freeze() {
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
}

// RegisterStructDecl registers a struct declaration and interns its generic
// instance (the struct applied to its own variables). Field types resolve
// against the struct's own parameters; unknown names or recursive layouts
// surface here.
func (t *Table) RegisterStructDecl(decl *ast.StructDecl) (*StructEntry, error) {
	t.mu.Lock()
	if t.frozen {
		t.mu.Unlock()
		return nil, ErrFrozen
	}
	nameID := t.strings.Intern(decl.Name)
	if _, exists := t.structs[nameID]; exists {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: struct %s", ErrDuplicateDefinition, decl.Name)
	}

	t.nextSym++
	entry := &StructEntry{
		ID:   t.nextSym,
		Name: nameID,
		Decl: decl,
		Span: decl.Span,
	}
	for _, p := range decl.TypeParams {
		entry.TypeParams = append(entry.TypeParams, t.strings.Intern(p))
	}
	for _, p := range decl.NatParams {
		entry.NatParams = append(entry.NatParams, t.strings.Intern(p))
	}
	for i, p := range entry.TypeParams {
		entry.TypeVarIDs = append(entry.TypeVarIDs, t.types.RegisterTypeVar(p, uint32(entry.ID), uint32(i)))
	}
	for i, p := range entry.NatParams {
		entry.NatVarIDs = append(entry.NatVarIDs, t.types.RegisterNatVar(p, uint32(entry.ID), uint32(i)))
	}

	// Entry goes into the map before fields resolve so self-references hit
	// the recursion guard instead of an unknown-name miss.
	t.structs[nameID] = entry
	t.structOrder = append(t.structOrder, entry)
	t.mu.Unlock()

	// Field resolution re-enters the table for nested struct names, so it
	// runs outside the lock. Registration is a single-threaded phase.
	genericNats := make([]types.Nat, 0, len(entry.NatVarIDs))
	for _, v := range entry.NatVarIDs {
		genericNats = append(genericNats, types.NatRef(v))
	}
	res := NewResolver(t.types, t.strings, t)
	generic, err := res.InstantiateStruct(entry, entry.TypeVarIDs, genericNats)
	if err != nil {
		return entry, err
	}
	entry.Generic = generic
	return entry, nil
}

// BuiltinParam describes one parameter of a prelude signature.
type BuiltinParam struct {
	Name  string
	Type  *ast.TypeExpr
	Owned bool
}

// RegisterBuiltin registers a prelude function or operator.
func (t *Table) RegisterBuiltin(name string, typeParams, natParams []string, params []BuiltinParam, result *ast.TypeExpr) (*Signature, error) {
	return t.register(name, typeParams, natParams, params, result, nil, true, source.Span{})
}

// RegisterFunc registers a user function declaration. Methods register
// under "Receiver.name" with the receiver's generic parameters prepended
// and a synthesized self parameter.
func (t *Table) RegisterFunc(decl *ast.FuncDecl) (*Signature, error) {
	name := decl.Name
	typeParams := decl.TypeParams
	natParams := decl.NatParams
	params := make([]BuiltinParam, 0, len(decl.Params)+1)

	if decl.Receiver != "" {
		recv, err := t.LookupStruct(decl.Receiver)
		if err != nil {
			return nil, fmt.Errorf("%w: receiver %s", ErrUnknownName, decl.Receiver)
		}
		name = decl.Receiver + "." + decl.Name
		recvType := &ast.TypeExpr{Kind: ast.TypeName, Name: decl.Receiver}
		var merged []string
		for _, p := range recv.TypeParams {
			pn := t.strings.MustLookup(p)
			merged = append(merged, pn)
			recvType.Args = append(recvType.Args, ast.NamedType(pn))
		}
		typeParams = append(merged, typeParams...)
		var mergedNats []string
		for _, p := range recv.NatParams {
			pn := t.strings.MustLookup(p)
			mergedNats = append(mergedNats, pn)
			recvType.NatArgs = append(recvType.NatArgs, ast.NatVar(pn))
		}
		natParams = append(mergedNats, natParams...)
		params = append(params, BuiltinParam{Name: "self", Type: recvType, Owned: decl.SelfOwned})
	}

	for _, p := range decl.Params {
		params = append(params, BuiltinParam{Name: p.Name, Type: p.Type, Owned: p.Owned})
	}
	return t.register(name, typeParams, natParams, params, decl.Result, decl, false, decl.Span)
}

func (t *Table) register(name string, typeParams, natParams []string, params []BuiltinParam, result *ast.TypeExpr, decl *ast.FuncDecl, builtin bool, span source.Span) (*Signature, error) {
	t.mu.Lock()
	if t.frozen {
		t.mu.Unlock()
		return nil, ErrFrozen
	}
	nameID := t.strings.Intern(name)
	if _, exists := t.funcs[nameID]; exists {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateDefinition, name)
	}

	t.nextSym++
	sig := &Signature{
		ID:      t.nextSym,
		Name:    nameID,
		Span:    span,
		Builtin: builtin,
		Decl:    decl,
	}
	typeVars := make(map[string]types.TypeID, len(typeParams))
	for i, p := range typeParams {
		pid := t.strings.Intern(p)
		sig.TypeParams = append(sig.TypeParams, pid)
		v := t.types.RegisterTypeVar(pid, uint32(sig.ID), uint32(i))
		sig.TypeVarIDs = append(sig.TypeVarIDs, v)
		typeVars[p] = v
	}
	natVars := make(map[string]types.Nat, len(natParams))
	for i, p := range natParams {
		pid := t.strings.Intern(p)
		sig.NatParams = append(sig.NatParams, pid)
		v := t.types.RegisterNatVar(pid, uint32(sig.ID), uint32(i))
		sig.NatVarIDs = append(sig.NatVarIDs, v)
		natVars[p] = types.NatRef(v)
	}
	t.mu.Unlock()

	// Type resolution re-enters the table for struct names, so it runs
	// outside the lock.
	res := NewResolver(t.types, t.strings, t)
	res.TypeVars = typeVars
	res.NatVars = natVars

	for _, p := range params {
		pt, err := res.ResolveType(p.Type)
		if err != nil {
			return nil, err
		}
		sig.Params = append(sig.Params, ParamSig{
			Name:  t.strings.Intern(p.Name),
			Type:  pt,
			Owned: p.Owned,
		})
	}
	rt, err := res.ResolveType(result)
	if err != nil {
		return nil, err
	}
	sig.Result = rt

	t.mu.Lock()
	t.funcs[nameID] = sig
	t.funcOrder = append(t.funcOrder, sig)
	t.mu.Unlock()
	return sig, nil
}

// Lookup finds a function signature by name.
func (t *Table) Lookup(name string) (*Signature, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nameID := t.strings.Intern(name)
	sig, ok := t.funcs[nameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return sig, nil
}

// LookupStruct finds a struct entry by name.
func (t *Table) LookupStruct(name string) (*StructEntry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nameID := t.strings.Intern(name)
	entry, ok := t.structs[nameID]
	if !ok {
		return nil, fmt.Errorf("%w: struct %s", ErrUnknownName, name)
	}
	return entry, nil
}

// Funcs returns all registered signatures in registration order.
func (t *Table) Funcs() []*Signature {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.funcOrder
}

// Structs returns all registered struct entries in registration order.
func (t *Table) Structs() []*StructEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.structOrder
}
