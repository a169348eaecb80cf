package symbols

import (
	"quill/internal/ast"
	"quill/internal/source"
	"quill/internal/types"
)

// ParamSig is one declared parameter: its resolved type (which may mention
// the signature's own type/nat variables) and its ownership requirement.
type ParamSig struct {
	Name  source.StringID
	Type  types.TypeID
	Owned bool
}

// Signature is the declared generic signature of one function, immutable
// after registration.
type Signature struct {
	ID         SymbolID
	Name       source.StringID
	TypeParams []source.StringID
	NatParams  []source.StringID

	// Interned variable IDs, in declaration order. Unification binds these.
	TypeVarIDs []types.TypeID
	NatVarIDs  []types.NatVarID

	Params []ParamSig
	Result types.TypeID

	Span    source.Span
	Builtin bool

	// Decl is nil for builtins; user definitions keep their body for
	// checking and monomorphisation.
	Decl *ast.FuncDecl
}

// IsGeneric reports whether the signature declares any generic parameter.
func (s *Signature) IsGeneric() bool {
	return len(s.TypeParams) > 0 || len(s.NatParams) > 0
}

// StructEntry is the declared shape of one struct. Field types are resolved
// per instantiation; the entry itself stores only the declaration.
type StructEntry struct {
	ID         SymbolID
	Name       source.StringID
	TypeParams []source.StringID
	NatParams  []source.StringID
	Decl       *ast.StructDecl
	Span       source.Span

	// Generic is the struct instantiated with its own variables; method
	// bodies check their receiver against this instance.
	Generic    types.TypeID
	TypeVarIDs []types.TypeID
	NatVarIDs  []types.NatVarID
}

// IsGeneric reports whether the struct declares any generic parameter.
func (e *StructEntry) IsGeneric() bool {
	return len(e.TypeParams) > 0 || len(e.NatParams) > 0
}
