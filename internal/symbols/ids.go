package symbols

// SymbolID identifies one registered definition (function or struct).
// IDs double as the owner namespace for generic type/nat variables, so
// variables of different definitions never unify with each other.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol.
const NoSymbolID SymbolID = 0

// IsValid reports whether the ID refers to a registered symbol.
func (id SymbolID) IsValid() bool {
	return id != NoSymbolID
}
