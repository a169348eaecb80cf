package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive leaf types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Int     TypeID
	Float   TypeID
	Qubit   TypeID
	Rng     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Not safe for concurrent mutation; the driver interns during the
// single-threaded registration phase, checking only reads.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	tuples   []TupleInfo
	structs  []StructInfo
	fns      []FnInfo
	typeVars []TypeVarInfo
	natVars  []NatVarInfo

	ownership map[TypeID]OwnershipClass
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:     make(map[typeKey]TypeID, 64),
		ownership: make(map[TypeID]OwnershipClass),
	}
	// Reserve slot 0 of every side table as an invalid sentinel.
	in.tuples = append(in.tuples, TupleInfo{})
	in.structs = append(in.structs, StructInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.typeVars = append(in.typeVars, TypeVarInfo{})
	in.natVars = append(in.natVars, NatVarInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.Qubit = in.Intern(Type{Kind: KindQubit})
	in.builtins.Rng = in.Intern(Type{Kind: KindRng})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len returns the number of interned descriptors, the invalid sentinel
// included.
func (in *Interner) Len() int {
	return len(in.types)
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Nat     Nat
	Payload uint32
}

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	out := make([]TypeID, len(args))
	copy(out, args)
	return out
}

func cloneNatArgs(args []Nat) []Nat {
	if len(args) == 0 {
		return nil
	}
	out := make([]Nat, len(args))
	copy(out, args)
	return out
}
