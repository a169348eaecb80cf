package types

import (
	"fmt"

	"fortio.org/safecast"

	"quill/internal/source"
)

// TypeVarInfo stores metadata about a generic type variable. Owner is an
// opaque ID of the declaring definition so variables of different generics
// never unify with each other.
type TypeVarInfo struct {
	Name  source.StringID
	Owner uint32
	Index uint32
}

// NatVarInfo stores metadata about a compile-time nat variable.
type NatVarInfo struct {
	Name  source.StringID
	Owner uint32
	Index uint32
}

// RegisterTypeVar allocates a new generic type-variable descriptor.
func (in *Interner) RegisterTypeVar(name source.StringID, owner, index uint32) TypeID {
	slot := in.appendTypeVarInfo(TypeVarInfo{Name: name, Owner: owner, Index: index})
	return in.internRaw(Type{
		Kind:    KindTypeVar,
		Payload: slot,
	})
}

// TypeVarInfo returns metadata for the provided type variable.
func (in *Interner) TypeVarInfo(id TypeID) (*TypeVarInfo, bool) {
	if id == NoTypeID {
		return nil, false
	}
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypeVar {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.typeVars) {
		return nil, false
	}
	info := in.typeVars[tt.Payload]
	return &info, true
}

// RegisterNatVar allocates a new nat-variable ID.
func (in *Interner) RegisterNatVar(name source.StringID, owner, index uint32) NatVarID {
	in.natVars = append(in.natVars, NatVarInfo{Name: name, Owner: owner, Index: index})
	slot, err := safecast.Conv[uint32](len(in.natVars) - 1)
	if err != nil {
		panic(fmt.Errorf("nat var index overflow: %w", err))
	}
	return NatVarID(slot)
}

// NatVarInfo returns metadata for the provided nat variable.
func (in *Interner) NatVarInfo(id NatVarID) (*NatVarInfo, bool) {
	if id == NoNatVarID || int(id) >= len(in.natVars) {
		return nil, false
	}
	info := in.natVars[id]
	return &info, true
}

func (in *Interner) appendTypeVarInfo(info TypeVarInfo) uint32 {
	in.typeVars = append(in.typeVars, info)
	slot, err := safecast.Conv[uint32](len(in.typeVars) - 1)
	if err != nil {
		panic(fmt.Errorf("type var index overflow: %w", err))
	}
	return slot
}
