package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"quill/internal/source"
)

// Field is one named struct field with its resolved type.
type Field struct {
	Name source.StringID
	Type TypeID
}

// StructInfo stores metadata for one struct instance. A generic struct
// yields one StructInfo per distinct (typeArgs, natArgs) combination; the
// field types already have the arguments substituted in.
type StructInfo struct {
	Name     source.StringID
	TypeArgs []TypeID
	NatArgs  []Nat
	Fields   []Field
}

// RegisterStruct creates or finds a struct instance type.
func (in *Interner) RegisterStruct(name source.StringID, typeArgs []TypeID, natArgs []Nat, fields []Field) TypeID {
	if id, ok := in.FindStructInstance(name, typeArgs, natArgs); ok {
		return id
	}
	slot := in.appendStructInfo(StructInfo{
		Name:     name,
		TypeArgs: cloneTypeArgs(typeArgs),
		NatArgs:  cloneNatArgs(natArgs),
		Fields:   slices.Clone(fields),
	})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// FindStructInstance locates an already-registered struct instance.
func (in *Interner) FindStructInstance(name source.StringID, typeArgs []TypeID, natArgs []Nat) (TypeID, bool) {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindStruct {
			continue
		}
		if int(tt.Payload) >= len(in.structs) {
			continue
		}
		info := in.structs[tt.Payload]
		if info.Name == name && slices.Equal(info.TypeArgs, typeArgs) && slices.Equal(info.NatArgs, natArgs) {
			return id, true
		}
	}
	return NoTypeID, false
}

// StructInfo retrieves struct metadata by TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		return nil, false
	}
	if int(tt.Payload) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[tt.Payload], true
}

// FieldType returns the type of the named field, if present.
func (info *StructInfo) FieldType(name source.StringID) (TypeID, bool) {
	for _, f := range info.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return NoTypeID, false
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	in.structs = append(in.structs, info)
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	return slot
}
