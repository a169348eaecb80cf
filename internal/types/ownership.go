package types

// OwnershipClass ranks how values of a type may be used. The order matters:
// aggregates take the maximum class of their parts.
type OwnershipClass uint8

const (
	// Copyable values may be duplicated and dropped freely.
	Copyable OwnershipClass = iota
	// Affine values may be dropped but never duplicated.
	Affine
	// Linear values must be consumed exactly once.
	Linear
)

func (c OwnershipClass) String() string {
	switch c {
	case Copyable:
		return "copyable"
	case Affine:
		return "affine"
	case Linear:
		return "linear"
	}
	return "unknown"
}

// Classify derives the ownership class of a type bottom-up from the leaf
// builtins: qubit is linear, rng is affine, classical primitives are
// copyable. Aggregates take the max of their parts, option is transparent,
// function values are copyable. An unresolved type variable classifies as
// linear: inside a generic body that is the only sound assumption.
// Results are memoized per TypeID; classification of a closed type never
// changes.
func (in *Interner) Classify(id TypeID) OwnershipClass {
	if c, ok := in.ownership[id]; ok {
		return c
	}
	c := in.classify(id)
	in.ownership[id] = c
	return c
}

func (in *Interner) classify(id TypeID) OwnershipClass {
	tt, ok := in.Lookup(id)
	if !ok {
		return Copyable
	}
	switch tt.Kind {
	case KindQubit:
		return Linear
	case KindRng:
		return Affine
	case KindTypeVar:
		return Linear
	case KindArray, KindOption:
		return in.Classify(tt.Elem)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return Copyable
		}
		return in.maxClass(info.Elems)
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return Copyable
		}
		c := Copyable
		for _, f := range info.Fields {
			if fc := in.Classify(f.Type); fc > c {
				c = fc
			}
		}
		return c
	default:
		return Copyable
	}
}

func (in *Interner) maxClass(ids []TypeID) OwnershipClass {
	c := Copyable
	for _, id := range ids {
		if ec := in.Classify(id); ec > c {
			c = ec
		}
	}
	return c
}
