package types

// Concrete reports whether a type is closed: no type variable occurs inside
// it and every array length is a known value. Only closed types may be
// handed to the lowering stage.
func (in *Interner) Concrete(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindTypeVar:
		return false
	case KindArray:
		return tt.Nat.Known && in.Concrete(tt.Elem)
	case KindOption:
		return in.Concrete(tt.Elem)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return false
		}
		for _, e := range info.Elems {
			if !in.Concrete(e) {
				return false
			}
		}
		return true
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return false
		}
		for _, n := range info.NatArgs {
			if !n.Known {
				return false
			}
		}
		for _, a := range info.TypeArgs {
			if !in.Concrete(a) {
				return false
			}
		}
		for _, f := range info.Fields {
			if !in.Concrete(f.Type) {
				return false
			}
		}
		return true
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return false
		}
		for _, p := range info.Params {
			if !in.Concrete(p.Type) {
				return false
			}
		}
		return in.Concrete(info.Result)
	default:
		return true
	}
}

// ContainsTypeVar reports whether any type variable occurs inside id.
func (in *Interner) ContainsTypeVar(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindTypeVar:
		return true
	case KindArray, KindOption:
		return in.ContainsTypeVar(tt.Elem)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return false
		}
		for _, e := range info.Elems {
			if in.ContainsTypeVar(e) {
				return true
			}
		}
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return false
		}
		for _, a := range info.TypeArgs {
			if in.ContainsTypeVar(a) {
				return true
			}
		}
		for _, f := range info.Fields {
			if in.ContainsTypeVar(f.Type) {
				return true
			}
		}
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return false
		}
		for _, p := range info.Params {
			if in.ContainsTypeVar(p.Type) {
				return true
			}
		}
		return in.ContainsTypeVar(info.Result)
	}
	return false
}
