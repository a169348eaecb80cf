package types

import (
	"fmt"
	"strings"

	"quill/internal/source"
)

// Format renders a type for diagnostics and specialization names.
func Format(in *Interner, strs *source.Interner, id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit, KindBool, KindInt, KindFloat, KindQubit, KindRng:
		return tt.Kind.String()
	case KindArray:
		return fmt.Sprintf("array[%s; %s]", Format(in, strs, tt.Elem), tt.Nat)
	case KindOption:
		return fmt.Sprintf("option[%s]", Format(in, strs, tt.Elem))
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return "(?)"
		}
		parts := make([]string, 0, len(info.Elems))
		for _, e := range info.Elems {
			parts = append(parts, Format(in, strs, e))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return "struct?"
		}
		name := lookupName(strs, info.Name)
		if len(info.TypeArgs) == 0 && len(info.NatArgs) == 0 {
			return name
		}
		args := make([]string, 0, len(info.TypeArgs)+len(info.NatArgs))
		for _, a := range info.TypeArgs {
			args = append(args, Format(in, strs, a))
		}
		for _, n := range info.NatArgs {
			args = append(args, n.String())
		}
		return name + "[" + strings.Join(args, ", ") + "]"
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return "fn?"
		}
		parts := make([]string, 0, len(info.Params))
		for _, p := range info.Params {
			s := Format(in, strs, p.Type)
			if p.Owned {
				s = "owned " + s
			}
			parts = append(parts, s)
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + Format(in, strs, info.Result)
	case KindTypeVar:
		if info, ok := in.TypeVarInfo(id); ok {
			return lookupName(strs, info.Name)
		}
		return "?T"
	default:
		return tt.Kind.String()
	}
}

func lookupName(strs *source.Interner, id source.StringID) string {
	if strs == nil {
		return fmt.Sprintf("name#%d", id)
	}
	if s, ok := strs.Lookup(id); ok && s != "" {
		return s
	}
	return fmt.Sprintf("name#%d", id)
}
