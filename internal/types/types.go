package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindQubit
	KindRng
	KindTuple
	KindArray
	KindStruct
	KindFn
	KindOption
	KindTypeVar
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindQubit:
		return "qubit"
	case KindRng:
		return "rng"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindFn:
		return "fn"
	case KindOption:
		return "option"
	case KindTypeVar:
		return "typevar"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// NatVarID identifies a compile-time natural-number variable.
type NatVarID uint32

// NoNatVarID marks the absence of a nat variable.
const NoNatVarID NatVarID = 0

// Nat is a compile-time natural argument: either a known value or a
// reference to a nat variable pending resolution.
type Nat struct {
	Known bool
	Value uint64
	Var   NatVarID
}

// NatLit describes a known compile-time natural.
func NatLit(v uint64) Nat {
	return Nat{Known: true, Value: v}
}

// NatRef describes a reference to a nat variable.
func NatRef(id NatVarID) Nat {
	return Nat{Var: id}
}

func (n Nat) String() string {
	if n.Known {
		return fmt.Sprintf("%d", n.Value)
	}
	return fmt.Sprintf("n#%d", n.Var)
}

// Type is a compact descriptor for any supported type. Aggregate kinds keep
// their metadata in side tables addressed by Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID // array element / option inner
	Nat     Nat    // array length
	Payload uint32 // slot into kind-specific info tables
}

// MakeArray describes array[elem; nat].
func MakeArray(elem TypeID, nat Nat) Type {
	return Type{Kind: KindArray, Elem: elem, Nat: nat}
}

// MakeOption describes option[elem].
func MakeOption(elem TypeID) Type {
	return Type{Kind: KindOption, Elem: elem}
}
