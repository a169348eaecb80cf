package ast

// TypeExprKind discriminates syntactic type expressions.
type TypeExprKind uint8

const (
	// TypeName references a builtin, a struct, or a type variable by name.
	TypeName TypeExprKind = iota
	// TypeTuple is (T1, ..., Tn); the empty tuple is unit.
	TypeTuple
	// TypeArray is array[T; n].
	TypeArray
	// TypeOption is option[T].
	TypeOption
)

// TypeExpr is a syntactic type as written by the user (or the prelude
// catalog). It doubles as the YAML schema for the embedded builtin
// signatures, which is why it carries yaml tags alongside msgpack ones.
type TypeExpr struct {
	Kind    TypeExprKind `msgpack:"kind" yaml:"kind"`
	Name    string       `msgpack:"name,omitempty" yaml:"name,omitempty"`
	Args    []*TypeExpr  `msgpack:"args,omitempty" yaml:"args,omitempty"`
	NatArgs []*NatExpr   `msgpack:"nat_args,omitempty" yaml:"nat_args,omitempty"`
	Len     *NatExpr     `msgpack:"len,omitempty" yaml:"len,omitempty"`
}

// NatExpr is a syntactic compile-time natural: a literal or a reference to
// a nat variable in scope.
type NatExpr struct {
	Lit *uint64 `msgpack:"lit,omitempty" yaml:"lit,omitempty"`
	Var string  `msgpack:"var,omitempty" yaml:"var,omitempty"`
}

// NamedType is a shorthand constructor used by tests and the prelude.
func NamedType(name string, args ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeName, Name: name, Args: args}
}

// ArrayType is a shorthand constructor for array[elem; n].
func ArrayType(elem *TypeExpr, n *NatExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeArray, Args: []*TypeExpr{elem}, Len: n}
}

// OptionType is a shorthand constructor for option[elem].
func OptionType(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: TypeOption, Args: []*TypeExpr{elem}}
}

// NatLit is a shorthand constructor for a literal nat.
func NatLit(v uint64) *NatExpr {
	return &NatExpr{Lit: &v}
}

// NatVar is a shorthand constructor for a nat-variable reference.
func NatVar(name string) *NatExpr {
	return &NatExpr{Var: name}
}
