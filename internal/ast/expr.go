package ast

import (
	"quill/internal/source"
)

// ExprKind discriminates expressions.
type ExprKind uint8

const (
	ExprInt ExprKind = iota
	ExprFloat
	ExprBool
	ExprUnit
	ExprVar
	// ExprCall covers functions, operators (the front end desugars binary
	// and unary operators to calls into the operator table) and methods
	// (desugared to calls with the receiver as first argument).
	ExprCall
	ExprTuple
	ExprArray
	ExprIndex
	ExprField
	ExprStructLit
)

// FieldInit is one field initializer of a struct literal.
type FieldInit struct {
	Name  string      `msgpack:"name"`
	Value *Expr       `msgpack:"value"`
	Span  source.Span `msgpack:"span"`
}

// Expr is a tagged union over all expression forms.
type Expr struct {
	Kind ExprKind `msgpack:"kind"`

	// Literal payloads.
	IntVal   int64   `msgpack:"int_val,omitempty"`
	FloatVal float64 `msgpack:"float_val,omitempty"`
	BoolVal  bool    `msgpack:"bool_val,omitempty"`

	// Var reference, call callee, struct literal name, field name.
	Name string `msgpack:"name,omitempty"`

	// Call arguments, tuple elements, array elements.
	Args []*Expr `msgpack:"args,omitempty"`

	// Index / field base.
	Recv  *Expr `msgpack:"recv,omitempty"`
	Index *Expr `msgpack:"index,omitempty"`

	// Struct literal initializers.
	Fields []FieldInit `msgpack:"fields,omitempty"`

	// Explicit generic arguments at a call or struct literal. Usually
	// empty: arguments are inferred by unification.
	TypeArgs []*TypeExpr `msgpack:"type_args,omitempty"`
	NatArgs  []*NatExpr  `msgpack:"nat_args,omitempty"`

	Span source.Span `msgpack:"span"`
}
