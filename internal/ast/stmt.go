package ast

import (
	"quill/internal/source"
)

// StmtKind discriminates statements.
type StmtKind uint8

const (
	// StmtLet introduces a binding, optionally annotated.
	StmtLet StmtKind = iota
	// StmtAssign re-assigns an existing binding.
	StmtAssign
	// StmtExpr evaluates an expression for its effect.
	StmtExpr
	// StmtIf branches on a bool condition.
	StmtIf
	// StmtFor repeats a body a compile-time-bounded number of times.
	StmtFor
	// StmtReturn exits the function, optionally with a value.
	StmtReturn
)

// Stmt is a tagged union over all statement forms. Only the fields of the
// active kind are meaningful; keeping one struct keeps msgpack decoding
// free of custom extensions.
type Stmt struct {
	Kind StmtKind `msgpack:"kind"`

	// Let / Assign / For loop variable.
	Name string    `msgpack:"name,omitempty"`
	Ann  *TypeExpr `msgpack:"ann,omitempty"` // let annotation, seeds inference

	// Let / Assign value, Expr statement, Return value (nil for bare return).
	Value *Expr `msgpack:"value,omitempty"`

	// If.
	Cond *Expr   `msgpack:"cond,omitempty"`
	Then []*Stmt `msgpack:"then,omitempty"`
	Else []*Stmt `msgpack:"else,omitempty"`

	// For: `for name in 0..bound { body }`.
	Bound *NatExpr `msgpack:"bound,omitempty"`
	Body  []*Stmt  `msgpack:"body,omitempty"`

	Span source.Span `msgpack:"span"`
}
