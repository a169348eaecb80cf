// Package ast defines the serialized syntax tree the front end hands to the
// checking core. Front ends emit one msgpack-encoded Module per .qmod file;
// the core never parses surface syntax itself. Nodes carry source spans that
// are threaded through diagnostics only.
package ast

import (
	"quill/internal/source"
)

// Module is one compilation input: a set of struct and function
// definitions already parsed and named by the front end. Source carries the
// surface text the spans point into, so diagnostics can quote it without
// the core ever seeing the surface syntax.
type Module struct {
	Name    string        `msgpack:"name"`
	Source  string        `msgpack:"source,omitempty"`
	Structs []*StructDecl `msgpack:"structs"`
	Funcs   []*FuncDecl   `msgpack:"funcs"`
}

// StructDecl declares a record type, generic over type and nat parameters.
// Field ownership is never declared: it is derived from the field types.
type StructDecl struct {
	Name       string       `msgpack:"name"`
	TypeParams []string     `msgpack:"type_params,omitempty"`
	NatParams  []string     `msgpack:"nat_params,omitempty"`
	Fields     []FieldDecl  `msgpack:"fields,omitempty"`
	Span       source.Span  `msgpack:"span"`
}

// FieldDecl is one named struct field.
type FieldDecl struct {
	Name string      `msgpack:"name"`
	Type *TypeExpr   `msgpack:"type"`
	Span source.Span `msgpack:"span"`
}

// FuncDecl declares a function, generic over type and nat parameters.
// Methods arrive with Receiver set to the enclosing struct name; the
// receiver's generic parameters are implicitly in scope and a `self`
// parameter is synthesized during registration.
type FuncDecl struct {
	Name       string       `msgpack:"name"`
	Receiver   string       `msgpack:"receiver,omitempty"`
	SelfOwned  bool         `msgpack:"self_owned,omitempty"`
	TypeParams []string     `msgpack:"type_params,omitempty"`
	NatParams  []string     `msgpack:"nat_params,omitempty"`
	Params     []ParamDecl  `msgpack:"params,omitempty"`
	Result     *TypeExpr    `msgpack:"result,omitempty"` // nil means unit
	Body       []*Stmt      `msgpack:"body,omitempty"`
	Span       source.Span  `msgpack:"span"`
}

// ParamDecl is one function parameter. Owned linear parameters are consumed
// by the call; borrowed ones return to the caller untouched.
type ParamDecl struct {
	Name  string      `msgpack:"name"`
	Type  *TypeExpr   `msgpack:"type"`
	Owned bool        `msgpack:"owned,omitempty"`
	Span  source.Span `msgpack:"span"`
}
