package sema

import (
	"quill/internal/source"
	"quill/internal/types"
)

// bindState tracks one binding through the definite-assignment and
// consumption analysis.
type bindState uint8

const (
	// stateUndefined: declared but not yet assigned on every path here.
	stateUndefined bindState = iota
	// stateDefined: holds a live value.
	stateDefined
	// stateConsumed: the value was moved out; further use is an error.
	stateConsumed
)

func (s bindState) String() string {
	switch s {
	case stateUndefined:
		return "undefined"
	case stateDefined:
		return "defined"
	case stateConsumed:
		return "consumed"
	}
	return "unknown"
}

type binding struct {
	// id distinguishes a binding from any later shadow of the same name.
	// Branch reconciliation matches bindings by id, never by name.
	id uint32
	// depth is the nesting level of the block that declared the binding.
	depth int

	name  source.StringID
	typ   types.TypeID
	class types.OwnershipClass
	state bindState

	// owned: the binding owns its value and must see it consumed (linear)
	// before it goes out of scope. Borrowed parameters are not owned: the
	// caller keeps the value, consuming it here is an error.
	owned bool
	param bool

	decl source.Span
	last source.Span // site of the most recent state change
}

// env is the per-function binding environment. Branches run on clones and
// reconcile afterwards.
type env struct {
	bindings map[source.StringID]*binding
	order    []source.StringID

	// hidden holds bindings displaced by a shadowing declare, newest last.
	// Their states are frozen: once shadowed, the name resolves to the
	// shadow, so nothing can touch the old value again.
	hidden []*binding
}

func newEnv() *env {
	return &env{bindings: make(map[source.StringID]*binding)}
}

func (e *env) lookup(name source.StringID) *binding {
	return e.bindings[name]
}

// declare inserts or shadows a binding. The displaced binding, if any, is
// kept on the hidden stack so branch reconciliation can still find it.
func (e *env) declare(b *binding) {
	if old, exists := e.bindings[b.name]; exists {
		e.hidden = append(e.hidden, old)
	} else {
		e.order = append(e.order, b.name)
	}
	e.bindings[b.name] = b
}

// resolve finds the binding with the given identity: the current entry for
// the name if it matches, otherwise the newest hidden one. Returns nil when
// the binding was never declared in this env.
func (e *env) resolve(name source.StringID, id uint32) *binding {
	if b := e.bindings[name]; b != nil && b.id == id {
		return b
	}
	for i := len(e.hidden) - 1; i >= 0; i-- {
		if e.hidden[i].id == id {
			return e.hidden[i]
		}
	}
	return nil
}

func (e *env) clone() *env {
	out := &env{
		bindings: make(map[source.StringID]*binding, len(e.bindings)),
		order:    append([]source.StringID(nil), e.order...),
		hidden:   append([]*binding(nil), e.hidden...),
	}
	for name, b := range e.bindings {
		cpy := *b
		out.bindings[name] = &cpy
	}
	return out
}

// each visits bindings in declaration order.
func (e *env) each(fn func(*binding)) {
	for _, name := range e.order {
		if b, ok := e.bindings[name]; ok {
			fn(b)
		}
	}
}
