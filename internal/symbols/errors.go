package symbols

import "errors"

var (
	// ErrUnknownName is returned when a lookup misses.
	ErrUnknownName = errors.New("unknown name")
	// ErrDuplicateDefinition is returned when a name is registered twice.
	ErrDuplicateDefinition = errors.New("duplicate definition")
	// ErrArityMismatch is returned when generic argument counts disagree
	// with the declared parameters.
	ErrArityMismatch = errors.New("generic arity mismatch")
	// ErrRecursiveStruct is returned when a struct's fields reach the
	// struct itself; values of such a type would have no finite layout.
	ErrRecursiveStruct = errors.New("recursive struct")
	// ErrFrozen is returned when registering into a frozen table.
	ErrFrozen = errors.New("signature table is frozen")
)
