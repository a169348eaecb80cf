package mono

import "errors"

var (
	// ErrArityMismatch is returned when an instantiation carries the wrong
	// number of generic arguments.
	ErrArityMismatch = errors.New("instantiation arity mismatch")
	// ErrUnresolvedGeneric is returned when an argument still mentions a
	// type variable or an unknown nat at specialization time.
	ErrUnresolvedGeneric = errors.New("unresolved generic argument")
	// ErrRecursiveInstantiation is returned when specializing a function
	// demands itself at ever-changing arguments, directly or through a
	// chain, or when the chain exceeds the depth limit.
	ErrRecursiveInstantiation = errors.New("recursive instantiation")
)
