// Package mono specializes generic functions and structs at the concrete
// arguments the checked program demands. Specialization starts from the
// non-generic functions and follows recorded instantiations transitively,
// substituting arguments into nested demands as it descends. The engine
// caches by (symbol, arguments) so each specialization is built once, and a
// per-chain stack bounds recursion through ever-changing arguments.
package mono

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"quill/internal/diag"
	"quill/internal/sema"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

// DefaultMaxDepth bounds the instantiation chain length. Legitimate
// programs stay far below it; a generic recursing at growing arguments
// does not terminate without the bound.
const DefaultMaxDepth = 64

// Options configures one specialization run.
type Options struct {
	Table    *symbols.Table
	Results  []*sema.FuncResult
	Reporter diag.Reporter
	MaxDepth int
}

// FuncSpec is one specialized function: a signature with every generic
// variable replaced by a concrete argument.
type FuncSpec struct {
	Name     string
	Sym      symbols.SymbolID
	Sig      *symbols.Signature
	TypeArgs []types.TypeID
	NatArgs  []types.Nat
	Params   []types.Param
	Result   types.TypeID

	// children are the body's recorded demands with this specialization's
	// arguments substituted in.
	children []sema.Instantiation
}

// StructSpec is one specialized struct instance.
type StructSpec struct {
	Name string
	Type types.TypeID
}

// Program is the full set of specializations a compilation demands, in
// deterministic name order.
type Program struct {
	Funcs   []*FuncSpec
	Structs []*StructSpec
}

type key struct {
	sym  symbols.SymbolID
	args string
}

// Engine builds and caches specializations. Safe for concurrent use; the
// shared type interner mutates only under the engine lock.
type Engine struct {
	table    *symbols.Table
	types    *types.Interner
	strings  *source.Interner
	res      *symbols.Resolver
	rep      diag.Reporter
	maxDepth int

	sigs    map[symbols.SymbolID]*symbols.Signature
	results map[symbols.SymbolID]*sema.FuncResult

	mu        sync.Mutex
	funcs     map[key]*FuncSpec
	structs   map[types.TypeID]*StructSpec
	processed map[key]bool
	flight    singleflight.Group
}

// NewEngine prepares an engine over checked results.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		table:     opts.Table,
		types:     opts.Table.Types(),
		strings:   opts.Table.Strings(),
		res:       symbols.NewResolver(opts.Table.Types(), opts.Table.Strings(), opts.Table),
		rep:       opts.Reporter,
		maxDepth:  opts.MaxDepth,
		sigs:      make(map[symbols.SymbolID]*symbols.Signature),
		results:   make(map[symbols.SymbolID]*sema.FuncResult),
		funcs:     make(map[key]*FuncSpec),
		structs:   make(map[types.TypeID]*StructSpec),
		processed: make(map[key]bool),
	}
	if e.rep == nil {
		e.rep = diag.NopReporter{}
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	for _, sig := range opts.Table.Funcs() {
		e.sigs[sig.ID] = sig
	}
	for _, res := range opts.Results {
		e.results[res.Sig.ID] = res
	}
	return e
}

// Run specializes everything reachable from the non-generic functions.
func Run(opts Options) (*Program, error) {
	e := NewEngine(opts)
	var errs []error
	for _, res := range opts.Results {
		if res.Sig.IsGeneric() {
			continue
		}
		root := sema.Instantiation{Kind: sema.InstFn, Sym: res.Sig.ID, Name: res.Sig.Name, Span: res.Sig.Span}
		if err := e.Instantiate(root, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return e.Program(), errors.Join(errs...)
}

// Instantiate builds the specialization an instantiation demands, then
// follows the demands of its body. chain is the stack of specializations
// currently being expanded on this path; nil for roots.
func (e *Engine) Instantiate(inst sema.Instantiation, chain []key) error {
	sig, ok := e.sigs[inst.Sym]
	if !ok {
		return fmt.Errorf("unknown symbol %d", inst.Sym)
	}
	if len(inst.TypeArgs) != len(sig.TypeVarIDs) || len(inst.NatArgs) != len(sig.NatVarIDs) {
		e.report(diag.MonoArityMismatch, inst.Span,
			"%s expects %d type and %d nat arguments",
			e.strings.MustLookup(sig.Name), len(sig.TypeVarIDs), len(sig.NatVarIDs))
		return ErrArityMismatch
	}
	if !e.argsConcrete(inst.TypeArgs, inst.NatArgs) {
		e.report(diag.MonoUnresolvedGeneric, inst.Span,
			"cannot specialize %s: arguments are not concrete", e.strings.MustLookup(sig.Name))
		return ErrUnresolvedGeneric
	}

	k := key{sym: inst.Sym, args: e.mangle(sig.Name, inst.TypeArgs, inst.NatArgs)}
	for _, prev := range chain {
		if prev == k {
			e.report(diag.MonoRecursiveInstantiation, inst.Span,
				"instantiation cycle through %s", k.args)
			return ErrRecursiveInstantiation
		}
	}
	if len(chain) >= e.maxDepth {
		e.report(diag.MonoRecursiveInstantiation, inst.Span,
			"instantiation chain exceeds depth %d at %s", e.maxDepth, k.args)
		return ErrRecursiveInstantiation
	}

	// The cycle check above runs before joining the flight, so a chain can
	// never wait on a key it already holds.
	v, err, _ := e.flight.Do(fmt.Sprintf("%d|%s", k.sym, k.args), func() (any, error) {
		return e.build(sig, inst, k), nil
	})
	if err != nil {
		return err
	}
	spec := v.(*FuncSpec)

	e.mu.Lock()
	done := e.processed[k]
	e.processed[k] = true
	e.mu.Unlock()
	if done {
		return nil
	}

	chain = append(chain, k)
	var errs []error
	for _, child := range spec.children {
		switch child.Kind {
		case sema.InstStruct:
			if err := e.instantiateStruct(child); err != nil {
				errs = append(errs, err)
			}
		default:
			if err := e.Instantiate(child, chain); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// build creates the specialization and substitutes this instantiation's
// arguments into the body's recorded demands.
func (e *Engine) build(sig *symbols.Signature, inst sema.Instantiation, k key) *FuncSpec {
	e.mu.Lock()
	defer e.mu.Unlock()
	if spec, ok := e.funcs[k]; ok {
		return spec
	}

	sm := newSubstMap()
	for i, v := range sig.TypeVarIDs {
		sm.typeVars[v] = inst.TypeArgs[i]
	}
	for i, v := range sig.NatVarIDs {
		sm.natVars[v] = inst.NatArgs[i]
	}

	spec := &FuncSpec{
		Name:     k.args,
		Sym:      sig.ID,
		Sig:      sig,
		TypeArgs: append([]types.TypeID(nil), inst.TypeArgs...),
		NatArgs:  append([]types.Nat(nil), inst.NatArgs...),
		Result:   e.subst(sig.Result, sm),
	}
	for _, p := range sig.Params {
		spec.Params = append(spec.Params, types.Param{Type: e.subst(p.Type, sm), Owned: p.Owned})
	}

	if res := e.results[sig.ID]; res != nil {
		for _, child := range res.Insts {
			cc := child
			cc.TypeArgs = make([]types.TypeID, 0, len(child.TypeArgs))
			for _, a := range child.TypeArgs {
				cc.TypeArgs = append(cc.TypeArgs, e.subst(a, sm))
			}
			cc.NatArgs = make([]types.Nat, 0, len(child.NatArgs))
			for _, n := range child.NatArgs {
				cc.NatArgs = append(cc.NatArgs, e.substNat(n, sm))
			}
			spec.children = append(spec.children, cc)
		}
	}

	e.funcs[k] = spec
	return spec
}

func (e *Engine) instantiateStruct(inst sema.Instantiation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.table.LookupStruct(e.strings.MustLookup(inst.Name))
	if err != nil {
		return err
	}
	if len(inst.TypeArgs) != len(entry.TypeParams) || len(inst.NatArgs) != len(entry.NatParams) {
		e.report(diag.MonoArityMismatch, inst.Span,
			"struct %s instantiated at the wrong arity", e.strings.MustLookup(entry.Name))
		return ErrArityMismatch
	}
	if !e.argsConcreteLocked(inst.TypeArgs, inst.NatArgs) {
		e.report(diag.MonoUnresolvedGeneric, inst.Span,
			"cannot specialize struct %s: arguments are not concrete", e.strings.MustLookup(entry.Name))
		return ErrUnresolvedGeneric
	}
	id, err := e.res.InstantiateStruct(entry, inst.TypeArgs, inst.NatArgs)
	if err != nil {
		return err
	}
	if _, ok := e.structs[id]; ok {
		return nil
	}
	e.structs[id] = &StructSpec{
		Name: e.mangleLocked(entry.Name, inst.TypeArgs, inst.NatArgs),
		Type: id,
	}
	return nil
}

// Program returns everything built so far, sorted by specialization name.
func (e *Engine) Program() *Program {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := &Program{}
	for _, spec := range e.funcs {
		p.Funcs = append(p.Funcs, spec)
	}
	for _, spec := range e.structs {
		p.Structs = append(p.Structs, spec)
	}
	sort.Slice(p.Funcs, func(i, j int) bool { return p.Funcs[i].Name < p.Funcs[j].Name })
	sort.Slice(p.Structs, func(i, j int) bool { return p.Structs[i].Name < p.Structs[j].Name })
	return p
}

func (e *Engine) argsConcrete(typeArgs []types.TypeID, natArgs []types.Nat) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.argsConcreteLocked(typeArgs, natArgs)
}

func (e *Engine) argsConcreteLocked(typeArgs []types.TypeID, natArgs []types.Nat) bool {
	for _, a := range typeArgs {
		if !e.types.Concrete(a) {
			return false
		}
	}
	for _, n := range natArgs {
		if !n.Known {
			return false
		}
	}
	return true
}

// mangle renders "name[arg1, arg2]", the display and cache key of one
// specialization. Plain "name" when the symbol is not generic.
func (e *Engine) mangle(name source.StringID, typeArgs []types.TypeID, natArgs []types.Nat) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mangleLocked(name, typeArgs, natArgs)
}

func (e *Engine) mangleLocked(name source.StringID, typeArgs []types.TypeID, natArgs []types.Nat) string {
	base := e.strings.MustLookup(name)
	if len(typeArgs) == 0 && len(natArgs) == 0 {
		return base
	}
	parts := make([]string, 0, len(typeArgs)+len(natArgs))
	for _, a := range typeArgs {
		parts = append(parts, types.Format(e.types, e.strings, a))
	}
	for _, n := range natArgs {
		parts = append(parts, n.String())
	}
	return base + "[" + strings.Join(parts, ", ") + "]"
}

func (e *Engine) report(code diag.Code, sp source.Span, format string, args ...any) {
	e.rep.Report(code, diag.SevError, sp, fmt.Sprintf(format, args...), nil)
}
