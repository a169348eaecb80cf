package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quill/internal/diag"
	"quill/internal/mono"
	"quill/internal/observ"
	"quill/internal/sema"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

// Config drives one check run.
type Config struct {
	Paths []string
	// Jobs bounds parallel module decoding; 0 means NumCPU.
	Jobs int
	// MaxDiagnostics caps the bag; 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int
	// CacheDir enables the on-disk result cache when non-empty.
	CacheDir string
	// SkipMono stops after checking, before specialization.
	SkipMono bool
	// Progress receives advisory pipeline events; nil disables them.
	Progress Sink
}

// DefaultMaxDiagnostics caps collected diagnostics per run.
const DefaultMaxDiagnostics = 100

// Result is the outcome of one check run.
type Result struct {
	RunID    uuid.UUID
	Files    *source.FileSet
	Bag      *diag.Bag
	Table    *symbols.Table
	Modules  []*LoadedModule
	Checked  []*sema.FuncResult
	Program  *mono.Program
	Cached   bool
	Duration time.Duration
	Timings  observ.Report
}

// Check loads, registers, checks, and specializes the given modules.
func Check(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()
	maxDiag := cfg.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}

	res := &Result{
		RunID: uuid.New(),
		Files: source.NewFileSet(),
		Bag:   diag.NewBag(maxDiag),
	}
	rep := diag.BagReporter{Bag: res.Bag}
	sink := cfg.sink()
	timer := observ.NewTimer()
	for _, p := range cfg.Paths {
		sink.Publish(Event{Stage: StageLoad, Status: StatusWorking, File: p})
	}

	loadPhase := timer.Begin("load")
	modules, loadErrs := LoadModules(ctx, res.Files, cfg.Paths, cfg.Jobs)
	res.Modules = modules
	for _, le := range loadErrs {
		code := diag.IOLoadFileError
		if le.Decode {
			code = diag.IODecodeError
		}
		rep.Report(code, diag.SevError, source.Span{}, le.Error(), nil)
		sink.Publish(Event{Stage: StageLoad, Status: StatusError, File: le.Path})
	}
	timer.End(loadPhase, fmt.Sprintf("%d modules", len(modules)))

	var cache *DiskCache
	var cacheKey string
	if cfg.CacheDir != "" {
		var err error
		cache, err = OpenDiskCache(cfg.CacheDir)
		if err == nil {
			cacheKey = InputsKey(modules)
			if entry, ok := cache.Load(cacheKey); ok {
				for _, d := range entry.Diags {
					res.Bag.Add(d)
				}
				res.Cached = true
				res.Duration = time.Since(start)
				res.Timings = timer.Report()
				status := StatusDone
				if entry.HasErrors {
					status = StatusError
				}
				for _, lm := range modules {
					sink.Publish(Event{Stage: StageCheck, Status: status, File: lm.Path})
				}
				return res, nil
			}
		}
	}

	table := symbols.NewTable(source.NewInterner(), types.NewInterner())
	res.Table = table
	if err := symbols.LoadPrelude(table); err != nil {
		return res, err
	}

	resolvePhase := timer.Begin("resolve")
	for _, lm := range modules {
		sink.Publish(Event{Stage: StageResolve, Status: StatusWorking, File: lm.Path})
	}
	// Structs first: function signatures may mention any struct. Within
	// each group, module order then declaration order.
	for _, lm := range modules {
		for _, sd := range lm.Module.Structs {
			if _, err := table.RegisterStructDecl(sd); err != nil {
				reportRegistration(rep, sd.Span, err)
			}
		}
	}
	for _, lm := range modules {
		for _, fd := range lm.Module.Funcs {
			if _, err := table.RegisterFunc(fd); err != nil {
				reportRegistration(rep, fd.Span, err)
			}
		}
	}
	table.Freeze()

	symbols.ValidateNames(table, rep)
	timer.End(resolvePhase, fmt.Sprintf("%d funcs", len(table.Funcs())))

	checkPhase := timer.Begin("check")
	for _, lm := range modules {
		sink.Publish(Event{Stage: StageCheck, Status: StatusWorking, File: lm.Path})
	}
	res.Checked = sema.CheckAll(sema.Options{Table: table, Reporter: rep})
	timer.End(checkPhase, "")

	if !cfg.SkipMono && !res.Bag.HasErrors() {
		monoPhase := timer.Begin("specialize")
		for _, lm := range modules {
			sink.Publish(Event{Stage: StageSpecialize, Status: StatusWorking, File: lm.Path})
		}
		// Specialization errors land in the same bag; the returned error
		// repeats what the diagnostics already say.
		res.Program, _ = mono.Run(mono.Options{
			Table:    table,
			Results:  res.Checked,
			Reporter: rep,
		})
		note := ""
		if res.Program != nil {
			note = fmt.Sprintf("%d funcs", len(res.Program.Funcs))
		}
		timer.End(monoPhase, note)
	}

	res.Bag.Sort()
	res.Bag.Dedup()

	if cache != nil && cacheKey != "" {
		_ = cache.Store(cacheKey, &CacheEntry{
			Key:       cacheKey,
			Diags:     res.Bag.Items(),
			HasErrors: res.Bag.HasErrors(),
			CreatedAt: time.Now(),
		})
	}

	final := StatusDone
	if res.Bag.HasErrors() {
		final = StatusError
	}
	for _, lm := range modules {
		sink.Publish(Event{Stage: StageSpecialize, Status: final, File: lm.Path})
	}

	res.Duration = time.Since(start)
	res.Timings = timer.Report()
	return res, nil
}

func reportRegistration(rep diag.Reporter, sp source.Span, err error) {
	code := diag.SemaInfo
	switch {
	case errors.Is(err, symbols.ErrDuplicateDefinition):
		code = diag.SemaDuplicateDefinition
	case errors.Is(err, symbols.ErrUnknownName):
		code = diag.SemaUnknownName
	case errors.Is(err, symbols.ErrRecursiveStruct):
		code = diag.SemaRecursiveStruct
	case errors.Is(err, symbols.ErrArityMismatch):
		code = diag.SemaArityMismatch
	}
	rep.Report(code, diag.SevError, sp, err.Error(), nil)
}
