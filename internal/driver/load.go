package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"quill/internal/ast"
	"quill/internal/source"
)

// LoadedModule is one decoded compilation input. Hash digests the raw
// payload bytes and feeds the result cache key.
type LoadedModule struct {
	Path   string
	File   source.FileID
	Module *ast.Module
	Hash   [32]byte
}

// LoadError ties a load or decode failure to its file.
type LoadError struct {
	Path   string
	Decode bool
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadModules reads and decodes .qmod files in parallel, then registers
// them with the file set in path order so file IDs stay deterministic.
// Failures don't stop the batch: the successfully loaded modules return
// alongside the per-file errors.
func LoadModules(ctx context.Context, fset *source.FileSet, paths []string, jobs int) ([]*LoadedModule, []*LoadError) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	type slot struct {
		mod  *ast.Module
		hash [32]byte
		err  *LoadError
	}
	slots := make([]slot, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			raw, err := os.ReadFile(path)
			if err != nil {
				slots[i].err = &LoadError{Path: path, Err: err}
				return nil
			}
			var m ast.Module
			if err := msgpack.Unmarshal(raw, &m); err != nil {
				slots[i].err = &LoadError{Path: path, Decode: true, Err: err}
				return nil
			}
			slots[i].mod = &m
			slots[i].hash = sha256.Sum256(raw)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, they fill their slot

	var out []*LoadedModule
	var errs []*LoadError
	for i, s := range slots {
		if s.err != nil {
			errs = append(errs, s.err)
			continue
		}
		// The file set holds the embedded surface text; every span in the
		// module points into it.
		fid := fset.AddVirtual(paths[i], []byte(s.mod.Source))
		ast.SetFile(s.mod, fid)
		out = append(out, &LoadedModule{Path: paths[i], File: fid, Module: s.mod, Hash: s.hash})
	}
	return out, errs
}

// EncodeModule serializes a module the way front ends hand them to us.
// Tests and tooling use it to produce .qmod payloads.
func EncodeModule(m *ast.Module) ([]byte, error) {
	return msgpack.Marshal(m)
}
