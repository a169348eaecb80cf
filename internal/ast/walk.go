package ast

import (
	"quill/internal/source"
)

// SetFile stamps every span in the module with the given file ID. Front
// ends serialize byte offsets only; the file identity is known when the
// module is loaded into a FileSet.
func SetFile(m *Module, file source.FileID) {
	if m == nil {
		return
	}
	for _, s := range m.Structs {
		s.Span.File = file
		for i := range s.Fields {
			s.Fields[i].Span.File = file
		}
	}
	for _, f := range m.Funcs {
		f.Span.File = file
		for i := range f.Params {
			f.Params[i].Span.File = file
		}
		setFileStmts(f.Body, file)
	}
}

func setFileStmts(stmts []*Stmt, file source.FileID) {
	for _, st := range stmts {
		if st == nil {
			continue
		}
		st.Span.File = file
		setFileExpr(st.Value, file)
		setFileExpr(st.Cond, file)
		setFileStmts(st.Then, file)
		setFileStmts(st.Else, file)
		setFileStmts(st.Body, file)
	}
}

func setFileExpr(e *Expr, file source.FileID) {
	if e == nil {
		return
	}
	e.Span.File = file
	for _, a := range e.Args {
		setFileExpr(a, file)
	}
	setFileExpr(e.Recv, file)
	setFileExpr(e.Index, file)
	for i := range e.Fields {
		e.Fields[i].Span.File = file
		setFileExpr(e.Fields[i].Value, file)
	}
}
