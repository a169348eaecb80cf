package diag

import (
	"quill/internal/source"
)

// Note attaches secondary context to a diagnostic (e.g. "consumed here").
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one structured error record. The core never formats these
// itself; rendering belongs to the reporting layer.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// WithNote returns a copy of the diagnostic with an extra note.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
