package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quill/internal/source"
)

// Renderer pretty-prints diagnostics with source excerpts and carets.
// It lives outside the checking core: phases emit structured records, the
// CLI decides how they look.
type Renderer struct {
	Files *source.FileSet
	Color bool
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	noteColor = color.New(color.FgHiBlack)
)

// Render writes a human-readable form of every diagnostic in the bag.
func (r *Renderer) Render(w io.Writer, bag *Bag) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		r.RenderOne(w, d)
	}
}

// RenderOne writes one diagnostic with its source line and caret underline.
func (r *Renderer) RenderOne(w io.Writer, d Diagnostic) {
	head := fmt.Sprintf("%s[%s]: %s", strings.ToLower(d.Severity.String()), d.Code, d.Message)
	fmt.Fprintln(w, r.paint(d.Severity, head))

	if r.Files != nil && !d.Primary.Empty() {
		r.renderSpan(w, d.Primary, d.Severity)
	}
	for _, n := range d.Notes {
		msg := "note: " + n.Msg
		if r.Color {
			msg = noteColor.Sprint(msg)
		}
		fmt.Fprintln(w, "  "+msg)
		if r.Files != nil && !n.Span.Empty() {
			r.renderSpan(w, n.Span, SevInfo)
		}
	}
}

func (r *Renderer) renderSpan(w io.Writer, sp source.Span, sev Severity) {
	file := r.Files.Get(sp.File)
	start, end := r.Files.Resolve(sp)
	fmt.Fprintf(w, "  --> %s:%d:%d\n", file.Path, start.Line, start.Col)

	line := file.GetLine(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "   | %s\n", line)

	// Caret width follows the display width of the underlined text, not its
	// byte length.
	prefix := line
	if int(start.Col-1) <= len(line) {
		prefix = line[:start.Col-1]
	}
	pad := runewidth.StringWidth(prefix)
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		seg := line
		if int(end.Col-1) <= len(line) {
			seg = line[start.Col-1 : end.Col-1]
		}
		if w := runewidth.StringWidth(seg); w > 0 {
			width = w
		}
	}
	fmt.Fprintf(w, "   | %s%s\n", strings.Repeat(" ", pad), r.paint(sev, strings.Repeat("^", width)))
}

func (r *Renderer) paint(sev Severity, s string) string {
	if !r.Color {
		return s
	}
	switch sev {
	case SevError:
		return errColor.Sprint(s)
	case SevWarning:
		return warnColor.Sprint(s)
	default:
		return infoColor.Sprint(s)
	}
}
