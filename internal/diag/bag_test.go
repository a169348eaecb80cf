package diag

import (
	"testing"

	"quill/internal/source"
)

func TestBagRespectsCap(t *testing.T) {
	b := NewBag(2)
	for n := 0; n < 3; n++ {
		b.Add(Diagnostic{Severity: SevError, Code: SemaTypeMismatch})
	}
	if b.Len() != 2 {
		t.Fatalf("expected cap of 2, got %d", b.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(4)
	b.Add(Diagnostic{Severity: SevWarning, Code: SemaNameStyle})
	if b.HasErrors() {
		t.Fatalf("warning-only bag must not report errors")
	}
	b.Add(Diagnostic{Severity: SevError, Code: SemaResourceLeak})
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors after adding an error")
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	b := NewBag(4)
	b.Add(Diagnostic{Severity: SevError, Code: SemaTypeMismatch, Primary: source.Span{File: 1, Start: 20, End: 22}})
	b.Add(Diagnostic{Severity: SevError, Code: SemaUnknownName, Primary: source.Span{File: 1, Start: 5, End: 8}})
	b.Add(Diagnostic{Severity: SevWarning, Code: SemaNameStyle, Primary: source.Span{File: 0, Start: 0, End: 1}})
	b.Sort()
	items := b.Items()
	if items[0].Code != SemaNameStyle || items[1].Code != SemaUnknownName || items[2].Code != SemaTypeMismatch {
		t.Fatalf("unexpected order: %v %v %v", items[0].Code, items[1].Code, items[2].Code)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(4)
	d := Diagnostic{Severity: SevError, Code: SemaUseAfterConsume, Primary: source.Span{File: 1, Start: 3, End: 7}}
	b.Add(d)
	b.Add(d)
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("expected 1 after dedup, got %d", b.Len())
	}
}

func TestCodeString(t *testing.T) {
	if got := SemaResourceLeak.String(); got != "QLL3008" {
		t.Fatalf("code string = %q", got)
	}
}
