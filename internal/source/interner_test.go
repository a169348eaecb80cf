package source

import (
	"sync"
	"testing"
)

func TestInternerDeduplicates(t *testing.T) {
	in := NewInterner()
	a := in.Intern("measure")
	b := in.Intern("measure")
	if a != b {
		t.Fatalf("same string interned twice: %d vs %d", a, b)
	}
	if s := in.MustLookup(a); s != "measure" {
		t.Fatalf("lookup = %q", s)
	}
}

func TestInternerEmptyStringIsNoStringID(t *testing.T) {
	in := NewInterner()
	if id := in.Intern(""); id != NoStringID {
		t.Fatalf("empty string must map to NoStringID, got %d", id)
	}
}

func TestInternerConcurrent(t *testing.T) {
	in := NewInterner()
	var wg sync.WaitGroup
	names := []string{"h", "cx", "measure", "discard", "qubit"}
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range names {
				in.Intern(n)
			}
		}()
	}
	wg.Wait()
	if in.Len() != len(names)+1 {
		t.Fatalf("expected %d entries, got %d", len(names)+1, in.Len())
	}
}
