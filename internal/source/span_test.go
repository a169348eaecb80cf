package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	got := a.Cover(b)
	if got.Start != 2 || got.End != 8 {
		t.Fatalf("cover = %v", got)
	}
}

func TestSpanCoverDifferentFiles(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(b); got != a {
		t.Fatalf("cross-file cover must be a no-op, got %v", got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("mem.qmod", []byte("one\ntwo\nthree"))
	start, end := fs.Resolve(Span{File: id, Start: 4, End: 7})
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("start = %v", start)
	}
	if end.Line != 2 || end.Col != 4 {
		t.Fatalf("end = %v", end)
	}
}

func TestResolveLineColBoundaries(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("mem.qmod", []byte("one\ntwo\nthree"))
	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},  // first byte
		{3, LineCol{Line: 1, Col: 4}},  // the newline closes line 1
		{8, LineCol{Line: 3, Col: 1}},  // first byte after the last newline
		{12, LineCol{Line: 3, Col: 5}}, // last byte of the file
	}
	for _, tc := range cases {
		got, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if got != tc.want {
			t.Fatalf("offset %d = %v, want %v", tc.off, got, tc.want)
		}
	}
}
