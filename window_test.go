package vx

import "testing"

func TestWindowSetCellClipsToBounds(t *testing.T) {
	s := NewScreen(10, 5, WidthWcwidth)
	win := s.NewWindow()
	win.SetCell(-1, 0, Cell{Grapheme: "x", Width: 1})
	win.SetCell(100, 0, Cell{Grapheme: "x", Width: 1})
	// Neither write should panic or affect cell (0,0).
	if c := s.cellAt(0, 0); c.Grapheme != " " {
		t.Fatalf("cellAt(0,0) = %+v, want untouched blank", c)
	}
}

func TestWindowSubClipsToParent(t *testing.T) {
	s := NewScreen(10, 10, WidthWcwidth)
	parent := s.NewWindow().Sub(2, 2, 5, 5)
	child := parent.Sub(3, 3, 10, 10) // requests beyond parent's bounds
	w, h := child.Size()
	if w != 2 || h != 2 {
		t.Fatalf("child size = (%d,%d), want (2,2)", w, h)
	}
}

func TestWindowPrintAdvancesByGraphemeWidth(t *testing.T) {
	s := NewScreen(10, 1, WidthWcwidth)
	win := s.NewWindow()
	win.Print(0, 0, "a世", Style{})
	if got := s.cellAt(0, 0).Grapheme; got != "a" {
		t.Fatalf("cell 0 = %q, want \"a\"", got)
	}
	if got := s.cellAt(1, 0).Grapheme; got != "世" {
		t.Fatalf("cell 1 = %q, want \"世\"", got)
	}
	if got := s.cellAt(2, 0); got.Width != 0 || got.Grapheme != "" {
		t.Fatalf("cell 2 (continuation) = %+v", got)
	}
}

func TestWindowCellOutOfBoundsReturnsBlank(t *testing.T) {
	s := NewScreen(4, 4, WidthWcwidth)
	win := s.NewWindow()
	if c := win.Cell(-1, -1); c.Grapheme != " " {
		t.Fatalf("Cell(-1,-1) = %+v, want blank", c)
	}
}
