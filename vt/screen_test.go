package vt

import (
	"testing"

	"github.com/vxterm/vx"
)

func TestScreenCursorPositioning(t *testing.T) {
	s := NewScreen(80, 24, 0)
	s.MoveCursor(9, 4, false) // CUP 5;10H, 1-based in the wire form
	col, row := s.Cursor()
	if col != 9 || row != 4 {
		t.Fatalf("Cursor = (%d,%d), want (9,4)", col, row)
	}
}

func TestScreenPutAndWrap(t *testing.T) {
	s := NewScreen(3, 2, 0)
	s.MoveCursor(0, 0, false)
	s.Put("a", 1, vx.Style{}, true)
	s.Put("b", 1, vx.Style{}, true)
	s.Put("c", 1, vx.Style{}, true)
	// Cursor should be pinned at the last column with a pending wrap.
	col, row := s.Cursor()
	if col != 2 || row != 0 {
		t.Fatalf("Cursor after filling row = (%d,%d), want (2,0)", col, row)
	}
	if !s.pendingWrap {
		t.Fatalf("pendingWrap should be set after writing the last column")
	}
	s.Put("d", 1, vx.Style{}, true)
	col, row = s.Cursor()
	if row != 1 || col != 1 {
		t.Fatalf("Cursor after wrapping write = (%d,%d), want (1,1)", col, row)
	}
	if s.Cell(0, 1).Grapheme != "d" {
		t.Fatalf("wrapped cell = %+v, want \"d\"", s.Cell(0, 1))
	}
}

func TestScreenScrollUpFeedsScrollback(t *testing.T) {
	s := NewScreen(5, 2, 10)
	s.Put("1", 1, vx.Style{}, true)
	s.MoveCursor(0, 1, false)
	s.Put("2", 1, vx.Style{}, true)
	s.ScrollUp(1)
	if len(s.Scrollback()) != 1 {
		t.Fatalf("Scrollback() has %d lines, want 1", len(s.Scrollback()))
	}
	if s.Scrollback()[0][0].Grapheme != "1" {
		t.Fatalf("scrolled-off line = %+v, want first cell \"1\"", s.Scrollback()[0][0])
	}
	if s.Cell(0, 0).Grapheme != "2" {
		t.Fatalf("row 0 after scroll = %+v, want \"2\"", s.Cell(0, 0))
	}
}

func TestScreenScrollRegionConfinesScroll(t *testing.T) {
	s := NewScreen(5, 5, 10)
	s.SetScrollRegion(1, 4) // rows 1-3 scroll, rows 0 and 4 are fixed
	for row := 0; row < 5; row++ {
		s.MoveCursor(0, row, false)
		s.Put(string(rune('a'+row)), 1, vx.Style{}, true)
	}
	s.ScrollUp(1)
	if len(s.Scrollback()) != 0 {
		t.Fatalf("a scroll confined to a non-zero-top region must not feed scrollback, got %d lines", len(s.Scrollback()))
	}
	if s.Cell(0, 0).Grapheme != "a" {
		t.Fatalf("row 0 (outside region) must be unaffected, got %+v", s.Cell(0, 0))
	}
	if s.Cell(0, 4).Grapheme != "e" {
		t.Fatalf("row 4 (outside region) must be unaffected, got %+v", s.Cell(0, 4))
	}
	if s.Cell(0, 1).Grapheme != "c" {
		t.Fatalf("row 1 after scroll = %+v, want the old row 2's content", s.Cell(0, 1))
	}
}

func TestScreenEraseInLine(t *testing.T) {
	s := NewScreen(5, 1, 0)
	for i := 0; i < 5; i++ {
		s.MoveCursor(i, 0, false)
		s.Put("x", 1, vx.Style{}, false)
	}
	s.MoveCursor(2, 0, false)
	s.EraseInLine(0) // clear from cursor to end
	if s.Cell(1, 0).Grapheme != "x" {
		t.Fatalf("cell before cursor should survive, got %+v", s.Cell(1, 0))
	}
	if s.Cell(2, 0).Grapheme != " " || s.Cell(4, 0).Grapheme != " " {
		t.Fatalf("cells from cursor onward should be cleared: %+v %+v", s.Cell(2, 0), s.Cell(4, 0))
	}
}

func TestScreenResizePreservesContent(t *testing.T) {
	s := NewScreen(5, 5, 0)
	s.Put("z", 1, vx.Style{}, false)
	s.Resize(10, 10)
	cols, rows := s.Size()
	if cols != 10 || rows != 10 {
		t.Fatalf("Size = (%d,%d), want (10,10)", cols, rows)
	}
	if s.Cell(0, 0).Grapheme != "z" {
		t.Fatalf("content should survive a grow-resize, got %+v", s.Cell(0, 0))
	}
}
