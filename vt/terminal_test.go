package vt

import (
	"bufio"
	"strings"
	"testing"

	"github.com/vxterm/vx"
)

func feed(t *testing.T, term *Terminal, s string) {
	t.Helper()
	if err := term.Feed(bufio.NewReader(strings.NewReader(s))); err != nil && err.Error() != "EOF" {
		t.Fatalf("Feed(%q): %v", s, err)
	}
}

func TestTerminalPlainTextAdvancesCursor(t *testing.T) {
	term := NewTerminal(10, 3, 0)
	feed(t, term, "abc")
	col, row := term.Screen().Cursor()
	if col != 3 || row != 0 {
		t.Fatalf("Cursor = (%d,%d), want (3,0)", col, row)
	}
	if term.Screen().Cell(0, 0).Grapheme != "a" {
		t.Fatalf("cell(0,0) = %+v, want \"a\"", term.Screen().Cell(0, 0))
	}
}

func TestTerminalNewlineAndCarriageReturn(t *testing.T) {
	term := NewTerminal(10, 3, 0)
	feed(t, term, "ab\r\ncd")
	col, row := term.Screen().Cursor()
	if col != 2 || row != 1 {
		t.Fatalf("Cursor = (%d,%d), want (2,1)", col, row)
	}
	if term.Screen().Cell(0, 1).Grapheme != "c" {
		t.Fatalf("cell(0,1) = %+v, want \"c\"", term.Screen().Cell(0, 1))
	}
}

func TestTerminalCursorMovementCSI(t *testing.T) {
	term := NewTerminal(10, 10, 0)
	feed(t, term, "\x1b[5;10H")
	col, row := term.Screen().Cursor()
	if col != 9 || row != 4 {
		t.Fatalf("after CUP, Cursor = (%d,%d), want (9,4)", col, row)
	}
	feed(t, term, "\x1b[2A")
	_, row = term.Screen().Cursor()
	if row != 2 {
		t.Fatalf("after CUU 2, row = %d, want 2", row)
	}
	feed(t, term, "\x1b[3C")
	col, _ = term.Screen().Cursor()
	if col != 9 {
		t.Fatalf("after CUF 3 from col 9 on a 10-col screen, col = %d, want 9 (clamped)", col)
	}
}

func TestTerminalEraseInDisplay(t *testing.T) {
	term := NewTerminal(5, 2, 0)
	feed(t, term, "abcde")
	feed(t, term, "\x1b[H\x1b[2J")
	for col := 0; col < 5; col++ {
		if term.Screen().Cell(col, 0).Grapheme != " " {
			t.Fatalf("cell(%d,0) = %+v, want blank after ED 2", col, term.Screen().Cell(col, 0))
		}
	}
}

func TestTerminalInsertLines(t *testing.T) {
	term := NewTerminal(3, 3, 0)
	feed(t, term, "1\r\n2\r\n3")
	feed(t, term, "\x1b[1;1H\x1b[L") // insert a line at row 0
	if term.Screen().Cell(0, 1).Grapheme != "1" {
		t.Fatalf("row 1 after insert = %+v, want \"1\" (pushed down)", term.Screen().Cell(0, 1))
	}
	if term.Screen().Cell(0, 0).Grapheme != " " {
		t.Fatalf("row 0 after insert = %+v, want blank", term.Screen().Cell(0, 0))
	}
}

func TestTerminalSGRStyleAppliesToCells(t *testing.T) {
	term := NewTerminal(5, 1, 0)
	feed(t, term, "\x1b[1;31mx")
	cell := term.Screen().Cell(0, 0)
	if !cell.Style.Bold {
		t.Fatalf("cell style = %+v, want Bold", cell.Style)
	}
	if cell.Style.Foreground != vx.Indexed(1) {
		t.Fatalf("cell foreground = %+v, want Indexed(1)", cell.Style.Foreground)
	}
}

func TestTerminalDECSTBMSetsScrollRegion(t *testing.T) {
	term := NewTerminal(5, 5, 0)
	feed(t, term, "\x1b[2;4r") // rows 1-3 (0-based) scroll
	if term.Screen().scrollTop != 1 || term.Screen().scrollBottom != 4 {
		t.Fatalf("scroll region = [%d,%d), want [1,4)", term.Screen().scrollTop, term.Screen().scrollBottom)
	}
}

func TestTerminalRepeatLastGrapheme(t *testing.T) {
	term := NewTerminal(10, 1, 0)
	feed(t, term, "x\x1b[3b") // REP: repeat "x" 3 more times
	for col := 0; col < 4; col++ {
		if term.Screen().Cell(col, 0).Grapheme != "x" {
			t.Fatalf("cell(%d,0) = %+v, want \"x\"", col, term.Screen().Cell(col, 0))
		}
	}
}

func TestTerminalAlternateScreenSwap(t *testing.T) {
	term := NewTerminal(5, 2, 0)
	feed(t, term, "main")
	feed(t, term, "\x1b[?1049h")
	if term.Screen() != term.alternate {
		t.Fatalf("after entering alt screen, Screen() should be the alternate screen")
	}
	if term.Screen().Cell(0, 0).Grapheme != " " {
		t.Fatalf("alternate screen should start blank, got %+v", term.Screen().Cell(0, 0))
	}
	feed(t, term, "\x1b[?1049l")
	if term.Screen() != term.primary {
		t.Fatalf("after leaving alt screen, Screen() should be the primary screen")
	}
	if term.Screen().Cell(0, 0).Grapheme != "m" {
		t.Fatalf("primary screen content should survive the round trip, got %+v", term.Screen().Cell(0, 0))
	}
}

func TestTerminalDECAWMToggle(t *testing.T) {
	term := NewTerminal(3, 2, 0)
	feed(t, term, "\x1b[?7l") // disable autowrap
	feed(t, term, "abcd")
	col, row := term.Screen().Cursor()
	if row != 0 {
		t.Fatalf("with autowrap off, writing past the edge should not wrap, row = %d, want 0", row)
	}
	if col != 2 {
		t.Fatalf("cursor should pin at the last column without autowrap, col = %d, want 2", col)
	}
}

func TestTerminalDECTCEMTogglesCursorVisibility(t *testing.T) {
	term := NewTerminal(5, 5, 0)
	if !term.Screen().CursorVisible() {
		t.Fatalf("cursor should start visible")
	}
	feed(t, term, "\x1b[?25l")
	if term.Screen().CursorVisible() {
		t.Fatalf("cursor should be hidden after DECTCEM reset")
	}
	feed(t, term, "\x1b[?25h")
	if !term.Screen().CursorVisible() {
		t.Fatalf("cursor should be visible again after DECTCEM set")
	}
}

func TestTerminalOSCTitleChange(t *testing.T) {
	term := NewTerminal(5, 5, 0)
	var got string
	term.OnTitleChange(func(s string) { got = s })
	feed(t, term, "\x1b]0;hello\x07")
	if got != "hello" {
		t.Fatalf("title callback got %q, want \"hello\"", got)
	}
	if term.Title() != "hello" {
		t.Fatalf("Title() = %q, want \"hello\"", term.Title())
	}
}

func TestTerminalBellCallback(t *testing.T) {
	term := NewTerminal(5, 5, 0)
	rang := false
	term.OnBell(func() { rang = true })
	feed(t, term, "\x07")
	if !rang {
		t.Fatalf("bell callback was not invoked")
	}
}

func TestTerminalDCSIsSkipped(t *testing.T) {
	term := NewTerminal(5, 1, 0)
	feed(t, term, "\x1bPsome dcs payload\x1b\\x")
	if term.Screen().Cell(0, 0).Grapheme != "x" {
		t.Fatalf("byte after a skipped DCS should still print, got %+v", term.Screen().Cell(0, 0))
	}
}

func TestTerminalSaveRestoreCursor(t *testing.T) {
	term := NewTerminal(10, 10, 0)
	feed(t, term, "\x1b[3;3H\x1b7")
	feed(t, term, "\x1b[8;8H\x1b8")
	col, row := term.Screen().Cursor()
	if col != 2 || row != 2 {
		t.Fatalf("after save/restore, Cursor = (%d,%d), want (2,2)", col, row)
	}
}

func TestTerminalResetClearsScreen(t *testing.T) {
	term := NewTerminal(5, 2, 0)
	feed(t, term, "hello")
	feed(t, term, "\x1bc")
	if term.Screen().Cell(0, 0).Grapheme != " " {
		t.Fatalf("RIS should clear the screen, got %+v", term.Screen().Cell(0, 0))
	}
	col, row := term.Screen().Cursor()
	if col != 0 || row != 0 {
		t.Fatalf("RIS should home the cursor, Cursor = (%d,%d)", col, row)
	}
}

func TestTerminalMultibyteGrapheme(t *testing.T) {
	term := NewTerminal(10, 1, 0)
	feed(t, term, "héllo")
	if term.Screen().Cell(1, 0).Grapheme != "é" {
		t.Fatalf("cell(1,0) = %+v, want \"é\"", term.Screen().Cell(1, 0))
	}
}

func TestTerminalDA1RespondsOverResponder(t *testing.T) {
	term := NewTerminal(10, 3, 0)
	var buf strings.Builder
	term.SetResponder(&buf)
	feed(t, term, "\x1b[c")
	if buf.String() != "\x1b[?1;2c" {
		t.Fatalf("DA1 response = %q, want %q", buf.String(), "\x1b[?1;2c")
	}
}

func TestTerminalDSRCursorPositionReport(t *testing.T) {
	term := NewTerminal(10, 10, 0)
	var buf strings.Builder
	term.SetResponder(&buf)
	feed(t, term, "\x1b[4;5H\x1b[6n")
	if buf.String() != "\x1b[4;5R" {
		t.Fatalf("DSR(6) response = %q, want %q", buf.String(), "\x1b[4;5R")
	}
}

func TestTerminalDECRQMReportsTrackedMode(t *testing.T) {
	term := NewTerminal(10, 3, 0)
	var buf strings.Builder
	term.SetResponder(&buf)
	feed(t, term, "\x1b[?7l") // DECAWM off
	buf.Reset()
	feed(t, term, "\x1b[?7$p")
	if buf.String() != "\x1b[?7;2$y" {
		t.Fatalf("DECRQM(7) response = %q, want %q (reset)", buf.String(), "\x1b[?7;2$y")
	}
}

func TestTerminalDECRQMReportsUnrecognizedMode(t *testing.T) {
	term := NewTerminal(10, 3, 0)
	var buf strings.Builder
	term.SetResponder(&buf)
	feed(t, term, "\x1b[?9999$p")
	if buf.String() != "\x1b[?9999;0$y" {
		t.Fatalf("DECRQM(9999) response = %q, want %q", buf.String(), "\x1b[?9999;0$y")
	}
}

func TestTerminalXTVERSIONResponds(t *testing.T) {
	term := NewTerminal(10, 3, 0)
	var buf strings.Builder
	term.SetResponder(&buf)
	feed(t, term, "\x1b[>q")
	if !strings.HasPrefix(buf.String(), "\x1bP>|vx-vt(") {
		t.Fatalf("XTVERSION response = %q, want a DCS >| vx-vt(...) reply", buf.String())
	}
}

func TestTerminalDECSCUSRSetsCursorShape(t *testing.T) {
	term := NewTerminal(10, 3, 0)
	feed(t, term, "\x1b[4 q") // steady underline
	if term.Screen().CursorShape() != CursorUnderline {
		t.Fatalf("CursorShape = %v, want CursorUnderline", term.Screen().CursorShape())
	}
}
