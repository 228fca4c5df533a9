package vx

import (
	"fmt"
	"io"
	"strings"
)

// Screen is a double-buffered cell grid: writes (via Window) land in
// the back buffer, and Render diffs back against front and emits only
// the bytes needed to bring the real terminal's display in sync — the
// same "mark dirty, diff on flush" shape as the headless-terminal
// Buffer this is grounded on, but comparing two whole grids instead of
// tracking per-cell dirty bits, since a Screen's back buffer is
// rebuilt from scratch every frame rather than mutated incrementally.
type Screen struct {
	w, h        int
	front, back [][]Cell
	cursorCol   int
	cursorRow   int
	cursorShown bool
	widthMethod WidthMethod

	// lastCursorShown/lastStyle remember what the previous Render call
	// actually told the terminal, so a property that hasn't changed
	// since the last frame is not re-emitted.
	lastCursorShown  bool
	lastCursorKnown  bool
	lastCursorCol    int
	lastCursorRow    int
	lastCursorPosSet bool
	lastStyle        Style
	lastStyleKnown   bool
}

// NewScreen returns a Screen of the given size with both buffers
// blank and the cursor at the origin, visible.
func NewScreen(w, h int, method WidthMethod) *Screen {
	s := &Screen{w: w, h: h, widthMethod: method, cursorShown: true}
	s.front = newGrid(w, h)
	s.back = newGrid(w, h)
	return s
}

func newGrid(w, h int) [][]Cell {
	grid := make([][]Cell, h)
	for i := range grid {
		grid[i] = make([]Cell, w)
		for j := range grid[i] {
			grid[i][j] = blankCell
		}
	}
	return grid
}

// Size returns the screen's width and height in cells.
func (s *Screen) Size() (w, h int) { return s.w, s.h }

// Resize replaces both buffers with blank grids of the new size; no
// earlier content is kept. Because front and back are both blank, the
// next Render emits only the cells drawn into back after the resize.
func (s *Screen) Resize(w, h int) {
	s.w, s.h = w, h
	s.front = newGrid(w, h)
	s.back = newGrid(w, h)
	if s.cursorCol >= w {
		s.cursorCol = max0(w - 1)
	}
	if s.cursorRow >= h {
		s.cursorRow = max0(h - 1)
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (s *Screen) setCell(x, y int, cell Cell) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	s.back[y][x] = cell
}

func (s *Screen) cellAt(x, y int) Cell {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return blankCell
	}
	return s.back[y][x]
}

// SetCursor moves the reported cursor position; Render emits a single
// cursor-move sequence reflecting the final call before each flush.
func (s *Screen) SetCursor(col, row int) {
	s.cursorCol, s.cursorRow = col, row
}

// ShowCursor toggles cursor visibility (DECTCEM); Render only emits
// the show/hide sequence when it actually changes between frames.
func (s *Screen) ShowCursor(show bool) { s.cursorShown = show }

// renderState tracks the cursor-move/SGR-transition position within a
// single Render call. Style and cursor-visibility are seeded from
// Screen's own lastStyle/lastCursorShown so a property unchanged since
// the previous Render call is not re-emitted.
type renderState struct {
	style       Style
	stylePrimed bool
	col, row    int
	wrote       bool // true once writeCell has moved the real cursor
	link        *Hyperlink
	linkPrimed  bool
	caps        Capabilities
}

// Render writes the minimal sequence of bytes to w that brings the
// real terminal's display from front to back, then makes back the new
// front. When caps.SynchronizedOutput is set, the whole frame is
// wrapped in DEC 2026 begin/end markers so a slow terminal never shows
// a partially-applied frame.
//
// Render is idempotent on a partial write failure in the sense that
// front is only swapped with back after every byte has been written
// successfully; a caller that retries after an error re-diffs against
// the same front buffer rather than risking a doubled or skipped cell.
func (s *Screen) Render(w io.Writer, caps Capabilities) error {
	var buf strings.Builder
	if caps.SynchronizedOutput {
		buf.WriteString("\x1b[?2026h")
	}

	rs := &renderState{col: -1, row: -1, caps: caps}
	if s.lastStyleKnown {
		rs.style = s.lastStyle
		rs.stylePrimed = true
	}
	for y := 0; y < s.h; y++ {
		x := 0
		for x < s.w {
			cell := s.back[y][x]
			if cellsEqual(cell, s.front[y][x]) {
				x++
				continue
			}
			s.writeCell(&buf, rs, x, y, cell)
			x++
			for i := 1; i < cell.Width && x < s.w; i++ {
				// continuation cell of the double-width grapheme just
				// written: already painted, skip it.
				x++
			}
		}
	}
	if rs.link != nil {
		// Leaving a hyperlink open past the frame's last written cell
		// would make the terminal treat unrelated, not-yet-drawn screen
		// real estate as part of it; always close before moving on.
		buf.WriteString("\x1b]8;;\x1b\\")
	}

	if !s.lastCursorKnown || s.cursorShown != s.lastCursorShown {
		if s.cursorShown {
			buf.WriteString("\x1b[?25h")
		} else {
			buf.WriteString("\x1b[?25l")
		}
	}
	// The cell-diff loop above may have left the terminal's real cursor
	// sitting at the last cell it wrote, not at s.cursorCol/s.cursorRow —
	// only skip the final placement when the cursor is already known to
	// be exactly where it needs to be, never merely because the desired
	// position matches what an earlier frame last placed it at.
	actualCol, actualRow, actualKnown := s.lastCursorCol, s.lastCursorRow, s.lastCursorPosSet
	if rs.wrote {
		actualCol, actualRow, actualKnown = rs.col, rs.row, true
	}
	if !actualKnown || s.cursorCol != actualCol || s.cursorRow != actualRow {
		fmt.Fprintf(&buf, "\x1b[%d;%dH", s.cursorRow+1, s.cursorCol+1)
	}

	if caps.SynchronizedOutput {
		buf.WriteString("\x1b[?2026l")
	}

	if _, err := io.WriteString(w, buf.String()); err != nil {
		return err
	}

	for y := range s.back {
		copy(s.front[y], s.back[y])
	}
	s.lastCursorShown, s.lastCursorKnown = s.cursorShown, true
	s.lastCursorCol, s.lastCursorRow, s.lastCursorPosSet = s.cursorCol, s.cursorRow, true
	if rs.stylePrimed {
		s.lastStyle, s.lastStyleKnown = rs.style, true
	}
	return nil
}

func cellsEqual(a, b Cell) bool {
	if a.Grapheme != b.Grapheme || a.Width != b.Width {
		return false
	}
	if !a.Style.Equal(b.Style) {
		return false
	}
	if (a.Link == nil) != (b.Link == nil) {
		return false
	}
	if a.Link != nil && *a.Link != *b.Link {
		return false
	}
	return true
}

// writeCell positions the cursor (skipping the move when Render is
// already sitting one cell past its last write), emits any SGR
// transition cell's style requires relative to rs's remembered style,
// opens/closes an OSC 8 hyperlink on a transition, and writes the
// grapheme itself.
func (s *Screen) writeCell(buf *strings.Builder, rs *renderState, x, y int, cell Cell) {
	rs.wrote = true
	if rs.row != y || rs.col != x {
		fmt.Fprintf(buf, "\x1b[%d;%dH", y+1, x+1)
	}
	if !rs.stylePrimed || !rs.style.Equal(cell.Style) {
		buf.WriteString(sgrSequence(cell.Style, rs.caps))
		rs.style = cell.Style
		rs.stylePrimed = true
	}
	if !rs.linkPrimed || !hyperlinksEqual(rs.link, cell.Link) {
		if rs.link != nil {
			buf.WriteString("\x1b]8;;\x1b\\")
		}
		if cell.Link != nil {
			fmt.Fprintf(buf, "\x1b]8;id=%s;%s\x1b\\", cell.Link.ID, cell.Link.URI)
		}
		rs.link = cell.Link
		rs.linkPrimed = true
	}
	g := cell.Grapheme
	if g == "" {
		g = " "
	}
	buf.WriteString(g)
	rs.row, rs.col = y, x+cell.Width
	if cell.Width == 0 {
		rs.col = x + 1
	}
}

func hyperlinksEqual(a, b *Hyperlink) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// sgrSequence renders a full SGR reset-then-set sequence for style,
// downsampling any RGB color to indexed-256 first when caps says the
// terminal hasn't proven direct-color support. Always resetting first
// (rather than computing a minimal transition) keeps the renderer
// simple and correct at the cost of a few extra bytes per style change
// — acceptable since Render only emits this on an actual transition,
// never per cell.
func sgrSequence(style Style, caps Capabilities) string {
	style.Foreground = style.Foreground.Downsample(caps)
	style.Background = style.Background.Downsample(caps)
	style.Underline = style.Underline.Downsample(caps)
	if style.IsZero() {
		return "\x1b[0m"
	}
	var parts []string
	parts = append(parts, "0")
	if style.Bold {
		parts = append(parts, "1")
	}
	if style.Dim {
		parts = append(parts, "2")
	}
	if style.Italic {
		parts = append(parts, "3")
	}
	if sgr := style.UnderlineStyle.sgr(); sgr != "" {
		parts = append(parts, sgr)
	}
	if style.Blink {
		parts = append(parts, "5")
	}
	if style.Reverse {
		parts = append(parts, "7")
	}
	if style.Invisible {
		parts = append(parts, "8")
	}
	if style.Strikethrough {
		parts = append(parts, "9")
	}
	if style.Foreground.Kind != ColorDefault {
		parts = append(parts, style.Foreground.SGR(38))
	}
	if style.Background.Kind != ColorDefault {
		parts = append(parts, style.Background.SGR(48))
	}
	if style.Underline.Kind != ColorDefault {
		parts = append(parts, style.Underline.SGR(58))
	}
	return "\x1b[" + strings.Join(parts, ";") + "m"
}
