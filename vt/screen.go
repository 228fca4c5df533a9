// Package vt implements the PTY-hosted VT/xterm-subset emulator: a
// screen model driven by a child process's own stdout, as opposed to
// the root vx package's Parser, which decodes a real terminal's input
// stream. The two share cell/style/color types but not grammar — CSI
// 'A' means "cursor up" here and "arrow key" there.
package vt

import "github.com/vxterm/vx"

// Screen is the emulator's own cell grid: unlike vx.Screen (a
// double-buffered render target for an application's own UI), Screen
// here is mutated in place by incoming bytes and additionally tracks
// the scrolling-region/tab-stop/wrap state a real xterm exposes to
// full-screen programs, plus a scrollback ring for lines pushed off
// the top while not inside the alternate screen.
type Screen struct {
	cols, rows int
	cells      [][]vx.Cell
	tabStops   []bool

	scrollTop, scrollBottom int // DECSTBM region, 0-based, bottom exclusive

	cursorCol, cursorRow int
	pendingWrap          bool // DECAWM deferred wrap: set after writing the last column
	lastGrapheme         string
	cursorShown          bool
	cursorShape          CursorShape

	scrollback    [][]vx.Cell
	scrollbackMax int
}

// NewScreen returns a Screen of the given size with default (every 8
// columns) tab stops and a full-height scroll region.
func NewScreen(cols, rows, scrollbackMax int) *Screen {
	s := &Screen{
		cols: cols, rows: rows,
		scrollBottom:  rows,
		scrollbackMax: scrollbackMax,
		cursorShown:   true,
	}
	s.cells = make([][]vx.Cell, rows)
	for i := range s.cells {
		s.cells[i] = newBlankRow(cols)
	}
	s.resetTabStops()
	return s
}

func newBlankRow(cols int) []vx.Cell {
	row := make([]vx.Cell, cols)
	for i := range row {
		row[i] = vx.Cell{Grapheme: " ", Width: 1}
	}
	return row
}

func (s *Screen) resetTabStops() {
	s.tabStops = make([]bool, s.cols)
	for i := 0; i < s.cols; i += 8 {
		s.tabStops[i] = true
	}
}

// Size returns the screen's column and row counts.
func (s *Screen) Size() (cols, rows int) { return s.cols, s.rows }

// Cursor returns the current cursor column and row (0-based).
func (s *Screen) Cursor() (col, row int) { return s.cursorCol, s.cursorRow }

// CursorVisible reports whether DECTCEM last showed the cursor.
func (s *Screen) CursorVisible() bool { return s.cursorShown }

// cursorVisible sets DECTCEM visibility.
func (s *Screen) cursorVisible(show bool) { s.cursorShown = show }

// CursorShape distinguishes the block/underline/bar cursor styles
// DECSCUSR selects, independent of DECTCEM visibility.
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// CursorShape returns the cursor style last set by DECSCUSR (CSI Ps SP q).
func (s *Screen) CursorShape() CursorShape { return s.cursorShape }

// setCursorShape applies a DECSCUSR parameter: 0 or 1 is a blinking
// block (treated the same as steady, since Screen tracks shape, not
// blink phase), 2 a steady block, 3/4 underline, 5/6 bar.
func (s *Screen) setCursorShape(ps int) {
	switch ps {
	case 0, 1, 2:
		s.cursorShape = CursorBlock
	case 3, 4:
		s.cursorShape = CursorUnderline
	case 5, 6:
		s.cursorShape = CursorBar
	}
}

// Cell returns the cell at (col, row), or a blank cell if out of
// bounds.
func (s *Screen) Cell(col, row int) vx.Cell {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return vx.Cell{Grapheme: " ", Width: 1}
	}
	return s.cells[row][col]
}

// Scrollback returns every line pushed off the top of the screen by
// scrolling, oldest first, capped at scrollbackMax entries.
func (s *Screen) Scrollback() [][]vx.Cell { return s.scrollback }

// SetScrollRegion sets the DECSTBM scrolling region, top inclusive,
// bottom exclusive, both 0-based. Out-of-range bounds are clamped to
// the screen and an empty region is silently ignored, matching real
// terminals' tolerance for malformed DECSTBM parameters.
func (s *Screen) SetScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom > s.rows {
		bottom = s.rows
	}
	if top >= bottom {
		return
	}
	s.scrollTop, s.scrollBottom = top, bottom
}

// ResetScrollRegion restores the scroll region to the whole screen.
func (s *Screen) ResetScrollRegion() { s.scrollTop, s.scrollBottom = 0, s.rows }

// MoveCursor sets the cursor position, clamped to the screen (or, if
// origin is true, to the current scroll region per DECOM) and clears
// any pending deferred wrap.
func (s *Screen) MoveCursor(col, row int, origin bool) {
	top, bottom := 0, s.rows
	if origin {
		top, bottom = s.scrollTop, s.scrollBottom
		row += top
	}
	if row < top {
		row = top
	}
	if row >= bottom {
		row = bottom - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= s.cols {
		col = s.cols - 1
	}
	s.cursorCol, s.cursorRow = col, row
	s.pendingWrap = false
}

// Put writes one grapheme at the cursor and advances it, honoring
// DECAWM deferred wrap (awm) and the scrolling region: advancing past
// the last column sets pendingWrap rather than moving immediately, and
// writing the wrapped cell on the next Put scrolls within the region
// if needed.
func (s *Screen) Put(grapheme string, width int, style vx.Style, awm bool) {
	if width <= 0 {
		width = 1
	}
	if s.pendingWrap && awm {
		s.cursorCol = 0
		s.newline()
		s.pendingWrap = false
	}
	s.setCellRaw(s.cursorCol, s.cursorRow, vx.Cell{Grapheme: grapheme, Width: width, Style: style})
	s.lastGrapheme = grapheme
	for i := 1; i < width && s.cursorCol+i < s.cols; i++ {
		s.setCellRaw(s.cursorCol+i, s.cursorRow, vx.Cell{Width: 0, Style: style})
	}
	s.cursorCol += width
	if s.cursorCol >= s.cols {
		s.cursorCol = s.cols - 1
		if awm {
			s.pendingWrap = true
		}
	}
}

// Repeat re-Puts the last written grapheme n more times (ECMA-48 REP).
func (s *Screen) Repeat(n int, style vx.Style, awm bool) {
	if s.lastGrapheme == "" {
		return
	}
	for i := 0; i < n; i++ {
		s.Put(s.lastGrapheme, 1, style, awm)
	}
}

func (s *Screen) setCellRaw(col, row int, cell vx.Cell) {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return
	}
	s.cells[row][col] = cell
}

// newline moves the cursor down one row, scrolling the region if
// already at its bottom edge.
func (s *Screen) newline() {
	if s.cursorRow == s.scrollBottom-1 {
		s.ScrollUp(1)
		return
	}
	if s.cursorRow < s.rows-1 {
		s.cursorRow++
	}
}

// Newline performs a line feed at the cursor (LF / IND).
func (s *Screen) Newline() { s.newline() }

// ScrollUp shifts the scroll region up by n rows, pushing rows off the
// top into scrollback only when the region's top is row 0 — matching
// the headless-terminal Buffer.ScrollUp convention that only a
// full-top scroll feeds history, not one confined to a DECSTBM region
// elsewhere on screen.
func (s *Screen) ScrollUp(n int) {
	top, bottom := s.scrollTop, s.scrollBottom
	if n <= 0 || top >= bottom {
		return
	}
	if n > bottom-top {
		n = bottom - top
	}
	if top == 0 && s.scrollbackMax > 0 {
		for i := 0; i < n; i++ {
			row := make([]vx.Cell, s.cols)
			copy(row, s.cells[i])
			s.scrollback = append(s.scrollback, row)
		}
		if over := len(s.scrollback) - s.scrollbackMax; over > 0 {
			s.scrollback = s.scrollback[over:]
		}
	}
	for row := top; row < bottom-n; row++ {
		s.cells[row] = s.cells[row+n]
	}
	for row := bottom - n; row < bottom; row++ {
		s.cells[row] = newBlankRow(s.cols)
	}
}

// ScrollDown shifts the scroll region down by n rows, discarding rows
// scrolled off the bottom and clearing rows exposed at the top.
func (s *Screen) ScrollDown(n int) {
	top, bottom := s.scrollTop, s.scrollBottom
	if n <= 0 || top >= bottom {
		return
	}
	if n > bottom-top {
		n = bottom - top
	}
	for row := bottom - 1; row >= top+n; row-- {
		s.cells[row] = s.cells[row-n]
	}
	for row := top; row < top+n; row++ {
		s.cells[row] = newBlankRow(s.cols)
	}
}

// EraseInLine clears part of the cursor's row: mode 0 from the cursor
// to the end, 1 from the start to the cursor (inclusive), 2 the whole
// line.
func (s *Screen) EraseInLine(mode int) {
	row := s.cursorRow
	switch mode {
	case 0:
		s.clearRange(row, s.cursorCol, s.cols)
	case 1:
		s.clearRange(row, 0, s.cursorCol+1)
	case 2:
		s.clearRange(row, 0, s.cols)
	}
}

// EraseInDisplay clears part of the screen: mode 0 cursor-to-end, 1
// start-to-cursor, 2 and 3 the whole screen. Mode 3 does not clear the
// scrollback; it is left as it is.
func (s *Screen) EraseInDisplay(mode int) {
	switch mode {
	case 0:
		s.clearRange(s.cursorRow, s.cursorCol, s.cols)
		for row := s.cursorRow + 1; row < s.rows; row++ {
			s.clearRange(row, 0, s.cols)
		}
	case 1:
		for row := 0; row < s.cursorRow; row++ {
			s.clearRange(row, 0, s.cols)
		}
		s.clearRange(s.cursorRow, 0, s.cursorCol+1)
	case 2, 3:
		for row := 0; row < s.rows; row++ {
			s.clearRange(row, 0, s.cols)
		}
	}
}

func (s *Screen) clearRange(row, start, end int) {
	if row < 0 || row >= s.rows {
		return
	}
	if start < 0 {
		start = 0
	}
	if end > s.cols {
		end = s.cols
	}
	for col := start; col < end; col++ {
		s.cells[row][col] = vx.Cell{Grapheme: " ", Width: 1}
	}
}

// InsertLines inserts n blank lines at the cursor's row, within the
// scroll region, pushing lines below down (and off the bottom of the
// region).
func (s *Screen) InsertLines(n int) {
	top := s.cursorRow
	saved := s.scrollTop
	s.scrollTop = top
	s.ScrollDown(n)
	s.scrollTop = saved
}

// DeleteLines removes n lines at the cursor's row within the scroll
// region, pulling lines below up.
func (s *Screen) DeleteLines(n int) {
	top := s.cursorRow
	saved := s.scrollTop
	s.scrollTop = top
	s.ScrollUp(n)
	s.scrollTop = saved
}

// InsertChars inserts n blank cells at the cursor, shifting the rest
// of the row right (cells shifted past the right edge are discarded).
func (s *Screen) InsertChars(n int) {
	row := s.cells[s.cursorRow]
	for col := s.cols - 1; col >= s.cursorCol+n; col-- {
		row[col] = row[col-n]
	}
	for col := s.cursorCol; col < s.cursorCol+n && col < s.cols; col++ {
		row[col] = vx.Cell{Grapheme: " ", Width: 1}
	}
}

// DeleteChars removes n cells at the cursor, shifting the rest of the
// row left and blanking the newly exposed cells at the end.
func (s *Screen) DeleteChars(n int) {
	row := s.cells[s.cursorRow]
	copy(row[s.cursorCol:], row[s.cursorCol+n:])
	for col := s.cols - n; col < s.cols; col++ {
		if col >= 0 {
			row[col] = vx.Cell{Grapheme: " ", Width: 1}
		}
	}
}

// SetTabStop sets a tab stop at the cursor's column (HTS).
func (s *Screen) SetTabStop() {
	if s.cursorCol >= 0 && s.cursorCol < len(s.tabStops) {
		s.tabStops[s.cursorCol] = true
	}
}

// ClearTabStop clears the tab stop at the cursor's column (TBC mode
// 0) or every tab stop (TBC mode 3).
func (s *Screen) ClearTabStop(mode int) {
	switch mode {
	case 0:
		if s.cursorCol >= 0 && s.cursorCol < len(s.tabStops) {
			s.tabStops[s.cursorCol] = false
		}
	case 3:
		for i := range s.tabStops {
			s.tabStops[i] = false
		}
	}
}

// TabForward moves the cursor to the next tab stop (or the last
// column if none remain), n times.
func (s *Screen) TabForward(n int) {
	for ; n > 0; n-- {
		col := s.cursorCol + 1
		for col < s.cols && !s.tabStops[col] {
			col++
		}
		if col >= s.cols {
			col = s.cols - 1
		}
		s.cursorCol = col
	}
}

// TabBackward moves the cursor to the previous tab stop (or column 0),
// n times.
func (s *Screen) TabBackward(n int) {
	for ; n > 0; n-- {
		col := s.cursorCol - 1
		for col > 0 && !s.tabStops[col] {
			col--
		}
		if col < 0 {
			col = 0
		}
		s.cursorCol = col
	}
}

// Resize changes the screen's dimensions in place, preserving content
// that still fits and resetting tab stops (real terminals do the
// same: a resize invalidates tab-stop positions relative to new
// columns).
func (s *Screen) Resize(cols, rows int) {
	newCells := make([][]vx.Cell, rows)
	for i := range newCells {
		newCells[i] = newBlankRow(cols)
		if i < len(s.cells) {
			copy(newCells[i], s.cells[i])
		}
	}
	s.cells = newCells
	s.cols, s.rows = cols, rows
	s.scrollTop, s.scrollBottom = 0, rows
	s.resetTabStops()
	if s.cursorCol >= cols {
		s.cursorCol = cols - 1
	}
	if s.cursorRow >= rows {
		s.cursorRow = rows - 1
	}
}
