package vx

// Window is a clipped, offset view onto a Screen's back buffer. It
// carries no cell storage of its own — writes land directly in the
// Screen's grid, translated by the window's origin and clipped to its
// bounds — so nested windows compose for free and a write that lands
// outside every ancestor's bounds is simply dropped.
type Window struct {
	screen *Screen
	x, y   int
	w, h   int
}

// NewWindow returns the root Window covering the whole of s.
func (s *Screen) NewWindow() *Window {
	w, h := s.Size()
	return &Window{screen: s, x: 0, y: 0, w: w, h: h}
}

// Sub returns a child window at (x, y) relative to win's own origin,
// clipped so it can never see outside win's own bounds — a Sub of a
// Sub is still fully contained by the outermost Window's region.
func (win *Window) Sub(x, y, w, h int) *Window {
	child := &Window{screen: win.screen, x: win.x + x, y: win.y + y, w: w, h: h}
	child.clipTo(win)
	return child
}

// clipTo shrinks win to the intersection of its own bounds and
// parent's, translating nothing further since x/y are already in
// screen-absolute coordinates by the time Sub calls this.
func (win *Window) clipTo(parent *Window) {
	left := max(win.x, parent.x)
	top := max(win.y, parent.y)
	right := min(win.x+win.w, parent.x+parent.w)
	bottom := min(win.y+win.h, parent.y+parent.h)
	win.x, win.y = left, top
	if right > left {
		win.w = right - left
	} else {
		win.w = 0
	}
	if bottom > top {
		win.h = bottom - top
	} else {
		win.h = 0
	}
}

// Size returns the window's width and height in cells.
func (win *Window) Size() (w, h int) { return win.w, win.h }

// SetCell writes a cell at (col, row) relative to win's own origin.
// Out-of-bounds coordinates (negative, or beyond win's own w/h) are a
// silent no-op, matching Buffer.SetCell's bounds-checked-and-ignore
// convention in the headless-terminal grid this is grounded on.
func (win *Window) SetCell(col, row int, cell Cell) {
	if col < 0 || row < 0 || col >= win.w || row >= win.h {
		return
	}
	win.screen.setCell(win.x+col, win.y+row, cell)
}

// Cell returns the cell at (col, row) relative to win's own origin, or
// a blank cell (a single space of width 1) if out of bounds.
func (win *Window) Cell(col, row int) Cell {
	if col < 0 || row < 0 || col >= win.w || row >= win.h {
		return blankCell
	}
	return win.screen.cellAt(win.x+col, win.y+row)
}

// Print writes s starting at (col, row), advancing one cell per
// grapheme's display width (per the Screen's WidthMethod) and
// clipping at the window's right edge — it never wraps to the next
// row.
func (win *Window) Print(col, row int, s string, style Style) {
	for _, g := range Graphemes(s) {
		w := GraphemeWidth(g, win.screen.widthMethod)
		if w <= 0 {
			w = 1
		}
		win.SetCell(col, row, Cell{Grapheme: g, Width: w, Style: style})
		for i := 1; i < w; i++ {
			win.SetCell(col+i, row, Cell{Width: 0, Style: style})
		}
		col += w
		if col >= win.w {
			return
		}
	}
}

// Clear resets every cell in win to blankCell.
func (win *Window) Clear() {
	for row := 0; row < win.h; row++ {
		for col := 0; col < win.w; col++ {
			win.SetCell(col, row, blankCell)
		}
	}
}

// Fill sets every cell in win to a blank cell carrying style, useful
// for painting a background before drawing content on top.
func (win *Window) Fill(style Style) {
	blank := Cell{Grapheme: " ", Width: 1, Style: style}
	for row := 0; row < win.h; row++ {
		for col := 0; col < win.w; col++ {
			win.SetCell(col, row, blank)
		}
	}
}
