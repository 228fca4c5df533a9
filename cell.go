package vx

// Hyperlink is an OSC 8 hyperlink attached to a Cell.
type Hyperlink struct {
	URI string
	ID  string
}

// ImageRef marks a Cell as part of a placed image, pointing back at the
// Registry entry and the image-local row/column offset it covers.
type ImageRef struct {
	ID          uint64
	OffsetRow   int
	OffsetCol   int
}

// Cell is a single grid position: a grapheme cluster, the column width
// it occupies, its style, and optional hyperlink/image attributes.
//
// Invariant: for a cluster of width W > 1, the W-1 cells to its right
// are continuation cells (Width == 0, Grapheme == "") and are never
// rendered independently — see Screen.Render.
type Cell struct {
	Grapheme  string
	Width     int
	Style     Style
	Link      *Hyperlink
	Image     *ImageRef
}

// IsContinuation reports whether c is the trailing half of a
// double-width grapheme to its left.
func (c Cell) IsContinuation() bool { return c.Width == 0 && c.Grapheme == "" }

// blankCell is the zero-value "empty" cell: a single space, default
// style, width 1. It is what a freshly allocated or cleared grid row
// contains.
var blankCell = Cell{Grapheme: " ", Width: 1}
