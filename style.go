package vx

// UnderlineStyle selects the SGR underline variant (4:N sub-parameter,
// or plain SGR 4 for single).
type UnderlineStyle uint8

const (
	UnderlineOff UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// Style is the set of rendering attributes attached to a Cell.
type Style struct {
	Foreground Color
	Background Color
	Underline  Color

	Bold          bool
	Dim           bool
	Italic        bool
	Blink         bool
	Reverse       bool
	Invisible     bool
	Strikethrough bool

	UnderlineStyle UnderlineStyle
}

// Equal reports whether two styles would produce identical SGR output.
func (s Style) Equal(o Style) bool { return s == o }

// IsZero reports whether s is the default, unstyled terminal state.
func (s Style) IsZero() bool { return s == Style{} }

// sgr returns the SGR 4[:N] parameter for u, or "" for UnderlineOff.
func (u UnderlineStyle) sgr() string {
	switch u {
	case UnderlineSingle:
		return "4"
	case UnderlineDouble:
		return "4:2"
	case UnderlineCurly:
		return "4:3"
	case UnderlineDotted:
		return "4:4"
	case UnderlineDashed:
		return "4:5"
	default:
		return ""
	}
}
