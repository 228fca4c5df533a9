package vx

// Event is the tagged union produced by the Parser and, after capability
// folding, by the Loop. Concrete types are the variants named in spec
// §3: key_press/key_release, mouse, winsize, focus_in/out,
// paste_start/paste/paste_end, color_report, color_scheme, exited, bell,
// title_change, pwd_change. Internal cap_* variants never leave the
// reader thread — see capability.go.
type Event interface{ isEvent() }

// Modifiers is a bitset of modifier keys, decoded per the xterm
// convention (CSI modifier parameter - 1, bit 0 = shift, bit 1 = alt,
// bit 2 = ctrl, bit 3 = super, bit 4 = hyper, bit 5 = meta,
// bit 6 = capslock, bit 7 = numlock) for both legacy and Kitty-protocol
// key events.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
	ModSuper
	ModHyper
	ModMeta
	ModCapsLock
	ModNumLock
)

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

// KeyEventType distinguishes a Kitty-protocol press from a repeat or a
// release; legacy (non-Kitty) key reporting only ever produces Press.
type KeyEventType uint8

const (
	KeyPress KeyEventType = iota
	KeyRepeat
	KeyRelease
)

// KeyEvent is emitted for both legacy xterm function/arrow keys and the
// Kitty Keyboard Protocol's `CSI ... u` form.
type KeyEvent struct {
	Codepoint rune
	Shifted   rune // Kitty "alternate key": the shifted codepoint, 0 if none reported
	Base      rune // Kitty "base layout" key, 0 if none reported
	Modifiers Modifiers
	EventType KeyEventType
	Text      string // associative text, only present under Kitty reporting
}

func (KeyEvent) isEvent() {}

// PrintEvent carries a contiguous run of ground-state bytes containing
// no C0 control and no escape — ordinary typed text, or literal output
// a caller is scanning rather than driving. Malformed UTF-8 within the
// run has already been replaced with U+FFFD.
type PrintEvent struct{ Text string }

func (PrintEvent) isEvent() {}

// Named, non-printable key codepoints. Legacy CSI letters (A-F, H,
// P-S, Z) and the `~` family map onto this range, matching the
// convention Kitty itself uses for "functional key" codepoints.
const (
	KeyUp rune = 0xE000 + iota
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyBacktab
)

// MouseButton identifies which button an SGR mouse report refers to.
type MouseButton uint8

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseWheelLeft
	MouseWheelRight
	MouseButton8
	MouseButton9
	MouseButton10
	MouseButton11
)

// MouseAction distinguishes press, release, and motion (drag) reports.
type MouseAction uint8

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMotion
)

// MouseEvent is decoded from `CSI < b;x;y M|m` (SGR mouse). Col/Row are
// the 0-based coordinates taken from the report as sent. The Parser
// never fills Pixel, PixelCol or PixelRow: it does not tell SGR-pixel
// reports apart from cell reports, so they stay at their zero values.
type MouseEvent struct {
	Button    MouseButton
	Action    MouseAction
	Modifiers Modifiers
	Col, Row  int
	Pixel     bool
	PixelCol  int
	PixelRow  int
}

func (MouseEvent) isEvent() {}

// WinsizeEvent is enqueued from a SIGWINCH-triggered ioctl query. The
// Parser does not decode in-band resize reports (mode 2048) into it.
type WinsizeEvent struct {
	Cols, Rows   int
	XPixel, YPixel int
}

func (WinsizeEvent) isEvent() {}

type FocusInEvent struct{}

func (FocusInEvent) isEvent() {}

type FocusOutEvent struct{}

func (FocusOutEvent) isEvent() {}

type PasteStartEvent struct{}

func (PasteStartEvent) isEvent() {}

type PasteEndEvent struct{}

func (PasteEndEvent) isEvent() {}

// PasteEvent carries the accumulated bytes between a paste-start and
// paste-end marker as a single event.
type PasteEvent struct{ Text string }

func (PasteEvent) isEvent() {}

// ColorKindReport distinguishes which OSC color query a ColorReportEvent
// answers.
type ColorKindReport uint8

const (
	ColorReportForeground ColorKindReport = iota
	ColorReportBackground
	ColorReportCursor
	ColorReportPalette
)

// ColorReportEvent is decoded from OSC 10/11 (fg/bg) and OSC 4 (palette)
// responses.
type ColorReportEvent struct {
	Kind        ColorKindReport
	Color       Color
	PaletteSlot int // valid when Kind == ColorReportPalette
}

func (ColorReportEvent) isEvent() {}

// ColorSchemeEvent is decoded from a DEC 2031 color-scheme-update
// report: the terminal's light/dark preference changed.
type ColorSchemeEvent struct{ Dark bool }

func (ColorSchemeEvent) isEvent() {}

// ClipboardReportEvent is decoded from an OSC 52 response.
type ClipboardReportEvent struct{ Text string }

func (ClipboardReportEvent) isEvent() {}

// BellEvent is emitted for a bare C0 BEL (0x07).
type BellEvent struct{}

func (BellEvent) isEvent() {}

// TitleChangeEvent is decoded from OSC 0/2 (set title).
type TitleChangeEvent struct{ Title string }

func (TitleChangeEvent) isEvent() {}

// PwdChangeEvent is decoded from OSC 7 (set working directory, URL
// decoded).
type PwdChangeEvent struct{ Path string }

func (PwdChangeEvent) isEvent() {}

// ExitedEvent marks a hosted child process (vt.Emulator) exiting. Err is
// nil on a clean (status 0) exit.
type ExitedEvent struct{ Err error }

func (ExitedEvent) isEvent() {}
