package vx

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Capabilities records what a terminal has proven it supports, either
// by answering a QueryTerminal probe or — for the handful of things no
// query can prove — by a termenv environment-variable hint. Per spec
// §4.3's invariant, a Capabilities value only ever gains fields over a
// session's lifetime; Loop folds probe responses in and never clears
// a bit that was already set.
type Capabilities struct {
	RGB                 bool
	KittyKeyboard       bool
	KittyKeyboardFlags  int
	KittyGraphics       bool
	SGRPixelMouse       bool
	SynchronizedOutput  bool
	ColorSchemeUpdates  bool
	InBandResize        bool
	Unicode             UnicodeMethod
	WidthMethod         WidthMethod

	// DarkBackground and hint fields below are weak, environment-derived
	// guesses (termenv), filled in immediately by QueryTerminal and
	// overwritten only by an actual terminal answer (OSC 10/11, DEC
	// 2031), never cleared.
	DarkBackground bool
	Foreground     Color
	Background     Color
}

// UnicodeMethod distinguishes legacy wcwidth-style width assignment
// from the wider "Unicode mode" some terminals opt into (Kitty
// graphics/emoji-aware terminals, notably), per spec's glossary entry
// for grapheme width.
type UnicodeMethod uint8

const (
	UnicodeLegacy UnicodeMethod = iota
	UnicodeMode
)

// FoldProbe merges an internal capability-probe response (a cap* event
// from csi.go) into c, upgrading fields and never downgrading one
// already set. It reports whether ev was such an event — Loop uses
// this to decide whether ev stops at the reader thread or also goes
// out to the application. cap* events always stop here: they have no
// meaning to application code, only to Capabilities itself.
func (c *Capabilities) FoldProbe(ev Event) bool {
	switch e := ev.(type) {
	case capDA1Event:
		// DA1 answered at all: the terminal exists and is VT100+
		// compatible. Nothing more specific to record.
		return true
	case capKittyKeyboardEvent:
		c.KittyKeyboard = true
		c.KittyKeyboardFlags = e.Flags
		return true
	case capKittyGraphicsEvent:
		if e.Supported {
			c.KittyGraphics = true
		}
		return true
	case capModeReportEvent:
		c.foldModeReport(e)
		return true
	case capRGBEvent:
		if e.Supported {
			c.RGB = true
		}
		return true
	}
	return false
}

// Observe updates c from an ordinary, application-visible Event that
// also happens to carry capability information (an OSC 10/11/4 color
// report, or a DEC 2031 color-scheme change). Unlike FoldProbe, ev is
// still forwarded to the application — Observe is purely a side
// channel so a later QueryTerminal-less session still benefits from
// whatever the terminal volunteers.
func (c *Capabilities) Observe(ev Event) {
	switch e := ev.(type) {
	case ColorSchemeEvent:
		c.ColorSchemeUpdates = true
		c.DarkBackground = e.Dark
	case ColorReportEvent:
		switch e.Kind {
		case ColorReportForeground:
			c.Foreground = e.Color
		case ColorReportBackground:
			c.Background = e.Color
			c.DarkBackground = isDark(e.Color)
		}
	}
}

// DECRQM mode numbers probed by QueryTerminal; values match the DEC
// private-mode registry (xterm ctlseqs).
const (
	modeSynchronizedOutput = 2026
	modeColorSchemeUpdates = 2031
	modeInBandResize       = 2048
	modeRGB                = 2027 // "theme RGB" / direct-color, per xterm ctlseqs
	modeSGRPixelMouse      = 1016
)

// foldModeReport records a DECRQM response (`CSI ? mode ; setting $y`).
// Setting 1 means "set", 2 "reset", 3 "permanently set" and 4
// "permanently reset"; any of these means the mode is supported, and
// 0 means "not recognized." Per
// the never-regress invariant, a later 0 (e.g. a stale repeated query)
// must not clear a bit a prior response already set.
func (c *Capabilities) foldModeReport(e capModeReportEvent) {
	supported := e.Setting >= 1 && e.Setting <= 4
	if !supported {
		return
	}
	switch e.Mode {
	case modeSynchronizedOutput:
		c.SynchronizedOutput = true
	case modeColorSchemeUpdates:
		c.ColorSchemeUpdates = true
	case modeInBandResize:
		c.InBandResize = true
	case modeRGB:
		c.RGB = true
	case modeSGRPixelMouse:
		c.SGRPixelMouse = true
	}
}

func isDark(c Color) bool {
	// Rec. 601 luma, the same rough threshold termenv's HasDarkBackground
	// uses internally.
	luma := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	return luma < 128
}

// probeSequence is the fixed byte string QueryTerminal writes: DA1,
// DECRQM for the modes above, the Kitty keyboard flags query, and a
// Kitty graphics capability probe. Every query is paired with an
// answer an absent/non-conforming terminal will simply never send,
// so Capabilities for that feature stays at its zero value.
const probeSequence = "" +
	"\x1b[c" + // DA1
	"\x1b[?2026$p" + // synchronized output
	"\x1b[?2027$p" + // direct-color / RGB
	"\x1b[?2031$p" + // color scheme updates
	"\x1b[?2048$p" + // in-band resize
	"\x1b[?1016$p" + // SGR-pixel mouse
	"\x1b[?u" + // Kitty keyboard flags query
	"\x1b_Gi=1,a=q\x1b\\" // Kitty graphics probe (APC), query action

// QueryTerminal writes the fixed capability-probe sequence to w and
// seeds the returned Capabilities with termenv/isatty environment
// hints (weak signals available before any answer can arrive). Loop
// is responsible for reading the responses back off the same TTY and
// folding them in via FoldProbe; QueryTerminal itself never blocks on a
// response — the probe is fire-and-forget from the caller's
// perspective.
func QueryTerminal(w io.Writer) (Capabilities, error) {
	caps := Capabilities{WidthMethod: WidthWcwidth}
	seedEnvironmentHints(&caps)
	_, err := io.WriteString(w, probeSequence)
	return caps, err
}

// seedEnvironmentHints fills in the weak, non-query-able fields
// termenv derives from COLORTERM/TERM/COLORFGBG, only consulting the
// environment when stdout is actually a TTY.
func seedEnvironmentHints(caps *Capabilities) {
	if !termenvIsTerminal() {
		return
	}
	output := termenv.NewOutput(os.Stdout)
	caps.DarkBackground = output.HasDarkBackground()
	if fg := output.ForegroundColor(); fg != nil {
		caps.Foreground = termenvColor(fg)
	}
	if bg := output.BackgroundColor(); bg != nil {
		caps.Background = termenvColor(bg)
	}
	if ct := os.Getenv("COLORTERM"); ct == "truecolor" || ct == "24bit" {
		caps.RGB = true
	}
}

func termenvIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// termenvColor converts a termenv.Color to a vx.Color: an RGBColor is
// parsed directly as hex, anything else goes through ConvertToRGB.
func termenvColor(c termenv.Color) Color {
	if rgbc, ok := c.(termenv.RGBColor); ok {
		if v, ok := parseHexColor(string(rgbc)); ok {
			return v
		}
	}
	rgb := termenv.ConvertToRGB(c)
	return RGB(
		uint8(rgb.R*255+0.5),
		uint8(rgb.G*255+0.5),
		uint8(rgb.B*255+0.5),
	)
}

func parseHexColor(hex string) (Color, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return Color{}, false
	}
	v, ok := parseX11Color("rgb:" + hex[1:3] + "/" + hex[3:5] + "/" + hex[5:7])
	return v, ok
}
