package vt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vxterm/vx"
	"github.com/vxterm/vx/internal/version"
)

// Terminal is the xterm-subset interpreter: it consumes a child
// process's raw stdout byte stream and mutates a Screen accordingly.
// Unlike vx.Parser, which turns a real terminal's input stream (key
// presses, mouse reports) into Event values for an application,
// Terminal here plays the terminal's own role — it is the thing being
// written to, not the thing reading keys.
type Terminal struct {
	primary   *Screen
	alternate *Screen
	active    *screenSelector

	style vx.Style

	savedCol, savedRow int
	savedStyle         vx.Style

	autowrap  bool // DECAWM, default on
	origin    bool // DECOM
	altActive bool

	title       string
	titleSink   func(string)
	bellSink    func()
	resizeAware bool // DEC 2048 in-band resize negotiated

	paramBuf []byte
	interBuf []byte
	private  byte

	responder io.Writer
}

// screenSelector indirects Terminal's "active" screen so Screen
// swaps (primary <-> alternate) don't require rewriting every call
// site; it always points at either primary or alternate.
type screenSelector struct{ s *Screen }

// NewTerminal returns a Terminal with a primary screen of the given
// size and scrollback depth, and a same-sized alternate screen with no
// scrollback (matching real terminals: the alternate screen never
// feeds history).
func NewTerminal(cols, rows, scrollback int) *Terminal {
	t := &Terminal{
		primary:   NewScreen(cols, rows, scrollback),
		alternate: NewScreen(cols, rows, 0),
		autowrap:  true,
	}
	t.active = &screenSelector{s: t.primary}
	return t
}

// OnTitleChange registers a callback invoked whenever the child sets
// the window title via OSC 0/2.
func (t *Terminal) OnTitleChange(fn func(string)) { t.titleSink = fn }

// OnBell registers a callback invoked on BEL.
func (t *Terminal) OnBell(fn func()) { t.bellSink = fn }

// SetResponder registers the writer Terminal answers DA1, DSR, DECRQM,
// and XTVERSION queries on — ordinarily the PTY master, so the answer
// reaches the child the same way a real terminal's reply would reach
// an application reading its own stdin. A nil responder (the default)
// makes every such query a silent no-op, matching how an unanswered
// query behaves against a terminal that doesn't support it.
func (t *Terminal) SetResponder(w io.Writer) { t.responder = w }

func (t *Terminal) respond(s string) {
	if t.responder == nil {
		return
	}
	_, _ = io.WriteString(t.responder, s)
}

// Screen returns the currently active screen (primary or alternate).
func (t *Terminal) Screen() *Screen { return t.active.s }

// Title returns the most recently set window title.
func (t *Terminal) Title() string { return t.title }

// Resize propagates a size change to both screens; only the currently
// active one is visibly affected but both stay consistent so a
// subsequent screen swap doesn't show stale dimensions.
func (t *Terminal) Resize(cols, rows int) {
	t.primary.Resize(cols, rows)
	t.alternate.Resize(cols, rows)
}

// Feed interprets child output read from r, updating the active
// screen, until r returns an error, which Feed returns. It is safe to
// call repeatedly with successive chunks read from a PTY.
func (t *Terminal) Feed(r *bufio.Reader) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		t.feedByte(b, r)
	}
}

func (t *Terminal) feedByte(b byte, r *bufio.Reader) {
	switch b {
	case 0x1b:
		t.handleEscape(r)
	case '\r':
		t.active.s.cursorCol = 0
		t.active.s.pendingWrap = false
	case '\n', '\v', '\f':
		t.active.s.Newline()
	case '\b':
		if t.active.s.cursorCol > 0 {
			t.active.s.cursorCol--
			t.active.s.pendingWrap = false
		}
	case '\t':
		t.active.s.TabForward(1)
	case 0x07:
		if t.bellSink != nil {
			t.bellSink()
		}
	case 0x00:
		// NUL: ignored, as on real terminals.
	default:
		t.printByte(b, r)
	}
}

// printByte decodes one UTF-8 rune starting at b (which may be an
// ASCII byte or the lead byte of a multi-byte sequence) and Puts it.
func (t *Terminal) printByte(b byte, r *bufio.Reader) {
	if b < 0x80 {
		t.active.s.Put(string(rune(b)), 1, t.style, t.autowrap)
		return
	}
	n := utf8ExtraBytes(b)
	buf := make([]byte, 0, n+1)
	buf = append(buf, b)
	for i := 0; i < n; i++ {
		nb, err := r.ReadByte()
		if err != nil {
			break
		}
		buf = append(buf, nb)
	}
	g := string(buf)
	w := vx.GraphemeWidth(g, vx.WidthWcwidth)
	if w <= 0 {
		w = 1
	}
	t.active.s.Put(g, w, t.style, t.autowrap)
}

func utf8ExtraBytes(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 1
	case lead&0xF0 == 0xE0:
		return 2
	case lead&0xF8 == 0xF0:
		return 3
	default:
		return 0
	}
}

func (t *Terminal) handleEscape(r *bufio.Reader) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case '[':
		t.handleCSI(r)
	case ']':
		t.handleOSC(r)
	case '_', 'P', '^', 'X':
		skipUntilST(r)
	case 'D':
		t.active.s.Newline()
	case 'M':
		t.reverseIndex()
	case 'E':
		t.active.s.cursorCol = 0
		t.active.s.Newline()
	case 'c':
		t.reset()
	case '7':
		t.savedCol, t.savedRow = t.active.s.cursorCol, t.active.s.cursorRow
		t.savedStyle = t.style
	case '8':
		t.active.s.MoveCursor(t.savedCol, t.savedRow, false)
		t.style = t.savedStyle
	case '(', ')', '*', '+':
		// charset designation: read and discard the designator byte.
		_, _ = r.ReadByte()
	default:
	}
}

func (t *Terminal) reverseIndex() {
	s := t.active.s
	if s.cursorRow == s.scrollTop {
		s.ScrollDown(1)
		return
	}
	if s.cursorRow > 0 {
		s.cursorRow--
	}
}

func (t *Terminal) reset() {
	cols, rows := t.active.s.Size()
	t.primary = NewScreen(cols, rows, t.primary.scrollbackMax)
	t.alternate = NewScreen(cols, rows, 0)
	t.active.s = t.primary
	t.style = vx.Style{}
	t.autowrap = true
	t.origin = false
}

// skipUntilST discards bytes up to and including a String Terminator
// (ESC \ or BEL), for DCS/SOS/PM payloads this emulator doesn't
// interpret. Unlike vx.Parser's skip, a BEL also ends it.
func skipUntilST(r *bufio.Reader) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		if b == 0x07 {
			return
		}
		if b == 0x1b {
			peek, err := r.Peek(1)
			if err == nil && len(peek) == 1 && peek[0] == '\\' {
				_, _ = r.ReadByte()
				return
			}
		}
	}
}

func (t *Terminal) handleOSC(r *bufio.Reader) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		if b == 0x07 {
			break
		}
		if b == 0x1b {
			peek, err := r.Peek(1)
			if err == nil && len(peek) == 1 && peek[0] == '\\' {
				_, _ = r.ReadByte()
				break
			}
		}
		buf = append(buf, b)
	}
	s := string(buf)
	idx := strings.IndexByte(s, ';')
	if idx < 0 {
		return
	}
	code, rest := s[:idx], s[idx+1:]
	switch code {
	case "0", "2":
		t.title = rest
		if t.titleSink != nil {
			t.titleSink(rest)
		}
	case "1":
		// icon name: no on-screen effect, accepted and ignored.
	}
}

func (t *Terminal) handleCSI(r *bufio.Reader) {
	t.paramBuf = t.paramBuf[:0]
	t.interBuf = t.interBuf[:0]
	t.private = 0

	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		switch {
		case b == '?' || b == '>' || b == '=':
			t.private = b
		case b >= '0' && b <= '9' || b == ';' || b == ':':
			t.paramBuf = append(t.paramBuf, b)
		case b >= 0x20 && b <= 0x2f:
			t.interBuf = append(t.interBuf, b)
		case b >= 0x40 && b <= 0x7e:
			t.dispatchCSI(b)
			return
		default:
			return
		}
	}
}

func (t *Terminal) dispatchCSI(final byte) {
	it := vx.NewParamIterator(t.paramBuf)
	params := it.All()
	groups := vx.GroupParams(params)
	n := func(i, def int) int {
		if i < len(groups) && len(groups[i]) > 0 {
			return groups[i][0].IntOr(def)
		}
		return def
	}
	s := t.active.s
	inter := string(t.interBuf)

	switch {
	case t.private == '?' && inter == "$" && final == 'p':
		t.reportDECRQM(n(0, 0))
		return
	case inter == " " && final == 'q':
		s.setCursorShape(n(0, 0))
		return
	case t.private == '>' && final == 'q':
		t.reportXTVERSION()
		return
	}

	if t.private == '?' {
		t.dispatchPrivateMode(final, n(0, 0))
		return
	}

	switch final {
	case 'A':
		s.MoveCursor(s.cursorCol, s.cursorRow-n(0, 1), false)
	case 'B', 'e':
		s.MoveCursor(s.cursorCol, s.cursorRow+n(0, 1), false)
	case 'C', 'a':
		s.MoveCursor(s.cursorCol+n(0, 1), s.cursorRow, false)
	case 'D':
		s.MoveCursor(s.cursorCol-n(0, 1), s.cursorRow, false)
	case 'E':
		s.MoveCursor(0, s.cursorRow+n(0, 1), false)
	case 'F':
		s.MoveCursor(0, s.cursorRow-n(0, 1), false)
	case 'G', '`':
		s.MoveCursor(n(0, 1)-1, s.cursorRow, false)
	case 'd':
		s.MoveCursor(s.cursorCol, n(0, 1)-1, false)
	case 'H', 'f':
		s.MoveCursor(n(1, 1)-1, n(0, 1)-1, t.origin)
	case 'I':
		s.TabForward(n(0, 1))
	case 'Z':
		s.TabBackward(n(0, 1))
	case 'J':
		s.EraseInDisplay(n(0, 0))
	case 'K':
		s.EraseInLine(n(0, 0))
	case 'L':
		s.InsertLines(n(0, 1))
	case 'M':
		s.DeleteLines(n(0, 1))
	case 'P':
		s.DeleteChars(n(0, 1))
	case '@':
		s.InsertChars(n(0, 1))
	case 'X':
		s.clearRange(s.cursorRow, s.cursorCol, s.cursorCol+n(0, 1))
	case 'S':
		s.ScrollUp(n(0, 1))
	case 'T':
		s.ScrollDown(n(0, 1))
	case 'b':
		s.Repeat(n(0, 1), t.style, t.autowrap)
	case 'g':
		s.ClearTabStop(n(0, 0))
	case 'r':
		top := n(0, 1) - 1
		bottom := n(1, s.rows)
		s.SetScrollRegion(top, bottom)
		s.MoveCursor(0, 0, t.origin)
	case 'm':
		t.style = decodeSGR(it, t.style)
	case 's':
		t.savedCol, t.savedRow = s.cursorCol, s.cursorRow
	case 'u':
		s.MoveCursor(t.savedCol, t.savedRow, false)
	case 'h', 'l':
		// Non-private-marker mode set/reset (e.g. CSI 4h insert mode):
		// accepted, has no observable effect in this emulator's subset.
	case 'c':
		t.reportDA1()
	case 'n':
		t.reportDSR(n(0, 0))
	default:
	}
}

// reportDA1 answers Primary Device Attributes: VT100 with the
// Advanced Video Option, the same minimal compatible answer xterm
// falls back to for clients that don't need a richer feature list.
func (t *Terminal) reportDA1() {
	t.respond("\x1b[?1;2c")
}

// reportDSR answers a Device Status Report query: Ps 5 is a general
// status request (answered "ok"), Ps 6 is a cursor position report.
// Any other Ps is accepted and silently ignored, as on a real
// terminal asked about a status it doesn't track.
func (t *Terminal) reportDSR(ps int) {
	switch ps {
	case 5:
		t.respond("\x1b[0n")
	case 6:
		col, row := t.active.s.Cursor()
		t.respond(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))
	}
}

// reportDECRQM answers a DECRQM mode query (CSI ? Ps $ p) for the
// handful of private modes this emulator actually tracks; any other
// mode is reported "not recognized" (0), the correct answer for a
// mode the terminal has no opinion on.
func (t *Terminal) reportDECRQM(mode int) {
	pm := 0
	switch mode {
	case 6:
		pm = decrqmSetting(t.origin)
	case 7:
		pm = decrqmSetting(t.autowrap)
	case 25:
		pm = decrqmSetting(t.active.s.CursorVisible())
	case 1049, 47, 1047:
		pm = decrqmSetting(t.altActive)
	case 2048:
		pm = decrqmSetting(t.resizeAware)
	}
	t.respond(fmt.Sprintf("\x1b[?%d;%d$y", mode, pm))
}

func decrqmSetting(set bool) int {
	if set {
		return 1
	}
	return 2
}

// reportXTVERSION answers CSI > q with this module's own version
// stamp, in xterm's DCS-wrapped reply format.
func (t *Terminal) reportXTVERSION() {
	t.respond("\x1bP>|vx-vt(" + version.Version + ")\x1b\\")
}

func (t *Terminal) dispatchPrivateMode(final byte, mode int) {
	set := final == 'h'
	if final != 'h' && final != 'l' {
		return
	}
	switch mode {
	case 1049, 47, 1047:
		t.swapScreen(set)
	case 6:
		t.origin = set
	case 7:
		t.autowrap = set
	case 2048:
		t.resizeAware = set
	case 25:
		t.active.s.cursorVisible(set)
	}
}

func (t *Terminal) swapScreen(toAlternate bool) {
	if toAlternate == t.altActive {
		return
	}
	t.altActive = toAlternate
	if toAlternate {
		t.alternate.EraseInDisplay(2)
		t.alternate.MoveCursor(0, 0, false)
		t.active.s = t.alternate
	} else {
		t.active.s = t.primary
	}
}
