package vx

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// Parser is an incremental VT/ANSI byte-stream state machine. It holds
// no reference to any particular reader; Next is called repeatedly with
// a *bufio.Reader positioned wherever the previous call left off.
//
// Parser is not safe for concurrent use — each TTY (or VT emulator) owns
// exactly one, read from its own goroutine.
type Parser struct {
	// pending carries exactly one byte across calls to Next: the byte
	// that interrupted a ground-state print run (a C0 control or ESC)
	// and must be reprocessed as the start of the next event.
	pending    byte
	hasPending bool

	// WidthMethod controls how far Print events that also track display
	// width would size graphemes; the parser itself is width-agnostic,
	// but downstream consumers (Screen) read this back. Kept here so a
	// single Capabilities fold-in updates both the renderer and the
	// parser's own notion of "what the terminal believes."
	WidthMethod WidthMethod

	// maxPaste bounds an aggregated bracketed-paste payload. 0 means
	// unbounded (block until the paste-end marker).
	maxPaste        int
	pasteBuf        []byte
	inPaste         bool
	pasteEndPending bool
}

// NewParser returns a Parser ready to read from the ground state.
func NewParser() *Parser { return &Parser{WidthMethod: WidthWcwidth} }

// SetMaxPasteBytes bounds how large an aggregated paste() event's text
// may grow; 0 (the default) means unbounded.
func (p *Parser) SetMaxPasteBytes(n int) { p.maxPaste = n }

// Next consumes bytes from r until it can emit exactly one Event,
// leaving r positioned at the next unread byte. It blocks (via r's
// underlying Read) for more input on a partial UTF-8 sequence or an
// unterminated escape sequence.
//
// Next never returns both a nil error and a nil event. At end of
// stream it returns a *ParseError of kind "truncated" wrapping
// ErrSevered; other read errors are returned unchanged.
func (p *Parser) Next(r *bufio.Reader) (Event, error) {
	for {
		ev, ok, err := p.step(r)
		if err != nil {
			return nil, err
		}
		if ok {
			return ev, nil
		}
	}
}

func (p *Parser) readByte(r *bufio.Reader) (byte, error) {
	if p.hasPending {
		p.hasPending = false
		return p.pending, nil
	}
	b, err := r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, &ParseError{Kind: "truncated", Err: ErrSevered}
		}
		return 0, err
	}
	return b, nil
}

func isC0(b byte) bool {
	return b <= 0x1a || (b >= 0x1c && b <= 0x1f)
}

// step performs one state-machine transition, returning an event and ok
// = true when it has something to report, or ok = false when the
// transition was consumed internally (e.g. a DCS/SOS/PM string skipped,
// or an SS2/SS3 shift with no Event mapping) and the caller should loop.
func (p *Parser) step(r *bufio.Reader) (Event, bool, error) {
	if p.inPaste || p.pasteEndPending {
		return p.stepPaste(r)
	}

	b, err := p.readByte(r)
	if err != nil {
		return nil, false, err
	}

	switch {
	case b == 0x1b:
		return p.parseEscape(r)
	case isC0(b):
		return c0Event(b), true, nil
	default:
		return p.parsePrint(r, b)
	}
}

func (p *Parser) parsePrint(r *bufio.Reader, first byte) (Event, bool, error) {
	var buf []byte
	buf = append(buf, first)
	for {
		nb, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// End of stream with a completed (if short) run: emit
				// what we have, the next Next() call will see the EOF.
				break
			}
			return nil, false, err
		}
		if isC0(nb) || nb == 0x1b {
			p.pending = nb
			p.hasPending = true
			break
		}
		buf = append(buf, nb)
	}
	text := string(buf)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return PrintEvent{Text: text}, true, nil
}

func c0Event(b byte) Event {
	switch b {
	case 0x00:
		return KeyEvent{Codepoint: '@', Modifiers: ModCtrl}
	case 0x09:
		return KeyEvent{Codepoint: '\t'}
	case 0x0a:
		return KeyEvent{Codepoint: '\n'}
	case 0x0d:
		return KeyEvent{Codepoint: '\r'}
	case 0x1c:
		return KeyEvent{Codepoint: '\\', Modifiers: ModCtrl}
	case 0x1d:
		return KeyEvent{Codepoint: ']', Modifiers: ModCtrl}
	case 0x1e:
		return KeyEvent{Codepoint: '^', Modifiers: ModCtrl}
	case 0x1f:
		return KeyEvent{Codepoint: '_', Modifiers: ModCtrl}
	case 0x07:
		return BellEvent{}
	default:
		// 0x01-0x1a (excluding handled above): ctrl+a..ctrl+z.
		return KeyEvent{Codepoint: rune(b | 0x60), Modifiers: ModCtrl}
	}
}

func (p *Parser) parseEscape(r *bufio.Reader) (Event, bool, error) {
	nb, err := r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, &ParseError{Kind: "truncated", Err: ErrSevered}
		}
		return nil, false, err
	}

	switch nb {
	case 'N', 'O': // SS2 / SS3: consume the shifted byte, no Event mapping.
		if _, err := r.ReadByte(); err != nil && !errors.Is(err, io.EOF) {
			return nil, false, err
		}
		return nil, false, nil
	case 'P', 'X', '^': // DCS / SOS / PM: skip to ST.
		if err := p.skipUntilST(r); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	case '[':
		return p.parseCSI(r)
	case ']':
		return p.parseOSC(r)
	case '_':
		return p.parseAPC(r)
	default:
		if nb >= 0x20 && nb <= 0x2f {
			return p.parseEscapeIntermediate(r, nb)
		}
		return escapeEvent(nb), true, nil
	}
}

// parseEscapeIntermediate consumes a `ESC 0x20-0x2f+ final` sequence.
// Spec §4.1 names this shape (e.g. character-set designation) but it
// has no mapping in the Event union, so it is collected and discarded.
func (p *Parser) parseEscapeIntermediate(r *bufio.Reader, first byte) (Event, bool, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, false, &ParseError{Kind: "truncated", Err: ErrSevered}
			}
			return nil, false, err
		}
		if b >= 0x20 && b <= 0x2f {
			continue // further intermediates; last one doesn't matter, nothing consumes them
		}
		return nil, false, nil // final byte (b >= 0x30) reached, sequence complete
	}
}

// escapeEvent maps a bare ESC + single printable byte to an Alt-modified
// key, the common terminal convention for Meta/Alt key reporting when
// the Kitty protocol isn't active.
func escapeEvent(b byte) Event {
	if b >= 0x20 && b <= 0x7e {
		return KeyEvent{Codepoint: rune(b), Modifiers: ModAlt}
	}
	return KeyEvent{Codepoint: rune(b), Modifiers: ModAlt | ModCtrl}
}

func (p *Parser) skipUntilST(r *bufio.Reader) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &ParseError{Kind: "truncated", Err: ErrSevered}
			}
			return err
		}
		if b != 0x1b {
			continue
		}
		nb, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &ParseError{Kind: "truncated", Err: ErrSevered}
			}
			return err
		}
		if nb == '\\' {
			return nil
		}
		// Not a valid ST; keep scanning from this second byte onward.
	}
}

// csiToken is the fully-collected representation of one CSI sequence,
// used by deriveCSIEvent (csi.go) to produce the typed Event.
type csiToken struct {
	Private      byte // 0 if none
	Intermediate byte // 0 if none
	Params       []byte
	Final        byte
}

func (p *Parser) parseCSI(r *bufio.Reader) (Event, bool, error) {
	var tok csiToken
	var params []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, false, &ParseError{Kind: "truncated", Err: ErrSevered}
			}
			return nil, false, err
		}
		switch {
		case b >= 0x3c && b <= 0x3f:
			tok.Private = b // last wins, even outside first position (see Open Questions)
		case b >= 0x30 && b <= 0x3b:
			params = append(params, b)
		case b >= 0x20 && b <= 0x2f:
			tok.Intermediate = b // last wins
		case b >= 0x40:
			tok.Params = params
			tok.Final = b
			return p.deriveCSIEvent(tok)
		default:
			// Stray C0/DEL inside a CSI sequence: ignore and keep scanning.
		}
	}
}

func (p *Parser) parseOSC(r *bufio.Reader) (Event, bool, error) {
	payload, err := p.readOSCLikePayload(r)
	if err != nil {
		return nil, false, err
	}
	return deriveOSCEvent(payload)
}

func (p *Parser) parseAPC(r *bufio.Reader) (Event, bool, error) {
	payload, err := p.readOSCLikePayload(r)
	if err != nil {
		return nil, false, err
	}
	return deriveAPCEvent(payload)
}

// readOSCLikePayload reads bytes up to (not including) a BEL or ST
// terminator, used for both OSC and APC strings.
func (p *Parser) readOSCLikePayload(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &ParseError{Kind: "truncated", Err: ErrSevered}
			}
			return nil, err
		}
		if b == 0x07 {
			return buf, nil
		}
		if b == 0x1b {
			nb, err := r.ReadByte()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil, &ParseError{Kind: "truncated", Err: ErrSevered}
				}
				return nil, err
			}
			if nb == '\\' {
				return buf, nil
			}
			// Malformed terminator: treat the ESC as ending the string
			// anyway rather than blocking forever.
			return buf, nil
		}
		buf = append(buf, b)
	}
}
