package vx

import (
	"bufio"
	"bytes"
)

// pasteTerminator is the literal byte sequence that ends a bracketed
// paste (CSI 201~). While inPaste, the parser does not interpret ESC
// or C0 bytes as control sequences — bracketed paste exists precisely
// so pasted content can contain such bytes without the application
// mistaking them for terminal input.
var pasteTerminator = []byte{0x1b, '[', '2', '0', '1', '~'}

// stepPaste is step's entry point while the parser is inside a
// bracketed paste (p.inPaste) or has just closed one and owes the
// caller a PasteEndEvent (p.pasteEndPending). It keeps a paste-start
// event, one or more paste events, and a paste-end event contiguous.
func (p *Parser) stepPaste(r *bufio.Reader) (Event, bool, error) {
	if p.pasteEndPending {
		p.pasteEndPending = false
		return PasteEndEvent{}, true, nil
	}

	for {
		b, err := p.readByte(r)
		if err != nil {
			return nil, false, err
		}
		p.pasteBuf = append(p.pasteBuf, b)

		if bytes.HasSuffix(p.pasteBuf, pasteTerminator) {
			text := p.pasteBuf[:len(p.pasteBuf)-len(pasteTerminator)]
			ev := PasteEvent{Text: string(text)}
			p.pasteBuf = nil
			p.inPaste = false
			p.pasteEndPending = true
			return ev, true, nil
		}

		if p.maxPaste <= 0 {
			continue
		}
		// overlap is how many trailing bytes could still be the start of
		// the terminator; never flush those, or a terminator split across
		// two flushes would leak into a paste() event's text.
		overlap := terminatorOverlap(p.pasteBuf)
		if len(p.pasteBuf)-overlap < p.maxPaste {
			continue
		}
		flushed := p.pasteBuf[:len(p.pasteBuf)-overlap]
		p.pasteBuf = append([]byte(nil), p.pasteBuf[len(p.pasteBuf)-overlap:]...)
		return PasteEvent{Text: string(flushed)}, true, nil
	}
}

// terminatorOverlap returns the length of the longest suffix of buf
// that is also a prefix of pasteTerminator (and shorter than it).
func terminatorOverlap(buf []byte) int {
	max := len(pasteTerminator) - 1
	if max > len(buf) {
		max = len(buf)
	}
	for n := max; n > 0; n-- {
		if bytes.Equal(buf[len(buf)-n:], pasteTerminator[:n]) {
			return n
		}
	}
	return 0
}
