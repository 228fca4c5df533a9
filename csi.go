package vx

import (
	"strconv"
	"strings"
)

// GroupParams splits a flat Param slice (as produced by ParamIterator)
// back into ';'-separated groups, each possibly carrying ':'
// sub-parameters — the shape the Kitty Keyboard Protocol and SGR 38/48
// need.
func GroupParams(params []Param) [][]Param {
	var groups [][]Param
	for _, p := range params {
		if !p.SubOf || len(groups) == 0 {
			groups = append(groups, []Param{p})
		} else {
			groups[len(groups)-1] = append(groups[len(groups)-1], p)
		}
	}
	return groups
}

func (p *Parser) deriveCSIEvent(tok csiToken) (Event, bool, error) {
	params := NewParamIterator(tok.Params).All()
	groups := GroupParams(params)

	switch tok.Final {
	case 'u':
		if tok.Private == '?' {
			return deriveCapCSI(groups), true, nil
		}
		return deriveKittyKey(groups, KeyPress), true, nil

	case '~':
		ev := deriveTildeKey(groups)
		if ev == nil {
			return nil, false, nil
		}
		if _, ok := ev.(PasteStartEvent); ok {
			p.inPaste = true
		}
		return ev, true, nil

	case 'A', 'B', 'C', 'D', 'H', 'F', 'P', 'Q', 'R', 'S', 'Z':
		return deriveLegacyLetterKey(tok.Final, groups), true, nil

	case 'I':
		return FocusInEvent{}, true, nil
	case 'O':
		return FocusOutEvent{}, true, nil

	case 'M', 'm':
		if tok.Private == '<' {
			ev := deriveSGRMouse(groups, tok.Final == 'm')
			if ev == nil {
				return nil, false, nil
			}
			return ev, true, nil
		}
		return nil, false, nil

	case 'c':
		if tok.Private == '?' {
			return capDA1Event{}, true, nil
		}
		return nil, false, nil

	case 'y':
		if tok.Private == '?' && tok.Intermediate == '$' {
			return deriveModeReport(groups), true, nil
		}
		return nil, false, nil

	default:
		return nil, false, nil
	}
}

// --- Kitty protocol ---

// capDA1Event and the other cap* types mark capability-probe responses.
// They are internal — Loop folds them into Capabilities and never
// forwards them to the application. See capability.go.
type capDA1Event struct{}

func (capDA1Event) isEvent() {}

type capKittyKeyboardEvent struct{ Flags int }

func (capKittyKeyboardEvent) isEvent() {}

type capModeReportEvent struct {
	Mode, Setting int
}

func (capModeReportEvent) isEvent() {}

type capKittyGraphicsEvent struct{ Supported bool }

func (capKittyGraphicsEvent) isEvent() {}

type capRGBEvent struct{ Supported bool }

func (capRGBEvent) isEvent() {}

func deriveCapCSI(groups [][]Param) Event {
	if len(groups) == 0 || len(groups[0]) == 0 {
		return capDA1Event{}
	}
	first := groups[0][0].IntOr(0)
	if first == 2048 {
		return capDA1Event{}
	}
	// Otherwise this is the Kitty keyboard progressive-enhancement
	// flags response: `CSI ? flags u`.
	return capKittyKeyboardEvent{Flags: first}
}

func deriveModeReport(groups [][]Param) Event {
	if len(groups) == 0 {
		return capModeReportEvent{}
	}
	mode := groups[0][0].IntOr(0)
	setting := 0
	if len(groups) > 1 && len(groups[1]) > 0 {
		setting = groups[1][0].IntOr(0)
	} else if len(groups[0]) > 1 {
		setting = groups[0][1].IntOr(0)
	}
	return capModeReportEvent{Mode: mode, Setting: setting}
}

// deriveKittyKey decodes `CSI unicode[:shifted[:base]] ; mods[:event] ; text u`.
func deriveKittyKey(groups [][]Param, fallback KeyEventType) Event {
	var ev KeyEvent
	ev.EventType = fallback

	if len(groups) > 0 {
		g := groups[0]
		if len(g) > 0 {
			ev.Codepoint = rune(g[0].IntOr(0))
		}
		if len(g) > 1 {
			ev.Shifted = rune(g[1].IntOr(0))
		}
		if len(g) > 2 {
			ev.Base = rune(g[2].IntOr(0))
		}
	}
	if len(groups) > 1 {
		g := groups[1]
		if len(g) > 0 {
			mod := g[0].IntOr(1)
			ev.Modifiers = xtermModifiers(mod)
		}
		if len(g) > 1 {
			switch g[1].IntOr(1) {
			case 2:
				ev.EventType = KeyRepeat
			case 3:
				ev.EventType = KeyRelease
			default:
				ev.EventType = KeyPress
			}
		}
	}
	if len(groups) > 2 {
		var runes []rune
		for _, p := range groups[2] {
			if !p.Empty {
				runes = append(runes, rune(p.Value))
			}
		}
		ev.Text = string(runes)
	}
	return ev
}

// xtermModifiers decodes the `1 + bitmask` modifier parameter used by
// both legacy xterm function-key reporting and the Kitty protocol's
// modifier field.
func xtermModifiers(raw int) Modifiers {
	if raw <= 0 {
		return 0
	}
	return Modifiers(raw - 1)
}

var tildeKeys = map[int]rune{
	1: KeyHome, 2: KeyInsert, 3: KeyDelete, 4: KeyEnd,
	5: KeyPageUp, 6: KeyPageDown,
	7: KeyHome, 8: KeyEnd,
	11: KeyF1, 12: KeyF2, 13: KeyF3, 14: KeyF4,
	15: KeyF1, 17: KeyF2, 18: KeyF3, 19: KeyF4,
}

// paste markers: CSI 200~ / CSI 201~ are handled by deriveTildeKey
// itself before it consults the generic function-key table.
const (
	pasteStartCode = 200
	pasteEndCode   = 201
)

func deriveTildeKey(groups [][]Param) Event {
	if len(groups) == 0 || len(groups[0]) == 0 {
		return nil
	}
	code := groups[0][0].IntOr(0)
	switch code {
	case pasteStartCode:
		return PasteStartEvent{}
	case pasteEndCode:
		return PasteEndEvent{}
	}
	r, ok := tildeKeys[code]
	if !ok {
		return nil
	}
	ev := KeyEvent{Codepoint: r}
	if len(groups) > 1 && len(groups[1]) > 0 {
		ev.Modifiers = xtermModifiers(groups[1][0].IntOr(1))
	}
	return ev
}

var legacyLetterKeys = map[byte]rune{
	'A': KeyUp, 'B': KeyDown, 'C': KeyRight, 'D': KeyLeft,
	'H': KeyHome, 'F': KeyEnd,
	'P': KeyF1, 'Q': KeyF2, 'R': KeyF3, 'S': KeyF4,
	'Z': KeyBacktab,
}

// deriveLegacyLetterKey decodes `CSI [Ps;Pm] <letter>`: Ps is an
// optional repeat count (ignored), Pm the xterm modifier parameter.
func deriveLegacyLetterKey(final byte, groups [][]Param) Event {
	ev := KeyEvent{Codepoint: legacyLetterKeys[final]}
	if len(groups) > 1 && len(groups[1]) > 0 {
		ev.Modifiers = xtermModifiers(groups[1][0].IntOr(1))
	}
	return ev
}

// --- SGR mouse ---

func deriveSGRMouse(groups [][]Param, isRelease bool) Event {
	if len(groups) < 3 {
		return nil
	}
	raw := groups[0][0].IntOr(0)
	col := groups[1][0].IntOr(1) - 1
	row := groups[2][0].IntOr(1) - 1

	const (
		bitMotion = 1 << 5
		bitShift  = 1 << 2
		bitAlt    = 1 << 3
		bitCtrl   = 1 << 4
	)

	ev := MouseEvent{Col: col, Row: row}
	if raw&bitShift != 0 {
		ev.Modifiers |= ModShift
	}
	if raw&bitAlt != 0 {
		ev.Modifiers |= ModAlt
	}
	if raw&bitCtrl != 0 {
		ev.Modifiers |= ModCtrl
	}

	btnBits := raw & 0x43 // bits 0,1 and bit 6 (wheel)
	switch {
	case raw&0x40 != 0:
		switch btnBits & 0x3 {
		case 0:
			ev.Button = MouseWheelUp
		case 1:
			ev.Button = MouseWheelDown
		case 2:
			ev.Button = MouseWheelLeft
		case 3:
			ev.Button = MouseWheelRight
		}
		ev.Action = MousePress
	case raw&bitMotion != 0:
		ev.Action = MouseMotion
		ev.Button = mouseButtonFromBits(raw & 0x3)
	case isRelease:
		ev.Action = MouseRelease
		ev.Button = mouseButtonFromBits(raw & 0x3)
	default:
		ev.Action = MousePress
		ev.Button = mouseButtonFromBits(raw & 0x3)
	}
	return ev
}

func mouseButtonFromBits(b int) MouseButton {
	switch b {
	case 0:
		return MouseLeft
	case 1:
		return MouseMiddle
	case 2:
		return MouseRight
	default:
		return MouseNone
	}
}

// --- OSC / APC derivation ---

func deriveOSCEvent(payload []byte) (Event, bool, error) {
	s := string(payload)
	code, rest, ok := cutOSC(s)
	if !ok {
		return nil, false, nil
	}
	switch code {
	case "0", "2":
		return TitleChangeEvent{Title: rest}, true, nil
	case "7":
		return PwdChangeEvent{Path: decodeFileURL(rest)}, true, nil
	case "10", "11":
		c, ok := parseX11Color(rest)
		if !ok {
			return nil, false, nil
		}
		kind := ColorReportForeground
		if code == "11" {
			kind = ColorReportBackground
		}
		return ColorReportEvent{Kind: kind, Color: c}, true, nil
	case "4":
		slotStr, colorStr, ok := cutOSC(rest)
		if !ok {
			return nil, false, nil
		}
		slot, err := strconv.Atoi(slotStr)
		if err != nil {
			return nil, false, nil
		}
		c, ok := parseX11Color(colorStr)
		if !ok {
			return nil, false, nil
		}
		return ColorReportEvent{Kind: ColorReportPalette, Color: c, PaletteSlot: slot}, true, nil
	case "52":
		_, b64, ok := cutOSC(rest)
		if !ok {
			return nil, false, nil
		}
		text, err := decodeBase64Clipboard(b64)
		if err != nil {
			return nil, false, nil
		}
		return ClipboardReportEvent{Text: text}, true, nil
	default:
		return nil, false, nil
	}
}

func deriveAPCEvent(payload []byte) (Event, bool, error) {
	s := string(payload)
	if !strings.HasPrefix(s, "G") {
		return nil, false, nil
	}
	// Kitty graphics probe response: `G i=1,...;OK` or an error payload.
	// We only care whether the terminal answered at all and whether it
	// reported an error for the capability probe's query action.
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		status := s[idx+1:]
		return capKittyGraphicsEvent{Supported: status == "OK" || status == ""}, true, nil
	}
	return capKittyGraphicsEvent{Supported: true}, true, nil
}

func cutOSC(s string) (before, after string, ok bool) {
	idx := strings.IndexByte(s, ';')
	if idx < 0 {
		return s, "", len(s) > 0
	}
	return s[:idx], s[idx+1:], true
}
