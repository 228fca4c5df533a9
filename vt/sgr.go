package vt

import "github.com/vxterm/vx"

// decodeSGR folds a CSI 'm' parameter list onto style, handling the
// 38/48/58 extended-color forms (both the standard ':'-separated
// ITU-T T.416 form and the common ';'-separated xterm form) and the
// underline-style sub-parameter (4:N). Parameters this emulator
// doesn't recognize are ignored, matching real terminals' tolerance
// for SGR codes from a newer spec version.
func decodeSGR(it *vx.ParamIterator, style vx.Style) vx.Style {
	params := it.All()
	if len(params) == 0 {
		return vx.Style{}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch p.IntOr(0) {
		case 0:
			style = vx.Style{}
		case 1:
			style.Bold = true
		case 2:
			style.Dim = true
		case 3:
			style.Italic = true
		case 4:
			style.UnderlineStyle = vx.UnderlineSingle
			if i+1 < len(params) && params[i+1].SubOf {
				style.UnderlineStyle = underlineStyleFromSub(params[i+1].IntOr(1))
				i++
			}
		case 5:
			style.Blink = true
		case 7:
			style.Reverse = true
		case 8:
			style.Invisible = true
		case 9:
			style.Strikethrough = true
		case 21:
			style.UnderlineStyle = vx.UnderlineDouble
		case 22:
			style.Bold, style.Dim = false, false
		case 23:
			style.Italic = false
		case 24:
			style.UnderlineStyle = vx.UnderlineOff
		case 25:
			style.Blink = false
		case 27:
			style.Reverse = false
		case 28:
			style.Invisible = false
		case 29:
			style.Strikethrough = false
		case 38:
			c, consumed := decodeExtendedColor(params[i+1:])
			style.Foreground = c
			i += consumed
		case 39:
			style.Foreground = vx.Default
		case 48:
			c, consumed := decodeExtendedColor(params[i+1:])
			style.Background = c
			i += consumed
		case 49:
			style.Background = vx.Default
		case 58:
			c, consumed := decodeExtendedColor(params[i+1:])
			style.Underline = c
			i += consumed
		case 59:
			style.Underline = vx.Default
		default:
			if n := p.IntOr(0); n >= 30 && n <= 37 {
				style.Foreground = vx.Indexed(uint8(n - 30))
			} else if n >= 40 && n <= 47 {
				style.Background = vx.Indexed(uint8(n - 40))
			} else if n >= 90 && n <= 97 {
				style.Foreground = vx.Indexed(uint8(n - 90 + 8))
			} else if n >= 100 && n <= 107 {
				style.Background = vx.Indexed(uint8(n - 100 + 8))
			}
		}
	}
	return style
}

func underlineStyleFromSub(n int) vx.UnderlineStyle {
	switch n {
	case 0:
		return vx.UnderlineOff
	case 2:
		return vx.UnderlineDouble
	case 3:
		return vx.UnderlineCurly
	case 4:
		return vx.UnderlineDotted
	case 5:
		return vx.UnderlineDashed
	default:
		return vx.UnderlineSingle
	}
}

// decodeExtendedColor decodes the sub-parameters following an SGR
// 38/48/58 code, in either the ';'-separated xterm form (38;5;N or
// 38;2;R;G;B) or the ':'-separated ITU form (38:2::R:G:B, where the
// empty color-space id between the 2 and R is the xterm quirk spec
// calls out). It returns the decoded color and how many following
// parameters it consumed.
func decodeExtendedColor(rest []vx.Param) (vx.Color, int) {
	if len(rest) == 0 {
		return vx.Default, 0
	}
	switch rest[0].IntOr(0) {
	case 5:
		if len(rest) < 2 {
			return vx.Default, len(rest)
		}
		return vx.Indexed(uint8(rest[1].IntOr(0))), 2
	case 2:
		// xterm: 2;R;G;B (3 more). ITU: 2:CS:R:G:B, where CS is often
		// empty — both shapes land here as consecutive params once
		// tokenized, so skip a leading empty color-space parameter.
		idx := 1
		if idx < len(rest) && rest[idx].SubOf && rest[idx].Empty {
			idx++
		}
		if idx+2 >= len(rest) {
			return vx.Default, len(rest)
		}
		r := uint8(rest[idx].IntOr(0))
		g := uint8(rest[idx+1].IntOr(0))
		b := uint8(rest[idx+2].IntOr(0))
		return vx.RGB(r, g, b), idx + 3
	default:
		return vx.Default, 1
	}
}
