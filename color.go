package vx

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorKind discriminates the three color representations a Style can
// carry: the terminal's configured default, a legacy 256-slot index, or
// a truecolor RGB triple.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorRGB
)

// Color is a terminal foreground/background/underline color. The zero
// value is ColorDefault, matching "no color set" in SGR terms.
type Color struct {
	Kind        ColorKind
	Index       uint8 // valid when Kind == ColorIndexed
	R, G, B     uint8 // valid when Kind == ColorRGB
}

// Default is the terminal's configured default color.
var Default = Color{Kind: ColorDefault}

// Indexed returns a Color selecting one of the 256 palette slots.
func Indexed(i uint8) Color { return Color{Kind: ColorIndexed, Index: i} }

// RGB returns a truecolor Color.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// Downsample returns the Color the renderer should actually emit given
// the negotiated capabilities: RGB colors are converted to the nearest
// 256-color index when the terminal hasn't confirmed truecolor support.
func (c Color) Downsample(caps Capabilities) Color {
	if c.Kind != ColorRGB || caps.RGB {
		return c
	}
	return Indexed(nearest256(c.R, c.G, c.B))
}

// nearest256 maps an RGB triple to the closest color in the xterm
// 256-color cube (indices 16-231) or grayscale ramp (232-255), using
// perceptual (Lab) distance via go-colorful rather than naive Euclidean
// RGB distance.
func nearest256(r, g, b uint8) uint8 {
	target := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	best := uint8(16)
	bestDist := -1.0
	for i := 16; i < 256; i++ {
		cr, cg, cb := xterm256Components(i)
		cand := colorful.Color{R: float64(cr) / 255, G: float64(cg) / 255, B: float64(cb) / 255}
		d := target.DistanceLab(cand)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = uint8(i)
		}
	}
	return best
}

// xterm256Components computes the RGB components of xterm 256-color
// index i (16-255) without a lookup table.
func xterm256Components(i int) (r, g, b uint8) {
	if i >= 232 {
		level := uint8(8 + (i-232)*10)
		return level, level, level
	}
	i -= 16
	ramp := [6]uint8{0, 95, 135, 175, 215, 255}
	return ramp[i/36], ramp[(i/6)%6], ramp[i%6]
}

// SGR returns the SGR parameter sequence (without the leading CSI or
// trailing 'm') that selects this color as a foreground (target=38),
// background (target=48), or underline (target=58) color.
func (c Color) SGR(target int) string {
	switch c.Kind {
	case ColorIndexed:
		return fmt.Sprintf("%d;5;%d", target, c.Index)
	case ColorRGB:
		return fmt.Sprintf("%d;2;%d;%d;%d", target, c.R, c.G, c.B)
	default:
		return fmt.Sprintf("%d", target+1) // 39/49/59: reset to default
	}
}
