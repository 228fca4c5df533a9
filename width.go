package vx

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// WidthMethod selects how GraphemeWidth computes display width, mirroring
// the capability record's width_method: "unicode" once the terminal has
// confirmed Unicode Core support, "wcwidth" otherwise.
type WidthMethod uint8

const (
	WidthWcwidth WidthMethod = iota
	WidthUnicode
)

// NextGrapheme returns the first grapheme cluster in s, the remainder of
// s after it, and the cluster's display width under method. StringWidth
// is built on it.
func NextGrapheme(s string, method WidthMethod) (cluster, rest string, width int) {
	if s == "" {
		return "", "", 0
	}
	cluster, rest, _, _ = uniseg.FirstGraphemeClusterInString(s, -1)
	return cluster, rest, GraphemeWidth(cluster, method)
}

// GraphemeWidth returns the number of terminal columns a single grapheme
// cluster occupies: 0, 1, or 2.
func GraphemeWidth(cluster string, method WidthMethod) int {
	if cluster == "" {
		return 0
	}
	if method == WidthWcwidth {
		w := 0
		for _, r := range cluster {
			w += runewidth.RuneWidth(r)
		}
		if w < 0 {
			return 0
		}
		if w > 2 {
			return 2
		}
		return w
	}
	return uniseg.StringWidth(cluster)
}

// StringWidth returns the total display width of s under method,
// iterating grapheme clusters rather than runes so combining marks and
// ZWJ sequences are counted once.
func StringWidth(s string, method WidthMethod) int {
	total := 0
	for s != "" {
		var w int
		_, s, w = NextGrapheme(s, method)
		total += w
	}
	return total
}

// Graphemes returns every grapheme cluster in s in order. Used by
// callers (e.g. Window.Print) that need to place each cluster in
// its own cell.
func Graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
