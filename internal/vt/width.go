package vt

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// graphemeWidth resolves the display width of a grapheme cluster. The fast
// path is go-runewidth on the cluster's first rune, which is correct for the
// overwhelming majority of text; uniseg's grapheme-aware East-Asian-width
// table is consulted only when the cluster is more than one rune (ZWJ
// sequences, flag emoji, skin-tone modifiers) since runewidth only ever
// looks at a single rune.
func graphemeWidth(cluster string) int {
	runes := []rune(cluster)
	if len(runes) == 0 {
		return 0
	}
	if len(runes) == 1 {
		return runewidth.RuneWidth(runes[0])
	}
	return uniseg.StringWidth(cluster)
}

// firstGrapheme splits the first grapheme cluster off s using uniseg's
// grapheme cluster boundary algorithm, returning the cluster and the rest.
func firstGrapheme(s string) (cluster, rest string) {
	if s == "" {
		return "", ""
	}
	gr := uniseg.NewGraphemes(s)
	if !gr.Next() {
		return "", ""
	}
	cluster = gr.Str()
	return cluster, s[len(cluster):]
}

// palette256 resolves the standard xterm 256-color palette index to RGB:
// 0-15 the legacy 16 ANSI colors, 16-231 a 6x6x6 color cube, 232-255 a
// 24-step grayscale ramp.
func palette256(i uint8) (r, g, b uint8) {
	if i < 16 {
		return ansi16[i][0], ansi16[i][1], ansi16[i][2]
	}
	if i < 232 {
		n := int(i) - 16
		steps := [6]uint8{0, 95, 135, 175, 215, 255}
		r = steps[(n/36)%6]
		g = steps[(n/6)%6]
		b = steps[n%6]
		return
	}
	v := uint8(8 + (int(i)-232)*10)
	return v, v, v
}

var ansi16 = [16][3]uint8{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}
