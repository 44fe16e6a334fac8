package vt

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// DispatchOSC executes one fully-buffered OSC string (the bytes between
// OSC_STRING entry and its BEL/ST terminator, not including the
// introducer or terminator). Unknown OSC numbers are discarded without
// side effects, per spec §4.1.
func (g *Grid) DispatchOSC(payload []byte) {
	s := string(payload)
	num, rest, ok := splitOSC(s)
	if !ok {
		return
	}
	switch num {
	case 0, 1, 2: // icon+title, icon, title
		g.title = rest
		if g.OnTitleChange != nil {
			g.OnTitleChange(rest)
		}
	case 8: // hyperlink: params ; URI
		g.setHyperlink(rest)
	case 52: // clipboard: Pc ; base64-data
		g.handleClipboard(rest)
	case 10:
		g.handleColorQuery(10, rest)
	case 11:
		g.handleColorQuery(11, rest)
	}
}

func splitOSC(s string) (num int, rest string, ok bool) {
	i := strings.IndexByte(s, ';')
	var numStr string
	if i < 0 {
		numStr, rest = s, ""
	} else {
		numStr, rest = s[:i], s[i+1:]
	}
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, "", false
	}
	return n, rest, true
}

// setHyperlink implements OSC 8: "params;URI". An empty URI closes the
// currently open hyperlink (subsequent prints carry no Hyperlink until the
// next OSC 8 opens one).
func (g *Grid) setHyperlink(rest string) {
	parts := strings.SplitN(rest, ";", 2)
	uri := ""
	if len(parts) == 2 {
		uri = parts[1]
	}
	g.currentHyperlink = uri
}

// handleClipboard implements OSC 52: "Pc;Pd" where Pd is base64 clipboard
// data (or "?" to query, which this module does not answer — spec scopes
// clipboard as write-through only, gated by policy).
func (g *Grid) handleClipboard(rest string) {
	parts := strings.SplitN(rest, ";", 2)
	if len(parts) != 2 {
		return
	}
	selection, data := parts[0], parts[1]
	if data == "?" {
		return
	}
	if g.ClipboardAllowed != nil && !g.ClipboardAllowed("write") {
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	if g.OnClipboardWrite != nil {
		g.OnClipboardWrite(selection, decoded)
	}
}

// handleColorQuery implements OSC 10/11 (foreground/background color
// query): the child sent "?" asking us to report the current color as an
// X11 rgb: spec string. The reply is always BEL-terminated, whichever
// terminator the query arrived with, and is sent through OnDeviceReport.
func (g *Grid) handleColorQuery(which int, rest string) {
	if rest != "?" || g.OnColorQuery == nil || g.OnDeviceReport == nil {
		return
	}
	color, ok := g.OnColorQuery(which)
	if !ok {
		return
	}
	var r, gr, b uint8
	switch color.Kind {
	case ColorRGB:
		r, gr, b = color.R, color.G, color.B
	case ColorIndexed:
		r, gr, b = palette256(color.Index)
	default:
		return
	}
	resp := "\x1b]" + itoa(which) + ";rgb:" +
		hex2(r) + "/" + hex2(gr) + "/" + hex2(b) + "\x07"
	g.OnDeviceReport([]byte(resp))
}

func hex2(v uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[v>>4], digits[v&0xf]})
}
