package router

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

const bracketedPasteStart = "\x1b[200~"
const bracketedPasteEnd = "\x1b[201~"

// Decoder turns a raw input byte stream into Events, buffering any
// incomplete escape sequence or paste chunk that spans two Feed calls —
// the same "hold an incomplete tail for the next read" discipline
// internal/vt's parser uses for UTF-8 continuation bytes, applied here to
// CSI/SS3 sequences and bracketed-paste boundaries instead.
type Decoder struct {
	pending  []byte
	inPaste  bool
	pasteBuf []byte
}

// NewDecoder creates an empty Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Feed decodes newly arrived bytes into zero or more Events. Any trailing
// incomplete sequence is retained internally and completed by a later Feed
// call (or force-flushed via FlushPendingEscape).
func (d *Decoder) Feed(data []byte) []Event {
	buf := append(d.pending, data...)
	d.pending = nil

	var events []Event
	i := 0
	for i < len(buf) {
		if d.inPaste {
			consumed, done := d.feedPaste(buf[i:])
			i += consumed
			if done {
				events = append(events, Event{Paste: &PasteEvent{Data: d.pasteBuf}})
				d.pasteBuf = nil
				d.inPaste = false
			}
			if consumed == 0 || len(d.pending) > 0 {
				break // need more bytes to resolve a partial terminator match
			}
			continue
		}

		b := buf[i]
		if b == 0x1b {
			ev, consumed, needMore := d.parseEscape(buf[i:])
			if needMore {
				d.pending = append([]byte(nil), buf[i:]...)
				break
			}
			if ev != nil {
				events = append(events, *ev)
			}
			if d.inPaste {
				// parseEscape just consumed the bracketed-paste start marker.
				i += consumed
				continue
			}
			i += consumed
			continue
		}

		ev, consumed := parseSingleByte(buf[i:])
		events = append(events, ev)
		i += consumed
	}
	return events
}

// FlushPendingEscape forces a lone buffered ESC byte to resolve as the
// literal Escape key, for a caller running a short timer the way the
// teacher's EscTimer distinguishes a bare Escape keypress from the start
// of an escape sequence delayed by a slow link. No-op if nothing or more
// than a lone ESC is pending.
func (d *Decoder) FlushPendingEscape() *Event {
	if len(d.pending) != 1 || d.pending[0] != 0x1b {
		return nil
	}
	d.pending = nil
	return &Event{Key: &KeyEvent{Special: KeyEscape, Raw: []byte{0x1b}}}
}

// feedPaste consumes bytes into the in-progress paste buffer, watching for
// the terminator. Returns bytes consumed and whether the terminator was
// found (done). If the tail of buf could be the start of the terminator,
// only the unambiguous prefix is consumed into the paste buffer and the
// ambiguous suffix is moved to d.pending to wait for more data.
func (d *Decoder) feedPaste(buf []byte) (consumed int, done bool) {
	if idx := bytes.Index(buf, []byte(bracketedPasteEnd)); idx >= 0 {
		d.pasteBuf = append(d.pasteBuf, buf[:idx]...)
		return idx + len(bracketedPasteEnd), true
	}
	safe := len(buf)
	for l := 1; l < len(bracketedPasteEnd) && l <= len(buf); l++ {
		if bytes.Equal(buf[len(buf)-l:], []byte(bracketedPasteEnd[:l])) {
			safe = len(buf) - l
			break
		}
	}
	d.pasteBuf = append(d.pasteBuf, buf[:safe]...)
	if safe == len(buf) {
		return safe, false
	}
	// Some of buf (the ambiguous suffix) must wait for more data.
	d.pending = append(d.pending, buf[safe:]...)
	return safe, false
}

// parseEscape decodes one ESC-led sequence starting at buf[0]==0x1b.
// needMore is true when buf doesn't yet contain a complete sequence.
func (d *Decoder) parseEscape(buf []byte) (ev *Event, consumed int, needMore bool) {
	if len(buf) < 2 {
		return nil, 0, true
	}
	switch buf[1] {
	case '[':
		return d.parseCSI(buf)
	case 'O':
		return parseSS3(buf)
	default:
		// Alt+key: ESC followed by one printable byte.
		r, size := utf8.DecodeRune(buf[1:])
		if r == utf8.RuneError && size <= 1 {
			if len(buf) < 1+utf8.UTFMax {
				return nil, 0, true
			}
			// Invalid byte after ESC; treat ESC as a lone Escape key and
			// let the invalid byte be reprocessed on its own.
			return &Event{Key: &KeyEvent{Special: KeyEscape, Raw: buf[:1]}}, 1, false
		}
		return &Event{Key: &KeyEvent{Rune: r, Alt: true, Raw: buf[:1+size]}}, 1 + size, false
	}
}

func parseSS3(buf []byte) (ev *Event, consumed int, needMore bool) {
	if len(buf) < 3 {
		return nil, 0, true
	}
	var special SpecialKey
	switch buf[2] {
	case 'P':
		special = KeyF1
	case 'Q':
		special = KeyF2
	case 'R':
		special = KeyF3
	case 'S':
		special = KeyF4
	case 'H':
		special = KeyHome
	case 'F':
		special = KeyEnd
	default:
		// Unrecognized SS3 final byte; surface as a lone Escape so the
		// stream doesn't wedge, matching the parser's "unknown sequences
		// are discarded, not fatal" failure semantics.
		return &Event{Key: &KeyEvent{Special: KeyEscape, Raw: buf[:1]}}, 1, false
	}
	return &Event{Key: &KeyEvent{Special: special, Raw: buf[:3]}}, 3, false
}

// parseCSI decodes "ESC [ params final" and the SGR mouse/bracketed-paste
// variants that begin with an extra marker byte ('<', '?') before params.
func (d *Decoder) parseCSI(buf []byte) (ev *Event, consumed int, needMore bool) {
	if bytes.HasPrefix(buf, []byte(bracketedPasteStart)) {
		d.inPaste = true
		return nil, len(bracketedPasteStart), false
	}

	i := 2
	marker := byte(0)
	if i < len(buf) && (buf[i] == '<' || buf[i] == '?') {
		marker = buf[i]
		i++
	}
	start := i
	for i < len(buf) && isParamByte(buf[i]) {
		i++
	}
	if i >= len(buf) {
		return nil, 0, true
	}
	final := buf[i]
	params := string(buf[start:i])
	whole := buf[:i+1]

	if marker == '<' {
		return parseSGRMouse(params, final, whole)
	}
	if final == '~' {
		return parseTildeKey(params, whole)
	}
	return parseFinalByteKey(final, whole)
}

func isParamByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == ';' || b == ':'
}

func parseFinalByteKey(final byte, raw []byte) (*Event, int, bool) {
	var special SpecialKey
	switch final {
	case 'A':
		special = KeyUp
	case 'B':
		special = KeyDown
	case 'C':
		special = KeyRight
	case 'D':
		special = KeyLeft
	case 'H':
		special = KeyHome
	case 'F':
		special = KeyEnd
	default:
		return &Event{Key: &KeyEvent{Special: KeyEscape, Raw: raw[:1]}}, 1, false
	}
	return &Event{Key: &KeyEvent{Special: special, Raw: raw}}, len(raw), false
}

func parseTildeKey(params string, raw []byte) (*Event, int, bool) {
	n := 0
	if parts := strings.Split(params, ";"); len(parts) > 0 && parts[0] != "" {
		n, _ = strconv.Atoi(parts[0])
	}
	var special SpecialKey
	switch n {
	case 1, 7:
		special = KeyHome
	case 2:
		special = KeyInsert
	case 3:
		special = KeyDelete
	case 4, 8:
		special = KeyEnd
	case 5:
		special = KeyPageUp
	case 6:
		special = KeyPageDown
	case 11, 12, 13, 14, 15:
		special = SpecialKey(int(KeyF1) + (n - 11))
	case 17, 18, 19, 20, 21:
		special = SpecialKey(int(KeyF6) + (n - 17))
	case 23, 24:
		special = SpecialKey(int(KeyF11) + (n - 23))
	default:
		special = KeyEscape
	}
	return &Event{Key: &KeyEvent{Special: special, Raw: raw}}, len(raw), false
}

func parseSGRMouse(params string, final byte, raw []byte) (*Event, int, bool) {
	parts := strings.Split(params, ";")
	if len(parts) != 3 {
		return nil, len(raw), false
	}
	btn, _ := strconv.Atoi(parts[0])
	x, _ := strconv.Atoi(parts[1])
	y, _ := strconv.Atoi(parts[2])
	m := &MouseEvent{
		X: x - 1, Y: y - 1,
		Release: final == 'm',
		Motion:  btn&32 != 0,
	}
	switch btn & 0xc3 {
	case 64:
		m.WheelUp = true
	case 65:
		m.WheelDn = true
	default:
		m.Button = btn & 3
	}
	return &Event{Mouse: m}, len(raw), false
}

func parseSingleByte(buf []byte) (Event, int) {
	b := buf[0]
	switch {
	case b == 0x00:
		return Event{Key: &KeyEvent{Rune: ' ', Ctrl: true, Raw: buf[:1]}}, 1
	case b == 0x09:
		return Event{Key: &KeyEvent{Special: KeyTab, Raw: buf[:1]}}, 1
	case b == 0x0d:
		return Event{Key: &KeyEvent{Special: KeyEnter, Raw: buf[:1]}}, 1
	case b == 0x7f || b == 0x08:
		return Event{Key: &KeyEvent{Special: KeyBackspace, Raw: buf[:1]}}, 1
	case b < 0x20:
		// C0 control: Ctrl+<letter>, e.g. 0x01 == Ctrl-a, 0x1a == Ctrl-z.
		return Event{Key: &KeyEvent{Rune: rune('a' + b - 1), Ctrl: true, Raw: buf[:1]}}, 1
	default:
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size <= 1 {
			return Event{Key: &KeyEvent{Rune: '�', Raw: buf[:1]}}, 1
		}
		return Event{Key: &KeyEvent{Rune: r, Raw: buf[:size]}}, size
	}
}
