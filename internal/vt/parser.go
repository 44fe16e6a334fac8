package vt

import "unicode/utf8"

// state is the parser's current position in the DEC VT parser graph (the
// widely-documented "vt100.net/emu/dec_ansi_parser" state machine spec §4.1
// names explicitly).
type state uint8

const (
	stateGround state = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateDCSEntry
	stateDCSParam
	stateDCSIntermediate
	stateDCSPassthrough
	stateDCSIgnore
	stateOSCString
	stateSOSPMAPCString
	stateUTF8Continuation
	// stateStringST is entered when an ESC arrives while collecting an
	// OSC/SOS-PM-APC/DCS string, to check whether it's the '\' of a
	// String Terminator (ST) or an unrelated escape that aborts the string.
	stateStringST
)

// Parser drives a Grid from a raw PTY byte stream. It holds no Grid state
// of its own beyond the in-flight escape/control sequence being assembled,
// so a Parser can be discarded and rebuilt freely (e.g. across a resize)
// without losing any Grid content — only a sequence mid-parse is lost,
// which matches real terminals' behavior under a SIGWINCH-driven resize.
type Parser struct {
	grid *Grid

	st state

	// CSI/DCS parameter accumulation.
	params       [][]int
	curParam     []int
	curHasDigits bool
	private      byte
	intermediate []byte

	// OSC/SOS/PM/APC string accumulation.
	strBuf []byte

	// UTF-8 continuation accumulation.
	utf8Buf [4]byte
	utf8Len int

	// escIntermediate holds the single intermediate byte collected in
	// ESCAPE_INTERMEDIATE, used to disambiguate e.g. SCS (ESC ( B) from a
	// bare ESC final.
	escIntermediate byte

	// stringOrigin records which string-collection state stateStringST
	// was entered from, so the ST-or-abort decision knows what to finish.
	stringOrigin state
}

// NewParser returns a Parser that drives g.
func NewParser(g *Grid) *Parser {
	return &Parser{grid: g}
}

// Write feeds bytes through the state machine. feed(b1..bn) is equivalent
// to feed(b1)...feed(bn): every call boundary is a valid intermediate
// state, satisfying spec §8's byte-boundary incrementality property.
func (p *Parser) Write(data []byte) (int, error) {
	for _, b := range data {
		p.step(b)
	}
	return len(data), nil
}

func (p *Parser) step(b byte) {
	// UTF-8 continuation bytes and the accumulation of a multi-byte
	// sequence are handled outside the escape-sequence grammar: only in
	// GROUND can a byte >=0x80 begin a new UTF-8 sequence, but once begun
	// it must run to completion (or be abandoned on control bytes) before
	// resuming the outer state machine.
	if p.st == stateUTF8Continuation {
		p.stepUTF8(b)
		return
	}

	// C0 controls execute from (almost) any state and don't otherwise
	// disturb an in-flight sequence's accumulated parameters, matching the
	// "anywhere" transitions of the vt100.net graph. String-collection
	// states (OSC/SOS/PM/APC/DCS passthrough) special-case BEL/ST below
	// instead since those use it as a terminator rather than executing it.
	if p.st == stateStringST {
		p.stepStringST(b)
		return
	}

	if b < 0x20 && !p.inStringState() {
		p.execute(b)
		return
	}
	if b == 0x1b && !p.inStringState() {
		p.enterEscape()
		return
	}
	if b == 0x1b && p.inStringState() {
		p.stringOrigin = p.st
		p.st = stateStringST
		return
	}

	switch p.st {
	case stateGround:
		p.stepGround(b)
	case stateEscape:
		p.stepEscape(b)
	case stateEscapeIntermediate:
		p.stepEscapeIntermediate(b)
	case stateCSIEntry:
		p.stepCSIEntry(b)
	case stateCSIParam:
		p.stepCSIParam(b)
	case stateCSIIntermediate:
		p.stepCSIIntermediate(b)
	case stateCSIIgnore:
		p.stepCSIIgnore(b)
	case stateDCSEntry:
		p.stepDCSEntry(b)
	case stateDCSParam:
		p.stepDCSParam(b)
	case stateDCSIntermediate:
		p.stepDCSIntermediate(b)
	case stateDCSPassthrough:
		p.stepDCSPassthrough(b)
	case stateDCSIgnore:
		p.stepDCSIgnore(b)
	case stateOSCString:
		p.stepOSCString(b)
	case stateSOSPMAPCString:
		p.stepSOSPMAPCString(b)
	}
}

func (p *Parser) inStringState() bool {
	switch p.st {
	case stateOSCString, stateSOSPMAPCString, stateDCSPassthrough, stateDCSIgnore:
		return true
	}
	return false
}

// execute runs a C0 control function's action.
func (p *Parser) execute(b byte) {
	switch b {
	case 0x07:
		p.grid.Bell()
	case 0x08:
		p.grid.Backspace()
	case 0x09:
		p.grid.HorizontalTab()
	case 0x0a:
		// Plain LF: in practice the pty layer (ONLCR) would have already
		// expanded this to CR+LF before it reached a real terminal, so the
		// parser does the same carriage return here rather than leaving the
		// cursor's column untouched.
		p.grid.CarriageReturn()
		p.grid.LineFeed()
	case 0x0b, 0x0c:
		p.grid.LineFeed()
	case 0x0d:
		p.grid.CarriageReturn()
	case 0x0e:
		p.grid.ShiftOut()
	case 0x0f:
		p.grid.ShiftIn()
	case 0x18, 0x1a:
		p.abortToGround()
	}
}

func (p *Parser) enterEscape() {
	p.st = stateEscape
	p.escIntermediate = 0
}

func (p *Parser) abortToGround() {
	p.st = stateGround
	p.clearParams()
	p.strBuf = nil
}

func (p *Parser) stepGround(b byte) {
	switch {
	case b == 0x7f:
		// DEL: ignored.
	case b >= 0x20 && b < 0x7f:
		p.printASCII(b)
	case b >= 0x80:
		p.beginUTF8(b)
	}
}

func (p *Parser) printASCII(b byte) {
	r := p.grid.translateCharset(rune(b))
	p.grid.Print(string(r))
}

// beginUTF8 starts decoding a multi-byte UTF-8 sequence from its lead byte.
// b is guaranteed >= 0x80 by the caller. Invalid lead bytes (stray
// continuation bytes, overlong-encoding starters 0xC0/0xC1, and bytes
// above the valid range) are replaced immediately per spec §4.1's "invalid
// UTF-8 bytes are replaced with U+FFFD."
func (p *Parser) beginUTF8(b byte) {
	if b < 0xc2 || b > 0xf4 {
		p.grid.Print("�")
		return
	}
	p.utf8Buf[0] = b
	p.utf8Len = 1
	p.st = stateUTF8Continuation
}

func (p *Parser) stepUTF8(b byte) {
	if b < 0x80 || b >= 0xc0 {
		// Not a continuation byte: the sequence so far is incomplete and
		// invalid. Emit a replacement and reprocess b fresh from GROUND.
		p.grid.Print("�")
		p.st = stateGround
		p.utf8Len = 0
		p.step(b)
		return
	}
	p.utf8Buf[p.utf8Len] = b
	p.utf8Len++
	buf := p.utf8Buf[:p.utf8Len]
	if utf8.FullRune(buf) {
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size <= 1 {
			p.grid.Print("�")
		} else {
			p.grid.Print(string(r))
		}
		p.st = stateGround
		p.utf8Len = 0
	}
}

func (p *Parser) stepEscape(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		p.escIntermediate = b
		p.st = stateEscapeIntermediate
	case b == '[':
		p.clearParams()
		p.st = stateCSIEntry
	case b == ']':
		p.strBuf = p.strBuf[:0]
		p.st = stateOSCString
	case b == 'P':
		p.clearParams()
		p.strBuf = p.strBuf[:0]
		p.st = stateDCSEntry
	case b == 'X' || b == '^' || b == '_':
		p.strBuf = p.strBuf[:0]
		p.st = stateSOSPMAPCString
	case b >= 0x30 && b <= 0x7e:
		p.escDispatch(b)
		p.st = stateGround
	default:
		p.st = stateGround
	}
}

func (p *Parser) stepEscapeIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		// Only one intermediate byte is tracked; additional ones are
		// accepted and ignored (no real-world sequence this module
		// supports uses more than one).
	case b >= 0x30 && b <= 0x7e:
		p.escDispatchIntermediate(b)
		p.st = stateGround
	default:
		p.st = stateGround
	}
}

func (p *Parser) escDispatch(final byte) {
	switch final {
	case '7':
		p.grid.SaveCursor()
	case '8':
		p.grid.RestoreCursor()
	case 'D':
		p.grid.Index()
	case 'M':
		p.grid.ReverseIndex()
	case 'E':
		p.grid.NextLine()
	case 'c':
		p.grid.FullReset()
	case 'H':
		p.grid.HorizontalTabSet()
	case '=', '>':
		p.grid.modes.ApplicationKeypad = final == '='
	}
}

func (p *Parser) escDispatchIntermediate(final byte) {
	switch p.escIntermediate {
	case '(':
		p.grid.DesignateCharset(0, final)
	case ')':
		p.grid.DesignateCharset(1, final)
	case '*':
		p.grid.DesignateCharset(2, final)
	case '+':
		p.grid.DesignateCharset(3, final)
	}
}

func (p *Parser) clearParams() {
	p.params = p.params[:0]
	p.curParam = nil
	p.curHasDigits = false
	p.private = 0
	p.intermediate = p.intermediate[:0]
}

func (p *Parser) stepCSIEntry(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.paramDigit(b)
		p.st = stateCSIParam
	case b == ';':
		p.paramSeparator()
		p.st = stateCSIParam
	case b == ':':
		p.paramSubSeparator()
		p.st = stateCSIParam
	case b >= 0x3c && b <= 0x3f:
		p.private = b
		p.st = stateCSIParam
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = append(p.intermediate, b)
		p.st = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.csiDispatch(b)
		p.st = stateGround
	default:
		p.st = stateCSIIgnore
	}
}

func (p *Parser) stepCSIParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.paramDigit(b)
	case b == ';':
		p.paramSeparator()
	case b == ':':
		p.paramSubSeparator()
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = append(p.intermediate, b)
		p.st = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.csiDispatch(b)
		p.st = stateGround
	default:
		p.st = stateCSIIgnore
	}
}

func (p *Parser) stepCSIIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = append(p.intermediate, b)
	case b >= 0x40 && b <= 0x7e:
		p.csiDispatch(b)
		p.st = stateGround
	default:
		p.st = stateCSIIgnore
	}
}

func (p *Parser) stepCSIIgnore(b byte) {
	if b >= 0x40 && b <= 0x7e {
		p.st = stateGround
	}
}

func (p *Parser) paramDigit(b byte) {
	if p.curParam == nil {
		p.curParam = []int{0}
		p.curHasDigits = false
	}
	p.curParam[len(p.curParam)-1] = p.curParam[len(p.curParam)-1]*10 + int(b-'0')
	p.curHasDigits = true
}

// paramSeparator ends the current parameter at a ';' boundary, appending
// it (or an explicit-omission nil) to the completed list. The next
// parameter starts fresh on the following digit/separator.
func (p *Parser) paramSeparator() {
	p.flushParam()
}

func (p *Parser) paramSubSeparator() {
	if p.curParam == nil {
		p.curParam = []int{0}
	}
	p.curParam = append(p.curParam, 0)
	p.curHasDigits = false
}

func (p *Parser) flushParam() {
	if p.curParam != nil {
		p.params = append(p.params, p.curParam)
	} else {
		p.params = append(p.params, nil)
	}
	p.curParam = nil
	p.curHasDigits = false
}

func (p *Parser) takeParams() Params {
	p.flushParam()
	// The separator-driven append in paramSeparator already appended a
	// placeholder; flushParam above appends the final (possibly only)
	// parameter. Net effect: params holds one entry per parameter in
	// order, each either nil (omitted) or a []int of subparameters.
	values := make([][]int, len(p.params))
	copy(values, p.params)
	var intermByte byte
	if len(p.intermediate) > 0 {
		intermByte = p.intermediate[0]
	}
	return Params{Values: values, Private: p.private, Intermediate: intermByte}
}

func (p *Parser) csiDispatch(final byte) {
	params := p.takeParams()
	p.grid.DispatchCSI(final, params)
	p.clearParams()
}

func (p *Parser) stepOSCString(b byte) {
	if b == 0x07 {
		p.grid.DispatchOSC(p.strBuf)
		p.st = stateGround
		return
	}
	p.strBuf = append(p.strBuf, b)
}

func (p *Parser) stepSOSPMAPCString(b byte) {
	p.strBuf = append(p.strBuf, b)
}

// stepStringST resolves the byte following an ESC seen while collecting an
// OSC/SOS-PM-APC/DCS string: '\' completes a String Terminator and ends the
// string (dispatching OSC payloads, discarding SOS/PM/APC/DCS ones);
// anything else means the ESC was not a terminator, so the in-flight
// string is abandoned and the byte is reprocessed as a fresh escape
// sequence start.
func (p *Parser) stepStringST(b byte) {
	if b == '\\' {
		switch p.stringOrigin {
		case stateOSCString:
			p.grid.DispatchOSC(p.strBuf)
		}
		p.strBuf = nil
		p.st = stateGround
		return
	}
	p.strBuf = nil
	p.st = stateGround
	p.enterEscape()
	p.step(b)
}

func (p *Parser) stepDCSEntry(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.paramDigit(b)
		p.st = stateDCSParam
	case b == ';':
		p.paramSeparator()
		p.st = stateDCSParam
	case b >= 0x3c && b <= 0x3f:
		p.private = b
		p.st = stateDCSParam
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = append(p.intermediate, b)
		p.st = stateDCSIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.st = stateDCSPassthrough
	default:
		p.st = stateDCSIgnore
	}
}

func (p *Parser) stepDCSParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.paramDigit(b)
	case b == ';':
		p.paramSeparator()
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = append(p.intermediate, b)
		p.st = stateDCSIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.st = stateDCSPassthrough
	default:
		p.st = stateDCSIgnore
	}
}

func (p *Parser) stepDCSIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = append(p.intermediate, b)
	case b >= 0x40 && b <= 0x7e:
		p.st = stateDCSPassthrough
	default:
		p.st = stateDCSIgnore
	}
}

func (p *Parser) stepDCSPassthrough(b byte) {
	// DCS payload is consumed and discarded: spec §4.1 lists DCS among
	// "hook, put, unhook" actions but the only DCS-family sequence this
	// module's supported set names is consumption without effect. ESC
	// (string terminator start) is handled by the caller's inStringState
	// check before reaching here.
	_ = b
}

func (p *Parser) stepDCSIgnore(b byte) {
	_ = b
}
