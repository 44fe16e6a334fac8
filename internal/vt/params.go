package vt

// Params is a parsed CSI parameter list: each parameter may itself carry
// colon-separated subparameters (used by SGR's `38:2:r:g:b` form). A
// missing parameter is represented as an empty slice so callers can
// distinguish "0" from "not given" where DEC semantics require it.
type Params struct {
	Values       [][]int
	Private      byte // '?' for DEC private sequences (DECSET etc.), else 0
	Intermediate byte // a single intermediate byte (e.g. ' ' before DECSCUSR's 'q'), else 0
}

// Get returns parameter i (0-indexed), or def if absent or zero-valued per
// ECMA-48 convention (an explicit 0 and an omitted parameter both mean
// "default" for most CSI sequences).
func (p Params) Get(i, def int) int {
	if i < 0 || i >= len(p.Values) || len(p.Values[i]) == 0 {
		return def
	}
	v := p.Values[i][0]
	if v == 0 {
		return def
	}
	return v
}

// GetRaw is like Get but does not substitute def for an explicit 0 — needed
// by sequences (e.g. SGR color index 0 = black) where 0 is meaningful.
func (p Params) GetRaw(i, def int) int {
	if i < 0 || i >= len(p.Values) || len(p.Values[i]) == 0 {
		return def
	}
	return p.Values[i][0]
}

// Sub returns subparameter j of parameter i, or def if absent.
func (p Params) Sub(i, j, def int) int {
	if i < 0 || i >= len(p.Values) || j >= len(p.Values[i]) {
		return def
	}
	return p.Values[i][j]
}

// Count returns the number of parameters present.
func (p Params) Count() int { return len(p.Values) }
