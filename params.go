package vx

import "strconv"

// Param is one value from a CSI parameter list. Empty is true when the
// source parameter was the empty string (e.g. the leading `;` in
// `CSI ;5m`) — distinguishable from an explicit 0, since SGR 38/48 RGB
// sub-parameters can have an empty primary, an xterm quirk real
// terminals tolerate.
type Param struct {
	Value int
	Empty bool
	// SubOf is true when this parameter was introduced by a ':' rather
	// than a ';' — i.e. it is a sub-parameter of the previous one.
	SubOf bool
}

// ParamIterator walks a raw CSI parameter byte string (the bytes between
// the CSI private marker/intermediates and the final byte), yielding one
// Param per call to Next, split on ';' and ':'. The whole list is
// tokenized up front since a CSI parameter list is always short and
// bounded by the parser's own accumulation buffer.
type ParamIterator struct {
	params []Param
	pos    int
}

// NewParamIterator returns an iterator over raw CSI parameter bytes.
// An empty input yields a single empty parameter: a CSI with zero
// parameters treats each parameter as its documented default.
func NewParamIterator(data []byte) *ParamIterator {
	var params []Param
	start := 0
	subOf := false
	flush := func(end int) {
		raw := data[start:end]
		p := Param{SubOf: subOf}
		if len(raw) == 0 {
			p.Empty = true
		} else if n, err := strconv.Atoi(string(raw)); err == nil {
			p.Value = n
		} else {
			p.Empty = true
		}
		params = append(params, p)
	}
	for i, b := range data {
		if b == ';' || b == ':' {
			flush(i)
			start = i + 1
			subOf = b == ':'
		}
	}
	flush(len(data))
	return &ParamIterator{params: params}
}

// Next returns the next parameter and whether one was available.
func (it *ParamIterator) Next() (Param, bool) {
	if it.pos >= len(it.params) {
		return Param{}, false
	}
	p := it.params[it.pos]
	it.pos++
	return p, true
}

// All returns every parameter, for callers that want random access
// (e.g. the SGR decoder's lookahead for 38/48 sub-parameter runs).
func (it *ParamIterator) All() []Param {
	return it.params[it.pos:]
}

// IntOr returns p.Value, or def if p represents an empty/absent
// parameter — each parameter defaults per its own documented default.
func (p Param) IntOr(def int) int {
	if p.Empty {
		return def
	}
	return p.Value
}
