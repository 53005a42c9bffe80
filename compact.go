package fsmio

// State lines carry 2 to 5 integers:
//
//	2: in target              (state and final carried over, out = in)
//	3: in out target          (state and final carried over)
//	4: state in target final  (out = in)
//	5: state in out target final
//
// A state without arcs is written as the 4-field line "state -1 -1 final".
// The section ends with the sentinel "-1 -1 -1 -1 -1".

type lineKind uint8

const (
	lineNewState lineKind = iota + 1
	lineContinuation
	lineSentinel
)

// stateLine is one decoded line of the states section.
type stateLine struct {
	kind   lineKind
	state  int // lineNewState only
	in     int
	out    int
	target int
	final  bool // lineNewState only
}

// carry is the state number and finality inherited by continuation lines.
type carry struct {
	state int
	final bool
}

var noCarry = carry{state: -1}

func parseStateLine(s string) (stateLine, error) {
	var f [5]int
	n, ok := scanInts(s, f[:])
	if !ok {
		return stateLine{}, formatErrorf("states", 0, "non-integer field in %q", s)
	}

	var l stateLine
	switch n {
	case 2:
		l = stateLine{kind: lineContinuation, in: f[0], out: f[0], target: f[1]}
	case 3:
		l = stateLine{kind: lineContinuation, in: f[0], out: f[1], target: f[2]}
	case 4:
		l = stateLine{kind: lineNewState, state: f[0], in: f[1], out: f[1], target: f[2], final: f[3] != 0}
	case 5:
		if f == [5]int{-1, -1, -1, -1, -1} {
			return stateLine{kind: lineSentinel}, nil
		}
		l = stateLine{kind: lineNewState, state: f[0], in: f[1], out: f[2], target: f[3], final: f[4] != 0}
	default:
		return stateLine{}, formatErrorf("states", 0, "unsupported field count %d", n)
	}

	if l.kind == lineNewState && l.state < 0 {
		return stateLine{}, formatErrorf("states", 0, "negative state number %d", l.state)
	}
	if l.in < -1 || l.out < -1 || l.target < -1 {
		return stateLine{}, formatErrorf("states", 0, "invalid symbol or target in %q", s)
	}
	return l, nil
}

// expand rebuilds the full record for l and returns the carry for the next line.
func expand(l stateLine, c carry) (Transition, carry, error) {
	switch l.kind {
	case lineNewState:
		c = carry{state: l.state, final: l.final}
	case lineContinuation:
		if c.state < 0 {
			return Transition{}, c, formatErrorf("states", 0, "continuation line before any state")
		}
	default:
		return Transition{}, c, formatErrorf("states", 0, "sentinel is not a transition")
	}
	return Transition{
		State:  c.state,
		In:     l.in,
		Out:    l.out,
		Target: l.target,
		Final:  c.final,
		Start:  c.state == 0,
	}, c, nil
}

// writeStateLine writes t in its shortest form given the state of the previous record.
func writeStateLine(w *Writer, t Transition, lastState int) {
	switch {
	case t.State != lastState && t.In != t.Out:
		w.WriteInts(t.State, t.In, t.Out, t.Target, b2i(t.Final))
	case t.State != lastState:
		w.WriteInts(t.State, t.In, t.Target, b2i(t.Final))
	case t.In != t.Out:
		w.WriteInts(t.In, t.Out, t.Target)
	default:
		w.WriteInts(t.In, t.Target)
	}
}

func writeSentinel(w *Writer) {
	w.WriteInts(-1, -1, -1, -1, -1)
}
