package fsmio

// MaxStates bounds the state numbers accepted by the textual readers.
// Done allocates one record per state number up to the largest one seen.
const MaxStates = 1 << 24

// parseState parses a state number in [0, MaxStates).
func parseState(s string) (int, bool) {
	v, ok := parseInt[int](s)
	if !ok || v < 0 || v >= MaxStates {
		return 0, false
	}
	return v, true
}

// Builder assembles a Network arc by arc, the way the textual readers need it.
type Builder struct {
	name     string
	sigma    *Sigma
	arcs     map[int][]builderArc
	finals   map[int]bool
	initial  int
	maxState int
}

type builderArc struct {
	in, out, target int
}

// NewBuilder starts a network called name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:     name,
		sigma:    NewSigma(),
		arcs:     make(map[int][]builderArc),
		finals:   make(map[int]bool),
		maxState: -1,
	}
}

// AddSymbol adds sym to the alphabet and returns its id.
func (b *Builder) AddSymbol(sym string) int { return b.sigma.Add(sym) }

// HasSymbol reports whether sym is already in the alphabet.
func (b *Builder) HasSymbol(sym string) bool {
	_, ok := b.sigma.Find(sym)
	return ok
}

// AddArc adds an arc from src to tgt labelled in:out.
func (b *Builder) AddArc(src, tgt int, in, out string) {
	a := builderArc{in: b.sigma.Add(in), out: b.sigma.Add(out), target: tgt}
	b.arcs[src] = append(b.arcs[src], a)
	b.maxState = max(b.maxState, src, tgt)
}

// SetFinal marks s as a final state.
func (b *Builder) SetFinal(s int) {
	b.finals[s] = true
	b.maxState = max(b.maxState, s)
}

// SetInitial makes s the start state. It is renumbered to 0 by Done.
func (b *Builder) SetInitial(s int) {
	b.initial = s
	b.maxState = max(b.maxState, s)
}

// Done returns the network. States 0..max are all present; arcs keep their insertion order.
func (b *Builder) Done() *Network {
	// swap the initial state with state 0
	num := func(s int) int {
		switch s {
		case b.initial:
			return 0
		case 0:
			return b.initial
		}
		return s
	}

	n := NewNetwork(b.name)
	n.Sigma = b.sigma
	n.States = make([]Transition, 0, b.maxState+1)
	deterministic, epsilonFree := true, true
	for s := 0; s <= b.maxState; s++ {
		old := num(s)
		arcs := b.arcs[old]
		final := b.finals[old]
		if len(arcs) == 0 {
			n.States = append(n.States, Transition{State: s, In: -1, Out: -1, Target: -1, Final: final, Start: s == 0})
			continue
		}
		seen := make(map[[2]int]bool, len(arcs))
		for _, a := range arcs {
			if a.in != a.out || a.in == Unknown {
				n.Arity = 2
			}
			if a.in == Epsilon && a.out == Epsilon {
				epsilonFree = false
			}
			label := [2]int{a.in, a.out}
			if seen[label] {
				deterministic = false
			}
			seen[label] = true
			n.States = append(n.States, Transition{
				State: s, In: a.in, Out: a.out, Target: num(a.target), Final: final, Start: s == 0,
			})
		}
	}
	n.EpsilonFree = epsilonFree
	n.Deterministic = deterministic && epsilonFree
	n.Count()
	return n
}
