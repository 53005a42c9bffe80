package fsmio

import "bytes"

// Special path counts stored in the props line.
const (
	PathCountCyclic   int64 = -1
	PathCountOverflow int64 = -2
	PathCountUnknown  int64 = -3
)

// Transition is one line of a network's state table.
// A record with Target == -1 is a state without outgoing arcs; In and Out are -1 as well.
type Transition struct {
	State  int
	In     int
	Out    int
	Target int
	Final  bool
	Start  bool
}

// HasArc reports whether the record describes an arc rather than a bare state.
func (t Transition) HasArc() bool { return t.Target != -1 }

// Network is a finite-state automaton (Arity 1) or transducer (Arity 2).
// States are grouped contiguously by ascending State; the sentinel record is not stored.
type Network struct {
	Arity      int
	ArcCount   int
	StateCount int
	LineCount  int
	FinalCount int
	PathCount  int64

	Deterministic bool
	Pruned        bool
	Minimized     bool
	EpsilonFree   bool
	LoopFree      bool
	Completed     bool

	Name      string
	States    []Transition
	Sigma     *Sigma
	Confusion *ConfusionMatrix // nil unless edit-distance data is attached
}

// NewNetwork returns an empty automaton with an empty symbol table.
func NewNetwork(name string) *Network {
	return &Network{
		Arity:     1,
		PathCount: PathCountUnknown,
		Name:      name,
		Sigma:     NewSigma(),
	}
}

// Count recomputes the arc, state, line and final counts from the state table.
func (n *Network) Count() {
	arcs, finals, maxState, last := 0, 0, -1, -1
	for _, t := range n.States {
		if t.HasArc() {
			arcs++
		}
		if t.State != last {
			if t.Final {
				finals++
			}
			last = t.State
		}
		maxState = max(maxState, t.State, t.Target)
	}
	n.ArcCount = arcs
	n.StateCount = maxState + 1
	n.LineCount = len(n.States)
	n.FinalCount = finals
}

// Finals returns the distinct final state numbers in table order.
func (n *Network) Finals() []int {
	var finals []int
	last := -1
	for _, t := range n.States {
		if t.State != last && t.Final {
			finals = append(finals, t.State)
		}
		last = t.State
	}
	return finals
}

// MarshalText implements encoding.TextMarshaler using the uncompressed binary format.
func (n *Network) MarshalText() ([]byte, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	if err := Encode(buf, n); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only the first network is read.
func (n *Network) UnmarshalText(data []byte) error {
	decoded, err := DecodeBytes(data)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}
