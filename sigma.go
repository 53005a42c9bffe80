package fsmio

import (
	"maps"
	"slices"
)

// Reserved symbol ids.
const (
	Epsilon  = 0
	Unknown  = 1
	Identity = 2
)

// Reserved symbol strings, stored at the reserved ids.
const (
	EpsilonSymbol  = "@_EPSILON_SYMBOL_@"
	UnknownSymbol  = "@_UNKNOWN_SYMBOL_@"
	IdentitySymbol = "@_IDENTITY_SYMBOL_@"
)

var reservedSymbols = [...]string{EpsilonSymbol, UnknownSymbol, IdentitySymbol}

func reservedID(sym string) (int, bool) {
	for id, s := range reservedSymbols {
		if s == sym {
			return id, true
		}
	}
	return -1, false
}

// Sigma maps symbol ids to symbol strings. Ids 0, 1 and 2 always hold the reserved symbols.
type Sigma struct {
	byID   map[int]string
	byName map[string]int
	next   int
}

// NewSigma returns an empty symbol table.
func NewSigma() *Sigma {
	return &Sigma{
		byID:   make(map[int]string),
		byName: make(map[string]int),
		next:   len(reservedSymbols),
	}
}

// Add returns the id of sym, assigning the next free id if it is new.
// Reserved strings always resolve to their reserved id.
func (s *Sigma) Add(sym string) int {
	if id, ok := s.byName[sym]; ok {
		return id
	}
	if id, ok := reservedID(sym); ok {
		s.put(id, sym)
		return id
	}
	id := s.next
	for {
		if _, taken := s.byID[id]; !taken {
			break
		}
		id++
	}
	s.put(id, sym)
	s.next = id + 1
	return id
}

// AddNumber stores sym under an explicit id, as read from a sigma section.
func (s *Sigma) AddNumber(sym string, id int) error {
	if id < 0 {
		return formatErrorf("sigma", 0, "negative symbol id %d", id)
	}
	if rid, ok := reservedID(sym); ok && rid != id {
		return formatErrorf("sigma", 0, "reserved symbol %s cannot take id %d", sym, id)
	}
	if id < len(reservedSymbols) && reservedSymbols[id] != sym {
		return formatErrorf("sigma", 0, "id %d is reserved for %s, got %q", id, reservedSymbols[id], sym)
	}
	if _, dup := s.byID[id]; dup {
		return formatErrorf("sigma", 0, "duplicate symbol id %d", id)
	}
	if _, dup := s.byName[sym]; dup {
		return formatErrorf("sigma", 0, "duplicate symbol %q", sym)
	}
	s.put(id, sym)
	if id >= s.next {
		s.next = id + 1
	}
	return nil
}

func (s *Sigma) put(id int, sym string) {
	s.byID[id] = sym
	s.byName[sym] = id
}

// Find returns the id of sym.
func (s *Sigma) Find(sym string) (int, bool) {
	id, ok := s.byName[sym]
	return id, ok
}

// String returns the symbol stored under id.
func (s *Sigma) String(id int) (string, bool) {
	sym, ok := s.byID[id]
	return sym, ok
}

// Max returns the largest id in use, or -1 for an empty table.
func (s *Sigma) Max() int {
	m := -1
	for id := range s.byID {
		m = max(m, id)
	}
	return m
}

func (s *Sigma) Len() int { return len(s.byID) }

// IDs returns all ids in ascending order.
func (s *Sigma) IDs() []int {
	return slices.Sorted(maps.Keys(s.byID))
}

// Clone returns an independent copy.
func (s *Sigma) Clone() *Sigma {
	return &Sigma{byID: maps.Clone(s.byID), byName: maps.Clone(s.byName), next: s.next}
}
