package fsmio

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder("b")
	b.AddArc(0, 2, "a", "a")
	b.AddArc(0, 2, "a", "a")
	b.SetFinal(2)
	assert.True(t, b.HasSymbol("a"))
	assert.False(t, b.HasSymbol("b"))

	n := b.Done()
	assert.Equal(t, 1, n.Arity)
	assert.False(t, n.Deterministic)
	assert.True(t, n.EpsilonFree)
	assert.Equal(t, []Transition{
		{State: 0, In: 3, Out: 3, Target: 2, Start: true},
		{State: 0, In: 3, Out: 3, Target: 2, Start: true},
		{State: 1, In: -1, Out: -1, Target: -1},
		{State: 2, In: -1, Out: -1, Target: -1, Final: true},
	}, n.States)
	assert.Equal(t, 3, n.StateCount)
	assert.Equal(t, 1, n.FinalCount)
}

func TestBuilderArity(t *testing.T) {
	b := NewBuilder("u")
	b.AddArc(0, 1, UnknownSymbol, UnknownSymbol)
	assert.Equal(t, 2, b.Done().Arity)

	b = NewBuilder("e")
	b.AddArc(0, 1, EpsilonSymbol, EpsilonSymbol)
	n := b.Done()
	assert.Equal(t, 1, n.Arity)
	assert.False(t, n.EpsilonFree)
	assert.False(t, n.Deterministic)
}

func TestBuilderEmpty(t *testing.T) {
	n := TopSort(NewBuilder("none").Done())
	assert.Empty(t, n.States)
	assert.Equal(t, 0, n.StateCount)
	assert.True(t, n.LoopFree)
	assert.Zero(t, n.PathCount)
}

func TestTopSortRenumbers(t *testing.T) {
	b := NewBuilder("r")
	b.AddArc(2, 0, "a", "a")
	b.AddArc(0, 1, "b", "b")
	b.SetFinal(1)
	b.SetInitial(2)
	n := TopSort(b.Done())

	a, _ := n.Sigma.Find("a")
	bb, _ := n.Sigma.Find("b")
	assert.Equal(t, []Transition{
		{State: 0, In: a, Out: a, Target: 1, Start: true},
		{State: 1, In: bb, Out: bb, Target: 2},
		{State: 2, In: -1, Out: -1, Target: -1, Final: true},
	}, n.States)
	assert.True(t, n.LoopFree)
	assert.EqualValues(t, 1, n.PathCount)
}

func TestTopSortPathCount(t *testing.T) {
	b := NewBuilder("d")
	b.AddArc(0, 1, "a", "a")
	b.AddArc(0, 1, "b", "b")
	b.AddArc(1, 2, "c", "c")
	b.AddArc(1, 2, "d", "d")
	b.SetFinal(2)
	assert.EqualValues(t, 4, TopSort(b.Done()).PathCount)

	b.SetFinal(1)
	assert.EqualValues(t, 6, TopSort(b.Done()).PathCount)
}

func TestTopSortCyclic(t *testing.T) {
	b := NewBuilder("c")
	b.AddArc(0, 1, "a", "a")
	b.AddArc(1, 0, "b", "b")
	b.SetFinal(1)
	n := TopSort(b.Done())
	assert.False(t, n.LoopFree)
	assert.Equal(t, PathCountCyclic, n.PathCount)
	assert.Equal(t, 0, n.States[0].State)
}

func TestTopSortOverflow(t *testing.T) {
	b := NewBuilder("o")
	for s := range 64 {
		b.AddArc(s, s+1, "a", "a")
		b.AddArc(s, s+1, "b"+strconv.Itoa(s), "b"+strconv.Itoa(s))
	}
	b.SetFinal(64)
	n := TopSort(b.Done())
	assert.True(t, n.LoopFree)
	assert.Equal(t, PathCountOverflow, n.PathCount)
}
