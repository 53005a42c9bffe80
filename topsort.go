package fsmio

import (
	"container/heap"
	"math"
)

// TopSort renumbers the states of an acyclic network in topological order
// (ties broken by the old number) and computes its path count. Cyclic
// networks keep their numbering and get PathCountCyclic.
// The network is modified in place and returned.
func TopSort(n *Network) *Network {
	n.Count()
	numStates := n.StateCount
	if numStates == 0 {
		n.LoopFree = true
		n.PathCount = 0
		return n
	}

	indegree := make([]int, numStates)
	for _, t := range n.States {
		if t.HasArc() {
			indegree[t.Target]++
		}
	}

	ready := &intHeap{}
	for s, d := range indegree {
		if d == 0 {
			heap.Push(ready, s)
		}
	}
	outgoing := groupByState(n.States, numStates)
	order := make([]int, 0, numStates)
	for ready.Len() > 0 {
		s := heap.Pop(ready).(int)
		order = append(order, s)
		for _, t := range outgoing[s] {
			if !t.HasArc() {
				continue
			}
			if indegree[t.Target]--; indegree[t.Target] == 0 {
				heap.Push(ready, t.Target)
			}
		}
	}

	if len(order) < numStates {
		n.LoopFree = false
		n.PathCount = PathCountCyclic
		return n
	}
	n.LoopFree = true
	n.PathCount = countPaths(order, outgoing)

	// The start state has to stay first.
	if order[0] != 0 {
		return n
	}
	renum := make([]int, numStates)
	for i, s := range order {
		renum[s] = i
	}
	states := make([]Transition, 0, len(n.States))
	for i, s := range order {
		for _, t := range outgoing[s] {
			t.State = i
			if t.HasArc() {
				t.Target = renum[t.Target]
			}
			t.Start = i == 0
			states = append(states, t)
		}
	}
	n.States = states
	return n
}

func groupByState(states []Transition, numStates int) [][]Transition {
	out := make([][]Transition, numStates)
	for _, t := range states {
		out[t.State] = append(out[t.State], t)
	}
	return out
}

// countPaths counts the accepting paths from state 0 in topological order.
func countPaths(order []int, outgoing [][]Transition) int64 {
	paths := make([]int64, len(outgoing))
	paths[0] = 1
	var total int64
	for _, s := range order {
		p := paths[s]
		if p == 0 {
			continue
		}
		for _, t := range outgoing[s] {
			if !t.HasArc() {
				continue
			}
			if paths[t.Target] > math.MaxInt64-p {
				return PathCountOverflow
			}
			paths[t.Target] += p
		}
		if len(outgoing[s]) > 0 && outgoing[s][0].Final {
			if total > math.MaxInt64-p {
				return PathCountOverflow
			}
			total += p
		}
	}
	return total
}

type intHeap []int

func (h intHeap) Len() int           { return len(h) }
func (h intHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
