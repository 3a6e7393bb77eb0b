package routing

import (
	"math"

	"route-optimizer/internal/distance"
)

// Strategy selects how Held-Karp states are memoized
type Strategy string

const (
	StrategyDense  Strategy = "dense"  // flat arrays indexed by (mask, position)
	StrategySparse Strategy = "sparse" // map keyed by (mask, position)
)

// noNext marks a terminal state or a state that has not been filled
const noNext = -1

// heldKarp fills the cost and best-next tables for an open path that starts
// at index 0 and returns a function that reports the best next index for a
// given state.
type heldKarp interface {
	solve(m *distance.Matrix, onUpdate func(pos int, mask uint32, next int, cost float64)) (cost float64, next func(pos int, mask uint32) int)
}

func newHeldKarp(s Strategy) heldKarp {
	if s == StrategySparse {
		return &sparseTable{}
	}
	return &denseTable{}
}

// denseTable stores states with bit 0 set in contiguous arrays. Every
// reachable mask contains the start, so the slot for (pos, mask) is
// (mask>>1)*n + pos and the tables hold n*2^(n-1) entries.
type denseTable struct {
	n    int
	cost []float64
	next []int8
}

func (t *denseTable) slot(pos int, mask uint32) int {
	return int(mask>>1)*t.n + pos
}

func (t *denseTable) solve(m *distance.Matrix, onUpdate func(int, uint32, int, float64)) (float64, func(int, uint32) int) {
	n := m.Size()
	full := uint32(1)<<uint(n) - 1
	size := (1 << uint(n-1)) * n

	t.n = n
	t.cost = make([]float64, size)
	t.next = make([]int8, size)

	// Supersets are numerically larger, so walking odd masks downward
	// guarantees every successor state is final before it is read.
	for mask := full; ; mask -= 2 {
		for pos := 0; pos < n; pos++ {
			if mask&(1<<uint(pos)) == 0 {
				continue
			}
			if pos == 0 && mask != 1 {
				continue // unreachable: the path only sits at 0 before moving
			}

			s := t.slot(pos, mask)
			if mask == full {
				t.cost[s] = 0
				t.next[s] = noNext
				continue
			}

			best := math.Inf(1)
			bestNext := noNext
			for nxt := 0; nxt < n; nxt++ {
				bit := uint32(1) << uint(nxt)
				if mask&bit != 0 {
					continue
				}
				cand := m.At(pos, nxt) + t.cost[t.slot(nxt, mask|bit)]
				if cand < best {
					best = cand
					bestNext = nxt
					if onUpdate != nil {
						onUpdate(pos, mask, nxt, cand)
					}
				}
			}
			t.cost[s] = best
			t.next[s] = int8(bestNext)
		}

		if mask == 1 {
			break
		}
	}

	return t.cost[t.slot(0, 1)], func(pos int, mask uint32) int {
		return int(t.next[t.slot(pos, mask)])
	}
}

type stateKey struct {
	pos  int
	mask uint32
}

type memoEntry struct {
	cost float64
	next int
}

// sparseTable memoizes only the states the recursion actually visits
type sparseTable struct {
	m        *distance.Matrix
	full     uint32
	memo     map[stateKey]memoEntry
	onUpdate func(int, uint32, int, float64)
}

func (t *sparseTable) solve(m *distance.Matrix, onUpdate func(int, uint32, int, float64)) (float64, func(int, uint32) int) {
	n := m.Size()
	t.m = m
	t.full = uint32(1)<<uint(n) - 1
	t.memo = make(map[stateKey]memoEntry)
	t.onUpdate = onUpdate

	cost := t.visit(0, 1)

	return cost, func(pos int, mask uint32) int {
		if e, ok := t.memo[stateKey{pos, mask}]; ok {
			return e.next
		}
		return noNext
	}
}

func (t *sparseTable) visit(pos int, mask uint32) float64 {
	if mask == t.full {
		return 0
	}

	key := stateKey{pos, mask}
	if e, ok := t.memo[key]; ok {
		return e.cost
	}

	best := math.Inf(1)
	bestNext := noNext
	for nxt := 0; nxt < t.m.Size(); nxt++ {
		bit := uint32(1) << uint(nxt)
		if mask&bit != 0 {
			continue
		}
		cand := t.m.At(pos, nxt) + t.visit(nxt, mask|bit)
		if cand < best {
			best = cand
			bestNext = nxt
			if t.onUpdate != nil {
				t.onUpdate(pos, mask, nxt, cand)
			}
		}
	}

	t.memo[key] = memoEntry{cost: best, next: bestNext}
	return best
}
