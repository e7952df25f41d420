package trail

import (
	"container/heap"

	"github.com/cp-hybrid/presolve/pkg/model"
)

// trailIndexHeap is a max-heap of trail indices, used by explain to
// process contributing entries from most to least recent (spec §4.5's
// "push these indices onto a max-heap keyed by trail index;
// iteratively pop the largest").
type trailIndexHeap []int32

func (h trailIndexHeap) Len() int            { return len(h) }
func (h trailIndexHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h trailIndexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *trailIndexHeap) Push(x interface{}) { *h = append(*h, x.(int32)) }
func (h *trailIndexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// findLowestTrailIndexThatExplainsBound walks v's own trail chain
// (newest to oldest via PrevIndexForSameVar) to find the earliest
// entry that already establishes "v >= bound". Returns -1 if bound
// holds from the variable's static initial domain already (spec's
// "bounds below level-zero are dropped").
func (t *Trail) findLowestTrailIndexThatExplainsBound(v int32, bound int64) int32 {
	idx := t.vars[v].currentTrailIndex
	best := int32(-1)
	for idx >= 0 && t.entries[idx].Bound >= bound {
		best = idx
		idx = t.entries[idx].PrevIndexForSameVar
	}
	return best
}

// ReasonFor replays the reason algorithm for a single bound literal
// "v >= bound", returning a minimal-by-trail-index set of Booleans
// that explains it (spec §4.5's reason_for).
func (t *Trail) ReasonFor(v int32, bound int64) []model.VarRef {
	return t.explain([]IntLit{{Var: v, Bound: bound}})
}

// explain implements spec §4.5's reason-merge algorithm: map each
// literal to the trail entry that already enforces it, process
// entries from most to least recent via a max-heap, and for each
// either emit its associated Boolean's negation or recurse into its
// own integer_reason dependencies. Per-variable requests are
// deduplicated by keeping only the strongest (highest) bound still
// pending; a weaker request already pushed before a stronger one for
// the same variable arrives may still be popped and processed once
// its own trail index differs from the stronger one's, which yields a
// clause that is sound but not always minimal — a bounded, documented
// approximation rather than a full heap-decrease-key implementation.
func (t *Trail) explain(lits []IntLit) []model.VarRef {
	h := &trailIndexHeap{}
	heap.Init(h)
	marked := make(map[int32]struct{})
	strongest := make(map[int32]int64)

	push := func(v int32, bound int64) {
		if prev, ok := strongest[v]; ok && prev >= bound {
			return
		}
		strongest[v] = bound
		idx := t.findLowestTrailIndexThatExplainsBound(v, bound)
		if idx < 0 {
			return
		}
		if _, done := marked[idx]; done {
			return
		}
		marked[idx] = struct{}{}
		heap.Push(h, idx)
	}

	for _, l := range lits {
		push(l.Var, l.Bound)
	}

	var out []model.VarRef
	for h.Len() > 0 {
		idx := heap.Pop(h).(int32)
		e := t.entries[idx]
		if e.BoolLiteral != NoLiteral {
			out = append(out, model.Negate(e.BoolLiteral))
			continue
		}
		if e.ReasonIndex < 0 {
			continue
		}
		r := t.reasons[e.ReasonIndex]
		for _, lit := range r.Literals {
			out = append(out, model.Negate(lit))
		}
		for _, il := range r.IntegerLiterals {
			push(il.Var, il.Bound)
		}
	}
	return out
}

// LinearReasonTerm is one term of a linear-combination reason,
// sum(Coeff_i * (Var_i >= Bound_i)), per spec §4.5's linear-reason
// relaxation.
type LinearReasonTerm struct {
	Coeff int64
	Var   int32
	Bound int64
}

// RelaxLinearReason greedily weakens terms while slack remains: at
// each step it picks, among terms whose one-step weakening (to the
// previous trail entry for that variable) costs no more than the
// remaining slack, the one whose current explaining trail index is
// smallest, and relaxes it. This favors keeping the reason anchored on
// older, more broadly-reusable trail entries, per spec's "choosing at
// each step the literal with the smallest trail index that still fits
// under the slack".
func (t *Trail) RelaxLinearReason(terms []LinearReasonTerm, slack int64) []LinearReasonTerm {
	out := append([]LinearReasonTerm{}, terms...)
	for {
		best := -1
		var bestIdx int32
		var bestPrevBound, bestCost int64
		for i, term := range out {
			curIdx := t.findLowestTrailIndexThatExplainsBound(term.Var, term.Bound)
			if curIdx < 0 {
				continue
			}
			prevIdx := t.entries[curIdx].PrevIndexForSameVar
			if prevIdx < 0 {
				continue
			}
			prevBound := t.entries[prevIdx].Bound
			cost := term.Coeff * (term.Bound - prevBound)
			if cost > slack {
				continue
			}
			if best == -1 || curIdx < bestIdx {
				best, bestIdx, bestPrevBound, bestCost = i, curIdx, prevBound, cost
			}
		}
		if best == -1 {
			return out
		}
		slack -= bestCost
		out[best].Bound = bestPrevBound
	}
}
