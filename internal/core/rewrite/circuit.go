package rewrite

import (
	"sort"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// rewriteCircuit implements spec §4.2's circuit rewriter: per-node
// incoming/outgoing arc-literal lists drive forced-true singletons and
// degree-2 Boolean equalities, and a node left with no remaining
// incoming or outgoing arc is immediate infeasibility. The
// already-fixed-subcircuit propagation the spec also describes needs a
// live traversal of the arc graph this pass does not perform and is
// left as a documented gap.
func rewriteCircuit(ctx *context.Context, idx int32, c *model.Circuit) (changed, rerun bool) {
	out := make(map[int32][]model.VarRef)
	in := make(map[int32][]model.VarRef)
	nodeSet := make(map[int32]struct{})
	for _, a := range c.Arcs {
		if ctx.LiteralIsFalse(a.Literal) {
			continue
		}
		out[a.Tail] = append(out[a.Tail], a.Literal)
		in[a.Head] = append(in[a.Head], a.Literal)
		nodeSet[a.Tail] = struct{}{}
		nodeSet[a.Head] = struct{}{}
	}

	nodes := make([]int32, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	for _, n := range nodes {
		if len(out[n]) == 0 || len(in[n]) == 0 {
			ctx.SetUnsat()
			ctx.IncrementStat("circuit: node with no remaining arcs (unsat)")
			return true, false
		}
	}

	for _, n := range nodes {
		if len(out[n]) == 1 && ctx.SetLiteralTrue(out[n][0]) {
			changed = true
		}
		if len(in[n]) == 1 && ctx.SetLiteralTrue(in[n][0]) {
			changed = true
		}
		if len(out[n]) == 2 {
			if err := ctx.AddBooleanEquality(out[n][0], model.Negate(out[n][1])); err == nil {
				changed = true
			}
		}
		if len(in[n]) == 2 {
			if err := ctx.AddBooleanEquality(in[n][0], model.Negate(in[n][1])); err == nil {
				changed = true
			}
		}
	}

	return changed, false
}
