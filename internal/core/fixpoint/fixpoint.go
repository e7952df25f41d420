// Package fixpoint implements spec §4.3's fixpoint driver: the
// worklist loop that repeatedly hands constraints to
// internal/core/rewrite until nothing further changes, plus the
// ten-step finalization pipeline that runs once that quiescence is
// reached.
package fixpoint

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/internal/core/rewrite"
)

// pairKey packs a (variable, constraint) pair into a single map key
// for the singleton-reactivation dedup set below.
func pairKey(v, c int32) int64 { return int64(v)<<32 | int64(uint32(c)) }

// Run drains ctx's working model to quiescence. The worklist is
// seeded with every constraint; each pop rewrites one constraint via
// rewrite.Rewrite, any constraint appended mid-run (a rewriter may
// call ctx.AddWorkingConstraint, e.g. int_prod's Boolean expansion) is
// itself queued, and every variable whose domain changed during the
// step re-activates all constraints incident on it, sorted
// deterministically by internal/core/context.TakeModifiedDomains.
// A modified variable incident to exactly one constraint is also
// recorded once per (variable, constraint) pair over the whole run;
// that constraint was already queued by the sweep, so the record adds
// no extra rewrite. A variable whose constraint count drops to one
// without a domain change does not re-queue its remaining constraint.
func Run(ctx *context.Context) {
	wl := newWorklist(len(ctx.Working.Constraints))
	for i := range ctx.Working.Constraints {
		wl.push(int32(i))
	}
	singletonTriggered := make(map[int64]struct{})

	for {
		if ctx.IsUnsat() {
			return
		}
		idx, ok := wl.pop()
		if !ok {
			return
		}
		before := int32(len(ctx.Working.Constraints))
		rewrite.Rewrite(ctx, idx)
		for i := before; i < int32(len(ctx.Working.Constraints)); i++ {
			wl.push(i)
		}

		for _, v := range ctx.TakeModifiedDomains() {
			cs := ctx.UsageGraph().ConstraintsUsing(v)
			for _, c := range cs {
				wl.push(c)
			}
			if len(cs) == 1 {
				key := pairKey(v, cs[0])
				if _, seen := singletonTriggered[key]; !seen {
					singletonTriggered[key] = struct{}{}
					wl.push(cs[0])
				}
			}
		}
	}
}
