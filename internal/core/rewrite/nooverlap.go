package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// rewriteNoOverlap implements the always-sound core of spec §4.2's
// no_overlap rewriter: an empty or singleton interval list can never
// conflict with itself, so the constraint is deleted outright. The
// max-clique merge pass the spec also describes runs once across the
// whole model after fixpoint quiescence, not per-constraint, so it
// belongs to the fixpoint driver rather than here.
func rewriteNoOverlap(ctx *context.Context, idx int32, c *model.NoOverlap) (changed, rerun bool) {
	if len(c.Intervals) <= 1 {
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("no_overlap: empty or singleton, deleted")
		return true, false
	}
	return false, false
}
