package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// rewriteCumulative implements spec §4.2's cumulative rewriter's
// always-applicable reductions: an empty or singleton resource use
// deletes the constraint, and a resource every demand individually
// exceeds half of degenerates into plain no_overlap. The further
// all-different degeneration (equal unit durations, no optional
// intervals) needs duration/optionality fields this model's Cumulative
// does not carry, so it is not attempted here.
func rewriteCumulative(ctx *context.Context, idx int32, c *model.Cumulative) (changed, rerun bool) {
	if len(c.Intervals) <= 1 {
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("cumulative: empty or singleton, deleted")
		return true, false
	}

	allHeavy := true
	for _, d := range c.Demands {
		if ctx.MinOf(d)*2 <= int64(c.Capacity) {
			allHeavy = false
			break
		}
	}
	if allHeavy {
		ctx.Working.Constraints[idx] = &model.NoOverlap{Intervals: append([]int32{}, c.Intervals...)}
		ctx.IncrementStat("cumulative: degenerated to no_overlap")
		return true, true
	}

	return false, false
}
