package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// rewriteAllDiff implements spec §4.2's all_diff rewriter: the empty
// and singleton collapses PresolveAllDiff performs unconditionally,
// plus its fixed-variable detection (left as a stats-only marker in
// the ground truth, never acted on there either).
func rewriteAllDiff(ctx *context.Context, idx int32, c *model.AllDiff) (changed, rerun bool) {
	size := len(c.VarIndices)
	if size == 0 {
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("all_diff: empty constraint")
		return true, false
	}
	if size == 1 {
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("all_diff: only one variable")
		return true, false
	}

	for _, v := range c.VarIndices {
		if ctx.IsFixed(v) {
			ctx.IncrementStat("TODO all_diff: fixed variables")
			break
		}
	}

	return false, false
}
