package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// rewriteIntDiv implements spec §4.2's integer-division rewriter: once
// the divisor is fixed to a nonzero constant, the target's domain is
// tightened to the numerator's domain divided by that constant.
func rewriteIntDiv(ctx *context.Context, idx int32, c *model.IntDiv) (changed, rerun bool) {
	if !ctx.IsFixed(c.Denom) {
		return false, false
	}
	d := ctx.DomainOf(c.Denom).FixedValue()
	if d == 0 {
		ctx.SetUnsat()
		ctx.IncrementStat("int_div: division by zero (unsat)")
		return true, false
	}
	if ctx.IntersectDomain(c.Target, ctx.DomainOf(c.Num).DivisionByConstant(d)) {
		changed = true
		ctx.IncrementStat("int_div: target tightened from fixed divisor")
	}
	return changed, false
}
