package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// rewriteInterval implements spec §4.2's interval rewriter: three
// mutual domain intersections enforce start + size = end.
func rewriteInterval(ctx *context.Context, idx int32, c *model.IntervalConstraint) (changed, rerun bool) {
	start, size, end := ctx.DomainOf(c.Start), ctx.DomainOf(c.Size), ctx.DomainOf(c.End)

	if ctx.IntersectDomain(c.End, start.AddElementwise(size)) {
		changed = true
	}
	if ctx.IntersectDomain(c.Start, end.AddElementwise(size.Negate())) {
		changed = true
	}
	if ctx.IntersectDomain(c.Size, end.AddElementwise(start.Negate())) {
		changed = true
	}
	return changed, false
}
