package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func removeValue(d intervaldomain.Domain, k int64) intervaldomain.Domain {
	if d.IsEmpty() {
		return d
	}
	comp := intervaldomain.Single(k).ComplementWithinRange(d.Min(), d.Max())
	return d.Intersect(comp)
}

// rewriteElement implements spec §4.2's element rewriter
// (vars[index] == target): restricts index to the option range,
// infers the target domain from still-reachable options, prunes index
// values whose option can never agree with target, and moves a fully
// constant element to the mapping model once its index or target is
// otherwise unused.
func rewriteElement(ctx *context.Context, idx int32, c *model.Element) (changed, rerun bool) {
	n := int64(len(c.Options))
	if n == 0 {
		ctx.SetUnsat()
		ctx.IncrementStat("element: no options (unsat)")
		return true, false
	}
	if ctx.IntersectDomain(c.Index, intervaldomain.Range(0, n-1)) {
		changed = true
	}

	idxDomain := ctx.DomainOf(c.Index)
	targetDomain := ctx.DomainOf(c.Target)
	union := intervaldomain.New()
	allConst := true
	var dead []int64
	for k := int64(0); k < n; k++ {
		if !idxDomain.Contains(k) {
			continue
		}
		vd := ctx.DomainOf(c.Options[k])
		if !vd.IsFixed() {
			allConst = false
		}
		union = union.Union(vd)
		if vd.Intersect(targetDomain).IsEmpty() {
			dead = append(dead, k)
		}
	}

	if len(dead) > 0 {
		next := idxDomain
		for _, k := range dead {
			next = removeValue(next, k)
		}
		if ctx.IntersectDomain(c.Index, next) {
			changed = true
		}
	}
	if !union.IsEmpty() && ctx.IntersectDomain(c.Target, union) {
		changed = true
	}

	if allConst && (ctx.UsageGraph().NumConstraintsUsing(c.Index) == 1 || ctx.UsageGraph().NumConstraintsUsing(c.Target) == 1) {
		ctx.AddMappingConstraint(c)
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("element: all-constant, moved to mapping model")
		return true, false
	}

	return changed, false
}
