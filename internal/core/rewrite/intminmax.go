package rewrite

import (
	"math"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// exprDomain computes a sound (hull-bounded) domain for a LinearExpr
// from the current domains of the variables it references, using the
// same interval algebra the linear rewriter leans on.
func exprDomain(ctx *context.Context, e model.LinearExpr) intervaldomain.Domain {
	d := intervaldomain.Single(e.Offset)
	for i, v := range e.Vars {
		term := ctx.DomainOf(v).ContinuousMultiply(e.Coeffs[i])
		d = d.AddElementwise(term)
	}
	return d
}

func exprsEqual(a, b model.LinearExpr) bool {
	if a.Offset != b.Offset || len(a.Vars) != len(b.Vars) {
		return false
	}
	for i := range a.Vars {
		if a.Vars[i] != b.Vars[i] || a.Coeffs[i] != b.Coeffs[i] {
			return false
		}
	}
	return true
}

// isNegationOf reports whether b == -a (same variables, negated
// coefficients and offset), the shape spec §4.2's max rewriter checks
// for when deciding to tighten the target to be non-negative.
func isNegationOf(a, b model.LinearExpr) bool {
	if a.Offset != -b.Offset || len(a.Vars) != len(b.Vars) {
		return false
	}
	for i := range a.Vars {
		if a.Vars[i] != b.Vars[i] || a.Coeffs[i] != -b.Coeffs[i] {
			return false
		}
	}
	return true
}

// rewriteIntMax implements spec §4.2's integer-max rewriter directly.
func rewriteIntMax(ctx *context.Context, idx int32, c *model.IntMax) (changed, rerun bool) {
	return rewriteMinMax(ctx, idx, c.Target, &c.Exprs, c.Enforced, true)
}

// rewriteIntMin implements integer-min by running the max rewriter's
// logic with the comparison direction reversed, per spec §4.2's "min
// is rewritten as a max on negated references" -- here expressed as a
// direction flag rather than materializing negated variables, since
// plain integer variables (unlike Boolean literals) have no built-in
// negated-reference form in this model.
func rewriteIntMin(ctx *context.Context, idx int32, c *model.IntMin) (changed, rerun bool) {
	return rewriteMinMax(ctx, idx, c.Target, &c.Exprs, c.Enforced, false)
}

func rewriteMinMax(ctx *context.Context, idx int32, target int32, exprs *[]model.LinearExpr, enforced []model.VarRef, isMax bool) (changed, rerun bool) {
	list := *exprs

	// 1. Deduplicate.
	dedup := list[:0:0]
	for _, e := range list {
		dup := false
		for _, k := range dedup {
			if exprsEqual(e, k) {
				dup = true
				break
			}
		}
		if dup {
			changed = true
			continue
		}
		dedup = append(dedup, e)
	}
	list = dedup

	// 2. Negated-pair / negated-target tightening: target >= 0 for max,
	// target <= 0 for min.
	targetExpr := model.LinearExpr{Vars: []int32{target}, Coeffs: []int64{1}}
	tighten := false
	for i, e := range list {
		for j, o := range list {
			if i != j && isNegationOf(e, o) {
				tighten = true
			}
		}
		if isNegationOf(e, targetExpr) {
			tighten = true
		}
	}
	if tighten && len(enforced) == 0 {
		if isMax {
			if ctx.IntersectDomain(target, intervaldomain.Range(0, math.MaxInt64)) {
				changed = true
			}
		} else if ctx.IntersectDomain(target, intervaldomain.Range(math.MinInt64, 0)) {
			changed = true
		}
	}

	// 3 & 4: without enforcement, tighten target from the union of
	// argument domains and drop arguments that can never win.
	if len(enforced) == 0 {
		tmin, tmax := ctx.MinOf(target), ctx.MaxOf(target)
		clip := intervaldomain.Range(tmin, tmax)
		union := intervaldomain.New()
		kept := list[:0:0]
		for _, e := range list {
			ed := exprDomain(ctx, e)
			clipped := ed.Intersect(clip)
			if !clipped.IsEmpty() {
				union = union.Union(clipped)
			}
			if isMax {
				if ed.Max() < tmin {
					changed = true
					continue
				}
			} else if ed.Min() > tmax {
				changed = true
				continue
			}
			kept = append(kept, e)
		}
		list = kept
		if !union.IsEmpty() && ctx.IntersectDomain(target, union) {
			changed = true
		}

		for _, e := range list {
			if len(e.Vars) == 1 && e.Coeffs[0] == 1 && e.Offset == 0 {
				v := e.Vars[0]
				var bound intervaldomain.Domain
				if isMax {
					bound = intervaldomain.Range(math.MinInt64, ctx.MaxOf(target))
				} else {
					bound = intervaldomain.Range(ctx.MinOf(target), math.MaxInt64)
				}
				if ctx.IntersectDomain(v, bound) {
					changed = true
				}
			}
		}
	}

	*exprs = list

	// 5. Trivial sizes.
	if len(list) == 0 {
		ctx.SetUnsat()
		ctx.IncrementStat("int_max: empty (unsat)")
		return true, false
	}
	if len(list) == 1 {
		e := list[0]
		lin := &model.Linear{
			VarIndices: append([]int32{target}, e.Vars...),
			Coeffs:     append([]int64{1}, negateAll(e.Coeffs)...),
			Domain:     []model.Interval64{{Min: e.Offset, Max: e.Offset}},
			Enforced:   enforced,
		}
		ctx.Working.Constraints[idx] = lin
		ctx.IncrementStat("int_max: collapsed to linear")
		return true, true
	}

	return changed, false
}

func negateAll(cs []int64) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = -c
	}
	return out
}
