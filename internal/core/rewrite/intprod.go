package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// intervalProduct computes the sound hull of a*b from their extreme
// corners, the textbook interval-multiplication rule: the product's
// bounds are always among the four corner combinations.
func intervalProduct(a, b intervaldomain.Domain) intervaldomain.Domain {
	corners := []int64{
		a.Min() * b.Min(),
		a.Min() * b.Max(),
		a.Max() * b.Min(),
		a.Max() * b.Max(),
	}
	lo, hi := corners[0], corners[0]
	for _, v := range corners[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return intervaldomain.Range(lo, hi)
}

// rewriteIntProd implements spec §4.2's integer-product rewriter: the
// binary fixed-factor case collapses to a linear equality, the
// all-Boolean case expands into a conjunction/disjunction pair, and
// otherwise the target's domain is tightened to the interval-hull
// product of its factors.
func rewriteIntProd(ctx *context.Context, idx int32, c *model.IntProd) (changed, rerun bool) {
	if len(c.Factors) == 2 {
		for i := 0; i < 2; i++ {
			fixedVar, other := c.Factors[i], c.Factors[1-i]
			if !ctx.IsFixed(fixedVar) {
				continue
			}
			k := ctx.DomainOf(fixedVar).FixedValue()
			lin := &model.Linear{
				VarIndices: []int32{c.Target, other},
				Coeffs:     []int64{1, -k},
				Domain:     []model.Interval64{{Min: 0, Max: 0}},
			}
			ctx.Working.Constraints[idx] = lin
			ctx.IncrementStat("int_prod: fixed factor collapsed to linear")
			return true, true
		}
	}

	allBoolean := ctx.DomainOf(c.Target).IsIncludedIn(intervaldomain.Range(0, 1))
	for _, f := range c.Factors {
		if !ctx.DomainOf(f).IsIncludedIn(intervaldomain.Range(0, 1)) {
			allBoolean = false
			break
		}
	}
	if allBoolean {
		lits := make([]model.VarRef, len(c.Factors))
		for i, f := range c.Factors {
			lits[i] = model.VarRef(f)
		}
		ctx.Working.Constraints[idx] = &model.BoolAnd{Literals: lits, Enforced: []model.VarRef{model.VarRef(c.Target)}}
		clause := []model.VarRef{model.VarRef(c.Target)}
		for _, f := range c.Factors {
			clause = append(clause, model.Negate(model.VarRef(f)))
		}
		ctx.AddWorkingConstraint(&model.BoolOr{Literals: clause})
		ctx.IncrementStat("int_prod: all-Boolean expanded to bool_and/bool_or")
		return true, true
	}

	if len(c.Factors) > 0 {
		prod := ctx.DomainOf(c.Factors[0])
		for _, f := range c.Factors[1:] {
			prod = intervalProduct(prod, ctx.DomainOf(f))
		}
		if ctx.IntersectDomain(c.Target, prod) {
			changed = true
			ctx.IncrementStat("int_prod: target bound tightened")
		}
	}

	return changed, false
}
