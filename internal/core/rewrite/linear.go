package rewrite

import (
	"math"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func toRHSDomain(ivs []model.Interval64) intervaldomain.Domain {
	parts := make([]intervaldomain.Interval, len(ivs))
	for i, iv := range ivs {
		parts[i] = intervaldomain.Interval{Min: iv.Min, Max: iv.Max}
	}
	return intervaldomain.New(parts...)
}

func fromRHSDomain(d intervaldomain.Domain) []model.Interval64 {
	ivs := d.Intervals()
	out := make([]model.Interval64, len(ivs))
	for i, iv := range ivs {
		out[i] = model.Interval64{Min: iv.Min, Max: iv.Max}
	}
	return out
}

func gcd64(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func ceilDivLinear(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

func floorDivLinear(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		return q - 1
	}
	return q
}

// rewriteLinear implements spec §4.2's linear-constraint rewriter,
// the largest and most consequential one: canonicalization, GCD
// reduction, trivial-size collapse, implied-RHS tightening,
// per-variable domain tightening, affine extraction, and a
// Boolean-only clause expansion for small all-Boolean constraints.
//
// Coefficient strengthening (spec §4.2 step 7) and the post-fixpoint
// redundant-at-most-one extraction (step 9) are not implemented here:
// the former needs a dedicated worst-case bound-margin search this
// pass doesn't perform, and the latter is explicitly a separate pass
// over the whole model run after fixpoint quiescence, which belongs to
// the fixpoint driver rather than a single constraint's rewriter.
func rewriteLinear(ctx *context.Context, idx int32, c *model.Linear) (changed, rerun bool) {
	if c.Defining {
		return tightenVariableDomains(ctx, c), false
	}

	if canonicalizeLinear(ctx, c) {
		changed = true
	}
	if divideByGCDLinear(c) {
		changed = true
	}

	if len(c.VarIndices) == 0 {
		rhs := toRHSDomain(c.Domain)
		if rhs.Contains(0) {
			ctx.ClearConstraint(idx)
			ctx.IncrementStat("linear: empty, trivially satisfied")
			return true, false
		}
		if len(c.Enforced) == 0 {
			ctx.SetUnsat()
			ctx.IncrementStat("linear: empty, unsat")
			return true, false
		}
		return markConstraintFalse(ctx, idx, c.Enforced)
	}

	if len(c.VarIndices) == 1 && len(c.Enforced) == 0 {
		rhs := toRHSDomain(c.Domain)
		dom := rhs.DivisionByConstant(c.Coeffs[0])
		if ctx.IntersectDomain(c.VarIndices[0], dom) {
			changed = true
		}
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("linear: singleton collapsed to domain bound")
		return true, false
	}

	if rhsChanged, terminal := tightenImpliedRHS(ctx, idx, c); rhsChanged || terminal {
		changed = true
		if terminal {
			return true, true
		}
	}

	if len(c.Enforced) == 0 {
		if tightenVariableDomains(ctx, c) {
			changed = true
		}
		if extractAffine(ctx, idx, c) {
			ctx.IncrementStat("linear: extracted affine relation")
			return true, false
		}
		if expandBooleanOnly(ctx, idx, c) {
			return true, false
		}
	}

	return changed, false
}

// canonicalizeLinear merges duplicate variables (summing coefficients)
// and folds already-fixed variables into the RHS. Affine-representative
// substitution itself already happened in the generic pre-pass
// (substituteLinearTerm, via Rewrite's substituteEquivalencePass)
// before this rewriter ever runs.
func canonicalizeLinear(ctx *context.Context, c *model.Linear) bool {
	rhs := toRHSDomain(c.Domain)
	merged := make(map[int32]int64, len(c.VarIndices))
	var order []int32
	for i, v := range c.VarIndices {
		coeff := c.Coeffs[i]
		if ctx.IsFixed(v) {
			val := ctx.DomainOf(v).FixedValue()
			rhs = rhs.AddConstant(-coeff * val)
			continue
		}
		if _, ok := merged[v]; !ok {
			order = append(order, v)
		}
		merged[v] += coeff
	}

	newVars := make([]int32, 0, len(order))
	newCoeffs := make([]int64, 0, len(order))
	for _, v := range order {
		if merged[v] == 0 {
			continue
		}
		newVars = append(newVars, v)
		newCoeffs = append(newCoeffs, merged[v])
	}

	changed := len(newVars) != len(c.VarIndices)
	if !changed {
		for i := range newVars {
			if newVars[i] != c.VarIndices[i] || newCoeffs[i] != c.Coeffs[i] {
				changed = true
				break
			}
		}
	}
	if !rhs.Equal(toRHSDomain(c.Domain)) {
		changed = true
	}

	c.VarIndices, c.Coeffs = newVars, newCoeffs
	c.Domain = fromRHSDomain(rhs)
	return changed
}

func divideByGCDLinear(c *model.Linear) bool {
	if len(c.Coeffs) == 0 {
		return false
	}
	g := int64(0)
	for _, co := range c.Coeffs {
		g = gcd64(g, co)
	}
	if g <= 1 {
		return false
	}
	rhs := toRHSDomain(c.Domain)
	var parts []intervaldomain.Interval
	for _, iv := range rhs.Intervals() {
		lo := ceilDivLinear(iv.Min, g)
		hi := floorDivLinear(iv.Max, g)
		if lo <= hi {
			parts = append(parts, intervaldomain.Interval{Min: lo, Max: hi})
		}
	}
	for i := range c.Coeffs {
		c.Coeffs[i] /= g
	}
	c.Domain = fromRHSDomain(intervaldomain.New(parts...))
	return true
}

// prefixSums returns L[0..n], L[i] = sum of domain(v_j)*c_j for j<i.
func prefixSums(ctx *context.Context, c *model.Linear) []intervaldomain.Domain {
	out := make([]intervaldomain.Domain, len(c.VarIndices)+1)
	out[0] = intervaldomain.Single(0)
	for i, v := range c.VarIndices {
		term := ctx.DomainOf(v).ContinuousMultiply(c.Coeffs[i])
		out[i+1] = out[i].AddElementwise(term)
	}
	return out
}

// suffixSums returns R[0..n-1], R[i] = sum of domain(v_j)*c_j for j>i
// (R[n-1] = 0, the empty suffix after the last variable).
func suffixSums(ctx *context.Context, c *model.Linear) []intervaldomain.Domain {
	n := len(c.VarIndices)
	out := make([]intervaldomain.Domain, n)
	acc := intervaldomain.Single(0)
	for i := n - 1; i >= 0; i-- {
		out[i] = acc
		term := ctx.DomainOf(c.VarIndices[i]).ContinuousMultiply(c.Coeffs[i])
		acc = acc.AddElementwise(term)
	}
	return out
}

// tightenImpliedRHS intersects the RHS with the domain-implied sum
// range. terminal reports whether idx's constraint slot was replaced
// or the model marked unsat, in which case the caller must stop
// working with c: it may no longer be the constraint living at idx.
func tightenImpliedRHS(ctx *context.Context, idx int32, c *model.Linear) (changed, terminal bool) {
	sums := prefixSums(ctx, c)
	total := sums[len(sums)-1]
	rhs := toRHSDomain(c.Domain)
	newRHS := rhs.Intersect(total)
	if newRHS.IsEmpty() {
		if len(c.Enforced) == 0 {
			ctx.SetUnsat()
		} else {
			markConstraintFalse(ctx, idx, c.Enforced)
		}
		return true, true
	}
	if newRHS.Equal(rhs) {
		return false, false
	}
	c.Domain = fromRHSDomain(newRHS)
	return true, false
}

func tightenVariableDomains(ctx *context.Context, c *model.Linear) bool {
	if len(c.VarIndices) < 2 {
		return false
	}
	prefix := prefixSums(ctx, c)
	suffix := suffixSums(ctx, c)
	rhs := toRHSDomain(c.Domain)
	changed := false
	for i, v := range c.VarIndices {
		coeff := c.Coeffs[i]
		numerator := rhs.AddElementwise(prefix[i].Negate()).AddElementwise(suffix[i].Negate())
		target := numerator.DivisionByConstant(coeff)
		if ctx.IntersectDomain(v, target) {
			changed = true
		}
	}
	return changed
}

// extractAffine records x = coeff*y + offset in the general affine
// repository for exactly-two-term, singleton-RHS constraints, per spec
// §4.2 step 6, replacing this constraint with the defining linear
// AddAffineRelation emits on its own.
func extractAffine(ctx *context.Context, idx int32, c *model.Linear) bool {
	if len(c.VarIndices) != 2 {
		return false
	}
	rhs := toRHSDomain(c.Domain)
	if !rhs.IsFixed() {
		return false
	}
	k := rhs.FixedValue()
	a, b := c.VarIndices[0], c.VarIndices[1]
	ca, cb := c.Coeffs[0], c.Coeffs[1]
	if cb%ca != 0 || k%ca != 0 {
		return false
	}
	if err := ctx.AddAffineRelation(a, b, -(cb / ca), k/ca); err != nil {
		return false
	}
	ctx.ClearConstraint(idx)
	return true
}

// expandBooleanOnly implements spec §4.2 step 8 for an all-Boolean
// linear constraint: a size-independent probe for three shapes the
// worst-case margin already pins down -- every variable forced to one
// polarity (bool_and), at least one variable forced to a polarity
// (bool_or), or at most one variable able to reach a polarity
// (at_most_one) -- falling back to 2^n mask enumeration only when none
// of the three apply and the constraint is small enough to enumerate.
func expandBooleanOnly(ctx *context.Context, idx int32, c *model.Linear) bool {
	if len(c.VarIndices) == 0 {
		return false
	}
	for _, v := range c.VarIndices {
		if !ctx.DomainOf(v).IsIncludedIn(intervaldomain.Range(0, 1)) {
			return false
		}
	}

	minCoeff := int64(math.MaxInt64)
	var maxCoeff, minSum, maxSum int64
	for _, coeff := range c.Coeffs {
		abs := coeff
		if abs < 0 {
			abs = -abs
		}
		if coeff > 0 {
			maxSum += coeff
		} else {
			minSum += coeff
		}
		if abs < minCoeff {
			minCoeff = abs
		}
		if abs > maxCoeff {
			maxCoeff = abs
		}
	}

	rhs := toRHSDomain(c.Domain)
	domMin, domMax := rhs.Min(), rhs.Max()
	// tightenImpliedRHS already intersected c.Domain with the
	// achievable sum range earlier in rewriteLinear, so a literal
	// kint64min/kint64max sentinel never survives this far: a bound
	// exactly at the achievable extreme is this representation's
	// equivalent of "unbounded on that side".
	upperUnbounded := domMax == maxSum
	lowerUnbounded := domMin == minSum

	if minSum+minCoeff > domMax {
		lits := make([]model.VarRef, len(c.VarIndices))
		for i, v := range c.VarIndices {
			if c.Coeffs[i] > 0 {
				lits[i] = model.Negate(model.VarRef(v))
			} else {
				lits[i] = model.VarRef(v)
			}
		}
		ctx.AddWorkingConstraint(&model.BoolAnd{Literals: lits, Enforced: append([]model.VarRef{}, c.Enforced...)})
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("linear: negative reified and")
		return true
	}
	if maxSum-minCoeff < domMin {
		lits := make([]model.VarRef, len(c.VarIndices))
		for i, v := range c.VarIndices {
			if c.Coeffs[i] > 0 {
				lits[i] = model.VarRef(v)
			} else {
				lits[i] = model.Negate(model.VarRef(v))
			}
		}
		ctx.AddWorkingConstraint(&model.BoolAnd{Literals: lits, Enforced: append([]model.VarRef{}, c.Enforced...)})
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("linear: positive reified and")
		return true
	}
	if minSum+minCoeff >= domMin && upperUnbounded {
		lits := make([]model.VarRef, len(c.VarIndices))
		for i, v := range c.VarIndices {
			if c.Coeffs[i] > 0 {
				lits[i] = model.VarRef(v)
			} else {
				lits[i] = model.Negate(model.VarRef(v))
			}
		}
		ctx.AddWorkingConstraint(&model.BoolOr{Literals: lits, Enforced: append([]model.VarRef{}, c.Enforced...)})
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("linear: positive clause")
		return true
	}
	if maxSum-minCoeff <= domMax && lowerUnbounded {
		lits := make([]model.VarRef, len(c.VarIndices))
		for i, v := range c.VarIndices {
			if c.Coeffs[i] > 0 {
				lits[i] = model.Negate(model.VarRef(v))
			} else {
				lits[i] = model.VarRef(v)
			}
		}
		ctx.AddWorkingConstraint(&model.BoolOr{Literals: lits, Enforced: append([]model.VarRef{}, c.Enforced...)})
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("linear: negative clause")
		return true
	}
	if len(c.Enforced) == 0 &&
		minSum+maxCoeff <= domMax && minSum+2*minCoeff > domMax && lowerUnbounded {
		lits := make([]model.VarRef, len(c.VarIndices))
		for i, v := range c.VarIndices {
			if c.Coeffs[i] > 0 {
				lits[i] = model.VarRef(v)
			} else {
				lits[i] = model.Negate(model.VarRef(v))
			}
		}
		ctx.AddWorkingConstraint(&model.AtMostOne{Literals: lits})
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("linear: positive at most one")
		return true
	}
	if len(c.Enforced) == 0 &&
		maxSum-maxCoeff >= domMin && maxSum-2*minCoeff < domMin && upperUnbounded {
		lits := make([]model.VarRef, len(c.VarIndices))
		for i, v := range c.VarIndices {
			if c.Coeffs[i] > 0 {
				lits[i] = model.Negate(model.VarRef(v))
			} else {
				lits[i] = model.VarRef(v)
			}
		}
		ctx.AddWorkingConstraint(&model.AtMostOne{Literals: lits})
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("linear: negative at most one")
		return true
	}

	if len(c.VarIndices) > 3 {
		return false
	}
	n := len(c.VarIndices)
	for mask := 0; mask < (1 << n); mask++ {
		var sum int64
		for i := range c.VarIndices {
			if mask&(1<<i) != 0 {
				sum += c.Coeffs[i]
			}
		}
		if rhs.Contains(sum) {
			continue
		}
		lits := make([]model.VarRef, n)
		for i, v := range c.VarIndices {
			if mask&(1<<i) != 0 {
				lits[i] = model.Negate(model.VarRef(v))
			} else {
				lits[i] = model.VarRef(v)
			}
		}
		ctx.AddWorkingConstraint(&model.BoolOr{Literals: lits, Enforced: append([]model.VarRef{}, c.Enforced...)})
	}
	ctx.ClearConstraint(idx)
	ctx.IncrementStat("linear: small Boolean expression")
	return true
}
