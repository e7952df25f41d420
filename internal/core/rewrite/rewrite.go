package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// maxRerunDepth bounds the re-entrant loop a rewriter can trigger by
// replacing its constraint with another kind (e.g. a two-literal
// bool_or becoming a bool_and implication, or int_max collapsing to a
// linear). It exists purely
// as a termination backstop; in practice two or three reruns cover
// every documented case.
const maxRerunDepth = 8

// Rewrite applies the two generic pre-passes and then the kind-
// specific rewriter to the constraint at idx, looping while a
// per-kind rewriter requests a rerun (it replaced the constraint with
// a different shape that itself needs the generic passes applied).
// Returns true iff the variable-usage graph may have changed --
// over-approximation is safe, matching the contract every rewriter in
// spec §4.2 shares.
func Rewrite(ctx *context.Context, idx int32) bool {
	changed := false
	for depth := 0; depth < maxRerunDepth; depth++ {
		if ctx.IsUnsat() {
			return changed
		}
		ct := ctx.Working.Constraints[idx]
		if ct == nil {
			return changed
		}

		if substituteEquivalencePass(ctx, ct) {
			changed = true
			ctx.UpdateConstraintVariableUsage(idx)
		}

		ct = ctx.Working.Constraints[idx]
		if ec, ok := ct.(model.Enforceable); ok {
			if simplifyEnforcement(ctx, idx, ec) {
				ctx.ClearConstraint(idx)
				ctx.IncrementStat("generic: enforcement simplified away")
				return true
			}
		}

		ct = ctx.Working.Constraints[idx]
		kindChanged, rerun := dispatchKind(ctx, idx, ct)
		if kindChanged {
			changed = true
			ctx.UpdateConstraintVariableUsage(idx)
		}
		if !rerun {
			return changed
		}
	}
	return changed
}

// substituteEquivalencePass rewrites every variable/literal reference
// of ct to its equivalence-class representative, skipping defining
// linear constraints entirely so the relation they encode is never
// unraveled (spec §4.1's affine_constraints marker set, here the
// Linear.Defining sidecar field).
func substituteEquivalencePass(ctx *context.Context, ct model.Constraint) bool {
	if lin, ok := ct.(*model.Linear); ok && lin.Defining {
		return false
	}
	changed := false
	switch c := ct.(type) {
	case *model.BoolOr:
		before := cloneRefs(c.Literals)
		c.Literals = substituteLiterals(ctx, c.Literals)
		c.Enforced = substituteLiterals(ctx, c.Enforced)
		changed = !refsEqual(before, c.Literals)
	case *model.BoolAnd:
		before := cloneRefs(c.Literals)
		c.Literals = substituteLiterals(ctx, c.Literals)
		c.Enforced = substituteLiterals(ctx, c.Enforced)
		changed = !refsEqual(before, c.Literals)
	case *model.AtMostOne:
		before := cloneRefs(c.Literals)
		c.Literals = substituteLiterals(ctx, c.Literals)
		changed = !refsEqual(before, c.Literals)
	case *model.Linear:
		for i, v := range c.VarIndices {
			nv, nc, offsetContribution := substituteLinearTerm(ctx, v, c.Coeffs[i])
			if nv != v {
				changed = true
			}
			c.VarIndices[i] = nv
			c.Coeffs[i] = nc
			if offsetContribution != 0 {
				c.Domain = shiftIntervals(c.Domain, -offsetContribution)
			}
		}
		before := cloneRefs(c.Enforced)
		c.Enforced = substituteLiterals(ctx, c.Enforced)
		changed = changed || !refsEqual(before, c.Enforced)
	case *model.IntMax:
		changed = substituteExprs(ctx, c.Exprs)
		before := cloneRefs(c.Enforced)
		c.Enforced = substituteLiterals(ctx, c.Enforced)
		changed = changed || !refsEqual(before, c.Enforced)
	case *model.IntMin:
		changed = substituteExprs(ctx, c.Exprs)
		before := cloneRefs(c.Enforced)
		c.Enforced = substituteLiterals(ctx, c.Enforced)
		changed = changed || !refsEqual(before, c.Enforced)
	case *model.IntProd:
		for i, v := range c.Factors {
			nv := substituteIdentity(ctx, v)
			if nv != v {
				changed = true
			}
			c.Factors[i] = nv
		}
	case *model.IntDiv:
		nn := substituteIdentity(ctx, c.Num)
		nd := substituteIdentity(ctx, c.Denom)
		changed = nn != c.Num || nd != c.Denom
		c.Num, c.Denom = nn, nd
	case *model.Element:
		for i, v := range c.Options {
			nv := substituteIdentity(ctx, v)
			if nv != v {
				changed = true
			}
			c.Options[i] = nv
		}
	case *model.AllDiff:
		for i, v := range c.VarIndices {
			nv := substituteIdentity(ctx, v)
			if nv != v {
				changed = true
			}
			c.VarIndices[i] = nv
		}
	}
	return changed
}

func substituteExprs(ctx *context.Context, exprs []model.LinearExpr) bool {
	changed := false
	for i := range exprs {
		e := &exprs[i]
		for j, v := range e.Vars {
			nv, nc, offsetContribution := substituteLinearTerm(ctx, v, e.Coeffs[j])
			if nv != v {
				changed = true
			}
			e.Vars[j] = nv
			e.Coeffs[j] = nc
			e.Offset -= offsetContribution
		}
	}
	return changed
}

func cloneRefs(refs []model.VarRef) []model.VarRef {
	return append([]model.VarRef{}, refs...)
}

func refsEqual(a, b []model.VarRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func shiftIntervals(ivs []model.Interval64, delta int64) []model.Interval64 {
	out := make([]model.Interval64, len(ivs))
	for i, iv := range ivs {
		out[i] = model.Interval64{Min: iv.Min + delta, Max: iv.Max + delta}
	}
	return out
}

// dispatchKind runs the kind-specific rewriter for ct, returning
// whether the usage graph may have changed and whether the rewriter
// wants Rewrite's generic passes re-run over its (possibly new-kind)
// replacement.
func dispatchKind(ctx *context.Context, idx int32, ct model.Constraint) (changed, rerun bool) {
	switch c := ct.(type) {
	case *model.BoolOr:
		return rewriteBoolOr(ctx, idx, c)
	case *model.BoolAnd:
		return rewriteBoolAnd(ctx, idx, c)
	case *model.AtMostOne:
		return rewriteAtMostOne(ctx, idx, c)
	case *model.IntMax:
		return rewriteIntMax(ctx, idx, c)
	case *model.IntMin:
		return rewriteIntMin(ctx, idx, c)
	case *model.IntProd:
		return rewriteIntProd(ctx, idx, c)
	case *model.IntDiv:
		return rewriteIntDiv(ctx, idx, c)
	case *model.Linear:
		return rewriteLinear(ctx, idx, c)
	case *model.IntervalConstraint:
		return rewriteInterval(ctx, idx, c)
	case *model.Element:
		return rewriteElement(ctx, idx, c)
	case *model.Table:
		return rewriteTable(ctx, idx, c)
	case *model.NoOverlap:
		return rewriteNoOverlap(ctx, idx, c)
	case *model.Cumulative:
		return rewriteCumulative(ctx, idx, c)
	case *model.Circuit:
		return rewriteCircuit(ctx, idx, c)
	case *model.AllDiff:
		return rewriteAllDiff(ctx, idx, c)
	default:
		return false, false
	}
}

// markConstraintFalse implements spec §4.2's "mark-constraint-false":
// with enforcement literals, rewrite the constraint into a Boolean-or
// over their negations; without any, set the global unsat flag.
func markConstraintFalse(ctx *context.Context, idx int32, enforced []model.VarRef) (changed, rerun bool) {
	if len(enforced) == 0 {
		ctx.SetUnsat()
		ctx.IncrementStat("generic: mark-false with no enforcement (unsat)")
		return true, false
	}
	neg := make([]model.VarRef, len(enforced))
	for i, e := range enforced {
		neg[i] = model.Negate(e)
	}
	ctx.Working.Constraints[idx] = &model.BoolOr{Literals: neg}
	ctx.IncrementStat("generic: mark-false rewritten as bool_or")
	return true, true
}
