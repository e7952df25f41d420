package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// rewriteBoolOr implements spec §4.2's bool_or rewriter. Enforcement
// literals are pulled into the clause negated (enforcement ∧ true =>
// some literal true is the same fact as ¬enforcement ∨ literals), so
// every later step only has to reason about a plain literal list.
func rewriteBoolOr(ctx *context.Context, idx int32, c *model.BoolOr) (changed, rerun bool) {
	if len(c.Enforced) > 0 {
		for _, e := range c.Enforced {
			c.Literals = append(c.Literals, model.Negate(e))
		}
		c.Enforced = nil
		changed = true
	}

	seen := make(map[model.VarRef]bool, len(c.Literals))
	kept := c.Literals[:0:0]
	for _, lit := range c.Literals {
		if ctx.LiteralIsTrue(lit) {
			ctx.ClearConstraint(idx)
			ctx.IncrementStat("bool_or: satisfied by fixed-true literal")
			return true, false
		}
		if ctx.LiteralIsFalse(lit) {
			changed = true
			continue
		}
		if seen[model.Negate(lit)] {
			ctx.ClearConstraint(idx)
			ctx.IncrementStat("bool_or: tautology (literal and negation both present)")
			return true, false
		}
		if seen[lit] {
			changed = true
			continue
		}
		seen[lit] = true
		kept = append(kept, lit)
	}
	c.Literals = kept

	if len(c.Literals) == 0 {
		ctx.SetUnsat()
		ctx.IncrementStat("bool_or: empty clause (unsat)")
		return true, false
	}

	for _, lit := range c.Literals {
		if ctx.UsageGraph().NumConstraintsUsing(lit.Var()) == 1 {
			ctx.SetLiteralTrue(lit)
			ctx.ClearConstraint(idx)
			ctx.IncrementStat("bool_or: satisfied by removable singleton literal")
			return true, false
		}
	}

	if len(c.Literals) == 1 {
		ctx.SetLiteralTrue(c.Literals[0])
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("bool_or: unit propagation")
		return true, false
	}

	if len(c.Literals) == 2 {
		a, b := c.Literals[0], c.Literals[1]
		ctx.Working.Constraints[idx] = &model.BoolAnd{Literals: []model.VarRef{b}, Enforced: []model.VarRef{model.Negate(a)}}
		ctx.IncrementStat("bool_or: binary clause rewritten as implication")
		return true, true
	}

	return changed, false
}

// rewriteBoolAnd implements spec §4.2's bool_and rewriter: with no
// enforcement literals every literal is unconditionally true and gets
// propagated directly; with enforcement, a literal forced false means
// the enforcement itself can never all hold, so the constraint is
// rewritten through markConstraintFalse into a bool_or over the
// negated enforcement literals.
func rewriteBoolAnd(ctx *context.Context, idx int32, c *model.BoolAnd) (changed, rerun bool) {
	kept := c.Literals[:0:0]
	for _, lit := range c.Literals {
		if ctx.LiteralIsTrue(lit) {
			changed = true
			continue
		}
		if ctx.LiteralIsFalse(lit) {
			return markConstraintFalse(ctx, idx, c.Enforced)
		}
		kept = append(kept, lit)
	}
	c.Literals = kept

	if len(c.Enforced) == 0 {
		for _, lit := range c.Literals {
			ctx.SetLiteralTrue(lit)
		}
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("bool_and: unconditional, literals propagated")
		return true, false
	}

	if len(c.Literals) == 0 {
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("bool_and: vacuously satisfied")
		return true, false
	}

	return changed, false
}

// rewriteAtMostOne implements spec §4.2's at_most_one rewriter: once
// any literal is forced true, every remaining literal must be forced
// false; once at most one literal remains, the constraint is
// unconditionally satisfied.
func rewriteAtMostOne(ctx *context.Context, idx int32, c *model.AtMostOne) (changed, rerun bool) {
	kept := c.Literals[:0:0]
	for _, lit := range c.Literals {
		if ctx.LiteralIsFalse(lit) {
			changed = true
			continue
		}
		kept = append(kept, lit)
	}
	c.Literals = kept

	for _, lit := range c.Literals {
		if ctx.LiteralIsTrue(lit) {
			for _, other := range c.Literals {
				if other != lit {
					ctx.SetLiteralFalse(other)
				}
			}
			ctx.ClearConstraint(idx)
			ctx.IncrementStat("at_most_one: resolved by fixed-true literal")
			return true, false
		}
	}

	if len(c.Literals) <= 1 {
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("at_most_one: trivially satisfied")
		return true, false
	}

	return changed, false
}
