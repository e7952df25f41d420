// Package rewrite implements the constraint-local simplifiers of
// spec §4.2: one rewrite function per constraint kind, dispatched by
// Go type switch over the model.Constraint sum type (never a
// discriminator field, per spec §9's Design Notes), plus the two
// generic pre-passes shared by every kind.
package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// substituteLiteral rewrites ref to its equivalence-class
// representative, preserving sign. The equivalence repository only
// ever records |coeff|=1, offset in {0,1} relations, so this
// substitution is always exact — there is no "deferred" case for
// literals the way there can be for scaled integer references.
func substituteLiteral(ctx *context.Context, ref model.VarRef) model.VarRef {
	rel := ctx.EquivalenceRepository().Find(ref.Var())
	rep := model.VarRef(rel.Representative)
	if ref.IsNegated() {
		rep = model.Negate(rep)
	}
	if rel.Coeff == -1 {
		rep = model.Negate(rep)
	}
	// rel.Offset == 1 flips the sense of "true" between ref and the
	// representative (a = 1 - b), which is exactly the negation
	// already applied for Coeff == -1; Offset == 0 with Coeff == 1
	// needs no further adjustment.
	return rep
}

func substituteLiterals(ctx *context.Context, refs []model.VarRef) []model.VarRef {
	if len(refs) == 0 {
		return refs
	}
	out := make([]model.VarRef, len(refs))
	for i, r := range refs {
		out[i] = substituteLiteral(ctx, r)
	}
	return out
}

// substituteIdentity rewrites a bare variable reference (one with no
// attached coefficient in its constraint) to its affine representative
// only when that would be lossless (coeff=1, offset=0); otherwise the
// reference is left alone, deferred until propagation fixes the
// related variable, exactly as spec §4.2 prescribes for references
// whose containing constraint cannot absorb a scale/offset.
func substituteIdentity(ctx *context.Context, v int32) int32 {
	rel := ctx.AffineRepository().Find(v)
	if rel.Coeff == 1 && rel.Offset == 0 {
		return rel.Representative
	}
	return v
}

// substituteLinearTerm rewrites one (variable, coefficient) pair of a
// linear-shaped constraint to its affine representative, folding the
// relation's scale into the coefficient and its offset into a
// returned constant contribution the caller subtracts from its
// right-hand side.
func substituteLinearTerm(ctx *context.Context, v int32, coeff int64) (newV int32, newCoeff, offsetContribution int64) {
	rel := ctx.AffineRepository().Find(v)
	return rel.Representative, coeff * rel.Coeff, coeff * rel.Offset
}

// simplifyEnforcement implements the enforcement-literal
// simplification pre-pass: fixed-true literals are dropped, a single
// fixed-false literal (or one that appears in no other constraint,
// which is then forced false) trivially satisfies the constraint.
// Returns true if the constraint was satisfied and should be cleared.
func simplifyEnforcement(ctx *context.Context, idx int32, ec model.Enforceable) bool {
	lits := ec.Enforcement()
	if len(lits) == 0 {
		return false
	}
	kept := lits[:0:0]
	for _, lit := range lits {
		switch {
		case ctx.LiteralIsTrue(lit):
			continue
		case ctx.LiteralIsFalse(lit):
			return true
		case ctx.UsageGraph().NumConstraintsUsing(lit.Var()) == 1:
			ctx.SetLiteralFalse(lit)
			return true
		default:
			kept = append(kept, lit)
		}
	}
	ec.SetEnforcement(kept)
	return false
}
