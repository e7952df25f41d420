package fixpoint

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// ExpandObjective implements spec §4.4. pkg/model generalizes the
// objective to an arbitrary linear expression rather than spec's
// single-variable-plus-offset form (an earlier encoding step the spec
// assumes already ran), so this walks every current objective term
// instead of just one; the substitution rule itself — pick a term
// appearing with |coeff|=1 in some still-unused defining equality,
// substitute using the longest such equality, fold the defining
// equation into the mapping model once the substituted variable drops
// out of use — is unchanged.
func ExpandObjective(ctx *context.Context) {
	obj := ctx.Working.Objective
	if obj == nil {
		return
	}

	usedEquality := make(map[int32]struct{})
	for {
		progressed := false
		for i := 0; i < len(obj.Vars); i++ {
			v := obj.Vars[i]
			eqIdx, eq := longestDefiningEquality(ctx, v, usedEquality)
			if eq == nil {
				continue
			}
			substituteObjectiveTerm(ctx, obj, i, eqIdx, eq)
			usedEquality[eqIdx] = struct{}{}
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}

	mergeObjectiveTerms(obj)
}

// longestDefiningEquality finds the not-yet-used Linear constraint
// that (a) is an equality (single-point RHS), (b) has v at coefficient
// +-1, and (c) has the most terms among the candidates — "longest" per
// spec §4.4, since a longer substitution folds more structure out of
// the model in one step. Affine-relation sidecar constraints
// (Defining == true) are eligible candidates like any other equality:
// substituting through one is exactly how a representative variable
// displaces v in the objective.
func longestDefiningEquality(ctx *context.Context, v int32, used map[int32]struct{}) (int32, *model.Linear) {
	var best *model.Linear
	var bestIdx int32
	for idx, ct := range ctx.Working.Constraints {
		if _, skip := used[int32(idx)]; skip {
			continue
		}
		lin, ok := ct.(*model.Linear)
		if !ok || len(lin.Enforced) != 0 || len(lin.Domain) != 1 || lin.Domain[0].Min != lin.Domain[0].Max {
			continue
		}
		pos := -1
		for i, vv := range lin.VarIndices {
			if vv == v {
				pos = i
				break
			}
		}
		if pos < 0 || (lin.Coeffs[pos] != 1 && lin.Coeffs[pos] != -1) {
			continue
		}
		if best == nil || len(lin.VarIndices) > len(best.VarIndices) {
			best = lin
			bestIdx = int32(idx)
		}
	}
	return bestIdx, best
}

// substituteObjectiveTerm replaces obj's i-th term (coefficient c0 on
// variable v) using eq (coeff_v*v + sum(other terms) == rhs), so
// v = (rhs - sum(other terms)) / coeff_v, and folds that expansion
// into the objective: subtract c0/coeff_v times the equation from the
// objective, updating the offset by the rhs contribution.
func substituteObjectiveTerm(ctx *context.Context, obj *model.Objective, i int, eqIdx int32, eq *model.Linear) {
	v := obj.Vars[i]
	c0 := obj.Coeffs[i]
	var coeffV int64
	pos := -1
	for j, vv := range eq.VarIndices {
		if vv == v {
			pos = j
			coeffV = eq.Coeffs[j]
			break
		}
	}
	if pos < 0 {
		return
	}
	scale := c0
	if coeffV == -1 {
		scale = -c0
	}

	obj.Vars = append(obj.Vars[:i], obj.Vars[i+1:]...)
	obj.Coeffs = append(obj.Coeffs[:i], obj.Coeffs[i+1:]...)
	obj.Offset += scale * eq.Domain[0].Min

	for j, vv := range eq.VarIndices {
		if j == pos {
			continue
		}
		obj.Vars = append(obj.Vars, vv)
		obj.Coeffs = append(obj.Coeffs, -scale*eq.Coeffs[j])
	}

	// eq itself still holds one usage edge on v until cleared below, so
	// "no other constraint" is NumConstraintsUsing(v) <= 1.
	if ctx.UsageGraph().NumConstraintsUsing(v) <= 1 && ctx.DomainOf(v).Min() >= eq.Domain[0].Min && ctx.DomainOf(v).Max() <= eq.Domain[0].Max {
		ctx.AddMappingConstraint(eq)
		ctx.ClearConstraint(eqIdx)
	}
}

// mergeObjectiveTerms combines duplicate variable terms the repeated
// substitution above may have produced, dropping any that cancel to
// zero entirely.
func mergeObjectiveTerms(obj *model.Objective) {
	sum := make(map[int32]int64)
	order := make([]int32, 0, len(obj.Vars))
	for i, v := range obj.Vars {
		if _, ok := sum[v]; !ok {
			order = append(order, v)
		}
		sum[v] += obj.Coeffs[i]
	}
	obj.Vars = obj.Vars[:0]
	obj.Coeffs = obj.Coeffs[:0]
	for _, v := range order {
		if sum[v] == 0 {
			continue
		}
		obj.Vars = append(obj.Vars, v)
		obj.Coeffs = append(obj.Coeffs, sum[v])
	}
}
