package fixpoint

import (
	"sort"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// Result is what Finalize produces once Run has driven the working
// model to quiescence: the compacted model (ctx.Working, mutated in
// place) plus the postsolve mapping needed to translate a solution
// found against it back to the model's original variable numbering.
type Result struct {
	// PostsolveMapping[i] is the original variable index of the i-th
	// surviving variable in the compacted model, spec §4.3 step 10's
	// "list of surviving variable indices in the new-to-old direction".
	PostsolveMapping []int32
}

// Finalize runs spec §4.3's ten-step finalization pipeline once Run
// has reached quiescence. Steps 2 (pure-SAT presolver integration), 3
// (probing) and 6 (no_overlap clique merge) are no-ops here: Finalize
// does not call internal/core/satlayer or internal/core/trail, and
// merges no no_overlap constraints; steps 1, 4, 5 and 7-10 run for
// real.
func Finalize(ctx *context.Context) *Result {
	refilterIntervalReferences(ctx)
	integrateBooleanPresolve(ctx)
	probeLevelZero(ctx)
	removeUnusedEquivalentVariables(ctx)
	extractAtMostOnes(ctx)
	mergeNoOverlapCliques(ctx)
	ExpandObjective(ctx)
	constraintRemap := compactConstraints(ctx)
	remapIntervalReferenceHolders(ctx, constraintRemap)
	varRemap, survivors := compactVariables(ctx)
	rewriteConstraintVars(ctx, varRemap)
	rewriteObjectiveVars(ctx, varRemap)
	rewriteSearchHints(ctx, varRemap)
	rewriteSolutionHint(ctx, varRemap)
	ctx.Flush()
	return &Result{PostsolveMapping: survivors}
}

// step 1: refilterIntervalReferences drops dangling interval
// references from no_overlap/cumulative constraints whose referenced
// IntervalConstraint slot was cleared by an earlier rewrite.
func refilterIntervalReferences(ctx *context.Context) {
	for _, ct := range ctx.Working.Constraints {
		switch c := ct.(type) {
		case *model.NoOverlap:
			c.Intervals = filterLive(ctx, c.Intervals)
		case *model.Cumulative:
			live := make([]int32, 0, len(c.Intervals))
			demands := make([]int32, 0, len(c.Demands))
			for i, iv := range c.Intervals {
				if ctx.Working.Constraints[iv] != nil {
					live = append(live, iv)
					demands = append(demands, c.Demands[i])
				}
			}
			c.Intervals, c.Demands = live, demands
		}
	}
}

func filterLive(ctx *context.Context, idxs []int32) []int32 {
	out := idxs[:0:0]
	for _, i := range idxs {
		if ctx.Working.Constraints[i] != nil {
			out = append(out, i)
		}
	}
	return out
}

// step 2: integrateBooleanPresolve is a no-op. No bool_or/bool_and
// clause is handed to a pure SAT presolver, and no unit or equivalence
// fact is folded back into the working model.
func integrateBooleanPresolve(ctx *context.Context) {}

// step 3: probeLevelZero is a no-op. No Boolean variable is probed in
// either polarity, so no level-zero implication is fixed here.
func probeLevelZero(ctx *context.Context) {}

// step 4: removeUnusedEquivalentVariables moves an affine-defining
// Linear constraint to the mapping model once the variable it
// eliminates appears nowhere else, re-emitting it into the working
// model otherwise (it already is there, so "re-emit" is simply "leave
// alone").
func removeUnusedEquivalentVariables(ctx *context.Context) {
	for idx, ct := range ctx.Working.Constraints {
		lin, ok := ct.(*model.Linear)
		if !ok || !lin.Defining || len(lin.VarIndices) != 2 {
			continue
		}
		for _, v := range lin.VarIndices {
			if ctx.AffineRepository().Root(v) == v {
				continue
			}
			if ctx.UsageGraph().NumConstraintsUsing(v) == 1 {
				ctx.AddMappingConstraint(lin)
				ctx.ClearConstraint(int32(idx))
				break
			}
		}
	}
}

// step 5: extractAtMostOnes implements spec §4.2 rule 9's redundant
// at-most-one extraction: for every non-enforced Linear constraint,
// probe each Boolean {0,1} variable against the constraint's
// worst-case margin on both the upper and lower bound, and whenever
// two or more variables share a margin tight enough that both could
// never sit at their "expensive" polarity together, emit an
// additional AtMostOne over them. This is purely additive -- the
// original Linear constraint is left in place, exactly as
// cp_model_presolve.cc's ExtractAtMostOneFromLinear does it, since the
// extracted relation is a redundant consequence, not a replacement.
func extractAtMostOnes(ctx *context.Context) {
	for _, ct := range ctx.Working.Constraints {
		lin, ok := ct.(*model.Linear)
		if !ok || len(lin.Enforced) != 0 {
			continue
		}
		extractAtMostOneFromLinear(ctx, lin)
	}
}

// extractAtMostOneFromLinear runs the two-sided margin screen: on the
// max-side pass, a Boolean variable whose coefficient-favored polarity
// would already push the sum within double its own coefficient of the
// domain's upper bound cannot share that polarity with another such
// variable without blowing the bound, so at most one of them can take
// it. The min-side pass mirrors this against the domain's lower bound.
func extractAtMostOneFromLinear(ctx *context.Context, lin *model.Linear) {
	if len(lin.VarIndices) < 2 || len(lin.Domain) == 0 {
		return
	}

	var minSum, maxSum int64
	for i, v := range lin.VarIndices {
		coeff := lin.Coeffs[i]
		a, b := coeff*ctx.MinOf(v), coeff*ctx.MaxOf(v)
		if a > b {
			a, b = b, a
		}
		minSum += a
		maxSum += b
	}
	domMin, domMax := domainMin(lin.Domain), domainMax(lin.Domain)

	maxSide := atMostOneCandidates(ctx, lin, func(coeff int64) (negate, ok bool) {
		if minSum+2*abs64(coeff) <= domMax {
			return false, false
		}
		return coeff < 0, true
	})
	if len(maxSide) >= 2 {
		ctx.AddWorkingConstraint(&model.AtMostOne{Literals: maxSide})
		ctx.IncrementStat("linear: extracted at most one (max)")
	}

	minSide := atMostOneCandidates(ctx, lin, func(coeff int64) (negate, ok bool) {
		if maxSum-2*abs64(coeff) >= domMin {
			return false, false
		}
		return coeff > 0, true
	})
	if len(minSide) >= 2 {
		ctx.AddWorkingConstraint(&model.AtMostOne{Literals: minSide})
		ctx.IncrementStat("linear: extracted at most one (min)")
	}
}

// atMostOneCandidates scans lin's Boolean {0,1} variables, asking pick
// whether each survives the caller's margin check and, if so, which
// polarity belongs in the extracted at-most-one.
func atMostOneCandidates(ctx *context.Context, lin *model.Linear, pick func(coeff int64) (negate, ok bool)) []model.VarRef {
	var out []model.VarRef
	for i, v := range lin.VarIndices {
		if !ctx.DomainOf(v).IsIncludedIn(intervaldomain.Range(0, 1)) {
			continue
		}
		negate, ok := pick(lin.Coeffs[i])
		if !ok {
			continue
		}
		lit := model.VarRef(v)
		if negate {
			lit = model.Negate(lit)
		}
		out = append(out, lit)
	}
	return out
}

func domainMin(ivs []model.Interval64) int64 {
	m := ivs[0].Min
	for _, iv := range ivs[1:] {
		if iv.Min < m {
			m = iv.Min
		}
	}
	return m
}

func domainMax(ivs []model.Interval64) int64 {
	m := ivs[0].Max
	for _, iv := range ivs[1:] {
		if iv.Max > m {
			m = iv.Max
		}
	}
	return m
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// step 6: mergeNoOverlapCliques is a no-op. No pairwise-overlap graph
// over the intervals is built, so no_overlap constraints whose
// interval sets form a clique stay separate constraints; see also
// internal/core/rewrite's no_overlap rewriter doc comment.
func mergeNoOverlapCliques(ctx *context.Context) {}

// step 8: compactConstraints deletes cleared constraint slots and
// returns the old-index -> new-index remap (entries for removed slots
// are absent from the map).
func compactConstraints(ctx *context.Context) map[int32]int32 {
	old := ctx.Working.Constraints
	remap := make(map[int32]int32, len(old))
	kept := make([]model.Constraint, 0, len(old))
	for i, ct := range old {
		if ct == nil {
			continue
		}
		remap[int32(i)] = int32(len(kept))
		kept = append(kept, ct)
	}
	ctx.Working.Constraints = kept
	return remap
}

// remapIntervalReferenceHolders fixes up no_overlap/cumulative
// constraint-index references after compactConstraints has renumbered
// constraint slots.
func remapIntervalReferenceHolders(ctx *context.Context, remap map[int32]int32) {
	for _, ct := range ctx.Working.Constraints {
		switch c := ct.(type) {
		case *model.NoOverlap:
			c.Intervals = remapAll(c.Intervals, remap)
		case *model.Cumulative:
			c.Intervals = remapAll(c.Intervals, remap)
		}
	}
}

func remapAll(idxs []int32, remap map[int32]int32) []int32 {
	out := make([]int32, 0, len(idxs))
	for _, i := range idxs {
		if n, ok := remap[i]; ok {
			out = append(out, n)
		}
	}
	return out
}

// compactVariables computes the dense new numbering for every
// variable still referenced by the compacted working model, the
// objective, a search hint, or the solution hint, in ascending
// original-index order, and rewrites ctx.Working.Variables to match.
// A variable already fixed need not survive the search (its value is
// recorded in the variable's own singleton domain and carried through
// Flush), but it is still kept if anything still names it directly --
// dropping a referenced index out from under a constraint would leave
// a dangling reference, so only a variable named by nothing at all is
// dropped here.
func compactVariables(ctx *context.Context) (map[int32]int32, []int32) {
	referenced := make(map[int32]struct{})
	for _, ct := range ctx.Working.Constraints {
		if ct == nil {
			continue
		}
		for _, v := range ct.Vars() {
			referenced[v] = struct{}{}
		}
	}
	for _, v := range ctx.Working.Objective.VarIndices() {
		referenced[v] = struct{}{}
	}
	for _, h := range ctx.Working.SearchHints {
		for _, v := range h.Vars {
			referenced[v] = struct{}{}
		}
	}
	if ctx.Working.SolutionHint != nil {
		for _, v := range ctx.Working.SolutionHint.Vars {
			referenced[v] = struct{}{}
		}
	}

	survivors := make([]int32, 0, len(referenced))
	for v := range referenced {
		survivors = append(survivors, v)
	}
	sort.Slice(survivors, func(i, j int) bool { return survivors[i] < survivors[j] })

	remap := make(map[int32]int32, len(survivors))
	vars := make([]model.Variable, 0, len(survivors))
	for newIdx, old := range survivors {
		remap[old] = int32(newIdx)
		vars = append(vars, ctx.Working.Variables[old])
	}
	ctx.Working.Variables = vars
	return remap, survivors
}

func remapRef(ref model.VarRef, remap map[int32]int32) model.VarRef {
	n, ok := remap[ref.Var()]
	if !ok {
		return ref
	}
	if ref.IsNegated() {
		return model.Negate(model.VarRef(n))
	}
	return model.VarRef(n)
}

func remapVar(v int32, remap map[int32]int32) int32 {
	if n, ok := remap[v]; ok {
		return n
	}
	return v
}

func remapRefs(refs []model.VarRef, remap map[int32]int32) []model.VarRef {
	out := make([]model.VarRef, len(refs))
	for i, r := range refs {
		out[i] = remapRef(r, remap)
	}
	return out
}

func remapVars(vs []int32, remap map[int32]int32) []int32 {
	out := make([]int32, len(vs))
	for i, v := range vs {
		out[i] = remapVar(v, remap)
	}
	return out
}

func remapExpr(e model.LinearExpr, remap map[int32]int32) model.LinearExpr {
	e.Vars = remapVars(e.Vars, remap)
	return e
}

// rewriteConstraintVars applies varRemap to every remaining
// constraint's variable references (spec §4.3 step 10's "apply the
// inverse as a reference rewrite... across all constraints"). Node
// identifiers on Circuit arcs are left untouched: they name abstract
// graph nodes, not model variables.
func rewriteConstraintVars(ctx *context.Context, remap map[int32]int32) {
	for _, ct := range ctx.Working.Constraints {
		switch c := ct.(type) {
		case *model.BoolOr:
			c.Literals = remapRefs(c.Literals, remap)
			c.Enforced = remapRefs(c.Enforced, remap)
		case *model.BoolAnd:
			c.Literals = remapRefs(c.Literals, remap)
			c.Enforced = remapRefs(c.Enforced, remap)
		case *model.AtMostOne:
			c.Literals = remapRefs(c.Literals, remap)
		case *model.IntMax:
			c.Target = remapVar(c.Target, remap)
			for i := range c.Exprs {
				c.Exprs[i] = remapExpr(c.Exprs[i], remap)
			}
			c.Enforced = remapRefs(c.Enforced, remap)
		case *model.IntMin:
			c.Target = remapVar(c.Target, remap)
			for i := range c.Exprs {
				c.Exprs[i] = remapExpr(c.Exprs[i], remap)
			}
			c.Enforced = remapRefs(c.Enforced, remap)
		case *model.IntProd:
			c.Target = remapVar(c.Target, remap)
			c.Factors = remapVars(c.Factors, remap)
		case *model.IntDiv:
			c.Target = remapVar(c.Target, remap)
			c.Num = remapVar(c.Num, remap)
			c.Denom = remapVar(c.Denom, remap)
		case *model.Linear:
			c.VarIndices = remapVars(c.VarIndices, remap)
			c.Enforced = remapRefs(c.Enforced, remap)
		case *model.IntervalConstraint:
			c.Start = remapVar(c.Start, remap)
			c.Size = remapVar(c.Size, remap)
			c.End = remapVar(c.End, remap)
		case *model.Element:
			c.Index = remapVar(c.Index, remap)
			c.Target = remapVar(c.Target, remap)
			c.Options = remapVars(c.Options, remap)
		case *model.Table:
			c.Cols = remapVars(c.Cols, remap)
		case *model.Cumulative:
			c.Demands = remapVars(c.Demands, remap)
		case *model.Circuit:
			for i := range c.Arcs {
				c.Arcs[i].Literal = remapRef(c.Arcs[i].Literal, remap)
			}
		case *model.AllDiff:
			c.VarIndices = remapVars(c.VarIndices, remap)
		}
	}
}

func rewriteObjectiveVars(ctx *context.Context, remap map[int32]int32) {
	if ctx.Working.Objective == nil {
		return
	}
	ctx.Working.Objective.Vars = remapVars(ctx.Working.Objective.Vars, remap)
}

// step 9: rewriteSearchHints drops fixed variables, folds a
// substituted variable's affine transform into its preferred value,
// and deduplicates by representative.
func rewriteSearchHints(ctx *context.Context, remap map[int32]int32) {
	for hi := range ctx.Working.SearchHints {
		h := &ctx.Working.SearchHints[hi]
		seen := make(map[int32]struct{}, len(h.Vars))
		vars := h.Vars[:0:0]
		vals := h.PreferredVals[:0:0]
		for i, v := range h.Vars {
			if ctx.IsFixed(v) {
				continue
			}
			rel := ctx.AffineRepository().Find(v)
			root := rel.Representative
			if _, dup := seen[root]; dup {
				continue
			}
			seen[root] = struct{}{}
			p := h.PreferredVals[i]
			if rel.Coeff != 0 {
				p = (p - rel.Offset) / rel.Coeff
			}
			vars = append(vars, remapVar(root, remap))
			vals = append(vals, p)
		}
		h.Vars, h.PreferredVals = vars, vals
	}
}

// step 10 (partial): rewriteSolutionHint applies the same
// fixed-drop / representative-fold / renumber treatment to the
// solution hint spec §4.3 step 10 names alongside search strategies.
func rewriteSolutionHint(ctx *context.Context, remap map[int32]int32) {
	h := ctx.Working.SolutionHint
	if h == nil {
		return
	}
	seen := make(map[int32]struct{}, len(h.Vars))
	vars := h.Vars[:0:0]
	vals := h.Vals[:0:0]
	for i, v := range h.Vars {
		if ctx.IsFixed(v) {
			continue
		}
		rel := ctx.AffineRepository().Find(v)
		root := rel.Representative
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		p := h.Vals[i]
		if rel.Coeff != 0 {
			p = (p - rel.Offset) / rel.Coeff
		}
		vars = append(vars, remapVar(root, remap))
		vals = append(vals, p)
	}
	h.Vars, h.Vals = vars, vals
}
