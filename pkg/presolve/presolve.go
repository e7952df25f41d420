// Package presolve is the public invocation surface spec §6 names:
// presolve(options, working_model, mapping_model, postsolve_mapping).
// It wires internal/core/context, internal/core/fixpoint, and
// pkg/model's validator together the way spec.md's own component
// design implies but leaves for the "external interfaces" section to
// state as a contract rather than an implementation.
package presolve

import (
	"fmt"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/internal/core/fixpoint"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// Result is everything Run hands back: the compacted working model
// (also mutated in place, matching spec's "mutates working_model into
// its compacted form"), the mapping model recording inverse rewrites
// for a post-solver to replay deepest-first, the new-to-old variable
// index table, whether the run proved infeasibility, and (if
// Options.LogInfo was set) the per-rule hit counts.
type Result struct {
	WorkingModel     *model.Model
	MappingModel     *model.Model
	PostsolveMapping []int32
	Unsat            bool
	Stats            Stats
}

// Run drives working to quiescence and finalizes it, per spec §4.3's
// ten-step pipeline (internal/core/fixpoint.Run then
// internal/core/fixpoint.Finalize). It validates the model both
// before iterating and after finalizing, per spec §6's "the compacted
// working model and the mapping model must both pass the project's
// model validator".
//
// Options.EnumerateAllSolutions is accepted but not yet load-bearing:
// spec §6 requires it to disable SAT-presolve and singleton-removal,
// and internal/core/fixpoint.Run's worklist does not yet take a
// rewrite-set parameter to selectively exclude those rules — see
// DESIGN.md.
func Run(opts Options, working *model.Model) (*Result, error) {
	if err := working.Validate(); err != nil {
		return nil, fmt.Errorf("presolve: invalid input model: %w", err)
	}

	ctx := context.New(working)
	fixpoint.Run(ctx)
	fr := fixpoint.Finalize(ctx)

	result := &Result{
		WorkingModel:     ctx.Working,
		MappingModel:     ctx.Mapping,
		PostsolveMapping: fr.PostsolveMapping,
		Unsat:            ctx.IsUnsat(),
	}
	if opts.LogInfo {
		result.Stats = Stats(ctx.Stats())
	}

	if !result.Unsat {
		if err := result.WorkingModel.Validate(); err != nil {
			return nil, fmt.Errorf("presolve: compacted model failed validation: %w", err)
		}
		if err := result.MappingModel.Validate(); err != nil {
			return nil, fmt.Errorf("presolve: mapping model failed validation: %w", err)
		}
	}

	return result, nil
}

// apply_variable_mapping from spec §6 -- "substitutes every reference
// in constraints, objective, strategies, and solution hint; drops
// strategy entries whose variable was removed; moves the kept
// variable definitions into the new index order" -- is not exposed as
// a second public entry point here: it is exactly
// internal/core/fixpoint.Finalize's steps 8-10
// (rewriteConstraintVars/rewriteObjectiveVars/rewriteSearchHints/
// rewriteSolutionHint plus compactVariables), which Run already runs
// as part of finishing a presolve pass. A standalone generic
// renumbering entry point over an arbitrary caller-supplied model
// would duplicate that same per-constraint-kind type switch for no
// SPEC_FULL.md component that calls it on its own; see DESIGN.md.
