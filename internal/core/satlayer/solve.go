package satlayer

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/cp-hybrid/presolve/pkg/model"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Solver is a single incremental gini instance paired with the
// LitMapping translating its literals to and from model.VarRef.
// cmd/dimacs and cmd/sudoku call it directly for a complete decision
// rather than incremental propagation; internal/core/scheduler does
// not use it.
//
// Unlike the teacher's analogous internal solver, Solver never
// performs preference-ordered branching search of its own, and never
// re-solves under a cardinality bound to prefer more or fewer
// selected variables: spec.md's Non-goals explicitly exclude solver
// search heuristics and any search strategy beyond post-presolve
// strategy remapping, so gini's own native Solve is the whole of it.
type Solver struct {
	g   *gini.Gini
	Map *LitMapping
}

// NewSolver builds an empty solver ready to Teach constraints into.
func NewSolver() *Solver {
	return &Solver{g: gini.New(), Map: NewLitMapping()}
}

// Teach adds every Boolean constraint in constraints to the solver.
// It is single-shot: calling it twice re-teaches the circuit's
// internal gates a second time, since LitMapping.Teach always runs a
// full ToCnf. Build the whole clause set up front and call this once.
func (s *Solver) Teach(constraints []model.Constraint) {
	s.Map.Teach(s.g, constraints)
}

// Solve assumes the given literals and runs the underlying SAT
// search, returning whether the problem is satisfiable under those
// assumptions.
func (s *Solver) Solve(assumptions []model.VarRef) bool {
	lits := make([]z.Lit, len(assumptions))
	for i, ref := range assumptions {
		lits[i] = s.Map.LitOf(ref)
	}
	s.g.Assume(lits...)
	return s.g.Solve() == satisfiable
}

// Value reports the solver's assignment to ref after a satisfiable
// Solve call.
func (s *Solver) Value(ref model.VarRef) bool {
	return s.g.Value(s.Map.LitOf(ref))
}

// Conflict returns the model literals implicated in the most recent
// unsatisfiable Solve call's assumptions, the same information the
// teacher's litMapping.Conflicts exposed over its own Identifiers.
func (s *Solver) Conflict() []model.VarRef {
	whys := s.g.Why(nil)
	out := make([]model.VarRef, 0, len(whys))
	for _, w := range whys {
		if ref, ok := s.Map.RefOf(w); ok {
			out = append(out, ref)
		}
	}
	return out
}
