package model

// SolutionHint is a partial assignment passed to a solver as a
// starting point; presolve rewrites it the same way it rewrites
// search strategies, following fixed/substituted variables through to
// their representative.
type SolutionHint struct {
	Vars []int32
	Vals []int64
}
