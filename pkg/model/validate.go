package model

import "fmt"

// ValidationError reports a single structural defect found by
// Validate, named the way spec §6/§7 describes the "project's model
// validator": a hard rejection before presolve ever runs, distinct
// from the soft "domain became empty" outcome presolve itself reports.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return "model: " + e.Detail }

// Validate checks that every variable reference used by a constraint,
// the objective, a search hint, or the solution hint names an actual
// variable, and that no variable's domain is already empty on input.
// It does not attempt to prove the model is satisfiable — that is
// presolve's and the solver's job.
func (m *Model) Validate() error {
	n := int32(len(m.Variables))

	checkRef := func(v int32) error {
		if v < 0 || v >= n {
			return &ValidationError{Detail: fmt.Sprintf("variable index %d out of range [0,%d)", v, n)}
		}
		return nil
	}

	for i, v := range m.Variables {
		if v.Domain.IsEmpty() {
			return &ValidationError{Detail: fmt.Sprintf("variable %d (%q) has an empty domain", i, v.Name)}
		}
	}

	for i, c := range m.Constraints {
		for _, v := range c.Vars() {
			if err := checkRef(v); err != nil {
				return fmt.Errorf("constraint %d: %w", i, err)
			}
		}
	}

	if m.Objective != nil {
		if len(m.Objective.Vars) != len(m.Objective.Coeffs) {
			return &ValidationError{Detail: "objective vars/coeffs length mismatch"}
		}
		for _, v := range m.Objective.Vars {
			if err := checkRef(v); err != nil {
				return fmt.Errorf("objective: %w", err)
			}
		}
	}

	for i, h := range m.SearchHints {
		if len(h.Vars) != len(h.PreferredVals) {
			return &ValidationError{Detail: fmt.Sprintf("search hint %d: vars/preferred_vals length mismatch", i)}
		}
		for _, v := range h.Vars {
			if err := checkRef(v); err != nil {
				return fmt.Errorf("search hint %d: %w", i, err)
			}
		}
	}

	if m.SolutionHint != nil {
		if len(m.SolutionHint.Vars) != len(m.SolutionHint.Vals) {
			return &ValidationError{Detail: "solution hint vars/vals length mismatch"}
		}
		for _, v := range m.SolutionHint.Vars {
			if err := checkRef(v); err != nil {
				return fmt.Errorf("solution hint: %w", err)
			}
		}
	}

	return nil
}
