package dimacs

import (
	"strconv"
	"strings"

	"github.com/cp-hybrid/presolve/pkg/model"
)

// GenerateConstraints turns a parsed Dimacs problem's clauses into the
// bool_or constraints internal/core/satlayer teaches directly, one per
// DIMACS clause line. DIMACS numbers variables 1..N; this maps literal
// N to model.VarRef(N-1) and a leading "-" to its negation, since
// pkg/model's own variable indices are zero-based.
func GenerateConstraints(dimacs *Dimacs) ([]model.Constraint, error) {
	constraints := make([]model.Constraint, 0, len(dimacs.Clauses()))
	for _, clause := range dimacs.Clauses() {
		terms := strings.Split(clause, " ")
		literals := make([]model.VarRef, 0, len(terms))
		for _, term := range terms {
			neg := strings.HasPrefix(term, "-")
			n, err := strconv.Atoi(strings.TrimPrefix(term, "-"))
			if err != nil {
				return nil, err
			}
			ref := model.VarRef(n - 1)
			if neg {
				ref = model.Negate(ref)
			}
			literals = append(literals, ref)
		}
		constraints = append(constraints, &model.BoolOr{Literals: literals})
	}
	return constraints, nil
}
