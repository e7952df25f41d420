// Package satlayer is the pure Boolean satisfiability layer that
// closes spec §4's presolve/propagation core over gini: it teaches
// the model's Boolean constraint kinds (bool_or, bool_and,
// at_most_one) as CNF and drives an incremental gini instance to
// decide them. Everything upstream -- affine relations, the fixpoint
// driver, the integer trail, the integer encoder -- works in the
// model's own Boolean literal space (model.VarRef); this package is
// the one place that space ever needs to become a real z.Lit.
package satlayer

import (
	"fmt"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/cp-hybrid/presolve/pkg/model"
)

// LitMapping is the two-way translation between model.VarRef and
// gini's z.Lit space, plus the logic.C circuit used to Tseitinize the
// cardinality sorting networks at_most_one needs, the same way the
// teacher's own litMapping used a *logic.C for exactly this.
type LitMapping struct {
	c    *logic.C
	lits map[int32]z.Lit // model variable index -> positive gini literal
	vars map[z.Lit]int32 // inverse of lits, keyed by the positive literal
}

// NewLitMapping returns an empty mapping backed by a fresh circuit.
func NewLitMapping() *LitMapping {
	return &LitMapping{
		c:    logic.NewC(),
		lits: make(map[int32]z.Lit),
		vars: make(map[z.Lit]int32),
	}
}

// LitOf returns the gini literal for a model Boolean reference,
// minting a fresh circuit input on first use of its underlying
// variable and negating it to match ref's own sign.
func (m *LitMapping) LitOf(ref model.VarRef) z.Lit {
	v := ref.Var()
	lit, ok := m.lits[v]
	if !ok {
		lit = m.c.Lit()
		m.lits[v] = lit
		m.vars[lit] = v
	}
	if ref.IsNegated() {
		return lit.Not()
	}
	return lit
}

// RefOf inverts LitOf. It only needs to handle literals this mapping
// itself minted, so an unrecognized literal reports ok=false rather
// than panicking; callers reading conflicts back from gini already
// filter on ok.
func (m *LitMapping) RefOf(lit z.Lit) (model.VarRef, bool) {
	v, ok := m.vars[lit.Var().Pos()]
	if !ok {
		return 0, false
	}
	if lit.IsPos() {
		return model.VarRef(v), true
	}
	return model.Negate(model.VarRef(v)), true
}

// AddClause teaches a single disjunctive clause directly to g,
// spec's bool_or shape. Every other Boolean constraint kind this
// package understands reduces to one or more of these.
func (m *LitMapping) AddClause(g inter.Adder, literals []model.VarRef) {
	for _, ref := range literals {
		g.Add(m.LitOf(ref))
	}
	g.Add(z.LitNull)
}

// teachCardinality builds a sorting network bounding how many of
// literals may be true, and asserts the bound as a unit clause. It
// mirrors the teacher's own litMapping.CardinalityConstrainer,
// re-keyed on model.VarRef in place of the teacher's Identifier.
func (m *LitMapping) teachCardinality(g inter.Adder, literals []model.VarRef, n int) {
	ms := make([]z.Lit, len(literals))
	for i, ref := range literals {
		ms[i] = m.LitOf(ref)
	}
	clen := m.c.Len()
	cs := m.c.CardSort(ms)
	marks := make([]int8, clen, m.c.Len())
	for i := range marks {
		marks[i] = 1
	}
	var bound z.Lit
	for w := 0; w <= n; w++ {
		marks, _ = m.c.CnfSince(g, marks, cs.Leq(w))
		bound = cs.Leq(w)
	}
	g.Add(bound)
	g.Add(z.LitNull)
}

// Teach translates every Boolean model constraint satlayer
// understands into clauses taught to g, dispatching by type switch
// the way internal/core/rewrite dispatches over constraint kinds. Any
// other constraint kind (a table, a linear, ...) is skipped and adds
// no clause, so a caller encodes those as Boolean constraints first.
func (m *LitMapping) Teach(g inter.Adder, constraints []model.Constraint) {
	for _, ct := range constraints {
		switch c := ct.(type) {
		case *model.BoolOr:
			m.teachBoolOr(g, c)
		case *model.BoolAnd:
			m.teachBoolAnd(g, c)
		case *model.AtMostOne:
			m.teachCardinality(g, c.Literals, 1)
		}
	}
	m.c.ToCnf(g)
}

func (m *LitMapping) teachBoolOr(g inter.Adder, c *model.BoolOr) {
	clause := append(append([]model.VarRef{}, c.Literals...), negateAll(c.Enforced)...)
	m.AddClause(g, clause)
}

func (m *LitMapping) teachBoolAnd(g inter.Adder, c *model.BoolAnd) {
	for _, lit := range c.Literals {
		clause := append([]model.VarRef{lit}, negateAll(c.Enforced)...)
		m.AddClause(g, clause)
	}
}

func negateAll(refs []model.VarRef) []model.VarRef {
	out := make([]model.VarRef, len(refs))
	for i, r := range refs {
		out[i] = model.Negate(r)
	}
	return out
}

// Lits returns every model variable index this mapping has minted a
// literal for, in no particular order.
func (m *LitMapping) Lits() []int32 {
	out := make([]int32, 0, len(m.lits))
	for v := range m.lits {
		out = append(out, v)
	}
	return out
}

func (m *LitMapping) String() string {
	return fmt.Sprintf("litMapping(%d variables)", len(m.lits))
}
