// Package context implements the presolve context (spec §4.1): the
// mutable store every constraint rewriter borrows from — per-variable
// domains, the variable<->constraint usage graph, the affine
// repositories, a constant pool, rule-hit statistics, and the
// modified-domains worklist feed. It is passed by exclusive mutable
// borrow, never as a singleton, mirroring the teacher's preference for
// small owned structs over package-level state (spec §9's Design
// Notes).
package context

import (
	"sort"

	"github.com/cp-hybrid/presolve/internal/core/affine"
	"github.com/cp-hybrid/presolve/internal/core/graph"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// Context owns everything a rewriter needs to read or mutate while
// the fixpoint driver iterates the working model.
type Context struct {
	Working *model.Model
	Mapping *model.Model

	domains []intervaldomain.Domain
	affine  *affine.Repository
	equiv   *affine.Repository
	usage   *graph.Graph

	// constants interns fixed-value variables so exploit_fixed_domain
	// can recognize when two separately-fixed variables should be
	// folded into the same affine class.
	constants map[int64]int32

	stats    map[string]int
	modified map[int32]struct{}
	unsat    bool
}

// New builds a context over a working model, computing the initial
// usage graph from the model's own constraints.
func New(m *model.Model) *Context {
	domains := make([]intervaldomain.Domain, len(m.Variables))
	for i, v := range m.Variables {
		domains[i] = v.Domain
	}
	ctx := &Context{
		Working:   m,
		Mapping:   model.NewModel(),
		domains:   domains,
		affine:    affine.NewRepository(),
		equiv:     affine.NewEquivalenceRepository(),
		usage:     graph.New(),
		constants: make(map[int64]int32),
		stats:     make(map[string]int),
		modified:  make(map[int32]struct{}),
	}
	for i, v := range m.Variables {
		if v.IsBoolean {
			ctx.affine.MarkBoolean(int32(i))
			ctx.equiv.MarkBoolean(int32(i))
		}
	}
	for i := range m.Constraints {
		ctx.UpdateConstraintVariableUsage(int32(i))
	}
	return ctx
}

// --- queries -----------------------------------------------------

// DomainOf returns v's current domain.
func (c *Context) DomainOf(v int32) intervaldomain.Domain { return c.domains[v] }

// MinOf returns v's current lower bound.
func (c *Context) MinOf(v int32) int64 { return c.domains[v].Min() }

// MaxOf returns v's current upper bound.
func (c *Context) MaxOf(v int32) int64 { return c.domains[v].Max() }

// IsFixed reports whether v's domain has collapsed to one value.
func (c *Context) IsFixed(v int32) bool { return c.domains[v].IsFixed() }

// LiteralIsTrue reports whether ref is currently forced true.
func (c *Context) LiteralIsTrue(ref model.VarRef) bool {
	d := c.domains[ref.Var()]
	if !d.IsFixed() {
		return false
	}
	want := int64(1)
	if ref.IsNegated() {
		want = 0
	}
	return d.FixedValue() == want
}

// LiteralIsFalse reports whether ref is currently forced false.
func (c *Context) LiteralIsFalse(ref model.VarRef) bool {
	return c.LiteralIsTrue(model.Negate(ref))
}

// NumVariables reports how many variables the working model holds.
func (c *Context) NumVariables() int32 { return int32(len(c.domains)) }

// IsUnsat reports whether the sticky infeasibility flag is set.
func (c *Context) IsUnsat() bool { return c.unsat }

// SetUnsat sets the sticky infeasibility flag directly, for rewriters
// that detect infeasibility without going through IntersectDomain
// (e.g. an empty Boolean-or with no enforcement literals).
func (c *Context) SetUnsat() { c.unsat = true }

// UsageGraph exposes the bipartite usage graph for rewriters that need
// to query adjacency directly (e.g. "does this variable appear in
// exactly one constraint").
func (c *Context) UsageGraph() *graph.Graph { return c.usage }

// AffineRepository is the general |coeff| != 1-tolerant affine store.
func (c *Context) AffineRepository() *affine.Repository { return c.affine }

// EquivalenceRepository is the |coeff| = 1 strict equivalence store.
func (c *Context) EquivalenceRepository() *affine.Repository { return c.equiv }

// --- mutation ------------------------------------------------------

// IntersectDomain narrows v's domain by d, returning true iff the
// domain actually shrank. Sets the sticky unsat flag if the
// intersection is empty and marks v in the modified set either way a
// change occurred.
func (c *Context) IntersectDomain(v int32, d intervaldomain.Domain) bool {
	if c.unsat {
		return false
	}
	old := c.domains[v]
	next := old.Intersect(d)
	if next.Equal(old) {
		return false
	}
	c.domains[v] = next
	c.markModified(v)
	if next.IsEmpty() {
		c.unsat = true
	}
	return true
}

// SetLiteralTrue forces ref true, built atop IntersectDomain.
func (c *Context) SetLiteralTrue(ref model.VarRef) bool {
	val := int64(1)
	if ref.IsNegated() {
		val = 0
	}
	return c.IntersectDomain(ref.Var(), intervaldomain.Single(val))
}

// SetLiteralFalse forces ref false.
func (c *Context) SetLiteralFalse(ref model.VarRef) bool {
	return c.SetLiteralTrue(model.Negate(ref))
}

// AddAffineRelation records x = coeff*y + offset in the general affine
// repository, biasing representative choice toward a Boolean root
// when one is available, then emits a defining linear constraint
// (x - coeff*y = offset) into the working model so later rewrites can
// see the relation as an ordinary constraint without being able to
// unravel it.
func (c *Context) AddAffineRelation(x, y int32, coeff, offset int64) error {
	if c.DomainOf(x).IsIncludedIn(intervaldomain.Range(0, 1)) {
		c.affine.MarkBoolean(x)
	}
	if c.DomainOf(y).IsIncludedIn(intervaldomain.Range(0, 1)) {
		c.affine.MarkBoolean(y)
	}
	if err := c.affine.Add(x, y, coeff, offset); err != nil {
		return err
	}
	ct := &model.Linear{
		VarIndices: []int32{x, y},
		Coeffs:     []int64{1, -coeff},
		Domain:     []model.Interval64{{Min: offset, Max: offset}},
		Defining:   true,
	}
	c.AddWorkingConstraint(ct)
	return nil
}

// AddBooleanEquality records that literals a and b must agree: same
// sign means a = b (coeff +1), opposite sign means a = 1-b (coeff -1,
// offset 1), per spec's `add_boolean_equality`.
func (c *Context) AddBooleanEquality(a, b model.VarRef) error {
	c.equiv.MarkBoolean(a.Var())
	c.equiv.MarkBoolean(b.Var())
	if a.IsNegated() == b.IsNegated() {
		if err := c.equiv.Add(a.Var(), b.Var(), 1, 0); err != nil {
			return err
		}
		return c.AddAffineRelation(a.Var(), b.Var(), 1, 0)
	}
	if err := c.equiv.Add(a.Var(), b.Var(), -1, 1); err != nil {
		return err
	}
	return c.AddAffineRelation(a.Var(), b.Var(), -1, 1)
}

// ExploitFixedDomain merges v's affine class with any other variable
// already known to be fixed to the same value, interning the value in
// the constant pool on first sight.
func (c *Context) ExploitFixedDomain(v int32) {
	if !c.domains[v].IsFixed() {
		return
	}
	val := c.domains[v].FixedValue()
	other, ok := c.constants[val]
	if !ok {
		c.constants[val] = v
		return
	}
	if other == v || c.affine.InSameClass(v, other) {
		return
	}
	_ = c.affine.Add(v, other, 1, 0)
}

// AddVariable appends a fresh variable to the working model (used by
// the SAT-presolve integration step, which may introduce new
// variables) and returns its index.
func (c *Context) AddVariable(name string, d intervaldomain.Domain) int32 {
	idx := c.Working.AddVariable(name, d)
	c.domains = append(c.domains, d)
	if d.IsIncludedIn(intervaldomain.Range(0, 1)) {
		c.affine.MarkBoolean(idx)
		c.equiv.MarkBoolean(idx)
	}
	return idx
}

// AddBooleanVariable mints a fresh {0,1} variable and returns its
// positive literal reference. This is the allocator the integer
// encoder (internal/core/encoder) uses to back each bound/equality
// literal it associates with a Boolean.
func (c *Context) AddBooleanVariable(name string) model.VarRef {
	return model.VarRef(c.AddVariable(name, intervaldomain.Range(0, 1)))
}

// AddWorkingConstraint appends a constraint to the working model and
// updates the usage graph for it.
func (c *Context) AddWorkingConstraint(ct model.Constraint) int32 {
	idx := c.Working.AddConstraint(ct)
	c.UpdateConstraintVariableUsage(idx)
	return idx
}

// AddMappingConstraint appends a constraint to the append-only mapping
// model; these never participate in the usage graph since they are
// dead weight for any rewriter once recorded.
func (c *Context) AddMappingConstraint(ct model.Constraint) int32 {
	return c.Mapping.AddConstraint(ct)
}

// ClearConstraint empties a constraint's slot. The slot index survives
// until the final compaction pass; clearing only removes its usage
// edges and nils its entry so it contributes no further rewrites.
func (c *Context) ClearConstraint(idx int32) {
	c.usage.RemoveConstraint(idx)
	c.Working.Constraints[idx] = nil
}

// IsCleared reports whether constraint idx has been emptied.
func (c *Context) IsCleared(idx int32) bool {
	return c.Working.Constraints[idx] == nil
}

// UpdateConstraintVariableUsage recomputes the usage edges incident to
// constraint idx from its current shape, dropping stale edges first.
func (c *Context) UpdateConstraintVariableUsage(idx int32) {
	c.usage.RemoveConstraint(idx)
	ct := c.Working.Constraints[idx]
	if ct == nil {
		return
	}
	for _, v := range ct.Vars() {
		c.usage.AddUsage(v, idx)
	}
}

func (c *Context) markModified(v int32) {
	c.modified[v] = struct{}{}
}

// TakeModifiedDomains drains the modified-variable set, returning its
// members sorted ascending for reproducibility (spec §4.3: "re-activate
// all constraints incident on the modified variables, deterministically
// sorted").
func (c *Context) TakeModifiedDomains() []int32 {
	if len(c.modified) == 0 {
		return nil
	}
	out := make([]int32, 0, len(c.modified))
	for v := range c.modified {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	c.modified = make(map[int32]struct{})
	return out
}

// IncrementStat bumps the named rule-hit counter, used by the
// log_info option's statistics output.
func (c *Context) IncrementStat(rule string) {
	c.stats[rule]++
}

// Stats returns a copy of the rule-hit counters.
func (c *Context) Stats() map[string]int {
	out := make(map[string]int, len(c.stats))
	for k, v := range c.stats {
		out[k] = v
	}
	return out
}

// Flush writes the context's domains back onto the working model's
// variable list, used once presolve finishes rewriting and is ready
// to hand the model back to its caller.
func (c *Context) Flush() {
	for i := range c.Working.Variables {
		c.Working.Variables[i].Domain = c.domains[i]
	}
}
