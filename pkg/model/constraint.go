package model

import "fmt"

// Constraint is implemented by every constraint kind spec §4.2 names.
// Dispatch over concrete kinds uses Go type switches in the rewriters
// package rather than a discriminator field, matching the teacher's
// deppy.Constraint sum-type-by-interface idiom (pkg/deppy/constraint).
type Constraint interface {
	// Vars returns every variable index the constraint touches, used
	// to build and maintain the presolve usage graph.
	Vars() []int32
	// String renders a short human-readable form for diagnostics.
	String() string
}

// Enforceable is implemented by constraint kinds that carry an
// enforcement-literal list: the constraint only applies when every
// enforcement literal is true. The generic enforcement-literal
// simplification pre-pass (spec §4.2) dispatches through this
// interface rather than a discriminator field.
type Enforceable interface {
	Constraint
	Enforcement() []VarRef
	SetEnforcement([]VarRef)
}

// LinearExpr is Offset + sum(Coeffs[i]*Vars[i]).
type LinearExpr struct {
	Vars   []int32
	Coeffs []int64
	Offset int64
}

func (e LinearExpr) vars() []int32 { return append([]int32{}, e.Vars...) }

// BoolOr requires at least one literal (enforcement literals pulled in
// negated, or true) to be true.
type BoolOr struct {
	Literals []VarRef
	Enforced []VarRef
}

func (c *BoolOr) Vars() []int32 { return append(refVars(c.Literals), refVars(c.Enforced)...) }
func (c *BoolOr) String() string {
	return fmt.Sprintf("bool_or(%v | enforced %v)", c.Literals, c.Enforced)
}
func (c *BoolOr) Enforcement() []VarRef     { return c.Enforced }
func (c *BoolOr) SetEnforcement(e []VarRef) { c.Enforced = e }

// BoolAnd requires every literal to be true whenever every enforcement
// literal is true.
type BoolAnd struct {
	Literals []VarRef
	Enforced []VarRef
}

func (c *BoolAnd) Vars() []int32 { return append(refVars(c.Literals), refVars(c.Enforced)...) }
func (c *BoolAnd) String() string {
	return fmt.Sprintf("bool_and(%v | enforced %v)", c.Literals, c.Enforced)
}
func (c *BoolAnd) Enforcement() []VarRef     { return c.Enforced }
func (c *BoolAnd) SetEnforcement(e []VarRef) { c.Enforced = e }

// AtMostOne requires at most one of the literals to be true.
type AtMostOne struct {
	Literals []VarRef
}

func (c *AtMostOne) Vars() []int32 { return refVars(c.Literals) }
func (c *AtMostOne) String() string {
	return fmt.Sprintf("at_most_one(%v)", c.Literals)
}

// IntMax requires Target == max(Exprs...) whenever every enforcement
// literal is true.
type IntMax struct {
	Target   int32
	Exprs    []LinearExpr
	Enforced []VarRef
}

func (c *IntMax) Vars() []int32 {
	out := []int32{c.Target}
	for _, e := range c.Exprs {
		out = append(out, e.vars()...)
	}
	return append(out, refVars(c.Enforced)...)
}
func (c *IntMax) String() string {
	return fmt.Sprintf("int_max(target=%d, exprs=%d | enforced %v)", c.Target, len(c.Exprs), c.Enforced)
}
func (c *IntMax) Enforcement() []VarRef     { return c.Enforced }
func (c *IntMax) SetEnforcement(e []VarRef) { c.Enforced = e }

// IntMin requires Target == min(Exprs...) whenever every enforcement
// literal is true. Rewritten as max on negated references (spec §4.2).
type IntMin struct {
	Target   int32
	Exprs    []LinearExpr
	Enforced []VarRef
}

func (c *IntMin) Vars() []int32 {
	out := []int32{c.Target}
	for _, e := range c.Exprs {
		out = append(out, e.vars()...)
	}
	return append(out, refVars(c.Enforced)...)
}
func (c *IntMin) String() string {
	return fmt.Sprintf("int_min(target=%d, exprs=%d | enforced %v)", c.Target, len(c.Exprs), c.Enforced)
}
func (c *IntMin) Enforcement() []VarRef     { return c.Enforced }
func (c *IntMin) SetEnforcement(e []VarRef) { c.Enforced = e }

// IntProd requires Target == product(Factors...).
type IntProd struct {
	Target  int32
	Factors []int32
}

func (c *IntProd) Vars() []int32  { return append([]int32{c.Target}, c.Factors...) }
func (c *IntProd) String() string { return fmt.Sprintf("int_prod(target=%d, factors=%v)", c.Target, c.Factors) }

// IntDiv requires Target == Num / Denom, truncating toward zero.
type IntDiv struct {
	Target, Num, Denom int32
}

func (c *IntDiv) Vars() []int32  { return []int32{c.Target, c.Num, c.Denom} }
func (c *IntDiv) String() string { return fmt.Sprintf("int_div(target=%d, num=%d, denom=%d)", c.Target, c.Num, c.Denom) }

// Linear requires the weighted sum of VarIndices/Coeffs to fall in
// Domain.
//
// Defining marks a linear constraint that exists only to materialize
// an affine relation the presolve context recorded
// (add_affine_relation / add_boolean_equality). The linear rewriter
// must skip both representative-substitution and singleton-removal
// for these, or it would unravel the very relation it encodes. This
// is the sidecar-field replacement for the source's pointer-identity
// "affine_constraints" marker set (spec §9's Design Notes).
type Linear struct {
	VarIndices []int32
	Coeffs     []int64
	Domain     []Interval64
	Defining   bool
	Enforced   []VarRef
}

// Interval64 is a closed integer range, kept as a plain pair here
// (rather than reusing intervaldomain.Domain) since linear constraint
// right-hand sides are parsed straight off the wire/JSON form before
// any normalization passes run.
type Interval64 struct{ Min, Max int64 }

func (c *Linear) Vars() []int32 {
	return append(append([]int32{}, c.VarIndices...), refVars(c.Enforced)...)
}
func (c *Linear) String() string {
	return fmt.Sprintf("linear(vars=%v, coeffs=%v | enforced %v)", c.VarIndices, c.Coeffs, c.Enforced)
}
func (c *Linear) Enforcement() []VarRef     { return c.Enforced }
func (c *Linear) SetEnforcement(e []VarRef) { c.Enforced = e }

// AllDiff requires every variable in VarIndices to take a distinct
// value. Enforcement-free: cp_model_presolve.cc's PresolveAllDiff
// bails out immediately when the constraint carries an enforcement
// literal, so this kind never needs one.
type AllDiff struct {
	VarIndices []int32
}

func (c *AllDiff) Vars() []int32 { return append([]int32{}, c.VarIndices...) }
func (c *AllDiff) String() string {
	return fmt.Sprintf("all_diff(vars=%v)", c.VarIndices)
}

// IntervalConstraint defines an interval [Start, Start+Size) == End,
// the building block for no_overlap/cumulative/element scheduling
// constraints.
type IntervalConstraint struct {
	Start, Size, End int32
}

func (c *IntervalConstraint) Vars() []int32 { return []int32{c.Start, c.Size, c.End} }
func (c *IntervalConstraint) String() string {
	return fmt.Sprintf("interval(start=%d, size=%d, end=%d)", c.Start, c.Size, c.End)
}

// Element requires Target == Options[Index].
type Element struct {
	Index   int32
	Options []int32
	Target  int32
}

func (c *Element) Vars() []int32 { return append([]int32{c.Index, c.Target}, c.Options...) }
func (c *Element) String() string {
	return fmt.Sprintf("element(index=%d, target=%d, options=%v)", c.Index, c.Target, c.Options)
}

// Table restricts (Cols[0],...,Cols[n-1]) to one of Tuples, or (when
// Negated) forbids every tuple listed.
type Table struct {
	Cols    []int32
	Tuples  [][]int64
	Negated bool
}

func (c *Table) Vars() []int32 { return append([]int32{}, c.Cols...) }
func (c *Table) String() string {
	return fmt.Sprintf("table(cols=%v, tuples=%d, negated=%t)", c.Cols, len(c.Tuples), c.Negated)
}

// NoOverlap requires the referenced intervals not to overlap in time.
type NoOverlap struct {
	Intervals []int32
}

// Vars returns nil: Intervals holds IntervalConstraint slot indices,
// not variable indices, so no_overlap contributes no edges of its own
// to the variable side of the usage graph (the IntervalConstraint
// entries it references do that already).
func (c *NoOverlap) Vars() []int32 { return nil }
func (c *NoOverlap) String() string { return fmt.Sprintf("no_overlap(intervals=%v)", c.Intervals) }

// Cumulative bounds the sum of active interval demands at any point
// in time to Capacity.
type Cumulative struct {
	Intervals []int32
	Demands   []int32
	Capacity  int32
}

// Vars returns only Demands: Capacity is a plain constant and
// Intervals holds IntervalConstraint slot indices, not variable
// indices, so neither belongs in the usage graph's variable side.
func (c *Cumulative) Vars() []int32 {
	return append([]int32{}, c.Demands...)
}
func (c *Cumulative) String() string {
	return fmt.Sprintf("cumulative(intervals=%v, capacity=%d)", c.Intervals, c.Capacity)
}

// CircuitArc is one candidate arc of a Circuit constraint: Literal
// true selects the Tail->Head hop.
type CircuitArc struct {
	Tail, Head int32
	Literal    VarRef
}

// Circuit requires the selected arcs to form a single Hamiltonian
// circuit over the nodes they touch.
type Circuit struct {
	Arcs []CircuitArc
}

// Vars returns each arc's Literal variable only: Tail/Head name
// abstract graph nodes private to the constraint, not model variables,
// so they never belong in the usage graph's variable side.
func (c *Circuit) Vars() []int32 {
	seen := make(map[int32]struct{})
	var out []int32
	for _, a := range c.Arcs {
		v := a.Literal.Var()
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
func (c *Circuit) String() string { return fmt.Sprintf("circuit(arcs=%d)", len(c.Arcs)) }

func refVars(refs []VarRef) []int32 {
	out := make([]int32, len(refs))
	for i, r := range refs {
		out[i] = r.Var()
	}
	return out
}
