// Package encoder implements spec §4.6's Integer Encoder: the
// two-way mapping between bound/equality literals over an integer
// variable and the Boolean decision variables (model.VarRef) that
// represent them. The literals it mints are ordinary model Booleans,
// wired together with ordinary model.BoolOr constraints -- the same
// constraints every other rewriter in this codebase produces -- so
// the eventual translation to CNF happens exactly once, downstream,
// in internal/core/satlayer, rather than through a second encoding
// path of its own.
package encoder

import (
	"fmt"
	"sort"

	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// ConstraintSink is the narrow surface Encoder needs from whatever
// owns the live model: read a variable's current domain, mint a fresh
// Boolean, and append a structural constraint. internal/core/context.Context
// satisfies this directly during presolve; a future lighter runtime
// model driving live search can satisfy it the same way, since the
// encoder itself never needs anything context-specific (the usage
// graph, affine relations, and so on).
type ConstraintSink interface {
	DomainOf(v int32) intervaldomain.Domain
	AddBooleanVariable(name string) model.VarRef
	AddWorkingConstraint(ct model.Constraint) int32
}

// IntLit is an integer bound literal "v >= bound".
type IntLit struct {
	Var   int32
	Bound int64
}

type boundEntry struct {
	bound int64
	lit   model.VarRef
}

// Encoder is the mutable two-way mapping. It is not safe for
// concurrent use.
type Encoder struct {
	sink ConstraintSink

	bounds  map[int32][]boundEntry  // per-variable, ascending by bound
	equals  map[[2]int64]model.VarRef // (var, value) -> equality literal
	reverse map[model.VarRef]IntLit   // ge-literal -> the bound it encodes

	hasTrueLit bool
	trueLit    model.VarRef

	pending []IntLit
}

// New builds an encoder that mints Booleans and implication
// constraints through sink.
func New(sink ConstraintSink) *Encoder {
	return &Encoder{
		sink:    sink,
		bounds:  make(map[int32][]boundEntry),
		equals:  make(map[[2]int64]model.VarRef),
		reverse: make(map[model.VarRef]IntLit),
	}
}

// Canonicalize walks v's interval list to snap bound to the nearest
// feasible boundary (spec's canonicalize(i_lit)): a bound at or below
// the domain minimum is always true, one above the maximum is always
// false, and a bound landing in a hole snaps up to the next interval's
// start.
func (e *Encoder) Canonicalize(v int32, bound int64) (canon int64, alwaysTrue, alwaysFalse bool) {
	d := e.sink.DomainOf(v)
	if bound <= d.Min() {
		return d.Min(), true, false
	}
	if bound > d.Max() {
		return 0, false, true
	}
	for _, iv := range d.Intervals() {
		if iv.Max >= bound {
			if bound < iv.Min {
				return iv.Min, false, false
			}
			return bound, false, false
		}
	}
	return 0, false, true
}

// trueLiteral returns a Boolean fixed true, minted once and reused,
// matching gini's own c.T sentinel (gini/logic.C.initC): rather than
// special-case "always true" downstream, every consumer of a literal
// can treat it uniformly as just another Boolean.
func (e *Encoder) trueLiteral() model.VarRef {
	if !e.hasTrueLit {
		lit := e.sink.AddBooleanVariable("encoder$true")
		e.sink.AddWorkingConstraint(&model.BoolOr{Literals: []model.VarRef{lit}})
		e.trueLit = lit
		e.hasTrueLit = true
	}
	return e.trueLit
}

// GetOrCreateAssociatedLiteral returns the Boolean literal for
// "v >= bound" (spec's get_or_create_associated_literal): the
// constant true/false literal if bound falls outside the static
// domain, an existing association after canonicalization, or a fresh
// Boolean wired with two-sided implications to its neighbors in the
// ordered bound map to preserve monotonicity of >=.
func (e *Encoder) GetOrCreateAssociatedLiteral(v int32, bound int64) model.VarRef {
	canon, alwaysTrue, alwaysFalse := e.Canonicalize(v, bound)
	if alwaysTrue {
		return e.trueLiteral()
	}
	if alwaysFalse {
		return model.Negate(e.trueLiteral())
	}

	entries := e.bounds[v]
	i := sort.Search(len(entries), func(i int) bool { return entries[i].bound >= canon })
	if i < len(entries) && entries[i].bound == canon {
		return entries[i].lit
	}

	lit := e.sink.AddBooleanVariable(fmt.Sprintf("ge(%d,%d)", v, canon))
	e.reverse[lit] = IntLit{Var: v, Bound: canon}

	// A higher bound is strictly harder to satisfy: the new literal
	// implies every already-encoded weaker (lower) bound, and every
	// already-encoded stronger (higher) bound implies the new one.
	if i > 0 {
		weaker := entries[i-1]
		e.sink.AddWorkingConstraint(&model.BoolOr{Literals: []model.VarRef{model.Negate(lit), weaker.lit}})
	}
	if i < len(entries) {
		stronger := entries[i]
		e.sink.AddWorkingConstraint(&model.BoolOr{Literals: []model.VarRef{model.Negate(stronger.lit), lit}})
	}

	updated := make([]boundEntry, 0, len(entries)+1)
	updated = append(updated, entries[:i]...)
	updated = append(updated, boundEntry{bound: canon, lit: lit})
	updated = append(updated, entries[i:]...)
	e.bounds[v] = updated

	return lit
}

// EqualityLiteral returns the Boolean for "v == k", minting it on
// first use with the three-clause AND-gate shape gini's own Tseitin
// translation uses for an AND node (addAnd in gini/logic/c.go):
// eq <=> ge(v,k) AND NOT ge(v,k+1). Exported so a constraint rewriter
// deciding to hand an integer constraint to the Boolean layer (a
// table or element constraint over an already-bounded variable, for
// instance) can look up or create the same per-value literal
// FullyEncodeVariable would have wired.
func (e *Encoder) EqualityLiteral(v int32, k int64) model.VarRef {
	key := [2]int64{int64(v), k}
	if lit, ok := e.equals[key]; ok {
		return lit
	}
	geK := e.GetOrCreateAssociatedLiteral(v, k)
	geKPlus1 := e.GetOrCreateAssociatedLiteral(v, k+1)
	notGeKPlus1 := model.Negate(geKPlus1)

	eq := e.sink.AddBooleanVariable(fmt.Sprintf("eq(%d,%d)", v, k))
	e.sink.AddWorkingConstraint(&model.BoolOr{Literals: []model.VarRef{model.Negate(eq), geK}})
	e.sink.AddWorkingConstraint(&model.BoolOr{Literals: []model.VarRef{model.Negate(eq), notGeKPlus1}})
	e.sink.AddWorkingConstraint(&model.BoolOr{Literals: []model.VarRef{model.Negate(geK), geKPlus1, eq}})

	e.equals[key] = eq
	return eq
}

// FullyEncodeVariable creates one Boolean per value in v's domain and
// wires (v = k) <=> (v >= k) AND NOT (v >= k+1) for each (spec's
// fully_encode_variable), bulk-adding the N-1 consecutive
// implications through the same GetOrCreateAssociatedLiteral path
// every other bound literal goes through.
func (e *Encoder) FullyEncodeVariable(v int32) {
	for _, iv := range e.sink.DomainOf(v).Intervals() {
		for k := iv.Min; k <= iv.Max; k++ {
			e.EqualityLiteral(v, k)
		}
	}
}

// PartialDomainEncoding returns the bounds of v currently live in the
// ordered map (spec's partial_domain_encoding), ascending.
func (e *Encoder) PartialDomainEncoding(v int32) []int64 {
	entries := e.bounds[v]
	out := make([]int64, len(entries))
	for i, be := range entries {
		out[i] = be.bound
	}
	return out
}

// AssociatedLiteral implements internal/core/trail.LiteralAssociation:
// it only ever looks up an existing ge-literal, never creates one --
// creation is this package's own job via GetOrCreateAssociatedLiteral,
// called by whichever propagator is doing the encoding, not by the
// trail reacting to a bound change after the fact.
func (e *Encoder) AssociatedLiteral(v int32, bound int64) (model.VarRef, bool) {
	entries := e.bounds[v]
	i := sort.Search(len(entries), func(i int) bool { return entries[i].bound >= bound })
	if i < len(entries) && entries[i].bound == bound {
		return entries[i].lit, true
	}
	return 0, false
}

// NotifyLiteralFixed records that the Boolean layer fixed lit true,
// translating it back to the integer bound literal it encodes, if
// any, for the next DrainNewlyFixed call (spec's
// newly_fixed_integer_literals). Only the ge-literal-fixed-true
// direction is tracked: this trail only ever advances lower bounds
// (internal/core/trail, matching int_min's direction-flag design
// rather than a negated-integer-variable one), so a ge-literal fixed
// *false* -- which would narrow v's upper bound -- has no trail-side
// consumer to batch it for.
func (e *Encoder) NotifyLiteralFixed(lit model.VarRef) {
	if il, ok := e.reverse[lit]; ok {
		e.pending = append(e.pending, il)
	}
}

// DrainNewlyFixed returns and clears the batch of integer literals
// the Boolean layer has fixed since the last call.
func (e *Encoder) DrainNewlyFixed() []IntLit {
	out := e.pending
	e.pending = nil
	return out
}
