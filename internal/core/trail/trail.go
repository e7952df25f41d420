// Package trail implements spec §4.5's Integer Trail: an append-only
// sequence of lower-bound changes with per-entry reasons, used by
// search-time propagators (the presolve core itself only needs the
// domain algebra and rewriters; the trail is the runtime substrate
// those propagators share once search starts, per spec §2's control-
// flow note that "the trail/encoder/scheduler are used during probing
// and at every subsequent search, not just at presolve time").
package trail

import (
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// NoLiteral marks the absence of an associated Boolean literal or
// optionality literal; model.VarRef's own zero value names a real
// variable, so a distinct sentinel is needed.
const NoLiteral = model.VarRef(-1 << 31)

// Watcher is notified whenever a variable's lower bound advances.
// The propagator scheduler (spec §4.7) is the trail's only intended
// implementer, registering one watcher bitset per variable.
type Watcher interface {
	OnBoundChanged(v int32)
}

// LiteralAssociation looks up the Boolean literal already wired to
// the bound "v >= bound", if any (spec's "if a Boolean literal is
// associated to this bound"). The integer encoder (spec §4.6) is the
// intended implementer; Trail only ever queries, never creates,
// associations, since creating one is the encoder's job.
type LiteralAssociation interface {
	AssociatedLiteral(v int32, bound int64) (model.VarRef, bool)
}

// BooleanTrail receives literals the integer trail derives, so a
// Boolean bound change and its integer counterpart share one
// consistent trail ordering and reason set.
type BooleanTrail interface {
	Enqueue(lit model.VarRef, reasonIndex int32)
}

// IntLit is an integer bound literal "v >= bound".
type IntLit struct {
	Var   int32
	Bound int64
}

// Entry is one append-only trail record (spec §4.5): the new lower
// bound for Var, a back-pointer to the previous trail entry touching
// the same variable (-1 if none), and the index into Trail.reasons
// this bound's derivation is recorded under (-1 for a decision or the
// variable's initial bound with no derivation to explain).
type Entry struct {
	Var                 int32
	Bound               int64
	PrevIndexForSameVar int32
	ReasonIndex         int32
	BoolLiteral         model.VarRef // NoLiteral if none associated
}

// Reason records why an entry's bound was derivable: a set of
// already-Boolean facts (literal_reason) and a set of integer bound
// literals whose own explanation must be chased further
// (integer_reason), per spec §4.5.
type Reason struct {
	Literals        []model.VarRef
	IntegerLiterals []IntLit
}

type varState struct {
	currentBound      int64
	currentTrailIndex int32 // -1 if never bounded on the trail
	domain            intervaldomain.Domain
	optional          model.VarRef // is_ignored literal, or NoLiteral
	isIgnored         bool
}

// Reversible is notified whenever Untrail rewinds the trail, so
// reversible-state classes outside the trail itself (the propagator
// scheduler's per-propagator scratch state, spec §4.7) can restore
// their own snapshots in step with the integer bounds.
type Reversible interface {
	Undo(toIndex int32)
}

// Trail is the mutable reversible store. It is not safe for
// concurrent use; the propagator scheduler serializes access to it.
type Trail struct {
	entries      []Entry
	reasons      []Reason
	vars         []varState
	watchers     []Watcher
	reversibles  []Reversible
	assoc        LiteralAssociation
	bools        BooleanTrail
	lastConflict []model.VarRef
}

// New builds a trail over the given per-variable static domains,
// whose Min() seeds each variable's initial current_bound.
func New(domains []intervaldomain.Domain) *Trail {
	t := &Trail{
		vars: make([]varState, len(domains)),
	}
	for i, d := range domains {
		t.vars[i] = varState{
			currentBound:      d.Min(),
			currentTrailIndex: -1,
			domain:            d,
			optional:          NoLiteral,
		}
	}
	return t
}

// SetLiteralAssociation wires the integer encoder in, so Enqueue can
// discover a bound's associated Boolean literal.
func (t *Trail) SetLiteralAssociation(a LiteralAssociation) { t.assoc = a }

// SetBooleanTrail wires the Boolean-layer trail in, so Enqueue can
// forward an associated literal's fixing.
func (t *Trail) SetBooleanTrail(b BooleanTrail) { t.bools = b }

// AddWatcher registers a bound-change watcher for every variable
// (per-variable watcher bitsets are the scheduler's own responsibility
// to filter; the trail just notifies uniformly, matching spec's "notify
// all registered watcher bitsets").
func (t *Trail) AddWatcher(w Watcher) { t.watchers = append(t.watchers, w) }

// AddReversible registers a reversible-state listener, notified with
// the trail index Untrail is rewinding to.
func (t *Trail) AddReversible(r Reversible) { t.reversibles = append(t.reversibles, r) }

// LastConflictReason returns the clause built by the most recent
// Enqueue call that returned false.
func (t *Trail) LastConflictReason() []model.VarRef { return t.lastConflict }

// MarkOptional records that v is an optional variable identified by
// the given is_ignored literal (spec §4.5's conflict-avoidance path).
func (t *Trail) MarkOptional(v int32, isIgnored model.VarRef) {
	t.vars[v].optional = isIgnored
}

// CurrentBound returns v's current lower bound.
func (t *Trail) CurrentBound(v int32) int64 { return t.vars[v].currentBound }

// Len reports how many entries the trail currently holds.
func (t *Trail) Len() int32 { return int32(len(t.entries)) }

// IsIgnored reports whether v's optional literal has been forced true.
func (t *Trail) IsIgnored(v int32) bool { return t.vars[v].isIgnored }

// canonicalize snaps bound up to the next value v's static domain
// actually admits, per spec §4.5's "canonicalizes i_lit against the
// (possibly multi-interval) domain of v". Returns ok=false if bound
// exceeds every interval (infeasible against the static domain).
func canonicalize(d intervaldomain.Domain, bound int64) (int64, bool) {
	for _, iv := range d.Intervals() {
		if iv.Max >= bound {
			if bound < iv.Min {
				return iv.Min, true
			}
			return bound, true
		}
	}
	return 0, false
}

// Enqueue records that v's lower bound advances to bound, explained
// by literalReason (already-established Booleans) and integerReason
// (bound facts requiring further chasing). It rejects (no-op, returns
// true meaning "no conflict, nothing recorded") a bound that is not
// an actual advance. A bound exceeding the variable's static domain
// upper feasibility is a conflict, except the first time for an
// optional v: then its is_ignored literal is forced true and Enqueue
// returns true. Otherwise Enqueue returns false and the conflict clause
// is available via LastConflictReason.
func (t *Trail) Enqueue(v int32, bound int64, literalReason []model.VarRef, integerReason []IntLit) bool {
	vs := &t.vars[v]
	if bound <= vs.currentBound {
		return true
	}
	canon, ok := canonicalize(vs.domain, bound)
	if !ok {
		if vs.optional != NoLiteral && !vs.isIgnored {
			vs.isIgnored = true
			t.forceLiteral(vs.optional, integerReason, literalReason)
			return true
		}
		t.lastConflict = t.explain(append(append([]IntLit{}, integerReason...), IntLit{Var: v, Bound: bound}))
		return false
	}

	reasonIdx := int32(-1)
	if len(literalReason) > 0 || len(integerReason) > 0 {
		reasonIdx = int32(len(t.reasons))
		t.reasons = append(t.reasons, Reason{
			Literals:        append([]model.VarRef{}, literalReason...),
			IntegerLiterals: append([]IntLit{}, integerReason...),
		})
	}

	boolLit := NoLiteral
	if t.assoc != nil {
		if lit, has := t.assoc.AssociatedLiteral(v, canon); has {
			boolLit = lit
		}
	}

	entry := Entry{
		Var:                 v,
		Bound:               canon,
		PrevIndexForSameVar: vs.currentTrailIndex,
		ReasonIndex:         reasonIdx,
		BoolLiteral:         boolLit,
	}
	idx := int32(len(t.entries))
	t.entries = append(t.entries, entry)
	vs.currentBound = canon
	vs.currentTrailIndex = idx

	for _, w := range t.watchers {
		w.OnBoundChanged(v)
	}
	if boolLit != NoLiteral && t.bools != nil {
		t.bools.Enqueue(boolLit, reasonIdx)
	}
	return true
}

// forceLiteral is the "set is_ignored true instead" branch of the
// conflict path: it records a synthetic trail-free fact by directly
// notifying the Boolean trail, since is_ignored is a pure Boolean
// concept and does not itself occupy an integer trail entry.
func (t *Trail) forceLiteral(lit model.VarRef, integerReason []IntLit, literalReason []model.VarRef) {
	if t.bools == nil {
		return
	}
	reasonIdx := int32(-1)
	if len(literalReason) > 0 || len(integerReason) > 0 {
		reasonIdx = int32(len(t.reasons))
		t.reasons = append(t.reasons, Reason{
			Literals:        append([]model.VarRef{}, literalReason...),
			IntegerLiterals: append([]IntLit{}, integerReason...),
		})
	}
	t.bools.Enqueue(lit, reasonIdx)
}

// Untrail reverts the trail to trail index toIndex (exclusive),
// walking each entry's PrevIndexForSameVar back-pointer to restore
// each touched variable's currentBound/currentTrailIndex, then
// truncates the trail and reason arrays. Spec names the argument
// "to_level"; decision-level bookkeeping belongs to the propagator
// scheduler (spec §4.7), which is the only caller and is the one
// component that knows which trail index a level boundary began at, so
// Untrail itself only ever deals in trail indices.
func (t *Trail) Untrail(toIndex int32) {
	for i := int32(len(t.entries)) - 1; i >= toIndex; i-- {
		e := t.entries[i]
		vs := &t.vars[e.Var]
		vs.currentTrailIndex = e.PrevIndexForSameVar
		if e.PrevIndexForSameVar < 0 {
			vs.currentBound = vs.domain.Min()
		} else {
			vs.currentBound = t.entries[e.PrevIndexForSameVar].Bound
		}
	}
	reasonFloor := int32(len(t.reasons))
	if toIndex < int32(len(t.entries)) {
		for i := toIndex; i < int32(len(t.entries)); i++ {
			if t.entries[i].ReasonIndex >= 0 && t.entries[i].ReasonIndex < reasonFloor {
				reasonFloor = t.entries[i].ReasonIndex
			}
		}
	}
	t.entries = t.entries[:toIndex]
	t.reasons = t.reasons[:reasonFloor]
	for _, r := range t.reversibles {
		r.Undo(toIndex)
	}
}

// UpdateInitialDomain intersects v's static domain with d (spec's
// update_initial_domain); values that fell outside the new domain and
// had an associated equality literal get that literal fixed false
// through the Boolean trail's usual reason-free forcing path.
func (t *Trail) UpdateInitialDomain(v int32, d intervaldomain.Domain) {
	old := t.vars[v].domain
	next := old.Intersect(d)
	t.vars[v].domain = next
	if t.assoc == nil || t.bools == nil {
		return
	}
	for _, iv := range old.Intervals() {
		for val := iv.Min; val <= iv.Max; val++ {
			if next.Contains(val) {
				continue
			}
			if lit, has := t.assoc.AssociatedLiteral(v, val); has {
				t.bools.Enqueue(model.Negate(lit), -1)
			}
		}
	}
}
