// Package scheduler implements spec §4.7's Propagator Scheduler: a
// multi-priority worklist that dispatches registered propagators to a
// fixpoint, driven by the literal and bound-change notifications
// internal/core/trail emits. Scheduler implements all three
// interfaces that package defines for exactly this purpose:
// trail.Watcher, trail.BooleanTrail, and trail.Reversible.
package scheduler

import (
	"sort"

	"github.com/cp-hybrid/presolve/pkg/model"
)

// Propagator is one registered constraint propagator. Propagate is
// invoked with the watch indices queued since its last run (nil for a
// full run, matching spec's "run incremental propagate if any watch
// indices are queued, else full propagate").
type Propagator interface {
	Priority() int
	Idempotent() bool
	Propagate(watchIndices []int32) Outcome
}

// Outcome reports what a single Propagate call accomplished, driving
// the scheduler's priority-restart and SAT-handoff rules.
type Outcome struct {
	OK                 bool
	IntegerBoundPushed bool
	BooleanPushed      bool
}

type watchEntry struct {
	propagatorID int32
	watchIndex   int32 // -1 if this propagator has no incremental watch index for the trigger
}

type propState struct {
	prop                Propagator
	priority            int
	idempotent          bool
	inQueue             bool
	queuedWatchIndices  []int32
	levelAtLastCall     int32
	greatestCommonLevel int32
}

// Scheduler is the mutable dispatcher. It is not safe for concurrent
// use; the presolve/search driver serializes access to it, same as
// internal/core/trail.
type Scheduler struct {
	props        []*propState
	literalWatch map[model.VarRef][]watchEntry
	varWatch     map[int32][]watchEntry
	queues       map[int]*fifo
	priorities   []int // ascending, deduplicated

	level int32
}

// New builds an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		literalWatch: make(map[model.VarRef][]watchEntry),
		varWatch:     make(map[int32][]watchEntry),
		queues:       make(map[int]*fifo),
	}
}

// Register adds a propagator watching the given literals/variables,
// each optionally paired with a watch index (parallel slices; pass
// nil for a trigger with no incremental index, meaning any queued
// activation always forces a full propagate). Returns the
// propagator's internal id.
func (s *Scheduler) Register(p Propagator, literals []model.VarRef, literalWatchIdx []int32, vars []int32, varWatchIdx []int32) int32 {
	id := int32(len(s.props))
	ps := &propState{prop: p, priority: p.Priority(), idempotent: p.Idempotent()}
	s.props = append(s.props, ps)
	s.ensurePriorityQueue(ps.priority)

	for i, lit := range literals {
		idx := int32(-1)
		if i < len(literalWatchIdx) {
			idx = literalWatchIdx[i]
		}
		s.literalWatch[lit] = append(s.literalWatch[lit], watchEntry{propagatorID: id, watchIndex: idx})
	}
	for i, v := range vars {
		idx := int32(-1)
		if i < len(varWatchIdx) {
			idx = varWatchIdx[i]
		}
		s.varWatch[v] = append(s.varWatch[v], watchEntry{propagatorID: id, watchIndex: idx})
	}
	return id
}

func (s *Scheduler) ensurePriorityQueue(priority int) {
	if _, ok := s.queues[priority]; ok {
		return
	}
	s.queues[priority] = newFIFO()
	s.priorities = append(s.priorities, priority)
	sort.Ints(s.priorities)
}

func (s *Scheduler) enqueue(id int32, watchIndex int32) {
	ps := s.props[id]
	if watchIndex >= 0 {
		ps.queuedWatchIndices = append(ps.queuedWatchIndices, watchIndex)
	}
	if ps.inQueue {
		return
	}
	ps.inQueue = true
	s.queues[ps.priority].push(id)
}

// Enqueue implements trail.BooleanTrail: propagators watching lit get
// queued at their priority (spec's "for every newly assigned
// Boolean... enqueue the registered propagators"). reasonIndex is
// accepted for interface conformance; the scheduler itself has no use
// for it, since it dispatches propagators, not conflict analysis.
func (s *Scheduler) Enqueue(lit model.VarRef, reasonIndex int32) {
	_ = reasonIndex
	for _, e := range s.literalWatch[lit] {
		s.enqueue(e.propagatorID, e.watchIndex)
	}
}

// OnBoundChanged implements trail.Watcher: propagators watching v get
// queued at their priority.
func (s *Scheduler) OnBoundChanged(v int32) {
	for _, e := range s.varWatch[v] {
		s.enqueue(e.propagatorID, e.watchIndex)
	}
}

// Propagate drains the multi-priority queue, ascending by priority,
// to a fixpoint. Whenever a run pushes an integer bound, dispatch
// restarts from priority 0, since a lower-priority propagator may now
// have new work available to it (spec's "if any integer bound was
// pushed, restart at priority 0"). Whenever a run pushes a Boolean,
// Propagate returns immediately without draining further -- Boolean
// propagation runs at strictly higher priority than this dispatcher
// and must regain control first (spec's "return control to the SAT
// propagators"). Returns false on the first propagator failure.
func (s *Scheduler) Propagate() bool {
restart:
	for _, priority := range s.priorities {
		q := s.queues[priority]
		for {
			id, ok := q.pop()
			if !ok {
				break
			}
			ps := s.props[id]
			if !ps.inQueue {
				continue
			}

			if s.level != ps.levelAtLastCall {
				s.reconcileLevel(ps)
			}

			watch := ps.queuedWatchIndices
			ps.queuedWatchIndices = nil

			outcome := ps.prop.Propagate(watch)
			if !outcome.OK {
				ps.inQueue = false
				ps.queuedWatchIndices = nil
				return false
			}

			if ps.idempotent {
				// A self-triggered activation during this very call
				// must still be seen before the bit clears.
				if len(ps.queuedWatchIndices) > 0 {
					q.push(id)
				} else {
					ps.inQueue = false
				}
			} else {
				ps.inQueue = false
			}

			if outcome.BooleanPushed {
				return true
			}
			if outcome.IntegerBoundPushed {
				goto restart
			}
		}
	}
	return true
}

func (s *Scheduler) reconcileLevel(ps *propState) {
	// A full checkpoint/restore of arbitrary reversible dependencies
	// per spec's "notify each reversible dependency by the pair
	// (low, high)" needs a registry of those dependencies this
	// implementation does not carry (propagators own their own
	// reversible scratch state directly and are responsible for
	// consulting the trail themselves); here reconciliation is
	// narrowed to the scheduler's own per-propagator level cursor.
	ps.levelAtLastCall = s.level
	if s.level > ps.greatestCommonLevel {
		ps.greatestCommonLevel = s.level
	}
}

// Undo implements trail.Reversible: every queue entry and queued watch
// index is dropped (the registered watches stay), in_queue is reset,
// and each propagator's
// greatest-common-level-since-last-call is clamped down (spec's
// untrail()). This implementation reuses the trail index Untrail
// rewinds to directly as the level surrogate, since a separate
// decision-level table is out of scope; see DESIGN.md.
func (s *Scheduler) Undo(toIndex int32) {
	s.level = toIndex
	for _, ps := range s.props {
		ps.inQueue = false
		ps.queuedWatchIndices = nil
		if ps.greatestCommonLevel > toIndex {
			ps.greatestCommonLevel = toIndex
		}
	}
	for _, priority := range s.priorities {
		s.queues[priority] = newFIFO()
	}
}
