package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cp-hybrid/presolve/pkg/model"
)

type stubProp struct {
	priority   int
	idempotent bool
	calls      [][]int32
	outcomes   []Outcome
}

func (p *stubProp) Priority() int    { return p.priority }
func (p *stubProp) Idempotent() bool { return p.idempotent }
func (p *stubProp) Propagate(watch []int32) Outcome {
	p.calls = append(p.calls, watch)
	if len(p.outcomes) == 0 {
		return Outcome{OK: true}
	}
	o := p.outcomes[0]
	p.outcomes = p.outcomes[1:]
	return o
}

func TestBoundChangeEnqueuesWatchingPropagator(t *testing.T) {
	s := New()
	p := &stubProp{priority: 1}
	s.Register(p, nil, nil, []int32{5}, []int32{2})

	s.OnBoundChanged(5)
	ok := s.Propagate()

	assert.True(t, ok)
	assert.Len(t, p.calls, 1)
	assert.Equal(t, []int32{2}, p.calls[0])
}

func TestLiteralFixEnqueuesWatchingPropagator(t *testing.T) {
	s := New()
	p := &stubProp{priority: 1}
	s.Register(p, []model.VarRef{model.VarRef(3)}, []int32{0}, nil, nil)

	s.Enqueue(model.VarRef(3), -1)
	ok := s.Propagate()

	assert.True(t, ok)
	assert.Len(t, p.calls, 1)
}

func TestPropagateFailurePropagatesFalse(t *testing.T) {
	s := New()
	p := &stubProp{priority: 1, outcomes: []Outcome{{OK: false}}}
	s.Register(p, nil, nil, []int32{0}, []int32{0})

	s.OnBoundChanged(0)
	ok := s.Propagate()

	assert.False(t, ok)
}

func TestIntegerBoundPushRestartsAtLowestPriority(t *testing.T) {
	s := New()
	low := &stubProp{priority: 0}
	high := &stubProp{priority: 5, outcomes: []Outcome{{OK: true, IntegerBoundPushed: true}}}
	s.Register(low, nil, nil, []int32{1}, []int32{0})
	s.Register(high, nil, nil, []int32{2}, []int32{0})

	// Only the high-priority propagator starts queued; its outcome
	// should cause a fresh sweep from priority 0, but nothing new was
	// enqueued for `low`, so it should still see zero calls.
	s.OnBoundChanged(2)
	ok := s.Propagate()

	assert.True(t, ok)
	assert.Len(t, high.calls, 1)
	assert.Len(t, low.calls, 0)
}

func TestBooleanPushStopsDispatchImmediately(t *testing.T) {
	s := New()
	first := &stubProp{priority: 0, outcomes: []Outcome{{OK: true, BooleanPushed: true}}}
	second := &stubProp{priority: 1}
	s.Register(first, nil, nil, []int32{0}, []int32{0})
	s.Register(second, nil, nil, []int32{1}, []int32{0})

	s.OnBoundChanged(0)
	s.OnBoundChanged(1)
	ok := s.Propagate()

	assert.True(t, ok)
	assert.Len(t, first.calls, 1)
	assert.Len(t, second.calls, 0, "priority-1 propagator must wait for the SAT layer to run first")
}

func TestIdempotentPropagatorSeesSelfTriggeredWatch(t *testing.T) {
	s := New()
	p := &stubProp{priority: 0, idempotent: true}
	s.Register(p, nil, nil, []int32{0}, []int32{7})

	s.OnBoundChanged(0)
	// Simulate the propagator itself re-triggering its own watch
	// during the call by re-enqueuing before Propagate observes
	// queuedWatchIndices is empty: here we just verify a second
	// explicit trigger before draining is honored in one pass.
	s.OnBoundChanged(0)
	ok := s.Propagate()

	assert.True(t, ok)
	assert.Len(t, p.calls, 1)
	assert.Equal(t, []int32{7, 7}, p.calls[0])
}

func TestUndoClearsQueuesAndWatchIndices(t *testing.T) {
	s := New()
	p := &stubProp{priority: 0}
	s.Register(p, nil, nil, []int32{0}, []int32{4})
	s.OnBoundChanged(0)

	s.Undo(3)
	ok := s.Propagate()

	assert.True(t, ok)
	assert.Len(t, p.calls, 0, "Undo must drop the queue entirely")
}
