package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func TestRewriteIntervalEnforcesStartSizeEnd(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 10), intervaldomain.Single(3), intervaldomain.Range(0, 20))
	ctx := context.New(m)
	c := &model.IntervalConstraint{Start: 0, Size: 1, End: 2}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteInterval(ctx, idx, c)
	assert.True(t, changed)
	assert.Equal(t, int64(3), ctx.MinOf(2))
	assert.Equal(t, int64(13), ctx.MaxOf(2))
}

func TestRewriteElementRestrictsIndexAndInfersTarget(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 5), intervaldomain.Range(0, 100), intervaldomain.Single(7), intervaldomain.Single(9))
	ctx := context.New(m)
	c := &model.Element{Index: 0, Target: 1, Options: []int32{2, 3}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteElement(ctx, idx, c)
	assert.True(t, changed)
	assert.Equal(t, int64(0), ctx.MinOf(0))
	assert.Equal(t, int64(1), ctx.MaxOf(0))
	assert.Equal(t, int64(7), ctx.MinOf(1))
	assert.Equal(t, int64(9), ctx.MaxOf(1))
}

func TestRewriteElementMovesAllConstantToMapping(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 1), intervaldomain.Range(0, 10), intervaldomain.Single(4), intervaldomain.Single(4))
	ctx := context.New(m)
	c := &model.Element{Index: 0, Target: 1, Options: []int32{2, 3}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteElement(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
	assert.Len(t, ctx.Mapping.Constraints, 1)
}

func TestRewriteTableDropsRowsOutsideDomain(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 2), intervaldomain.Range(0, 2))
	ctx := context.New(m)
	c := &model.Table{Cols: []int32{0, 1}, Tuples: [][]int64{{0, 0}, {1, 1}, {5, 5}}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteTable(ctx, idx, c)
	assert.True(t, changed)
	assert.Len(t, c.Tuples, 2)
}

func TestRewriteNoOverlapDeletesSingleton(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 10))
	ctx := context.New(m)
	c := &model.NoOverlap{Intervals: []int32{0}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteNoOverlap(ctx, idx, c)
	assert.True(t, changed)
	assert.False(t, rerun)
	assert.True(t, ctx.IsCleared(idx))
}

func TestRewriteCumulativeDegeneratesToNoOverlap(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 10), intervaldomain.Range(0, 10), intervaldomain.Single(6), intervaldomain.Single(7))
	ctx := context.New(m)
	c := &model.Cumulative{Intervals: []int32{0, 1}, Demands: []int32{2, 3}, Capacity: 10}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteCumulative(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, rerun)
	_, ok := ctx.Working.Constraints[idx].(*model.NoOverlap)
	assert.True(t, ok)
}

func TestRewriteCircuitForcesDegreeOneArcTrue(t *testing.T) {
	m := newBoolModel(2)
	ctx := context.New(m)
	c := &model.Circuit{Arcs: []model.CircuitArc{
		{Tail: 10, Head: 11, Literal: model.VarRef(0)},
		{Tail: 11, Head: 10, Literal: model.VarRef(1)},
	}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteCircuit(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.LiteralIsTrue(model.VarRef(0)))
	assert.True(t, ctx.LiteralIsTrue(model.VarRef(1)))
}

func TestRewriteCircuitDetectsDeadNode(t *testing.T) {
	m := newBoolModel(2)
	ctx := context.New(m)
	ctx.SetLiteralFalse(model.VarRef(0))
	c := &model.Circuit{Arcs: []model.CircuitArc{
		{Tail: 10, Head: 11, Literal: model.VarRef(0)},
		{Tail: 11, Head: 12, Literal: model.VarRef(1)},
	}}
	idx := ctx.AddWorkingConstraint(c)

	rewriteCircuit(ctx, idx, c)
	assert.True(t, ctx.IsUnsat())
}
