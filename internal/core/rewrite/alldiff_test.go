package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func TestRewriteAllDiffRemovesEmptyConstraint(t *testing.T) {
	m := newIntModel()
	ctx := context.New(m)
	c := &model.AllDiff{}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteAllDiff(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
}

func TestRewriteAllDiffRemovesSingletonConstraint(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 5))
	ctx := context.New(m)
	c := &model.AllDiff{VarIndices: []int32{0}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteAllDiff(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
}

func TestRewriteAllDiffLeavesGenuineConstraintAlone(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 5), intervaldomain.Range(0, 5), intervaldomain.Range(0, 5))
	ctx := context.New(m)
	c := &model.AllDiff{VarIndices: []int32{0, 1, 2}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteAllDiff(ctx, idx, c)
	assert.False(t, changed)
	assert.False(t, ctx.IsCleared(idx))
}
