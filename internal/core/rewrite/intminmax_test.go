package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func newIntModel(domains ...intervaldomain.Domain) *model.Model {
	m := model.NewModel()
	for _, d := range domains {
		m.AddVariable("v", d)
	}
	return m
}

func TestRewriteIntMaxCollapsesSingletonToLinear(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 10), intervaldomain.Range(0, 5))
	ctx := context.New(m)
	c := &model.IntMax{Target: 0, Exprs: []model.LinearExpr{{Vars: []int32{1}, Coeffs: []int64{1}}}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteIntMax(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, rerun)
	lin, ok := ctx.Working.Constraints[idx].(*model.Linear)
	assert.True(t, ok)
	assert.Equal(t, []int32{0, 1}, lin.VarIndices)
}

func TestRewriteIntMaxDropsDominatedArgument(t *testing.T) {
	m := newIntModel(intervaldomain.Range(5, 5), intervaldomain.Range(0, 2), intervaldomain.Range(0, 10))
	ctx := context.New(m)
	c := &model.IntMax{Target: 0, Exprs: []model.LinearExpr{
		{Vars: []int32{1}, Coeffs: []int64{1}},
		{Vars: []int32{2}, Coeffs: []int64{1}},
	}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteIntMax(ctx, idx, c)
	assert.True(t, changed)
	if lin, ok := ctx.Working.Constraints[idx].(*model.Linear); ok {
		assert.Equal(t, []int32{0, 2}, lin.VarIndices)
	}
}

func TestRewriteIntMaxEmptyIsUnsat(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 10))
	ctx := context.New(m)
	c := &model.IntMax{Target: 0, Exprs: nil}
	idx := ctx.AddWorkingConstraint(c)

	rewriteIntMax(ctx, idx, c)
	assert.True(t, ctx.IsUnsat())
}

func TestRewriteIntProdFixedFactorCollapsesToLinear(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 100), intervaldomain.Single(3), intervaldomain.Range(0, 10))
	ctx := context.New(m)
	c := &model.IntProd{Target: 0, Factors: []int32{1, 2}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteIntProd(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, rerun)
	lin, ok := ctx.Working.Constraints[idx].(*model.Linear)
	assert.True(t, ok)
	assert.Equal(t, []int64{1, -3}, lin.Coeffs)
}

func TestRewriteIntProdAllBooleanExpandsToBoolAndOr(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1))
	ctx := context.New(m)
	c := &model.IntProd{Target: 0, Factors: []int32{1, 2}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteIntProd(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, rerun)
	and, ok := ctx.Working.Constraints[idx].(*model.BoolAnd)
	assert.True(t, ok)
	assert.Equal(t, []model.VarRef{model.VarRef(0)}, and.Enforced)
}

func TestRewriteIntDivTightensFromFixedDivisor(t *testing.T) {
	m := newIntModel(intervaldomain.Range(-100, 100), intervaldomain.Range(10, 20), intervaldomain.Single(5))
	ctx := context.New(m)
	c := &model.IntDiv{Target: 0, Num: 1, Denom: 2}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteIntDiv(ctx, idx, c)
	assert.True(t, changed)
	assert.False(t, rerun)
	assert.Equal(t, int64(2), ctx.MinOf(0))
	assert.Equal(t, int64(4), ctx.MaxOf(0))
}

func TestRewriteIntDivByZeroIsUnsat(t *testing.T) {
	m := newIntModel(intervaldomain.Range(-100, 100), intervaldomain.Range(10, 20), intervaldomain.Single(0))
	ctx := context.New(m)
	c := &model.IntDiv{Target: 0, Num: 1, Denom: 2}
	idx := ctx.AddWorkingConstraint(c)

	rewriteIntDiv(ctx, idx, c)
	assert.True(t, ctx.IsUnsat())
}
