package rewrite

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func TestRewriteLinearFoldsFixedVariableIntoRHS(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 10), intervaldomain.Single(3))
	ctx := context.New(m)
	c := &model.Linear{VarIndices: []int32{0, 1}, Coeffs: []int64{1, 2}, Domain: []model.Interval64{{Min: 0, Max: 10}}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteLinear(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
	assert.Equal(t, int64(0), ctx.MinOf(0))
	assert.Equal(t, int64(4), ctx.MaxOf(0))
}

func TestRewriteLinearDividesByGCD(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 10), intervaldomain.Range(0, 10))
	ctx := context.New(m)
	c := &model.Linear{VarIndices: []int32{0, 1}, Coeffs: []int64{4, 6}, Domain: []model.Interval64{{Min: 0, Max: 20}}}
	idx := ctx.AddWorkingConstraint(c)

	rewriteLinear(ctx, idx, c)
	lin, ok := ctx.Working.Constraints[idx].(*model.Linear)
	if ok {
		assert.Equal(t, []int64{2, 3}, lin.Coeffs)
	}
}

func TestRewriteLinearSingletonCollapsesToDomainBound(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 100))
	ctx := context.New(m)
	c := &model.Linear{VarIndices: []int32{0}, Coeffs: []int64{2}, Domain: []model.Interval64{{Min: 0, Max: 10}}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteLinear(ctx, idx, c)
	assert.True(t, changed)
	assert.False(t, rerun)
	assert.True(t, ctx.IsCleared(idx))
	assert.Equal(t, int64(0), ctx.MinOf(0))
	assert.Equal(t, int64(5), ctx.MaxOf(0))
}

func TestRewriteLinearEmptyUnsatWhenZeroOutsideRHS(t *testing.T) {
	m := newIntModel()
	ctx := context.New(m)
	c := &model.Linear{Domain: []model.Interval64{{Min: 5, Max: 10}}}
	idx := ctx.AddWorkingConstraint(c)

	rewriteLinear(ctx, idx, c)
	assert.True(t, ctx.IsUnsat())
}

func TestRewriteLinearExtractsAffineRelation(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 10), intervaldomain.Range(0, 10))
	ctx := context.New(m)
	c := &model.Linear{VarIndices: []int32{0, 1}, Coeffs: []int64{1, -1}, Domain: []model.Interval64{{Min: 0, Max: 0}}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteLinear(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
	rel := ctx.AffineRepository().Find(0)
	assert.Equal(t, ctx.AffineRepository().Find(1).Representative, rel.Representative)
}

func TestRewriteLinearExpandsSmallAllBoolean(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1))
	ctx := context.New(m)
	c := &model.Linear{VarIndices: []int32{0, 1, 2}, Coeffs: []int64{1, 1, 1}, Domain: []model.Interval64{{Min: 1, Max: 1}}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteLinear(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
	assert.Greater(t, len(ctx.Working.Constraints), 1)
}

// x0+x0+...+x4 == 0 over Booleans forces every variable false
// regardless of how many variables there are, so this must be caught
// by the reified-and margin check rather than falling through to the
// <=3 enumeration fallback.
func TestRewriteLinearDetectsNegativeReifiedAndAboveEnumerationSize(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1))
	ctx := context.New(m)
	c := &model.Linear{VarIndices: []int32{0, 1, 2, 3, 4}, Coeffs: []int64{1, 1, 1, 1, 1}, Domain: []model.Interval64{{Min: 0, Max: 0}}}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteLinear(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
	require.Len(t, ctx.Working.Constraints, 2)
	band, ok := ctx.Working.Constraints[1].(*model.BoolAnd)
	require.True(t, ok)
	for _, lit := range band.Literals {
		assert.True(t, lit.IsNegated())
	}
}

// x0+x1+x2+x3+x4 >= 1 over Booleans is an at-least-one shortcut
// regardless of size, matching spec §4.2 step 8's bool_or bullet.
func TestRewriteLinearDetectsPositiveClauseAboveEnumerationSize(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1))
	ctx := context.New(m)
	c := &model.Linear{
		VarIndices: []int32{0, 1, 2, 3, 4},
		Coeffs:     []int64{1, 1, 1, 1, 1},
		Domain:     []model.Interval64{{Min: 1, Max: math.MaxInt64}},
	}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteLinear(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
	require.Len(t, ctx.Working.Constraints, 2)
	bor, ok := ctx.Working.Constraints[1].(*model.BoolOr)
	require.True(t, ok)
	assert.Len(t, bor.Literals, 5)
	for _, lit := range bor.Literals {
		assert.False(t, lit.IsNegated())
	}
}

// x0+x1+x2+x3 <= 1 with an unbounded lower side is a tight-margin
// at-most-one regardless of size.
func TestRewriteLinearDetectsAtMostOneMarginAboveEnumerationSize(t *testing.T) {
	m := newIntModel(intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1), intervaldomain.Range(0, 1))
	ctx := context.New(m)
	c := &model.Linear{
		VarIndices: []int32{0, 1, 2, 3},
		Coeffs:     []int64{1, 1, 1, 1},
		Domain:     []model.Interval64{{Min: math.MinInt64, Max: 1}},
	}
	idx := ctx.AddWorkingConstraint(c)

	changed, _ := rewriteLinear(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, ctx.IsCleared(idx))
	require.Len(t, ctx.Working.Constraints, 2)
	amo, ok := ctx.Working.Constraints[1].(*model.AtMostOne)
	require.True(t, ok)
	assert.Len(t, amo.Literals, 4)
}
