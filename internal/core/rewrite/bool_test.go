package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func newBoolModel(n int) *model.Model {
	m := model.NewModel()
	for i := 0; i < n; i++ {
		m.AddVariable("b", intervaldomain.Range(0, 1))
	}
	return m
}

func TestRewriteBoolOrDropsFixedFalseLiterals(t *testing.T) {
	m := newBoolModel(3)
	ctx := context.New(m)
	ctx.SetLiteralFalse(model.VarRef(0))
	// anchor 1 and 2 in a second constraint so the removable-singleton
	// rule doesn't short-circuit this test before the fixed-false drop
	// is exercised on its own. The two surviving literals then turn the
	// clause into an implication, which asks for a rerun.
	ctx.AddWorkingConstraint(&model.AtMostOne{Literals: []model.VarRef{1, 2}})
	c := &model.BoolOr{Literals: []model.VarRef{0, 1, 2}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteBoolOr(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, rerun)
	assert.ElementsMatch(t, []model.VarRef{1, 2}, c.Literals)
}

func TestRewriteBoolOrSatisfiedByFixedTrueLiteral(t *testing.T) {
	m := newBoolModel(2)
	ctx := context.New(m)
	ctx.SetLiteralTrue(model.VarRef(0))
	c := &model.BoolOr{Literals: []model.VarRef{0, 1}}
	idx := ctx.AddWorkingConstraint(c)

	rewriteBoolOr(ctx, idx, c)
	assert.True(t, ctx.IsCleared(idx))
}

func TestRewriteBoolOrUnitPropagatesSingleton(t *testing.T) {
	m := newBoolModel(2)
	ctx := context.New(m)
	ctx.SetLiteralFalse(model.VarRef(0))
	c := &model.BoolOr{Literals: []model.VarRef{0, 1}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteBoolOr(ctx, idx, c)
	assert.True(t, changed)
	assert.False(t, rerun)
	assert.True(t, ctx.IsCleared(idx))
	assert.True(t, ctx.LiteralIsTrue(model.VarRef(1)))
}

func TestRewriteBoolOrEmptyClauseIsUnsat(t *testing.T) {
	m := newBoolModel(1)
	ctx := context.New(m)
	ctx.SetLiteralFalse(model.VarRef(0))
	c := &model.BoolOr{Literals: []model.VarRef{0}}
	idx := ctx.AddWorkingConstraint(c)

	rewriteBoolOr(ctx, idx, c)
	assert.True(t, ctx.IsUnsat())
}

func TestRewriteBoolOrPullsInEnforcementNegated(t *testing.T) {
	m := newBoolModel(3)
	ctx := context.New(m)
	ctx.AddWorkingConstraint(&model.AtMostOne{Literals: []model.VarRef{0, 1, 2}})
	c := &model.BoolOr{Literals: []model.VarRef{0}, Enforced: []model.VarRef{1, 2}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteBoolOr(ctx, idx, c)
	assert.True(t, changed)
	assert.False(t, rerun)
	assert.False(t, ctx.IsCleared(idx))
	assert.Empty(t, c.Enforced)
	assert.ElementsMatch(t, []model.VarRef{0, model.Negate(1), model.Negate(2)}, c.Literals)
}

func TestRewriteBoolOrBinaryBecomesImplication(t *testing.T) {
	m := newBoolModel(2)
	ctx := context.New(m)
	ctx.AddWorkingConstraint(&model.AtMostOne{Literals: []model.VarRef{0, 1}})
	c := &model.BoolOr{Literals: []model.VarRef{0, 1}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteBoolOr(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, rerun)
	and, ok := ctx.Working.Constraints[idx].(*model.BoolAnd)
	assert.True(t, ok)
	assert.Equal(t, []model.VarRef{model.Negate(0)}, and.Enforced)
	assert.Equal(t, []model.VarRef{1}, and.Literals)
}

func TestRewriteBoolAndUnconditionalPropagatesLiterals(t *testing.T) {
	m := newBoolModel(2)
	ctx := context.New(m)
	c := &model.BoolAnd{Literals: []model.VarRef{0, 1}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteBoolAnd(ctx, idx, c)
	assert.True(t, changed)
	assert.False(t, rerun)
	assert.True(t, ctx.IsCleared(idx))
	assert.True(t, ctx.LiteralIsTrue(model.VarRef(0)))
	assert.True(t, ctx.LiteralIsTrue(model.VarRef(1)))
}

func TestRewriteBoolAndEnforcedFalseLiteralBecomesBoolOr(t *testing.T) {
	m := newBoolModel(3)
	ctx := context.New(m)
	ctx.SetLiteralFalse(model.VarRef(1))
	c := &model.BoolAnd{Literals: []model.VarRef{1}, Enforced: []model.VarRef{0, 2}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteBoolAnd(ctx, idx, c)
	assert.True(t, changed)
	assert.True(t, rerun)
	or, ok := ctx.Working.Constraints[idx].(*model.BoolOr)
	assert.True(t, ok)
	assert.ElementsMatch(t, []model.VarRef{model.Negate(0), model.Negate(2)}, or.Literals)
}

func TestRewriteAtMostOneResolvesOnFixedTrueLiteral(t *testing.T) {
	m := newBoolModel(3)
	ctx := context.New(m)
	ctx.SetLiteralTrue(model.VarRef(0))
	c := &model.AtMostOne{Literals: []model.VarRef{0, 1, 2}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteAtMostOne(ctx, idx, c)
	assert.True(t, changed)
	assert.False(t, rerun)
	assert.True(t, ctx.IsCleared(idx))
	assert.True(t, ctx.LiteralIsFalse(model.VarRef(1)))
	assert.True(t, ctx.LiteralIsFalse(model.VarRef(2)))
}

func TestRewriteAtMostOneTriviallySatisfiedWithOneLiteral(t *testing.T) {
	m := newBoolModel(2)
	ctx := context.New(m)
	c := &model.AtMostOne{Literals: []model.VarRef{0}}
	idx := ctx.AddWorkingConstraint(c)

	changed, rerun := rewriteAtMostOne(ctx, idx, c)
	assert.True(t, changed)
	assert.False(t, rerun)
	assert.True(t, ctx.IsCleared(idx))
}
