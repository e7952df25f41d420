package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func newCtx(d intervaldomain.Domain) *context.Context {
	m := model.NewModel()
	m.AddVariable("v", d)
	return context.New(m)
}

func TestCanonicalizeClampsAtDomainEdges(t *testing.T) {
	ctx := newCtx(intervaldomain.Range(3, 9))
	e := New(ctx)

	_, alwaysTrue, alwaysFalse := e.Canonicalize(0, 0)
	assert.True(t, alwaysTrue)
	assert.False(t, alwaysFalse)

	_, alwaysTrue, alwaysFalse = e.Canonicalize(0, 20)
	assert.False(t, alwaysTrue)
	assert.True(t, alwaysFalse)
}

func TestCanonicalizeSnapsIntoHole(t *testing.T) {
	d := intervaldomain.New(intervaldomain.Interval{Min: 0, Max: 2}, intervaldomain.Interval{Min: 10, Max: 20})
	ctx := newCtx(d)
	e := New(ctx)

	canon, alwaysTrue, alwaysFalse := e.Canonicalize(0, 5)
	assert.False(t, alwaysTrue)
	assert.False(t, alwaysFalse)
	assert.Equal(t, int64(10), canon)
}

func TestGetOrCreateAssociatedLiteralReusesExisting(t *testing.T) {
	ctx := newCtx(intervaldomain.Range(0, 10))
	e := New(ctx)

	l1 := e.GetOrCreateAssociatedLiteral(0, 4)
	l2 := e.GetOrCreateAssociatedLiteral(0, 4)
	assert.Equal(t, l1, l2)
}

func TestGetOrCreateAssociatedLiteralWiresMonotonicity(t *testing.T) {
	ctx := newCtx(intervaldomain.Range(0, 10))
	e := New(ctx)

	before := len(ctx.Working.Constraints)
	weak := e.GetOrCreateAssociatedLiteral(0, 3)
	strong := e.GetOrCreateAssociatedLiteral(0, 7)
	assert.NotEqual(t, weak, strong)
	assert.Greater(t, len(ctx.Working.Constraints), before)

	// A middling bound must be sandwiched between the two: it implies
	// the weaker one, and the stronger one implies it.
	mid := e.GetOrCreateAssociatedLiteral(0, 5)
	assert.Equal(t, []int64{3, 5, 7}, e.PartialDomainEncoding(0))
	assert.NotEqual(t, mid, weak)
	assert.NotEqual(t, mid, strong)
}

func TestGetOrCreateAssociatedLiteralOutsideDomainReturnsSharedTrue(t *testing.T) {
	ctx := newCtx(intervaldomain.Range(0, 10))
	e := New(ctx)

	belowMin := e.GetOrCreateAssociatedLiteral(0, -5)
	aboveMax := e.GetOrCreateAssociatedLiteral(0, 100)
	assert.Equal(t, belowMin, model.Negate(aboveMax))
}

func TestFullyEncodeVariableCreatesOneEqualityPerValue(t *testing.T) {
	ctx := newCtx(intervaldomain.Range(0, 3))
	e := New(ctx)

	e.FullyEncodeVariable(0)

	assert.Len(t, e.equals, 4)
}

func TestAssociatedLiteralOnlyLooksUpNeverCreates(t *testing.T) {
	ctx := newCtx(intervaldomain.Range(0, 10))
	e := New(ctx)

	_, ok := e.AssociatedLiteral(0, 5)
	assert.False(t, ok)

	lit := e.GetOrCreateAssociatedLiteral(0, 5)
	found, ok := e.AssociatedLiteral(0, 5)
	assert.True(t, ok)
	assert.Equal(t, lit, found)
}

func TestNewlyFixedBatchesGeLiteralFixes(t *testing.T) {
	ctx := newCtx(intervaldomain.Range(0, 10))
	e := New(ctx)
	lit := e.GetOrCreateAssociatedLiteral(0, 4)

	assert.Empty(t, e.DrainNewlyFixed())

	e.NotifyLiteralFixed(lit)
	batch := e.DrainNewlyFixed()
	assert.Equal(t, []IntLit{{Var: 0, Bound: 4}}, batch)
	assert.Empty(t, e.DrainNewlyFixed(), "draining clears the pending batch")
}
