package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddUsageIsBidirectional(t *testing.T) {
	assert := assert.New(t)

	g := New()
	g.AddUsage(1, 100)
	g.AddUsage(2, 100)
	g.AddUsage(1, 200)

	assert.ElementsMatch([]int32{100, 200}, g.ConstraintsUsing(1))
	assert.ElementsMatch([]int32{100}, g.ConstraintsUsing(2))
	assert.ElementsMatch([]int32{1, 2}, g.VariablesIn(100))
	assert.ElementsMatch([]int32{1}, g.VariablesIn(200))
}

func TestRemoveConstraintClearsBothSides(t *testing.T) {
	assert := assert.New(t)

	g := New()
	g.AddUsage(1, 100)
	g.AddUsage(2, 100)
	g.RemoveConstraint(100)

	assert.Empty(g.ConstraintsUsing(1))
	assert.Empty(g.ConstraintsUsing(2))
	assert.Empty(g.VariablesIn(100))
}

func TestRemoveVariableClearsBothSides(t *testing.T) {
	assert := assert.New(t)

	g := New()
	g.AddUsage(1, 100)
	g.AddUsage(1, 200)
	g.RemoveVariable(1)

	assert.Empty(g.ConstraintsUsing(1))
	assert.Empty(g.VariablesIn(100))
	assert.Empty(g.VariablesIn(200))
}

func TestNumConstraintsUsing(t *testing.T) {
	assert := assert.New(t)

	g := New()
	g.AddUsage(1, 100)
	g.AddUsage(1, 200)
	assert.Equal(2, g.NumConstraintsUsing(1))
	assert.Equal(0, g.NumConstraintsUsing(99))
}

func TestRemoveUsageSingleEdge(t *testing.T) {
	assert := assert.New(t)

	g := New()
	g.AddUsage(1, 100)
	g.AddUsage(1, 200)
	g.RemoveUsage(1, 100)

	assert.ElementsMatch([]int32{200}, g.ConstraintsUsing(1))
	assert.Empty(g.VariablesIn(100))
}
