package presolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

func TestRunCompactsAFixedChain(t *testing.T) {
	m := model.NewModel()
	a := m.AddVariable("a", intervaldomain.Single(5))
	b := m.AddVariable("b", intervaldomain.Range(0, 10))
	m.AddConstraint(&model.Linear{
		VarIndices: []int32{a, b},
		Coeffs:     []int64{1, -1},
		Domain:     []model.Interval64{{Min: 0, Max: 0}},
	})

	result, err := Run(DefaultOptions(), m)
	require.NoError(t, err)
	assert.False(t, result.Unsat)
	assert.Nil(t, result.Stats, "Stats stays nil unless LogInfo is set")
}

func TestRunDetectsInfeasibility(t *testing.T) {
	m := model.NewModel()
	m.AddVariable("a", intervaldomain.Single(1))
	m.AddConstraint(&model.BoolOr{Literals: []model.VarRef{model.Negate(model.VarRef(0))}})

	result, err := Run(DefaultOptions(), m)
	require.NoError(t, err)
	assert.True(t, result.Unsat)
}

func TestRunWithLogInfoPopulatesStats(t *testing.T) {
	m := model.NewModel()
	a := m.AddVariable("a", intervaldomain.Range(0, 10))
	m.AddConstraint(&model.Linear{
		VarIndices: []int32{a},
		Coeffs:     []int64{2},
		Domain:     []model.Interval64{{Min: 4, Max: 4}},
	})

	result, err := Run(Options{LogInfo: true}, m)
	require.NoError(t, err)
	assert.NotNil(t, result.Stats)
}

func TestRunRejectsInvalidInputModel(t *testing.T) {
	m := model.NewModel()
	m.AddConstraint(&model.BoolOr{Literals: []model.VarRef{model.VarRef(99)}})

	_, err := Run(DefaultOptions(), m)
	assert.Error(t, err)
}
