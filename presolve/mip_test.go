package presolve

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optkit/optkit/model"
)

var nop = zerolog.Nop()

func TestRemoveNearZeroTerms(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{
			{LowerBound: 0, UpperBound: 10},
			{LowerBound: 0, UpperBound: 10},
		},
		Constraints: []model.Constraint{
			{LowerBound: 0, UpperBound: 5, VarIndex: []int{0, 1}, Coefficient: []float64{1, 1e-12}},
		},
	}
	var stack Stack
	removed := RemoveNearZeroTerms(m, &stack, nop)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []int{0}, m.Constraints[0].VarIndex)
	assert.Equal(t, 1, stack.Len())

	// nothing left to remove, no transform pushed
	assert.Equal(t, 0, RemoveNearZeroTerms(m, &stack, nop))
	assert.Equal(t, 1, stack.Len())
}

func TestIntegralizeBounds(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{
			{LowerBound: 0.4, UpperBound: 3.7, IsInteger: true},
			{LowerBound: 0.4, UpperBound: 3.7},
		},
	}
	var stack Stack
	require.NoError(t, IntegralizeBounds(m, &stack, nop))
	assert.Equal(t, 1.0, m.Variables[0].LowerBound)
	assert.Equal(t, 3.0, m.Variables[0].UpperBound)
	// continuous variable untouched
	assert.Equal(t, 0.4, m.Variables[1].LowerBound)

	empty := &model.Model{
		Variables: []model.Variable{{LowerBound: 0.3, UpperBound: 0.3, IsInteger: true}},
	}
	err := IntegralizeBounds(empty, &stack, nop)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyIntegerDomain)
	assert.Contains(t, err.Error(), "empty integer domain")
}

func TestMIPPresolveFixedVariableSubstitution(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{
			{LowerBound: 3, UpperBound: 3, ObjectiveCoefficient: 2}, // fixed to 3
			{LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1},
			{LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1},
		},
		Constraints: []model.Constraint{
			// x0 + x1 + x2 <= 9 becomes x1 + x2 <= 6
			{LowerBound: math.Inf(-1), UpperBound: 9, VarIndex: []int{0, 1, 2}, Coefficient: []float64{1, 1, 1}},
		},
	}
	var stack Stack
	st := ApplyMIPPresolve(m, &stack, nop)
	require.Equal(t, StatusOK, st)

	assert.Len(t, m.Variables, 2)
	assert.Equal(t, 6.0, m.Constraints[0].UpperBound)
	assert.Equal(t, []int{0, 1}, m.Constraints[0].VarIndex)
	assert.Equal(t, 6.0, m.ObjectiveOffset)

	// postsolve reinserts the fixed value in front
	got := stack.Postsolve([]float64{4, 2})
	assert.Equal(t, []float64{3, 4, 2}, got)
}

func TestMIPPresolveSingletonConstraint(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{
			{LowerBound: 0, UpperBound: 100},
			{LowerBound: 0, UpperBound: 100},
		},
		Constraints: []model.Constraint{
			// -2*x0 >= -10  =>  x0 <= 5
			{LowerBound: -10, UpperBound: math.Inf(1), VarIndex: []int{0}, Coefficient: []float64{-2}},
			{LowerBound: 0, UpperBound: 50, VarIndex: []int{0, 1}, Coefficient: []float64{1, 1}},
		},
	}
	var stack Stack
	require.Equal(t, StatusOK, ApplyMIPPresolve(m, &stack, nop))
	assert.Equal(t, 5.0, m.Variables[0].UpperBound)
	assert.Len(t, m.Constraints, 1)
}

func TestMIPPresolveInfeasible(t *testing.T) {
	t.Run("empty constraint excludes zero", func(t *testing.T) {
		m := &model.Model{
			Variables:   []model.Variable{{LowerBound: 0, UpperBound: 1}},
			Constraints: []model.Constraint{{LowerBound: 1, UpperBound: 2}},
		}
		var stack Stack
		assert.Equal(t, StatusInfeasible, ApplyMIPPresolve(m, &stack, nop))
	})

	t.Run("singleton empties a domain", func(t *testing.T) {
		m := &model.Model{
			Variables: []model.Variable{{LowerBound: 0, UpperBound: 1}},
			Constraints: []model.Constraint{
				{LowerBound: 5, UpperBound: 6, VarIndex: []int{0}, Coefficient: []float64{1}},
			},
		}
		var stack Stack
		assert.Equal(t, StatusInfeasible, ApplyMIPPresolve(m, &stack, nop))
	})
}

func TestMIPPresolveFreeVariables(t *testing.T) {
	t.Run("finite best bound is fixed", func(t *testing.T) {
		m := &model.Model{
			Maximize: true,
			Variables: []model.Variable{
				{LowerBound: 0, UpperBound: 4, ObjectiveCoefficient: 1}, // free, best at ub
				{LowerBound: -3, UpperBound: 3},                         // free, no objective
			},
		}
		var stack Stack
		require.Equal(t, StatusOK, ApplyMIPPresolve(m, &stack, nop))
		assert.Empty(t, m.Variables)
		assert.Equal(t, 4.0, m.ObjectiveOffset)
		assert.Equal(t, []float64{4, 0}, stack.Postsolve(nil))
	})

	t.Run("unbounded improving direction", func(t *testing.T) {
		m := &model.Model{
			Maximize: true,
			Variables: []model.Variable{
				{LowerBound: 0, UpperBound: math.Inf(1), ObjectiveCoefficient: 1},
			},
		}
		var stack Stack
		assert.Equal(t, StatusInfeasibleOrUnbounded, ApplyMIPPresolve(m, &stack, nop))
	})

	t.Run("negative scaling factor flips the direction", func(t *testing.T) {
		m := &model.Model{
			Maximize:               true,
			ObjectiveScalingFactor: -1,
			Variables: []model.Variable{
				{LowerBound: 0, UpperBound: math.Inf(1), ObjectiveCoefficient: 1},
			},
		}
		var stack Stack
		// maximizing -1*x is bounded below at lb
		require.Equal(t, StatusOK, ApplyMIPPresolve(m, &stack, nop))
		assert.Equal(t, []float64{0}, stack.Postsolve(nil))
	})
}
