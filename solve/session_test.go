package solve

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/model"
)

func TestSessionSolve(t *testing.T) {
	s, err := NewSession(testRegistry(t), "bnb", knapsackModel())
	require.NoError(t, err)
	defer s.Close()

	resp, err := s.Solve(backend.DefaultSolveParameters())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, resp.Status)
	assert.Equal(t, 11.0, resp.ObjectiveValue)
	assert.Equal(t, []float64{1, 3}, resp.VariableValues)
}

func TestSessionUpdateInPlace(t *testing.T) {
	s, err := NewSession(testRegistry(t), "bnb", knapsackModel())
	require.NoError(t, err)
	defer s.Close()

	err = s.Update(&model.Update{
		VariableBounds:        []model.VariableBoundChange{{Index: 1, LowerBound: 0, UpperBound: 0}},
		ObjectiveCoefficients: []model.ObjectiveCoefficientChange{{Index: 0, Value: 5}},
	})
	require.NoError(t, err)

	resp, err := s.Solve(backend.DefaultSolveParameters())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, resp.Status)
	assert.Equal(t, []float64{3, 0}, resp.VariableValues)
	assert.Equal(t, 15.0, resp.ObjectiveValue)
}

func TestSessionStructuralUpdate(t *testing.T) {
	s, err := NewSession(testRegistry(t), "bnb", knapsackModel())
	require.NoError(t, err)
	defer s.Close()

	upd := &model.Update{
		NewVariables: []model.Variable{
			{Name: "z", LowerBound: 0, UpperBound: 2, IsInteger: true, ObjectiveCoefficient: 10},
		},
		NewConstraints: []model.Constraint{
			{LowerBound: math.Inf(-1), UpperBound: 1, VarIndex: []int{2}, Coefficient: []float64{1}},
		},
	}
	require.NoError(t, s.Update(upd))

	resp, err := s.Solve(backend.DefaultSolveParameters())
	require.NoError(t, err)

	// the recreated instance solves the same model as a fresh session on the
	// fully materialized update
	materialized, err := upd.Apply(knapsackModel())
	require.NoError(t, err)
	fresh, err := NewSession(testRegistry(t), "bnb", materialized)
	require.NoError(t, err)
	defer fresh.Close()
	want, err := fresh.Solve(backend.DefaultSolveParameters())
	require.NoError(t, err)

	diff := cmp.Diff(want, resp,
		cmpopts.EquateApprox(0, 1e-9),
		cmpopts.IgnoreFields(Response{}, "SolveInfo"))
	assert.Empty(t, diff)
	assert.Equal(t, []float64{1, 3, 1}, resp.VariableValues)
	assert.Equal(t, 21.0, resp.ObjectiveValue)
}

func TestSessionUpdateInvalid(t *testing.T) {
	s, err := NewSession(testRegistry(t), "bnb", knapsackModel())
	require.NoError(t, err)
	defer s.Close()

	err = s.Update(&model.Update{
		VariableBounds: []model.VariableBoundChange{{Index: 9, LowerBound: 0, UpperBound: 1}},
	})
	require.Error(t, err)

	// the session still solves the original model
	resp, err := s.Solve(backend.DefaultSolveParameters())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, resp.VariableValues)
}

func TestSessionClose(t *testing.T) {
	s, err := NewSession(testRegistry(t), "bnb", knapsackModel())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Solve(backend.DefaultSolveParameters())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
	require.Error(t, s.Update(&model.Update{}))
}

func TestSessionInterrupted(t *testing.T) {
	interrupter := backend.NewInterrupter()
	s, err := NewSession(testRegistry(t), "bnb", knapsackModel(), WithInterrupter(interrupter))
	require.NoError(t, err)
	defer s.Close()

	interrupter.Interrupt()
	resp, err := s.Solve(backend.DefaultSolveParameters())
	require.NoError(t, err)
	assert.Equal(t, StatusNotSolved, resp.Status)
}

func TestSessionErrors(t *testing.T) {
	_, err := NewSession(backend.NewRegistry(), "nope", knapsackModel())
	require.Error(t, err)

	invalid := &model.Model{Variables: []model.Variable{{LowerBound: math.NaN(), UpperBound: 1}}}
	_, err = NewSession(testRegistry(t), "bnb", invalid)
	require.Error(t, err)
}
