package solve

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/intmodel"
	"github.com/optkit/optkit/presolve"
)

func TestStatusFromBackend(t *testing.T) {
	cases := map[backend.Status]Status{
		backend.StatusUnknown:      StatusNotSolved,
		backend.StatusModelInvalid: StatusModelInvalid,
		backend.StatusFeasible:     StatusFeasible,
		backend.StatusInfeasible:   StatusInfeasible,
		backend.StatusOptimal:      StatusOptimal,
		backend.Status(250):        StatusAbnormal,
	}
	for in, want := range cases {
		assert.Equal(t, want, statusFromBackend(in), "backend status %v", in)
	}
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(StatusNotSolved)
	require.NoError(t, err)
	assert.Equal(t, `"NOT_SOLVED"`, string(b))

	b, err = json.Marshal(Status(99))
	require.NoError(t, err)
	assert.Equal(t, `"UNKNOWN_STATUS"`, string(b))
}

func TestAssembleResponseStatusStr(t *testing.T) {
	im := &intmodel.Model{}
	res := &backend.Result{Status: backend.StatusInfeasible}
	resp := assembleResponse(false, im, res, new(presolve.Stack))
	assert.Equal(t, StatusInfeasible, resp.Status)
	assert.Equal(t, "backend reported status INFEASIBLE", resp.StatusStr)
	assert.Nil(t, resp.VariableValues)

	res = &backend.Result{Status: backend.StatusUnknown, StatusStr: "stopped early"}
	resp = assembleResponse(false, im, res, new(presolve.Stack))
	assert.Equal(t, StatusNotSolved, resp.Status)
	assert.Equal(t, "stopped early", resp.StatusStr)
}

func TestAssembleResponseAdditionalSolutions(t *testing.T) {
	im := &intmodel.Model{
		Variables: []intmodel.Variable{{LowerBound: 0, UpperBound: 10}},
		Objective: intmodel.Objective{Maximize: true, VarIndex: []int{0}, Coefficient: []float64{1}},
	}
	res := &backend.Result{
		Status:         backend.StatusOptimal,
		ObjectiveValue: 7,
		Solution:       []int64{7},
		AdditionalSolutions: []backend.Solution{
			{ObjectiveValue: 3, Values: []int64{3}},
			{ObjectiveValue: 7, Values: []int64{7}}, // duplicate of the primary
			{ObjectiveValue: 5, Values: []int64{5}},
		},
		WallTime: time.Second,
	}

	resp := assembleResponse(true, im, res, new(presolve.Stack))
	require.Equal(t, StatusOptimal, resp.Status)
	assert.Equal(t, []float64{7}, resp.VariableValues)
	assert.Equal(t, time.Second, resp.SolveInfo.WallTime)

	require.Len(t, resp.AdditionalSolutions, 2)
	assert.Equal(t, 5.0, resp.AdditionalSolutions[0].ObjectiveValue)
	assert.Equal(t, 3.0, resp.AdditionalSolutions[1].ObjectiveValue)
	assert.Equal(t, []float64{5}, resp.AdditionalSolutions[0].VariableValues)
}

func TestAssembleResponseMaximizeOrder(t *testing.T) {
	im := &intmodel.Model{
		Variables: []intmodel.Variable{{LowerBound: 0, UpperBound: 10}},
		Objective: intmodel.Objective{Maximize: true, VarIndex: []int{0}, Coefficient: []float64{1}},
	}
	res := &backend.Result{
		Status:   backend.StatusFeasible,
		Solution: []int64{9},
		AdditionalSolutions: []backend.Solution{
			{Values: []int64{3}},
			{Values: []int64{7}},
			{Values: []int64{5}},
		},
	}
	resp := assembleResponse(true, im, res, new(presolve.Stack))
	got := make([]float64, 0, 3)
	for _, s := range resp.AdditionalSolutions {
		got = append(got, s.ObjectiveValue)
	}
	assert.Equal(t, []float64{7, 5, 3}, got)
}

func TestAssembleResponseMinimizeOrder(t *testing.T) {
	im := &intmodel.Model{
		Variables: []intmodel.Variable{{LowerBound: 0, UpperBound: 10}},
		Objective: intmodel.Objective{VarIndex: []int{0}, Coefficient: []float64{1}},
	}
	res := &backend.Result{
		Status:   backend.StatusOptimal,
		Solution: []int64{1},
		AdditionalSolutions: []backend.Solution{
			{Values: []int64{9}},
			{Values: []int64{4}},
		},
	}
	resp := assembleResponse(false, im, res, new(presolve.Stack))
	require.Len(t, resp.AdditionalSolutions, 2)
	assert.Equal(t, 4.0, resp.AdditionalSolutions[0].ObjectiveValue)
	assert.Equal(t, 9.0, resp.AdditionalSolutions[1].ObjectiveValue)
}
