package presolve

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optkit/optkit/model"
)

func TestDetectImpliedIntegers(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{
			{LowerBound: 0, UpperBound: 10, IsInteger: true},
			{LowerBound: 0, UpperBound: 10}, // implied by c0
			{LowerBound: 0, UpperBound: 10}, // implied by c1 once x1 is marked
			{LowerBound: 0, UpperBound: 10}, // stays continuous
		},
		Constraints: []model.Constraint{
			{LowerBound: 5, UpperBound: 5, VarIndex: []int{0, 1}, Coefficient: []float64{2, 1}},
			{LowerBound: 3, UpperBound: 3, VarIndex: []int{1, 2}, Coefficient: []float64{1, -1}},
			{LowerBound: 1, UpperBound: 2, VarIndex: []int{3}, Coefficient: []float64{1}},
		},
	}
	assert.Equal(t, 2, DetectImpliedIntegers(m, nop))
	assert.True(t, m.Variables[1].IsInteger)
	assert.True(t, m.Variables[2].IsInteger)
	assert.False(t, m.Variables[3].IsInteger)
}

func TestDetectImpliedIntegersRejects(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{
			{LowerBound: 0, UpperBound: 10, IsInteger: true},
			{LowerBound: 0, UpperBound: 10},
			{LowerBound: 0, UpperBound: 10},
		},
		Constraints: []model.Constraint{
			// inequality, fractional right-hand side, coefficient not unit,
			// two continuous variables: none of these qualify.
			{LowerBound: 1, UpperBound: 5, VarIndex: []int{0, 1}, Coefficient: []float64{1, 1}},
			{LowerBound: 2.5, UpperBound: 2.5, VarIndex: []int{0, 1}, Coefficient: []float64{1, 1}},
			{LowerBound: 4, UpperBound: 4, VarIndex: []int{0, 1}, Coefficient: []float64{1, 2}},
			{LowerBound: 4, UpperBound: 4, VarIndex: []int{1, 2}, Coefficient: []float64{1, 1}},
		},
	}
	assert.Equal(t, 0, DetectImpliedIntegers(m, nop))
}

func TestScaleContinuousVariables(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{
			{LowerBound: 0, UpperBound: 1.5, ObjectiveCoefficient: 2},
			{LowerBound: 0, UpperBound: 3, IsInteger: true, ObjectiveCoefficient: 1},
		},
		Constraints: []model.Constraint{
			{LowerBound: 0, UpperBound: 6, VarIndex: []int{0, 1}, Coefficient: []float64{4, 1}},
		},
	}
	factors := ScaleContinuousVariables(8, math.Inf(1), m)
	assert.Equal(t, []float64{8, 1}, factors)
	assert.Equal(t, 12.0, m.Variables[0].UpperBound)
	assert.Equal(t, 0.25, m.Variables[0].ObjectiveCoefficient)
	assert.Equal(t, 0.5, m.Constraints[0].Coefficient[0])
	// integer variable untouched
	assert.Equal(t, 3.0, m.Variables[1].UpperBound)
	assert.Equal(t, 1.0, m.Variables[1].ObjectiveCoefficient)
}

func TestScaleContinuousVariablesMaxBound(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{{LowerBound: 0, UpperBound: 1e6}},
	}
	factors := ScaleContinuousVariables(1024, 1e7, m)
	// 1e6 * 1024 exceeds 1e7; the factor is reduced to 10 and floored to 8.
	assert.Equal(t, []float64{8}, factors)
	assert.Equal(t, 8e6, m.Variables[0].UpperBound)
}

// TestPostsolveRoundTrip checks that a solution of the presolved and scaled
// model maps back to the original assignment: fixed variables reappear at
// their original indices and scaled values are divided back exactly.
func TestPostsolveRoundTrip(t *testing.T) {
	const n = 6

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("postsolve recovers the original assignment", prop.ForAll(
		func(values []float64, fixed []bool, factor float64) bool {
			free := 0
			for _, f := range fixed {
				if !f {
					free++
				}
			}
			// with fewer than two free variables the catch-all row degenerates
			// to a singleton and presolve folds it away as well
			if free < 2 {
				return true
			}

			m := &model.Model{Variables: make([]model.Variable, n)}
			row := model.Constraint{LowerBound: -1e6, UpperBound: 1e6}
			for j := 0; j < n; j++ {
				if fixed[j] {
					m.Variables[j] = model.Variable{LowerBound: values[j], UpperBound: values[j]}
					continue
				}
				m.Variables[j] = model.Variable{LowerBound: -100, UpperBound: 100}
				row.VarIndex = append(row.VarIndex, j)
				row.Coefficient = append(row.Coefficient, 1)
			}
			m.Constraints = []model.Constraint{row}

			var stack Stack
			if st := ApplyMIPPresolve(m, &stack, nop); st != StatusOK {
				return false
			}
			if len(m.Variables) != free {
				return false
			}

			varScaling := ScaleContinuousVariables(factor, math.Inf(1), m)
			stack.Push(NewScalingTransform(varScaling))

			// build the transformed-space assignment for the surviving
			// variables, in their post-presolve order
			transformed := make([]float64, 0, free)
			k := 0
			for j := 0; j < n; j++ {
				if fixed[j] {
					continue
				}
				transformed = append(transformed, values[j]*varScaling[k])
				k++
			}

			got := stack.Postsolve(transformed)
			if len(got) != n {
				return false
			}
			for j := 0; j < n; j++ {
				if math.Abs(got[j]-values[j]) > 1e-9 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(n, gen.Float64Range(-50, 50)),
		gen.SliceOfN(n, gen.Bool()),
		gen.Float64Range(1, 64),
	))

	properties.TestingRun(t)
}

func TestScalingFactorsArePowersOfTwo(t *testing.T) {
	m := &model.Model{
		Variables: []model.Variable{
			{LowerBound: -7.3, UpperBound: 19.2},
			{LowerBound: 0, UpperBound: 0.5},
		},
	}
	for _, f := range ScaleContinuousVariables(100, math.Inf(1), m) {
		frac, _ := math.Frexp(f)
		require.Equal(t, 0.5, frac, "factor %v is not a power of two", f)
	}
}
