// Package model defines the generic optimization model consumed by the solve
// pipeline: variables with bounds, integrality and objective coefficients,
// sparse linear constraints, a linear objective and an optional solution hint.
//
// Variable and constraint indices are dense, zero-based and stable for the
// lifetime of one solve call.
package model

// Variable is a decision variable of the model.
type Variable struct {
	Name                 string  `json:"name,omitempty"`
	LowerBound           float64 `json:"lower_bound"`
	UpperBound           float64 `json:"upper_bound"`
	IsInteger            bool    `json:"is_integer,omitempty"`
	ObjectiveCoefficient float64 `json:"objective_coefficient,omitempty"`
}

// Constraint is a linear constraint LowerBound <= sum(Coefficient[i] *
// x[VarIndex[i]]) <= UpperBound. The row is sparse; VarIndex and Coefficient
// have the same length and VarIndex holds no duplicate.
type Constraint struct {
	Name        string    `json:"name,omitempty"`
	LowerBound  float64   `json:"lower_bound"`
	UpperBound  float64   `json:"upper_bound"`
	VarIndex    []int     `json:"var_index"`
	Coefficient []float64 `json:"coefficient"`
}

// Hint is a caller-supplied partial assignment meant to accelerate search.
// It is not guaranteed feasible.
type Hint struct {
	VarIndex []int     `json:"var_index"`
	VarValue []float64 `json:"var_value"`
}

// Model is a linear or mixed-integer optimization model.
type Model struct {
	Name        string       `json:"name,omitempty"`
	Variables   []Variable   `json:"variables"`
	Constraints []Constraint `json:"constraints"`

	// Maximize sets the objective direction; false means minimize.
	Maximize bool `json:"maximize,omitempty"`

	// ObjectiveOffset is added to the objective value.
	ObjectiveOffset float64 `json:"objective_offset,omitempty"`

	// ObjectiveScalingFactor multiplies the final objective value. Zero is
	// interpreted as one.
	ObjectiveScalingFactor float64 `json:"objective_scaling_factor,omitempty"`

	Hint *Hint `json:"hint,omitempty"`
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{
		Name:                   m.Name,
		Variables:              make([]Variable, len(m.Variables)),
		Constraints:            make([]Constraint, len(m.Constraints)),
		Maximize:               m.Maximize,
		ObjectiveOffset:        m.ObjectiveOffset,
		ObjectiveScalingFactor: m.ObjectiveScalingFactor,
	}
	copy(c.Variables, m.Variables)
	for i, ct := range m.Constraints {
		cc := ct
		cc.VarIndex = append([]int(nil), ct.VarIndex...)
		cc.Coefficient = append([]float64(nil), ct.Coefficient...)
		c.Constraints[i] = cc
	}
	if m.Hint != nil {
		c.Hint = &Hint{
			VarIndex: append([]int(nil), m.Hint.VarIndex...),
			VarValue: append([]float64(nil), m.Hint.VarValue...),
		}
	}
	return c
}

// ObjectiveValue evaluates the objective at the given point in the model's
// variable space, applying offset and scaling factor.
func (m *Model) ObjectiveValue(values []float64) float64 {
	obj := m.ObjectiveOffset
	for i, v := range m.Variables {
		if v.ObjectiveCoefficient != 0 {
			obj += v.ObjectiveCoefficient * values[i]
		}
	}
	if m.ObjectiveScalingFactor != 0 {
		obj *= m.ObjectiveScalingFactor
	}
	return obj
}
