package model

import "fmt"

// VariableBoundChange retightens the bounds of an existing variable.
type VariableBoundChange struct {
	Index      int     `json:"index"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// ObjectiveCoefficientChange replaces the objective coefficient of an
// existing variable.
type ObjectiveCoefficientChange struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Update is a diff relative to a previously solved base model. It is
// semantically meaningless against any model other than the one it was
// built for.
type Update struct {
	VariableBounds        []VariableBoundChange        `json:"variable_bounds,omitempty"`
	ObjectiveCoefficients []ObjectiveCoefficientChange `json:"objective_coefficients,omitempty"`
	NewVariables          []Variable                   `json:"new_variables,omitempty"`
	NewConstraints        []Constraint                 `json:"new_constraints,omitempty"`
}

// IsStructural reports whether the update adds variables or constraints,
// changing the shape of the model rather than only its numbers.
func (u *Update) IsStructural() bool {
	return len(u.NewVariables) > 0 || len(u.NewConstraints) > 0
}

// Apply materializes the update against a base model and returns the updated
// model. The base model is not modified.
func (u *Update) Apply(base *Model) (*Model, error) {
	m := base.Clone()
	for _, bc := range u.VariableBounds {
		if bc.Index < 0 || bc.Index >= len(m.Variables) {
			return nil, fmt.Errorf("bound change references variable %d out of range", bc.Index)
		}
		m.Variables[bc.Index].LowerBound = bc.LowerBound
		m.Variables[bc.Index].UpperBound = bc.UpperBound
	}
	for _, oc := range u.ObjectiveCoefficients {
		if oc.Index < 0 || oc.Index >= len(m.Variables) {
			return nil, fmt.Errorf("objective change references variable %d out of range", oc.Index)
		}
		m.Variables[oc.Index].ObjectiveCoefficient = oc.Value
	}
	m.Variables = append(m.Variables, u.NewVariables...)
	for _, c := range u.NewConstraints {
		cc := c
		cc.VarIndex = append([]int(nil), c.VarIndex...)
		cc.Coefficient = append([]float64(nil), c.Coefficient...)
		m.Constraints = append(m.Constraints, cc)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
