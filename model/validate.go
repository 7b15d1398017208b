package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalid reports a structurally malformed model. It never reaches a
	// backend; the solve pipeline surfaces it as a MODEL_INVALID response.
	ErrInvalid = errors.New("invalid model")

	// ErrInfeasible reports a model proven trivially infeasible (contradictory
	// bounds, empty domain) before any transform or backend runs.
	ErrInfeasible = errors.New("model is trivially infeasible")
)

// Validate checks the structural well-formedness of the model: bounds
// consistency, coefficient finiteness and hint shape. It returns an error
// wrapping ErrInvalid for malformed input and an error wrapping ErrInfeasible
// when the model is trivially infeasible.
func (m *Model) Validate() error {
	for i, v := range m.Variables {
		if math.IsNaN(v.LowerBound) || math.IsNaN(v.UpperBound) {
			return fmt.Errorf("%w: variable %d has NaN bound", ErrInvalid, i)
		}
		if math.IsInf(v.LowerBound, 1) || math.IsInf(v.UpperBound, -1) {
			return fmt.Errorf("%w: variable %d has an empty half-open domain", ErrInvalid, i)
		}
		if !isFinite(v.ObjectiveCoefficient) {
			return fmt.Errorf("%w: variable %d has a non-finite objective coefficient", ErrInvalid, i)
		}
		if v.LowerBound > v.UpperBound {
			return fmt.Errorf("%w: variable %d has contradictory bounds [%v, %v]", ErrInfeasible, i, v.LowerBound, v.UpperBound)
		}
	}
	for i, c := range m.Constraints {
		if math.IsNaN(c.LowerBound) || math.IsNaN(c.UpperBound) {
			return fmt.Errorf("%w: constraint %d has NaN bound", ErrInvalid, i)
		}
		if len(c.VarIndex) != len(c.Coefficient) {
			return fmt.Errorf("%w: constraint %d has %d indices but %d coefficients", ErrInvalid, i, len(c.VarIndex), len(c.Coefficient))
		}
		seen := make(map[int]struct{}, len(c.VarIndex))
		for k, vi := range c.VarIndex {
			if vi < 0 || vi >= len(m.Variables) {
				return fmt.Errorf("%w: constraint %d references variable %d out of range", ErrInvalid, i, vi)
			}
			if _, ok := seen[vi]; ok {
				return fmt.Errorf("%w: constraint %d references variable %d twice", ErrInvalid, i, vi)
			}
			seen[vi] = struct{}{}
			if !isFinite(c.Coefficient[k]) {
				return fmt.Errorf("%w: constraint %d has a non-finite coefficient for variable %d", ErrInvalid, i, vi)
			}
		}
		if c.LowerBound > c.UpperBound {
			return fmt.Errorf("%w: constraint %d has contradictory bounds [%v, %v]", ErrInfeasible, i, c.LowerBound, c.UpperBound)
		}
	}
	if m.Hint != nil {
		if len(m.Hint.VarIndex) != len(m.Hint.VarValue) {
			return fmt.Errorf("%w: hint has %d indices but %d values", ErrInvalid, len(m.Hint.VarIndex), len(m.Hint.VarValue))
		}
		for k, vi := range m.Hint.VarIndex {
			if vi < 0 || vi >= len(m.Variables) {
				return fmt.Errorf("%w: hint references variable %d out of range", ErrInvalid, vi)
			}
			if math.IsNaN(m.Hint.VarValue[k]) {
				return fmt.Errorf("%w: hint value for variable %d is NaN", ErrInvalid, vi)
			}
		}
	}
	if !isFinite(m.ObjectiveOffset) || !isFinite(m.ObjectiveScalingFactor) {
		return fmt.Errorf("%w: non-finite objective offset or scaling factor", ErrInvalid)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
