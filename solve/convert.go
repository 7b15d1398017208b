package solve

import (
	"fmt"
	"math"

	"github.com/optkit/optkit/internal/utils"
	"github.com/optkit/optkit/intmodel"
	"github.com/optkit/optkit/model"
)

// conversionTolerance absorbs floating-point noise when rounding bounds to
// the integer grid.
const conversionTolerance = 1e-6

// maxRepresentableBound keeps converted domains well inside the int64 range
// even when the caller lifts MaxBound.
const maxRepresentableBound = 1e15

// Convert deterministically rewrites a validated, presolved and scaled model
// into the backend-native integer representation, preserving variable
// ordering. Variables still continuous at this point are restricted to the
// integer grid of their scaled domain. Domains and hint values are capped to
// the signed maxBound extremes to protect the backend from degenerate
// magnitudes.
func Convert(m *model.Model, varScaling []float64, maxBound float64) (*intmodel.Model, error) {
	limit := int64(math.Min(maxBound, maxRepresentableBound))
	im := &intmodel.Model{
		Name:      m.Name,
		Variables: make([]intmodel.Variable, len(m.Variables)),
		Objective: intmodel.Objective{
			Maximize:      m.Maximize,
			Offset:        m.ObjectiveOffset,
			ScalingFactor: m.ObjectiveScalingFactor,
		},
	}
	for j, v := range m.Variables {
		iv, err := convertVariable(v, limit)
		if err != nil {
			return nil, fmt.Errorf("variable %d: %w", j, err)
		}
		im.Variables[j] = iv
		if v.ObjectiveCoefficient != 0 {
			im.Objective.VarIndex = append(im.Objective.VarIndex, j)
			im.Objective.Coefficient = append(im.Objective.Coefficient, v.ObjectiveCoefficient)
		}
	}
	im.Constraints = make([]intmodel.Constraint, len(m.Constraints))
	for ci, c := range m.Constraints {
		im.Constraints[ci] = intmodel.Constraint{
			Name:        c.Name,
			LowerBound:  c.LowerBound,
			UpperBound:  c.UpperBound,
			VarIndex:    append([]int(nil), c.VarIndex...),
			Coefficient: append([]float64(nil), c.Coefficient...),
		}
	}
	if m.Hint != nil {
		im.Hint = convertHint(m.Hint, varScaling, float64(limit))
	}
	return im, nil
}

func convertVariable(v model.Variable, limit int64) (intmodel.Variable, error) {
	// bounds are clamped in float space first: converting an out-of-range
	// float64 to int64 is implementation-specific.
	fl := float64(limit)
	lb := -limit
	if !math.IsInf(v.LowerBound, -1) {
		lb = int64(utils.Clamp(math.Ceil(v.LowerBound-conversionTolerance), -fl, fl))
	}
	ub := limit
	if !math.IsInf(v.UpperBound, 1) {
		ub = int64(utils.Clamp(math.Floor(v.UpperBound+conversionTolerance), -fl, fl))
	}
	if lb > ub {
		return intmodel.Variable{}, fmt.Errorf("domain [%v, %v] is empty on the integer grid", v.LowerBound, v.UpperBound)
	}
	return intmodel.Variable{Name: v.Name, LowerBound: lb, UpperBound: ub}, nil
}

// convertHint copies and scales the solution hint. Hint values whose scaled
// magnitude exceeds maxBound are capped to the signed extreme, which is also
// the extreme of any scaled variable domain. Entries referencing unknown
// variables are skipped.
func convertHint(h *model.Hint, varScaling []float64, maxBound float64) *intmodel.Hint {
	ih := &intmodel.Hint{}
	for k, vi := range h.VarIndex {
		if vi < 0 || vi >= len(varScaling) {
			continue
		}
		value := h.VarValue[k] * varScaling[vi]
		if math.Abs(value) > maxBound {
			if value > 0 {
				value = maxBound
			} else {
				value = -maxBound
			}
		}
		ih.VarIndex = append(ih.VarIndex, vi)
		ih.Value = append(ih.Value, int64(math.Round(value)))
	}
	return ih
}

// convertUpdate maps a model diff onto the backend-native representation.
func convertUpdate(u *model.Update, maxBound float64) (*intmodel.Update, error) {
	limit := int64(math.Min(maxBound, maxRepresentableBound))
	iu := &intmodel.Update{}
	for _, bc := range u.VariableBounds {
		v, err := convertVariable(model.Variable{LowerBound: bc.LowerBound, UpperBound: bc.UpperBound}, limit)
		if err != nil {
			return nil, fmt.Errorf("bound change for variable %d: %w", bc.Index, err)
		}
		iu.VariableBounds = append(iu.VariableBounds, intmodel.VariableBoundChange{
			Index:      bc.Index,
			LowerBound: v.LowerBound,
			UpperBound: v.UpperBound,
		})
	}
	for _, oc := range u.ObjectiveCoefficients {
		iu.ObjectiveCoefficients = append(iu.ObjectiveCoefficients, intmodel.ObjectiveCoefficientChange{
			Index: oc.Index,
			Value: oc.Value,
		})
	}
	for j, nv := range u.NewVariables {
		v, err := convertVariable(nv, limit)
		if err != nil {
			return nil, fmt.Errorf("new variable %d: %w", j, err)
		}
		iu.NewVariables = append(iu.NewVariables, v)
	}
	for _, nc := range u.NewConstraints {
		iu.NewConstraints = append(iu.NewConstraints, intmodel.Constraint{
			Name:        nc.Name,
			LowerBound:  nc.LowerBound,
			UpperBound:  nc.UpperBound,
			VarIndex:    append([]int(nil), nc.VarIndex...),
			Coefficient: append([]float64(nil), nc.Coefficient...),
		})
	}
	return iu, nil
}
