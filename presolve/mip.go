package presolve

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"

	"github.com/optkit/optkit/internal/utils"
	"github.com/optkit/optkit/model"
)

const (
	// maxPresolvePasses caps the fixpoint iteration of the MIP presolve
	// rules; each rule can enable the others.
	maxPresolvePasses = 10

	// boundTolerance absorbs floating-point noise when comparing bounds.
	boundTolerance = 1e-9
)

// ApplyMIPPresolve runs the MIP presolve chain on the model: trivial
// constraint elimination, singleton-constraint bound folding, fixed-variable
// substitution and free-column fixing. Rules run to a fixpoint. Each rule
// that changes the model pushes its own InverseTransform.
//
// The returned status is StatusOK to continue with the solve, StatusInfeasible
// when the problem is proven infeasible and StatusInfeasibleOrUnbounded when
// a free column can improve the objective without bound; the latter does not
// determine which of the two cases occurred.
func ApplyMIPPresolve(m *model.Model, stack *Stack, log zerolog.Logger) ProblemStatus {
	for pass := 0; pass < maxPresolvePasses; pass++ {
		changed := false
		if st := removeTrivialConstraints(m, stack, &changed, log); st != StatusOK {
			return st
		}
		if st := substituteFixedVariables(m, stack, &changed, log); st != StatusOK {
			return st
		}
		if st := fixFreeVariables(m, stack, &changed, log); st != StatusOK {
			return st
		}
		if !changed {
			break
		}
	}
	return StatusOK
}

// removeTrivialConstraints drops constraints with no terms (checking their
// bounds contain zero) and folds single-term constraints into the variable's
// bounds.
func removeTrivialConstraints(m *model.Model, stack *Stack, changed *bool, log zerolog.Logger) ProblemStatus {
	drop := bitset.New(uint(len(m.Constraints)))
	for ci := range m.Constraints {
		c := &m.Constraints[ci]
		switch len(c.VarIndex) {
		case 0:
			if c.LowerBound > boundTolerance || c.UpperBound < -boundTolerance {
				log.Debug().Int("constraint", ci).Msg("empty constraint excludes zero")
				return StatusInfeasible
			}
			drop.Set(uint(ci))
		case 1:
			vi := c.VarIndex[0]
			coef := c.Coefficient[0]
			lo, hi := divideInterval(c.LowerBound, c.UpperBound, coef)
			v := &m.Variables[vi]
			if lo > v.LowerBound {
				v.LowerBound = lo
			}
			if hi < v.UpperBound {
				v.UpperBound = hi
			}
			if v.LowerBound > v.UpperBound+boundTolerance {
				log.Debug().Int("variable", vi).Msg("singleton constraint empties a variable domain")
				return StatusInfeasible
			}
			if v.LowerBound > v.UpperBound {
				v.UpperBound = v.LowerBound
			}
			drop.Set(uint(ci))
		}
	}
	if drop.Count() == 0 {
		return StatusOK
	}
	kept := m.Constraints[:0]
	for ci := range m.Constraints {
		if !drop.Test(uint(ci)) {
			kept = append(kept, m.Constraints[ci])
		}
	}
	m.Constraints = kept
	*changed = true
	stack.Push(identity{name: "trivial_constraints"})
	log.Debug().Uint("constraints", uint(drop.Count())).Msg("removed trivial constraints")
	return StatusOK
}

// divideInterval maps the constraint interval [lb, ub] through division by a
// nonzero coefficient, swapping the ends when the coefficient is negative.
func divideInterval(lb, ub, coef float64) (float64, float64) {
	lo := lb / coef
	hi := ub / coef
	if coef < 0 {
		lo, hi = hi, lo
	}
	// 0/inf and inf/inf cannot occur: coefficients are finite and nonzero.
	return lo, hi
}

// substituteFixedVariables removes every variable whose bounds pin it to a
// single value, folding the value into constraint bounds and the objective
// offset. One InverseTransform is pushed per removed variable; postsolve
// reinserts the value.
func substituteFixedVariables(m *model.Model, stack *Stack, changed *bool, log zerolog.Logger) ProblemStatus {
	removed := 0
	for j := 0; j < len(m.Variables); {
		v := m.Variables[j]
		if v.UpperBound-v.LowerBound > boundTolerance {
			j++
			continue
		}
		value := v.LowerBound
		stack.Push(fixedVariable{index: j, value: value})
		removeVariable(m, j, value)
		removed++
	}
	if removed > 0 {
		*changed = true
		log.Debug().Int("variables", removed).Msg("substituted fixed variables")
	}
	return StatusOK
}

// removeVariable deletes variable j from the model, folding coef*value into
// the bounds of every constraint referencing it and into the objective
// offset. Indices above j shift down by one.
func removeVariable(m *model.Model, j int, value float64) {
	if c := m.Variables[j].ObjectiveCoefficient; c != 0 {
		m.ObjectiveOffset += c * value
	}
	m.Variables = append(m.Variables[:j], m.Variables[j+1:]...)
	for ci := range m.Constraints {
		c := &m.Constraints[ci]
		keepIdx := c.VarIndex[:0]
		keepCoef := c.Coefficient[:0]
		for k, vi := range c.VarIndex {
			if vi == j {
				delta := c.Coefficient[k] * value
				if !math.IsInf(c.LowerBound, -1) {
					c.LowerBound -= delta
				}
				if !math.IsInf(c.UpperBound, 1) {
					c.UpperBound -= delta
				}
				continue
			}
			if vi > j {
				vi--
			}
			keepIdx = append(keepIdx, vi)
			keepCoef = append(keepCoef, c.Coefficient[k])
		}
		c.VarIndex = keepIdx
		c.Coefficient = keepCoef
	}
	if m.Hint != nil {
		keepIdx := m.Hint.VarIndex[:0]
		keepVal := m.Hint.VarValue[:0]
		for k, vi := range m.Hint.VarIndex {
			if vi == j {
				continue
			}
			if vi > j {
				vi--
			}
			keepIdx = append(keepIdx, vi)
			keepVal = append(keepVal, m.Hint.VarValue[k])
		}
		m.Hint.VarIndex = keepIdx
		m.Hint.VarValue = keepVal
	}
}

// fixFreeVariables handles variables that appear in no constraint. A free
// variable with a finite best bound is fixed there; an infinite best bound
// proves the problem infeasible or unbounded.
func fixFreeVariables(m *model.Model, stack *Stack, changed *bool, log zerolog.Logger) ProblemStatus {
	inConstraint := bitset.New(uint(len(m.Variables)))
	for ci := range m.Constraints {
		for _, vi := range m.Constraints[ci].VarIndex {
			inConstraint.Set(uint(vi))
		}
	}
	dir := 1.0
	if !m.Maximize {
		dir = -1
	}
	if m.ObjectiveScalingFactor < 0 {
		dir = -dir
	}
	fixed := 0
	for j := 0; j < len(m.Variables); {
		if inConstraint.Test(uint(j)) {
			j++
			continue
		}
		v := m.Variables[j]
		var value float64
		switch {
		case v.ObjectiveCoefficient == 0:
			value = utils.Clamp(0, v.LowerBound, v.UpperBound)
		case v.ObjectiveCoefficient*dir > 0:
			value = v.UpperBound
		default:
			value = v.LowerBound
		}
		if math.IsInf(value, 0) {
			log.Debug().Int("variable", j).Msg("free variable improves the objective without bound")
			return StatusInfeasibleOrUnbounded
		}
		stack.Push(fixedVariable{index: j, value: value})
		removeVariable(m, j, value)
		shiftDown(inConstraint, uint(j))
		fixed++
	}
	if fixed > 0 {
		*changed = true
		log.Debug().Int("variables", fixed).Msg("fixed free variables")
	}
	return StatusOK
}

// shiftDown removes bit j from the set, shifting all higher bits down by one.
func shiftDown(b *bitset.BitSet, j uint) {
	for i := j; i+1 < b.Len(); i++ {
		b.SetTo(i, b.Test(i+1))
	}
	if b.Len() > 0 {
		b.Clear(b.Len() - 1)
	}
}
