package presolve

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"

	"github.com/optkit/optkit/internal/utils"
	"github.com/optkit/optkit/model"
)

// DetectImpliedIntegers marks continuous variables that can only take
// integer values in any feasible solution. A variable qualifies when it is
// pinned by an integral equality constraint in which it appears with
// coefficient +/-1 and every other variable is integer with an integral
// coefficient. Detection iterates until no new variable qualifies and
// returns the number of marked variables.
func DetectImpliedIntegers(m *model.Model, log zerolog.Logger) int {
	marked := bitset.New(uint(len(m.Variables)))
	total := 0
	for {
		found := 0
		for ci := range m.Constraints {
			c := &m.Constraints[ci]
			if c.LowerBound != c.UpperBound || !isIntegral(c.LowerBound) {
				continue
			}
			candidate := -1
			ok := true
			for k, vi := range c.VarIndex {
				if m.Variables[vi].IsInteger {
					if !isIntegral(c.Coefficient[k]) {
						ok = false
						break
					}
					continue
				}
				if candidate >= 0 || math.Abs(c.Coefficient[k]) != 1 {
					ok = false
					break
				}
				candidate = vi
			}
			if !ok || candidate < 0 || marked.Test(uint(candidate)) {
				continue
			}
			m.Variables[candidate].IsInteger = true
			marked.Set(uint(candidate))
			found++
		}
		if found == 0 {
			break
		}
		total += found
	}
	if total > 0 {
		log.Debug().Int("variables", total).Msg("detected implied integer variables")
	}
	return total
}

func isIntegral(v float64) bool {
	return utils.IsFinite(v) && v == math.Trunc(v)
}

// ScaleContinuousVariables multiplies each continuous variable's domain by
// the given factor, adjusting constraint and objective coefficients so the
// model stays equivalent. The factor is reduced per variable so the scaled
// domain magnitude stays within maxBound (pass +Inf to scale large domains
// unconditionally), then rounded down to a power of two so scaling and
// unscaling are exact. Returns one factor per variable, 1 for integer
// variables.
func ScaleContinuousVariables(factor, maxBound float64, m *model.Model) []float64 {
	varScaling := make([]float64, len(m.Variables))
	for j := range m.Variables {
		varScaling[j] = 1
		v := &m.Variables[j]
		if v.IsInteger {
			continue
		}
		s := factor
		mag := domainMagnitude(v.LowerBound, v.UpperBound)
		if !math.IsInf(maxBound, 1) && mag > 0 && mag*s > maxBound {
			s = maxBound / mag
		}
		s = utils.FloorPowerOfTwo(s)
		if s == 1 {
			continue
		}
		varScaling[j] = s
		v.LowerBound *= s
		v.UpperBound *= s
		if v.ObjectiveCoefficient != 0 {
			v.ObjectiveCoefficient /= s
		}
		for ci := range m.Constraints {
			c := &m.Constraints[ci]
			for k, vi := range c.VarIndex {
				if vi == j {
					c.Coefficient[k] /= s
				}
			}
		}
	}
	return varScaling
}

// domainMagnitude returns the largest finite absolute bound of a domain, or
// 0 when both bounds are infinite.
func domainMagnitude(lb, ub float64) float64 {
	mag := 0.0
	if !math.IsInf(lb, -1) {
		mag = math.Abs(lb)
	}
	if !math.IsInf(ub, 1) && math.Abs(ub) > mag {
		mag = math.Abs(ub)
	}
	return mag
}
