package presolve

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/optkit/optkit/model"
)

// nearZeroTolerance bounds the largest contribution a dropped term may have
// had over the variable's domain.
const nearZeroTolerance = 1e-9

// RemoveNearZeroTerms drops constraint terms whose largest possible
// contribution over the variable's domain is negligible. Coefficients really
// close to zero can cause issues downstream, so they are filtered rather than
// failed. Returns the number of removed terms; a transform is pushed only
// when something was removed.
func RemoveNearZeroTerms(m *model.Model, stack *Stack, log zerolog.Logger) int {
	removed := 0
	for ci := range m.Constraints {
		c := &m.Constraints[ci]
		keepIdx := c.VarIndex[:0]
		keepCoef := c.Coefficient[:0]
		for k, vi := range c.VarIndex {
			coef := c.Coefficient[k]
			v := m.Variables[vi]
			mag := math.Max(math.Abs(v.LowerBound), math.Abs(v.UpperBound))
			if math.IsInf(mag, 1) {
				mag = 1
			}
			if math.Abs(coef)*math.Max(mag, 1) <= nearZeroTolerance {
				removed++
				continue
			}
			keepIdx = append(keepIdx, vi)
			keepCoef = append(keepCoef, coef)
		}
		c.VarIndex = keepIdx
		c.Coefficient = keepCoef
	}
	if removed > 0 {
		log.Debug().Int("terms", removed).Msg("removed near-zero constraint terms")
		stack.Push(identity{name: "near_zero_terms"})
	}
	return removed
}
