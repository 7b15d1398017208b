package presolve

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/optkit/optkit/model"
)

// ErrEmptyIntegerDomain reports an integer variable whose bounds contain no
// integer point.
var ErrEmptyIntegerDomain = errors.New("empty integer domain")

// integralityTolerance absorbs floating-point noise around integer bounds.
const integralityTolerance = 1e-6

// IntegralizeBounds tightens each integer variable's bounds to the nearest
// valid integers. It must run after any step that can introduce new integer
// variables. An empty resulting domain returns an error wrapping
// ErrEmptyIntegerDomain.
func IntegralizeBounds(m *model.Model, stack *Stack, log zerolog.Logger) error {
	changed := 0
	for i := range m.Variables {
		v := &m.Variables[i]
		if !v.IsInteger {
			continue
		}
		lb := v.LowerBound
		ub := v.UpperBound
		if !math.IsInf(lb, -1) {
			lb = math.Ceil(lb - integralityTolerance)
		}
		if !math.IsInf(ub, 1) {
			ub = math.Floor(ub + integralityTolerance)
		}
		if lb > ub {
			return fmt.Errorf("%w: variable %d bounds [%v, %v] contain no integer", ErrEmptyIntegerDomain, i, v.LowerBound, v.UpperBound)
		}
		if lb != v.LowerBound || ub != v.UpperBound {
			changed++
		}
		v.LowerBound = lb
		v.UpperBound = ub
	}
	if changed > 0 {
		log.Debug().Int("variables", changed).Msg("integralized integer variable bounds")
		stack.Push(identity{name: "integralize_bounds"})
	}
	return nil
}
