// Package presolve implements the invertible model-rewrite steps applied
// before a model is converted for a backend: near-zero term removal, integer
// bound integralization, MIP presolve and continuous variable scaling.
//
// Each applied step pushes an InverseTransform onto a Stack. Replaying the
// stack in reverse (LIFO) order on a transformed-space solution vector yields
// the original-space vector, up to floating-point rounding.
package presolve

// InverseTransform captures enough state to map a solution vector from a
// transformed space back to its immediate pre-transform space.
type InverseTransform interface {
	// Postsolve consumes a vector in the transform's output space and
	// produces the vector in its input space. The returned slice may alias
	// the input when the transform does not change the variable count.
	Postsolve(values []float64) []float64
}

// Stack is an ordered sequence of InverseTransforms, applied in push order
// and replayed in reverse during postsolve. Its depth equals the number of
// successfully applied presolve and scaling steps.
type Stack struct {
	transforms []InverseTransform
}

// Push appends a transform to the stack.
func (s *Stack) Push(t InverseTransform) {
	s.transforms = append(s.transforms, t)
}

// Len returns the number of pushed transforms.
func (s *Stack) Len() int {
	return len(s.transforms)
}

// Postsolve replays the stack in reverse order on the given transformed-space
// vector and returns the original-space vector.
func (s *Stack) Postsolve(values []float64) []float64 {
	for i := len(s.transforms) - 1; i >= 0; i-- {
		values = s.transforms[i].Postsolve(values)
	}
	return values
}

// identity is the inverse of a step that rewrites the model without changing
// the meaning of the solution vector (term removal, bound tightening).
type identity struct {
	name string
}

func (identity) Postsolve(values []float64) []float64 { return values }

// fixedVariable reinserts a variable removed by substitution at its fixed
// value. Indices are relative to the step's own input space.
type fixedVariable struct {
	index int
	value float64
}

func (t fixedVariable) Postsolve(values []float64) []float64 {
	out := make([]float64, len(values)+1)
	copy(out, values[:t.index])
	out[t.index] = t.value
	copy(out[t.index+1:], values[t.index:])
	return out
}

// scaling divides each value by its per-variable factor:
// postsolved = transformed / factor.
type scaling struct {
	factors []float64
}

// NewScalingTransform returns the inverse of a per-variable multiplicative
// scaling. factors holds one factor per variable of the scaled model, 1
// meaning unscaled.
func NewScalingTransform(factors []float64) InverseTransform {
	return scaling{factors: factors}
}

func (t scaling) Postsolve(values []float64) []float64 {
	for i := range values {
		if i < len(t.factors) && t.factors[i] != 1 {
			values[i] /= t.factors[i]
		}
	}
	return values
}

// ProblemStatus is the outcome of a presolve step.
type ProblemStatus uint8

const (
	// StatusOK means presolve finished and the solve should continue.
	StatusOK ProblemStatus = iota

	// StatusInfeasible means the problem was proven infeasible.
	StatusInfeasible

	// StatusInfeasibleOrUnbounded means presolve proved that the problem is
	// infeasible or unbounded without determining which. The two cases are
	// deliberately not conflated with StatusInfeasible.
	StatusInfeasibleOrUnbounded

	// StatusInvalid means the problem was detected invalid during presolve.
	StatusInvalid
)

// String returns the string representation of a presolve status.
func (s ProblemStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInfeasible:
		return "infeasible"
	case StatusInfeasibleOrUnbounded:
		return "infeasible_or_unbounded"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}
