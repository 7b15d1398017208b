package backend

import "time"

// Status is the backend-native terminal status of a search.
type Status uint8

const (
	// StatusUnknown means the search terminated without proving anything,
	// typically after an interruption or time limit with no solution.
	StatusUnknown Status = iota

	// StatusModelInvalid means the backend rejected its input model.
	StatusModelInvalid

	// StatusFeasible means at least one feasible solution was found but
	// optimality was not proven.
	StatusFeasible

	// StatusInfeasible means the model was proven infeasible.
	StatusInfeasible

	// StatusOptimal means an optimal solution was found and proven.
	StatusOptimal
)

// String returns the string representation of a backend status.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusModelInvalid:
		return "model_invalid"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusOptimal:
		return "optimal"
	default:
		return "abnormal"
	}
}

// Solution is one feasible assignment in the backend's variable space.
type Solution struct {
	ObjectiveValue float64
	Values         []int64
}

// Result is the terminal outcome of a Solve call, in the backend's variable
// space. The solve pipeline postsolves it back to the caller's space.
type Result struct {
	Status             Status
	StatusStr          string
	ObjectiveValue     float64
	BestObjectiveBound float64

	// Solution is the primary solution; nil unless Status is StatusFeasible
	// or StatusOptimal.
	Solution []int64

	// AdditionalSolutions holds further feasible solutions found during
	// search. It may contain a duplicate of the primary solution.
	AdditionalSolutions []Solution

	WallTime time.Duration
	UserTime time.Duration
}
