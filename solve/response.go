package solve

import (
	"encoding/json"
	"slices"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/intmodel"
	"github.com/optkit/optkit/presolve"
)

// Status is the terminal status of a solve, in the caller's contract.
type Status uint8

const (
	// StatusNotSolved means no search ran, or it terminated without any
	// conclusion.
	StatusNotSolved Status = iota

	// StatusOptimal means an optimal solution was found and proven.
	StatusOptimal

	// StatusFeasible means a feasible solution was found but optimality was
	// not proven.
	StatusFeasible

	// StatusInfeasible means the model was proven infeasible.
	StatusInfeasible

	// StatusModelInvalid means the model or parameters were structurally
	// invalid; no backend ran.
	StatusModelInvalid

	// StatusAbnormal means the backend terminated in a state outside the
	// response contract.
	StatusAbnormal

	// StatusUnknown covers outcomes no other status captures precisely, such
	// as a presolve proving the problem infeasible or unbounded.
	StatusUnknown
)

// MarshalJSON encodes the status by its wire name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusNotSolved:
		return "NOT_SOLVED"
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	case StatusAbnormal:
		return "ABNORMAL"
	default:
		return "UNKNOWN_STATUS"
	}
}

// Solution is one feasible assignment in the original variable space.
type Solution struct {
	ObjectiveValue float64   `json:"objective_value"`
	VariableValues []float64 `json:"variable_values"`
}

// SolveInfo carries timing statistics of the search.
type SolveInfo struct {
	WallTime time.Duration `json:"solve_wall_time"`
	UserTime time.Duration `json:"solve_user_time"`
}

// Response is the outcome of a solve, expressed in the original problem's
// variable space.
type Response struct {
	Status Status `json:"status"`

	// StatusStr carries diagnostic text; it is always populated on
	// non-OPTIMAL/FEASIBLE outcomes.
	StatusStr string `json:"status_str,omitempty"`

	ObjectiveValue     float64 `json:"objective_value"`
	BestObjectiveBound float64 `json:"best_objective_bound"`

	// VariableValues holds one value per original variable; nil unless
	// Status is StatusOptimal or StatusFeasible.
	VariableValues []float64 `json:"variable_values,omitempty"`

	// AdditionalSolutions holds further solutions, each independently
	// postsolved, sorted by objective value (descending for a maximizing
	// model) and never containing a duplicate of the primary solution.
	AdditionalSolutions []Solution `json:"additional_solutions,omitempty"`

	SolveInfo SolveInfo `json:"solve_info"`
}

// statusFromBackend maps a backend-native status to the response contract.
func statusFromBackend(s backend.Status) Status {
	switch s {
	case backend.StatusUnknown:
		return StatusNotSolved
	case backend.StatusModelInvalid:
		return StatusModelInvalid
	case backend.StatusFeasible:
		return StatusFeasible
	case backend.StatusInfeasible:
		return StatusInfeasible
	case backend.StatusOptimal:
		return StatusOptimal
	default:
		return StatusAbnormal
	}
}

func terminalResponse(status Status, msg string) *Response {
	return &Response{Status: status, StatusStr: msg}
}

func toFloat(values []int64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// assembleResponse maps the raw backend result into the caller's space:
// statuses are translated, the primary and additional solutions are
// postsolved through the transform stack, raw duplicates of the primary
// solution are dropped and the remainder is sorted by objective value.
func assembleResponse(maximize bool, im *intmodel.Model, res *backend.Result, stack *presolve.Stack) *Response {
	resp := &Response{
		Status: statusFromBackend(res.Status),
		SolveInfo: SolveInfo{
			WallTime: res.WallTime,
			UserTime: res.UserTime,
		},
	}
	if resp.Status == StatusOptimal || resp.Status == StatusFeasible {
		resp.ObjectiveValue = res.ObjectiveValue
		resp.BestObjectiveBound = res.BestObjectiveBound
		resp.VariableValues = stack.Postsolve(toFloat(res.Solution))
	}
	if resp.Status != StatusOptimal && resp.Status != StatusFeasible {
		resp.StatusStr = res.StatusStr
		if resp.StatusStr == "" {
			resp.StatusStr = "backend reported status " + resp.Status.String()
		}
	}

	var kept []backend.Solution
	for _, s := range res.AdditionalSolutions {
		if slices.Equal(s.Values, res.Solution) {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) > 0 {
		resp.AdditionalSolutions = make([]Solution, len(kept))
		var g errgroup.Group
		for i, s := range kept {
			i, s := i, s
			g.Go(func() error {
				resp.AdditionalSolutions[i] = Solution{
					ObjectiveValue: im.Objective.Value(s.Values),
					VariableValues: stack.Postsolve(toFloat(s.Values)),
				}
				return nil
			})
		}
		// postsolve cannot fail, the group only provides the join
		_ = g.Wait()
		sort.Slice(resp.AdditionalSolutions, func(a, b int) bool {
			if maximize {
				return resp.AdditionalSolutions[a].ObjectiveValue > resp.AdditionalSolutions[b].ObjectiveValue
			}
			return resp.AdditionalSolutions[a].ObjectiveValue < resp.AdditionalSolutions[b].ObjectiveValue
		})
	}
	return resp
}
