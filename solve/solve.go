// Package solve orchestrates the transform pipeline that turns a generic
// model into a backend solve: validation, presolve, scaling, conversion,
// backend invocation and postsolve. Whatever space the backend searched in,
// the response is expressed in the original problem's variable space.
package solve

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/model"
	"github.com/optkit/optkit/presolve"
)

// Solve validates, presolves, scales and converts the model, instantiates a
// backend of the given solver type from the registry and runs the search.
//
// Structurally invalid or trivially infeasible models terminate with a
// MODEL_INVALID or INFEASIBLE response without invoking a backend. A missing
// registration or a backend fault is returned as an error. The solve is
// single-pass; no transform step is retried.
func Solve(registry *backend.Registry, solverType string, m *model.Model, params backend.SolveParameters, opts ...Option) (*Response, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	log := newProgressLog(params, cfg)

	if cfg.interrupter != nil && cfg.interrupter.Interrupted() {
		return terminalResponse(StatusNotSolved, "solve interrupted before the search started"), nil
	}

	if err := m.Validate(); err != nil {
		switch {
		case errors.Is(err, model.ErrInfeasible):
			return infeasibleResponse(log, err.Error()), nil
		case errors.Is(err, model.ErrInvalid):
			return modelInvalidResponse(log, err.Error()), nil
		default:
			return nil, err
		}
	}

	work := m.Clone()
	var stack presolve.Stack

	// Coefficients really close to zero can cause issues downstream; remove
	// them right away.
	presolve.RemoveNearZeroTerms(work, &stack, log.zl)

	// This is good to do before any presolve.
	if err := presolve.IntegralizeBounds(work, &stack, log.zl); err != nil {
		return infeasibleResponse(log, "an integer variable has an "+err.Error()), nil
	}

	if !params.EnumerateAllSolutions && params.PresolveLevel > 0 {
		switch st := presolve.ApplyMIPPresolve(work, &stack, log.zl); st {
		case presolve.StatusOK:
		case presolve.StatusInfeasible:
			return infeasibleResponse(log, "problem proven infeasible during MIP presolve"), nil
		case presolve.StatusInvalid:
			return modelInvalidResponse(log, "problem detected invalid during MIP presolve"), nil
		default:
			// No response status matches this outcome exactly; keep the
			// ambiguity rather than guessing which case occurred.
			log.printf("MIP presolve: problem infeasible or unbounded.")
			return terminalResponse(StatusUnknown, "problem proven infeasible or unbounded during MIP presolve"), nil
		}
	}

	// Presolve can re-introduce near-zero terms.
	presolve.RemoveNearZeroTerms(work, &stack, log.zl)

	log.printf("")
	log.printf("Scaling to pure integer problem.")

	varScaling := make([]float64, len(work.Variables))
	for i := range varScaling {
		varScaling[i] = 1
	}
	if params.DetectImpliedIntegers {
		presolve.DetectImpliedIntegers(work, log.zl)
		// Newly detected integer variables must have integral bounds.
		if err := presolve.IntegralizeBounds(work, &stack, log.zl); err != nil {
			return infeasibleResponse(log, "a detected integer variable has an "+err.Error()), nil
		}
	}
	if params.VarScaling != 1 {
		maxBound := params.MaxBound
		if params.ScaleLargeDomain {
			maxBound = math.Inf(1)
		}
		other := presolve.ScaleContinuousVariables(params.VarScaling, maxBound, work)
		scaled := false
		for i := range varScaling {
			varScaling[i] *= other[i]
			if varScaling[i] != 1 {
				scaled = true
			}
		}
		if scaled {
			stack.Push(presolve.NewScalingTransform(append([]float64(nil), varScaling...)))
		}
	}

	if params.OnlySolveIntegers {
		for j := range work.Variables {
			if !work.Variables[j].IsInteger {
				return modelInvalidResponse(log, fmt.Sprintf(
					"the model contains non-integer variables (e.g. variable %d) but OnlySolveIntegers was set; "+
						"unset it to solve a more constrained version of the original MIP "+
						"where non-integer variables can only take a finite set of values", j)), nil
			}
		}
	}

	im, err := Convert(work, varScaling, params.MaxBound)
	if err != nil {
		return modelInvalidResponse(log, "failed to convert model for the backend: "+err.Error()), nil
	}

	// Interruption before backend creation never invokes the backend.
	if cfg.interrupter != nil && cfg.interrupter.Interrupted() {
		return terminalResponse(StatusNotSolved, "solve interrupted before the search started"), nil
	}

	factory, err := registry.Factory(solverType)
	if err != nil {
		return nil, err
	}
	inst, err := factory(im, backend.InitArgs{Logger: log.zl})
	if err != nil {
		return nil, fmt.Errorf("instantiating solver type %q: %w", solverType, err)
	}
	defer inst.Close()

	var solutionCB backend.SolutionCallback
	if cfg.solutionCB != nil {
		// Each intermediate solution is postsolved before it is surfaced, so
		// the caller never observes backend-internal variable spaces.
		solutionCB = func(s *backend.Solution) {
			cfg.solutionCB(&Solution{
				ObjectiveValue: s.ObjectiveValue,
				VariableValues: stack.Postsolve(toFloat(s.Values)),
			})
		}
	}

	res, err := inst.Solve(params, log.message(), solutionCB, cfg.interrupter)
	if err != nil {
		return nil, fmt.Errorf("solver type %q: %w", solverType, err)
	}
	return assembleResponse(m.Maximize, im, res, &stack), nil
}

func infeasibleResponse(log *progressLog, msg string) *Response {
	log.printf("Infeasible model detected: %s", msg)
	return terminalResponse(StatusInfeasible, msg)
}

func modelInvalidResponse(log *progressLog, msg string) *Response {
	log.printf("Invalid model/parameters: %s", msg)
	return terminalResponse(StatusModelInvalid, msg)
}

// progressLog fans search-progress messages out to the configured logger,
// the caller's message callback and optionally stdout. Messages flow only
// when LogSearchProgress is enabled.
type progressLog struct {
	enabled  bool
	toStdout bool
	cb       backend.MessageCallback
	zl       zerolog.Logger
}

func newProgressLog(params backend.SolveParameters, cfg config) *progressLog {
	return &progressLog{
		enabled:  params.LogSearchProgress,
		toStdout: params.LogSearchProgress && params.LogToStdout,
		cb:       cfg.messageCB,
		zl:       cfg.logger,
	}
}

func (l *progressLog) printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprintf(format, args...))
}

func (l *progressLog) emit(msg string) {
	if l.cb != nil {
		l.cb(msg)
	}
	if l.toStdout {
		fmt.Println(msg)
	}
	l.zl.Info().Msg(msg)
}

// message returns the callback handed to the backend, or nil when progress
// logging is disabled so the backend can skip formatting entirely.
func (l *progressLog) message() backend.MessageCallback {
	if !l.enabled {
		return nil
	}
	return l.emit
}
