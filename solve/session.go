package solve

import (
	"errors"
	"fmt"

	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/model"
	"github.com/optkit/optkit/presolve"
)

// Session is an incremental solve: it keeps one backend instance alive
// across model updates so the backend can reuse its state. Presolve and
// scaling are bypassed, since a transform stack is only valid for the solve
// that produced it; the backend sees the directly converted model.
//
// A Session is not safe for concurrent use.
type Session struct {
	registry   *backend.Registry
	solverType string
	cfg        config

	// base is the fully materialized current model, kept so the instance can
	// be recreated when the backend cannot apply a diff in place.
	base *model.Model
	inst backend.Backend
}

// NewSession validates and converts the model and instantiates a backend of
// the given solver type for it.
func NewSession(registry *backend.Registry, solverType string, m *model.Model, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		registry:   registry,
		solverType: solverType,
		cfg:        cfg,
		base:       m.Clone(),
	}
	if s.inst, err = s.newInstance(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) newInstance() (backend.Backend, error) {
	factory, err := s.registry.Factory(s.solverType)
	if err != nil {
		return nil, err
	}
	im, err := Convert(s.base, unitScaling(len(s.base.Variables)), backend.DefaultMaxBound)
	if err != nil {
		return nil, fmt.Errorf("converting model for solver type %q: %w", s.solverType, err)
	}
	inst, err := factory(im, backend.InitArgs{Logger: s.cfg.logger})
	if err != nil {
		return nil, fmt.Errorf("instantiating solver type %q: %w", s.solverType, err)
	}
	return inst, nil
}

// Solve runs the backend on the session's current model.
func (s *Session) Solve(params backend.SolveParameters) (*Response, error) {
	if s.inst == nil {
		return nil, errors.New("session is closed")
	}
	log := newProgressLog(params, s.cfg)
	if s.cfg.interrupter != nil && s.cfg.interrupter.Interrupted() {
		return terminalResponse(StatusNotSolved, "solve interrupted before the search started"), nil
	}

	im, err := Convert(s.base, unitScaling(len(s.base.Variables)), backend.DefaultMaxBound)
	if err != nil {
		return modelInvalidResponse(log, err.Error()), nil
	}

	var solutionCB backend.SolutionCallback
	if s.cfg.solutionCB != nil {
		solutionCB = func(sol *backend.Solution) {
			s.cfg.solutionCB(&Solution{
				ObjectiveValue: sol.ObjectiveValue,
				VariableValues: toFloat(sol.Values),
			})
		}
	}

	res, err := s.inst.Solve(params, log.message(), solutionCB, s.cfg.interrupter)
	if err != nil {
		return nil, fmt.Errorf("solver type %q: %w", s.solverType, err)
	}
	// no transforms ran, the stack is empty
	return assembleResponse(s.base.Maximize, im, res, new(presolve.Stack)), nil
}

// Update applies a diff to the session. The backend is updated in place when
// it can apply the diff incrementally; otherwise the instance is discarded
// and recreated from the fully materialized updated model. In both cases a
// subsequent Solve reflects the update.
func (s *Session) Update(upd *model.Update) error {
	if s.inst == nil {
		return errors.New("session is closed")
	}
	updated, err := upd.Apply(s.base)
	if err != nil {
		return err
	}
	iu, err := convertUpdate(upd, backend.DefaultMaxBound)
	if err != nil {
		return err
	}
	applied, err := s.inst.Update(iu)
	if err != nil {
		return err
	}
	s.base = updated
	if !applied {
		_ = s.inst.Close()
		s.inst = nil
		if s.inst, err = s.newInstance(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the backend instance. The session must not be used
// afterwards.
func (s *Session) Close() error {
	if s.inst == nil {
		return nil
	}
	err := s.inst.Close()
	s.inst = nil
	return err
}

func unitScaling(n int) []float64 {
	scaling := make([]float64, n)
	for i := range scaling {
		scaling[i] = 1
	}
	return scaling
}
