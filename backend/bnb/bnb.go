// Package bnb provides the built-in solving backend: a depth-first branch
// and bound over finite integer domains with interval propagation.
//
// It is a reference backend: complete and cooperative (time limit,
// interrupter checkpoints, message and solution callbacks, solution
// enumeration, in-place updates) but with none of the engineering of a
// production search engine. Solve is reentrant; sequential use only.
package bnb

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/intmodel"
)

// SolverType identifies this backend in a registry.
const SolverType = "bnb"

// New instantiates the backend for the given model. It is a backend.Factory.
func New(m *intmodel.Model, args backend.InitArgs) (backend.Backend, error) {
	for j, v := range m.Variables {
		if v.LowerBound > v.UpperBound {
			return nil, fmt.Errorf("variable %d has an empty domain [%d, %d]", j, v.LowerBound, v.UpperBound)
		}
	}
	return &solver{
		m:   m.Clone(),
		log: args.Logger.With().Str("backend", SolverType).Logger(),
	}, nil
}

type solver struct {
	m      *intmodel.Model
	log    zerolog.Logger
	closed bool
}

// Update applies bound and objective-coefficient changes in place. It
// reports false for structural diffs (new variables or constraints), which
// require recreating the instance. The diff is validated before anything is
// applied; an invalid diff leaves the instance untouched.
func (s *solver) Update(upd *intmodel.Update) (bool, error) {
	if s.closed {
		return false, errors.New("backend is closed")
	}
	if upd.IsStructural() {
		return false, nil
	}
	for _, bc := range upd.VariableBounds {
		if bc.Index < 0 || bc.Index >= len(s.m.Variables) {
			return false, fmt.Errorf("bound change references variable %d out of range", bc.Index)
		}
	}
	for _, oc := range upd.ObjectiveCoefficients {
		if oc.Index < 0 || oc.Index >= len(s.m.Variables) {
			return false, fmt.Errorf("objective change references variable %d out of range", oc.Index)
		}
	}
	for _, bc := range upd.VariableBounds {
		s.m.Variables[bc.Index].LowerBound = bc.LowerBound
		s.m.Variables[bc.Index].UpperBound = bc.UpperBound
	}
	for _, oc := range upd.ObjectiveCoefficients {
		s.setObjectiveCoefficient(oc.Index, oc.Value)
	}
	return true, nil
}

func (s *solver) setObjectiveCoefficient(index int, value float64) {
	o := &s.m.Objective
	for k, vi := range o.VarIndex {
		if vi == index {
			if value == 0 {
				o.VarIndex = append(o.VarIndex[:k], o.VarIndex[k+1:]...)
				o.Coefficient = append(o.Coefficient[:k], o.Coefficient[k+1:]...)
			} else {
				o.Coefficient[k] = value
			}
			return
		}
	}
	if value != 0 {
		o.VarIndex = append(o.VarIndex, index)
		o.Coefficient = append(o.Coefficient, value)
	}
}

// Close releases the instance. Solve and Update fail afterwards.
func (s *solver) Close() error {
	s.closed = true
	return nil
}

// Solve runs the branch-and-bound search. It checks the interrupter and the
// time limit once per search node; interruption returns the best result
// found so far.
func (s *solver) Solve(params backend.SolveParameters, messageCB backend.MessageCallback, solutionCB backend.SolutionCallback, interrupter *backend.Interrupter) (*backend.Result, error) {
	if s.closed {
		return nil, errors.New("backend is closed")
	}
	prm, err := DecodeParameters(params.SolverSpecific)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	srch := &search{
		m:           s.m,
		prm:         prm,
		enumerate:   params.EnumerateAllSolutions,
		messageCB:   messageCB,
		solutionCB:  solutionCB,
		interrupter: interrupter,
	}
	if params.TimeLimit > 0 {
		srch.deadline = start.Add(params.TimeLimit)
	}
	srch.run()
	elapsed := time.Since(start)

	s.log.Debug().
		Dur("wall", elapsed).
		Int("nodes", srch.nodes).
		Bool("stopped", srch.stopped).
		Msg("search finished")

	res := &backend.Result{
		WallTime: elapsed,
		// the search is single-threaded
		UserTime:            elapsed,
		AdditionalSolutions: srch.pool,
	}
	switch {
	case srch.best != nil && !srch.stopped:
		res.Status = backend.StatusOptimal
		res.ObjectiveValue = srch.bestObjective
		res.BestObjectiveBound = srch.bestObjective
		res.Solution = srch.best
	case srch.best != nil:
		res.Status = backend.StatusFeasible
		res.ObjectiveValue = srch.bestObjective
		res.BestObjectiveBound = srch.rootBound
		res.Solution = srch.best
	case srch.stopped:
		res.Status = backend.StatusUnknown
		res.StatusStr = "search stopped before any solution was found"
	default:
		res.Status = backend.StatusInfeasible
		res.StatusStr = "search space exhausted without a feasible solution"
	}
	srch.message("search finished: status %s, %d nodes explored", res.Status, srch.nodes)
	return res, nil
}

// search holds the state of one Solve call.
type search struct {
	m           *intmodel.Model
	prm         Parameters
	enumerate   bool
	messageCB   backend.MessageCallback
	solutionCB  backend.SolutionCallback
	interrupter *backend.Interrupter
	deadline    time.Time

	order  []int // variable branching order
	values []int64
	// actMin/actMax bracket each constraint's activity given the current
	// partial assignment.
	actMin []float64
	actMax []float64
	// objPartial accumulates offset plus assigned objective terms;
	// remainMin/remainMax bracket the unassigned terms.
	objPartial float64
	remainMin  float64
	remainMax  float64
	objCoef    []float64 // dense objective coefficients

	varCons [][]term // constraints each variable appears in

	nodes         int
	stopped       bool
	best          []int64
	bestObjective float64
	rootBound     float64
	pool          []backend.Solution
}

type term struct {
	constraint int
	coef       float64
}

func (s *search) message(format string, args ...any) {
	if s.messageCB != nil {
		s.messageCB(fmt.Sprintf(format, args...))
	}
}

func (s *search) run() {
	m := s.m
	n := len(m.Variables)
	s.values = make([]int64, n)
	s.objCoef = make([]float64, n)
	for k, vi := range m.Objective.VarIndex {
		s.objCoef[vi] = m.Objective.Coefficient[k]
	}

	s.varCons = make([][]term, n)
	s.actMin = make([]float64, len(m.Constraints))
	s.actMax = make([]float64, len(m.Constraints))
	for ci := range m.Constraints {
		c := &m.Constraints[ci]
		for k, vi := range c.VarIndex {
			coef := c.Coefficient[k]
			s.varCons[vi] = append(s.varCons[vi], term{constraint: ci, coef: coef})
			lo, hi := contribution(coef, m.Variables[vi])
			s.actMin[ci] += lo
			s.actMax[ci] += hi
		}
	}

	// A constraint whose activity bracket cannot reach its bounds is
	// infeasible before any branching. assign never revisits constraints with
	// no unassigned variables, so term-free constraints are only checked here.
	tol := s.prm.FeasibilityTolerance
	for ci := range m.Constraints {
		c := &m.Constraints[ci]
		if s.actMin[ci] > c.UpperBound+tol || s.actMax[ci] < c.LowerBound-tol {
			s.message("constraint %d cannot be satisfied over the variable domains", ci)
			return
		}
	}

	s.objPartial = m.Objective.Offset
	for j := 0; j < n; j++ {
		lo, hi := objContribution(s.objCoef[j], m.Variables[j])
		s.remainMin += lo
		s.remainMax += hi
	}
	s.rootBound = s.finalObjective(s.objPartial+s.remainMin, s.objPartial+s.remainMax, true)

	// branch on small domains first
	s.order = make([]int, n)
	for j := range s.order {
		s.order[j] = j
	}
	for i := 1; i < n; i++ {
		for k := i; k > 0 && domainSize(m.Variables[s.order[k]]) < domainSize(m.Variables[s.order[k-1]]); k-- {
			s.order[k], s.order[k-1] = s.order[k-1], s.order[k]
		}
	}

	s.message("starting search: %d variables, %d constraints", n, len(m.Constraints))
	s.branch(0)
}

func domainSize(v intmodel.Variable) int64 {
	return v.UpperBound - v.LowerBound
}

// contribution returns the range a term coef*x spans over x's domain.
func contribution(coef float64, v intmodel.Variable) (float64, float64) {
	a := coef * float64(v.LowerBound)
	b := coef * float64(v.UpperBound)
	if a > b {
		a, b = b, a
	}
	return a, b
}

func objContribution(coef float64, v intmodel.Variable) (float64, float64) {
	if coef == 0 {
		return 0, 0
	}
	return contribution(coef, v)
}

// finalObjective maps a raw objective range through the scaling factor and
// picks the extreme for the objective direction (best=true) or against it.
func (s *search) finalObjective(rawLo, rawHi float64, best bool) float64 {
	sf := s.m.Objective.ScalingFactor
	if sf == 0 {
		sf = 1
	}
	lo := rawLo * sf
	hi := rawHi * sf
	if lo > hi {
		lo, hi = hi, lo
	}
	if s.m.Objective.Maximize == best {
		return hi
	}
	return lo
}

// better reports whether objective value a improves on b.
func (s *search) better(a, b float64) bool {
	if s.m.Objective.Maximize {
		return a > b
	}
	return a < b
}

func (s *search) checkpoint() bool {
	if s.stopped {
		return true
	}
	if s.interrupter != nil && s.interrupter.Interrupted() {
		s.message("search interrupted")
		s.stopped = true
		return true
	}
	if !s.deadline.IsZero() && s.nodes%64 == 0 && time.Now().After(s.deadline) {
		s.message("time limit reached")
		s.stopped = true
		return true
	}
	return false
}

func (s *search) branch(depth int) {
	s.nodes++
	if s.checkpoint() {
		return
	}
	if depth == len(s.order) {
		s.accept()
		return
	}
	j := s.order[depth]
	v := s.m.Variables[j]

	tryValue := func(value int64) {
		if s.stopped {
			return
		}
		if s.assign(j, value) && (s.enumerate || s.best == nil || s.promising()) {
			s.branch(depth + 1)
		}
		s.unassign(j, value)
	}

	// try the hint value first
	hint, hinted := s.hintValue(j)
	if hinted {
		tryValue(hint)
	}
	for x := v.LowerBound; x <= v.UpperBound && !s.stopped; x++ {
		if hinted && x == hint {
			continue
		}
		tryValue(x)
	}
}

// promising reports whether the current partial assignment can still beat
// the incumbent.
func (s *search) promising() bool {
	optimistic := s.finalObjective(s.objPartial+s.remainMin, s.objPartial+s.remainMax, true)
	return s.better(optimistic, s.bestObjective)
}

// hintValue returns the hint value for variable j clamped to its domain, or
// false when the variable is unhinted.
func (s *search) hintValue(j int) (int64, bool) {
	h := s.m.Hint
	if h == nil {
		return 0, false
	}
	for k, vi := range h.VarIndex {
		if vi == j {
			v := s.m.Variables[j]
			value := h.Value[k]
			if value < v.LowerBound {
				value = v.LowerBound
			}
			if value > v.UpperBound {
				value = v.UpperBound
			}
			return value, true
		}
	}
	return 0, false
}

// assign sets variable j and updates activity brackets; it reports false
// when a constraint can no longer be satisfied.
func (s *search) assign(j int, value int64) bool {
	v := s.m.Variables[j]
	s.values[j] = value

	ok := true
	for _, t := range s.varCons[j] {
		lo, hi := contribution(t.coef, v)
		fixed := t.coef * float64(value)
		s.actMin[t.constraint] += fixed - lo
		s.actMax[t.constraint] += fixed - hi
		c := &s.m.Constraints[t.constraint]
		tol := s.prm.FeasibilityTolerance
		if s.actMin[t.constraint] > c.UpperBound+tol || s.actMax[t.constraint] < c.LowerBound-tol {
			ok = false
		}
	}

	lo, hi := objContribution(s.objCoef[j], v)
	fixed := s.objCoef[j] * float64(value)
	s.objPartial += fixed
	s.remainMin -= lo
	s.remainMax -= hi
	return ok
}

func (s *search) unassign(j int, value int64) {
	v := s.m.Variables[j]

	for _, t := range s.varCons[j] {
		lo, hi := contribution(t.coef, v)
		fixed := t.coef * float64(value)
		s.actMin[t.constraint] -= fixed - lo
		s.actMax[t.constraint] -= fixed - hi
	}

	lo, hi := objContribution(s.objCoef[j], v)
	fixed := s.objCoef[j] * float64(value)
	s.objPartial -= fixed
	s.remainMin += lo
	s.remainMax += hi
}

// accept records a full feasible assignment.
func (s *search) accept() {
	objective := s.m.Objective.Value(s.values)
	// non-nil even for a zero-variable model, where the empty assignment is
	// itself the solution
	solution := make([]int64, len(s.values))
	copy(solution, s.values)

	improved := s.best == nil || s.better(objective, s.bestObjective)
	if improved {
		s.best = solution
		s.bestObjective = objective
		s.message("objective improved to %v", objective)
	}
	if s.enumerate && len(s.pool) < s.prm.MaxSolutions {
		s.pool = append(s.pool, backend.Solution{ObjectiveValue: objective, Values: solution})
	}
	if s.solutionCB != nil && (improved || s.enumerate) {
		s.solutionCB(&backend.Solution{ObjectiveValue: objective, Values: solution})
	}
}
