package backend

import (
	"errors"

	"github.com/optkit/optkit/intmodel"
)

// Delegating is a backend that forwards Solve and Update verbatim to another
// backend, invoking an optional teardown callback when closed. It lets test
// or adapter code substitute a backend without changing the factory
// contract; it does not own the wrapped backend and never closes it.
type Delegating struct {
	inner    Backend
	teardown func()
}

// NewDelegating wraps the given backend. teardown may be nil.
func NewDelegating(inner Backend, teardown func()) (*Delegating, error) {
	if inner == nil {
		return nil, errors.New("nil delegate backend")
	}
	return &Delegating{inner: inner, teardown: teardown}, nil
}

// Solve forwards to the wrapped backend.
func (d *Delegating) Solve(params SolveParameters, messageCB MessageCallback, solutionCB SolutionCallback, interrupter *Interrupter) (*Result, error) {
	return d.inner.Solve(params, messageCB, solutionCB, interrupter)
}

// Update forwards to the wrapped backend.
func (d *Delegating) Update(upd *intmodel.Update) (bool, error) {
	return d.inner.Update(upd)
}

// Close invokes the teardown callback. The wrapped backend is left open.
func (d *Delegating) Close() error {
	if d.teardown != nil {
		d.teardown()
	}
	return nil
}
