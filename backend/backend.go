// Package backend defines the contract solving backends must satisfy and the
// registry through which the solve pipeline instantiates them.
package backend

import (
	"github.com/rs/zerolog"

	"github.com/optkit/optkit/intmodel"
)

// MessageCallback receives diagnostic text emitted by a backend during Solve.
// It is invoked synchronously from within the Solve call and must not block
// indefinitely.
type MessageCallback func(msg string)

// SolutionCallback receives intermediate feasible solutions, in the
// backend's own variable space. It is invoked synchronously from within the
// Solve call and must not block indefinitely.
type SolutionCallback func(s *Solution)

// Backend is a solving engine bound to one fixed base model.
//
// A Backend is not safe for concurrent Solve/Update calls; sequential use
// only. Distinct instances are fully independent and may run concurrently.
type Backend interface {
	// Solve runs the search and returns a terminal result. Solve is called at
	// most once per instance unless the implementation documents reentrant
	// support. A nil interrupter means the solve is uninterruptible; a set
	// interrupter terminates the search at the backend's next checkpoint with
	// the best result found so far.
	Solve(params SolveParameters, messageCB MessageCallback, solutionCB SolutionCallback, interrupter *Interrupter) (*Result, error)

	// Update applies a diff against the instance's base model. It returns
	// true when the update was applied in place and a subsequent Solve
	// reflects it, and false (not an error) when this particular diff cannot
	// be applied incrementally, in which case the caller should discard the
	// instance and recreate it from the fully materialized model.
	Update(upd *intmodel.Update) (bool, error)

	// Close releases the resources held by the instance. The instance must
	// not be used afterwards.
	Close() error
}

// InitArgs carries instantiation-time arguments shared by all backends.
type InitArgs struct {
	Logger zerolog.Logger
}

// Factory instantiates a backend for the given model. It is a pure function,
// invoked once per fresh (non-updatable) solve.
type Factory func(m *intmodel.Model, args InitArgs) (Backend, error)
