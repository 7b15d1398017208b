// Package optkit provides an orchestration layer that turns a generic
// mixed-integer optimization model into a solved result using a pluggable
// solving backend.
//
// A model is described in its original variable space (see the model
// package). The solve package validates it, applies invertible presolve and
// scaling transforms, converts it to the backend-native integer
// representation and invokes a backend registered in a backend.Registry.
// Whatever space the backend searched in, solutions are mapped back so the
// caller always receives values in the original variable space.
//
// Backends satisfy the backend.Backend contract; the built-in backend/bnb
// package provides a reference branch-and-bound engine.
package optkit

import (
	"github.com/blang/semver/v4"

	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/backend/bnb"
)

// Version of optkit.
var Version = semver.MustParse("0.1.0")

// NewRegistry returns a registry with the built-in backends registered.
func NewRegistry() *backend.Registry {
	r := backend.NewRegistry()
	if err := r.Register(bnb.SolverType, bnb.New); err != nil {
		// the registry is empty, a duplicate is not possible
		panic(err)
	}
	return r
}

// Backends returns the solver types registered by NewRegistry.
func Backends() []string {
	return []string{bnb.SolverType}
}
