package backend

import "time"

const (
	// DefaultMaxBound caps the magnitude of variable domains and hint values
	// seen by a backend.
	DefaultMaxBound = 1e7

	// DefaultPresolveLevel enables the full MIP presolve chain.
	DefaultPresolveLevel = 2
)

// SolveParameters configures one Solve call. The zero value is not a useful
// configuration; start from DefaultSolveParameters.
type SolveParameters struct {
	// TimeLimit caps the wall-clock search time. Zero means no limit.
	TimeLimit time.Duration

	// PresolveLevel controls the MIP presolve chain; 0 disables it.
	PresolveLevel int

	// EnumerateAllSolutions asks the backend for every feasible solution and
	// disables presolve and early-exit shortcuts.
	EnumerateAllSolutions bool

	// VarScaling multiplies continuous variable domains before conversion to
	// the backend's integer representation. 1 disables scaling.
	VarScaling float64

	// MaxBound caps the magnitude of scaled variable domains and hint values.
	MaxBound float64

	// ScaleLargeDomain lifts the MaxBound ceiling during continuous variable
	// scaling, letting large domains scale without truncation.
	ScaleLargeDomain bool

	// DetectImpliedIntegers enables the detection of continuous variables
	// that only take integer values.
	DetectImpliedIntegers bool

	// OnlySolveIntegers rejects, with a MODEL_INVALID outcome, any model
	// that still contains non-integer variables after scaling.
	OnlySolveIntegers bool

	// SolverSpecific is an opaque parameter blob passed through to the
	// backend. Backends document their own encoding; the built-in backends
	// accept CBOR binary or a textual key:value encoding.
	SolverSpecific []byte

	// LogSearchProgress enables search-progress logging.
	LogSearchProgress bool

	// LogToStdout routes search-progress logs to stdout in addition to any
	// message callback.
	LogToStdout bool
}

// DefaultSolveParameters returns the default solve configuration.
func DefaultSolveParameters() SolveParameters {
	return SolveParameters{
		PresolveLevel:         DefaultPresolveLevel,
		VarScaling:            1,
		MaxBound:              DefaultMaxBound,
		DetectImpliedIntegers: true,
		LogToStdout:           true,
	}
}
