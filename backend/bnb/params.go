package bnb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Parameters are the bnb-specific solve parameters, carried in the opaque
// SolverSpecific blob of backend.SolveParameters.
type Parameters struct {
	// MaxSolutions caps the solution pool kept when enumerating all
	// solutions.
	MaxSolutions int `cbor:"max_solutions"`

	// FeasibilityTolerance is the absolute tolerance used when checking
	// constraint activities.
	FeasibilityTolerance float64 `cbor:"feasibility_tolerance"`
}

// DefaultParameters returns the default bnb parameters.
func DefaultParameters() Parameters {
	return Parameters{
		MaxSolutions:         16,
		FeasibilityTolerance: 1e-6,
	}
}

// EncodeParameters serializes parameters to the binary form accepted by
// DecodeParameters, for use as the SolverSpecific blob.
func EncodeParameters(p Parameters) ([]byte, error) {
	return cbor.Marshal(p)
}

// DecodeParameters parses a SolverSpecific blob. The blob is binary (CBOR)
// when produced by EncodeParameters; a textual "key: value" encoding, one
// entry per line, is accepted as a fallback.
func DecodeParameters(blob []byte) (Parameters, error) {
	p := DefaultParameters()
	if len(blob) == 0 {
		return p, nil
	}
	if err := cbor.Unmarshal(blob, &p); err == nil {
		if p.MaxSolutions <= 0 {
			p.MaxSolutions = DefaultParameters().MaxSolutions
		}
		if p.FeasibilityTolerance <= 0 {
			p.FeasibilityTolerance = DefaultParameters().FeasibilityTolerance
		}
		return p, nil
	}
	if err := parseTextParameters(blob, &p); err != nil {
		return Parameters{}, fmt.Errorf("solver specific parameters are neither valid binary nor textual bnb parameters: %w", err)
	}
	return p, nil
}

func parseTextParameters(blob []byte, p *Parameters) error {
	for _, line := range strings.Split(string(blob), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return fmt.Errorf("malformed line %q", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "max_solutions":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid max_solutions %q", value)
			}
			p.MaxSolutions = n
		case "feasibility_tolerance":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid feasibility_tolerance %q", value)
			}
			p.FeasibilityTolerance = f
		default:
			return fmt.Errorf("unknown parameter %q", key)
		}
	}
	return nil
}
