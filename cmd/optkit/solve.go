package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/optkit/optkit"
	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/backend/bnb"
	"github.com/optkit/optkit/model"
	"github.com/optkit/optkit/solve"
)

var solveCmd = &cobra.Command{
	Use:   "solve [model.json|model.cbor]",
	Short: "solves a model file and prints the response as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  cmdSolve,
}

var (
	fSolver           string
	fTimeLimit        time.Duration
	fPresolve         int
	fEnumerateAll     bool
	fVarScaling       float64
	fMaxBound         float64
	fScaleLargeDomain bool
	fOnlyIntegers     bool
	fLogProgress      bool
	fSolverParams     string
)

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringVar(&fSolver, "solver", bnb.SolverType, "solver type to use")
	solveCmd.Flags().DurationVar(&fTimeLimit, "time-limit", 0, "wall-clock time limit, 0 means none")
	solveCmd.Flags().IntVar(&fPresolve, "presolve", backend.DefaultPresolveLevel, "MIP presolve level, 0 disables presolve")
	solveCmd.Flags().BoolVar(&fEnumerateAll, "enumerate-all", false, "enumerate all solutions (disables presolve)")
	solveCmd.Flags().Float64Var(&fVarScaling, "var-scaling", 1, "scaling factor for continuous variables")
	solveCmd.Flags().Float64Var(&fMaxBound, "max-bound", backend.DefaultMaxBound, "magnitude cap on scaled domains and hints")
	solveCmd.Flags().BoolVar(&fScaleLargeDomain, "scale-large-domain", false, "scale continuous variables past the max-bound ceiling")
	solveCmd.Flags().BoolVar(&fOnlyIntegers, "only-integers", false, "fail unless the model is pure integer after scaling")
	solveCmd.Flags().BoolVar(&fLogProgress, "log-progress", false, "print search progress")
	solveCmd.Flags().StringVar(&fSolverParams, "solver-params", "", "textual key:value solver-specific parameters")
}

func cmdSolve(cmd *cobra.Command, args []string) error {
	m, err := readModel(filepath.Clean(args[0]))
	if err != nil {
		return err
	}

	params := backend.DefaultSolveParameters()
	params.TimeLimit = fTimeLimit
	params.PresolveLevel = fPresolve
	params.EnumerateAllSolutions = fEnumerateAll
	params.VarScaling = fVarScaling
	params.MaxBound = fMaxBound
	params.ScaleLargeDomain = fScaleLargeDomain
	params.OnlySolveIntegers = fOnlyIntegers
	params.LogSearchProgress = fLogProgress
	if fSolverParams != "" {
		params.SolverSpecific = []byte(fSolverParams)
	}

	resp, err := solve.Solve(optkit.NewRegistry(), fSolver, m, params)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func readModel(path string) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := new(model.Model)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbor":
		if err := cbor.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("parsing CBOR model %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("parsing JSON model %s: %w", path, err)
		}
	}
	return m, nil
}
