package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "optkit",
	Short: "optkit solves linear and mixed-integer optimization models",
	Long: `optkit reads an optimization model from a JSON or CBOR file, runs the
solve pipeline (validation, presolve, scaling, conversion) and solves it with
one of the registered backends. The response is printed as JSON, with all
variable values expressed in the model's original space.`,
	SilenceUsage: true,
}
