package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optkit/optkit"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints the optkit version and the available backends",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("optkit %s\n", optkit.Version)
		fmt.Printf("backends: %v\n", optkit.Backends())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
