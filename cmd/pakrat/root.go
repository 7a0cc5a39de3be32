package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pakrat",
	Short: "Generate a portable parsing plan from a PEG",
	Long: `pakrat compiles a parsing expression grammar into a portable parsing plan
and runs the plan directly:
- Compiles a grammar into a plan a backtracking packrat parser can execute.
- Parses a text stream according to a compiled plan.
  This feature is primarily aimed at debugging the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
