package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <compiled grammar file path>",
		Short:   "Print the analysis of a compiled grammar in a readable format",
		Example: `  pakrat show grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	fmt.Fprintf(os.Stdout, "grammar: %v\n", cgram.Name)
	fmt.Fprintf(os.Stdout, "start rule: %v\n", cgram.Rules[cgram.StartRule].Name)
	if len(cgram.HardKeywords) > 0 {
		fmt.Fprintf(os.Stdout, "hard keywords: %v\n", strings.Join(cgram.HardKeywords, ", "))
	}
	if len(cgram.SoftKeywords) > 0 {
		fmt.Fprintf(os.Stdout, "soft keywords: %v\n", strings.Join(cgram.SoftKeywords, ", "))
	}
	fmt.Fprintln(os.Stdout)

	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader([]string{"Rule", "Alts", "Nullable", "Left Recursive", "Leader", "Memoize"})
	t.SetAutoFormatHeaders(false)
	for _, r := range cgram.Rules {
		t.Append([]string{
			r.Name,
			fmt.Sprintf("%v", len(r.Alternatives)),
			yesNo(r.Nullable),
			yesNo(r.LeftRecursive),
			yesNo(r.Leader),
			yesNo(r.Memoize),
		})
	}
	t.Render()

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
