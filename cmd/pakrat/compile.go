package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	verr "github.com/kyu9/pakrat/error"
	"github.com/kyu9/pakrat/grammar"
	"github.com/kyu9/pakrat/spec"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar you defined into a parsing plan",
		Example: `  pakrat compile grammar.peg -o grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}
	defer func() {
		if retErr != nil {
			specErrs, ok := retErr.(verr.SpecErrors)
			if ok {
				for _, err := range specErrs {
					err.FilePath = grmPath
					if grmPath != "" {
						err.SourceName = grmPath
					} else {
						err.SourceName = "stdin"
					}
				}
			}
		}
	}()

	var gram *grammar.Grammar
	if grmPath != "" {
		var err error
		gram, err = readGrammar(grmPath)
		if err != nil {
			return err
		}
	} else {
		ast, err := spec.Parse(os.Stdin)
		if err != nil {
			return err
		}
		b := grammar.GrammarBuilder{
			AST:  ast,
			Name: "stdin",
		}
		gram, err = b.Build()
		if err != nil {
			return err
		}
	}

	cgram, err := grammar.Compile(gram)
	if err != nil {
		return err
	}

	err = writeCompiledGrammar(cgram, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output file: %w", err)
	}

	return nil
}

func readGrammar(path string) (grm *grammar.Grammar, retErr error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	ast, err := spec.Parse(f)
	if err != nil {
		return nil, err
	}

	b := grammar.GrammarBuilder{
		AST:  ast,
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	return b.Build()
}

// writeCompiledGrammar writes a parsing plan to a file located at path. When
// path is a directory, the plan goes to <path>/<grammar-name>.json; when it
// is empty, the plan goes to the stdout.
func writeCompiledGrammar(cgram *spec.CompiledGrammar, path string) error {
	var w io.Writer
	switch {
	case path == "":
		w = os.Stdout
	default:
		outPath := path
		fi, err := os.Stat(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		if err == nil && fi.IsDir() {
			outPath = filepath.Join(path, cgram.Name+".json")
		}
		f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	b, err := json.Marshal(cgram)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v\n", string(b))
	return nil
}
