package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/kyu9/pakrat/driver"
	"github.com/kyu9/pakrat/spec"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source    *string
	tokens    *bool
	onlyParse *bool
	verbose   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <compiled grammar file path>",
		Short:   "Parse a text stream",
		Example: `  cat src | pakrat parse grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.tokens = cmd.Flags().Bool("tokens", false, "when this option is enabled, the source is a JSON token stream instead of a text")
	parseFlags.onlyParse = cmd.Flags().Bool("only-parse", false, "when this option is enabled, the parser reports success or failure without printing a tree")
	parseFlags.verbose = cmd.Flags().Bool("verbose", false, "trace rule applications and memo table activity")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	var src io.Reader = os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	var toks []*driver.Token
	if *parseFlags.tokens {
		toks, err = driver.ReadTokens(src)
	} else {
		toks, err = driver.Tokenize(src)
	}
	if err != nil {
		return err
	}

	opts := []driver.ParserOption{
		driver.MakeTree(),
	}
	if *parseFlags.verbose {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
		opts = append(opts, driver.WithLogger(logger))
	}

	p, err := driver.NewParser(cgram, toks, opts...)
	if err != nil {
		return err
	}

	v, err := p.Parse()
	if err != nil {
		printParseError(err)
		return fmt.Errorf("Parse failed")
	}
	if rest := len(toks) - p.Consumed(); rest > 0 {
		tok := toks[p.Consumed()]
		fmt.Fprintf(os.Stderr, "%v %v token(s) unconsumed from %v:%v: '%v' (%v)\n",
			color.YellowString("warning:"), rest, tok.Row, tok.Col, tok.Text, tok.Category)
	}

	if !*parseFlags.onlyParse {
		if tree, ok := v.(*driver.Node); ok {
			driver.PrintTree(os.Stdout, tree)
		}
	}

	return nil
}

func printParseError(err error) {
	errLabel := color.New(color.FgRed).Sprint("error:")
	switch e := err.(type) {
	case *driver.SyntaxError:
		fmt.Fprintf(os.Stderr, "%v %v\n", errLabel, e)
	case *driver.ForcedMatchError:
		fmt.Fprintf(os.Stderr, "%v %v\n", errLabel, e)
	default:
		fmt.Fprintf(os.Stderr, "%v %v\n", errLabel, err)
	}
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return nil, err
	}
	if len(cgram.Rules) == 0 {
		return nil, fmt.Errorf("a compiled grammar must have at least one rule")
	}
	if cgram.StartRule < 0 || cgram.StartRule >= len(cgram.Rules) {
		return nil, fmt.Errorf("the start rule #%v is out of range", cgram.StartRule)
	}
	return cgram, nil
}
