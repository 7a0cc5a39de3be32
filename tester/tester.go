package tester

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kyu9/pakrat/driver"
	"github.com/kyu9/pakrat/grammar"
	"github.com/kyu9/pakrat/spec"
)

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*TreeDiff
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if len(r.Diffs) == 0 {
			return msg
		}
		var diffLines []string
		for _, diff := range r.Diffs {
			diffLines = append(diffLines, diff.Message)
			diffLines = append(diffLines, fmt.Sprintf("%vexpected path: %v", indent1, diff.ExpectedPath))
			diffLines = append(diffLines, fmt.Sprintf("%vactual path:   %v", indent1, diff.ActualPath))
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(testCasePath string) (*TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(f)
}

type Tester struct {
	Cases []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(c))
	}
	return rs
}

// runTest compiles the case's grammar, parses the case's source with the
// bundled tokenizer, and diffs the resulting tree against the expectation.
func runTest(c *TestCaseWithMetadata) *TestResult {
	fail := func(err error) *TestResult {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}
	if c.Error != nil {
		return fail(c.Error)
	}

	ast, err := spec.Parse(bytes.NewReader(c.TestCase.Grammar))
	if err != nil {
		return fail(err)
	}
	b := grammar.GrammarBuilder{
		AST:  ast,
		Name: strings.TrimSuffix(filepath.Base(c.FilePath), filepath.Ext(c.FilePath)),
	}
	g, err := b.Build()
	if err != nil {
		return fail(err)
	}
	cgram, err := grammar.Compile(g)
	if err != nil {
		return fail(err)
	}

	toks, err := driver.Tokenize(bytes.NewReader(c.TestCase.Source))
	if err != nil {
		return fail(err)
	}
	p, err := driver.NewParser(cgram, toks, driver.MakeTree())
	if err != nil {
		return fail(err)
	}
	v, err := p.Parse()
	if err != nil {
		return fail(err)
	}
	if p.Consumed() != len(toks) {
		return fail(fmt.Errorf("the parser left %v token(s) unconsumed", len(toks)-p.Consumed()))
	}

	root, ok := v.(*driver.Node)
	if !ok {
		return fail(fmt.Errorf("the parser did not produce a tree"))
	}
	diffs := DiffTree(c.TestCase.Output, genTree(root).Fill())
	if len(diffs) > 0 {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("output mismatch"),
			Diffs:        diffs,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}

func genTree(dTree *driver.Node) *Tree {
	if len(dTree.Children) == 0 {
		return NewTerminalNode(dTree.KindName, dTree.Text)
	}
	children := make([]*Tree, len(dTree.Children))
	for i, c := range dTree.Children {
		children[i] = genTree(c)
	}
	return NewNonTerminalTree(dTree.KindName, children...)
}
