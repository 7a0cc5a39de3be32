package grammar

import (
	"strings"
	"testing"

	verr "github.com/kyu9/pakrat/error"
	"github.com/kyu9/pakrat/spec"
)

func TestGrammarBuilder_Build(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		err     error
	}{
		{
			caption: "a name must refer to a rule or a token category",
			src: `
start: nonexistent
`,
			err: semErrUndefinedSym,
		},
		{
			caption: "a rule cannot be defined twice",
			src: `
a: NAME
a: NUMBER
`,
			err: semErrDuplicateRule,
		},
		{
			caption: "a directive must be one the compiler knows",
			src: `
@flavor extra

start: NAME
`,
			err: semErrDirInvalidName,
		},
		{
			caption: "a directive needs a parameter",
			src: `
@class

start: NAME
`,
			err: semErrDirInvalidParam,
		},
		{
			caption: "a soft keyword must be spelled like an identifier",
			src: `
start: "+" NAME
`,
			err: semErrInvalidSoftKeyword,
		},
		{
			caption: "a keyword cannot be both hard and soft",
			src: `
a: 'match' NAME
b: "match" NAME
`,
			err: semErrHardAndSoftKeyword,
		},
		{
			caption: "a well-formed grammar builds without errors",
			src: `
@class Parser

start: stmt+
stmt: "match" NAME | NAME '=' NUMBER
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := spec.Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			b := GrammarBuilder{
				AST: ast,
			}
			_, err = b.Build()
			if tt.err == nil {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if err == nil {
				t.Fatalf("an expected error didn't occur; want: %v", tt.err)
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type; want: %T, got: %T (%v)", verr.SpecErrors{}, err, err)
			}
			found := false
			for _, specErr := range specErrs {
				if specErr.Cause == tt.err {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("unexpected errors; want: %v, got: %v", tt.err, specErrs)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	src := `
@class Calc

expr: l=expr '+' r=term { Add(l, r) } | term
term: NUMBER | '(' expr ')'
num: NUMBER
kw: 'if'
`
	g := buildGrammar(t, src)
	cgram, err := Compile(g)
	if err != nil {
		t.Fatal(err)
	}

	if cgram.Name != "test" {
		t.Errorf("unexpected grammar name; want: %v, got: %v", "test", cgram.Name)
	}
	if cgram.StartRule != 0 || cgram.Rules[cgram.StartRule].Name != "expr" {
		t.Errorf("the first rule must be the start rule; got rule %v at index %v", cgram.Rules[cgram.StartRule].Name, cgram.StartRule)
	}

	ruleByName := map[string]*spec.CompiledRule{}
	for _, r := range cgram.Rules {
		ruleByName[r.Name] = r
	}

	expr := ruleByName["expr"]
	if !expr.LeftRecursive || !expr.Leader || !expr.Memoize {
		t.Errorf("unexpected classification of expr: %+v", expr)
	}
	if expr.Alternatives[0].Action.Kind != spec.ActionKindCustom || expr.Alternatives[0].Action.Expr != "Add(l, r)" {
		t.Errorf("unexpected action: %+v", expr.Alternatives[0].Action)
	}
	if expr.Alternatives[0].Matchers[0].Bind != "l" {
		t.Errorf("unexpected binding: %+v", expr.Alternatives[0].Matchers[0])
	}
	if expr.Alternatives[1].Action.Kind != spec.ActionKindDefault {
		t.Errorf("unexpected action: %+v", expr.Alternatives[1].Action)
	}

	// num and kw are trivial wrappers, so caching them is pure overhead.
	if ruleByName["num"].Memoize {
		t.Errorf("a trivial rule must not be memoized: %+v", ruleByName["num"])
	}
	if ruleByName["kw"].Memoize {
		t.Errorf("a trivial rule must not be memoized: %+v", ruleByName["kw"])
	}
	if !ruleByName["term"].Memoize {
		t.Errorf("a non-trivial rule must be memoized: %+v", ruleByName["term"])
	}

	if len(cgram.HardKeywords) != 1 || cgram.HardKeywords[0] != "if" {
		t.Errorf("unexpected hard keywords: %v", cgram.HardKeywords)
	}
	if len(cgram.SoftKeywords) != 0 {
		t.Errorf("unexpected soft keywords: %v", cgram.SoftKeywords)
	}
	if cgram.Directives["class"] != "Calc" {
		t.Errorf("unexpected directives: %v", cgram.Directives)
	}
}
