package tester

import (
	"fmt"
	"strings"
	"testing"
)

func TestTester_Run(t *testing.T) {
	grammarSrc1 := `
s: foo bar baz
foo: 'foo'
bar: 'bar'
baz: 'baz'
`

	grammarSrc2 := `
expr: expr '+' term | term
term: NUMBER
`

	tests := []struct {
		caption string
		testSrc string
		error   bool
	}{
		{
			caption: "a test passes when the tree matches",
			testSrc: fmt.Sprintf(`A sequence of keywords
---
%v
---
foo bar baz
---
(s
    (foo (NAME 'foo')) (bar (NAME 'bar')) (baz (NAME 'baz')))
`, grammarSrc1),
		},
		{
			caption: "a test fails when a kind differs",
			testSrc: fmt.Sprintf(`A sequence of keywords
---
%v
---
foo bar baz
---
(s
    (foo (NAME 'foo')) (qux (NAME 'bar')) (baz (NAME 'baz')))
`, grammarSrc1),
			error: true,
		},
		{
			caption: "an underscore matches any kind",
			testSrc: fmt.Sprintf(`A sequence of keywords
---
%v
---
foo bar baz
---
(s
    (_ (NAME 'foo')) (_ (NAME 'bar')) (_ (NAME 'baz')))
`, grammarSrc1),
		},
		{
			caption: "an omitted lexeme matches any lexeme",
			testSrc: fmt.Sprintf(`A left-recursive expression
---
%v
---
1 + 2
---
(expr
    (expr (term (NUMBER))) (OP) (term (NUMBER)))
`, grammarSrc2),
		},
		{
			caption: "a test fails when the source does not parse",
			testSrc: fmt.Sprintf(`A left-recursive expression
---
%v
---
1 +
---
(expr (term (NUMBER '1')))
`, grammarSrc2),
			error: true,
		},
		{
			caption: "a test fails when tokens are left unconsumed",
			testSrc: fmt.Sprintf(`A left-recursive expression
---
%v
---
1 2
---
(expr (term (NUMBER '1')))
`, grammarSrc2),
			error: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			c, err := ParseTestCase(strings.NewReader(tt.testSrc))
			if err != nil {
				t.Fatal(err)
			}
			tester := &Tester{
				Cases: []*TestCaseWithMetadata{
					{
						TestCase: c,
						FilePath: "test",
					},
				},
			}
			rs := tester.Run()
			if len(rs) != 1 {
				t.Fatalf("unexpected result count; want: %v, got: %v", 1, len(rs))
			}
			if tt.error {
				if rs[0].Error == nil {
					t.Fatalf("an expected error didn't occur")
				}
			} else {
				if rs[0].Error != nil {
					t.Fatalf("unexpected error: %v", rs[0])
				}
			}
		})
	}
}

func TestParseTestCase(t *testing.T) {
	t.Run("a test case consists of four parts", func(t *testing.T) {
		src := `Description
---
s: NAME
---
foo
---
(s (NAME 'foo'))
`
		c, err := ParseTestCase(strings.NewReader(src))
		if err != nil {
			t.Fatal(err)
		}
		if c.Description != "Description" {
			t.Errorf("unexpected description; want: %v, got: %v", "Description", c.Description)
		}
		if strings.TrimSpace(string(c.Grammar)) != "s: NAME" {
			t.Errorf("unexpected grammar; want: %v, got: %v", "s: NAME", string(c.Grammar))
		}
		if strings.TrimSpace(string(c.Source)) != "foo" {
			t.Errorf("unexpected source; want: %v, got: %v", "foo", string(c.Source))
		}
		if c.Output == nil || c.Output.Kind != "s" {
			t.Errorf("unexpected output tree: %+v", c.Output)
		}
	})

	t.Run("a missing part is an error", func(t *testing.T) {
		src := `Description
---
s: NAME
---
foo
`
		_, err := ParseTestCase(strings.NewReader(src))
		if err == nil {
			t.Fatal("an expected error didn't occur")
		}
	})

	t.Run("a malformed tree is an error", func(t *testing.T) {
		src := `Description
---
s: NAME
---
foo
---
(s (NAME 'foo')
`
		_, err := ParseTestCase(strings.NewReader(src))
		if err == nil {
			t.Fatal("an expected error didn't occur")
		}
	})
}
