package spec

import (
	"strings"
	"testing"

	verr "github.com/kyu9/pakrat/error"
)

func TestParse(t *testing.T) {
	name := func(text string) *ItemNode {
		return &ItemNode{
			Kind: NodeKindName,
			Text: text,
		}
	}
	hard := func(text string) *ItemNode {
		return &ItemNode{
			Kind: NodeKindHardLiteral,
			Text: text,
		}
	}
	soft := func(text string) *ItemNode {
		return &ItemNode{
			Kind: NodeKindSoftLiteral,
			Text: text,
		}
	}
	bind := func(bindName string, item *ItemNode) *ItemNode {
		item.BindName = bindName
		return item
	}
	group := func(alts ...*AlternativeNode) *ItemNode {
		return &ItemNode{
			Kind:         NodeKindGroup,
			Alternatives: alts,
		}
	}
	wrap := func(kind ItemNodeKind, expr *ItemNode) *ItemNode {
		return &ItemNode{
			Kind: kind,
			Expr: expr,
		}
	}
	gather := func(sep, elem *ItemNode) *ItemNode {
		return &ItemNode{
			Kind: NodeKindGather,
			Expr: elem,
			Sep:  sep,
		}
	}
	cut := func() *ItemNode {
		return &ItemNode{
			Kind: NodeKindCut,
		}
	}
	alt := func(items ...*ItemNode) *AlternativeNode {
		return &AlternativeNode{
			Items: items,
		}
	}
	altWithAction := func(action string, items ...*ItemNode) *AlternativeNode {
		return &AlternativeNode{
			Items:     items,
			Action:    action,
			HasAction: true,
		}
	}
	rule := func(ruleName string, alts ...*AlternativeNode) *RuleNode {
		return &RuleNode{
			Name:         ruleName,
			Alternatives: alts,
		}
	}
	typedRule := func(ruleName, typ string, alts ...*AlternativeNode) *RuleNode {
		r := rule(ruleName, alts...)
		r.Type = typ
		return r
	}
	dir := func(dirName, value string) *DirectiveNode {
		return &DirectiveNode{
			Name:  dirName,
			Value: value,
		}
	}

	tests := []struct {
		caption    string
		src        string
		directives []*DirectiveNode
		rules      []*RuleNode
		err        error
	}{
		{
			caption: "a rule is a sequence of items",
			src:     `start: NAME '=' expr`,
			rules: []*RuleNode{
				rule("start", alt(name("NAME"), hard("="), name("expr"))),
			},
		},
		{
			caption: "alternatives are separated by vertical bars and may start with one",
			src: `
expr:
    | expr '+' term
    | term
`,
			rules: []*RuleNode{
				rule("expr",
					alt(name("expr"), hard("+"), name("term")),
					alt(name("term")),
				),
			},
		},
		{
			caption: "rules are separated by newlines",
			src: `
a: b
b: 'x'
`,
			rules: []*RuleNode{
				rule("a", alt(name("b"))),
				rule("b", alt(hard("x"))),
			},
		},
		{
			caption: "postfix operators make optional and repeated items",
			src:     `start: a? b* c+`,
			rules: []*RuleNode{
				rule("start", alt(
					wrap(NodeKindOpt, name("a")),
					wrap(NodeKindRepeat0, name("b")),
					wrap(NodeKindRepeat1, name("c")),
				)),
			},
		},
		{
			caption: "brackets are an optional group",
			src:     `start: [a b] c`,
			rules: []*RuleNode{
				rule("start", alt(
					wrap(NodeKindOpt, group(alt(name("a"), name("b")))),
					name("c"),
				)),
			},
		},
		{
			caption: "a dotted atom followed by a plus is a gather",
			src:     `args: ','.arg+`,
			rules: []*RuleNode{
				rule("args", alt(gather(hard(","), name("arg")))),
			},
		},
		{
			caption: "lookaheads, the cut, and the forced operator are prefixes",
			src:     `start: &a !b ~ &&c`,
			rules: []*RuleNode{
				rule("start", alt(
					wrap(NodeKindPositiveLookahead, name("a")),
					wrap(NodeKindNegativeLookahead, name("b")),
					cut(),
					wrap(NodeKindForced, name("c")),
				)),
			},
		},
		{
			caption: "items can be bound to names and alternatives can carry actions",
			src:     `sum: l=sum '+' r=term { BinOp(l, r) }`,
			rules: []*RuleNode{
				rule("sum", altWithAction("BinOp(l, r)",
					bind("l", name("sum")),
					hard("+"),
					bind("r", name("term")),
				)),
			},
		},
		{
			caption: "a rule can declare a result type",
			src:     `expr[ast.Expr]: term`,
			rules: []*RuleNode{
				typedRule("expr", "ast.Expr", alt(name("term"))),
			},
		},
		{
			caption: "soft keywords are written with double quotes",
			src:     `small_stmt: "match" subject`,
			rules: []*RuleNode{
				rule("small_stmt", alt(soft("match"), name("subject"))),
			},
		},
		{
			caption: "directives precede the rules",
			src: `
@class Parser
@header { import tokens }

start: a
`,
			directives: []*DirectiveNode{
				dir("class", "Parser"),
				dir("header", "import tokens"),
			},
			rules: []*RuleNode{
				rule("start", alt(name("a"))),
			},
		},
		{
			caption: "a grammar must include at least one rule",
			src:     `@class Parser`,
			err:     synErrNoRule,
		},
		{
			caption: "a rule name must be followed by a colon",
			src:     `start a b`,
			err:     synErrNoColon,
		},
		{
			caption: "a rule with no alternatives is not allowed",
			src: `start:
a: 'x'
`,
			err: synErrEmptyRule,
		},
		{
			caption: "an empty group is not allowed",
			src:     `start: () a`,
			err:     synErrEmptyGroup,
		},
		{
			caption: "a group must be closed",
			src:     `start: (a b`,
			err:     synErrUnclosedGroup,
		},
		{
			caption: "an optional group must be closed",
			src:     `start: [a b`,
			err:     synErrUnclosedOption,
		},
		{
			caption: "a gather needs a trailing plus",
			src:     `args: ','.arg`,
			err:     synErrNoGatherPlus,
		},
		{
			caption: "a prefix operator needs an operand",
			src:     `start: a &`,
			err:     synErrNoItemAfterExpr,
		},
		{
			caption: "a binding needs an item",
			src:     `start: x=`,
			err:     synErrNoBoundItem,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			root, err := Parse(strings.NewReader(tt.src))
			if tt.err != nil {
				if err == nil {
					t.Fatalf("an expected error didn't occur; want: %v", tt.err)
				}
				specErr, ok := err.(*verr.SpecError)
				if !ok {
					t.Fatalf("unexpected error type: want: %T, got: %T (%v)", &verr.SpecError{}, err, err)
				}
				if specErr.Cause != tt.err {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.err, specErr.Cause)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testDirectives(t, root.Directives, tt.directives)
			if len(root.Rules) != len(tt.rules) {
				t.Fatalf("unexpected rule count; want: %v, got: %v", len(tt.rules), len(root.Rules))
			}
			for i, r := range root.Rules {
				testRule(t, r, tt.rules[i])
			}
		})
	}
}

func testDirectives(t *testing.T, dirs, expected []*DirectiveNode) {
	t.Helper()
	if len(dirs) != len(expected) {
		t.Fatalf("unexpected directive count; want: %v, got: %v", len(expected), len(dirs))
	}
	for i, d := range dirs {
		e := expected[i]
		if d.Name != e.Name || d.Value != e.Value {
			t.Fatalf("unexpected directive; want: %+v, got: %+v", e, d)
		}
	}
}

func testRule(t *testing.T, r, expected *RuleNode) {
	t.Helper()
	if r.Name != expected.Name {
		t.Fatalf("unexpected rule name; want: %v, got: %v", expected.Name, r.Name)
	}
	if r.Type != expected.Type {
		t.Fatalf("unexpected rule type; want: %v, got: %v", expected.Type, r.Type)
	}
	if len(r.Alternatives) != len(expected.Alternatives) {
		t.Fatalf("unexpected alternative count in rule %v; want: %v, got: %v", r.Name, len(expected.Alternatives), len(r.Alternatives))
	}
	for i, alt := range r.Alternatives {
		testAlternative(t, alt, expected.Alternatives[i])
	}
}

func testAlternative(t *testing.T, alt, expected *AlternativeNode) {
	t.Helper()
	if alt.HasAction != expected.HasAction || alt.Action != expected.Action {
		t.Fatalf("unexpected action; want: %v (%v), got: %v (%v)", expected.Action, expected.HasAction, alt.Action, alt.HasAction)
	}
	if len(alt.Items) != len(expected.Items) {
		t.Fatalf("unexpected item count; want: %v, got: %v", len(expected.Items), len(alt.Items))
	}
	for i, item := range alt.Items {
		testItem(t, item, expected.Items[i])
	}
}

func testItem(t *testing.T, item, expected *ItemNode) {
	t.Helper()
	if item.Kind != expected.Kind || item.BindName != expected.BindName || item.Text != expected.Text {
		t.Fatalf("unexpected item; want: %+v, got: %+v", expected, item)
	}
	if (item.Expr == nil) != (expected.Expr == nil) {
		t.Fatalf("unexpected sub expression; want: %+v, got: %+v", expected.Expr, item.Expr)
	}
	if item.Expr != nil {
		testItem(t, item.Expr, expected.Expr)
	}
	if (item.Sep == nil) != (expected.Sep == nil) {
		t.Fatalf("unexpected separator; want: %+v, got: %+v", expected.Sep, item.Sep)
	}
	if item.Sep != nil {
		testItem(t, item.Sep, expected.Sep)
	}
	if len(item.Alternatives) != len(expected.Alternatives) {
		t.Fatalf("unexpected group alternative count; want: %v, got: %v", len(expected.Alternatives), len(item.Alternatives))
	}
	for i, alt := range item.Alternatives {
		testAlternative(t, alt, expected.Alternatives[i])
	}
}
