package grammar

import (
	verr "github.com/kyu9/pakrat/error"
	"github.com/kyu9/pakrat/spec"
)

// Grammar is the analyzed intermediate representation of a PEG grammar.
// Rules live in a flat table addressed by a stable index; rule references
// hold an index into that table, never an owning link, so mutually
// recursive rule graphs need no special ownership handling.
type Grammar struct {
	name         string
	rules        []*rule
	ruleIndex    map[string]int
	hardKeywords map[string]struct{}
	softKeywords map[string]struct{}
	directives   map[string]string
}

func (g *Grammar) ruleByName(name string) *rule {
	i, ok := g.ruleIndex[name]
	if !ok {
		return nil
	}
	return g.rules[i]
}

var grammarDirectives = map[string]struct{}{
	"class":     {},
	"header":    {},
	"subheader": {},
	"trailer":   {},
}

type GrammarBuilder struct {
	AST *spec.RootNode

	// Name labels the compiled grammar; when empty, the @class directive
	// is used instead.
	Name string

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	g := &Grammar{
		name:         b.Name,
		ruleIndex:    map[string]int{},
		hardKeywords: map[string]struct{}{},
		softKeywords: map[string]struct{}{},
		directives:   map[string]string{},
	}

	for _, dir := range b.AST.Directives {
		if _, ok := grammarDirectives[dir.Name]; !ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDirInvalidName,
				Detail: dir.Name,
				Row:    dir.Pos.Row,
				Col:    dir.Pos.Col,
			})
			continue
		}
		if dir.Value == "" {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDirInvalidParam,
				Detail: dir.Name + " needs a parameter",
				Row:    dir.Pos.Row,
				Col:    dir.Pos.Col,
			})
			continue
		}
		g.directives[dir.Name] = dir.Value
	}
	if g.name == "" {
		g.name = g.directives["class"]
	}

	// Register every rule before resolving references so that forward and
	// cyclic references resolve to stable indices.
	for _, ruleNode := range b.AST.Rules {
		if _, exists := g.ruleIndex[ruleNode.Name]; exists {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateRule,
				Detail: ruleNode.Name,
				Row:    ruleNode.Pos.Row,
				Col:    ruleNode.Pos.Col,
			})
			continue
		}
		g.ruleIndex[ruleNode.Name] = len(g.rules)
		g.rules = append(g.rules, &rule{
			name: ruleNode.Name,
			typ:  ruleNode.Type,
			memo: true,
		})
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	for _, ruleNode := range b.AST.Rules {
		r := g.rules[g.ruleIndex[ruleNode.Name]]
		r.alts = b.genAlternatives(g, ruleNode.Alternatives)
	}

	for kw := range g.softKeywords {
		if _, ok := g.hardKeywords[kw]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrHardAndSoftKeyword,
				Detail: kw,
			})
		}
	}

	if len(b.errs) > 0 {
		return nil, b.errs
	}
	return g, nil
}

func (b *GrammarBuilder) genAlternatives(g *Grammar, nodes []*spec.AlternativeNode) []*alternative {
	alts := make([]*alternative, 0, len(nodes))
	for _, altNode := range nodes {
		alt := &alternative{
			action:    altNode.Action,
			hasAction: altNode.HasAction,
		}
		for _, itemNode := range altNode.Items {
			it := b.genItem(g, itemNode)
			if it == nil {
				continue
			}
			alt.items = append(alt.items, &namedItem{
				name: itemNode.BindName,
				item: it,
			})
		}
		alts = append(alts, alt)
	}
	return alts
}

func (b *GrammarBuilder) genItem(g *Grammar, node *spec.ItemNode) *item {
	switch node.Kind {
	case spec.NodeKindName:
		if i, ok := g.ruleIndex[node.Text]; ok {
			return &item{
				kind:     itemKindRuleRef,
				rule:     i,
				ruleName: node.Text,
			}
		}
		if isTokenCategory(node.Text) {
			return &item{
				kind:     itemKindTokenRef,
				category: node.Text,
			}
		}
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedSym,
			Detail: node.Text,
			Row:    node.Pos.Row,
			Col:    node.Pos.Col,
		})
		return nil
	case spec.NodeKindHardLiteral:
		if isIdentifierSpelling(node.Text) {
			g.hardKeywords[node.Text] = struct{}{}
		}
		return &item{
			kind:    itemKindLiteral,
			literal: node.Text,
		}
	case spec.NodeKindSoftLiteral:
		if !isIdentifierSpelling(node.Text) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrInvalidSoftKeyword,
				Detail: node.Text,
				Row:    node.Pos.Row,
				Col:    node.Pos.Col,
			})
			return nil
		}
		g.softKeywords[node.Text] = struct{}{}
		return &item{
			kind:    itemKindLiteral,
			literal: node.Text,
			soft:    true,
		}
	case spec.NodeKindGroup:
		return &item{
			kind: itemKindGroup,
			alts: b.genAlternatives(g, node.Alternatives),
		}
	case spec.NodeKindOpt:
		return &item{
			kind: itemKindOpt,
			sub:  b.genItem(g, node.Expr),
		}
	case spec.NodeKindRepeat0:
		return &item{
			kind: itemKindRepeat0,
			sub:  b.genItem(g, node.Expr),
		}
	case spec.NodeKindRepeat1:
		return &item{
			kind: itemKindRepeat1,
			sub:  b.genItem(g, node.Expr),
		}
	case spec.NodeKindGather:
		return &item{
			kind: itemKindGather,
			sub:  b.genItem(g, node.Expr),
			sep:  b.genItem(g, node.Sep),
		}
	case spec.NodeKindPositiveLookahead:
		return &item{
			kind:     itemKindLookahead,
			positive: true,
			sub:      b.genItem(g, node.Expr),
		}
	case spec.NodeKindNegativeLookahead:
		return &item{
			kind: itemKindLookahead,
			sub:  b.genItem(g, node.Expr),
		}
	case spec.NodeKindCut:
		return &item{
			kind: itemKindCut,
		}
	case spec.NodeKindForced:
		return &item{
			kind: itemKindForced,
			sub:  b.genItem(g, node.Expr),
		}
	}
	return nil
}
