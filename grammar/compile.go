package grammar

import (
	"sort"

	"github.com/kyu9/pakrat/spec"
)

// Compile analyzes the grammar and lowers every rule into its compiled
// plan. The grammar is read-only afterwards; the returned plan is immutable.
func Compile(gram *Grammar) (*spec.CompiledGrammar, error) {
	computeNullable(gram)
	err := computeLeftRecursive(gram)
	if err != nil {
		return nil, err
	}
	assignMemo(gram)

	rules := make([]*spec.CompiledRule, len(gram.rules))
	for i, r := range gram.rules {
		rules[i] = &spec.CompiledRule{
			Name:          r.name,
			Type:          r.typ,
			Alternatives:  compileAlternatives(r.alts),
			Nullable:      r.nullable,
			LeftRecursive: r.leftRecursive,
			Leader:        r.leader,
			Memoize:       r.memo,
		}
	}

	var directives map[string]string
	if len(gram.directives) > 0 {
		directives = make(map[string]string, len(gram.directives))
		for name, value := range gram.directives {
			directives[name] = value
		}
	}

	return &spec.CompiledGrammar{
		Name:            gram.name,
		StartRule:       0,
		Rules:           rules,
		HardKeywords:    sortedKeys(gram.hardKeywords),
		SoftKeywords:    sortedKeys(gram.softKeywords),
		TokenCategories: tokenCategories,
		Directives:      directives,
	}, nil
}

// assignMemo drops the memoization hint for rules whose every alternative
// is a single bare literal or token: caching those costs more than matching
// them. Left-recursive rules keep memoization unconditionally because the
// seed-growing loop depends on it.
func assignMemo(g *Grammar) {
	for _, r := range g.rules {
		if r.leftRecursive {
			r.memo = true
			continue
		}
		r.memo = !isTrivialRule(r)
	}
}

func isTrivialRule(r *rule) bool {
	for _, alt := range r.alts {
		if alt.hasAction || len(alt.items) != 1 {
			return false
		}
		ni := alt.items[0]
		if ni.name != "" {
			return false
		}
		if ni.item.kind != itemKindLiteral && ni.item.kind != itemKindTokenRef {
			return false
		}
	}
	return true
}

func compileAlternatives(alts []*alternative) []*spec.CompiledAlternative {
	compiled := make([]*spec.CompiledAlternative, len(alts))
	for i, alt := range alts {
		matchers := make([]*spec.Matcher, len(alt.items))
		for j, ni := range alt.items {
			matchers[j] = compileItem(ni)
		}
		action := &spec.Action{
			Kind: spec.ActionKindDefault,
		}
		if alt.hasAction {
			action = &spec.Action{
				Kind: spec.ActionKindCustom,
				Expr: alt.action,
			}
		}
		compiled[i] = &spec.CompiledAlternative{
			Matchers: matchers,
			Action:   action,
		}
	}
	return compiled
}

func compileItem(ni *namedItem) *spec.Matcher {
	m := compileBareItem(ni.item)
	m.Bind = ni.name
	return m
}

func compileBareItem(it *item) *spec.Matcher {
	switch it.kind {
	case itemKindLiteral:
		op := spec.MatcherOpKeyword
		if it.soft {
			op = spec.MatcherOpSoftKeyword
		}
		return &spec.Matcher{
			Op:   op,
			Text: it.literal,
		}
	case itemKindTokenRef:
		return &spec.Matcher{
			Op:   spec.MatcherOpToken,
			Text: it.category,
		}
	case itemKindRuleRef:
		return &spec.Matcher{
			Op:   spec.MatcherOpRule,
			Rule: it.rule,
		}
	case itemKindGroup:
		return &spec.Matcher{
			Op:           spec.MatcherOpChoice,
			Alternatives: compileAlternatives(it.alts),
		}
	case itemKindOpt:
		return &spec.Matcher{
			Op:  spec.MatcherOpOpt,
			Sub: compileBareItem(it.sub),
		}
	case itemKindRepeat0:
		return &spec.Matcher{
			Op:  spec.MatcherOpRepeat,
			Min: 0,
			Sub: compileBareItem(it.sub),
		}
	case itemKindRepeat1:
		return &spec.Matcher{
			Op:  spec.MatcherOpRepeat,
			Min: 1,
			Sub: compileBareItem(it.sub),
		}
	case itemKindGather:
		return &spec.Matcher{
			Op:  spec.MatcherOpGather,
			Sub: compileBareItem(it.sub),
			Sep: compileBareItem(it.sep),
		}
	case itemKindLookahead:
		return &spec.Matcher{
			Op:       spec.MatcherOpLookahead,
			Positive: it.positive,
			Sub:      compileBareItem(it.sub),
		}
	case itemKindCut:
		return &spec.Matcher{
			Op: spec.MatcherOpCut,
		}
	case itemKindForced:
		return &spec.Matcher{
			Op:  spec.MatcherOpForced,
			Sub: compileBareItem(it.sub),
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
