package driver

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/kyu9/pakrat/spec"
)

type ParserOption func(p *Parser) error

// MakeTree makes every rule wrap its result in a *Node labelled with the
// rule name, ignoring custom actions. The resulting tree mirrors the
// grammar the way a concrete syntax tree does.
func MakeTree() ParserOption {
	return func(p *Parser) error {
		p.makeTree = true
		return nil
	}
}

// ActionHandler evaluates a custom grammar action given the values bound in
// its alternative. Without a handler, custom actions yield an *ActionNode.
type ActionHandler func(expr string, bindings map[string]Value) (Value, error)

func WithActionHandler(handler ActionHandler) ParserOption {
	return func(p *Parser) error {
		p.handler = handler
		return nil
	}
}

// WithLogger enables rule-level tracing: rule entry and outcome, memo table
// hits, and seed growth of left-recursive leaders.
func WithLogger(logger logrus.FieldLogger) ParserOption {
	return func(p *Parser) error {
		p.logger = logger
		return nil
	}
}

type memoState int

const (
	memoStateInProgress memoState = iota
	memoStateMatched
	memoStateFailed
)

type memoKey struct {
	rule int
	pos  int
}

type memoEntry struct {
	state memoState
	value Value
	end   int
}

// Parser executes a compiled grammar against one token stream. The memo
// table is owned by the parser and lives for one Parse call, so running
// independent parses concurrently only requires independent parsers.
type Parser struct {
	gram         *spec.CompiledGrammar
	toks         []*Token
	endTok       *Token
	memo         map[memoKey]*memoEntry
	hardKeywords map[string]struct{}
	handler      ActionHandler
	logger       logrus.FieldLogger
	makeTree     bool
	farthest     int
	consumed     int
}

func NewParser(gram *spec.CompiledGrammar, toks []*Token, opts ...ParserOption) (*Parser, error) {
	if len(gram.Rules) == 0 {
		return nil, fmt.Errorf("a compiled grammar must have at least one rule")
	}

	endTok := &Token{
		Category: tokenCategoryEndmarker,
	}
	if len(toks) > 0 {
		last := toks[len(toks)-1]
		endTok.Row = last.Row
		endTok.Col = last.Col + len(last.Text)
	}

	hardKeywords := make(map[string]struct{}, len(gram.HardKeywords))
	for _, kw := range gram.HardKeywords {
		hardKeywords[kw] = struct{}{}
	}

	p := &Parser{
		gram:         gram,
		toks:         toks,
		endTok:       endTok,
		hardKeywords: hardKeywords,
	}
	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Parse runs the start rule at position 0. A fresh memo table is used for
// every call; a table is never shared between parses.
func (p *Parser) Parse() (Value, error) {
	p.memo = map[memoKey]*memoEntry{}
	p.farthest = 0
	p.consumed = 0

	v, end, ok, err := p.applyRule(p.gram.StartRule, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		tok := p.tokenAt(p.farthest)
		return nil, &SyntaxError{
			Pos:   p.farthest,
			Row:   tok.Row,
			Col:   tok.Col,
			Token: tok,
		}
	}
	p.consumed = end
	return v, nil
}

// Consumed reports how many tokens the last successful Parse consumed.
func (p *Parser) Consumed() int {
	return p.consumed
}

func (p *Parser) applyRule(ruleIdx int, pos int) (Value, int, bool, error) {
	r := p.gram.Rules[ruleIdx]

	switch {
	case r.Leader:
		return p.applyLeaderRule(r, ruleIdx, pos)
	case r.LeftRecursive:
		// Non-leader members of a left-recursive component must see the
		// leader's current seed on every recursive call, so their own
		// results are never cached independently.
		return p.evalRuleBody(r, pos)
	case r.Memoize:
		return p.applyMemoizedRule(r, ruleIdx, pos)
	default:
		return p.evalRuleBody(r, pos)
	}
}

func (p *Parser) applyMemoizedRule(r *spec.CompiledRule, ruleIdx int, pos int) (Value, int, bool, error) {
	key := memoKey{
		rule: ruleIdx,
		pos:  pos,
	}
	if e, hit := p.memo[key]; hit {
		switch e.state {
		case memoStateMatched:
			p.trace(r, pos, "memo hit")
			return e.value, e.end, true, nil
		case memoStateFailed:
			p.trace(r, pos, "memo hit (failure)")
			return nil, 0, false, nil
		default:
			// The analyzer guarantees memoized rules are not
			// left-recursive, so re-entering one at the same position
			// is a compiler bug.
			return nil, 0, false, fmt.Errorf("internal error: rule %v re-entered at position %v", r.Name, pos)
		}
	}

	p.memo[key] = &memoEntry{
		state: memoStateInProgress,
	}
	v, end, ok, err := p.evalRuleBody(r, pos)
	if err != nil {
		// A forced-match error must not leave a partial cache entry.
		delete(p.memo, key)
		return nil, 0, false, err
	}
	if ok {
		p.memo[key] = &memoEntry{
			state: memoStateMatched,
			value: v,
			end:   end,
		}
	} else {
		p.memo[key] = &memoEntry{
			state: memoStateFailed,
		}
	}
	return v, end, ok, nil
}

// applyLeaderRule runs the seed-growing loop: seed the memo entry with
// failure, evaluate the body (recursive calls consume the seed), and keep
// re-evaluating while the match end advances. Each iteration either grows
// the end position or stops, so the loop runs at most once per remaining
// token.
func (p *Parser) applyLeaderRule(r *spec.CompiledRule, ruleIdx int, pos int) (Value, int, bool, error) {
	key := memoKey{
		rule: ruleIdx,
		pos:  pos,
	}
	if e, hit := p.memo[key]; hit {
		if e.state == memoStateMatched {
			p.trace(r, pos, "memo hit")
			return e.value, e.end, true, nil
		}
		p.trace(r, pos, "memo hit (seed)")
		return nil, 0, false, nil
	}

	p.trace(r, pos, "seeding")
	p.memo[key] = &memoEntry{
		state: memoStateFailed,
	}

	var bestValue Value
	bestEnd := pos
	matched := false
	for {
		v, end, ok, err := p.evalRuleBody(r, pos)
		if err != nil {
			delete(p.memo, key)
			return nil, 0, false, err
		}
		if !ok {
			break
		}
		if matched && end <= bestEnd {
			break
		}
		bestValue = v
		bestEnd = end
		matched = true
		p.memo[key] = &memoEntry{
			state: memoStateMatched,
			value: v,
			end:   end,
		}
		p.trace(r, pos, fmt.Sprintf("seed grown to %v", end))
		if end <= pos {
			break
		}
	}

	if matched {
		return bestValue, bestEnd, true, nil
	}
	return nil, 0, false, nil
}

func (p *Parser) evalRuleBody(r *spec.CompiledRule, pos int) (Value, int, bool, error) {
	p.trace(r, pos, "enter")
	v, end, ok, err := p.evalAlternatives(r.Alternatives, pos)
	if err != nil {
		return nil, 0, false, err
	}
	if !ok {
		p.trace(r, pos, "no match")
		return nil, 0, false, nil
	}
	if p.makeTree {
		v = &Node{
			KindName: r.Name,
			Children: flattenNodes(v),
		}
	}
	p.trace(r, pos, fmt.Sprintf("matched up to %v", end))
	return v, end, true, nil
}

// evalAlternatives is an ordered choice: the first alternative that matches
// wins. An alternative that passed a cut and then failed commits the whole
// choice to failure without trying its siblings.
func (p *Parser) evalAlternatives(alts []*spec.CompiledAlternative, pos int) (Value, int, bool, error) {
	for _, alt := range alts {
		v, end, ok, cut, err := p.evalAlternative(alt, pos)
		if err != nil {
			return nil, 0, false, err
		}
		if ok {
			return v, end, true, nil
		}
		if cut {
			return nil, 0, false, nil
		}
	}
	return nil, 0, false, nil
}

func (p *Parser) evalAlternative(alt *spec.CompiledAlternative, start int) (Value, int, bool, bool, error) {
	pos := start
	cut := false
	var values []Value
	var bindings map[string]Value

	for _, m := range alt.Matchers {
		if m.Op == spec.MatcherOpCut {
			cut = true
			continue
		}

		v, end, ok, err := p.evalMatcher(m, pos)
		if err != nil {
			return nil, 0, false, cut, err
		}
		if !ok {
			return nil, 0, false, cut, nil
		}
		pos = end

		// Lookaheads bind no value.
		if m.Op == spec.MatcherOpLookahead {
			continue
		}
		values = append(values, v)
		if m.Bind != "" {
			if bindings == nil {
				bindings = map[string]Value{}
			}
			bindings[m.Bind] = v
		}
	}

	v, err := p.buildResult(alt, values, bindings)
	if err != nil {
		return nil, 0, false, cut, err
	}
	return v, pos, true, cut, nil
}

func (p *Parser) buildResult(alt *spec.CompiledAlternative, values []Value, bindings map[string]Value) (Value, error) {
	action := alt.Action
	if p.makeTree || action == nil || action.Kind == spec.ActionKindDefault {
		switch len(values) {
		case 0:
			return nil, nil
		case 1:
			return values[0], nil
		default:
			return ValueList(values), nil
		}
	}

	switch action.Kind {
	case spec.ActionKindNone:
		return nil, nil
	case spec.ActionKindCustom:
		if bindings == nil {
			bindings = map[string]Value{}
		}
		if p.handler != nil {
			return p.handler(action.Expr, bindings)
		}
		return &ActionNode{
			Expr:     action.Expr,
			Bindings: bindings,
		}, nil
	}
	return nil, fmt.Errorf("unknown action kind: %v", action.Kind)
}

func (p *Parser) evalMatcher(m *spec.Matcher, pos int) (Value, int, bool, error) {
	switch m.Op {
	case spec.MatcherOpToken:
		tok := p.tokenAt(pos)
		if tok.Category != m.Text {
			return p.failToken(pos)
		}
		// Hard keywords are reserved: a plain NAME never matches them.
		if m.Text == "NAME" {
			if _, reserved := p.hardKeywords[tok.Text]; reserved {
				return p.failToken(pos)
			}
		}
		return p.tokenValue(tok), pos + 1, true, nil
	case spec.MatcherOpKeyword:
		tok := p.tokenAt(pos)
		if tok.Text != m.Text || (tok.Category != "NAME" && tok.Category != "OP") {
			return p.failToken(pos)
		}
		return p.tokenValue(tok), pos + 1, true, nil
	case spec.MatcherOpSoftKeyword:
		// A soft keyword is a refinement of NAME matching; the same text
		// still matches a plain NAME in other alternatives.
		tok := p.tokenAt(pos)
		if tok.Category != "NAME" || tok.Text != m.Text {
			return p.failToken(pos)
		}
		return p.tokenValue(tok), pos + 1, true, nil
	case spec.MatcherOpRule:
		return p.applyRule(m.Rule, pos)
	case spec.MatcherOpChoice:
		return p.evalAlternatives(m.Alternatives, pos)
	case spec.MatcherOpOpt:
		v, end, ok, err := p.evalMatcher(m.Sub, pos)
		if err != nil {
			return nil, 0, false, err
		}
		if ok {
			return v, end, true, nil
		}
		return nil, pos, true, nil
	case spec.MatcherOpRepeat:
		list := ValueList{}
		cur := pos
		for {
			v, end, ok, err := p.evalMatcher(m.Sub, cur)
			if err != nil {
				return nil, 0, false, err
			}
			if !ok || end == cur {
				break
			}
			list = append(list, v)
			cur = end
		}
		if m.Min == 1 && len(list) == 0 {
			return nil, 0, false, nil
		}
		return list, cur, true, nil
	case spec.MatcherOpGather:
		v, end, ok, err := p.evalMatcher(m.Sub, pos)
		if err != nil {
			return nil, 0, false, err
		}
		if !ok {
			return nil, 0, false, nil
		}
		list := ValueList{v}
		cur := end
		for {
			// Separator results are discarded; a trailing separator
			// without an element is backtracked.
			_, sepEnd, sepOK, err := p.evalMatcher(m.Sep, cur)
			if err != nil {
				return nil, 0, false, err
			}
			if !sepOK {
				break
			}
			ev, elemEnd, elemOK, err := p.evalMatcher(m.Sub, sepEnd)
			if err != nil {
				return nil, 0, false, err
			}
			if !elemOK || elemEnd == cur {
				break
			}
			list = append(list, ev)
			cur = elemEnd
		}
		return list, cur, true, nil
	case spec.MatcherOpLookahead:
		_, _, ok, err := p.evalMatcher(m.Sub, pos)
		if err != nil {
			return nil, 0, false, err
		}
		if ok != m.Positive {
			return nil, 0, false, nil
		}
		return nil, pos, true, nil
	case spec.MatcherOpCut:
		return nil, pos, true, nil
	case spec.MatcherOpForced:
		v, end, ok, err := p.evalMatcher(m.Sub, pos)
		if err != nil {
			return nil, 0, false, err
		}
		if ok {
			return v, end, true, nil
		}
		tok := p.tokenAt(pos)
		return nil, 0, false, &ForcedMatchError{
			Pos:      pos,
			Row:      tok.Row,
			Col:      tok.Col,
			Expected: p.describeMatcher(m.Sub),
		}
	}
	return nil, 0, false, fmt.Errorf("unknown matcher operation: %v", m.Op)
}

func (p *Parser) failToken(pos int) (Value, int, bool, error) {
	if pos > p.farthest {
		p.farthest = pos
	}
	return nil, 0, false, nil
}

func (p *Parser) tokenAt(pos int) *Token {
	if pos < len(p.toks) {
		return p.toks[pos]
	}
	return p.endTok
}

func (p *Parser) tokenValue(tok *Token) Value {
	return &Node{
		KindName: tok.Category,
		Text:     tok.Text,
		Row:      tok.Row,
		Col:      tok.Col,
	}
}

func (p *Parser) describeMatcher(m *spec.Matcher) string {
	switch m.Op {
	case spec.MatcherOpToken:
		return m.Text
	case spec.MatcherOpKeyword:
		return fmt.Sprintf("'%v'", m.Text)
	case spec.MatcherOpSoftKeyword:
		return fmt.Sprintf("%q", m.Text)
	case spec.MatcherOpRule:
		return p.gram.Rules[m.Rule].Name
	default:
		return string(m.Op)
	}
}

func (p *Parser) trace(r *spec.CompiledRule, pos int, msg string) {
	if p.logger == nil {
		return
	}
	p.logger.WithFields(logrus.Fields{
		"rule": r.Name,
		"pos":  pos,
	}).Debug(msg)
}
