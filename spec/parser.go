package spec

import (
	"io"

	verr "github.com/kyu9/pakrat/error"
)

type RootNode struct {
	Directives []*DirectiveNode
	Rules      []*RuleNode
}

type DirectiveNode struct {
	Name  string
	Value string
	Pos   Position
}

type RuleNode struct {
	Name         string
	Type         string
	Alternatives []*AlternativeNode
	Pos          Position
}

type AlternativeNode struct {
	Items     []*ItemNode
	Action    string
	HasAction bool
	Pos       Position
}

type ItemNodeKind string

const (
	NodeKindName              = ItemNodeKind("name")
	NodeKindHardLiteral       = ItemNodeKind("hard literal")
	NodeKindSoftLiteral       = ItemNodeKind("soft literal")
	NodeKindGroup             = ItemNodeKind("group")
	NodeKindOpt               = ItemNodeKind("opt")
	NodeKindRepeat0           = ItemNodeKind("repeat0")
	NodeKindRepeat1           = ItemNodeKind("repeat1")
	NodeKindGather            = ItemNodeKind("gather")
	NodeKindPositiveLookahead = ItemNodeKind("positive lookahead")
	NodeKindNegativeLookahead = ItemNodeKind("negative lookahead")
	NodeKindCut               = ItemNodeKind("cut")
	NodeKindForced            = ItemNodeKind("forced")
)

type ItemNode struct {
	Kind         ItemNodeKind
	BindName     string
	Text         string
	Alternatives []*AlternativeNode
	Expr         *ItemNode
	Sep          *ItemNode
	Pos          Position
}

func raiseSyntaxError(synErr *SyntaxError, pos Position) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   pos.Row,
		Col:   pos.Col,
	})
}

func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

type parser struct {
	lex     *lexer
	peeked  []*token
	lastTok *token
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			retErr = err.(error)
			return
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		if p.consume(tokenKindNewline) {
			continue
		}
		if p.consume(tokenKindEOF) {
			break
		}
		if p.consume(tokenKindAt) {
			root.Directives = append(root.Directives, p.parseDirective())
			continue
		}
		root.Rules = append(root.Rules, p.parseRule())
	}
	if len(root.Rules) == 0 {
		raiseSyntaxError(synErrNoRule, p.pos())
	}
	return root
}

func (p *parser) parseDirective() *DirectiveNode {
	dirPos := p.lastTok.pos
	if !p.consume(tokenKindName) {
		raiseSyntaxError(synErrNoDirectiveName, p.pos())
	}
	dir := &DirectiveNode{
		Name: p.lastTok.text,
		Pos:  dirPos,
	}
	switch {
	case p.consume(tokenKindName):
		dir.Value = p.lastTok.text
	case p.consume(tokenKindAction):
		dir.Value = p.lastTok.text
	case p.consume(tokenKindHardLiteral):
		dir.Value = p.lastTok.text
	}
	if !p.consume(tokenKindNewline) && !p.consume(tokenKindEOF) {
		raiseSyntaxError(synErrNoNewline, p.pos())
	}
	return dir
}

func (p *parser) parseRule() *RuleNode {
	if !p.consume(tokenKindName) {
		raiseSyntaxError(synErrNoRuleName, p.pos())
	}
	rule := &RuleNode{
		Name: p.lastTok.text,
		Pos:  p.lastTok.pos,
	}
	if p.consume(tokenKindLBracket) {
		rule.Type = p.parseRuleType()
	}
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(synErrNoColon, p.pos())
	}
	rule.Alternatives = p.parseAlternatives()
	if len(rule.Alternatives) == 1 && len(rule.Alternatives[0].Items) == 0 && !rule.Alternatives[0].HasAction {
		raiseSyntaxError(synErrEmptyRule, rule.Pos)
	}
	if !p.consume(tokenKindNewline) && !p.consume(tokenKindEOF) {
		raiseSyntaxError(synErrNoNewline, p.pos())
	}
	return rule
}

// parseRuleType assembles the host-language result type between brackets.
// The type is opaque to the compiler, so only its token spelling is kept.
func (p *parser) parseRuleType() string {
	var ty string
	for {
		switch {
		case p.consume(tokenKindName):
			ty += p.lastTok.text
		case p.consume(tokenKindDot):
			ty += "."
		case p.consume(tokenKindStar):
			ty += "*"
		case p.consume(tokenKindRBracket):
			if ty == "" {
				raiseSyntaxError(synErrNoRuleType, p.pos())
			}
			return ty
		default:
			raiseSyntaxError(synErrUnclosedRuleType, p.pos())
		}
	}
}

func (p *parser) parseAlternatives() []*AlternativeNode {
	p.skipNewlineBeforeOr()
	p.consume(tokenKindOr)
	alts := []*AlternativeNode{p.parseAlternative()}
	for {
		p.skipNewlineBeforeOr()
		if !p.consume(tokenKindOr) {
			break
		}
		alts = append(alts, p.parseAlternative())
	}
	return alts
}

// skipNewlineBeforeOr consumes a newline that only separates an alternative
// from a continuation line starting with '|'.
func (p *parser) skipNewlineBeforeOr() {
	if p.peek(0).kind == tokenKindNewline && p.peek(1).kind == tokenKindOr {
		p.next()
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	alt := &AlternativeNode{
		Pos: p.pos(),
	}
	for {
		item := p.parseItem()
		if item == nil {
			break
		}
		alt.Items = append(alt.Items, item)
	}
	if p.consume(tokenKindAction) {
		alt.Action = p.lastTok.text
		alt.HasAction = true
	}
	return alt
}

func (p *parser) parseItem() *ItemNode {
	if p.peek(0).kind == tokenKindName && p.peek(1).kind == tokenKindEq {
		bindTok := p.next()
		p.next()
		item := p.parseItem()
		if item == nil {
			raiseSyntaxError(synErrNoBoundItem, p.pos())
		}
		item.BindName = bindTok.text
		item.Pos = bindTok.pos
		return item
	}

	switch {
	case p.consume(tokenKindAmpAmp):
		pos := p.lastTok.pos
		expr := p.parsePostfixedAtom()
		if expr == nil {
			raiseSyntaxError(synErrNoItemAfterExpr, p.pos())
		}
		return &ItemNode{
			Kind: NodeKindForced,
			Expr: expr,
			Pos:  pos,
		}
	case p.consume(tokenKindAmp):
		pos := p.lastTok.pos
		expr := p.parsePostfixedAtom()
		if expr == nil {
			raiseSyntaxError(synErrNoItemAfterExpr, p.pos())
		}
		return &ItemNode{
			Kind: NodeKindPositiveLookahead,
			Expr: expr,
			Pos:  pos,
		}
	case p.consume(tokenKindBang):
		pos := p.lastTok.pos
		expr := p.parsePostfixedAtom()
		if expr == nil {
			raiseSyntaxError(synErrNoItemAfterExpr, p.pos())
		}
		return &ItemNode{
			Kind: NodeKindNegativeLookahead,
			Expr: expr,
			Pos:  pos,
		}
	case p.consume(tokenKindTilde):
		return &ItemNode{
			Kind: NodeKindCut,
			Pos:  p.lastTok.pos,
		}
	}
	return p.parsePostfixedAtom()
}

func (p *parser) parsePostfixedAtom() *ItemNode {
	atom := p.parseAtom()
	if atom == nil {
		return nil
	}

	// A dot makes the preceding atom the separator of a gather expression.
	if p.consume(tokenKindDot) {
		elem := p.parseAtom()
		if elem == nil {
			raiseSyntaxError(synErrNoGatherElem, p.pos())
		}
		if !p.consume(tokenKindPlus) {
			raiseSyntaxError(synErrNoGatherPlus, p.pos())
		}
		return &ItemNode{
			Kind: NodeKindGather,
			Sep:  atom,
			Expr: elem,
			Pos:  atom.Pos,
		}
	}

	for {
		switch {
		case p.consume(tokenKindQuestion):
			atom = &ItemNode{
				Kind: NodeKindOpt,
				Expr: atom,
				Pos:  atom.Pos,
			}
		case p.consume(tokenKindStar):
			atom = &ItemNode{
				Kind: NodeKindRepeat0,
				Expr: atom,
				Pos:  atom.Pos,
			}
		case p.consume(tokenKindPlus):
			atom = &ItemNode{
				Kind: NodeKindRepeat1,
				Expr: atom,
				Pos:  atom.Pos,
			}
		default:
			return atom
		}
	}
}

func (p *parser) parseAtom() *ItemNode {
	switch {
	case p.consume(tokenKindName):
		return &ItemNode{
			Kind: NodeKindName,
			Text: p.lastTok.text,
			Pos:  p.lastTok.pos,
		}
	case p.consume(tokenKindHardLiteral):
		return &ItemNode{
			Kind: NodeKindHardLiteral,
			Text: p.lastTok.text,
			Pos:  p.lastTok.pos,
		}
	case p.consume(tokenKindSoftLiteral):
		return &ItemNode{
			Kind: NodeKindSoftLiteral,
			Text: p.lastTok.text,
			Pos:  p.lastTok.pos,
		}
	case p.consume(tokenKindLParen):
		pos := p.lastTok.pos
		alts := p.parseAlternatives()
		if !p.consume(tokenKindRParen) {
			raiseSyntaxError(synErrUnclosedGroup, p.pos())
		}
		if len(alts) == 1 && len(alts[0].Items) == 0 {
			raiseSyntaxError(synErrEmptyGroup, pos)
		}
		return &ItemNode{
			Kind:         NodeKindGroup,
			Alternatives: alts,
			Pos:          pos,
		}
	case p.consume(tokenKindLBracket):
		pos := p.lastTok.pos
		alts := p.parseAlternatives()
		if !p.consume(tokenKindRBracket) {
			raiseSyntaxError(synErrUnclosedOption, p.pos())
		}
		return &ItemNode{
			Kind: NodeKindOpt,
			Expr: &ItemNode{
				Kind:         NodeKindGroup,
				Alternatives: alts,
				Pos:          pos,
			},
			Pos: pos,
		}
	}
	return nil
}

func (p *parser) pos() Position {
	return p.peek(0).pos
}

func (p *parser) peek(i int) *token {
	for len(p.peeked) <= i {
		tok, err := p.lex.next()
		if err != nil {
			panic(err)
		}
		p.peeked = append(p.peeked, tok)
	}
	return p.peeked[i]
}

func (p *parser) next() *token {
	tok := p.peek(0)
	p.peeked = p.peeked[1:]
	p.lastTok = tok
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek(0)
	if tok.kind == tokenKindInvalid {
		raiseSyntaxError(synErrInvalidToken, tok.pos)
	}
	if tok.kind == expected {
		p.next()
		return true
	}
	return false
}
