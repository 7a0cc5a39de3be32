package spec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/kyu9/pakrat/error"
)

type tokenKind string

const (
	tokenKindName        = tokenKind("name")
	tokenKindHardLiteral = tokenKind("hard literal")
	tokenKindSoftLiteral = tokenKind("soft literal")
	tokenKindAction      = tokenKind("action")
	tokenKindColon       = tokenKind(":")
	tokenKindOr          = tokenKind("|")
	tokenKindLBracket    = tokenKind("[")
	tokenKindRBracket    = tokenKind("]")
	tokenKindLParen      = tokenKind("(")
	tokenKindRParen      = tokenKind(")")
	tokenKindQuestion    = tokenKind("?")
	tokenKindStar        = tokenKind("*")
	tokenKindPlus        = tokenKind("+")
	tokenKindDot         = tokenKind(".")
	tokenKindEq          = tokenKind("=")
	tokenKindAmp         = tokenKind("&")
	tokenKindAmpAmp      = tokenKind("&&")
	tokenKindBang        = tokenKind("!")
	tokenKindTilde       = tokenKind("~")
	tokenKindAt          = tokenKind("@")
	tokenKindNewline     = tokenKind("newline")
	tokenKindEOF         = tokenKind("eof")
	tokenKindInvalid     = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newTextToken(kind tokenKind, text string, pos Position) *token {
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}
}

func newEOFToken() *token {
	return &token{
		kind: tokenKindEOF,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

// metaLexSpec describes the lexical elements of the .peg language. The spec
// is compiled on first use and the compiled form is shared by all lexers.
func metaLexSpec() *mlspec.LexSpec {
	entries := []*mlspec.LexEntry{
		{Kind: "white_space", Pattern: `[\u{0009}\u{0020}]+`},
		{Kind: "line_comment", Pattern: `#[^\u{000A}]*`},
		{Kind: "newline", Pattern: `\u{000D}?\u{000A}`},
		{Kind: "identifier", Pattern: `[A-Za-z_][0-9A-Za-z_]*`},
		{Kind: "hard_literal", Pattern: `'[^'\u{000A}]+'`},
		{Kind: "soft_literal", Pattern: `"[^"\u{000A}]+"`},
		{Kind: "amp_amp", Pattern: `&&`},
		{Kind: "amp", Pattern: `&`},
		{Kind: "bang", Pattern: `!`},
		{Kind: "tilde", Pattern: `~`},
		{Kind: "colon", Pattern: `:`},
		{Kind: "or", Pattern: `\|`},
		{Kind: "l_bracket", Pattern: `\[`},
		{Kind: "r_bracket", Pattern: `\]`},
		{Kind: "l_paren", Pattern: `\(`},
		{Kind: "r_paren", Pattern: `\)`},
		{Kind: "question", Pattern: `\?`},
		{Kind: "star", Pattern: `\*`},
		{Kind: "plus", Pattern: `\+`},
		{Kind: "dot", Pattern: `[.]`},
		{Kind: "eq", Pattern: `=`},
		{Kind: "at", Pattern: `@`},
		{Kind: "action_open", Pattern: `[{]`, Push: "action"},
		{Kind: "nested_action_open", Pattern: `[{]`, Push: "action",
			Modes: []mlspec.LexModeName{"action"}},
		{Kind: "action_close", Pattern: `[}]`, Pop: true,
			Modes: []mlspec.LexModeName{"action"}},
		{Kind: "action_text", Pattern: `[^{}]+`,
			Modes: []mlspec.LexModeName{"action"}},
	}
	return &mlspec.LexSpec{
		Name:    "peg",
		Entries: entries,
	}
}

var (
	compileMetaLexSpecOnce sync.Once
	compiledMetaLexSpec    *mlspec.CompiledLexSpec
	compileMetaLexSpecErr  error
)

func compiledLexSpec() (*mlspec.CompiledLexSpec, error) {
	compileMetaLexSpecOnce.Do(func() {
		clspec, err, cErrs := mlcompiler.Compile(metaLexSpec(), mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				fmt.Fprintf(&b, "%v: %v", cErrs[0].Kind, cErrs[0].Cause)
				for _, cerr := range cErrs[1:] {
					fmt.Fprintf(&b, "\n%v: %v", cerr.Kind, cerr.Cause)
				}
				compileMetaLexSpecErr = fmt.Errorf("%v", b.String())
				return
			}
			compileMetaLexSpecErr = err
			return
		}
		compiledMetaLexSpec = clspec
	})
	return compiledMetaLexSpec, compileMetaLexSpecErr
}

type lexer struct {
	clspec *mlspec.CompiledLexSpec
	d      *mldriver.Lexer
	buf    *token
}

func newLexer(src io.Reader) (*lexer, error) {
	clspec, err := compiledLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(clspec), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		clspec: clspec,
		d:      d,
	}, nil
}

func (l *lexer) kindName(tok *mldriver.Token) string {
	return l.clspec.KindNames[tok.KindID].String()
}

// next returns the next token, skipping white spaces and comments and
// collapsing consecutive newlines into one.
func (l *lexer) next() (*token, error) {
	if l.buf != nil {
		tok := l.buf
		l.buf = nil
		return tok, nil
	}

	var newline *token
	for {
		tok, err := l.lexAndSkipWSs()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindNewline {
			newline = tok
			continue
		}

		if newline != nil {
			l.buf = tok
			return newline, nil
		}
		return tok, nil
	}
}

func (l *lexer) lexAndSkipWSs() (*token, error) {
	var tok *mldriver.Token
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.Invalid {
			return newInvalidToken(string(tok.Lexeme), newPosition(tok.Row+1, tok.Col+1)), nil
		}
		if tok.EOF {
			return newEOFToken(), nil
		}
		switch l.kindName(tok) {
		case "white_space":
			continue
		case "line_comment":
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	switch l.kindName(tok) {
	case "newline":
		return newSymbolToken(tokenKindNewline, pos), nil
	case "identifier":
		return newTextToken(tokenKindName, string(tok.Lexeme), pos), nil
	case "hard_literal":
		return newTextToken(tokenKindHardLiteral, strings.Trim(string(tok.Lexeme), "'"), pos), nil
	case "soft_literal":
		return newTextToken(tokenKindSoftLiteral, strings.Trim(string(tok.Lexeme), `"`), pos), nil
	case "amp_amp":
		return newSymbolToken(tokenKindAmpAmp, pos), nil
	case "amp":
		return newSymbolToken(tokenKindAmp, pos), nil
	case "bang":
		return newSymbolToken(tokenKindBang, pos), nil
	case "tilde":
		return newSymbolToken(tokenKindTilde, pos), nil
	case "colon":
		return newSymbolToken(tokenKindColon, pos), nil
	case "or":
		return newSymbolToken(tokenKindOr, pos), nil
	case "l_bracket":
		return newSymbolToken(tokenKindLBracket, pos), nil
	case "r_bracket":
		return newSymbolToken(tokenKindRBracket, pos), nil
	case "l_paren":
		return newSymbolToken(tokenKindLParen, pos), nil
	case "r_paren":
		return newSymbolToken(tokenKindRParen, pos), nil
	case "question":
		return newSymbolToken(tokenKindQuestion, pos), nil
	case "star":
		return newSymbolToken(tokenKindStar, pos), nil
	case "plus":
		return newSymbolToken(tokenKindPlus, pos), nil
	case "dot":
		return newSymbolToken(tokenKindDot, pos), nil
	case "eq":
		return newSymbolToken(tokenKindEq, pos), nil
	case "at":
		return newSymbolToken(tokenKindAt, pos), nil
	case "action_open":
		return l.lexActionBlock(pos)
	default:
		return newInvalidToken(string(tok.Lexeme), pos), nil
	}
}

// lexActionBlock consumes a brace-delimited action block, keeping nested
// braces intact. The surrounding braces are not part of the token text.
func (l *lexer) lexActionBlock(open Position) (*token, error) {
	var b strings.Builder
	depth := 1
	for {
		tok, err := l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return nil, &verr.SpecError{
				Cause: synErrUnclosedAction,
				Row:   open.Row,
				Col:   open.Col,
			}
		}
		switch l.kindName(tok) {
		case "nested_action_open":
			depth++
			b.WriteString("{")
		case "action_close":
			depth--
			if depth == 0 {
				return newTextToken(tokenKindAction, strings.TrimSpace(b.String()), open), nil
			}
			b.WriteString("}")
		case "action_text":
			b.WriteString(string(tok.Lexeme))
		}
	}
}
