package driver

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

// demoLexSpec describes a small expression-like source language the bundled
// tokenizer understands: identifiers, integer and decimal numbers, quoted
// strings, and punctuation. Line structure is not reported, so grammars fed
// through this tokenizer cannot reference NEWLINE, INDENT, or DEDENT.
func demoLexSpec() *mlspec.LexSpec {
	entries := []*mlspec.LexEntry{
		{Kind: "white_space", Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`},
		{Kind: "line_comment", Pattern: `#[^\u{000A}]*`},
		{Kind: "name", Pattern: `[A-Za-z_][0-9A-Za-z_]*`},
		{Kind: "number", Pattern: `[0-9]+(\.[0-9]+)?`},
		{Kind: "string", Pattern: `'[^'\u{000A}]*'`},
		{Kind: "op_2", Pattern: `==|!=|<=|>=|->|\*\*|//`},
		{Kind: "op_1", Pattern: `[-+*/%=<>!,.:;?@&|^~()[\]{}]`},
	}
	return &mlspec.LexSpec{
		Name:    "demo",
		Entries: entries,
	}
}

var (
	compileDemoLexSpecOnce sync.Once
	compiledDemoLexSpec    *mlspec.CompiledLexSpec
	compileDemoLexSpecErr  error
)

func compiledLexSpec() (*mlspec.CompiledLexSpec, error) {
	compileDemoLexSpecOnce.Do(func() {
		clspec, err, cErrs := mlcompiler.Compile(demoLexSpec(), mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				compileDemoLexSpecErr = fmt.Errorf("%v: %v", cErrs[0].Kind, cErrs[0].Cause)
				return
			}
			compileDemoLexSpecErr = err
			return
		}
		compiledDemoLexSpec = clspec
	})
	return compiledDemoLexSpec, compileDemoLexSpecErr
}

// Tokenize splits src into driver tokens using the bundled tokenizer.
// String tokens keep their text without the surrounding quotes.
func Tokenize(src io.Reader) ([]*Token, error) {
	clspec, err := compiledLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(clspec), src)
	if err != nil {
		return nil, err
	}

	var toks []*Token
	for {
		tok, err := d.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return toks, nil
		}
		if tok.Invalid {
			return nil, fmt.Errorf("%v:%v: invalid character sequence: '%v'", tok.Row+1, tok.Col+1, string(tok.Lexeme))
		}

		var category, text string
		kindName := clspec.KindNames[tok.KindID].String()
		switch kindName {
		case "white_space", "line_comment":
			continue
		case "name":
			category = "NAME"
			text = string(tok.Lexeme)
		case "number":
			category = "NUMBER"
			text = string(tok.Lexeme)
		case "string":
			category = "STRING"
			text = strings.Trim(string(tok.Lexeme), "'")
		case "op_2", "op_1":
			category = "OP"
			text = string(tok.Lexeme)
		default:
			return nil, fmt.Errorf("unknown token kind: %v", kindName)
		}
		toks = append(toks, &Token{
			Category: category,
			Text:     text,
			Row:      tok.Row + 1,
			Col:      tok.Col + 1,
		})
	}
}
