package driver

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		tokens  []*Token
		err     bool
	}{
		{
			caption: "the tokenizer recognizes names, numbers, strings, and operators",
			src:     `x = f(1, 2.5) + 'hi'`,
			tokens: []*Token{
				{Category: "NAME", Text: "x", Row: 1, Col: 1},
				{Category: "OP", Text: "=", Row: 1, Col: 3},
				{Category: "NAME", Text: "f", Row: 1, Col: 5},
				{Category: "OP", Text: "(", Row: 1, Col: 6},
				{Category: "NUMBER", Text: "1", Row: 1, Col: 7},
				{Category: "OP", Text: ",", Row: 1, Col: 8},
				{Category: "NUMBER", Text: "2.5", Row: 1, Col: 10},
				{Category: "OP", Text: ")", Row: 1, Col: 13},
				{Category: "OP", Text: "+", Row: 1, Col: 15},
				{Category: "STRING", Text: "hi", Row: 1, Col: 17},
			},
		},
		{
			caption: "two-character operators win over their prefixes",
			src:     `a == b != c <= d`,
			tokens: []*Token{
				{Category: "NAME", Text: "a", Row: 1, Col: 1},
				{Category: "OP", Text: "==", Row: 1, Col: 3},
				{Category: "NAME", Text: "b", Row: 1, Col: 6},
				{Category: "OP", Text: "!=", Row: 1, Col: 8},
				{Category: "NAME", Text: "c", Row: 1, Col: 11},
				{Category: "OP", Text: "<=", Row: 1, Col: 13},
				{Category: "NAME", Text: "d", Row: 1, Col: 16},
			},
		},
		{
			caption: "white spaces, newlines, and comments are skipped",
			src:     "a # comment\n  b",
			tokens: []*Token{
				{Category: "NAME", Text: "a", Row: 1, Col: 1},
				{Category: "NAME", Text: "b", Row: 2, Col: 3},
			},
		},
		{
			caption: "tabs and carriage returns separate tokens",
			src:     "a\t[1]\r\n{x}",
			tokens: []*Token{
				{Category: "NAME", Text: "a", Row: 1, Col: 1},
				{Category: "OP", Text: "[", Row: 1, Col: 3},
				{Category: "NUMBER", Text: "1", Row: 1, Col: 4},
				{Category: "OP", Text: "]", Row: 1, Col: 5},
				{Category: "OP", Text: "{", Row: 2, Col: 1},
				{Category: "NAME", Text: "x", Row: 2, Col: 2},
				{Category: "OP", Text: "}", Row: 2, Col: 3},
			},
		},
		{
			caption: "an empty source yields no tokens",
			src:     "",
			tokens:  nil,
		},
		{
			caption: "an unknown character is an error",
			src:     "a $ b",
			err:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			toks, err := Tokenize(strings.NewReader(tt.src))
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.tokens, toks); diff != "" {
				t.Errorf("unexpected tokens (-want +got):\n%v", diff)
			}
		})
	}
}

func TestReadTokens(t *testing.T) {
	src := `[
    {"category": "NAME", "text": "x", "row": 1, "col": 1},
    {"category": "OP", "text": "=", "row": 1, "col": 3},
    {"category": "NUMBER", "text": "1", "row": 1, "col": 5}
]`
	toks, err := ReadTokens(strings.NewReader(src))
	require.NoError(t, err)
	want := []*Token{
		{Category: "NAME", Text: "x", Row: 1, Col: 1},
		{Category: "OP", Text: "=", Row: 1, Col: 3},
		{Category: "NUMBER", Text: "1", Row: 1, Col: 5},
	}
	if diff := cmp.Diff(want, toks); diff != "" {
		t.Errorf("unexpected tokens (-want +got):\n%v", diff)
	}
}
