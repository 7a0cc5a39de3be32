package driver

import (
	"encoding/json"
	"fmt"
	"io"
)

// Token is one element of the input to a generated parser. The concrete
// tokenizer producing it is outside the engine; the engine only inspects
// the category and the text.
type Token struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

const tokenCategoryEndmarker = "ENDMARKER"

// ReadTokens decodes a token stream from its JSON form, a single array of
// token objects.
func ReadTokens(src io.Reader) ([]*Token, error) {
	var toks []*Token
	d := json.NewDecoder(src)
	err := d.Decode(&toks)
	if err != nil {
		return nil, fmt.Errorf("cannot decode a token stream: %w", err)
	}
	return toks, nil
}
