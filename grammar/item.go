package grammar

type itemKind int

const (
	// itemKindLiteral is a quoted keyword or operator spelling. The soft
	// flag distinguishes context-sensitive keywords from reserved ones.
	itemKindLiteral itemKind = iota
	itemKindTokenRef
	itemKindRuleRef
	itemKindGroup
	itemKindOpt
	itemKindRepeat0
	itemKindRepeat1
	itemKindGather
	itemKindLookahead
	itemKindCut
	itemKindForced
)

type item struct {
	kind     itemKind
	literal  string
	soft     bool
	category string
	rule     int
	ruleName string
	alts     []*alternative
	sub      *item
	sep      *item
	positive bool
}

type namedItem struct {
	name string
	item *item
}

type alternative struct {
	items     []*namedItem
	action    string
	hasAction bool
}

type rule struct {
	name          string
	typ           string
	alts          []*alternative
	nullable      bool
	leftRecursive bool
	leader        bool
	memo          bool
}

// tokenCategories are the lexical kinds a grammar may reference without
// defining them. The concrete tokenizer supplying them belongs to a backend.
var tokenCategories = []string{
	"NAME",
	"NUMBER",
	"STRING",
	"OP",
	"NEWLINE",
	"INDENT",
	"DEDENT",
	"ENDMARKER",
}

func isTokenCategory(name string) bool {
	for _, c := range tokenCategories {
		if name == c {
			return true
		}
	}
	return false
}

func isIdentifierSpelling(text string) bool {
	if text == "" {
		return false
	}
	for i, c := range text {
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
