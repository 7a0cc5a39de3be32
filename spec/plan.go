package spec

// CompiledGrammar is the target-independent parsing plan a code-generation
// backend renders into host-language source and the driver can execute
// directly. It is immutable once built and round-trips through JSON.
type CompiledGrammar struct {
	Name            string            `json:"name"`
	StartRule       int               `json:"start_rule"`
	Rules           []*CompiledRule   `json:"rules"`
	HardKeywords    []string          `json:"hard_keywords"`
	SoftKeywords    []string          `json:"soft_keywords"`
	TokenCategories []string          `json:"token_categories"`
	Directives      map[string]string `json:"directives,omitempty"`
}

type CompiledRule struct {
	Name          string                 `json:"name"`
	Type          string                 `json:"type,omitempty"`
	Alternatives  []*CompiledAlternative `json:"alternatives"`
	Nullable      bool                   `json:"nullable"`
	LeftRecursive bool                   `json:"left_recursive"`
	Leader        bool                   `json:"leader"`
	Memoize       bool                   `json:"memoize"`
}

type CompiledAlternative struct {
	Matchers []*Matcher `json:"matchers"`
	Action   *Action    `json:"action,omitempty"`
}

type ActionKind string

const (
	// ActionKindNone yields no result value; the alternative matches for
	// effect only. The compiler never emits it, but backends may.
	ActionKindNone = ActionKind("none")

	// ActionKindDefault yields the single item value when the alternative
	// has exactly one value-producing item, otherwise the ordered sequence
	// of all item values.
	ActionKindDefault = ActionKind("default")

	// ActionKindCustom yields whatever the grammar action expression
	// produces. The expression is opaque to the compiler.
	ActionKindCustom = ActionKind("custom")
)

type Action struct {
	Kind ActionKind `json:"kind"`
	Expr string     `json:"expr,omitempty"`
}

type MatcherOp string

const (
	MatcherOpToken       = MatcherOp("token")
	MatcherOpKeyword     = MatcherOp("keyword")
	MatcherOpSoftKeyword = MatcherOp("soft_keyword")
	MatcherOpRule        = MatcherOp("rule")
	MatcherOpChoice      = MatcherOp("choice")
	MatcherOpOpt         = MatcherOp("opt")
	MatcherOpRepeat      = MatcherOp("repeat")
	MatcherOpGather      = MatcherOp("gather")
	MatcherOpLookahead   = MatcherOp("lookahead")
	MatcherOpCut         = MatcherOp("cut")
	MatcherOpForced      = MatcherOp("forced")
)

// Matcher is one step of a compiled alternative. The meaning of the optional
// fields depends on Op:
//
//	token:        Text is a token category.
//	keyword:      Text is the keyword or operator spelling.
//	soft_keyword: Text is the keyword spelling; matches only NAME tokens.
//	rule:         Rule is a stable rule index.
//	choice:       Alternatives holds the nested ordered choice.
//	opt:          Sub is the optional expression.
//	repeat:       Sub repeats; Min is 0 or 1.
//	gather:       Sub is the element, Sep the separator.
//	lookahead:    Sub is checked zero-width; Positive selects the polarity.
//	cut, forced:  forced carries Sub; cut has no operands.
type Matcher struct {
	Op           MatcherOp              `json:"op"`
	Bind         string                 `json:"bind,omitempty"`
	Text         string                 `json:"text,omitempty"`
	Rule         int                    `json:"rule,omitempty"`
	Min          int                    `json:"min,omitempty"`
	Positive     bool                   `json:"positive,omitempty"`
	Alternatives []*CompiledAlternative `json:"alternatives,omitempty"`
	Sub          *Matcher               `json:"sub,omitempty"`
	Sep          *Matcher               `json:"sep,omitempty"`
}
