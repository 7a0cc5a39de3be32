package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrUnclosedAction = newSyntaxError("unclosed action block")

	// syntax errors
	synErrInvalidToken     = newSyntaxError("invalid token")
	synErrNoRule           = newSyntaxError("a grammar must have at least one rule")
	synErrNoRuleName       = newSyntaxError("a rule name is missing")
	synErrNoColon          = newSyntaxError("the colon must precede alternatives")
	synErrEmptyRule        = newSyntaxError("a rule must have at least one non-empty alternative")
	synErrNoNewline        = newSyntaxError("a rule must end with a newline")
	synErrNoRuleType       = newSyntaxError("a rule type is missing after '['")
	synErrUnclosedRuleType = newSyntaxError("unclosed rule type annotation")
	synErrNoDirectiveName  = newSyntaxError("a directive needs a name")
	synErrNoItemAfterExpr  = newSyntaxError("an expression is missing after a prefix operator")
	synErrUnclosedGroup    = newSyntaxError("unclosed group")
	synErrUnclosedOption   = newSyntaxError("unclosed optional expression")
	synErrEmptyGroup       = newSyntaxError("a group must contain at least one item")
	synErrNoGatherElem     = newSyntaxError("an element expression is missing after '.'")
	synErrNoGatherPlus     = newSyntaxError("a gather expression must end with '+'")
	synErrNoBoundItem      = newSyntaxError("an expression is missing after '='")
)
