package driver

import "fmt"

// SyntaxError reports an ordinary parse failure of the whole input. The
// position is the farthest token the parser failed to match, which is the
// most useful place to point a diagnostic at after backtracking.
type SyntaxError struct {
	Pos   int
	Row   int
	Col   int
	Token *Token
}

func (e *SyntaxError) Error() string {
	if e.Token.Text != "" {
		return fmt.Sprintf("%v:%v: syntax error: unexpected '%v' (%v)", e.Row, e.Col, e.Token.Text, e.Token.Category)
	}
	return fmt.Sprintf("%v:%v: syntax error: unexpected %v", e.Row, e.Col, e.Token.Category)
}

// ForcedMatchError is raised when the operand of a forced-match item fails.
// It propagates past every enclosing rule frame without backtracking; the
// top-level caller renders it and aborts the parse.
type ForcedMatchError struct {
	Pos      int
	Row      int
	Col      int
	Expected string
}

func (e *ForcedMatchError) Error() string {
	return fmt.Sprintf("%v:%v: expected %v", e.Row, e.Col, e.Expected)
}
