package tester

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

type Tree struct {
	Parent   *Tree
	Offset   int
	Kind     string
	Children []*Tree
	Lexeme   string
}

func NewNonTerminalTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalNode(kind string, lexeme string) *Tree {
	return &Tree{
		Kind:   kind,
		Lexeme: lexeme,
	}
}

func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.Kind)
}

func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("    ")
	}
	buf.WriteString("(")
	if t.Kind == "" {
		buf.WriteString("<anonymous>")
	} else {
		buf.WriteString(t.Kind)
	}
	if t.Lexeme != "" {
		fmt.Fprintf(buf, " '%v'", t.Lexeme)
	}
	if len(t.Children) > 0 {
		buf.WriteString("\n")
		for i, c := range t.Children {
			c.format(buf, depth+1)
			if i < len(t.Children)-1 {
				buf.WriteString("\n")
			}
		}
	}
	buf.WriteString(")")
}

// DiffTree compares an expected tree against an actual one. A node whose
// kind is _ matches any kind, and an expected node with an empty lexeme
// matches any lexeme.
func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Lexeme != "" && expected.Lexeme != actual.Lexeme {
		msg := fmt.Sprintf("unexpected lexeme: expected '%v' but got '%v'", expected.Lexeme, actual.Lexeme)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}

// TestCase is one parser test: a grammar, a source text, and the parse tree
// the grammar is expected to produce for that text.
type TestCase struct {
	Description string
	Grammar     []byte
	Source      []byte
	Output      *Tree
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 4 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just four parts: %v parts found", len(parts))
	}

	tp := &treeParser{
		lineOffset: parts[0].lineCount + parts[1].lineCount + parts[2].lineCount + 3,
	}
	tree, err := tp.parseTree(parts[3].buf)
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0].buf),
		Grammar:     parts[1].buf,
		Source:      parts[2].buf,
		Output:      tree,
	}, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// Return an empty slice because (*bytes.Buffer).Bytes() returns nil if we have never written data.
		return []byte{}, 0, nil
	}
	_, err := buf.Write(line)
	if err != nil {
		return nil, 0, err
	}
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		_, err := buf.Write([]byte("\n"))
		if err != nil {
			return nil, 0, err
		}
		_, err = buf.Write(line)
		if err != nil {
			return nil, 0, err
		}
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}

// treeParser reads the expected-tree notation: (kind child ...) for inner
// nodes and (kind 'lexeme') or (kind) for leaves.
type treeParser struct {
	lineOffset int
	src        []rune
	pos        int
	row        int
	col        int
}

func (tp *treeParser) parseTree(src []byte) (*Tree, error) {
	tp.src = []rune(string(src))
	tp.pos = 0
	tp.row = 0
	tp.col = 0

	tp.skipSpaces()
	t, err := tp.parseNode()
	if err != nil {
		return nil, err
	}
	tp.skipSpaces()
	if tp.pos < len(tp.src) {
		return nil, tp.errorf("expected end of tree but found '%v'", string(tp.src[tp.pos]))
	}
	return t.Fill(), nil
}

func (tp *treeParser) parseNode() (*Tree, error) {
	if !tp.consume('(') {
		return nil, tp.errorf("expected '('")
	}
	tp.skipSpaces()
	kind := tp.readSymbol()
	if kind == "" {
		return nil, tp.errorf("expected a node kind")
	}

	var children []*Tree
	var lexeme string
	hasLexeme := false
	for {
		tp.skipSpaces()
		if tp.pos >= len(tp.src) {
			return nil, tp.errorf("unclosed tree node")
		}
		switch tp.src[tp.pos] {
		case ')':
			tp.next()
			if hasLexeme {
				if len(children) > 0 {
					return nil, tp.errorf("a node cannot have both a lexeme and children")
				}
				return NewTerminalNode(kind, lexeme), nil
			}
			return NewNonTerminalTree(kind, children...), nil
		case '(':
			c, err := tp.parseNode()
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		case '\'':
			if hasLexeme {
				return nil, tp.errorf("a node can have only one lexeme")
			}
			s, err := tp.readString()
			if err != nil {
				return nil, err
			}
			lexeme = s
			hasLexeme = true
		default:
			return nil, tp.errorf("invalid character: '%v'", string(tp.src[tp.pos]))
		}
	}
}

func (tp *treeParser) readSymbol() string {
	var b strings.Builder
	for tp.pos < len(tp.src) {
		c := tp.src[tp.pos]
		if c == '(' || c == ')' || c == '\'' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		b.WriteRune(c)
		tp.next()
	}
	return b.String()
}

func (tp *treeParser) readString() (string, error) {
	tp.next()
	var b strings.Builder
	for {
		if tp.pos >= len(tp.src) {
			return "", tp.errorf("unclosed string")
		}
		c := tp.src[tp.pos]
		if c == '\'' {
			tp.next()
			return b.String(), nil
		}
		if c == '\n' {
			return "", tp.errorf("unclosed string")
		}
		b.WriteRune(c)
		tp.next()
	}
}

func (tp *treeParser) skipSpaces() {
	for tp.pos < len(tp.src) {
		c := tp.src[tp.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		tp.next()
	}
}

func (tp *treeParser) consume(c rune) bool {
	if tp.pos < len(tp.src) && tp.src[tp.pos] == c {
		tp.next()
		return true
	}
	return false
}

func (tp *treeParser) next() {
	if tp.src[tp.pos] == '\n' {
		tp.row++
		tp.col = 0
	} else {
		tp.col++
	}
	tp.pos++
}

func (tp *treeParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%v:%v: %v", tp.lineOffset+tp.row+1, tp.col+1, fmt.Sprintf(format, args...))
}
