package driver

import (
	"fmt"
	"io"
)

// Value is a parse result: a *Node for a matched token or a tree-mode rule,
// a ValueList for repetitions and multi-item alternatives, an *ActionNode
// for an unevaluated custom action, or nil for "nothing matched".
type Value interface{}

// ValueList is the ordered sequence produced by repetitions, gathers, and
// default actions of alternatives with more than one value-producing item.
type ValueList []Value

// ActionNode carries a custom grammar action the engine cannot evaluate
// itself. Bound item values are threaded through unchanged; a backend or an
// ActionHandler gives the expression meaning.
type ActionNode struct {
	Expr     string
	Bindings map[string]Value
}

type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Text != "" {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// flattenNodes linearizes a tree-mode value into child nodes.
func flattenNodes(v Value) []*Node {
	switch v := v.(type) {
	case nil:
		return nil
	case *Node:
		return []*Node{v}
	case ValueList:
		var nodes []*Node
		for _, e := range v {
			nodes = append(nodes, flattenNodes(e)...)
		}
		return nodes
	}
	return nil
}
