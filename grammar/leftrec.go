package grammar

import (
	"fmt"
	"sort"
)

// computeLeftRecursive classifies left-recursive rules and designates one
// leader per cluster of mutually left-recursive rules. It must run after
// computeNullable because the leftmost-caller relation follows nullable
// prefixes.
//
// A rule is left-recursive when it can reach itself through leftmost rule
// references only, i.e. without consuming input first. Reaching itself
// behind a non-nullable prefix is ordinary recursion and stays unmarked.
func computeLeftRecursive(g *Grammar) error {
	graph := make([][]int, len(g.rules))
	for i, r := range g.rules {
		graph[i] = g.leftmostRules(r)
	}

	for _, scc := range stronglyConnectedComponents(graph) {
		if len(scc) == 1 {
			v := scc[0]
			if !hasEdge(graph, v, v) {
				continue
			}
			g.rules[v].leftRecursive = true
			g.rules[v].leader = true
			continue
		}

		// The leader is the component member declared first; the
		// top-level driver enters it before any other member.
		leader := scc[0]
		for _, v := range scc {
			g.rules[v].leftRecursive = true
			if v < leader {
				leader = v
			}
		}
		g.rules[leader].leader = true
	}

	return g.checkLeftRecursionClassification()
}

// checkLeftRecursionClassification is an internal consistency assertion.
// A violation is a bug in the analyzer, never a property of the grammar.
func (g *Grammar) checkLeftRecursionClassification() error {
	for _, r := range g.rules {
		if r.leader && !r.leftRecursive {
			return fmt.Errorf("internal error: rule %v is a leader but not left-recursive", r.name)
		}
	}
	return nil
}

// leftmostRules returns the indices of the rules reachable as a leftmost
// item of r: scanning each alternative left to right, every referenced rule
// is collected until the first non-nullable item has been passed.
func (g *Grammar) leftmostRules(r *rule) []int {
	set := map[int]struct{}{}
	for _, alt := range r.alts {
		g.collectLeftmostAlt(alt, set)
	}
	indices := make([]int, 0, len(set))
	for i := range set {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

func (g *Grammar) collectLeftmostAlt(alt *alternative, set map[int]struct{}) {
	for _, ni := range alt.items {
		g.collectLeftmost(ni.item, set)
		if !g.itemNullable(ni.item) {
			break
		}
	}
}

func (g *Grammar) collectLeftmost(it *item, set map[int]struct{}) {
	switch it.kind {
	case itemKindRuleRef:
		set[it.rule] = struct{}{}
	case itemKindGroup:
		for _, alt := range it.alts {
			g.collectLeftmostAlt(alt, set)
		}
	case itemKindOpt, itemKindRepeat0, itemKindRepeat1, itemKindLookahead, itemKindForced:
		g.collectLeftmost(it.sub, set)
	case itemKindGather:
		g.collectLeftmost(it.sub, set)
	}
}

func hasEdge(graph [][]int, from, to int) bool {
	for _, v := range graph[from] {
		if v == to {
			return true
		}
	}
	return false
}

// stronglyConnectedComponents implements Tarjan's algorithm. Rule graphs
// are small, so the recursive formulation is fine.
func stronglyConnectedComponents(graph [][]int) [][]int {
	n := len(graph)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := 0; i < n; i++ {
		index[i] = -1
	}

	var stack []int
	var sccs [][]int
	counter := 0

	var connect func(v int)
	connect = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if index[w] < 0 {
				connect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Ints(scc)
			sccs = append(sccs, scc)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] < 0 {
			connect(v)
		}
	}
	return sccs
}
