package grammar

// computeNullable marks every rule that can match the empty input. The
// nullable flags are monotone booleans, so iterating until a full pass
// changes nothing reaches the least fixpoint and terminates.
func computeNullable(g *Grammar) {
	for {
		changed := false
		for _, r := range g.rules {
			if r.nullable {
				continue
			}
			for _, alt := range r.alts {
				if g.altNullable(alt) {
					r.nullable = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}
}

func (g *Grammar) altNullable(alt *alternative) bool {
	for _, ni := range alt.items {
		if !g.itemNullable(ni.item) {
			return false
		}
	}
	return true
}

func (g *Grammar) itemNullable(it *item) bool {
	switch it.kind {
	case itemKindLiteral, itemKindTokenRef:
		return false
	case itemKindRuleRef:
		return g.rules[it.rule].nullable
	case itemKindGroup:
		for _, alt := range it.alts {
			if g.altNullable(alt) {
				return true
			}
		}
		return false
	case itemKindOpt, itemKindRepeat0, itemKindLookahead, itemKindCut, itemKindForced:
		return true
	case itemKindRepeat1, itemKindGather:
		// At least one element match is required, so these never match
		// the empty input even when the element itself is nullable.
		return false
	}
	return false
}
