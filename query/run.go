package query

// Run evaluates a query tree of mapped Queryable leaves against base, the
// domain's alive-set (every currently-live record ID), and returns the
// matching set as a QueryResult.
//
// Run clones base into the working buffer, then narrows it in place: a
// Single leaf ANDs (or AND-NOTs, if inverted) the buffer directly; an
// AndChain narrows the buffer one child at a time; an OrChain is evaluated
// via De Morgan — it accumulates the AND of each child's complement in a
// scratch all-ones buffer, which is the complement of the chain's union,
// and then AND-NOTs (or ANDs, if the OrChain itself is inverted) that
// accumulator into the buffer. At the end the buffer is re-ANDed with base:
// this clips any all-ones leakage an inverted chain would otherwise carry
// into IDs past the bitmap's populated range.
func Run(q Query[Queryable], base Queryable, bound int) QueryResult {
	work := base.Clone()
	applyChild(&work, q, bound)
	work.And(base)
	return NewQueryResult(work.Snapshot(), bound)
}

// applyChild ANDs work with the effective match set of c — c's own match,
// complemented if c.Inverse is set.
func applyChild(work *QueryableOwned, c Query[Queryable], bound int) {
	switch c.Item.Kind() {
	case KindSingle:
		if c.Inverse {
			work.AndNot(*c.Item.Single)
		} else {
			work.And(*c.Item.Single)
		}

	case KindAnd:
		if !c.Inverse {
			for _, gc := range c.Item.AndChain {
				applyChild(work, gc, bound)
			}
			return
		}
		sub := AllOnes(bound)
		for _, gc := range c.Item.AndChain {
			applyChild(&sub, gc, bound)
		}
		work.AndNot(sub.Snapshot())

	default: // KindOr
		notUnion := AllOnes(bound)
		for _, gc := range c.Item.OrChain {
			applyChildNegated(&notUnion, gc, bound)
		}
		if c.Inverse {
			// NOT(OrChain) == AND of each child's complement == notUnion.
			work.And(notUnion.Snapshot())
		} else {
			work.AndNot(notUnion.Snapshot())
		}
	}
}

// applyChildNegated ANDs acc with the complement of c's effective match
// set. It is used while folding an OrChain's children into the
// De Morgan accumulator, where each child contributes its negation.
func applyChildNegated(acc *QueryableOwned, c Query[Queryable], bound int) {
	if c.Item.Kind() == KindSingle {
		if c.Inverse {
			acc.And(*c.Item.Single)
		} else {
			acc.AndNot(*c.Item.Single)
		}
		return
	}
	sub := AllOnes(bound)
	applyChild(&sub, c, bound)
	acc.AndNot(sub.Snapshot())
}
