package query

import (
	"cmp"
	"slices"
)

// Simplify rewrites a query tree into a canonical, minimal form. It applies,
// in order: flattening of single-child chains into their parent, removal of
// chains made redundant by an ancestor of the same kind, removal of
// now-empty chains, then a stable sort and dedup of each chain's children.
//
// Simplify is idempotent: Simplify(Simplify(q)) == Simplify(q). This is
// relied on by the evaluator, which does not re-simplify an already-parsed
// query, and by tests that check simplification reaches a fixed point.
func Simplify[T cmp.Ordered](q Query[T]) Query[T] {
	q = removeSingleChains(q)
	q = removeRedundantChains(q)
	q = removeEmpty(q)
	q = sortAndDedup(q)
	return q
}

// removeSingleChains replaces any AndChain/OrChain with exactly one child by
// that child directly, XORing the chain's own inverse flag into the
// child's, and recurses until no more single-child chains remain at any
// level.
func removeSingleChains[T cmp.Ordered](q Query[T]) Query[T] {
	switch q.Item.Kind() {
	case KindSingle:
		return q
	case KindAnd:
		children := make([]Query[T], len(q.Item.AndChain))
		for i, c := range q.Item.AndChain {
			children[i] = removeSingleChains(c)
		}
		if len(children) == 1 {
			child := children[0]
			child.Inverse = child.Inverse != q.Inverse
			return removeSingleChains(child)
		}
		return NewAnd(children, q.Inverse)
	default:
		children := make([]Query[T], len(q.Item.OrChain))
		for i, c := range q.Item.OrChain {
			children[i] = removeSingleChains(c)
		}
		if len(children) == 1 {
			child := children[0]
			child.Inverse = child.Inverse != q.Inverse
			return removeSingleChains(child)
		}
		return NewOr(children, q.Inverse)
	}
}

// removeRedundantChains drops a non-inverted chain's own wrapper when it is
// directly nested inside a parent of the same kind: a nested
// AndChain inside an AndChain (or OrChain inside an OrChain) associates
// flat, so the inner wrapper contributes nothing but an extra tree level.
// Inverted chains are never flattened this way, since their inverse flag
// would otherwise be lost.
func removeRedundantChains[T cmp.Ordered](q Query[T]) Query[T] {
	switch q.Item.Kind() {
	case KindSingle:
		return q
	case KindAnd:
		var flat []Query[T]
		for _, c := range q.Item.AndChain {
			simplified := removeRedundantChains(c)
			if simplified.Item.Kind() == KindAnd && !simplified.Inverse {
				flat = append(flat, simplified.Item.AndChain...)
			} else {
				flat = append(flat, simplified)
			}
		}
		return NewAnd(flat, q.Inverse)
	default:
		var flat []Query[T]
		for _, c := range q.Item.OrChain {
			simplified := removeRedundantChains(c)
			if simplified.Item.Kind() == KindOr && !simplified.Inverse {
				flat = append(flat, simplified.Item.OrChain...)
			} else {
				flat = append(flat, simplified)
			}
		}
		return NewOr(flat, q.Inverse)
	}
}

// removeEmpty drops empty AndChain/OrChain children from every chain in the
// tree (an empty, non-inverted AndChain contributes no constraint and an
// empty OrChain can never match, so both are noise once nested).
func removeEmpty[T cmp.Ordered](q Query[T]) Query[T] {
	switch q.Item.Kind() {
	case KindSingle:
		return q
	case KindAnd:
		var out []Query[T]
		for _, c := range q.Item.AndChain {
			c = removeEmpty(c)
			if c.IsEmpty() {
				continue
			}
			out = append(out, c)
		}
		return NewAnd(out, q.Inverse)
	default:
		var out []Query[T]
		for _, c := range q.Item.OrChain {
			c = removeEmpty(c)
			if c.IsEmpty() {
				continue
			}
			out = append(out, c)
		}
		return NewOr(out, q.Inverse)
	}
}

// sortAndDedup recursively sorts each chain's children into a canonical
// order and removes exact duplicates, so that two queries differing only
// in term order or repeated terms simplify to the same tree.
func sortAndDedup[T cmp.Ordered](q Query[T]) Query[T] {
	switch q.Item.Kind() {
	case KindSingle:
		return q
	case KindAnd:
		children := make([]Query[T], len(q.Item.AndChain))
		for i, c := range q.Item.AndChain {
			children[i] = sortAndDedup(c)
		}
		children = sortDedupChildren(children)
		return NewAnd(children, q.Inverse)
	default:
		children := make([]Query[T], len(q.Item.OrChain))
		for i, c := range q.Item.OrChain {
			children[i] = sortAndDedup(c)
		}
		children = sortDedupChildren(children)
		return NewOr(children, q.Inverse)
	}
}

func sortDedupChildren[T cmp.Ordered](children []Query[T]) []Query[T] {
	slices.SortFunc(children, compareQuery[T])
	out := children[:0]
	for i, c := range children {
		if i > 0 && compareQuery(children[i-1], c) == 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// compareQuery imposes a total, stable order over Query[T] trees so they
// can be sorted and deduplicated: by kind first (and < or < single), then
// by inverse flag, then by payload (for Single) or recursively by children
// (for chains).
func compareQuery[T cmp.Ordered](a, b Query[T]) int {
	ak, bk := a.Item.Kind(), b.Item.Kind()
	if ak != bk {
		return int(ak) - int(bk)
	}
	if a.Inverse != b.Inverse {
		if a.Inverse {
			return 1
		}
		return -1
	}
	switch ak {
	case KindSingle:
		return cmp.Compare(*a.Item.Single, *b.Item.Single)
	case KindAnd:
		return compareChildren(a.Item.AndChain, b.Item.AndChain)
	default:
		return compareChildren(a.Item.OrChain, b.Item.OrChain)
	}
}

func compareChildren[T cmp.Ordered](a, b []Query[T]) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareQuery(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
