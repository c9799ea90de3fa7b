package query

// TryMap rewrites a Query[T] into a Query[R] by applying f to every leaf.
//
// Because Go forbids generic methods, this has to be a free function
// rather than a (Query[T]) method — callers write query.TryMap(q, f)
// instead of q.Map(f).
//
// f may report ok=false for a leaf with no mapping (e.g. an unknown tag).
// A missing result propagates up to its parent Query node, where the
// parent chain's kind and that node's own Inverse flag decide what happens:
//
//   - AndChain: a missing, non-inverted child fails the whole chain (ok
//     becomes false) — matching everything requires every positive term to
//     resolve. A missing child that is itself inverted (excluding a tag
//     that doesn't exist, or ANDing NOT an always-failing sub-query) is
//     silently dropped instead: excluding nothing is a no-op, not a
//     failure.
//   - OrChain: a missing child is always dropped from the chain; the
//     chain only fails if every one of its children turns out missing.
func TryMap[T, R any](q Query[T], f func(T) (R, bool)) (Query[R], bool) {
	switch q.Item.Kind() {
	case KindSingle:
		v, ok := f(*q.Item.Single)
		if !ok {
			return Query[R]{}, false
		}
		return NewSingle(v, q.Inverse), true

	case KindAnd:
		out := make([]Query[R], 0, len(q.Item.AndChain))
		for _, c := range q.Item.AndChain {
			mapped, ok := TryMap(c, f)
			if !ok {
				if c.Inverse {
					continue
				}
				return Query[R]{}, false
			}
			out = append(out, mapped)
		}
		return NewAnd(out, q.Inverse), true

	default: // KindOr
		out := make([]Query[R], 0, len(q.Item.OrChain))
		anyMissing := false
		for _, c := range q.Item.OrChain {
			mapped, ok := TryMap(c, f)
			if !ok {
				anyMissing = true
				continue
			}
			out = append(out, mapped)
		}
		if len(out) == 0 && (anyMissing || len(q.Item.OrChain) > 0) {
			return Query[R]{}, false
		}
		return NewOr(out, q.Inverse), true
	}
}
