package index

import (
	"sort"
	"strings"

	"boorudb/query"
)

// TextQueryKind identifies which substring predicate a TextQuery applies.
type TextQueryKind int

const (
	TextContains TextQueryKind = iota
	TextStartsWith
	TextEndsWith
)

// TextQuery is a parsed substring search: "*s*" (Contains), "s*"
// (StartsWith), "*s" (EndsWith), or a bare "s" (also Contains — a plain
// token without wildcards is treated as "appears somewhere").
type TextQuery struct {
	Kind  TextQueryKind
	Match string
}

// ParseTextQuery parses a raw token into a TextQuery.
func ParseTextQuery(token string) TextQuery {
	hasPrefix := strings.HasPrefix(token, "*")
	hasSuffix := strings.HasSuffix(token, "*")
	trimmed := strings.TrimPrefix(strings.TrimSuffix(token, "*"), "*")
	switch {
	case hasPrefix && hasSuffix:
		return TextQuery{Kind: TextContains, Match: trimmed}
	case hasSuffix:
		return TextQuery{Kind: TextStartsWith, Match: trimmed}
	case hasPrefix:
		return TextQuery{Kind: TextEndsWith, Match: trimmed}
	default:
		return TextQuery{Kind: TextContains, Match: trimmed}
	}
}

func (q TextQuery) matches(s string) bool {
	switch q.Kind {
	case TextStartsWith:
		return strings.HasPrefix(s, q.Match)
	case TextEndsWith:
		return strings.HasSuffix(s, q.Match)
	default:
		return strings.Contains(s, q.Match)
	}
}

// grams1 splits s into its 1-gram buckets.
func grams1(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// grams2Sliding splits s into every overlapping 2-gram (positions 0-1, 1-2,
// 2-3, ...). This is the indexing-time gram set: a stored string must have
// every one of its 2-grams posted, at every offset, or a query 2-gram
// computed from an arbitrary offset inside the query match string won't
// find it.
func grams2Sliding(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}

// grams2Stepped splits s into non-overlapping 2-grams (positions 0-1, 2-3,
// ...). This is the query-time gram set used only to narrow an already
// correct 1-gram candidate set further: since every stored string was
// posted at every sliding offset, any one fixed-parity subset of the
// query's 2-grams is still guaranteed to be a posted substring of a true
// match, so stepping by 2 here only shrinks the set of lookups, not the
// correctness of the narrowing.
func grams2Stepped(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)/2)
	for i := 0; i+1 < len(runes); i += 2 {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}

// TextExtractor pulls the text field a post is indexed by out of the post
// (e.g. a caption or filename).
type TextExtractor[P any] func(post P) string

// TextIndex supports substring search over a text field by narrowing
// candidates through 1-gram and 2-gram inverted indexes before applying
// the query's string predicate directly.
type TextIndex[P any] struct {
	name    string
	extract TextExtractor[P]

	text1 map[string][]uint32 // 1-gram -> sorted posting list
	text2 map[string][]uint32 // 2-gram -> sorted posting list
	byID  map[uint32]string
}

// NewTextIndex builds a TextIndex named name.
func NewTextIndex[P any](name string, extract TextExtractor[P]) *TextIndex[P] {
	return &TextIndex[P]{
		name:    name,
		extract: extract,
		text1:   make(map[string][]uint32),
		text2:   make(map[string][]uint32),
		byID:    make(map[uint32]string),
	}
}

func (idx *TextIndex[P]) Name() string { return idx.name }

// Get resolves a raw substring-query token against the index.
//
// It first picks the smallest candidate posting among the query's 1-grams
// (the 1-gram index alone is enough to guarantee correctness, since every
// match must contain every character of the query). If the query is at
// least 4 runes long, it additionally intersects that candidate set
// against the smallest 2-gram posting computed from the query's
// non-overlapping (stepped) 2-grams, doing so only when that 2-gram posting
// is shorter than the candidate set — narrowing further without ever
// growing the candidate set. This step is only safe because indexing posts every
// sliding 2-gram of the stored string at every offset (grams2Sliding), so a
// stepped subset of the query's 2-grams is still guaranteed to be posted
// for any true match regardless of where it falls in the stored string.
// The final candidate set is then filtered by the query's actual string
// predicate, which is always correct but too slow to run against every
// indexed record directly.
func (idx *TextIndex[P]) Get(token string) (query.Queryable, bool) {
	tq := ParseTextQuery(token)
	if tq.Match == "" {
		ids := make([]uint32, 0, len(idx.byID))
		for id := range idx.byID {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return query.IDs{Values: ids}, true
	}

	candidates, ok := idx.smallestPosting(grams1(tq.Match))
	if !ok {
		return query.IDs{}, true
	}

	if len([]rune(tq.Match)) >= 4 {
		if g2, ok := idx.smallestPosting(grams2Stepped(tq.Match)); ok && len(g2) < len(candidates) {
			candidates = intersectSorted(candidates, g2)
		}
	}

	out := make([]uint32, 0, len(candidates))
	for _, id := range candidates {
		if s, ok := idx.byID[id]; ok && tq.matches(s) {
			out = append(out, id)
		}
	}
	return query.IDs{Values: out}, true
}

// smallestPosting returns the smallest posting list among the given grams'
// buckets, or ok=false if any gram has no bucket at all (meaning the query
// can't match anything).
func (idx *TextIndex[P]) smallestPosting(grams []string) (posting []uint32, ok bool) {
	haveAny := false
	for _, g := range grams {
		list, exists := idx.gramBucket(g)
		if !exists {
			return nil, false
		}
		if !haveAny || len(list) < len(posting) {
			posting = list
			haveAny = true
		}
	}
	return posting, haveAny
}

func (idx *TextIndex[P]) gramBucket(g string) ([]uint32, bool) {
	if len([]rune(g)) == 2 {
		list, ok := idx.text2[g]
		return list, ok
	}
	list, ok := idx.text1[g]
	return list, ok
}

func intersectSorted(a, b []uint32) []uint32 {
	out := make([]uint32, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func (idx *TextIndex[P]) addPostings(id uint32, s string) {
	for _, g := range grams1(s) {
		idx.text1[g] = insertSortedUnique(idx.text1[g], id)
	}
	for _, g := range grams2Sliding(s) {
		idx.text2[g] = insertSortedUnique(idx.text2[g], id)
	}
	idx.byID[id] = s
}

func (idx *TextIndex[P]) removePostings(id uint32, s string) {
	for _, g := range grams1(s) {
		idx.text1[g] = removeSortedValue(idx.text1[g], id)
		if len(idx.text1[g]) == 0 {
			delete(idx.text1, g)
		}
	}
	for _, g := range grams2Sliding(s) {
		idx.text2[g] = removeSortedValue(idx.text2[g], id)
		if len(idx.text2[g]) == 0 {
			delete(idx.text2, g)
		}
	}
	delete(idx.byID, id)
}

func insertSortedUnique(list []uint32, id uint32) []uint32 {
	i := sort.Search(len(list), func(i int) bool { return list[i] >= id })
	if i < len(list) && list[i] == id {
		return list
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:len(list)-1])
	list[i] = id
	return list
}

func removeSortedValue(list []uint32, id uint32) []uint32 {
	i := sort.Search(len(list), func(i int) bool { return list[i] >= id })
	if i < len(list) && list[i] == id {
		return append(list[:i], list[i+1:]...)
	}
	return list
}

func (idx *TextIndex[P]) Insert(id uint32, post P) {
	idx.addPostings(id, idx.extract(post))
}

func (idx *TextIndex[P]) Remove(id uint32, post P) {
	if s, ok := idx.byID[id]; ok {
		idx.removePostings(id, s)
		return
	}
	idx.removePostings(id, idx.extract(post))
}

func (idx *TextIndex[P]) Update(id uint32, oldPost, newPost P) {
	oldS := idx.extract(oldPost)
	newS := idx.extract(newPost)
	if oldS == newS {
		return
	}
	idx.removePostings(id, oldS)
	idx.addPostings(id, newS)
}

// InsertUnchecked is the bulk-load fast path. Unlike Key/KeysIndex, there
// is no Queryable conversion to defer here, so it is equivalent to
// Insert; it exists to satisfy Loader uniformly across every index kind.
func (idx *TextIndex[P]) InsertUnchecked(id uint32, post P) {
	idx.Insert(id, post)
}

func (idx *TextIndex[P]) Finalize() Index[P] { return idx }
