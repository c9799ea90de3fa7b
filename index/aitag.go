package index

import (
	"cmp"
	"strings"

	"boorudb/query"
)

// AiTagEntry pairs a discriminator tag with the numeric score a post
// carries for it — e.g. an AI tagger's confidence that "solo" applies to
// a given image. A post may carry zero, one, or many entries.
type AiTagEntry[V cmp.Ordered] struct {
	Tag   string
	Score V
}

// AiTagExtractor pulls every (tag, score) entry a post carries out of the
// post.
type AiTagExtractor[P any, V cmp.Ordered] func(post P) []AiTagEntry[V]

// tagScores is one discriminator's value-ordered (score, ID) store — the
// same shape RangeIndex itself keeps, but scoped to only the posts that
// actually carry that discriminator's tag.
type tagScores[V cmp.Ordered] struct {
	values   *ChunkedVec[valueID[V]]
	idValues map[uint32]V
}

func newTagScores[V cmp.Ordered]() *tagScores[V] {
	return &tagScores[V]{
		values:   NewChunkedVec[valueID[V]](RangeChunkSize),
		idValues: make(map[uint32]V),
	}
}

func (t *tagScores[V]) insert(id uint32, score V) {
	cmpAt := func(vi valueID[V]) int {
		if c := cmp.Compare(vi.Value, score); c != 0 {
			return c
		}
		return cmp.Compare(vi.ID, id)
	}
	i, _ := t.values.BinarySearchBy(cmpAt)
	t.values.Insert(i, valueID[V]{Value: score, ID: id})
	t.idValues[id] = score
}

func (t *tagScores[V]) remove(id uint32) {
	score, ok := t.idValues[id]
	if !ok {
		return
	}
	cmpAt := func(vi valueID[V]) int {
		if c := cmp.Compare(vi.Value, score); c != 0 {
			return c
		}
		return cmp.Compare(vi.ID, id)
	}
	if i, found := t.values.BinarySearchBy(cmpAt); found {
		t.values.Remove(i)
	}
	delete(t.idValues, id)
}

func (t *tagScores[V]) get(q RangeQuery[V]) query.Queryable {
	lo, hi := boundsForValues(t.values, q)
	if lo >= hi {
		return query.IDs{}
	}
	ids := make([]uint32, 0, hi-lo)
	for _, slice := range t.values.AsSlices(lo, hi) {
		for _, vi := range slice {
			ids = append(ids, vi.ID)
		}
	}
	return query.IDs{Values: sortedByID(ids)}
}

// AiTagIndex indexes a post type by a discriminator-keyed set of numeric
// scores — one value-ordered store per discriminator tag — to serve the
// three-part "prefix:tag:rangeop" query surface (e.g. "ai:solo:>=90"):
// the Db routes on the first ':' to reach this index by name, and Get
// here routes on the second ':' to pick the discriminator's own score
// store before applying the rangeop against it.
type AiTagIndex[P any, V cmp.Ordered] struct {
	name       string
	extract    AiTagExtractor[P, V]
	parseValue func(string) (V, bool)

	byTag map[string]*tagScores[V]
}

// NewAiTagIndex builds an AiTagIndex named name. parseValue turns the raw
// text of a rangeop into V (see ParseRangeQuery).
func NewAiTagIndex[P any, V cmp.Ordered](name string, extract AiTagExtractor[P, V], parseValue func(string) (V, bool)) *AiTagIndex[P, V] {
	return &AiTagIndex[P, V]{
		name:       name,
		extract:    extract,
		parseValue: parseValue,
		byTag:      make(map[string]*tagScores[V]),
	}
}

func (idx *AiTagIndex[P, V]) Name() string { return idx.name }

// Get resolves a "tag" or "tag:rangeop" remainder against the named
// discriminator's score store. An unknown discriminator is a miss
// (ok=false). A known discriminator with no rangeop, or with a rangeop
// that fails to parse, falls back to RangeAll over that discriminator's
// scores — the same "known prefix, lenient remainder" rule RangeIndex.Get
// applies at the top level.
func (idx *AiTagIndex[P, V]) Get(token string) (query.Queryable, bool) {
	tagName, rangeText, hasRange := strings.Cut(token, ":")
	scores, ok := idx.byTag[tagName]
	if !ok {
		return nil, false
	}
	rq := RangeQuery[V]{Kind: RangeAll}
	if hasRange {
		if parsed, err := ParseRangeQuery(rangeText, idx.parseValue); err == nil {
			rq = parsed
		}
	}
	return scores.get(rq), true
}

func (idx *AiTagIndex[P, V]) Insert(id uint32, post P) {
	for _, e := range idx.extract(post) {
		bucket, ok := idx.byTag[e.Tag]
		if !ok {
			bucket = newTagScores[V]()
			idx.byTag[e.Tag] = bucket
		}
		bucket.insert(id, e.Score)
	}
}

func (idx *AiTagIndex[P, V]) Remove(id uint32, post P) {
	for _, e := range idx.extract(post) {
		if bucket, ok := idx.byTag[e.Tag]; ok {
			bucket.remove(id)
		}
	}
}

func (idx *AiTagIndex[P, V]) Update(id uint32, oldPost, newPost P) {
	idx.Remove(id, oldPost)
	idx.Insert(id, newPost)
}

// InsertUnchecked is equivalent to Insert: unlike RangeIndex's single
// value-ordered store, there's no bulk-sort to defer here since every
// per-tag bucket is created lazily and kept sorted incrementally.
func (idx *AiTagIndex[P, V]) InsertUnchecked(id uint32, post P) {
	idx.Insert(id, post)
}

func (idx *AiTagIndex[P, V]) Finalize() Index[P] { return idx }
