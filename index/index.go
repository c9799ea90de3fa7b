package index

import "boorudb/query"

// Index is the interface every concrete index type implements so a Db's
// registry can fan inserts, removes, and updates out to it without knowing
// its concrete type.
//
// Get resolves a raw query token (the text after the index name and an
// optional ":" — e.g. "safe" out of "rating:safe", or just the whole
// token for a name-less default index) into a query.Queryable the
// evaluator can compose, or reports ok=false if the token doesn't resolve
// to anything (e.g. an unknown tag).
type Index[P any] interface {
	Name() string
	Get(token string) (query.Queryable, bool)
	Insert(id uint32, post P)
	Remove(id uint32, post P)
	Update(id uint32, oldPost, newPost P)
}

// Loader is the bulk-construction counterpart to Index: a Db built via
// DbLoader accumulates every post through InsertUnchecked (skipping the
// Queryable conversion check on each call), then calls Finalize to produce
// the queryable Index. Finalize sorts and deduplicates the buckets but does
// not pick a representation: each bucket stays an ID list until a later
// Insert or Remove on it runs the conversion check.
type Loader[P any] interface {
	InsertUnchecked(id uint32, post P)
	Finalize() Index[P]
}
