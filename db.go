// Package boorudb is an in-memory, prefix-partitioned tag search engine.
// A Db holds one or more named Indexes per prefix (the empty prefix is the
// default partition), resolves text queries against them through package
// query's AST/evaluator, and serves paginated, sorted, or randomized
// results via query.QueryResult / query.MultiQueryResult.
package boorudb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"boorudb/index"
	"boorudb/internal/logging"
	"boorudb/query"
)

// DefaultIndexName is the index a bare query token (one with no "name:"
// prefix) resolves against — the tag index, in every example database
// this module ships.
const DefaultIndexName = "tag"

// partition holds one prefix's full index set and post storage. Every Db
// has at least the default ("") partition; additional named partitions
// let one Db serve logically separate collections (e.g. per-source mirrors)
// that are queried independently but share a process and a Go type.
type partition[P any] struct {
	name    string
	indexes map[string]index.Index[P]
	order   []string
	posts   map[uint32]P
	bound   int
	nextID  uint32
	alive   query.QueryableOwned
}

// Db is an immutable-shape, mutable-content registry of indexes over a
// post type P. Build one via DbLoader.
type Db[P any] struct {
	logger     *slog.Logger
	partitions map[string]*partition[P]
	order      []string
}

// DbLoader accumulates index loaders (optionally scoped to named
// prefixes) and a starting post set, then builds an immutable Db via Load.
type DbLoader[P any] struct {
	logger  *slog.Logger
	current string
	parts   map[string]map[string]index.Loader[P]
	order   map[string][]string
	partOrd []string
}

// NewDbLoader returns a DbLoader targeting the default (unprefixed)
// partition. Use WithPrefix to switch which partition subsequent
// WithLoader calls register against.
func NewDbLoader[P any](logger *slog.Logger) *DbLoader[P] {
	l := &DbLoader[P]{
		logger:  logging.Default(logger),
		current: "",
		parts:   map[string]map[string]index.Loader[P]{"": {}},
		order:   map[string][]string{"": nil},
		partOrd: []string{""},
	}
	return l
}

// WithPrefix switches the partition that subsequent WithLoader calls
// register against, creating it on first use. Registering the same
// prefix a second time (after switching away and back) is fine — only
// registering the same index name twice within one prefix panics, mirroring
// the teacher lineage's "registering a duplicate source panics at
// construction time, not at query time" convention.
func (l *DbLoader[P]) WithPrefix(prefix string) *DbLoader[P] {
	if _, ok := l.parts[prefix]; !ok {
		l.parts[prefix] = map[string]index.Loader[P]{}
		l.order[prefix] = nil
		l.partOrd = append(l.partOrd, prefix)
	}
	l.current = prefix
	return l
}

// WithLoader registers a named index loader against the current partition
// (the default partition, unless WithPrefix switched it). It panics if
// name is already registered in that partition: a duplicate registration
// is a programming error in the caller's setup code, not a recoverable
// runtime condition.
func (l *DbLoader[P]) WithLoader(name string, loader index.Loader[P]) *DbLoader[P] {
	bucket := l.parts[l.current]
	if _, exists := bucket[name]; exists {
		panic(fmt.Errorf("%w: %q registered on prefix %q", ErrDuplicateIndex, name, l.current))
	}
	bucket[name] = loader
	l.order[l.current] = append(l.order[l.current], name)
	return l
}

// Load bulk-inserts posts into every registered partition (assigning dense
// ascending IDs by slice position, independently per partition), finalizes
// each partition's indexes concurrently via errgroup, and returns the
// resulting immutable Db. Every partition registered via WithPrefix is
// loaded from the same posts slice — this models mirrored views over one
// post set (e.g. a staging and a published partition sharing all fields
// but resolving queries independently) rather than disjoint record sets.
func (l *DbLoader[P]) Load(ctx context.Context, posts []P) (*Db[P], error) {
	db := &Db[P]{
		logger:     l.logger,
		partitions: make(map[string]*partition[P], len(l.partOrd)),
		order:      append([]string(nil), l.partOrd...),
	}
	for _, prefix := range l.partOrd {
		p, err := l.loadPartition(ctx, prefix, posts)
		if err != nil {
			return nil, err
		}
		db.partitions[prefix] = p
	}
	db.logger.Info("db loaded", "partitions", len(db.partitions), "posts", len(posts))
	return db, nil
}

func (l *DbLoader[P]) loadPartition(ctx context.Context, prefix string, posts []P) (*partition[P], error) {
	loaders := l.parts[prefix]
	names := l.order[prefix]

	for id, post := range posts {
		for _, name := range names {
			loaders[name].InsertUnchecked(uint32(id), post)
		}
	}

	indexes := make(map[string]index.Index[P], len(names))
	g, _ := errgroup.WithContext(ctx)
	results := make([]index.Index[P], len(names))
	for i, name := range names {
		i, name := i, name
		loader := loaders[name]
		g.Go(func() error {
			results[i] = loader.Finalize()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("boorudb: finalizing prefix %q: %w", prefix, err)
	}
	for i, name := range names {
		indexes[name] = results[i]
		if b, ok := results[i].(interface{ SetBound(int) }); ok {
			b.SetBound(len(posts))
		}
	}

	postMap := make(map[uint32]P, len(posts))
	for id, post := range posts {
		postMap[uint32(id)] = post
	}

	alive := query.AllOnes(len(posts))
	return &partition[P]{
		name:    prefix,
		indexes: indexes,
		order:   names,
		posts:   postMap,
		bound:   len(posts),
		nextID:  uint32(len(posts)),
		alive:   alive,
	}, nil
}

// resolveToken splits a raw query term on its first ":" into an index name
// and the remaining query text. A term with no ":" resolves against
// DefaultIndexName, treating the whole term as a tag.
func resolveToken(token string) (name, rest string) {
	if i := strings.IndexByte(token, ':'); i >= 0 {
		return token[:i], token[i+1:]
	}
	return DefaultIndexName, token
}

// Query parses, simplifies, and evaluates text against one partition
// (identified by prefix; "" for the default partition), returning the
// matching record set. It fails with *MissingTagsError if any positively-
// required term doesn't resolve against its index — see query.TryMap for
// the exact rule governing when a missing term is fatal versus dropped.
func (db *Db[P]) Query(prefix, text string) (query.QueryResult, error) {
	part, ok := db.partitions[prefix]
	if !ok {
		return query.QueryResult{}, fmt.Errorf("boorudb: unknown prefix %q", prefix)
	}

	parsed, err := query.Parse(text)
	if err != nil {
		return query.QueryResult{}, &queryError{Query: text, Err: err}
	}
	parsed = query.Simplify(parsed)

	var missing []string
	var unknownIndexes []string
	mapped, ok := query.TryMap(parsed, func(token string) (query.Queryable, bool) {
		name, rest := resolveToken(token)
		idx, ok := part.indexes[name]
		if !ok {
			unknownIndexes = append(unknownIndexes, name)
			return nil, false
		}
		q, ok := idx.Get(rest)
		if !ok {
			missing = append(missing, token)
			return nil, false
		}
		return q, true
	})
	if !ok {
		if len(unknownIndexes) > 0 {
			return query.QueryResult{}, &queryError{Query: text, Err: fmt.Errorf("%w: %v", ErrUnknownIndex, unknownIndexes)}
		}
		return query.QueryResult{}, &MissingTagsError{Tags: missing}
	}

	return query.Run(mapped, part.alive.Snapshot(), part.bound), nil
}

// QueryAll evaluates text against every registered partition and returns
// the aggregate as a query.MultiQueryResult labeled by prefix, for callers
// that want to page/sample across every partition as one logical result
// set.
func (db *Db[P]) QueryAll(text string) (query.MultiQueryResult[string], error) {
	var labeled []query.LabeledResult[string]
	for _, prefix := range db.order {
		res, err := db.Query(prefix, text)
		if err != nil {
			return query.MultiQueryResult[string]{}, err
		}
		labeled = append(labeled, query.LabeledResult[string]{Label: prefix, Result: res})
	}
	return query.NewMultiQueryResult(labeled), nil
}

// Insert adds post as a new record in prefix's partition, assigning it the
// next dense ID and fanning the insert out to every index registered on
// that partition.
func (db *Db[P]) Insert(prefix string, post P) (uint32, error) {
	part, ok := db.partitions[prefix]
	if !ok {
		return 0, fmt.Errorf("boorudb: unknown prefix %q", prefix)
	}
	id := part.nextID
	part.nextID++
	if id >= uint32(part.bound) {
		part.bound = int(id) + 1
	}
	part.posts[id] = post
	part.alive.Insert(id, part.bound)
	for _, name := range part.order {
		part.indexes[name].Insert(id, post)
	}
	return id, nil
}

// Remove drops the record with the given ID out of prefix's partition and
// every registered index.
func (db *Db[P]) Remove(prefix string, id uint32) error {
	part, ok := db.partitions[prefix]
	if !ok {
		return fmt.Errorf("boorudb: unknown prefix %q", prefix)
	}
	post, ok := part.posts[id]
	if !ok {
		return ErrRecordNotFound
	}
	for _, name := range part.order {
		part.indexes[name].Remove(id, post)
	}
	part.alive.Remove(id, part.bound)
	delete(part.posts, id)
	return nil
}

// Update replaces the record at id with newPost, fanning the change out to
// every registered index via each index's own update semantics (a
// KeysIndex applies a set difference rather than a drop/re-add, for
// instance).
func (db *Db[P]) Update(prefix string, id uint32, newPost P) error {
	part, ok := db.partitions[prefix]
	if !ok {
		return fmt.Errorf("boorudb: unknown prefix %q", prefix)
	}
	oldPost, ok := part.posts[id]
	if !ok {
		return ErrRecordNotFound
	}
	for _, name := range part.order {
		part.indexes[name].Update(id, oldPost, newPost)
	}
	part.posts[id] = newPost
	return nil
}

// Get returns the post stored at id in prefix's partition.
func (db *Db[P]) Get(prefix string, id uint32) (P, bool) {
	var zero P
	part, ok := db.partitions[prefix]
	if !ok {
		return zero, false
	}
	post, ok := part.posts[id]
	return post, ok
}

// Index returns the named index registered on prefix's partition, typed as
// T. Because Go forbids generic methods, this has to be a free function —
// callers write boorudb.Index[*index.RangeIndex[Post, int]](db, "", "score")
// instead of db.Index[...](...).
func Index[T index.Index[P], P any](db *Db[P], prefix, name string) (T, bool) {
	var zero T
	part, ok := db.partitions[prefix]
	if !ok {
		return zero, false
	}
	raw, ok := part.indexes[name]
	if !ok {
		return zero, false
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
