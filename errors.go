package boorudb

import (
	"errors"
	"fmt"
)

// ErrUnknownIndex is the sentinel wrapped by Db.Query when a query token
// names an index that was never registered on the partition. Unlike a
// missing tag value (see MissingTagsError), an unknown index name is a
// query-construction error, not a data-absence one, so it's surfaced
// immediately via errors.Is rather than folded into the missing-tags list.
var ErrUnknownIndex = errors.New("boorudb: unknown index")

// ErrDuplicateIndex is the sentinel DbLoader.WithLoader panics with
// (wrapped via fmt.Errorf) when the same index name is registered twice
// against one partition.
var ErrDuplicateIndex = errors.New("boorudb: duplicate index name")

// ErrRecordNotFound is returned by Remove/Update when no record is live
// under the given ID.
var ErrRecordNotFound = errors.New("boorudb: record not found")

// ErrMissingTags is the sentinel every *MissingTagsError satisfies under
// errors.Is, for callers that only want to branch on "was this a missing
// tag" without type-asserting *MissingTagsError directly.
var ErrMissingTags = errors.New("boorudb: query references unknown tag(s)")

// MissingTagsError reports that a query referenced one or more tags (or
// other index keys) that don't resolve to anything in the Db — e.g. a
// typo'd tag name, or a tag nobody has ever applied. It carries every
// unresolved term at once rather than failing on the first, so a caller
// can report the whole list back to a user in one pass.
type MissingTagsError struct {
	Tags []string
}

func (e *MissingTagsError) Error() string {
	return fmt.Sprintf("boorudb: query references %d unknown tag(s): %v", len(e.Tags), e.Tags)
}

// Is reports whether target is ErrMissingTags, so callers can write
// errors.Is(err, boorudb.ErrMissingTags) instead of a type assertion.
func (e *MissingTagsError) Is(target error) bool {
	return target == ErrMissingTags
}

// queryError wraps a lower-level error (a parse failure, an unknown index)
// with the raw query text that triggered it, giving callers enough context
// to report a useful message without re-threading the original string
// through every call site.
type queryError struct {
	Query string
	Err   error
}

func (e *queryError) Error() string {
	return fmt.Sprintf("boorudb: query %q: %v", e.Query, e.Err)
}

func (e *queryError) Unwrap() error { return e.Err }
