// Command boorudemo is a small CLI that exercises the boorudb module end to
// end: generating a synthetic fixture of tagged posts, persisting it as
// msgpack, loading it into a Db, and running queries (or a crude benchmark)
// against the result.
package main

import (
	"github.com/google/uuid"

	"boorudb/index"
)

// Post is the demo record type indexed by boorudb. ID is a real UUID rather
// than a dense array index — boorudb assigns its own internal uint32 IDs on
// Insert/Load, so the external ID only needs to be stable for display and
// fixture round-tripping.
//
// AiTags models the confidence scores an automated tagger assigns to a
// post for a handful of discriminator tags (e.g. "solo", "duo") — queried
// through the "ai" index via tokens like "ai:solo:>=90".
type Post struct {
	ID     uuid.UUID               `msgpack:"id"`
	Artist string                  `msgpack:"artist"`
	Tags   []string                `msgpack:"tags"`
	Rating string                  `msgpack:"rating"`
	Score  int                     `msgpack:"score"`
	AiTags []index.AiTagEntry[int] `msgpack:"ai_tags"`
}
