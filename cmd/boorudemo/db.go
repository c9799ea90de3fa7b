package main

import (
	"context"
	"log/slog"

	"boorudb"
	"boorudb/index"
)

// buildDb wires a Db[Post] with the indexes every demo command queries
// against: a multi-valued tag index (the default, unprefixed token
// target), a single-valued rating index, a numeric score range index, a
// single-valued artist index, and a discriminator-keyed AI-tagger
// confidence index queried as "ai:<tag>:<rangeop>".
func buildDb(ctx context.Context, logger *slog.Logger, posts []Post) (*boorudb.Db[Post], error) {
	loader := boorudb.NewDbLoader[Post](logger)
	loader.WithLoader("tag", index.NewKeysIndex[Post, string]("tag",
		func(p Post) []string { return p.Tags },
		func(s string) (string, bool) { return s, true },
	))
	loader.WithLoader("rating", index.NewKeyIndex[Post, string]("rating",
		func(p Post) string { return p.Rating },
		func(s string) (string, bool) { return s, true },
	))
	loader.WithLoader("score", index.NewRangeIndex[Post, int]("score",
		func(p Post) int { return p.Score },
		func(s string) (int, bool) {
			rq, err := index.ParseIntRangeQuery(s)
			return rq.Lo, err == nil
		},
	))
	loader.WithLoader("artist", index.NewKeyIndex[Post, string]("artist",
		func(p Post) string { return p.Artist },
		func(s string) (string, bool) { return s, true },
	))
	loader.WithLoader("ai", index.NewAiTagIndex[Post, int]("ai",
		func(p Post) []index.AiTagEntry[int] { return p.AiTags },
		func(s string) (int, bool) {
			rq, err := index.ParseIntRangeQuery(s)
			return rq.Lo, err == nil
		},
	))
	return loader.Load(ctx, posts)
}
