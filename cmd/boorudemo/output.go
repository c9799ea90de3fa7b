package main

import (
	"fmt"
	"math/rand"
	"time"

	"boorudb"
	"boorudb/index"
	"boorudb/query"
)

// printResults resolves up to limit matching IDs from res (via plain
// pagination, GetRandom, or GetSorted by score depending on the sorted/
// random flags) and prints the underlying post for each.
func printResults(db *boorudb.Db[Post], res query.QueryResult, limit int, sorted, random bool) error {
	var ids []uint32
	switch {
	case random:
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		ids = res.GetRandom(limit, rng)
	case sorted:
		scoreIdx, ok := boorudb.Index[*index.RangeIndex[Post, int]](db, "", "score")
		if !ok {
			return fmt.Errorf("score index not registered")
		}
		ids = res.GetSorted(scoreIdx.SortedIDs(), 0, limit, false)
	default:
		ids = res.Get(0, limit, false)
	}

	for _, id := range ids {
		post, ok := db.Get("", id)
		if !ok {
			continue
		}
		fmt.Printf("%5d  %-20s rating=%-12s score=%4d tags=%v\n", id, post.Artist, post.Rating, post.Score, post.Tags)
	}
	return nil
}
