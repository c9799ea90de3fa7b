package main

import (
	"math/rand"

	"github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"

	"boorudb/index"
)

var ratings = []string{"safe", "questionable", "explicit"}

// aiDiscriminators are the fixed set of AI-tagger discriminator tags every
// generated post is scored against (not every post carries every one —
// see generateAiTags).
var aiDiscriminators = []string{"solo", "duo", "outdoor", "nsfw"}

// buildTagPool builds the tag pool once per run; it is reused across posts,
// which draw their tags from it uniformly at random, so tags repeat across
// posts rather than every post getting wholly unique tags.
func buildTagPool(rng *rand.Rand, size int) []string {
	seen := make(map[string]struct{}, size)
	pool := make([]string, 0, size)
	for len(pool) < size {
		tag := petname.Generate(1, "-")
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		pool = append(pool, tag)
	}
	return pool
}

// generatePosts builds count synthetic posts: a random artist handle (a
// two-word petname), three to six tags drawn from tagPool, a random rating,
// and a random score.
func generatePosts(rng *rand.Rand, count int) []Post {
	pool := buildTagPool(rng, max(16, count/4))
	posts := make([]Post, count)
	for i := range posts {
		n := 3 + rng.Intn(4)
		tags := make([]string, 0, n)
		chosen := make(map[string]struct{}, n)
		for len(tags) < n {
			t := pool[rng.Intn(len(pool))]
			if _, ok := chosen[t]; ok {
				continue
			}
			chosen[t] = struct{}{}
			tags = append(tags, t)
		}
		posts[i] = Post{
			ID:     uuid.New(),
			Artist: petname.Generate(2, "-"),
			Tags:   tags,
			Rating: ratings[rng.Intn(len(ratings))],
			Score:  rng.Intn(200) - 50,
			AiTags: generateAiTags(rng),
		}
	}
	return posts
}

// generateAiTags gives a post a confidence score against zero to all of
// aiDiscriminators, skipping roughly half of them so not every post
// carries every discriminator tag.
func generateAiTags(rng *rand.Rand) []index.AiTagEntry[int] {
	var tags []index.AiTagEntry[int]
	for _, d := range aiDiscriminators {
		if rng.Intn(2) == 0 {
			continue
		}
		tags = append(tags, index.AiTagEntry[int]{Tag: d, Score: rng.Intn(101)})
	}
	return tags
}
