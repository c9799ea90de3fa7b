package query

import (
	"math/bits"
	"math/rand"
)

// checksPerChunk is the number of packed words covered by one entry of
// QueryResult's coarse popcount index.
const checksPerChunk = 10

// QueryResult is the outcome of evaluating a query: a packed bitmap over
// the domain's ID space, plus a coarse popcount index (matchCounts) that
// lets GetMatch skip whole chunks of zero words instead of scanning them
// bit by bit.
//
// Each matchCounts entry covers checksPerChunk*PackedWordBits = 640 IDs.
type QueryResult struct {
	bits        []uint64
	matchCounts []int
	total       int
}

// NewQueryResult builds a QueryResult from a resolved Queryable match set
// and the domain's exclusive upper ID bound.
func NewQueryResult(q Queryable, bound int) QueryResult {
	words := wordsFor(bound)
	packed := make([]uint64, words)
	switch v := q.(type) {
	case Packed:
		copy(packed, v.Bits)
	default:
		q.Iter(func(id uint32) bool {
			packed[id/PackedWordBits] |= 1 << (id % PackedWordBits)
			return true
		})
	}
	return newQueryResultFromPacked(packed)
}

func newQueryResultFromPacked(packed []uint64) QueryResult {
	chunkCount := (len(packed) + checksPerChunk - 1) / checksPerChunk
	counts := make([]int, chunkCount)
	total := 0
	for i, w := range packed {
		c := bits.OnesCount64(w)
		counts[i/checksPerChunk] += c
		total += c
	}
	return QueryResult{bits: packed, matchCounts: counts, total: total}
}

// Len reports the total number of matching IDs.
func (r QueryResult) Len() int { return r.total }

// Contains reports whether id is a match.
func (r QueryResult) Contains(id uint32) bool {
	w := int(id / PackedWordBits)
	if w >= len(r.bits) {
		return false
	}
	return r.bits[w]&(1<<(id%PackedWordBits)) != 0
}

// GetMatch returns the k-th matching ID (0-indexed, ascending) and true, or
// (0, false) if k is out of range. It uses matchCounts to skip whole chunks
// that can't contain the k-th match before falling back to a per-word scan.
func (r QueryResult) GetMatch(k int) (uint32, bool) {
	if k < 0 || k >= r.total {
		return 0, false
	}
	chunk := 0
	for chunk < len(r.matchCounts) && k >= r.matchCounts[chunk] {
		k -= r.matchCounts[chunk]
		chunk++
	}
	if chunk >= len(r.matchCounts) {
		return 0, false
	}
	start := chunk * checksPerChunk
	end := start + checksPerChunk
	if end > len(r.bits) {
		end = len(r.bits)
	}
	for wi := start; wi < end; wi++ {
		w := r.bits[wi]
		c := bits.OnesCount64(w)
		if k >= c {
			k -= c
			continue
		}
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			if k == 0 {
				return uint32(wi)*PackedWordBits + uint32(tz), true
			}
			k--
			w &= w - 1
		}
	}
	return 0, false
}

// Get returns up to limit matching IDs starting at offset, in ascending
// order unless reverse is true (in which case offset counts from the end
// and results are returned from highest to lowest).
func (r QueryResult) Get(offset, limit int, reverse bool) []uint32 {
	if limit <= 0 || offset < 0 || offset >= r.total {
		return nil
	}
	if limit > r.total-offset {
		limit = r.total - offset
	}
	out := make([]uint32, 0, limit)
	if !reverse {
		for i := 0; i < limit; i++ {
			id, ok := r.GetMatch(offset + i)
			if !ok {
				break
			}
			out = append(out, id)
		}
		return out
	}
	for i := 0; i < limit; i++ {
		k := r.total - 1 - offset - i
		id, ok := r.GetMatch(k)
		if !ok {
			break
		}
		out = append(out, id)
	}
	return out
}

// GetSorted walks ids — already produced in a caller-chosen sort order,
// typically by a range index's co-ordered (value, ID) store — filtering to
// members of r, and returns up to limit matches starting at offset.
//
// When offset sits past the halfway point of the total match count, the
// walk is reframed from the tail instead of the head: reverse is flipped,
// offset is measured from the end, and the collected window is reversed
// before returning. This keeps pagination cost proportional to
// min(offset, total-offset) rather than to offset itself, so asking for
// the last page of a huge result is as cheap as asking for the first.
func (r QueryResult) GetSorted(ids []uint32, offset, limit int, reverse bool) []uint32 {
	if limit <= 0 || offset < 0 || offset >= r.total {
		return nil
	}
	if limit > r.total-offset {
		limit = r.total - offset
	}
	flipped := false
	if offset >= r.total/2 {
		offset = r.total - offset
		if limit > offset {
			offset = 0
		} else {
			offset -= limit
		}
		reverse = !reverse
		flipped = true
	}

	out := make([]uint32, 0, limit)
	if !reverse {
		skipped := 0
		for _, id := range ids {
			if !r.Contains(id) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, id)
			if len(out) == limit {
				break
			}
		}
	} else {
		skipped := 0
		for i := len(ids) - 1; i >= 0; i-- {
			id := ids[i]
			if !r.Contains(id) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, id)
			if len(out) == limit {
				break
			}
		}
	}

	if flipped {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// GetRandom draws up to limit distinct matching IDs uniformly at random,
// without replacement, in an unspecified order. It draws by repeatedly
// picking a random remaining rank and removing it so the same ID is never
// returned twice in one call.
func (r QueryResult) GetRandom(limit int, rng *rand.Rand) []uint32 {
	if limit <= 0 {
		return nil
	}
	n := r.total
	if limit > n {
		limit = n
	}
	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = i
	}
	out := make([]uint32, 0, limit)
	for i := 0; i < limit; i++ {
		j := rng.Intn(len(ranks))
		id, ok := r.GetMatch(ranks[j])
		if ok {
			out = append(out, id)
		}
		ranks[j] = ranks[len(ranks)-1]
		ranks = ranks[:len(ranks)-1]
	}
	return out
}
