package query

import (
	"math/bits"
	"sort"
)

// PackedWordBits is the width of one packed bitmap word.
const PackedWordBits = 64

// conversionMargin is the hysteresis margin (in bits) around the break-even
// point between a packed bitmap and a sorted ID list. A Queryable only
// converts representation when the gap is wide enough to be worth the copy,
// which keeps an index sitting near the break-even point from flapping back
// and forth on every insert/remove.
const conversionMargin = 64 * 1024

// Queryable is the read-only view over one index bucket's member set: every
// record ID for which, e.g., a given tag is present. It is implemented
// either as a packed bitmap (Packed) or a sorted unique ID list (IDs),
// whichever is smaller for the bucket's current cardinality and domain size.
type Queryable interface {
	// Contains reports whether id is a member.
	Contains(id uint32) bool
	// Len reports the number of member IDs.
	Len() int
	// Iter calls yield for every member ID in ascending order, stopping
	// early if yield returns false.
	Iter(yield func(uint32) bool)
	// Clone returns an independent, owned copy.
	Clone() QueryableOwned
}

// Packed is a Queryable backed by a packed little-endian bit array: bit i%64
// of word i/64 is set iff id i is a member.
type Packed struct {
	Bits []uint64
}

func (p Packed) Contains(id uint32) bool {
	w := int(id / PackedWordBits)
	if w >= len(p.Bits) {
		return false
	}
	return p.Bits[w]&(1<<(id%PackedWordBits)) != 0
}

func (p Packed) Len() int {
	n := 0
	for _, w := range p.Bits {
		n += bits.OnesCount64(w)
	}
	return n
}

func (p Packed) Iter(yield func(uint32) bool) {
	for wi, w := range p.Bits {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			id := uint32(wi)*PackedWordBits + uint32(tz)
			if !yield(id) {
				return
			}
			w &= w - 1
		}
	}
}

func (p Packed) Clone() QueryableOwned {
	cp := make([]uint64, len(p.Bits))
	copy(cp, p.Bits)
	return QueryableOwned{packed: cp, isPacked: true}
}

// IDs is a Queryable backed by a sorted, deduplicated ID list.
type IDs struct {
	Values []uint32
}

func (s IDs) Contains(id uint32) bool {
	i := sort.Search(len(s.Values), func(i int) bool { return s.Values[i] >= id })
	return i < len(s.Values) && s.Values[i] == id
}

func (s IDs) Len() int { return len(s.Values) }

func (s IDs) Iter(yield func(uint32) bool) {
	for _, id := range s.Values {
		if !yield(id) {
			return
		}
	}
}

func (s IDs) Clone() QueryableOwned {
	cp := make([]uint32, len(s.Values))
	copy(cp, s.Values)
	return QueryableOwned{ids: cp, isPacked: false}
}

// QueryableOwned is a mutable, owned Queryable: the working buffer the
// evaluator and index bulk-loaders mutate in place. It adaptively converts
// between the packed and ID-list representations as its membership changes.
type QueryableOwned struct {
	packed   []uint64
	ids      []uint32
	isPacked bool
}

// NewPackedOwned returns an owned Queryable backed by nbits zeroed bits.
func NewPackedOwned(nbits int) QueryableOwned {
	return QueryableOwned{packed: make([]uint64, wordsFor(nbits)), isPacked: true}
}

// NewIDsOwned returns an owned Queryable backed by an empty ID list.
func NewIDsOwned() QueryableOwned {
	return QueryableOwned{isPacked: false}
}

// AllOnes returns an owned packed Queryable with every bit in [0,nbits) set.
// It is used as a scratch accumulator when evaluating an OrChain.
func AllOnes(nbits int) QueryableOwned {
	words := wordsFor(nbits)
	buf := make([]uint64, words)
	for i := range buf {
		buf[i] = ^uint64(0)
	}
	if rem := nbits % PackedWordBits; rem != 0 && words > 0 {
		buf[words-1] &= (uint64(1) << rem) - 1
	}
	return QueryableOwned{packed: buf, isPacked: true}
}

func wordsFor(nbits int) int {
	return (nbits + PackedWordBits - 1) / PackedWordBits
}

func (q *QueryableOwned) Contains(id uint32) bool {
	if q.isPacked {
		return Packed{Bits: q.packed}.Contains(id)
	}
	return IDs{Values: q.ids}.Contains(id)
}

func (q *QueryableOwned) Len() int {
	if q.isPacked {
		return Packed{Bits: q.packed}.Len()
	}
	return len(q.ids)
}

func (q *QueryableOwned) Iter(yield func(uint32) bool) {
	if q.isPacked {
		Packed{Bits: q.packed}.Iter(yield)
		return
	}
	IDs{Values: q.ids}.Iter(yield)
}

// Snapshot returns an immutable Queryable view of the current contents.
func (q QueryableOwned) Snapshot() Queryable {
	if q.isPacked {
		return Packed{Bits: q.packed}
	}
	return IDs{Values: q.ids}
}

// Insert adds id to the set, converting representation first if needed.
// bound is the domain's current exclusive upper ID bound, used to size a
// freshly-packed representation.
func (q *QueryableOwned) Insert(id uint32, bound int) {
	q.checkAndConvert(bound)
	if q.isPacked {
		q.ensureWord(int(id/PackedWordBits) + 1)
		q.packed[id/PackedWordBits] |= 1 << (id % PackedWordBits)
		return
	}
	i := sort.Search(len(q.ids), func(i int) bool { return q.ids[i] >= id })
	if i < len(q.ids) && q.ids[i] == id {
		return
	}
	q.ids = append(q.ids, 0)
	copy(q.ids[i+1:], q.ids[i:])
	q.ids[i] = id
}

// InsertUnchecked appends id without running the conversion check or
// maintaining sorted-uniqueness invariants; it is the bulk-load fast path
// used while an index is being built from a fresh snapshot. IDs may arrive
// out of order or repeated; the caller restores ordering and uniqueness
// once via Finalize, which does not change the representation.
func (q *QueryableOwned) InsertUnchecked(id uint32, bound int) {
	if q.isPacked {
		q.ensureWord(int(id/PackedWordBits) + 1)
		q.packed[id/PackedWordBits] |= 1 << (id % PackedWordBits)
		return
	}
	q.ids = append(q.ids, id)
}

// Finalize restores the sorted-unique invariant after a run of
// InsertUnchecked calls on an ID-list-backed owned Queryable. It is a no-op
// for a packed representation.
func (q *QueryableOwned) Finalize() {
	if q.isPacked {
		return
	}
	sort.Slice(q.ids, func(i, j int) bool { return q.ids[i] < q.ids[j] })
	out := q.ids[:0]
	var last uint32
	haveLast := false
	for _, id := range q.ids {
		if haveLast && id == last {
			continue
		}
		out = append(out, id)
		last, haveLast = id, true
	}
	q.ids = out
}

// Remove drops id from the set, converting representation first if needed.
func (q *QueryableOwned) Remove(id uint32, bound int) {
	q.checkAndConvert(bound)
	if q.isPacked {
		if int(id/PackedWordBits) < len(q.packed) {
			q.packed[id/PackedWordBits] &^= 1 << (id % PackedWordBits)
		}
		return
	}
	i := sort.Search(len(q.ids), func(i int) bool { return q.ids[i] >= id })
	if i < len(q.ids) && q.ids[i] == id {
		q.ids = append(q.ids[:i], q.ids[i+1:]...)
	}
}

func (q *QueryableOwned) ensureWord(words int) {
	if words <= len(q.packed) {
		return
	}
	grown := make([]uint64, words)
	copy(grown, q.packed)
	q.packed = grown
}

// checkAndConvert switches representation when the current one is no
// longer the smaller of the two, honoring a hysteresis margin so a
// cardinality sitting near the break-even point doesn't thrash between
// representations on every insert/remove.
//
// A packed representation costs bound bits. An ID-list representation costs
// len(ids)*32 bits. Convert packed->ids when len(ids)*32 + margin < bound,
// and ids->packed when bound + margin < len(ids)*32.
func (q *QueryableOwned) checkAndConvert(bound int) {
	if q.isPacked {
		idCount := q.Len()
		idCost := idCount * 32
		if idCost+conversionMargin < bound {
			ids := make([]uint32, 0, idCount)
			q.Iter(func(id uint32) bool {
				ids = append(ids, id)
				return true
			})
			q.ids = ids
			q.packed = nil
			q.isPacked = false
		}
		return
	}
	idCost := len(q.ids) * 32
	if bound+conversionMargin < idCost {
		packed := make([]uint64, wordsFor(bound))
		for _, id := range q.ids {
			packed[id/PackedWordBits] |= 1 << (id % PackedWordBits)
		}
		q.packed = packed
		q.ids = nil
		q.isPacked = true
	}
}

// And intersects other into q in place (q &= other).
func (q *QueryableOwned) And(other Queryable) {
	if q.isPacked {
		if op, ok := other.(Packed); ok {
			for i := range q.packed {
				if i < len(op.Bits) {
					q.packed[i] &= op.Bits[i]
				} else {
					q.packed[i] = 0
				}
			}
			return
		}
		// other is an ID list: rebuild by membership test, preserving packed form.
		next := make([]uint64, len(q.packed))
		other.Iter(func(id uint32) bool {
			w := int(id / PackedWordBits)
			if w < len(q.packed) && q.packed[w]&(1<<(id%PackedWordBits)) != 0 {
				next[w] |= 1 << (id % PackedWordBits)
			}
			return true
		})
		q.packed = next
		return
	}
	out := q.ids[:0]
	for _, id := range q.ids {
		if other.Contains(id) {
			out = append(out, id)
		}
	}
	q.ids = out
}

// AndNot removes members of other from q in place (q &= ^other).
func (q *QueryableOwned) AndNot(other Queryable) {
	if q.isPacked {
		if op, ok := other.(Packed); ok {
			for i := range q.packed {
				if i < len(op.Bits) {
					q.packed[i] &^= op.Bits[i]
				}
			}
			return
		}
		other.Iter(func(id uint32) bool {
			w := int(id / PackedWordBits)
			if w < len(q.packed) {
				q.packed[w] &^= 1 << (id % PackedWordBits)
			}
			return true
		})
		return
	}
	out := q.ids[:0]
	for _, id := range q.ids {
		if !other.Contains(id) {
			out = append(out, id)
		}
	}
	q.ids = out
}

// Or unions other into q in place (q |= other).
func (q *QueryableOwned) Or(other Queryable, bound int) {
	if q.isPacked {
		if op, ok := other.(Packed); ok {
			q.ensureWord(len(op.Bits))
			for i, w := range op.Bits {
				q.packed[i] |= w
			}
			return
		}
		other.Iter(func(id uint32) bool {
			q.ensureWord(int(id/PackedWordBits) + 1)
			q.packed[id/PackedWordBits] |= 1 << (id % PackedWordBits)
			return true
		})
		return
	}
	other.Iter(func(id uint32) bool {
		q.Insert(id, bound)
		return true
	})
}
