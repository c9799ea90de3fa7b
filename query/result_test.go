package query

import (
	"math/rand"
	"testing"
)

func resultFromIDs(bound int, ids []uint32) QueryResult {
	owned := NewIDsOwned()
	for _, id := range ids {
		owned.Insert(id, bound)
	}
	return NewQueryResult(owned.Snapshot(), bound)
}

func TestQueryResultGetMatch(t *testing.T) {
	ids := []uint32{2, 5, 9, 640, 1000, 1500}
	r := resultFromIDs(2000, ids)
	if r.Len() != len(ids) {
		t.Fatalf("Len: got %d want %d", r.Len(), len(ids))
	}
	for i, want := range ids {
		got, ok := r.GetMatch(i)
		if !ok || got != want {
			t.Fatalf("GetMatch(%d): got (%d,%v) want %d", i, got, ok, want)
		}
	}
	if _, ok := r.GetMatch(len(ids)); ok {
		t.Fatalf("expected GetMatch past the end to report not-ok")
	}
}

func TestQueryResultGetPagination(t *testing.T) {
	ids := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	r := resultFromIDs(20, ids)

	got := r.Get(2, 3, false)
	want := []uint32{3, 4, 5}
	if !equalIDs(got, want) {
		t.Fatalf("forward: got %v want %v", got, want)
	}

	got = r.Get(2, 3, true)
	want = []uint32{8, 7, 6}
	if !equalIDs(got, want) {
		t.Fatalf("reverse: got %v want %v", got, want)
	}
}

func TestQueryResultGetRandomNoDuplicates(t *testing.T) {
	ids := []uint32{1, 2, 3, 4, 5, 6, 7, 8}
	r := resultFromIDs(16, ids)
	rng := rand.New(rand.NewSource(1))
	got := r.GetRandom(5, rng)
	if len(got) != 5 {
		t.Fatalf("expected 5 draws, got %d", len(got))
	}
	seen := map[uint32]bool{}
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate draw: %d in %v", id, got)
		}
		seen[id] = true
		if !r.Contains(id) {
			t.Fatalf("drew non-member id %d", id)
		}
	}
}

func TestQueryResultGetSortedBackwardsFlip(t *testing.T) {
	ids := []uint32{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	r := resultFromIDs(200, ids)
	sorted := append([]uint32(nil), ids...)

	// A late offset should return the same slice whether or not the
	// implementation takes the backwards-flip path internally.
	got := r.GetSorted(sorted, 7, 2, false)
	want := []uint32{80, 90}
	if !equalIDs(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
