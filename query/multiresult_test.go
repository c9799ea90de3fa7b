package query

import (
	"math/rand"
	"testing"
)

func TestMultiQueryResultLen(t *testing.T) {
	m := NewMultiQueryResult([]LabeledResult[string]{
		{Label: "a", Result: resultFromIDs(10, []uint32{1, 2, 3})},
		{Label: "b", Result: resultFromIDs(10, []uint32{4, 5})},
	})
	if m.Len() != 5 {
		t.Fatalf("Len: got %d want 5", m.Len())
	}
}

func TestMultiQueryResultGetRandomNoDuplicates(t *testing.T) {
	m := NewMultiQueryResult([]LabeledResult[string]{
		{Label: "a", Result: resultFromIDs(10, []uint32{1, 2, 3})},
		{Label: "b", Result: resultFromIDs(10, []uint32{4, 5, 6})},
	})
	rng := rand.New(rand.NewSource(7))
	got := m.GetRandom(4, rng)
	if len(got) != 4 {
		t.Fatalf("expected 4 draws, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, p := range got {
		key := string(rune(p.ID)) + p.Label
		if seen[key] {
			t.Fatalf("duplicate draw: %+v in %+v", p, got)
		}
		seen[key] = true
	}
}

func TestMultiQueryResultGetSortedMerge(t *testing.T) {
	m := NewMultiQueryResult([]LabeledResult[string]{
		{Label: "a", Result: resultFromIDs(100, []uint32{10, 30, 50})},
		{Label: "b", Result: resultFromIDs(100, []uint32{20, 40})},
	})
	ids := [][]uint32{
		{10, 30, 50},
		{20, 40},
	}
	got := m.GetSorted(ids, 0, 10, false)
	if len(got) != 5 {
		t.Fatalf("expected 5 merged pairs, got %d: %+v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID > got[i].ID {
			t.Fatalf("expected ascending merge, got %+v", got)
		}
	}
}
