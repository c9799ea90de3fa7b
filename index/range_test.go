package index

import "testing"

type scoredPost struct {
	Score int
}

func newScoreIndex() *RangeIndex[scoredPost, int] {
	return NewRangeIndex[scoredPost, int]("score",
		func(p scoredPost) int { return p.Score },
		func(s string) (int, bool) {
			n, err := parseIntHelper(s)
			return n, err
		},
	)
}

func parseIntHelper(s string) (int, bool) {
	rq, err := ParseIntRangeQuery(s)
	if err != nil {
		return 0, false
	}
	return rq.Lo, true
}

func idsOf(q interface {
	Iter(func(uint32) bool)
}) []uint32 {
	var out []uint32
	q.Iter(func(id uint32) bool {
		out = append(out, id)
		return true
	})
	return out
}

func TestRangeIndexEQAndBetween(t *testing.T) {
	idx := newScoreIndex()
	scores := map[uint32]int{1: 10, 2: 20, 3: 20, 4: 30, 5: 40}
	for id, s := range scores {
		idx.Insert(id, scoredPost{Score: s})
	}

	q, ok := idx.Get("=20")
	if !ok {
		t.Fatalf("Get(=20) not ok")
	}
	got := idsOf(q)
	if len(got) != 2 {
		t.Fatalf("Get(=20): got %v, want 2 matches", got)
	}

	q, ok = idx.Get("20..30")
	if !ok {
		t.Fatalf("Get(20..30) not ok")
	}
	got = idsOf(q)
	if len(got) != 3 {
		t.Fatalf("Get(20..30): got %v, want 3 matches", got)
	}
}

func TestRangeIndexOneSided(t *testing.T) {
	idx := newScoreIndex()
	for id, s := range map[uint32]int{1: 10, 2: 20, 3: 30, 4: 40} {
		idx.Insert(id, scoredPost{Score: s})
	}

	q, _ := idx.Get(">20")
	if got := idsOf(q); len(got) != 2 {
		t.Fatalf("Get(>20): got %v, want 2", got)
	}
	q, _ = idx.Get(">=20")
	if got := idsOf(q); len(got) != 3 {
		t.Fatalf("Get(>=20): got %v, want 3", got)
	}
	q, _ = idx.Get("<20")
	if got := idsOf(q); len(got) != 1 {
		t.Fatalf("Get(<20): got %v, want 1", got)
	}
	q, _ = idx.Get("<=20")
	if got := idsOf(q); len(got) != 2 {
		t.Fatalf("Get(<=20): got %v, want 2", got)
	}
}

func TestRangeIndexUpdateAndRemove(t *testing.T) {
	idx := newScoreIndex()
	idx.Insert(1, scoredPost{Score: 10})
	idx.Update(1, scoredPost{Score: 10}, scoredPost{Score: 50})

	q, _ := idx.Get("=10")
	if got := idsOf(q); len(got) != 0 {
		t.Fatalf("expected no matches at old score, got %v", got)
	}
	q, _ = idx.Get("=50")
	if got := idsOf(q); len(got) != 1 {
		t.Fatalf("expected 1 match at new score, got %v", got)
	}

	idx.Remove(1, scoredPost{Score: 50})
	q, _ = idx.Get("=50")
	if got := idsOf(q); len(got) != 0 {
		t.Fatalf("expected no matches after remove, got %v", got)
	}
}

func TestRangeIndexBulkLoad(t *testing.T) {
	idx := newScoreIndex()
	idx.InsertUnchecked(3, scoredPost{Score: 30})
	idx.InsertUnchecked(1, scoredPost{Score: 10})
	idx.InsertUnchecked(2, scoredPost{Score: 20})
	idx.Finalize()

	q, _ := idx.Get("10..20")
	if got := idsOf(q); len(got) != 2 {
		t.Fatalf("Get(10..20) after bulk load: got %v, want 2", got)
	}
}
