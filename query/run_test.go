package query

import "testing"

// buildTags maps tag names to Queryable sets of member IDs for use as
// Run's resolved leaf payloads in tests.
func buildTags(bound int, sets map[string][]uint32) map[string]Queryable {
	out := make(map[string]Queryable, len(sets))
	for name, ids := range sets {
		owned := NewIDsOwned()
		for _, id := range ids {
			owned.Insert(id, bound)
		}
		out[name] = owned.Snapshot()
	}
	return out
}

func mapQuery(t *testing.T, q Query[string], tags map[string]Queryable) Query[Queryable] {
	t.Helper()
	mapped, ok := TryMap(q, func(name string) (Queryable, bool) {
		v, ok := tags[name]
		return v, ok
	})
	if !ok {
		t.Fatalf("TryMap failed unexpectedly for %+v", q)
	}
	return mapped
}

func TestRunAnd(t *testing.T) {
	bound := 10
	tags := buildTags(bound, map[string][]uint32{
		"cat": {1, 2, 3},
		"dog": {2, 3, 4},
	})
	q, _ := Parse("cat dog")
	base := AllOnes(bound).Snapshot()
	res := Run(mapQuery(t, q, tags), base, bound)
	got := res.Get(0, 10, false)
	want := []uint32{2, 3}
	if !equalIDs(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRunOr(t *testing.T) {
	bound := 10
	tags := buildTags(bound, map[string][]uint32{
		"cat": {1, 2},
		"dog": {3, 4},
	})
	q, _ := Parse("cat or dog")
	base := AllOnes(bound).Snapshot()
	res := Run(mapQuery(t, q, tags), base, bound)
	got := res.Get(0, 10, false)
	want := []uint32{1, 2, 3, 4}
	if !equalIDs(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRunNegatedSingle(t *testing.T) {
	bound := 5
	tags := buildTags(bound, map[string][]uint32{
		"cat": {1, 2},
	})
	q, _ := Parse("-cat")
	base := AllOnes(bound).Snapshot()
	res := Run(mapQuery(t, q, tags), base, bound)
	got := res.Get(0, 10, false)
	want := []uint32{0, 3, 4}
	if !equalIDs(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRunNegatedOrGroup(t *testing.T) {
	// -( cat or dog ) over a 6-id domain, each tag held by disjoint members.
	bound := 6
	tags := buildTags(bound, map[string][]uint32{
		"cat": {0, 1},
		"dog": {2, 3},
	})
	q, _ := Parse("-( cat or dog )")
	base := AllOnes(bound).Snapshot()
	res := Run(mapQuery(t, q, tags), base, bound)
	got := res.Get(0, 10, false)
	want := []uint32{4, 5}
	if !equalIDs(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRunBaseClipsDeadIDs(t *testing.T) {
	// base excludes ID 3 (e.g. a deleted record); a negated tag must not
	// resurrect it via all-ones leakage.
	bound := 5
	tags := buildTags(bound, map[string][]uint32{
		"cat": {0},
	})
	baseOwned := NewIDsOwned()
	for _, id := range []uint32{0, 1, 2, 4} {
		baseOwned.Insert(id, bound)
	}
	q, _ := Parse("-cat")
	res := Run(mapQuery(t, q, tags), baseOwned.Snapshot(), bound)
	got := res.Get(0, 10, false)
	want := []uint32{1, 2, 4}
	if !equalIDs(got, want) {
		t.Fatalf("got %v want %v (ID 3 must stay clipped)", got, want)
	}
}

func TestRunComplexNesting(t *testing.T) {
	// ( cat or dog ) -bird -( red or -blue )
	bound := 8
	tags := buildTags(bound, map[string][]uint32{
		"cat":  {0, 1, 2, 3},
		"dog":  {2, 3, 4, 5},
		"bird": {1, 5},
		"red":  {0},
		"blue": {2, 3, 6},
	})
	q, err := Parse("( cat or dog ) -bird -( red or -blue )")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	base := AllOnes(bound).Snapshot()
	res := Run(mapQuery(t, q, tags), base, bound)

	// Compute expected result by brute force over the small domain.
	member := func(name string, id uint32) bool {
		for _, m := range tags[name].(IDs).Values {
			if m == id {
				return true
			}
		}
		return false
	}
	var want []uint32
	for id := uint32(0); id < uint32(bound); id++ {
		if !(member("cat", id) || member("dog", id)) {
			continue
		}
		if member("bird", id) {
			continue
		}
		if member("red", id) || !member("blue", id) {
			continue
		}
		want = append(want, id)
	}
	got := res.Get(0, 10, false)
	if !equalIDs(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
